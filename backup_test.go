package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/netstate-go/internal/config"
)

func TestBackupOwner_FlagWins(t *testing.T) {
	saveFlags(t)

	oldOwner := flagBackupOwner

	t.Cleanup(func() { flagBackupOwner = oldOwner })

	rt := config.DefaultConfig().Materialize(discardLogger())
	rt.BackupOwner = "config@example.com"
	cfgHolder = config.NewHolder(rt, "")

	flagBackupOwner = "flag@example.com"

	owner, err := backupOwner()
	require.NoError(t, err)
	assert.Equal(t, "flag@example.com", owner)
}

func TestBackupOwner_ConfigFallback(t *testing.T) {
	saveFlags(t)

	oldOwner := flagBackupOwner

	t.Cleanup(func() { flagBackupOwner = oldOwner })

	flagBackupOwner = ""

	rt := config.DefaultConfig().Materialize(discardLogger())
	rt.BackupOwner = "config@example.com"
	cfgHolder = config.NewHolder(rt, "")

	owner, err := backupOwner()
	require.NoError(t, err)
	assert.Equal(t, "config@example.com", owner)
}

func TestBackupOwner_MissingEverywhere(t *testing.T) {
	saveFlags(t)

	oldOwner := flagBackupOwner

	t.Cleanup(func() { flagBackupOwner = oldOwner })

	flagBackupOwner = ""

	rt := config.DefaultConfig().Materialize(discardLogger())
	rt.BackupOwner = ""
	cfgHolder = config.NewHolder(rt, "")

	_, err := backupOwner()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner id required")
}

func TestOpenBackupStore_CreatesDirectory(t *testing.T) {
	saveFlags(t)

	rt := config.DefaultConfig().Materialize(discardLogger())
	rt.BackupDBPath = filepath.Join(t.TempDir(), "nested", "backup.db")
	cfgHolder = config.NewHolder(rt, "")
	appLogger = discardLogger()

	store, err := openBackupStore()
	require.NoError(t, err)

	defer store.Close()

	assert.FileExists(t, rt.BackupDBPath)
}
