package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Global flag reset pattern: newRootCmd() binds flags via StringVar/BoolVar,
// which reset the global flag variables to their zero values. Tests must
// either set globals AFTER newRootCmd() returns, or use cmd.SetArgs() +
// cmd.Execute() to let Cobra parse flags.

func saveFlags(t *testing.T) {
	t.Helper()

	oldConfigPath := flagConfigPath
	oldJSON := flagJSON
	oldVerbose := flagVerbose
	oldQuiet := flagQuiet
	oldHolder := cfgHolder
	oldLogger := appLogger

	t.Cleanup(func() {
		flagConfigPath = oldConfigPath
		flagJSON = oldJSON
		flagVerbose = oldVerbose
		flagQuiet = oldQuiet
		cfgHolder = oldHolder
		appLogger = oldLogger
	})
}

// --- buildLogger tests ---

func TestBuildLogger_Default(t *testing.T) {
	saveFlags(t)

	flagVerbose = false
	flagQuiet = false

	logger := buildLogger("info")

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelInfo))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLogger_ConfigDebug(t *testing.T) {
	saveFlags(t)

	flagVerbose = false
	flagQuiet = false

	logger := buildLogger("debug")

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLogger_VerboseOverrides(t *testing.T) {
	saveFlags(t)

	// Config says error, but --verbose should override to Debug.
	flagVerbose = true
	flagQuiet = false

	logger := buildLogger("error")

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestBuildLogger_QuietOverrides(t *testing.T) {
	saveFlags(t)

	flagVerbose = false
	flagQuiet = true

	logger := buildLogger("info")

	assert.True(t, logger.Handler().Enabled(context.Background(), slog.LevelError))
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelWarn))
}

// --- Cobra structure tests ---

func TestNewRootCmd_Subcommands(t *testing.T) {
	cmd := newRootCmd()

	expected := []string{"watch", "check", "status", "retry", "reload", "backup"}
	for _, name := range expected {
		found := false

		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true

				break
			}
		}

		assert.True(t, found, "expected subcommand %q not found", name)
	}
}

func TestNewRootCmd_PersistentFlags(t *testing.T) {
	cmd := newRootCmd()

	expectedFlags := []string{"config", "json", "verbose", "quiet"}
	for _, name := range expectedFlags {
		flag := cmd.PersistentFlags().Lookup(name)
		assert.NotNil(t, flag, "expected persistent flag %q not found", name)
	}
}

func TestNewRootCmd_MutualExclusivity(t *testing.T) {
	// Cobra enforces mutual exclusivity during Execute().
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--verbose", "--quiet", "status"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the others can be")
}

func TestNewRootCmd_BackupSubcommands(t *testing.T) {
	cmd := newRootCmd()

	backupSub, _, err := cmd.Find([]string{"backup"})
	require.NoError(t, err)
	require.Equal(t, "backup", backupSub.Name())

	expectedSubs := []string{"save", "restore", "delete"}
	for _, name := range expectedSubs {
		found := false

		for _, sub := range backupSub.Commands() {
			if sub.Name() == name {
				found = true

				break
			}
		}

		assert.True(t, found, "expected backup subcommand %q not found", name)
	}
}

// --- loadConfig tests ---

func TestLoadConfig_ValidTOML(t *testing.T) {
	saveFlags(t)

	cfgFile := filepath.Join(t.TempDir(), "netstate.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
[retry]
debounce = "90s"
`), 0o600))

	flagConfigPath = cfgFile

	require.NoError(t, loadConfig())
	require.NotNil(t, cfgHolder)

	assert.Equal(t, 90*time.Second, cfgHolder.Runtime().Debounce)
	assert.Equal(t, cfgFile, cfgHolder.Path())
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	saveFlags(t)

	flagConfigPath = filepath.Join(t.TempDir(), "nonexistent.toml")

	require.NoError(t, loadConfig())
	require.NotNil(t, cfgHolder)

	assert.Equal(t, time.Minute, cfgHolder.Runtime().Debounce)
	assert.True(t, cfgHolder.Runtime().DetectionEnabled)
}

func TestLoadConfig_UnknownKeyFails(t *testing.T) {
	saveFlags(t)

	cfgFile := filepath.Join(t.TempDir(), "netstate.toml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
[retry]
debounse = "90s"
`), 0o600))

	flagConfigPath = cfgFile

	err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "debounce")
}

// --- defaultHTTPClient tests ---

func TestDefaultHTTPClient_HasTimeout(t *testing.T) {
	client := defaultHTTPClient()
	assert.Equal(t, httpClientTimeout, client.Timeout)
}
