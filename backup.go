package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/netstate-go/internal/backup"
	"github.com/tonimelisma/netstate-go/internal/config"
	"github.com/tonimelisma/netstate-go/internal/netstate"
)

// flagBackupOwner overrides the [backup] owner from the config file.
var flagBackupOwner string

// errOnlineSaveRefused: backups exist to serve data while offline; saving
// one while the network is up would shadow fresher upstream state.
var errOnlineSaveRefused = errors.New("refusing to save a backup while online")

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage offline backup blobs",
		Long: `Manage the local backup store. Backups are opaque blobs keyed by name
and bound to an owner id; restore and delete refuse to touch a blob
saved under a different owner.

Saving is only allowed while offline.`,
	}

	cmd.PersistentFlags().StringVar(&flagBackupOwner, "owner", "", "owner id (defaults to [backup] owner from config)")

	cmd.AddCommand(newBackupSaveCmd())
	cmd.AddCommand(newBackupRestoreCmd())
	cmd.AddCommand(newBackupDeleteCmd())

	return cmd
}

func newBackupSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <key> <file>",
		Short: "Save a backup blob (offline only)",
		Long: `Save the contents of a file as a backup blob under the given key.
Pass "-" as the file to read from stdin. Refused while the remote
probe target is reachable.

Examples:
  netstate backup save state ./state.json
  cat state.json | netstate backup save state -`,
		Args: cobra.ExactArgs(2),
		RunE: runBackupSave,
	}
}

func newBackupRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <key> [file]",
		Short: "Restore a backup blob",
		Long: `Write the backup blob stored under the given key to a file, or to
stdout when no file is given. A missing backup is not an error; the
command reports that no backup is available.

Examples:
  netstate backup restore state
  netstate backup restore state ./state.json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runBackupRestore,
	}
}

func newBackupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a backup blob",
		Args:  cobra.ExactArgs(1),
		RunE:  runBackupDelete,
	}
}

// backupOwner resolves the owner id from the --owner flag or the config.
func backupOwner() (string, error) {
	if flagBackupOwner != "" {
		return flagBackupOwner, nil
	}

	if owner := cfgHolder.Runtime().BackupOwner; owner != "" {
		return owner, nil
	}

	return "", fmt.Errorf("owner id required (set [backup] owner in config or pass --owner)")
}

// openBackupStore opens the configured backup database, creating its
// directory if needed.
func openBackupStore() (*backup.Store, error) {
	path := cfgHolder.Runtime().BackupDBPath
	if path == "" {
		path = config.DefaultBackupDBPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	return backup.NewStore(path, appLogger)
}

// ensureOffline enforces the offline-only rule for saves. Local-only
// reachability still counts as offline.
func ensureOffline(ctx context.Context) error {
	p := probeFromRuntime(cfgHolder.Runtime(), appLogger)

	if p.Classify(ctx) == netstate.ReachableRemote {
		return errOnlineSaveRefused
	}

	return nil
}

func runBackupSave(cmd *cobra.Command, args []string) error {
	key, file := args[0], args[1]

	owner, err := backupOwner()
	if err != nil {
		return err
	}

	if err := ensureOffline(cmd.Context()); err != nil {
		return err
	}

	var blob []byte

	if file == "-" {
		blob, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	} else {
		blob, err = os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
	}

	store, err := openBackupStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(cmd.Context(), owner, key, blob); err != nil {
		return fmt.Errorf("saving backup: %w", err)
	}

	statusf(flagQuiet, "Backup %q saved (%d bytes)\n", key, len(blob))

	return nil
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	key := args[0]

	owner, err := backupOwner()
	if err != nil {
		return err
	}

	store, err := openBackupStore()
	if err != nil {
		return err
	}
	defer store.Close()

	blob, err := store.Load(cmd.Context(), owner, key)
	if err != nil {
		// Owner mismatches are refused loudly; everything else means there
		// is simply nothing to restore.
		if errors.Is(err, backup.ErrOwnerMismatch) {
			return fmt.Errorf("restoring backup: %w", err)
		}

		appLogger.Warn("backup load failed", "key", key, "error", err.Error())
		statusf(flagQuiet, "No backup available for %q\n", key)

		return nil
	}

	if len(args) == 1 {
		_, err = os.Stdout.Write(blob)

		return err
	}

	if err := os.WriteFile(args[1], blob, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", args[1], err)
	}

	statusf(flagQuiet, "Backup %q restored to %s (%d bytes)\n", key, args[1], len(blob))

	return nil
}

func runBackupDelete(cmd *cobra.Command, args []string) error {
	key := args[0]

	owner, err := backupOwner()
	if err != nil {
		return err
	}

	store, err := openBackupStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(cmd.Context(), owner, key); err != nil {
		if errors.Is(err, backup.ErrNotFound) {
			statusf(flagQuiet, "No backup found for %q\n", key)

			return nil
		}

		return fmt.Errorf("deleting backup: %w", err)
	}

	statusf(flagQuiet, "Backup %q deleted\n", key)

	return nil
}
