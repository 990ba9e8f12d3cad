package main

import (
	"github.com/spf13/cobra"

	"github.com/tonimelisma/netstate-go/internal/config"
)

func newReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Tell the running daemon to reload its config",
		Long: `Send SIGHUP to the running watch daemon so it re-reads the config file.
The daemon also reloads automatically when the file changes; this command
exists for setups where the file watch is unreliable (e.g. NFS).`,
		Args: cobra.NoArgs,
		RunE: runReload,
	}
}

func runReload(_ *cobra.Command, _ []string) error {
	if err := sendSIGHUP(config.DefaultPIDFilePath()); err != nil {
		return err
	}

	statusf(flagQuiet, "Notified running daemon to reload config\n")

	return nil
}
