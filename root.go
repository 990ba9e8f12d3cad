package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/netstate-go/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagJSON       bool
	flagVerbose    bool
	flagQuiet      bool
)

// cfgHolder holds the effective runtime configuration loaded by
// PersistentPreRunE. Available to all subcommands after the root pre-run
// phase completes; the watch daemon swaps its contents on reload.
var cfgHolder *config.Holder

// appLogger is the logger built from the effective config and CLI flags.
var appLogger *slog.Logger

// httpClientTimeout is the default timeout for HTTP requests against a
// running daemon. Prevents hung connections from blocking CLI commands.
const httpClientTimeout = 10 * time.Second

// defaultHTTPClient returns an HTTP client with a sensible timeout.
func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: httpClientTimeout}
}

// newRootCmd builds and returns the fully-assembled root command with all
// subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "netstate",
		Short:   "Connectivity state tracker",
		Long:    "Tracks network connectivity with adaptive probing and coordinates sync retries.",
		Version: version,
		// Silence Cobra's default error/usage printing — we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
		// PersistentPreRunE loads configuration before every command. A missing
		// config file is not an error; defaults apply.
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return loadConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Register subcommands.
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newCheckCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newRetryCmd())
	cmd.AddCommand(newReloadCmd())
	cmd.AddCommand(newBackupCmd())

	return cmd
}

// loadConfig loads the config file (or defaults), materializes the runtime
// view, and builds the logger. Stores both in package globals for use by
// subcommands.
func loadConfig() error {
	path := config.ResolvePath(flagConfigPath)

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Materialize clamps out-of-range values and warns through the logger,
	// so build a bootstrap logger first and the final one after.
	rt := cfg.Materialize(buildLogger("info"))

	appLogger = buildLogger(rt.LogLevel)
	cfgHolder = config.NewHolder(rt, path)

	return nil
}

// buildLogger creates an slog.Logger from the config-file log level with
// --verbose and --quiet overriding it, because CLI flags always win.
func buildLogger(configLevel string) *slog.Logger {
	level := slog.LevelInfo

	switch configLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
