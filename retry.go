package main

import (
	"context"
	"fmt"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"

	"github.com/tonimelisma/netstate-go/internal/config"
	"github.com/tonimelisma/netstate-go/internal/server"
)

// retryConfirmWait bounds how long we wait for the daemon to acknowledge a
// forced retry with a retry_ready event. No event within the window means
// nothing was pending.
const retryConfirmWait = 3 * time.Second

func newRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Force a pending sync retry on the running daemon",
		Long: `Tell the running watch daemon to dispatch a pending sync retry
immediately, bypassing the debounce window. Has no effect when the daemon
is offline or nothing is pending.

Examples:
  netstate retry`,
		Args: cobra.NoArgs,
		RunE: runRetry,
	}
}

func runRetry(cmd *cobra.Command, _ []string) error {
	rt := cfgHolder.Runtime()

	if rt.Listen == "" {
		return fmt.Errorf("retry needs the daemon's event endpoint (set [server] listen in config)")
	}

	if _, running := daemonPID(config.DefaultPIDFilePath()); !running {
		return errNoDaemon
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), httpClientTimeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws://"+rt.Listen+"/events", nil)
	if err != nil {
		return fmt.Errorf("connecting to daemon: %w", err)
	}
	defer conn.CloseNow()

	if err := wsjson.Write(ctx, conn, server.ControlMessage{Action: server.ActionForceRetry}); err != nil {
		return fmt.Errorf("sending retry request: %w", err)
	}

	// The daemon broadcasts retry_ready when the forced retry fires.
	confirmCtx, confirmCancel := context.WithTimeout(ctx, retryConfirmWait)
	defer confirmCancel()

	for {
		var ev server.WireEvent
		if err := wsjson.Read(confirmCtx, conn, &ev); err != nil {
			statusf(flagQuiet, "No pending sync data to retry\n")

			return nil
		}

		if ev.Event == "retry_ready" {
			statusf(flagQuiet, "Retry dispatched\n")

			return nil
		}
	}
}
