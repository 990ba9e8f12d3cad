package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/netstate-go/internal/config"
	"github.com/tonimelisma/netstate-go/internal/server"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon state and effective configuration",
		Long: `Show whether a watch daemon is running, its live connectivity snapshot
(when the status endpoint is configured), and the effective probe schedule.

Examples:
  netstate status
  netstate status --json`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
}

// statusOutput is the JSON shape of the status command.
type statusOutput struct {
	DaemonRunning    bool             `json:"daemon_running"`
	PID              int              `json:"pid,omitempty"`
	Listen           string           `json:"listen,omitempty"`
	Snapshot         *server.Snapshot `json:"snapshot,omitempty"`
	DetectionEnabled bool             `json:"detection_enabled"`
	TickInterval     string           `json:"tick_interval"`
	Debounce         string           `json:"debounce"`
}

func runStatus(_ *cobra.Command, _ []string) error {
	rt := cfgHolder.Runtime()

	out := statusOutput{
		Listen:           rt.Listen,
		DetectionEnabled: rt.DetectionEnabled,
		TickInterval:     formatDuration(rt.TickInterval),
		Debounce:         formatDuration(rt.Debounce),
	}

	pid, running := daemonPID(config.DefaultPIDFilePath())
	out.DaemonRunning = running
	out.PID = pid

	// A live daemon with a status endpoint also gives us the snapshot.
	if running && rt.Listen != "" {
		snap, err := fetchSnapshot(rt.Listen)
		if err != nil {
			appLogger.Warn("fetching daemon snapshot", "error", err.Error())
		} else {
			out.Snapshot = snap
		}
	}

	if flagJSON {
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	printStatus(out, rt)

	return nil
}

// fetchSnapshot queries the running daemon's status endpoint.
func fetchSnapshot(listen string) (*server.Snapshot, error) {
	resp, err := defaultHTTPClient().Get("http://" + listen + "/status")
	if err != nil {
		return nil, fmt.Errorf("querying daemon: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("daemon returned %s", resp.Status)
	}

	var snap server.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding daemon snapshot: %w", err)
	}

	return &snap, nil
}

func printStatus(out statusOutput, rt *config.Runtime) {
	if out.DaemonRunning {
		fmt.Printf("daemon:    running (pid %d)\n", out.PID)
	} else {
		fmt.Println("daemon:    not running")
	}

	if out.Snapshot != nil {
		fmt.Printf("state:     %s\n", out.Snapshot.Status)
		fmt.Printf("pending:   %v\n", out.Snapshot.PendingSyncData)

		if out.Snapshot.RetryCountdownSeconds > 0 {
			countdown := time.Duration(out.Snapshot.RetryCountdownSeconds * float64(time.Second))
			fmt.Printf("retry in:  %s\n", formatDuration(countdown))
		}
	}

	fmt.Printf("detection: enabled=%v tick=%s debounce=%s\n",
		out.DetectionEnabled, out.TickInterval, out.Debounce)

	fmt.Println()

	rows := make([][]string, 0, len(rt.Schedule.Bands)+1)
	for _, band := range rt.Schedule.Bands {
		rows = append(rows, []string{"< " + formatDuration(band.Below), formatDuration(band.Interval)})
	}

	rows = append(rows, []string{"otherwise", formatDuration(rt.Schedule.Fallback)})

	printTable(os.Stdout, []string{"TIME IN STATE", "PROBE INTERVAL"}, rows)

	if !out.DaemonRunning && interactive() {
		statusf(flagQuiet, "\nStart the daemon with: netstate watch\n")
	}
}
