package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tonimelisma/netstate-go/internal/config"
	"github.com/tonimelisma/netstate-go/internal/netstate"
	"github.com/tonimelisma/netstate-go/internal/probe"
	"github.com/tonimelisma/netstate-go/internal/server"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the connectivity watch daemon",
		Long: `Run the connectivity watch daemon. Probes the network on an adaptive
schedule, tracks online/offline state, and coordinates sync retries.

The daemon reloads its config on SIGHUP and whenever the config file
changes. With [server] listen set, it serves a local status endpoint and
a websocket event stream.

Examples:
  netstate watch
  netstate watch --config ~/.config/netstate-go/netstate.toml`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
}

// reloadableProbe lets a config reload swap the probe without rebuilding
// the tracker. Classify holds no lock while probing.
type reloadableProbe struct {
	mu    sync.RWMutex
	inner netstate.ReachabilityProbe
}

func (p *reloadableProbe) Classify(ctx context.Context) netstate.Reachability {
	p.mu.RLock()
	inner := p.inner
	p.mu.RUnlock()

	return inner.Classify(ctx)
}

func (p *reloadableProbe) set(inner netstate.ReachabilityProbe) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.inner = inner
}

// probeFromRuntime builds the dialer probe the daemon uses.
func probeFromRuntime(rt *config.Runtime, logger *slog.Logger) netstate.ReachabilityProbe {
	return probe.NewDialer(rt.ProbeRemoteTarget, rt.ProbeLocalTarget, rt.ProbeTimeout, logger)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	logger := appLogger
	rt := cfgHolder.Runtime()

	cleanup, err := writePIDFile(config.DefaultPIDFilePath())
	if err != nil {
		return err
	}
	defer cleanup()

	dialProbe := &reloadableProbe{inner: probeFromRuntime(rt, logger)}

	settings := rt.Settings()
	tracker := netstate.NewTracker(netstate.Options{
		Probe:    dialProbe,
		Logger:   logger,
		Settings: &settings,
	})

	ctx := shutdownContext(cmd.Context(), logger)

	logger.Info("watch daemon starting",
		slog.String("version", version),
		slog.Duration("tick_interval", rt.TickInterval),
		slog.String("listen", rt.Listen),
	)

	// Reload requests from SIGHUP and the file watcher funnel into one
	// channel; a pending request is never queued twice.
	reload := make(chan struct{}, 1)

	requestReload := func() {
		select {
		case reload <- struct{}{}:
		default:
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return tickLoop(ctx, tracker)
	})

	if rt.Listen != "" {
		srv := server.New(tracker, logger)

		g.Go(func() error {
			return srv.Run(ctx, rt.Listen)
		})
	}

	g.Go(func() error {
		return config.WatchFile(ctx, cfgHolder.Path(), logger, requestReload)
	})

	g.Go(func() error {
		hup := reloadSignals(ctx)

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-hup:
				logger.Info("received SIGHUP, reloading config")
				requestReload()
			case <-reload:
				applyReload(tracker, dialProbe, logger)
			}
		}
	})

	err = g.Wait()

	logger.Info("watch daemon stopped")

	return err
}

// tickLoop drives the tracker at the configured cadence. The interval is
// re-read after every tick so a reload takes effect without restarting.
func tickLoop(ctx context.Context, tracker *netstate.Tracker) error {
	interval := cfgHolder.Runtime().TickInterval

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			tracker.Tick(ctx)

			if cur := cfgHolder.Runtime().TickInterval; cur != interval {
				interval = cur
				ticker.Reset(interval)
			}
		}
	}
}

// applyReload re-reads the config file and applies it live: the holder gets
// the new runtime snapshot, the tracker gets new settings, and the probe is
// rebuilt with the new targets. Load errors keep the previous config.
func applyReload(tracker *netstate.Tracker, dialProbe *reloadableProbe, logger *slog.Logger) {
	cfg, err := config.LoadOrDefault(cfgHolder.Path())
	if err != nil {
		logger.Warn("config reload failed, keeping previous config",
			slog.String("error", err.Error()),
		)

		return
	}

	rt := cfg.Materialize(logger)

	cfgHolder.Update(rt)
	tracker.Apply(rt.Settings())
	dialProbe.set(probeFromRuntime(rt, logger))

	logger.Info("config reloaded",
		slog.Duration("tick_interval", rt.TickInterval),
		slog.Duration("debounce", rt.Debounce),
		slog.Bool("detection_enabled", rt.DetectionEnabled),
	)
}

// errNoDaemon is returned by commands that need a running watch daemon.
var errNoDaemon = fmt.Errorf("no running watch daemon (start one with: netstate watch)")
