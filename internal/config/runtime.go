package config

import (
	"log/slog"
	"time"

	"github.com/tonimelisma/netstate-go/internal/netstate"
)

// Clamping floors. Values below these are raised with a warning instead of
// failing the load; absence of connectivity tooling is worse than a
// slightly-off interval.
const (
	minTickInterval  = 100 * time.Millisecond
	minProbeInterval = time.Second
	minProbeTimeout  = 500 * time.Millisecond
)

// Runtime is the parsed, clamped form of Config that the daemon consumes.
// All durations are real time.Durations and every value is in range.
type Runtime struct {
	DetectionEnabled bool
	TickInterval     time.Duration
	Schedule         netstate.Schedule
	Debounce         time.Duration
	LogTransitions   bool
	LogRetries       bool

	ProbeRemoteTarget string
	ProbeLocalTarget  string
	ProbeTimeout      time.Duration

	LogLevel string

	Listen string

	BackupDBPath string
	BackupOwner  string
}

// Settings extracts the hot-updatable tracker settings.
func (r *Runtime) Settings() netstate.Settings {
	return netstate.Settings{
		DetectionEnabled: r.DetectionEnabled,
		Schedule:         r.Schedule,
		Debounce:         r.Debounce,
		LogTransitions:   r.LogTransitions,
		LogRetries:       r.LogRetries,
	}
}

// Materialize parses and clamps cfg into a Runtime. It never fails on
// out-of-range values: bad durations fall back to their defaults and
// too-small ones are raised to their floors, each with a Warn log.
func (cfg *Config) Materialize(logger *slog.Logger) *Runtime {
	defaults := DefaultConfig()

	r := &Runtime{
		DetectionEnabled: cfg.Detection.Enabled,
		LogTransitions:   cfg.Detection.LogTransitions,
		LogRetries:       cfg.Retry.LogRetries,

		ProbeRemoteTarget: cfg.Probe.RemoteTarget,
		ProbeLocalTarget:  cfg.Probe.LocalTarget,

		LogLevel: cfg.Logging.LogLevel,

		Listen: cfg.Server.Listen,

		BackupDBPath: cfg.Backup.DatabasePath,
		BackupOwner:  cfg.Backup.Owner,
	}

	r.TickInterval = clampDuration(logger, "detection.tick_interval",
		cfg.Detection.TickInterval, defaults.Detection.TickInterval, minTickInterval)

	r.Schedule = materializeSchedule(logger, &cfg.Detection, &defaults.Detection)

	r.Debounce = clampDuration(logger, "retry.debounce",
		cfg.Retry.Debounce, defaults.Retry.Debounce, netstate.MinDebounce)

	r.ProbeTimeout = clampDuration(logger, "probe.timeout",
		cfg.Probe.Timeout, defaults.Probe.Timeout, minProbeTimeout)

	if !validLogLevels[r.LogLevel] {
		logger.Warn("unknown log level, using info", slog.String("log_level", r.LogLevel))
		r.LogLevel = "info"
	}

	if r.BackupDBPath == "" {
		r.BackupDBPath = DefaultBackupDBPath()
	}

	return r
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// materializeSchedule parses the adaptive schedule bands. A malformed band
// is dropped with a warning; an empty result falls back to the default
// schedule so the monitor always has a usable table.
func materializeSchedule(logger *slog.Logger, d, defaults *DetectionConfig) netstate.Schedule {
	var bands []netstate.Band

	for _, bc := range d.Bands {
		below, err1 := time.ParseDuration(bc.Below)
		interval, err2 := time.ParseDuration(bc.Interval)

		if err1 != nil || err2 != nil || below <= 0 {
			logger.Warn("dropping malformed schedule band",
				slog.String("below", bc.Below),
				slog.String("interval", bc.Interval),
			)

			continue
		}

		if interval < minProbeInterval {
			logger.Warn("raising schedule band interval to floor",
				slog.String("below", bc.Below),
				slog.Duration("floor", minProbeInterval),
			)

			interval = minProbeInterval
		}

		bands = append(bands, netstate.Band{Below: below, Interval: interval})
	}

	fallback := clampDuration(logger, "detection.fallback_interval",
		d.FallbackInterval, defaults.FallbackInterval, minProbeInterval)

	if len(bands) == 0 {
		logger.Warn("no usable schedule bands, using defaults")

		return netstate.DefaultSchedule()
	}

	return netstate.Schedule{Bands: bands, Fallback: fallback}
}

// clampDuration parses value, falling back to def on a parse error and
// raising anything below floor to the floor. Each correction logs a Warn.
func clampDuration(logger *slog.Logger, field, value, def string, floor time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		// Defaults are compile-time constants; they always parse.
		d, _ = time.ParseDuration(def)

		logger.Warn("invalid duration, using default",
			slog.String("field", field),
			slog.String("value", value),
			slog.Duration("default", d),
		)
	}

	if d < floor {
		logger.Warn("duration below floor, clamping",
			slog.String("field", field),
			slog.Duration("value", d),
			slog.Duration("floor", floor),
		)

		d = floor
	}

	return d
}
