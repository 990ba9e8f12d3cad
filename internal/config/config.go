// Package config implements TOML configuration loading, strict unknown-key
// checking, clamping validation, and hot-reload plumbing for netstate-go.
// Out-of-range durations are clamped with a warning rather than rejected;
// the daemon must never refuse to start over a too-small debounce.
package config

// Config is the top-level structure parsed from a TOML file. Interval and
// duration fields are strings ("5s", "10m") and are parsed and clamped when
// the config is materialized into a Runtime.
type Config struct {
	Detection DetectionConfig `toml:"detection"`
	Retry     RetryConfig     `toml:"retry"`
	Probe     ProbeConfig     `toml:"probe"`
	Logging   LoggingConfig   `toml:"logging"`
	Server    ServerConfig    `toml:"server"`
	Backup    BackupConfig    `toml:"backup"`
}

// DetectionConfig controls the connectivity monitor: whether it runs, how
// often the daemon ticks it, and the adaptive probe schedule. Bands pair an
// elapsed-time ceiling with a probe interval; the fallback interval covers
// time-in-state beyond the last band.
type DetectionConfig struct {
	Enabled          bool         `toml:"enabled"`
	TickInterval     string       `toml:"tick_interval"`
	Bands            []BandConfig `toml:"bands"`
	FallbackInterval string       `toml:"fallback_interval"`
	LogTransitions   bool         `toml:"log_transitions"`
}

// BandConfig is one adaptive schedule entry.
type BandConfig struct {
	Below    string `toml:"below"`
	Interval string `toml:"interval"`
}

// RetryConfig controls the sync retry coordinator.
type RetryConfig struct {
	Debounce   string `toml:"debounce"`
	LogRetries bool   `toml:"log_retries"`
}

// ProbeConfig selects the reachability probe targets. The remote target
// proves wide-area reachability; the optional local target (typically the
// LAN gateway) distinguishes "LAN only" from fully unreachable.
type ProbeConfig struct {
	RemoteTarget string `toml:"remote_target"`
	LocalTarget  string `toml:"local_target"`
	Timeout      string `toml:"timeout"`
}

// LoggingConfig controls log output behavior.
type LoggingConfig struct {
	LogLevel string `toml:"log_level"`
}

// ServerConfig controls the local event-stream server. An empty listen
// address disables it.
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// BackupConfig controls the offline backup blob store.
type BackupConfig struct {
	DatabasePath string `toml:"database_path"`
	Owner        string `toml:"owner"`
}

// DefaultConfig returns a Config with every field set to its default. The
// schedule defaults mirror netstate.DefaultSchedule.
func DefaultConfig() *Config {
	return &Config{
		Detection: DetectionConfig{
			Enabled:      true,
			TickInterval: "1s",
			Bands: []BandConfig{
				{Below: "60s", Interval: "5s"},
				{Below: "600s", Interval: "10s"},
				{Below: "3600s", Interval: "30s"},
				{Below: "36000s", Interval: "600s"},
			},
			FallbackInterval: "3600s",
			LogTransitions:   true,
		},
		Retry: RetryConfig{
			Debounce:   "60s",
			LogRetries: true,
		},
		Probe: ProbeConfig{
			RemoteTarget: "1.1.1.1:53",
			LocalTarget:  "",
			Timeout:      "4s",
		},
		Logging: LoggingConfig{
			LogLevel: "info",
		},
		Server: ServerConfig{
			Listen: "",
		},
		Backup: BackupConfig{
			DatabasePath: "", // resolved to DefaultDataDir()/backup.db on use
			Owner:        "",
		},
	}
}
