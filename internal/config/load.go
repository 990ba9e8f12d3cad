package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Load reads and parses a TOML config file and returns the resulting
// Config. Unknown keys are fatal errors with "did you mean?" suggestions —
// silently ignoring a typo in a config file leads to hard-to-debug
// behavior. Out-of-range values are NOT errors; they are clamped later by
// Materialize.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := checkUnknownKeys(&md); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOrDefault reads a TOML config file if it exists, otherwise returns a
// Config populated with all default values. This supports the zero-config
// first run: the daemon works without any file on disk.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// ResolvePath picks the effective config file path: the CLI flag wins,
// otherwise the platform default.
func ResolvePath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}

	return DefaultConfigPath()
}
