package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from a YAML string like "10s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dur
	return nil
}

// PingConfig holds probe defaults. Command-line flags override these.
type PingConfig struct {
	Binary  string   `yaml:"binary"`
	Count   int      `yaml:"count"`
	Timeout Duration `yaml:"timeout"`
}

// HistoryConfig holds check-history storage settings. An empty path
// disables recording.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Config is the root plugin configuration.
type Config struct {
	Ping    PingConfig    `yaml:"ping"`
	History HistoryConfig `yaml:"history"`
}

// Default returns the built-in configuration used when no config file is
// given. The ping binary is left empty and resolved from PATH later.
func Default() *Config {
	return &Config{
		Ping: PingConfig{
			Count:   4,
			Timeout: Duration{10 * time.Second},
		},
	}
}

// Load reads, parses, and validates the config file at path. An empty
// path yields the built-in defaults; a plugin must run bare.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Ping.Count < 1 {
		return nil, fmt.Errorf("ping count must be positive, got %d", cfg.Ping.Count)
	}
	if cfg.Ping.Timeout.Duration < 0 {
		return nil, fmt.Errorf("ping timeout must not be negative, got %s", cfg.Ping.Timeout.Duration)
	}
	return cfg, nil
}
