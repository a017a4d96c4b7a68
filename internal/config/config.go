// Package config loads the runtime configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration.
type Config struct {
	// Listen is the metrics HTTP listen address.
	Listen string `yaml:"listen"`
	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// MaxMessages bounds the per-channel message cache; zero
	// disables message caching.
	MaxMessages int `yaml:"max_messages"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:      ":9190",
		LogLevel:    "info",
		MaxMessages: 100,
	}
}

// Load reads a YAML config file over the defaults. An empty path
// yields the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.MaxMessages < 0 {
		return Config{}, fmt.Errorf("config: max_messages must not be negative")
	}
	return cfg, nil
}
