package server

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/TripleSteak/Final-Aisle/pkg/email"
)

// Config holds server configuration.
type Config struct {
	Addr        string `yaml:"addr"`         // TCP bind address for the game protocol
	MetricsAddr string `yaml:"metrics_addr"` // HTTP bind address for /metrics (empty = disabled)
	DBPath      string `yaml:"db_path"`      // SQLite database path

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// SMTP relay for verification mail. Leave Host empty to log codes
	// instead of sending them.
	SMTP email.SMTPConfig `yaml:"smtp"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8031",
		MetricsAddr: ":8032",
		DBPath:      "finalaisle.db",
		LogLevel:    "info",
		LogFormat:   "text",
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path) //nolint:gosec // path from user-provided CLI flag
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
