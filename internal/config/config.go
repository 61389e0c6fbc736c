// Package config provides configuration types and defaults for carreg.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zjrosen/carreg/internal/console"
	"github.com/zjrosen/carreg/internal/log"
	"github.com/zjrosen/carreg/internal/store"
	"github.com/zjrosen/carreg/internal/vehicle"
)

// Config holds all configuration options for carreg.
type Config struct {
	DataFile string    `mapstructure:"data_file"` // path to the database; empty uses the backend default
	Backend  string    `mapstructure:"backend"`   // "json" (default), "sqlite", or "memory"
	Sentinel string    `mapstructure:"sentinel"`  // input that aborts add/delete/find back to the menu
	Log      LogConfig `mapstructure:"log"`
}

// LogConfig controls the debug log file.
type LogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Level   string `mapstructure:"level"` // debug (default), info, warn, error
}

// DefaultSentinel is the session's abort input when none is configured.
const DefaultSentinel = console.DefaultSentinel

// DefaultLogPath is where the debug log goes when log.path is unset.
const DefaultLogPath = "carreg.log"

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		DataFile: "",
		Backend:  store.BackendJSON,
		Sentinel: DefaultSentinel,
		Log: LogConfig{
			Enabled: false,
			Path:    DefaultLogPath,
			Level:   "debug",
		},
	}
}

// Validate checks the configuration for errors.
// Empty values are valid and fall back to defaults.
func (c Config) Validate() error {
	switch c.Backend {
	case "", store.BackendJSON, store.BackendSQLite, store.BackendMemory:
	default:
		return fmt.Errorf("backend must be %q, %q, or %q, got %q",
			store.BackendJSON, store.BackendSQLite, store.BackendMemory, c.Backend)
	}

	if strings.TrimSpace(c.Sentinel) != c.Sentinel {
		return fmt.Errorf("sentinel must not have surrounding whitespace, got %q", c.Sentinel)
	}
	if c.Sentinel != "" && !strings.EqualFold(c.Sentinel, "quit") && vehicle.ValidRegistration(c.Sentinel) {
		return fmt.Errorf("sentinel %q would shadow a valid registration", c.Sentinel)
	}

	if c.Log.Level != "" {
		switch strings.ToLower(c.Log.Level) {
		case "debug", "info", "warn", "warning", "error":
		default:
			return fmt.Errorf("log.level must be \"debug\", \"info\", \"warn\", or \"error\", got %q", c.Log.Level)
		}
	}
	if c.Log.Enabled && c.Log.Path == "" {
		return fmt.Errorf("log.path is required when log.enabled is true")
	}
	return nil
}

// ResolvedDataFile returns the configured data path, or the default for the backend.
func (c Config) ResolvedDataFile() string {
	if c.DataFile != "" {
		return c.DataFile
	}
	switch c.Backend {
	case store.BackendSQLite:
		return store.DefaultSQLiteFile
	case store.BackendMemory:
		return ""
	default:
		return store.DefaultDataFile
	}
}

// ResolvedSentinel returns the sentinel, or DefaultSentinel when unset.
func (c Config) ResolvedSentinel() string {
	if c.Sentinel == "" {
		return DefaultSentinel
	}
	return c.Sentinel
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# carreg configuration

# Storage backend: json (default), sqlite, or memory (nothing saved)
backend: json

# Database path. Empty uses car_data.json (json) or car_data.db (sqlite).
# data_file: car_data.json

# Input that aborts add/delete/find and returns to the menu.
# "quit" is always accepted as well.
sentinel: "5"

# Debug logging (also enabled by --debug or CARREG_DEBUG=1)
log:
  enabled: false
  path: carreg.log
  level: debug   # debug, info, warn, error
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
