// Package config loads tickit's settings from ~/.tickit/config.yaml with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Alert styles for due-soon notifications outside the TUI.
const (
	NotifyBell = "bell"
	NotifyLog  = "log"
	NotifyNone = "none"
)

// Config holds user settings.
type Config struct {
	// DataDir holds the database or slot files.
	DataDir string `yaml:"data_dir"`
	// Backend is one of sqlite, file or memory.
	Backend string `yaml:"backend"`
	// UndoCapacity is how many mutations can be undone.
	UndoCapacity int `yaml:"undo_capacity"`
	// NotifyWindowMinutes is how far ahead a new task's due date triggers an alert.
	NotifyWindowMinutes int `yaml:"notify_window_minutes"`
	// ExportFormat is the default export encoding: json, yaml or toml.
	ExportFormat string `yaml:"export_format"`
	LogLevel     string `yaml:"log_level"`
	// Notify selects how the CLI reports due-soon tasks: bell, log or none.
	Notify string `yaml:"notify"`
	// Timezone is an IANA zone name used for recurrence and date views.
	// Empty means the system zone.
	Timezone string `yaml:"timezone,omitempty"`
}

// DefaultDir returns ~/.tickit, or .tickit when the home directory is unknown.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tickit"
	}
	return filepath.Join(home, ".tickit")
}

// DefaultPath returns the config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir:             DefaultDir(),
		Backend:             BackendSQLite,
		UndoCapacity:        50,
		NotifyWindowMinutes: 60,
		ExportFormat:        "json",
		LogLevel:            "warn",
		Notify:              NotifyBell,
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied before validation.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfigFromHome loads configuration from ~/.tickit/config.yaml.
func LoadConfigFromHome() (*Config, error) {
	return LoadConfig(DefaultPath())
}

// ApplyEnv overrides fields from TICKIT_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TICKIT_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("TICKIT_BACKEND"); v != "" {
		c.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("TICKIT_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getEnvInt("TICKIT_UNDO_CAPACITY"); v > 0 {
		c.UndoCapacity = v
	}
	if v := os.Getenv("TICKIT_TIMEZONE"); v != "" {
		c.Timezone = v
	}
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" && c.Backend != BackendMemory {
		return fmt.Errorf("data_dir must be set")
	}

	validBackends := map[string]bool{
		BackendSQLite: true,
		BackendFile:   true,
		BackendMemory: true,
	}
	if !validBackends[c.Backend] {
		return fmt.Errorf("invalid backend %q, must be: sqlite, file, or memory", c.Backend)
	}

	if c.UndoCapacity < 1 {
		return fmt.Errorf("undo_capacity must be at least 1")
	}
	if c.NotifyWindowMinutes < 0 {
		return fmt.Errorf("notify_window_minutes must not be negative")
	}

	switch strings.ToLower(c.ExportFormat) {
	case "json", "yaml", "yml", "toml":
	default:
		return fmt.Errorf("invalid export_format %q, must be: json, yaml, or toml", c.ExportFormat)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}

	switch c.Notify {
	case NotifyBell, NotifyLog, NotifyNone:
	default:
		return fmt.Errorf("invalid notify %q, must be: bell, log, or none", c.Notify)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone. Empty means time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// NotifyWindow returns NotifyWindowMinutes as a duration.
func (c *Config) NotifyWindow() time.Duration {
	return time.Duration(c.NotifyWindowMinutes) * time.Minute
}

// SaveConfig saves configuration to a YAML file, creating parent directories if needed.
func SaveConfig(path string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
