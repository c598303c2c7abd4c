// Package config handles loading the config.toml configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Default values applied when the config file is absent or sparse.
const (
	DefaultTimeout         = 15 * time.Second
	DefaultWatchInterval   = 5 * time.Minute
	DefaultReminderTime    = "09:00"
	DefaultHealthAddr      = ":8080"
	DefaultMetricsAddr     = ":9090"
	DefaultDailyTaskCap    = 0 // unlimited
	defaultConfigDirectory = "tarefista"
)

// Config represents the config.toml configuration file.
type Config struct {
	API   API   `toml:"api"`
	Watch Watch `toml:"watch"`
	Tasks Tasks `toml:"tasks"`
}

// API contains backend connection settings.
type API struct {
	// BaseURL overrides the default backend URL.
	BaseURL string `toml:"base-url"`

	// Timeout bounds each backend request.
	Timeout Duration `toml:"timeout"`
}

// Watch contains settings for the long-running watch mode.
type Watch struct {
	// Interval is how often the task list refreshes.
	Interval Duration `toml:"interval"`

	// ReminderTime is the local wall-clock time ("HH:MM") of the daily
	// pending-task reminder.
	ReminderTime string `toml:"reminder-time"`

	// HealthAddr is the listen address for the probe endpoints.
	HealthAddr string `toml:"health-addr"`

	// MetricsAddr is the listen address for the Prometheus endpoint.
	MetricsAddr string `toml:"metrics-addr"`
}

// Tasks contains task behavior settings.
type Tasks struct {
	// DailyCap limits how many tasks can be created per day.
	// Zero means unlimited.
	DailyCap int `toml:"daily-cap"`
}

// Duration is a time.Duration that decodes from TOML strings like "30s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Dir returns the directory holding all local state, creating nothing.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config directory: %w", err)
	}
	return filepath.Join(base, defaultConfigDirectory), nil
}

// DefaultPath returns the config file path inside dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, "config.toml")
}

// Load reads the config file at path and fills in defaults for anything
// left unset. A missing file yields the default configuration.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		applyDefaults(cfg)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = Duration(DefaultTimeout)
	}
	if cfg.Watch.Interval == 0 {
		cfg.Watch.Interval = Duration(DefaultWatchInterval)
	}
	if cfg.Watch.ReminderTime == "" {
		cfg.Watch.ReminderTime = DefaultReminderTime
	}
	if cfg.Watch.HealthAddr == "" {
		cfg.Watch.HealthAddr = DefaultHealthAddr
	}
	if cfg.Watch.MetricsAddr == "" {
		cfg.Watch.MetricsAddr = DefaultMetricsAddr
	}
}

func validate(cfg *Config) error {
	if cfg.Watch.Interval.Std() < time.Second {
		return fmt.Errorf("watch interval %s is below the 1s minimum", cfg.Watch.Interval.Std())
	}
	if _, err := ParseReminderTime(cfg.Watch.ReminderTime); err != nil {
		return err
	}
	if cfg.Tasks.DailyCap < 0 {
		return fmt.Errorf("daily task cap cannot be negative")
	}
	return nil
}

// ParseReminderTime parses an "HH:MM" wall-clock time into hour and minute,
// returned as a cron spec for the daily reminder schedule.
func ParseReminderTime(value string) (string, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return "", fmt.Errorf("parse reminder time %q: expected HH:MM", value)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("reminder time %q is out of range", value)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
