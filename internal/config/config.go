package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/fitpulse-lab/fitpulse/internal/core/metrics"
)

// Config represents the top-level application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Provider  ProviderConfig  `koanf:"provider"`
	Tracker   TrackerConfig   `koanf:"tracker"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Profile   ProfileConfig   `koanf:"profile"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port          int    `koanf:"port"`
	Host          string `koanf:"host"`
	MaxBodySizeMB int    `koanf:"max_body_size_mb"`
	Mode          string `koanf:"mode"` // debug | release
}

// StorageConfig selects and configures the snapshot store backend.
type StorageConfig struct {
	Type         string `koanf:"type"` // badger | postgres | memory
	Path         string `koanf:"path"` // badger data directory
	DSN          string `koanf:"dsn"`  // postgres connection string
	Key          string `koanf:"key"`  // snapshot store key
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// ProviderConfig holds the fitness provider connection settings.
type ProviderConfig struct {
	BaseURL  string `koanf:"base_url"`
	Email    string `koanf:"email"`
	Password string `koanf:"password"`
	Timeout  string `koanf:"timeout"`
}

// TrackerConfig holds the merge engine settings.
type TrackerConfig struct {
	EpochStart          string `koanf:"epoch_start"` // first backfilled date
	BackfillConcurrency int    `koanf:"backfill_concurrency"`
}

// SchedulerConfig controls the built-in periodic update trigger.
// Disabled by default; an external cron hitting POST /update works just as
// well.
type SchedulerConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Interval string `koanf:"interval"`
}

// ProfileConfig points at the profile card file.
type ProfileConfig struct {
	Path string `koanf:"path"`
}

// ProviderTimeout returns the parsed provider timeout.
// Validate guarantees it parses.
func (c ProviderConfig) ProviderTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// SchedulerInterval returns the parsed update interval.
func (c SchedulerConfig) SchedulerInterval() time.Duration {
	d, _ := time.ParseDuration(c.Interval)
	return d
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.MaxBodySizeMB <= 0 {
		return fmt.Errorf("server.max_body_size_mb must be > 0")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	switch c.Storage.Type {
	case "badger":
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("storage.path is required for the badger backend")
		}
	case "postgres":
		if strings.TrimSpace(c.Storage.DSN) == "" {
			return fmt.Errorf("storage.dsn is required for the postgres backend")
		}
		if c.Storage.MaxOpenConns <= 0 {
			return fmt.Errorf("storage.max_open_conns must be > 0")
		}
		if c.Storage.MaxIdleConns <= 0 {
			return fmt.Errorf("storage.max_idle_conns must be > 0")
		}
	case "memory":
		// No settings; data does not survive a restart.
	default:
		return fmt.Errorf("unsupported storage.type %q", c.Storage.Type)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return fmt.Errorf("storage.key is required")
	}

	if strings.TrimSpace(c.Provider.BaseURL) == "" {
		return fmt.Errorf("provider.base_url is required")
	}
	if _, err := time.ParseDuration(c.Provider.Timeout); err != nil {
		return fmt.Errorf("invalid provider.timeout %q: %w", c.Provider.Timeout, err)
	}

	if !metrics.ValidDay(c.Tracker.EpochStart) {
		return fmt.Errorf("invalid tracker.epoch_start %q (must be YYYY-MM-DD)", c.Tracker.EpochStart)
	}
	if c.Tracker.BackfillConcurrency <= 0 {
		return fmt.Errorf("tracker.backfill_concurrency must be > 0")
	}

	if c.Scheduler.Enabled {
		interval, err := time.ParseDuration(c.Scheduler.Interval)
		if err != nil {
			return fmt.Errorf("invalid scheduler.interval %q: %w", c.Scheduler.Interval, err)
		}
		if interval <= 0 {
			return fmt.Errorf("scheduler.interval must be > 0")
		}
	}

	return nil
}

// Load parses config from defaults + file + env, then validates it.
// Env vars use the FITPULSE_ prefix with "__" as the section separator,
// e.g. FITPULSE_STORAGE__TYPE=postgres.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":                  8000,
		"server.host":                  "0.0.0.0",
		"server.max_body_size_mb":      1,
		"server.mode":                  "release",
		"storage.type":                 "badger",
		"storage.path":                 "./data/fitpulse",
		"storage.dsn":                  "",
		"storage.key":                  "garmin_data",
		"storage.max_open_conns":       10,
		"storage.max_idle_conns":       5,
		"storage.auto_migrate":         true,
		"provider.base_url":            "https://connectapi.garmin.com",
		"provider.email":               "",
		"provider.password":            "",
		"provider.timeout":             "30s",
		"tracker.epoch_start":          "2025-01-01",
		"tracker.backfill_concurrency": 4,
		"scheduler.enabled":            false,
		"scheduler.interval":           "1h",
		"profile.path":                 "./profile.yaml",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider("FITPULSE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "FITPULSE_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
