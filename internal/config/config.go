// Package config loads planner configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Storage backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds the server and CLI configuration.
type Config struct {
	// HTTP
	Port string `env:"PORT" envDefault:"8080"`

	// Storage
	StoreBackend string `env:"STORE_BACKEND" envDefault:"sqlite"`
	DataDir      string `env:"DATA_DIR" envDefault:"./data"`
	SQLitePath   string `env:"SQLITE_PATH"`
	DatabaseURL  string `env:"DATABASE_URL"`

	// Cache (optional, wraps any backend)
	RedisURL string        `env:"REDIS_URL"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// Observability
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// League defaults for a fresh settings document
	BudgetTotalDefault int `env:"BUDGET_TOTAL_DEFAULT" envDefault:"260"`
}

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads configuration from the given variables instead of the
// process environment.
func LoadFrom(environ map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = strings.TrimRight(cfg.DataDir, "/") + "/planner.db"
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendSQLite:
	case BackendFile:
		if c.DataDir == "" {
			return fmt.Errorf("DATA_DIR is required for the file backend")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("invalid store backend: %s", c.StoreBackend)
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	if c.RedisURL != "" && c.CacheTTL < time.Second {
		return fmt.Errorf("cache TTL must be at least 1 second")
	}
	if c.BudgetTotalDefault < 0 {
		return fmt.Errorf("default budget must not be negative")
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
