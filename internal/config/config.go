// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds every server setting
type Config struct {
	Host string `env:"DUTYLEDGER_HOST" envDefault:"0.0.0.0"`
	Port int    `env:"DUTYLEDGER_PORT" envDefault:"8080"`

	// Storage selects the backend: memory, redis or sqlite
	Storage    string `env:"DUTYLEDGER_STORAGE" envDefault:"memory"`
	RedisURL   string `env:"DUTYLEDGER_REDIS_URL"`
	SQLitePath string `env:"DUTYLEDGER_SQLITE_PATH" envDefault:"dutyledger.db"`

	LogLevel string `env:"DUTYLEDGER_LOG_LEVEL" envDefault:"info"`

	// ProcessLogLimit caps retained process log entries on every backend. Zero keeps all.
	ProcessLogLimit int64 `env:"DUTYLEDGER_PROCESS_LOG_LIMIT" envDefault:"10000"`
}

// Load parses the process environment
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment
func LoadFrom(environment map[string]string) (Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects inconsistent settings
func (c Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("DUTYLEDGER_PORT must be between 1 and 65535, got %d", c.Port))
	}
	switch c.Storage {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.RedisURL) == "" {
			errs = append(errs, errors.New("DUTYLEDGER_REDIS_URL is required when DUTYLEDGER_STORAGE=redis"))
		}
	case "sqlite":
		if strings.TrimSpace(c.SQLitePath) == "" {
			errs = append(errs, errors.New("DUTYLEDGER_SQLITE_PATH is required when DUTYLEDGER_STORAGE=sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("DUTYLEDGER_STORAGE must be memory, redis or sqlite, got %q", c.Storage))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.ProcessLogLimit < 0 {
		errs = append(errs, errors.New("DUTYLEDGER_PROCESS_LOG_LIMIT must not be negative"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SlogLevel returns the configured log level
func (c Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("DUTYLEDGER_LOG_LEVEL: %w", err)
	}
	return level, nil
}
