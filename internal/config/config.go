package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"
)

// Storage backends the service can persist sales to.
const (
	StorageMemory = "memory"
	StorageRemote = "remote"
)

// Config holds the service configuration, read from the environment.
type Config struct {
	AppEnv          string        `env:"APP_ENV" envDefault:"local"`
	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8081"`
	Storage         string        `env:"STORAGE" envDefault:"memory"`
	BackendURL      string        `env:"BACKEND_URL" envDefault:"http://127.0.0.1:3005/api"`
	BackendToken    string        `env:"BACKEND_TOKEN"`
	BackendTimeout  time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	switch c.Storage {
	case StorageMemory:
	case StorageRemote:
		u, err := url.Parse(c.BackendURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid BACKEND_URL: %q", c.BackendURL)
		}
	default:
		return fmt.Errorf("invalid STORAGE: %s (must be '%s' or '%s')", c.Storage, StorageMemory, StorageRemote)
	}
	if c.BackendTimeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}
