// Package config reads process configuration from the environment. A .env
// file in the working directory is loaded first by the entry point.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration.
type Config struct {
	Port          string        `env:"PORT" envDefault:"8080"`
	ContentPath   string        `env:"PORTFOLIO_CONTENT"`
	DBPath        string        `env:"DB_PATH" envDefault:"portfolio.db"`
	AdminUsername string        `env:"ADMIN_USERNAME"`
	AdminPassword string        `env:"ADMIN_PASSWORD"`
	ViewIdle      time.Duration `env:"VIEW_IDLE_TIMEOUT" envDefault:"30m"`
	SweepInterval time.Duration `env:"VIEW_SWEEP_INTERVAL" envDefault:"1m"`
	MaxViews      int           `env:"VIEW_LIMIT" envDefault:"5000"`
	Retention     time.Duration `env:"ANALYTICS_RETENTION" envDefault:"8760h"`
	GinMode       string        `env:"GIN_MODE" envDefault:"debug"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config from the environment and checks it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.ViewIdle <= 0 {
		return fmt.Errorf("VIEW_IDLE_TIMEOUT must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("VIEW_SWEEP_INTERVAL must be positive")
	}
	if c.MaxViews < 0 {
		return fmt.Errorf("VIEW_LIMIT must not be negative")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid GIN_MODE %q: must be one of debug, release, test", c.GinMode)
	}
	return nil
}

// Addr is the listen address.
func (c Config) Addr() string {
	return ":" + c.Port
}
