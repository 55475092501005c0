// Package config loads server settings from the environment.
//
// Values come from process environment variables, optionally seeded from a
// .env file in the working directory. Real environment variables win.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds runtime settings for the otpboard server.
type Config struct {
	Port     string `env:"PORT" envDefault:"8080"`
	BaseURL  string `env:"OTPBOARD_BASE_URL" envDefault:"http://localhost:8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	GinMode  string `env:"GIN_MODE" envDefault:"release"`

	DBDriver  string        `env:"OTPBOARD_DB_DRIVER"`
	DBDSN     string        `env:"OTPBOARD_DB_DSN" envDefault:"otpboard.db"`
	DBTimeout time.Duration `env:"OTPBOARD_DB_TIMEOUT" envDefault:"5s"`

	// AuthSecretKey is the shared secret that unlocks the dashboard
	AuthSecretKey string `env:"AUTH_SECRET_KEY"`
	// JWTSecret signs dashboard session tokens
	JWTSecret string `env:"JWT_SECRET" envDefault:"otpboard-dev-secret-change-in-production"`
	// SessionDuration is how long a dashboard login stays valid
	SessionDuration time.Duration `env:"OTPBOARD_SESSION_DURATION" envDefault:"168h"`
	// APIAuthToken gates the programmatic code endpoint; empty disables it
	APIAuthToken string `env:"API_AUTH_TOKEN"`
	// CronSecret optionally gates the keep-alive endpoint
	CronSecret string `env:"CRON_SECRET"`

	DefaultPeriod int `env:"OTPBOARD_DEFAULT_PERIOD" envDefault:"30"`
}

// Load reads an optional .env file and parses the environment into a Config
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse parses the current environment into a Config without reading .env
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the server cannot run without
func (c *Config) Validate() error {
	if c.DefaultPeriod <= 0 {
		return fmt.Errorf("OTPBOARD_DEFAULT_PERIOD must be positive, got %d", c.DefaultPeriod)
	}
	if c.DBTimeout <= 0 {
		return fmt.Errorf("OTPBOARD_DB_TIMEOUT must be positive, got %s", c.DBTimeout)
	}
	if c.SessionDuration <= 0 {
		return fmt.Errorf("OTPBOARD_SESSION_DURATION must be positive, got %s", c.SessionDuration)
	}
	return nil
}
