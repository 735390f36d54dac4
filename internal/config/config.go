// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime knob for the register service. With no
// environment set it boots against an in-memory database, which is enough
// for local development and tests.
type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// PostgresDSN takes priority when set; otherwise the service falls
	// back to the embedded SQLite store at SQLitePath.
	PostgresDSN string `env:"POSTGRES_DSN"`
	SQLitePath  string `env:"SQLITE_PATH"`

	// RedisAddr enables the shared rate limiter. Empty means the
	// per-process in-memory limiter.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	WriteRateLimit  int           `env:"WRITE_RATE_LIMIT" envDefault:"60"`
	WriteRateWindow time.Duration `env:"WRITE_RATE_WINDOW" envDefault:"1m"`

	FraudThreshold float64 `env:"FRAUD_THRESHOLD" envDefault:"15"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
