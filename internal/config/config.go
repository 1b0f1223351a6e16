package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// devSecret is the documented insecure fallback for local development only.
// Outside development mode a missing JWT_SECRET fails startup.
const devSecret = "dev-secret-change-in-production"

var ErrSecretRequired = errors.New("JWT_SECRET must be set when ENV is not development")

// Config holds all process configuration. It is read once at startup and
// passed into the components that need it; nothing reads the environment
// after that.
type Config struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	Env            string        `env:"ENV" envDefault:"development"`
	DatabaseDriver string        `env:"DATABASE_DRIVER" envDefault:"sqlite"`
	DatabaseDSN    string        `env:"DATABASE_DSN" envDefault:"membergate.db"`
	JWTSecret      string        `env:"JWT_SECRET"`
	TokenTTL       time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.JWTSecret == "" {
		if cfg.Env != "development" {
			return Config{}, ErrSecretRequired
		}
		slog.Warn("JWT_SECRET not set, using insecure development secret")
		cfg.JWTSecret = devSecret
	}

	return cfg, nil
}
