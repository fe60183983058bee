// Package config holds the service configuration, parsed from environment
// variables. main loads a .env file first, so local development only needs a
// checked-out .env.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration.
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	// AppBaseURL is the externally visible URL invitation links point at.
	AppBaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`

	AuthServiceURL    string `env:"AUTH_SERVICE_URL"`
	AuthServiceSecret string `env:"AUTH_SERVICE_SECRET"`

	SMTPAddr string `env:"SMTP_ADDR"`
	SMTPFrom string `env:"SMTP_FROM" envDefault:"no-reply@tenantflow.local"`

	// ReconcileInterval is how often the background sweep for stalled
	// onboarding attempts runs; ReconcileAfter is how long an attempt must
	// sit without progress before a sweep picks it up.
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"1m"`
	ReconcileAfter    time.Duration `env:"RECONCILE_AFTER" envDefault:"5m"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
