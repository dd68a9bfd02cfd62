// Package config loads application configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds everything the API binary needs. Values come from
// environment variables; a .env file is loaded first when present.
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	SiteURL string `env:"SITE_URL" envDefault:"https://kulinarny-kutochok.com.ua"`

	MongoURI string `env:"MONGODB_URI"`
	DBName   string `env:"DB_NAME" envDefault:"cooking_corner"`

	JWTSecret string `env:"JWT_SECRET"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASS"`
	EmailFrom    string `env:"EMAIL_FROM"`

	UploadsDir string `env:"UPLOADS_DIR" envDefault:"uploads"`

	// Requests per minute allowed on the register/confirm/login routes,
	// keyed by client IP.
	AuthRateRPM int `env:"AUTH_RATE_RPM" envDefault:"10"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads .env (if any) and parses the environment into a Config.
func Load() (*Config, error) {
	// Missing .env is fine in production where real env vars are set.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGODB_URI must be set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	return &cfg, nil
}
