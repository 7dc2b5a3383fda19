package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, read from the environment at startup.
type Config struct {
	Env  string `env:"ENV"  envDefault:"production"`
	Port string `env:"PORT" envDefault:"8080"`

	DatabaseURL string `env:"DATABASE_URL"`

	JWTSecret    string        `env:"JWT_SECRET"`
	JWTAudience  string        `env:"JWT_AUDIENCE"  envDefault:"authenticated"`
	JWTIssuer    string        `env:"JWT_ISSUER"`
	IdentityMode string        `env:"IDENTITY_MODE" envDefault:"hosted"`
	TokenTTL     time.Duration `env:"LOCAL_TOKEN_TTL" envDefault:"24h"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"*"`

	SubmitRateMax    int           `env:"RATE_LIMIT_SUBMIT_MAX"    envDefault:"5"`
	SubmitRateWindow time.Duration `env:"RATE_LIMIT_SUBMIT_WINDOW" envDefault:"1m"`
	RedisURL         string        `env:"REDIS_URL"`

	SiteContentPath string `env:"SITE_CONTENT_PATH" envDefault:"content/site.yaml"`
	StaticDir       string `env:"STATIC_DIR"`

	AlertWebhookURL string `env:"ALERT_WEBHOOK_URL"`

	NotifyMaxAge        time.Duration `env:"NOTIFY_MAX_AGE"        envDefault:"24h"`
	NotifyPruneInterval time.Duration `env:"NOTIFY_PRUNE_INTERVAL" envDefault:"1m"`

	OTELEndpoint string `env:"OTEL_ENDPOINT"`
}

const (
	IdentityHosted = "hosted"
	IdentityLocal  = "local"
)

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDatabase reads only what the operator CLI needs.
func LoadDatabase() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.normalize()
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is not set")
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.IdentityMode = strings.ToLower(strings.TrimSpace(c.IdentityMode))
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	c.JWTSecret = strings.TrimSpace(c.JWTSecret)
	c.AdminAPIKey = strings.TrimSpace(c.AdminAPIKey)
	c.CORSOrigin = strings.TrimSpace(c.CORSOrigin)
	if c.CORSOrigin == "" {
		c.CORSOrigin = "*"
	}
	if c.SubmitRateMax <= 0 {
		c.SubmitRateMax = 5
	}
	if c.SubmitRateWindow <= 0 {
		c.SubmitRateWindow = time.Minute
	}
	if c.NotifyMaxAge <= 0 {
		c.NotifyMaxAge = 24 * time.Hour
	}
	if c.NotifyPruneInterval <= 0 {
		c.NotifyPruneInterval = time.Minute
	}
}

// Validate reports the first setting that prevents the API from starting.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	switch c.IdentityMode {
	case IdentityHosted, IdentityLocal:
	default:
		return fmt.Errorf("IDENTITY_MODE must be %q or %q, got %q", IdentityHosted, IdentityLocal, c.IdentityMode)
	}
	return nil
}

func (c Config) IsDev() bool {
	return c.Env == "dev"
}
