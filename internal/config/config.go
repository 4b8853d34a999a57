// Package config loads client settings from STOCKROOM_* environment
// variables.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment names the backend the client talks to.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds client settings.
// Example: STOCKROOM_BASE_URL=https://erp.example.com STOCKROOM_DEBUG=true
type Config struct {
	BaseURL     string        `envconfig:"BASE_URL" default:"http://localhost:8080"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`
	Environment Environment   `envconfig:"ENVIRONMENT" default:"development"`

	// SessionDB is the SQLite file holding the persisted session. Empty
	// means ~/.stockroom/session.db (or $STOCKROOM_HOME/session.db).
	SessionDB string `envconfig:"SESSION_DB" default:""`

	Debug    bool   `envconfig:"DEBUG" default:"false"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	PrefetchShards      int `envconfig:"PREFETCH_SHARDS" default:"4"`
	PrefetchMaxAttempts int `envconfig:"PREFETCH_MAX_ATTEMPTS" default:"1"`

	// MockAddr is where `stockctl mock-server` listens.
	MockAddr string `envconfig:"MOCK_ADDR" default:":8080"`
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid BASE_URL %q", c.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported BASE_URL scheme: %s", u.Scheme)
	}
	switch c.Environment {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		return fmt.Errorf("unsupported ENVIRONMENT: %s", c.Environment)
	}
	if c.Environment == EnvProduction && u.Scheme != "https" {
		return fmt.Errorf("production BASE_URL must use https")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.PrefetchShards <= 0 || c.PrefetchMaxAttempts <= 0 {
		return fmt.Errorf("PREFETCH_SHARDS and PREFETCH_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// Load reads the environment without validating, so callers can apply
// overrides (e.g. command-line flags) before calling Validate.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("STOCKROOM", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	return &cfg, nil
}

// New reads and validates the environment.
func New() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("base_url", cfg.BaseURL).
		Str("environment", string(cfg.Environment)).
		Dur("http_timeout", cfg.HTTPTimeout).
		Bool("debug", cfg.Debug).
		Str("session_db", cfg.SessionDB).
		Int("prefetch_shards", cfg.PrefetchShards).
		Msg("Configuration loaded")

	return cfg, nil
}

// NewForTesting returns a config pointing at baseURL with defaults.
func NewForTesting(baseURL string) *Config {
	return &Config{
		BaseURL:             baseURL,
		HTTPTimeout:         5 * time.Second,
		Environment:         EnvDevelopment,
		LogLevel:            "debug",
		PrefetchShards:      2,
		PrefetchMaxAttempts: 1,
		MockAddr:            ":0",
	}
}

// IsProduction reports whether the client targets production.
func (c *Config) IsProduction() bool { return c.Environment == EnvProduction }
