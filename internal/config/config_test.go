package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, 1, cfg.PrefetchMaxAttempts)
	assert.False(t, cfg.IsProduction())
}

func TestNew_FromEnvironment(t *testing.T) {
	t.Setenv("STOCKROOM_BASE_URL", "https://erp.example.com")
	t.Setenv("STOCKROOM_ENVIRONMENT", "production")
	t.Setenv("STOCKROOM_HTTP_TIMEOUT", "5s")
	t.Setenv("STOCKROOM_DEBUG", "true")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "https://erp.example.com", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_DefersValidation(t *testing.T) {
	t.Setenv("STOCKROOM_BASE_URL", "not a url")
	t.Setenv("STOCKROOM_LOG_LEVEL", "warn")

	_, err := New()
	require.Error(t, err)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	cfg.BaseURL = "http://127.0.0.1:9000"
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"bad url", func(c *Config) { c.BaseURL = "not a url" }, "invalid BASE_URL"},
		{"ftp", func(c *Config) { c.BaseURL = "ftp://erp.example.com" }, "unsupported BASE_URL scheme"},
		{"env", func(c *Config) { c.Environment = "qa" }, "unsupported ENVIRONMENT"},
		{"prod http", func(c *Config) { c.Environment = EnvProduction }, "must use https"},
		{"timeout", func(c *Config) { c.HTTPTimeout = 0 }, "HTTP_TIMEOUT"},
		{"shards", func(c *Config) { c.PrefetchShards = 0 }, "PREFETCH_SHARDS"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewForTesting("http://localhost:9000")
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
	require.NoError(t, NewForTesting("http://localhost:9000").Validate())
}
