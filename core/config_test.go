package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultConfig verifies that DefaultConfig returns valid defaults
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "https://eshop.jemaristudio.id/", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 10, cfg.PageLimit)

	// Session defaults (in-memory, no redis required)
	assert.Equal(t, "inmemory", cfg.Session.Provider)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)

	// Image cache defaults
	assert.Equal(t, 256, cfg.ImageCache.Capacity)

	// Telemetry defaults (disabled by default)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "otlp", cfg.Telemetry.Exporter)

	// Logging defaults
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestDefaultConfigKubernetesLogFormat(t *testing.T) {
	t.Setenv("KUBERNETES_SERVICE_HOST", "10.0.0.1")
	cfg := DefaultConfig()
	assert.Equal(t, "json", cfg.Logging.Format)
}

// TestLoadFromEnv verifies environment variable precedence over defaults
func TestLoadFromEnv(t *testing.T) {
	t.Run("client-specific variables", func(t *testing.T) {
		t.Setenv("ESHOP_BASE_URL", "https://staging.example.com/")
		t.Setenv("ESHOP_TIMEOUT", "5s")
		t.Setenv("ESHOP_PAGE_LIMIT", "25")
		t.Setenv("ESHOP_LOG_LEVEL", "debug")

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromEnv())

		assert.Equal(t, "https://staging.example.com/", cfg.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.Timeout)
		assert.Equal(t, 25, cfg.PageLimit)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("standard variables as fallback", func(t *testing.T) {
		t.Setenv("REDIS_URL", "redis://localhost:6379")
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromEnv())

		assert.Equal(t, "redis://localhost:6379", cfg.Session.RedisURL)
		assert.Equal(t, "collector:4317", cfg.Telemetry.Endpoint)
	})

	t.Run("client-specific wins over standard", func(t *testing.T) {
		t.Setenv("ESHOP_SESSION_REDIS_URL", "redis://sessions:6379")
		t.Setenv("REDIS_URL", "redis://other:6379")

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromEnv())

		assert.Equal(t, "redis://sessions:6379", cfg.Session.RedisURL)
	})

	t.Run("invalid timeout is rejected", func(t *testing.T) {
		t.Setenv("ESHOP_TIMEOUT", "not-a-duration")

		cfg := DefaultConfig()
		err := cfg.LoadFromEnv()
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
	})
}

// TestNewConfigOptions verifies that functional options take highest priority
func TestNewConfigOptions(t *testing.T) {
	t.Setenv("ESHOP_BASE_URL", "https://from-env.example.com/")

	cfg, err := NewConfig(
		WithBaseURL("https://from-option.example.com/"),
		WithTimeout(3*time.Second),
		WithPageLimit(50),
		WithUserAgent("test-agent/1.0"),
	)
	require.NoError(t, err)

	assert.Equal(t, "https://from-option.example.com/", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, 50, cfg.PageLimit)
	assert.Equal(t, "test-agent/1.0", cfg.UserAgent)
}

func TestNewConfigOptionErrors(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"empty base URL", WithBaseURL("")},
		{"zero timeout", WithTimeout(0)},
		{"negative page limit", WithPageLimit(-1)},
		{"zero cache capacity", WithImageCacheCapacity(0)},
		{"unknown log format", WithLogFormat("xml")},
		{"zero session TTL", WithSessionTTL(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.opt)
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err))
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base URL", func(c *Config) { c.BaseURL = "" }},
		{"non-http base URL", func(c *Config) { c.BaseURL = "ftp://example.com" }},
		{"non-positive timeout", func(c *Config) { c.Timeout = 0 }},
		{"unknown session provider", func(c *Config) { c.Session.Provider = "etcd" }},
		{"redis provider without URL", func(c *Config) { c.Session.Provider = "redis" }},
		{"non-positive cache capacity", func(c *Config) { c.ImageCache.Capacity = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, IsConfigurationError(err))
		})
	}
}

func TestWithRedisSessions(t *testing.T) {
	cfg, err := NewConfig(WithRedisSessions("redis://localhost:6379"))
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Session.Provider)
	assert.Equal(t, "redis://localhost:6379", cfg.Session.RedisURL)
}

func TestWithTelemetry(t *testing.T) {
	cfg, err := NewConfig(WithTelemetry("collector:4317"))
	require.NoError(t, err)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "collector:4317", cfg.Telemetry.Endpoint)
	assert.Equal(t, "otlp", cfg.Telemetry.Exporter)

	cfg, err = NewConfig(WithStdoutTelemetry())
	require.NoError(t, err)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "stdout", cfg.Telemetry.Exporter)
}

// TestLoadFromFile verifies JSON and YAML config file merging
func TestLoadFromFile(t *testing.T) {
	t.Run("YAML file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		content := []byte("base_url: https://from-file.example.com/\npage_limit: 20\nlogging:\n  level: warn\n")
		require.NoError(t, os.WriteFile(path, content, 0o600))

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromFile(path))

		assert.Equal(t, "https://from-file.example.com/", cfg.BaseURL)
		assert.Equal(t, 20, cfg.PageLimit)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("JSON file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.json")
		content := []byte(`{"base_url": "https://json.example.com/", "page_limit": 15}`)
		require.NoError(t, os.WriteFile(path, content, 0o600))

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromFile(path))

		assert.Equal(t, "https://json.example.com/", cfg.BaseURL)
		assert.Equal(t, 15, cfg.PageLimit)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.LoadFromFile("config.toml")
		require.Error(t, err)
		assert.True(t, IsConfigurationError(err))
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml")))
	})
}
