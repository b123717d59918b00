package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the eshop client.
// It supports three-layer configuration priority:
//  1. Default values (lowest priority)
//  2. Environment variables (medium priority)
//  3. Functional options (highest priority)
//
// Example usage:
//
//	cfg, err := NewConfig(
//	    WithBaseURL("https://eshop.jemaristudio.id/"),
//	    WithTimeout(5*time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
type Config struct {
	// API endpoint configuration
	BaseURL   string        `json:"base_url" yaml:"base_url"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
	UserAgent string        `json:"user_agent" yaml:"user_agent"`

	// PageLimit is the fixed page size used by product listing calls.
	PageLimit int `json:"page_limit" yaml:"page_limit"`

	// Session storage configuration
	Session SessionConfig `json:"session" yaml:"session"`

	// Image cache configuration
	ImageCache ImageCacheConfig `json:"image_cache" yaml:"image_cache"`

	// Telemetry configuration (optional module)
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SessionConfig contains session state storage configuration.
// Supports in-memory storage (default) or Redis for server-side embedders
// that need sessions shared across replicas.
type SessionConfig struct {
	Provider  string        `json:"provider" yaml:"provider"` // "inmemory" or "redis"
	RedisURL  string        `json:"redis_url" yaml:"redis_url"`
	Namespace string        `json:"namespace" yaml:"namespace"`
	TTL       time.Duration `json:"ttl" yaml:"ttl"`
}

// ImageCacheConfig bounds the URL-keyed image cache.
type ImageCacheConfig struct {
	Capacity int `json:"capacity" yaml:"capacity"`
}

// TelemetryConfig contains observability configuration for distributed tracing.
// This is an optional module - telemetry is only initialized when Enabled=true.
type TelemetryConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Endpoint    string `json:"endpoint" yaml:"endpoint"`
	ServiceName string `json:"service_name" yaml:"service_name"`
	Exporter    string `json:"exporter" yaml:"exporter"` // "otlp" or "stdout"
	Insecure    bool   `json:"insecure" yaml:"insecure"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "json" or "text"
}

// Option is a functional option for configuring the client.
// Options are applied after defaults and environment variables,
// so they have the highest priority.
type Option func(*Config) error

// DefaultConfig returns a configuration with sensible defaults.
// The defaults can be overridden using environment variables or functional options.
func DefaultConfig() *Config {
	cfg := &Config{
		BaseURL:   "https://eshop.jemaristudio.id/",
		Timeout:   10 * time.Second,
		UserAgent: "eshop-go/" + Version,
		PageLimit: 10,
		Session: SessionConfig{
			Provider:  "inmemory",
			Namespace: "eshop:sessions",
			TTL:       24 * time.Hour,
		},
		ImageCache: ImageCacheConfig{
			Capacity: 256,
		},
		Telemetry: TelemetryConfig{
			Enabled:  false,
			Exporter: "otlp",
			Insecure: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}

	// Structured logs for K8s log aggregation
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		cfg.Logging.Format = "json"
	}

	return cfg
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables take precedence over defaults but are overridden
// by functional options.
//
// Variable naming convention:
//   - Client-specific: ESHOP_<SETTING>
//   - Standard variables: REDIS_URL, OTEL_EXPORTER_OTLP_ENDPOINT
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("ESHOP_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("ESHOP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ESHOP_TIMEOUT %q: %w", v, ErrInvalidConfiguration)
		}
		c.Timeout = d
	}
	if v := os.Getenv("ESHOP_PAGE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PageLimit = n
		}
	}
	if v := os.Getenv("ESHOP_SESSION_PROVIDER"); v != "" {
		c.Session.Provider = v
	}
	if v := firstEnv("ESHOP_SESSION_REDIS_URL", "REDIS_URL"); v != "" {
		c.Session.RedisURL = v
	}
	if v := os.Getenv("ESHOP_IMAGE_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.ImageCache.Capacity = n
		}
	}
	if v := os.Getenv("ESHOP_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = parseBool(v)
	}
	if v := firstEnv("ESHOP_TELEMETRY_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		c.Telemetry.Endpoint = v
	}
	if v := firstEnv("ESHOP_TELEMETRY_SERVICE_NAME", "OTEL_SERVICE_NAME"); v != "" {
		c.Telemetry.ServiceName = v
	}
	if v := os.Getenv("ESHOP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ESHOP_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	return nil
}

// LoadFromFile merges configuration from a JSON or YAML file.
// File values override defaults but are overridden by environment
// variables and functional options.
func (c *Config) LoadFromFile(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config file type %q: %w", ext, ErrInvalidConfiguration)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	switch ext {
	case ".json":
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing JSON config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parsing YAML config: %w", err)
		}
	}
	return nil
}

// Validate checks the configuration for invalid combinations.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required: %w", ErrMissingConfiguration)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("base URL %q must be http or https: %w", c.BaseURL, ErrInvalidConfiguration)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %w", ErrInvalidConfiguration)
	}
	if c.Session.Provider != "inmemory" && c.Session.Provider != "redis" {
		return fmt.Errorf("unknown session provider %q: %w", c.Session.Provider, ErrInvalidConfiguration)
	}
	if c.Session.Provider == "redis" && c.Session.RedisURL == "" {
		return fmt.Errorf("redis session provider requires a redis URL: %w", ErrMissingConfiguration)
	}
	if c.ImageCache.Capacity <= 0 {
		return fmt.Errorf("image cache capacity must be positive: %w", ErrInvalidConfiguration)
	}
	return nil
}

// NewConfig creates a configuration with the three-layer priority applied.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WithBaseURL sets the storefront API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) error {
		if url == "" {
			return fmt.Errorf("base URL cannot be empty: %w", ErrInvalidConfiguration)
		}
		c.BaseURL = url
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive: %w", ErrInvalidConfiguration)
		}
		c.Timeout = timeout
		return nil
	}
}

// WithUserAgent overrides the User-Agent header sent on every request.
func WithUserAgent(ua string) Option {
	return func(c *Config) error {
		c.UserAgent = ua
		return nil
	}
}

// WithPageLimit sets the fixed page size for product listings.
func WithPageLimit(limit int) Option {
	return func(c *Config) error {
		if limit <= 0 {
			return fmt.Errorf("page limit must be positive: %w", ErrInvalidConfiguration)
		}
		c.PageLimit = limit
		return nil
	}
}

// WithRedisSessions switches session storage to Redis.
func WithRedisSessions(redisURL string) Option {
	return func(c *Config) error {
		c.Session.Provider = "redis"
		c.Session.RedisURL = redisURL
		return nil
	}
}

// WithSessionTTL sets the TTL for redis-backed sessions.
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *Config) error {
		if ttl <= 0 {
			return fmt.Errorf("session TTL must be positive: %w", ErrInvalidConfiguration)
		}
		c.Session.TTL = ttl
		return nil
	}
}

// WithImageCacheCapacity bounds the LRU image cache.
func WithImageCacheCapacity(capacity int) Option {
	return func(c *Config) error {
		if capacity <= 0 {
			return fmt.Errorf("image cache capacity must be positive: %w", ErrInvalidConfiguration)
		}
		c.ImageCache.Capacity = capacity
		return nil
	}
}

// WithTelemetry enables distributed tracing with the given OTLP endpoint.
func WithTelemetry(endpoint string) Option {
	return func(c *Config) error {
		c.Telemetry.Enabled = true
		c.Telemetry.Endpoint = endpoint
		return nil
	}
}

// WithStdoutTelemetry enables tracing with the stdout exporter (local development).
func WithStdoutTelemetry() Option {
	return func(c *Config) error {
		c.Telemetry.Enabled = true
		c.Telemetry.Exporter = "stdout"
		return nil
	}
}

// WithLogLevel sets the log level (debug, info, warn, error).
func WithLogLevel(level string) Option {
	return func(c *Config) error {
		c.Logging.Level = level
		return nil
	}
}

// WithLogFormat sets the log output format ("json" or "text").
func WithLogFormat(format string) Option {
	return func(c *Config) error {
		if format != "json" && format != "text" {
			return fmt.Errorf("unknown log format %q: %w", format, ErrInvalidConfiguration)
		}
		c.Logging.Format = format
		return nil
	}
}

// WithConfigFile merges settings from a JSON or YAML file.
func WithConfigFile(path string) Option {
	return func(c *Config) error {
		return c.LoadFromFile(path)
	}
}

func firstEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return false
	}
	return b
}
