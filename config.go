package arduinocloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

// Token cache types understood by Config.
const (
	TokenCacheNone   = "none"
	TokenCacheMemory = "memory"
	TokenCacheFile   = "file"
	TokenCacheRedis  = "redis"
)

// Config is the file and environment configuration of a Client.
type Config struct {
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	BaseURL      string        `yaml:"base_url"`
	TokenURL     string        `yaml:"token_url"`
	Audience     string        `yaml:"audience"`
	Timeout      time.Duration `yaml:"timeout"`
	LogLevel     string        `yaml:"log_level"`

	Retry      RetrySettings      `yaml:"retry"`
	TokenCache TokenCacheSettings `yaml:"token_cache"`
}

// RetrySettings mirrors RetryConfig in the configuration file.
type RetrySettings struct {
	// Count is the total number of attempts per call.
	Count    int           `yaml:"count"`
	Delay    time.Duration `yaml:"delay"`
	MaxDelay time.Duration `yaml:"max_delay"`
	Jitter   float64       `yaml:"jitter"`
}

// TokenCacheSettings selects and configures the durable token cache.
type TokenCacheSettings struct {
	Type     string        `yaml:"type"`
	Path     string        `yaml:"path"`
	RedisURL string        `yaml:"redis_url"`
	RedisKey string        `yaml:"redis_key"`
	Lifetime time.Duration `yaml:"lifetime"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	retry := DefaultRetryConfig()
	return &Config{
		BaseURL:  DefaultBaseURL,
		TokenURL: DefaultTokenURL,
		Audience: DefaultAudience,
		Timeout:  DefaultTimeout,
		LogLevel: "info",
		Retry: RetrySettings{
			Count:    retry.MaxAttempts,
			Delay:    retry.BaseDelay,
			MaxDelay: retry.MaxDelay,
			Jitter:   retry.Jitter,
		},
		TokenCache: TokenCacheSettings{
			Type:     TokenCacheFile,
			Path:     DefaultTokenCachePath(),
			RedisKey: DefaultRedisTokenKey,
			Lifetime: DefaultTokenLifetime,
		},
	}
}

// LoadConfig reads configuration from an optional YAML file and applies
// environment overrides on top. An empty path skips the file.
// ${VAR} references inside the file are expanded from the environment.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from ARDUINO_* variables. CLIENT_ID and
// CLIENT_SECRET are accepted as fallbacks for the credentials.
func (c *Config) applyEnv() error {
	setString(&c.ClientID, "ARDUINO_CLIENT_ID", "CLIENT_ID")
	setString(&c.ClientSecret, "ARDUINO_CLIENT_SECRET", "CLIENT_SECRET")
	setString(&c.BaseURL, "ARDUINO_BASE_URL")
	setString(&c.TokenURL, "ARDUINO_TOKEN_URL")
	setString(&c.LogLevel, "ARDUINO_LOG_LEVEL")
	setString(&c.TokenCache.Type, "ARDUINO_TOKEN_CACHE")
	setString(&c.TokenCache.Path, "ARDUINO_TOKEN_CACHE_PATH")
	setString(&c.TokenCache.RedisURL, "ARDUINO_REDIS_URL")

	if v := os.Getenv("ARDUINO_RETRY_COUNT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ARDUINO_RETRY_COUNT %q: %w", v, err)
		}
		c.Retry.Count = n
	}
	if v := os.Getenv("ARDUINO_RETRY_DELAY"); v != "" {
		d, err := parseDelay(v)
		if err != nil {
			return fmt.Errorf("invalid ARDUINO_RETRY_DELAY %q: %w", v, err)
		}
		c.Retry.Delay = d
	}
	return nil
}

func setString(dst *string, keys ...string) {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			*dst = v
			return
		}
	}
}

// parseDelay accepts a Go duration ("500ms") or a whole number of seconds.
func parseDelay(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	secs, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("want a duration or a number of seconds")
	}
	return time.Duration(secs) * time.Second, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return ErrEmptyClientID
	}
	if c.ClientSecret == "" {
		return ErrEmptyClientSecret
	}
	if c.Retry.Count < 1 {
		return fmt.Errorf("retry count must be at least 1, got %d", c.Retry.Count)
	}
	if c.Retry.Delay < 0 || c.Retry.MaxDelay < 0 {
		return errors.New("retry delays cannot be negative")
	}
	if c.Retry.Jitter < 0 || c.Retry.Jitter > 1 {
		return fmt.Errorf("retry jitter must be within [0, 1], got %g", c.Retry.Jitter)
	}
	if c.Timeout < 0 {
		return errors.New("timeout cannot be negative")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	switch strings.ToLower(c.TokenCache.Type) {
	case "", TokenCacheNone, TokenCacheMemory:
	case TokenCacheFile:
		if c.TokenCache.Path == "" {
			return errors.New("token cache path is required for the file cache")
		}
	case TokenCacheRedis:
		if c.TokenCache.RedisURL == "" {
			return errors.New("redis URL is required for the redis token cache")
		}
	default:
		return fmt.Errorf("unknown token cache type %q", c.TokenCache.Type)
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// Credentials returns the configured client credentials.
func (c *Config) Credentials() Credentials {
	return Credentials{ClientID: c.ClientID, ClientSecret: c.ClientSecret}
}

// RetryConfig converts the retry settings.
func (c *Config) RetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: c.Retry.Count,
		BaseDelay:   c.Retry.Delay,
		MaxDelay:    c.Retry.MaxDelay,
		Jitter:      c.Retry.Jitter,
	}
}

// ClientOptions converts the configuration to client options.
// A redis token cache is connected here, so ctx bounds the connection check.
func (c *Config) ClientOptions(ctx context.Context) ([]Option, error) {
	opts := []Option{
		WithRetry(c.RetryConfig()),
	}
	if c.BaseURL != "" {
		opts = append(opts, WithBaseURL(c.BaseURL))
	}
	if c.TokenURL != "" {
		opts = append(opts, WithTokenURL(c.TokenURL))
	}
	if c.Audience != "" {
		opts = append(opts, WithAudience(c.Audience))
	}
	if c.Timeout > 0 {
		opts = append(opts, WithTimeout(c.Timeout))
	}
	if c.TokenCache.Lifetime > 0 {
		opts = append(opts, WithTokenLifetime(c.TokenCache.Lifetime))
	}

	switch strings.ToLower(c.TokenCache.Type) {
	case TokenCacheMemory:
		opts = append(opts, WithTokenCache(NewMemoryTokenCache()))
	case TokenCacheFile:
		opts = append(opts, WithTokenCache(NewFileTokenCache(c.TokenCache.Path)))
	case TokenCacheRedis:
		cache, err := NewRedisTokenCacheFromURL(ctx, c.TokenCache.RedisURL, c.TokenCache.RedisKey)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithTokenCache(cache))
	}

	return opts, nil
}

// NewClientFromConfig validates cfg and builds a Client from it. extra
// options are applied after the configured ones.
func NewClientFromConfig(ctx context.Context, cfg *Config, extra ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := cfg.ClientOptions(ctx)
	if err != nil {
		return nil, err
	}
	return NewClient(cfg.Credentials(), append(opts, extra...)...)
}
