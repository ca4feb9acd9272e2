package arduinocloud

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"ARDUINO_CLIENT_ID", "ARDUINO_CLIENT_SECRET", "CLIENT_ID", "CLIENT_SECRET",
	"ARDUINO_BASE_URL", "ARDUINO_TOKEN_URL", "ARDUINO_LOG_LEVEL",
	"ARDUINO_TOKEN_CACHE", "ARDUINO_TOKEN_CACHE_PATH", "ARDUINO_REDIS_URL",
	"ARDUINO_RETRY_COUNT", "ARDUINO_RETRY_DELAY",
}

// clearConfigEnv blanks every variable LoadConfig reads for the test's duration.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arduino.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultTokenURL, cfg.TokenURL)
	assert.Equal(t, 3, cfg.Retry.Count)
	assert.Equal(t, time.Second, cfg.Retry.Delay)
	assert.Equal(t, TokenCacheFile, cfg.TokenCache.Type)
	assert.Equal(t, DefaultTokenCachePath(), cfg.TokenCache.Path)

	assert.ErrorIs(t, cfg.Validate(), ErrEmptyClientID)
}

func TestLoadConfig_File(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("TEST_ARDUINO_SECRET", "from-env")

	path := writeConfigFile(t, `
client_id: file-id
client_secret: ${TEST_ARDUINO_SECRET}
timeout: 10s
log_level: debug
retry:
  count: 5
  delay: 250ms
  max_delay: 4s
  jitter: 0.25
token_cache:
  type: memory
  lifetime: 30m
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "file-id", cfg.ClientID)
	assert.Equal(t, "from-env", cfg.ClientSecret)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 5, cfg.Retry.Count)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.Delay)
	assert.Equal(t, 4*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, 0.25, cfg.Retry.Jitter)
	assert.Equal(t, TokenCacheMemory, cfg.TokenCache.Type)
	assert.Equal(t, 30*time.Minute, cfg.TokenCache.Lifetime)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL, "unset fields keep defaults")

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	assert.Equal(t, Credentials{ClientID: "file-id", ClientSecret: "from-env"}, cfg.Credentials())
	assert.Equal(t, &RetryConfig{MaxAttempts: 5, BaseDelay: 250 * time.Millisecond, MaxDelay: 4 * time.Second, Jitter: 0.25}, cfg.RetryConfig())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfigFile(t, "client_id: file-id\nclient_secret: file-secret\n")

	t.Setenv("ARDUINO_CLIENT_ID", "env-id")
	t.Setenv("CLIENT_SECRET", "fallback-secret")
	t.Setenv("ARDUINO_RETRY_COUNT", "7")
	t.Setenv("ARDUINO_RETRY_DELAY", "2")
	t.Setenv("ARDUINO_TOKEN_CACHE", "none")
	t.Setenv("ARDUINO_BASE_URL", "https://example.test")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-id", cfg.ClientID)
	assert.Equal(t, "fallback-secret", cfg.ClientSecret)
	assert.Equal(t, 7, cfg.Retry.Count)
	assert.Equal(t, 2*time.Second, cfg.Retry.Delay)
	assert.Equal(t, TokenCacheNone, cfg.TokenCache.Type)
	assert.Equal(t, "https://example.test", cfg.BaseURL)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		clearConfigEnv(t)
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		clearConfigEnv(t)
		_, err := LoadConfig(writeConfigFile(t, "retry: [unterminated"))
		assert.Error(t, err)
	})

	t.Run("invalid retry count", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("ARDUINO_RETRY_COUNT", "many")
		_, err := LoadConfig("")
		assert.ErrorContains(t, err, "ARDUINO_RETRY_COUNT")
	})

	t.Run("invalid retry delay", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("ARDUINO_RETRY_DELAY", "soon")
		_, err := LoadConfig("")
		assert.ErrorContains(t, err, "ARDUINO_RETRY_DELAY")
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.ClientID = "id"
		cfg.ClientSecret = "secret"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing secret", func(c *Config) { c.ClientSecret = "" }, true},
		{"zero retry count", func(c *Config) { c.Retry.Count = 0 }, true},
		{"negative delay", func(c *Config) { c.Retry.Delay = -time.Second }, true},
		{"jitter above one", func(c *Config) { c.Retry.Jitter = 1.5 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"unknown cache", func(c *Config) { c.TokenCache.Type = "s3" }, true},
		{"file cache without path", func(c *Config) { c.TokenCache.Path = "" }, true},
		{"redis without url", func(c *Config) { c.TokenCache.Type = TokenCacheRedis }, true},
		{"no cache", func(c *Config) { c.TokenCache.Type = TokenCacheNone; c.TokenCache.Path = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewClientFromConfig(t *testing.T) {
	fc := newFakeCloud(t)
	fc.handle("GET /iot/v2/things", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []Thing{{ID: "t1"}})
	})

	cfg := DefaultConfig()
	cfg.ClientID = "id"
	cfg.ClientSecret = "secret"
	cfg.BaseURL = fc.server.URL
	cfg.TokenURL = fc.tokenURL()
	cfg.TokenCache.Path = filepath.Join(t.TempDir(), "AccessToken.json")

	client, err := NewClientFromConfig(context.Background(), cfg)
	require.NoError(t, err)

	things, err := client.GetThings(context.Background())
	require.NoError(t, err)
	assert.Len(t, things, 1)

	_, err = os.Stat(cfg.TokenCache.Path)
	assert.NoError(t, err, "file cache should hold the token")

	cfg.ClientID = ""
	_, err = NewClientFromConfig(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrEmptyClientID)
}
