package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"PORT", "LOG_LEVEL", "TELEGRAM_BOT_TOKEN", "INITDATA_MAX_AGE", "JWT_SECRET",
	"SESSION_TTL", "OPENFORT_SECRET_KEY", "OPENFORT_BASE_URL", "CHAIN_ID",
	"DATABASE_TYPE", "DATABASE_PATH", "POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_DB",
	"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_SSL_MODE", "REDIS_ADDRESS",
	"REDIS_PASSWORD", "REDIS_DB", "REDIS_POOL_SIZE", "RATE_LIMIT_ENABLED",
	"RATE_LIMIT_DEFAULT", "RATE_LIMIT_WINDOW", "TLS_CERT_FILE", "TLS_KEY_FILE",
}

// clearEnv blanks every variable Load reads; getEnv treats empty as unset
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
	}
}

func validConfig() *Config {
	cfg := Load()
	cfg.BotToken = "123456:TEST-TOKEN"
	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "86400", cfg.InitDataMaxAge)
	assert.Equal(t, "1h", cfg.SessionTTL)
	assert.Equal(t, "https://api.openfort.xyz", cfg.OpenfortBaseURL)
	assert.Equal(t, "80002", cfg.ChainID)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, "./miniapp_auth.db", cfg.DatabasePath)
	assert.Empty(t, cfg.RedisAddress)
	assert.True(t, cfg.RateLimitEnabled)
	assert.False(t, cfg.WalletEnabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("TELEGRAM_BOT_TOKEN", "42:abc")
	t.Setenv("INITDATA_MAX_AGE", "300")
	t.Setenv("OPENFORT_SECRET_KEY", "sk_test_x")
	t.Setenv("CHAIN_ID", "137")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("REDIS_ADDRESS", "redis:6379")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "42:abc", cfg.BotToken)
	assert.Equal(t, 300*time.Second, cfg.MaxAge())
	assert.True(t, cfg.WalletEnabled())
	assert.Equal(t, int64(137), cfg.ChainIDValue())
	assert.False(t, cfg.RateLimitEnabled)
	assert.Equal(t, "redis:6379", cfg.RedisAddress)
	assert.Equal(t, 3, cfg.RedisDBValue())
}

func TestLoad_InvalidBoolFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_ENABLED", "maybe")

	assert.True(t, Load().RateLimitEnabled)
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	t.Run("valid defaults", func(t *testing.T) {
		cfg := validConfig()
		require.NoError(t, cfg.Validate())
		assert.Equal(t, 24*time.Hour, cfg.MaxAge())
		assert.Equal(t, time.Hour, cfg.SessionLifetime())

		limit, window := cfg.RateLimit()
		assert.Equal(t, 60, limit)
		assert.Equal(t, time.Minute, window)
	})

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"missing bot token", func(c *Config) { c.BotToken = "" }, "TELEGRAM_BOT_TOKEN"},
		{"zero max age", func(c *Config) { c.InitDataMaxAge = "0" }, "INITDATA_MAX_AGE"},
		{"non numeric max age", func(c *Config) { c.InitDataMaxAge = "1d" }, "INITDATA_MAX_AGE"},
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"short jwt secret", func(c *Config) { c.JWTSecret = "short" }, "at least 32"},
		{"bad session ttl", func(c *Config) { c.SessionTTL = "forever" }, "SESSION_TTL"},
		{"bad port", func(c *Config) { c.Port = "70000" }, "PORT"},
		{"tls cert without key", func(c *Config) { c.TLSCertFile = "/etc/tls/cert.pem" }, "TLS_KEY_FILE"},
		{"bad chain id", func(c *Config) {
			c.OpenfortSecretKey = "sk"
			c.ChainID = "polygon"
		}, "CHAIN_ID"},
		{"unknown database", func(c *Config) { c.DatabaseType = "mysql" }, "DATABASE_TYPE"},
		{"postgres without host", func(c *Config) {
			c.DatabaseType = "postgres"
			c.PostgresHost = ""
		}, "POSTGRES_HOST"},
		{"redis db out of range", func(c *Config) {
			c.RedisAddress = "localhost:6379"
			c.RedisDB = "16"
		}, "REDIS_DB"},
		{"bad rate limit", func(c *Config) { c.RateLimitDefault = "0" }, "RATE_LIMIT_DEFAULT"},
		{"bad rate window", func(c *Config) { c.RateLimitWindow = "soon" }, "RATE_LIMIT_WINDOW"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	t.Run("errors never echo the bot token", func(t *testing.T) {
		cfg := validConfig()
		cfg.JWTSecret = "short"
		err := cfg.Validate()
		require.Error(t, err)
		assert.NotContains(t, err.Error(), cfg.BotToken)
	})

	t.Run("rate limit values ignored when disabled", func(t *testing.T) {
		cfg := validConfig()
		cfg.RateLimitEnabled = false
		cfg.RateLimitWindow = "soon"
		assert.NoError(t, cfg.Validate())
	})
}
