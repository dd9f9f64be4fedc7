// Package config loads the service configuration from environment variables
// with sensible defaults and validates it before the server starts.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//   - TLS_CERT_FILE, TLS_KEY_FILE: Serve HTTPS when both are set
//
// Init Data Verification:
//   - TELEGRAM_BOT_TOKEN: Bot token used to derive the verification key (required)
//   - INITDATA_MAX_AGE: Freshness window in seconds (default: 86400)
//
// Sessions:
//   - JWT_SECRET: Session token signing secret (required, minimum 32 characters)
//   - SESSION_TTL: Session token lifetime (default: 1h)
//
// Wallet Provisioning:
//   - OPENFORT_SECRET_KEY: Openfort API secret; provisioning is disabled when unset
//   - OPENFORT_BASE_URL: Openfort API base URL (default: https://api.openfort.xyz)
//   - CHAIN_ID: Chain the accounts are created on (default: 80002)
//
// Database Configuration:
//   - DATABASE_TYPE: "sqlite" or "postgres" (default: sqlite)
//   - DATABASE_PATH: SQLite database file path (default: ./miniapp_auth.db)
//   - POSTGRES_HOST, POSTGRES_PORT, POSTGRES_DB, POSTGRES_USER,
//     POSTGRES_PASSWORD, POSTGRES_SSL_MODE
//
// Redis Configuration (optional):
//   - REDIS_ADDRESS: Redis server address; local fallbacks are used when unset
//   - REDIS_PASSWORD, REDIS_DB (0-15), REDIS_POOL_SIZE
//
// Rate Limiting:
//   - RATE_LIMIT_ENABLED: Enable rate limiting (default: true)
//   - RATE_LIMIT_DEFAULT: Requests per window per client IP (default: 60)
//   - RATE_LIMIT_WINDOW: Rate limit time window (default: 60s)
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values. Load fills it from the environment
// and Validate must pass before any accessor is trusted.
type Config struct {
	// Application settings
	Port        string
	LogLevel    string
	TLSCertFile string
	TLSKeyFile  string

	// Init data verification
	BotToken       string
	InitDataMaxAge string // seconds

	// Sessions
	JWTSecret  string
	SessionTTL string

	// Wallet provisioning
	OpenfortSecretKey string
	OpenfortBaseURL   string
	ChainID           string

	// Database
	DatabaseType     string // "sqlite" or "postgres"
	DatabasePath     string
	PostgresHost     string
	PostgresPort     string
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string
	PostgresSSLMode  string

	// Redis
	RedisAddress  string
	RedisPassword string
	RedisDB       string
	RedisPoolSize string

	// Rate limiting
	RateLimitEnabled bool
	RateLimitDefault string
	RateLimitWindow  string
}

// Load creates a Config from environment variables. It does not validate.
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		TLSCertFile: getEnv("TLS_CERT_FILE", ""),
		TLSKeyFile:  getEnv("TLS_KEY_FILE", ""),

		BotToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
		InitDataMaxAge: getEnv("INITDATA_MAX_AGE", "86400"),

		JWTSecret:  getEnv("JWT_SECRET", ""),
		SessionTTL: getEnv("SESSION_TTL", "1h"),

		OpenfortSecretKey: getEnv("OPENFORT_SECRET_KEY", ""),
		OpenfortBaseURL:   getEnv("OPENFORT_BASE_URL", "https://api.openfort.xyz"),
		ChainID:           getEnv("CHAIN_ID", "80002"),

		DatabaseType:     getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:     getEnv("DATABASE_PATH", "./miniapp_auth.db"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresDB:       getEnv("POSTGRES_DB", "miniapp_auth"),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", ""),
		PostgresSSLMode:  getEnv("POSTGRES_SSL_MODE", "disable"),

		RedisAddress:  getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnv("REDIS_DB", "0"),
		RedisPoolSize: getEnv("REDIS_POOL_SIZE", "10"),

		RateLimitEnabled: getBoolEnv("RATE_LIMIT_ENABLED", true),
		RateLimitDefault: getEnv("RATE_LIMIT_DEFAULT", "60"),
		RateLimitWindow:  getEnv("RATE_LIMIT_WINDOW", "60s"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv accepts anything strconv.ParseBool does and falls back to
// defaultValue otherwise
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate checks required fields, formats and cross-field dependencies.
// Error messages name the variable but never echo secret values.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is required")
	}

	if maxAge, err := strconv.ParseInt(c.InitDataMaxAge, 10, 64); err != nil || maxAge < 1 {
		return fmt.Errorf("INITDATA_MAX_AGE must be a positive number of seconds")
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters long for security")
	}
	if ttl, err := time.ParseDuration(c.SessionTTL); err != nil || ttl <= 0 {
		return fmt.Errorf("SESSION_TTL must be a positive duration (e.g., '1h', '30m')")
	}

	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}
	if (c.TLSCertFile == "") != (c.TLSKeyFile == "") {
		return fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE must be set together")
	}

	if c.OpenfortSecretKey != "" {
		if c.OpenfortBaseURL == "" {
			return fmt.Errorf("OPENFORT_BASE_URL is required when OPENFORT_SECRET_KEY is set")
		}
		if chainID, err := strconv.ParseInt(c.ChainID, 10, 64); err != nil || chainID < 1 {
			return fmt.Errorf("CHAIN_ID must be a positive number")
		}
	}

	switch c.DatabaseType {
	case "sqlite", "postgres", "postgresql":
	default:
		return fmt.Errorf("DATABASE_TYPE must be 'sqlite' or 'postgres'")
	}

	if c.IsPostgres() {
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required when using PostgreSQL")
		}
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required when using PostgreSQL")
		}
		if c.PostgresUser == "" {
			return fmt.Errorf("POSTGRES_USER is required when using PostgreSQL")
		}
		if port, err := strconv.Atoi(c.PostgresPort); err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("POSTGRES_PORT must be a valid port number")
		}
	}

	if c.RedisAddress != "" {
		if db, err := strconv.Atoi(c.RedisDB); err != nil || db < 0 || db > 15 {
			return fmt.Errorf("REDIS_DB must be a number between 0 and 15")
		}
		if poolSize, err := strconv.Atoi(c.RedisPoolSize); err != nil || poolSize < 1 {
			return fmt.Errorf("REDIS_POOL_SIZE must be a positive number")
		}
	}

	if c.RateLimitEnabled {
		if limit, err := strconv.Atoi(c.RateLimitDefault); err != nil || limit < 1 {
			return fmt.Errorf("RATE_LIMIT_DEFAULT must be a positive number")
		}
		if window, err := time.ParseDuration(c.RateLimitWindow); err != nil || window <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be a valid duration (e.g., '60s', '1m')")
		}
	}

	return nil
}

// IsPostgres reports whether the PostgreSQL backend is selected
func (c *Config) IsPostgres() bool {
	return c.DatabaseType == "postgres" || c.DatabaseType == "postgresql"
}

// WalletEnabled reports whether Openfort provisioning is configured
func (c *Config) WalletEnabled() bool {
	return c.OpenfortSecretKey != ""
}

// MaxAge returns the init data freshness window
func (c *Config) MaxAge() time.Duration {
	seconds, _ := strconv.ParseInt(c.InitDataMaxAge, 10, 64)
	return time.Duration(seconds) * time.Second
}

// SessionLifetime returns the parsed SESSION_TTL
func (c *Config) SessionLifetime() time.Duration {
	ttl, _ := time.ParseDuration(c.SessionTTL)
	return ttl
}

// ChainIDValue returns the parsed CHAIN_ID
func (c *Config) ChainIDValue() int64 {
	chainID, _ := strconv.ParseInt(c.ChainID, 10, 64)
	return chainID
}

// RedisDBValue returns the parsed REDIS_DB
func (c *Config) RedisDBValue() int {
	db, _ := strconv.Atoi(c.RedisDB)
	return db
}

// RedisPoolSizeValue returns the parsed REDIS_POOL_SIZE
func (c *Config) RedisPoolSizeValue() int {
	size, _ := strconv.Atoi(c.RedisPoolSize)
	return size
}

// RateLimit returns the parsed RATE_LIMIT_DEFAULT and RATE_LIMIT_WINDOW
func (c *Config) RateLimit() (int, time.Duration) {
	limit, _ := strconv.Atoi(c.RateLimitDefault)
	window, _ := time.ParseDuration(c.RateLimitWindow)
	return limit, window
}
