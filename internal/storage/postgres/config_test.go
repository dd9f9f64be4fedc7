package postgres

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miniapp-auth/internal/storage"
)

func TestConfig_Validate(t *testing.T) {
	cfg := &Config{Host: "db", Database: "miniapp_auth", Username: "app"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "prefer", cfg.SSLMode)

	for name, bad := range map[string]*Config{
		"no host":     {Database: "d", Username: "u"},
		"no database": {Host: "h", Username: "u"},
		"no user":     {Host: "h", Database: "d"},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, bad.Validate())
		})
	}
}

func TestConfig_ConnectionStringParsesWithPgx(t *testing.T) {
	cfg := &Config{
		Host:     "db.internal",
		Port:     6543,
		Database: "miniapp_auth",
		Username: "app",
		Password: "p@ss/word:with#chars",
		SSLMode:  "disable",
	}

	parsed, err := pgx.ParseConfig(cfg.GetConnectionString())
	require.NoError(t, err)
	assert.Equal(t, "db.internal", parsed.Host)
	assert.Equal(t, uint16(6543), parsed.Port)
	assert.Equal(t, "miniapp_auth", parsed.Database)
	assert.Equal(t, "app", parsed.User)
	assert.Equal(t, "p@ss/word:with#chars", parsed.Password)
}

func TestConfigFromGeneric(t *testing.T) {
	cfg, err := configFromGeneric(storage.GenericConfig{
		"postgres_host":     "h",
		"postgres_port":     "5433",
		"postgres_db":       "d",
		"postgres_user":     "u",
		"postgres_password": "p",
		"postgres_sslmode":  "require",
	})
	require.NoError(t, err)
	assert.Equal(t, &Config{Host: "h", Port: 5433, Database: "d", Username: "u", Password: "p", SSLMode: "require"}, cfg)

	_, err = configFromGeneric(storage.GenericConfig{"postgres_port": "abc"})
	assert.Error(t, err)
}

func TestFactory_RejectsUnknownConfig(t *testing.T) {
	_, err := (&Factory{}).Create(nil)
	assert.Error(t, err)
	assert.Equal(t, "postgres", (&Factory{}).GetType())
}
