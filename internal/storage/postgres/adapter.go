// Package postgres stores players and accounts in PostgreSQL through the pgx
// database/sql driver
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"miniapp-auth/internal/storage"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		telegram_id BIGINT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		player_id TEXT NOT NULL REFERENCES players(id) ON UPDATE CASCADE ON DELETE CASCADE,
		chain_id BIGINT NOT NULL,
		address TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (player_id, chain_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_player ON accounts(player_id)`,
}

type Adapter struct {
	*storage.SQLStore
	config *Config
}

func NewAdapter(config *Config) (*Adapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL config: %w", err)
	}

	connConfig, err := pgx.ParseConfig(config.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL connection settings: %w", err)
	}

	db := stdlib.OpenDB(*connConfig)
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	store := storage.NewSQLStore(db, storage.Dollar)
	if err := store.Migrate(ctx, migrations); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Adapter{SQLStore: store, config: config}, nil
}

// Factory builds adapters from a storage.GenericConfig with postgres_* keys
type Factory struct{}

func (f *Factory) Create(config storage.StorageConfig) (storage.Storage, error) {
	switch c := config.(type) {
	case *Config:
		return NewAdapter(c)
	case storage.GenericConfig:
		pgConfig, err := configFromGeneric(c)
		if err != nil {
			return nil, err
		}
		return NewAdapter(pgConfig)
	default:
		return nil, fmt.Errorf("invalid config type for PostgreSQL storage")
	}
}

func (f *Factory) GetType() string {
	return "postgres"
}

func configFromGeneric(c storage.GenericConfig) (*Config, error) {
	port := 0
	if raw := c.String("postgres_port"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid PostgreSQL port %q", raw)
		}
		port = parsed
	}

	return &Config{
		Host:     c.String("postgres_host"),
		Port:     port,
		Database: c.String("postgres_db"),
		Username: c.String("postgres_user"),
		Password: c.String("postgres_password"),
		SSLMode:  c.String("postgres_sslmode"),
	}, nil
}
