// Package storage persists the mapping from Telegram users to Openfort players
// and their accounts, so repeated wallet requests do not hit the remote API.
package storage

import (
	"context"
	"time"
)

// Player links a Telegram user to an Openfort player
type Player struct {
	ID         string    `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"created_at"`
}

// Account is a player's account on one chain
type Account struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"player_id"`
	ChainID   int64     `json:"chain_id"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// Storage is implemented by the sqlite and postgres adapters. Lookups that
// find nothing return an errors.ErrTypeNotFound AppError.
type Storage interface {
	Close() error
	Health() error

	GetPlayerByTelegramID(ctx context.Context, telegramID int64) (*Player, error)
	// SavePlayer inserts the player or replaces the row for its Telegram id
	SavePlayer(ctx context.Context, player *Player) error

	GetAccount(ctx context.Context, playerID string, chainID int64) (*Account, error)
	// SaveAccount inserts the account or replaces the row for its player and chain
	SaveAccount(ctx context.Context, account *Account) error
}

type StorageConfig interface {
	Validate() error
	GetType() string
	GetConnectionString() string
}

type StorageFactory interface {
	Create(config StorageConfig) (Storage, error)
	GetType() string
}

// GenericConfig is a map-based StorageConfig the factories translate into
// their own typed config
type GenericConfig map[string]interface{}

func (gc GenericConfig) Validate() error {
	return nil
}

func (gc GenericConfig) GetType() string {
	if t, ok := gc["type"].(string); ok {
		return t
	}
	return "unknown"
}

func (gc GenericConfig) GetConnectionString() string {
	if cs, ok := gc["connection_string"].(string); ok {
		return cs
	}
	return ""
}

// String returns the value under key, or "" when absent or not a string
func (gc GenericConfig) String(key string) string {
	s, _ := gc[key].(string)
	return s
}
