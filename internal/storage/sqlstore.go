package storage

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"miniapp-auth/internal/common/errors"
)

// Placeholder selects the bind parameter syntax of a SQL dialect
type Placeholder int

const (
	// Question uses "?" (sqlite)
	Question Placeholder = iota
	// Dollar uses "$1", "$2", ... (postgres)
	Dollar
)

// SQLStore implements Storage on database/sql. The sqlite and postgres
// adapters embed it and differ only in driver, schema and placeholders.
type SQLStore struct {
	db          *sql.DB
	placeholder Placeholder
}

// NewSQLStore wraps an open database
func NewSQLStore(db *sql.DB, placeholder Placeholder) *SQLStore {
	return &SQLStore{db: db, placeholder: placeholder}
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLStore) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

// Migrate runs the statements in one transaction. Statements must be
// idempotent.
func (s *SQLStore) Migrate(ctx context.Context, statements []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetPlayerByTelegramID(ctx context.Context, telegramID int64) (*Player, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, telegram_id, name, created_at FROM players WHERE telegram_id = ?`), telegramID)

	var p Player
	if err := row.Scan(&p.ID, &p.TelegramID, &p.Name, &p.CreatedAt); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("player")
		}
		return nil, errors.ConnectionError("failed to load player", err)
	}
	return &p, nil
}

func (s *SQLStore) SavePlayer(ctx context.Context, player *Player) error {
	if player == nil || player.ID == "" {
		return errors.ValidationError("player id is required")
	}
	if player.CreatedAt.IsZero() {
		player.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO players (id, telegram_id, name, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (telegram_id) DO UPDATE SET
			id = excluded.id,
			name = excluded.name`),
		player.ID, player.TelegramID, player.Name, player.CreatedAt)
	if err != nil {
		return errors.ConnectionError("failed to save player", err)
	}
	return nil
}

func (s *SQLStore) GetAccount(ctx context.Context, playerID string, chainID int64) (*Account, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, player_id, chain_id, address, created_at
		FROM accounts WHERE player_id = ? AND chain_id = ?`), playerID, chainID)

	var a Account
	if err := row.Scan(&a.ID, &a.PlayerID, &a.ChainID, &a.Address, &a.CreatedAt); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("account")
		}
		return nil, errors.ConnectionError("failed to load account", err)
	}
	return &a, nil
}

func (s *SQLStore) SaveAccount(ctx context.Context, account *Account) error {
	if account == nil || account.ID == "" || account.PlayerID == "" {
		return errors.ValidationError("account id and player id are required")
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO accounts (id, player_id, chain_id, address, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (player_id, chain_id) DO UPDATE SET
			id = excluded.id,
			address = excluded.address`),
		account.ID, account.PlayerID, account.ChainID, account.Address, account.CreatedAt)
	if err != nil {
		return errors.ConnectionError("failed to save account", err)
	}
	return nil
}

// rebind rewrites "?" placeholders for the dollar dialect
func (s *SQLStore) rebind(query string) string {
	if s.placeholder != Dollar {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var _ Storage = (*SQLStore)(nil)
