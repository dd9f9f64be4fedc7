// Package wallet maps a verified Telegram user to an Openfort player and
// account, creating them on first use. The local store is consulted first
// and a per-user lock keeps concurrent requests from creating duplicates.
package wallet

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"miniapp-auth/internal/common/errors"
	"miniapp-auth/internal/common/logging"
	"miniapp-auth/internal/openfort"
	"miniapp-auth/internal/storage"
)

const (
	// MetadataTelegramID is the player metadata key holding the Telegram user id
	MetadataTelegramID = "telegramId"
	metadataSource     = "source"
	metadataCreatedAt  = "createdAt"
	sourceMiniApp      = "telegram_miniapp"
)

// Remote is the Openfort API surface the provisioner needs
type Remote interface {
	CreatePlayer(ctx context.Context, name string, metadata map[string]string) (*openfort.Player, error)
	FindPlayerByMetadata(ctx context.Context, key, value string) (*openfort.Player, error)
	ListAccounts(ctx context.Context, playerID string) ([]openfort.Account, error)
	CreateAccount(ctx context.Context, playerID string, chainID int64) (*openfort.Account, error)
}

// Wallet is the result handed back to the client
type Wallet struct {
	PlayerID  string `json:"playerId"`
	AccountID string `json:"accountId"`
	Address   string `json:"address"`
	ChainID   int64  `json:"chainId"`
}

type Provisioner struct {
	remote  Remote
	store   storage.Storage
	locker  Locker
	chainID int64
	now     func() time.Time
	logger  logging.Logger
}

// NewProvisioner wires the provisioner. chainID is the default chain for Provision.
func NewProvisioner(remote Remote, store storage.Storage, locker Locker, chainID int64, logger logging.Logger) *Provisioner {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Provisioner{
		remote:  remote,
		store:   store,
		locker:  locker,
		chainID: chainID,
		now:     time.Now,
		logger:  logger.WithFields(logging.String("component", "wallet")),
	}
}

// ChainID returns the default chain
func (p *Provisioner) ChainID() int64 {
	return p.chainID
}

// Provision returns the user's account on the default chain, creating the
// player and the account as needed
func (p *Provisioner) Provision(ctx context.Context, telegramID int64, username string) (*Wallet, error) {
	player, err := p.GetOrCreatePlayer(ctx, telegramID, username)
	if err != nil {
		return nil, err
	}

	account, err := p.GetOrCreateAccount(ctx, player.ID, p.chainID)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		PlayerID:  player.ID,
		AccountID: account.ID,
		Address:   account.Address,
		ChainID:   account.ChainID,
	}, nil
}

// GetOrCreatePlayer returns the player linked to telegramID. An unknown user
// is looked up remotely by metadata before a new player is created.
func (p *Provisioner) GetOrCreatePlayer(ctx context.Context, telegramID int64, username string) (*storage.Player, error) {
	if telegramID <= 0 {
		return nil, errors.ValidationError("telegram user id must be positive")
	}

	if player, err := p.lookupPlayer(ctx, telegramID); player != nil || err != nil {
		return player, err
	}

	unlock, err := p.locker.Lock(ctx, "player:"+strconv.FormatInt(telegramID, 10))
	if err != nil {
		return nil, err
	}
	defer unlock()

	// another request may have finished while we waited
	if player, err := p.lookupPlayer(ctx, telegramID); player != nil || err != nil {
		return player, err
	}

	idStr := strconv.FormatInt(telegramID, 10)
	remote, err := p.remote.FindPlayerByMetadata(ctx, MetadataTelegramID, idStr)
	if err != nil && !errors.IsType(err, errors.ErrTypeNotFound) {
		return nil, err
	}

	if remote == nil {
		name := username
		if name == "" {
			name = "tg_" + idStr
		}
		remote, err = p.remote.CreatePlayer(ctx, name, map[string]string{
			MetadataTelegramID: idStr,
			metadataSource:     sourceMiniApp,
			metadataCreatedAt:  p.now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}
		p.logger.Info("Created player", logging.Int64("telegram_user_id", telegramID), logging.String("player_id", remote.ID))
	}

	player := &storage.Player{
		ID:         remote.ID,
		TelegramID: telegramID,
		Name:       remote.Name,
		CreatedAt:  p.now().UTC(),
	}
	if err := p.store.SavePlayer(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}

// GetOrCreateAccount returns the player's account on chainID, reusing a
// remote account on that chain before creating one
func (p *Provisioner) GetOrCreateAccount(ctx context.Context, playerID string, chainID int64) (*storage.Account, error) {
	if playerID == "" {
		return nil, errors.ValidationError("player id is required")
	}
	if chainID <= 0 {
		return nil, errors.ValidationError("chain id must be positive")
	}

	if account, err := p.lookupAccount(ctx, playerID, chainID); account != nil || err != nil {
		return account, err
	}

	unlock, err := p.locker.Lock(ctx, fmt.Sprintf("account:%s:%d", playerID, chainID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if account, err := p.lookupAccount(ctx, playerID, chainID); account != nil || err != nil {
		return account, err
	}

	accounts, err := p.remote.ListAccounts(ctx, playerID)
	if err != nil {
		return nil, err
	}

	var remote *openfort.Account
	for i := range accounts {
		if accounts[i].ChainID == chainID {
			remote = &accounts[i]
			break
		}
	}

	if remote == nil {
		remote, err = p.remote.CreateAccount(ctx, playerID, chainID)
		if err != nil {
			return nil, err
		}
		p.logger.Info("Created account",
			logging.String("player_id", playerID),
			logging.Int64("chain_id", chainID),
			logging.String("account_id", remote.ID),
		)
	}

	account := &storage.Account{
		ID:        remote.ID,
		PlayerID:  playerID,
		ChainID:   chainID,
		Address:   remote.Address,
		CreatedAt: p.now().UTC(),
	}
	if err := p.store.SaveAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// lookupPlayer returns (nil, nil) when the store has no row
func (p *Provisioner) lookupPlayer(ctx context.Context, telegramID int64) (*storage.Player, error) {
	player, err := p.store.GetPlayerByTelegramID(ctx, telegramID)
	if errors.IsType(err, errors.ErrTypeNotFound) {
		return nil, nil
	}
	return player, err
}

func (p *Provisioner) lookupAccount(ctx context.Context, playerID string, chainID int64) (*storage.Account, error) {
	account, err := p.store.GetAccount(ctx, playerID, chainID)
	if errors.IsType(err, errors.ErrTypeNotFound) {
		return nil, nil
	}
	return account, err
}
