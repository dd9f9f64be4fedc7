package app

import (
	"time"

	"miniapp-auth/internal/common/logging"
	"miniapp-auth/internal/common/utils"
	"miniapp-auth/internal/locks"
	"miniapp-auth/internal/openfort"
	"miniapp-auth/internal/wallet"
)

// provisionLockTTL bounds how long a crashed instance can hold a user's lock
const provisionLockTTL = 30 * time.Second

func (app *App) initializeWallet() error {
	if !app.Config.WalletEnabled() {
		app.Logger.Info("Wallet provisioning: Disabled (OPENFORT_SECRET_KEY not set)")
		return nil
	}

	client, err := openfort.NewClient(openfort.Config{
		SecretKey: app.Config.OpenfortSecretKey,
		BaseURL:   app.Config.OpenfortBaseURL,
		Retry:     utils.DefaultRetryConfig(),
	}, app.Logger)
	if err != nil {
		return err
	}
	app.Openfort = client

	var locker wallet.Locker = wallet.NewLocalLocker()
	if app.RedisClient != nil {
		manager, err := locks.NewRedsyncManager(app.RedisClient, provisionLockTTL)
		if err != nil {
			return err
		}
		locker = manager
	}

	app.Provisioner = wallet.NewProvisioner(client, app.Storage, locker, app.Config.ChainIDValue(), app.Logger)
	app.Logger.Info("Wallet provisioning: Enabled",
		logging.Int64("chain_id", app.Config.ChainIDValue()),
		logging.Bool("distributed_locks", app.RedisClient != nil),
	)
	return nil
}
