package app

import (
	"miniapp-auth/internal/common/logging"
	"miniapp-auth/internal/config"
	"miniapp-auth/internal/initdata"
	"miniapp-auth/internal/metrics"
	"miniapp-auth/internal/openfort"
	"miniapp-auth/internal/redis"
	"miniapp-auth/internal/session"
	"miniapp-auth/internal/storage"
	"miniapp-auth/internal/wallet"
)

// App holds all the application dependencies
type App struct {
	Config      *config.Config
	Verifier    *initdata.Verifier
	Sessions    *session.Manager
	Storage     storage.Storage
	RedisClient *redis.Client
	Openfort    *openfort.Client
	Provisioner *wallet.Provisioner
	Metrics     *metrics.Metrics
	Logger      logging.Logger
}

// New creates a new application instance with all dependencies
func New(cfg *config.Config) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logging.GetGlobalLogger().WithFields(logging.String("component", "app")),
	}

	// Initialize components in order of dependency
	if err := app.initializeVerifier(); err != nil {
		return nil, err
	}

	if err := app.initializeSessions(); err != nil {
		return nil, err
	}

	m, err := metrics.New()
	if err != nil {
		return nil, err
	}
	app.Metrics = m

	if err := app.initializeStorage(); err != nil {
		return nil, err
	}

	if err := app.initializeRedis(); err != nil {
		// Redis is optional, just log the error
		app.Logger.Warn("Redis initialization failed, continuing without Redis",
			logging.Err(err))
	}

	if err := app.initializeWallet(); err != nil {
		app.Cleanup()
		return nil, err
	}

	return app, nil
}

func (app *App) initializeVerifier() error {
	verifier, err := initdata.NewVerifier(initdata.Config{
		Secret: app.Config.BotToken,
		MaxAge: app.Config.MaxAge(),
	})
	if err != nil {
		return err
	}

	app.Verifier = verifier
	app.Logger.Info("Init data verification: Enabled",
		logging.Duration("max_age", verifier.MaxAge()))
	return nil
}

func (app *App) initializeSessions() error {
	sessions, err := session.NewManager(app.Config.JWTSecret, app.Config.SessionLifetime())
	if err != nil {
		return err
	}

	app.Sessions = sessions
	return nil
}

// Cleanup releases all resources
func (app *App) Cleanup() {
	if app.Storage != nil {
		if err := app.Storage.Close(); err != nil {
			app.Logger.Warn("Error closing storage", logging.Err(err))
		}
	}
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			app.Logger.Warn("Error closing Redis client", logging.Err(err))
		}
	}
}
