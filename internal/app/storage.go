package app

import (
	"fmt"

	"miniapp-auth/internal/common/logging"
	"miniapp-auth/internal/storage"
	"miniapp-auth/internal/storage/postgres"
	"miniapp-auth/internal/storage/sqlite"
)

// newStorageRegistry registers every supported backend
func newStorageRegistry() *storage.Registry {
	registry := storage.NewRegistry()
	registry.Register("sqlite", &sqlite.Factory{})
	registry.Register("postgres", &postgres.Factory{})
	return registry
}

func (app *App) initializeStorage() error {
	storageType := "sqlite"
	genericConfig := storage.GenericConfig{}

	if app.Config.IsPostgres() {
		storageType = "postgres"
		app.Logger.Info("Database: PostgreSQL",
			logging.String("host", app.Config.PostgresHost),
			logging.String("port", app.Config.PostgresPort),
			logging.String("database", app.Config.PostgresDB),
		)
		genericConfig["postgres_host"] = app.Config.PostgresHost
		genericConfig["postgres_port"] = app.Config.PostgresPort
		genericConfig["postgres_user"] = app.Config.PostgresUser
		genericConfig["postgres_password"] = app.Config.PostgresPassword
		genericConfig["postgres_db"] = app.Config.PostgresDB
		genericConfig["postgres_sslmode"] = app.Config.PostgresSSLMode
	} else {
		app.Logger.Info("Database: SQLite", logging.String("path", app.Config.DatabasePath))
		genericConfig["database_path"] = app.Config.DatabasePath
	}
	genericConfig["type"] = storageType

	store, err := newStorageRegistry().Create(storageType, genericConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	app.Storage = store
	return nil
}
