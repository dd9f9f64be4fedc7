package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"miniapp-auth/internal/common/logging"
	"miniapp-auth/internal/handlers"
	"miniapp-auth/internal/server"
)

// newHandlers builds the HTTP handlers from the initialized components
func (app *App) newHandlers() *handlers.Handlers {
	components := map[string]handlers.HealthChecker{
		"storage": app.Storage,
	}
	if app.RedisClient != nil {
		components["redis"] = app.RedisClient
	}
	if app.Openfort != nil {
		components["openfort"] = app.Openfort
	}

	opts := handlers.Options{
		Verifier:   app.Verifier,
		Sessions:   app.Sessions,
		Recorder:   app.Metrics,
		Components: components,
		Logger:     logging.GetGlobalLogger().WithFields(logging.String("component", "http")),
	}
	if app.Provisioner != nil {
		opts.Provisioner = app.Provisioner
	}

	return handlers.New(opts)
}

// Router returns the fully wired HTTP handler
func (app *App) Router() http.Handler {
	router := mux.NewRouter()
	SetupRoutes(router, app.newHandlers(), app.Sessions, app.InitializeRateLimiter(), app.Metrics, app.Metrics.Handler())
	return router
}

// RunServer creates the HTTP server with all handlers configured
func (app *App) RunServer() *server.Server {
	return server.New(app.Router(), app.Config.Port, app.Config.TLSCertFile, app.Config.TLSKeyFile)
}
