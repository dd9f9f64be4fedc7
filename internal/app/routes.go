package app

import (
	"net/http"

	"github.com/gorilla/mux"

	"miniapp-auth/internal/common/ratelimit"
	"miniapp-auth/internal/handlers"
	"miniapp-auth/internal/middleware"
)

// SetupRoutes configures all HTTP routes for the application
func SetupRoutes(router *mux.Router, h *handlers.Handlers, sessions middleware.SessionParser, rateLimiter ratelimit.Limiter, observer middleware.RequestObserver, metricsHandler http.Handler) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging(observer))

	// Health check and metrics (not rate limited)
	router.HandleFunc("/health", h.Health).Methods("GET")
	if metricsHandler != nil {
		router.Handle("/metrics", metricsHandler).Methods("GET")
	}

	api := router.PathPrefix("/api").Subrouter()
	if rateLimiter != nil {
		api.Use(ratelimit.HTTPMiddleware(rateLimiter, ratelimit.IPKey))
	}

	api.HandleFunc("/validate", h.Validate).Methods("POST")
	api.Handle("/wallet", middleware.RequireSession(sessions)(http.HandlerFunc(h.Wallet))).Methods("POST")
}
