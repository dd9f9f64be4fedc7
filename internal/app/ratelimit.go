package app

import (
	"miniapp-auth/internal/common/logging"
	"miniapp-auth/internal/common/ratelimit"
)

// InitializeRateLimiter creates the per-IP limiter for /api routes. It is
// distributed when Redis is connected and local otherwise; nil when disabled.
func (app *App) InitializeRateLimiter() ratelimit.Limiter {
	if !app.Config.RateLimitEnabled {
		app.Logger.Info("Rate Limiting: Disabled")
		return nil
	}

	limit, window := app.Config.RateLimit()

	rateLimitConfig := ratelimit.DefaultConfig()
	rateLimitConfig.Limit = limit
	rateLimitConfig.Window = window
	rateLimitConfig.KeyPrefix = "miniapp:ratelimit:"

	var redisClient ratelimit.RedisInterface
	if app.RedisClient != nil {
		rateLimitConfig.Type = ratelimit.BackendDistributed
		redisClient = app.RedisClient
	}

	limiter, err := ratelimit.New(rateLimitConfig, redisClient)
	if err != nil {
		// Fall back to local limiter
		app.Logger.Warn("Distributed rate limiter unavailable, using local limiter", logging.Err(err))
		rateLimitConfig.Type = ratelimit.BackendLocal
		limiter, err = ratelimit.New(rateLimitConfig, nil)
		if err != nil {
			app.Logger.Error("Failed to create rate limiter", err)
			return nil
		}
	}

	app.Logger.Info("Rate Limiting: Enabled",
		logging.Int("limit", limit),
		logging.Duration("window", window),
		logging.String("backend", string(rateLimitConfig.Type)),
	)
	return limiter
}
