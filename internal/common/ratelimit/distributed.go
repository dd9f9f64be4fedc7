package ratelimit

import (
	"context"
	"fmt"
	"time"

	"miniapp-auth/internal/common/logging"
)

// distributedLimiter shares a sliding window per key across instances via Redis
type distributedLimiter struct {
	config      Config
	redisClient RedisInterface
	logger      logging.Logger
}

// NewDistributedLimiter creates a Redis-backed limiter
func NewDistributedLimiter(config Config, redisClient RedisInterface) (Limiter, error) {
	if redisClient == nil {
		return nil, fmt.Errorf("redis client is required for distributed rate limiter")
	}

	config.Type = BackendDistributed
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &distributedLimiter{
		config:      config,
		redisClient: redisClient,
		logger:      logging.GetGlobalLogger().WithFields(logging.String("component", "ratelimit")),
	}, nil
}

// TryAcquireForKey fails open when Redis is unreachable so an outage of the
// coordination store does not take the API down with it
func (rl *distributedLimiter) TryAcquireForKey(ctx context.Context, key string) bool {
	if !rl.config.Enabled {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	allowed, _, err := rl.redisClient.CheckRateLimit(ctx, rl.config.KeyPrefix+key, rl.config.Limit, rl.config.Window)
	if err != nil {
		rl.logger.Warn("Rate limit check failed, allowing request", logging.Err(err))
		return true
	}
	return allowed
}

func (rl *distributedLimiter) Stats() map[string]interface{} {
	return map[string]interface{}{
		"type":       string(BackendDistributed),
		"enabled":    rl.config.Enabled,
		"limit":      rl.config.Limit,
		"window":     rl.config.Window.String(),
		"backend":    "redis",
		"key_prefix": rl.config.KeyPrefix,
	}
}

func (rl *distributedLimiter) Health() error {
	return rl.redisClient.Health()
}

var _ Limiter = (*distributedLimiter)(nil)
