package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether one more request for a key fits the configured rate
type Limiter interface {
	TryAcquireForKey(ctx context.Context, key string) bool
	Stats() map[string]interface{}
	Health() error
}

// RedisInterface is the subset of the redis client the distributed limiter uses
type RedisInterface interface {
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error)
	Health() error
}
