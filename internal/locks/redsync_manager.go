// Package locks provides distributed locking on top of the Redlock
// implementation from go-redsync/redsync/v4. Locks are renewed in the
// background at a third of their expiry until released, so a slow holder
// keeps its lock while a crashed one loses it after the expiry.
//
// Example usage:
//
//	manager, err := locks.NewRedsyncManager(redisClient, 30*time.Second)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	unlock, err := manager.Lock(ctx, "player:42")
//	if err != nil {
//		return err
//	}
//	defer unlock()
package locks

import (
	"context"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v8"

	"miniapp-auth/internal/common/errors"
	"miniapp-auth/internal/common/logging"
	"miniapp-auth/internal/redis"
)

const keyPrefix = "lock:"

// DefaultExpiry is used when NewRedsyncManager is given a non-positive expiry
const DefaultExpiry = 30 * time.Second

// RedsyncManager hands out Redlock mutexes keyed by name
type RedsyncManager struct {
	redsync *redsync.Redsync
	expiry  time.Duration
	logger  logging.Logger
}

// NewRedsyncManager creates a lock manager on the given Redis connection
func NewRedsyncManager(redisClient *redis.Client, expiry time.Duration) (*RedsyncManager, error) {
	if redisClient == nil {
		return nil, errors.ConfigError("redis client is required")
	}
	if expiry <= 0 {
		expiry = DefaultExpiry
	}

	pool := goredis.NewPool(redisClient.GetGoRedisClient())

	return &RedsyncManager{
		redsync: redsync.New(pool),
		expiry:  expiry,
		logger:  logging.GetGlobalLogger().WithFields(logging.String("component", "locks")),
	}, nil
}

// Lock blocks until the lock for key is held or ctx is done. The returned
// function stops renewal and releases the lock; calling it again is a no-op.
func (rm *RedsyncManager) Lock(ctx context.Context, key string) (func(), error) {
	mutex := rm.redsync.NewMutex(keyPrefix+key, redsync.WithExpiry(rm.expiry))

	if err := mutex.LockContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.ConnectionError("failed to acquire distributed lock", err).WithContext("lock", key)
	}

	renewCtx, cancel := context.WithCancel(context.Background())
	renewed := make(chan struct{})
	go func() {
		defer close(renewed)
		rm.renew(renewCtx, mutex, key)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-renewed

			// a cancelled request must still free the lock
			releaseCtx, releaseCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer releaseCancel()
			if _, err := mutex.UnlockContext(releaseCtx); err != nil {
				rm.logger.Warn("Failed to release distributed lock",
					logging.String("lock", key),
					logging.Err(err),
				)
			}
		})
	}, nil
}

// renew extends the lock at a third of its expiry until ctx is cancelled
// or an extension fails
func (rm *RedsyncManager) renew(ctx context.Context, mutex *redsync.Mutex, key string) {
	interval := rm.expiry / 3
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			extendCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			ok, err := mutex.ExtendContext(extendCtx)
			cancel()

			if err != nil || !ok {
				if ctx.Err() != nil {
					return
				}
				rm.logger.Warn("Lost distributed lock",
					logging.String("lock", key),
					logging.Err(err),
				)
				return
			}
		}
	}
}
