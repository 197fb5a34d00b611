package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/condoledger/backend/internal/domain/shared"
)

const (
	lockKeyPrefix      = "billing:lock:"
	lockTTL            = 30 * time.Second
	lockAcquireTimeout = 10 * time.Second
	lockRetryDelay     = 50 * time.Millisecond
)

// releaseScript deletes the lock only if the caller still owns it, so a
// holder that outlived its TTL cannot release a lock reacquired by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLockManager serializes critical sections across instances using
// Redis SETNX locks with an ownership token.
type RedisLockManager struct {
	client *redis.Client
}

// NewRedisLockManager creates a new Redis-backed lock manager
func NewRedisLockManager(client *redis.Client) *RedisLockManager {
	return &RedisLockManager{client: client}
}

// WithLock acquires the named lock, runs fn, and releases the lock.
// Acquisition retries until lockAcquireTimeout elapses or the context is done.
func (m *RedisLockManager) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lockKey := lockKeyPrefix + key
	token := uuid.NewString()

	deadline := time.Now().Add(lockAcquireTimeout)
	for {
		acquired, err := m.client.SetNX(ctx, lockKey, token, lockTTL).Result()
		if err != nil {
			return fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if acquired {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out acquiring lock %s", key)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}

	defer func() {
		// Release on a fresh context so a cancelled request still unlocks
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = releaseScript.Run(releaseCtx, m.client, []string{lockKey}, token).Result()
	}()

	return fn(ctx)
}

var _ shared.LockManager = (*RedisLockManager)(nil)
