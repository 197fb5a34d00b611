package cache

import (
	"context"
	"sync"

	"github.com/condoledger/backend/internal/domain/shared"
)

// InMemoryLockManager serializes critical sections within a single process
// using a mutex per key. Suitable for single-instance deployments and testing.
type InMemoryLockManager struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewInMemoryLockManager creates a new in-memory lock manager
func NewInMemoryLockManager() *InMemoryLockManager {
	return &InMemoryLockManager{locks: make(map[string]*sync.Mutex)}
}

// WithLock acquires the named lock, runs fn, and releases the lock
func (m *InMemoryLockManager) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

var _ shared.LockManager = (*InMemoryLockManager)(nil)
