package cache

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryLockManager_WithLock(t *testing.T) {
	t.Run("runs the critical section", func(t *testing.T) {
		manager := NewInMemoryLockManager()

		var ran bool
		err := manager.WithLock(context.Background(), "billing:generate:x", func(ctx context.Context) error {
			ran = true
			return nil
		})

		require.NoError(t, err)
		assert.True(t, ran)
	})

	t.Run("serializes sections on the same key", func(t *testing.T) {
		manager := NewInMemoryLockManager()

		const goroutines = 20
		counter := 0

		var wg sync.WaitGroup
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = manager.WithLock(context.Background(), "billing:credit:y", func(ctx context.Context) error {
					counter++
					return nil
				})
			}()
		}
		wg.Wait()

		assert.Equal(t, goroutines, counter)
	})

	t.Run("respects a cancelled context", func(t *testing.T) {
		manager := NewInMemoryLockManager()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := manager.WithLock(ctx, "billing:generate:z", func(ctx context.Context) error {
			t.Fatal("critical section should not run")
			return nil
		})

		assert.ErrorIs(t, err, context.Canceled)
	})
}
