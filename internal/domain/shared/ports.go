package shared

import "context"

// TransactionManager runs a unit of work atomically. Implementations place
// the transaction handle in the context so repositories participating in the
// same unit of work share it; a nested call reuses the ambient transaction.
type TransactionManager interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// LockManager serializes critical sections on a string key. Callers acquire
// the lock before opening a transaction and hold it until the transaction
// commits or rolls back.
type LockManager interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
