package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/condoledger/backend/internal/domain/shared"
)

type txContextKey struct{}

// txFromContext returns the ambient transaction handle if one is active,
// falling back to the given connection otherwise. Repositories call this so
// writes issued inside TransactionManager.InTransaction share the transaction.
func txFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}

// GormTransactionManager implements shared.TransactionManager on a GORM
// connection. The transaction handle travels in the context; nested calls
// reuse the already-open transaction instead of opening a second one.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// InTransaction runs fn atomically. A returned error rolls the transaction back.
func (m *GormTransactionManager) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		// Already inside a transaction, join it
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

var _ shared.TransactionManager = (*GormTransactionManager)(nil)
