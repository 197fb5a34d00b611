package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormTransactionManager_InTransaction(t *testing.T) {
	t.Run("commits when fn succeeds", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		manager := NewGormTransactionManager(gormDB)
		var sawTx bool
		err := manager.InTransaction(context.Background(), func(ctx context.Context) error {
			_, sawTx = ctx.Value(txContextKey{}).(*gorm.DB)
			return nil
		})

		assert.NoError(t, err)
		assert.True(t, sawTx, "transaction handle should travel in the context")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		manager := NewGormTransactionManager(gormDB)
		failure := errors.New("boom")
		err := manager.InTransaction(context.Background(), func(ctx context.Context) error {
			return failure
		})

		assert.ErrorIs(t, err, failure)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested call joins the open transaction", func(t *testing.T) {
		gormDB, mock, mockDB := newMockDB(t)
		defer mockDB.Close()

		// A single begin/commit pair covers both levels
		mock.ExpectBegin()
		mock.ExpectCommit()

		manager := NewGormTransactionManager(gormDB)
		err := manager.InTransaction(context.Background(), func(ctx context.Context) error {
			return manager.InTransaction(ctx, func(ctx context.Context) error {
				return nil
			})
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTxFromContext(t *testing.T) {
	t.Run("falls back to the base connection", func(t *testing.T) {
		gormDB, _, mockDB := newMockDB(t)
		defer mockDB.Close()

		require.Same(t, gormDB, txFromContext(context.Background(), gormDB))
	})
}
