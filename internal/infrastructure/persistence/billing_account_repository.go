package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/condoledger/backend/internal/domain/billing"
	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/infrastructure/persistence/models"
)

// GormBillingAccountRepository implements BillingAccountRepository using GORM
type GormBillingAccountRepository struct {
	db *gorm.DB
}

// NewGormBillingAccountRepository creates a new GormBillingAccountRepository
func NewGormBillingAccountRepository(db *gorm.DB) *GormBillingAccountRepository {
	return &GormBillingAccountRepository{db: db}
}

func (r *GormBillingAccountRepository) conn(ctx context.Context) *gorm.DB {
	return txFromContext(ctx, r.db).WithContext(ctx)
}

// FindByUser finds a user's account for a tenant
func (r *GormBillingAccountRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*billing.BillingAccount, error) {
	var model models.BillingAccountModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUserForUpdate loads a user's account under a row lock, creating it
// if absent. The insert races on the (tenant, user) unique index; a loser
// retries the locked select and picks up the winner's row.
func (r *GormBillingAccountRepository) FindByUserForUpdate(ctx context.Context, tenantID, userID uuid.UUID) (*billing.BillingAccount, error) {
	account, err := r.findByUserLocked(ctx, tenantID, userID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	fresh, err := billing.NewBillingAccount(tenantID, userID)
	if err != nil {
		return nil, err
	}
	model := models.BillingAccountModelFromDomain(fresh)
	if err := r.conn(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error; err != nil {
		return nil, err
	}

	return r.findByUserLocked(ctx, tenantID, userID)
}

func (r *GormBillingAccountRepository) findByUserLocked(ctx context.Context, tenantID, userID uuid.UUID) (*billing.BillingAccount, error) {
	var model models.BillingAccountModel
	if err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates an account
func (r *GormBillingAccountRepository) Save(ctx context.Context, account *billing.BillingAccount) error {
	model := models.BillingAccountModelFromDomain(account)
	return r.conn(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormBillingAccountRepository) SaveWithLock(ctx context.Context, account *billing.BillingAccount) error {
	model := models.BillingAccountModelFromDomain(account)
	result := r.conn(ctx).
		Model(model).
		Where("id = ? AND version = ?", account.ID, account.Version-1).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// Ensure GormBillingAccountRepository implements BillingAccountRepository
var _ billing.BillingAccountRepository = (*GormBillingAccountRepository)(nil)
