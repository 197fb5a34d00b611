package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/condoledger/backend/internal/domain/billing"
	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/condoledger/backend/internal/infrastructure/persistence/models"
)

// GormExpenseRecordRepository implements ExpenseRecordRepository using GORM.
// It also serves as the ExpenseAggregator feeding generation runs.
type GormExpenseRecordRepository struct {
	db *gorm.DB
}

// NewGormExpenseRecordRepository creates a new GormExpenseRecordRepository
func NewGormExpenseRecordRepository(db *gorm.DB) *GormExpenseRecordRepository {
	return &GormExpenseRecordRepository{db: db}
}

func (r *GormExpenseRecordRepository) conn(ctx context.Context) *gorm.DB {
	return txFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds an expense record by its ID
func (r *GormExpenseRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.ExpenseRecord, error) {
	var model models.ExpenseRecordModel
	if err := r.conn(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByPeriod lists expense lines for a condominium and period
func (r *GormExpenseRecordRepository) FindByPeriod(ctx context.Context, tenantID, condominiumID uuid.UUID, period valueobject.BillingPeriod) ([]billing.ExpenseRecord, error) {
	var recordModels []models.ExpenseRecordModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND condominium_id = ? AND month = ? AND year = ?",
			tenantID, condominiumID, period.Month(), period.Year()).
		Order("created_at ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	records := make([]billing.ExpenseRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

// SumForPeriod totals expense lines for a condominium and period
func (r *GormExpenseRecordRepository) SumForPeriod(ctx context.Context, tenantID, condominiumID uuid.UUID, period valueobject.BillingPeriod) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.conn(ctx).
		Model(&models.ExpenseRecordModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("tenant_id = ? AND condominium_id = ? AND month = ? AND year = ?",
			tenantID, condominiumID, period.Month(), period.Year()).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// TotalForPeriod implements billing.ExpenseAggregator
func (r *GormExpenseRecordRepository) TotalForPeriod(ctx context.Context, tenantID, condominiumID uuid.UUID, period valueobject.BillingPeriod) (valueobject.Money, error) {
	total, err := r.SumForPeriod(ctx, tenantID, condominiumID, period)
	if err != nil {
		return valueobject.Money{}, err
	}
	return valueobject.NewMoneyVES(total), nil
}

// Create persists a new expense record
func (r *GormExpenseRecordRepository) Create(ctx context.Context, record *billing.ExpenseRecord) error {
	model := models.ExpenseRecordModelFromDomain(record)
	return r.conn(ctx).Create(model).Error
}

// Save creates or updates an expense record
func (r *GormExpenseRecordRepository) Save(ctx context.Context, record *billing.ExpenseRecord) error {
	model := models.ExpenseRecordModelFromDomain(record)
	return r.conn(ctx).Save(model).Error
}

// DeleteForTenant removes an expense record for a tenant
func (r *GormExpenseRecordRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.conn(ctx).Delete(&models.ExpenseRecordModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormExpenseRecordRepository implements both ports
var (
	_ billing.ExpenseRecordRepository = (*GormExpenseRecordRepository)(nil)
	_ billing.ExpenseAggregator       = (*GormExpenseRecordRepository)(nil)
)
