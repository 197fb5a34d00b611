package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/condoledger/backend/internal/domain/billing"
	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/condoledger/backend/internal/infrastructure/persistence/models"
)

// openReceiptStatuses are the statuses a payment can still land on
var openReceiptStatuses = []billing.ReceiptStatus{
	billing.ReceiptStatusPending,
	billing.ReceiptStatusPartial,
	billing.ReceiptStatusOverdue,
}

// GormReceiptRepository implements ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

func (r *GormReceiptRepository) conn(ctx context.Context) *gorm.DB {
	return txFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a receipt by its ID
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Receipt, error) {
	var model models.ReceiptModel
	if err := r.conn(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a receipt by ID for a specific tenant
func (r *GormReceiptRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Receipt, error) {
	var model models.ReceiptModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate loads a receipt under a row lock
func (r *GormReceiptRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*billing.Receipt, error) {
	var model models.ReceiptModel
	if err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds receipts for a tenant with filtering
func (r *GormReceiptRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.ReceiptFilter) ([]billing.Receipt, error) {
	var receiptModels []models.ReceiptModel
	query := r.conn(ctx).Model(&models.ReceiptModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&receiptModels).Error; err != nil {
		return nil, err
	}
	return toDomainReceipts(receiptModels), nil
}

// FindOutstandingByUser finds a user's open receipts, oldest due first
func (r *GormReceiptRepository) FindOutstandingByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]billing.Receipt, error) {
	return r.findOutstandingByUser(ctx, tenantID, userID, false)
}

// FindOutstandingByUserForUpdate is FindOutstandingByUser under row locks
func (r *GormReceiptRepository) FindOutstandingByUserForUpdate(ctx context.Context, tenantID, userID uuid.UUID) ([]billing.Receipt, error) {
	return r.findOutstandingByUser(ctx, tenantID, userID, true)
}

func (r *GormReceiptRepository) findOutstandingByUser(ctx context.Context, tenantID, userID uuid.UUID, forUpdate bool) ([]billing.Receipt, error) {
	var receiptModels []models.ReceiptModel
	query := r.conn(ctx).
		Where("tenant_id = ? AND user_id = ? AND status IN ?", tenantID, userID, openReceiptStatuses).
		Order("due_date ASC, created_at ASC")
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := query.Find(&receiptModels).Error; err != nil {
		return nil, err
	}
	return toDomainReceipts(receiptModels), nil
}

// FindDueBefore finds open receipts whose due date passed before the given instant
func (r *GormReceiptRepository) FindDueBefore(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]billing.Receipt, error) {
	var receiptModels []models.ReceiptModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND due_date < ? AND status IN ?", tenantID, asOf,
			[]billing.ReceiptStatus{billing.ReceiptStatusPending, billing.ReceiptStatusPartial}).
		Order("due_date ASC").
		Find(&receiptModels).Error; err != nil {
		return nil, err
	}
	return toDomainReceipts(receiptModels), nil
}

// TenantsWithOpenReceipts lists tenants holding open receipts due before
// the given instant. Used by the overdue sweep scheduler.
func (r *GormReceiptRepository) TenantsWithOpenReceipts(ctx context.Context, before time.Time) ([]uuid.UUID, error) {
	var tenantIDs []uuid.UUID
	if err := r.conn(ctx).
		Model(&models.ReceiptModel{}).
		Distinct("tenant_id").
		Where("due_date < ? AND status IN ?", before,
			[]billing.ReceiptStatus{billing.ReceiptStatusPending, billing.ReceiptStatusPartial}).
		Pluck("tenant_id", &tenantIDs).Error; err != nil {
		return nil, err
	}
	return tenantIDs, nil
}

// ExistsForPeriod reports whether non-annulled receipts already exist for a
// condominium and billing period
func (r *GormReceiptRepository) ExistsForPeriod(ctx context.Context, tenantID, condominiumID uuid.UUID, period valueobject.BillingPeriod) (bool, error) {
	var count int64
	if err := r.conn(ctx).
		Model(&models.ReceiptModel{}).
		Where("tenant_id = ? AND condominium_id = ? AND month = ? AND year = ? AND status != ?",
			tenantID, condominiumID, period.Month(), period.Year(), billing.ReceiptStatusAnuled).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateBatch persists a generation run's receipts in one write
func (r *GormReceiptRepository) CreateBatch(ctx context.Context, receipts []*billing.Receipt) error {
	if len(receipts) == 0 {
		return nil
	}
	receiptModels := make([]*models.ReceiptModel, len(receipts))
	for i, receipt := range receipts {
		receiptModels[i] = models.ReceiptModelFromDomain(receipt)
	}
	return r.conn(ctx).Create(&receiptModels).Error
}

// Save creates or updates a receipt
func (r *GormReceiptRepository) Save(ctx context.Context, receipt *billing.Receipt) error {
	model := models.ReceiptModelFromDomain(receipt)
	return r.conn(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormReceiptRepository) SaveWithLock(ctx context.Context, receipt *billing.Receipt) error {
	model := models.ReceiptModelFromDomain(receipt)
	result := r.conn(ctx).
		Model(model).
		Where("id = ? AND version = ?", receipt.ID, receipt.Version-1).
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

// CountForTenant counts receipts for a tenant with optional filters
func (r *GormReceiptRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.ReceiptFilter) (int64, error) {
	var count int64
	query := r.conn(ctx).Model(&models.ReceiptModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumPendingByUser totals a user's open receipt balances
func (r *GormReceiptRepository) SumPendingByUser(ctx context.Context, tenantID, userID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.conn(ctx).
		Model(&models.ReceiptModel{}).
		Select("COALESCE(SUM(pending_amount), 0) as total").
		Where("tenant_id = ? AND user_id = ? AND status IN ?", tenantID, userID, openReceiptStatuses).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// GenerateReceiptNumber generates a unique receipt number for a tenant and period
func (r *GormReceiptRepository) GenerateReceiptNumber(ctx context.Context, tenantID uuid.UUID, period valueobject.BillingPeriod) (string, error) {
	// Format: RCP-YYYYMM-XXXXX
	prefix := fmt.Sprintf("RCP-%04d%02d-", period.Year(), period.Month())

	var maxNumber string
	if err := r.conn(ctx).
		Model(&models.ReceiptModel{}).
		Select("receipt_number").
		Where("tenant_id = ? AND receipt_number LIKE ?", tenantID, prefix+"%").
		Order("receipt_number DESC").
		Limit(1).
		Pluck("receipt_number", &maxNumber).Error; err != nil {
		return "", err
	}

	var nextNum int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) == 3 {
			fmt.Sscanf(parts[2], "%d", &nextNum)
		}
	}
	nextNum++

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

func (r *GormReceiptRepository) applyFilter(query *gorm.DB, filter billing.ReceiptFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, ReceiptSortFields, "due_date")
		query = query.Order(fmt.Sprintf("%s %s", sortField, ValidateSortOrder(filter.OrderDir)))
	} else {
		query = query.Order("due_date DESC, created_at DESC")
	}

	return query
}

func (r *GormReceiptRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.ReceiptFilter) *gorm.DB {
	if filter.CondominiumID != nil {
		query = query.Where("condominium_id = ?", *filter.CondominiumID)
	}
	if filter.PropertyID != nil {
		query = query.Where("property_id = ?", *filter.PropertyID)
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Month != nil {
		query = query.Where("month = ?", *filter.Month)
	}
	if filter.Year != nil {
		query = query.Where("year = ?", *filter.Year)
	}
	if filter.VisibleOnly {
		query = query.Where("visible = ?", true)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	return query
}

func toDomainReceipts(receiptModels []models.ReceiptModel) []billing.Receipt {
	receipts := make([]billing.Receipt, len(receiptModels))
	for i, model := range receiptModels {
		receipts[i] = *model.ToDomain()
	}
	return receipts
}

// Ensure GormReceiptRepository implements ReceiptRepository
var _ billing.ReceiptRepository = (*GormReceiptRepository)(nil)
