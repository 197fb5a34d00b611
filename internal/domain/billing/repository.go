package billing

import (
	"context"
	"time"

	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptFilter defines filtering options for receipt queries
type ReceiptFilter struct {
	shared.Filter
	CondominiumID *uuid.UUID     // Filter by condominium
	PropertyID    *uuid.UUID     // Filter by property
	UserID        *uuid.UUID     // Filter by payer
	Status        *ReceiptStatus // Filter by status
	Month         *int           // Filter by billing month
	Year          *int           // Filter by billing year
	VisibleOnly   bool           // Exclude hidden receipts
	DueFrom       *time.Time     // Filter by due date range start
	DueTo         *time.Time     // Filter by due date range end
}

// ReceiptRepository defines the interface for receipt persistence
type ReceiptRepository interface {
	// FindByID finds a receipt by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Receipt, error)

	// FindByIDForTenant finds a receipt by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Receipt, error)

	// FindByIDForUpdate loads a receipt under a row lock, for use inside a transaction
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Receipt, error)

	// FindAllForTenant finds receipts for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ReceiptFilter) ([]Receipt, error)

	// FindOutstandingByUser finds a user's open receipts ordered by due date, oldest first
	FindOutstandingByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]Receipt, error)

	// FindOutstandingByUserForUpdate is FindOutstandingByUser under row locks
	FindOutstandingByUserForUpdate(ctx context.Context, tenantID, userID uuid.UUID) ([]Receipt, error)

	// FindDueBefore finds open receipts whose due date passed before the given instant
	FindDueBefore(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]Receipt, error)

	// ExistsForPeriod reports whether non-annulled receipts already exist for
	// a condominium and billing period
	ExistsForPeriod(ctx context.Context, tenantID, condominiumID uuid.UUID, period valueobject.BillingPeriod) (bool, error)

	// CreateBatch persists a generation run's receipts in one write
	CreateBatch(ctx context.Context, receipts []*Receipt) error

	// Save creates or updates a receipt
	Save(ctx context.Context, receipt *Receipt) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, receipt *Receipt) error

	// CountForTenant counts receipts for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ReceiptFilter) (int64, error)

	// SumPendingByUser totals a user's open receipt balances
	SumPendingByUser(ctx context.Context, tenantID, userID uuid.UUID) (decimal.Decimal, error)

	// GenerateReceiptNumber generates a unique receipt number for a tenant and period
	GenerateReceiptNumber(ctx context.Context, tenantID uuid.UUID, period valueobject.BillingPeriod) (string, error)
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	ReceiptID *uuid.UUID     // Filter by receipt
	UserID    *uuid.UUID     // Filter by payer
	Status    *PaymentStatus // Filter by review status
	Method    *PaymentMethod // Filter by payment method
	FromDate  *time.Time     // Filter by report date range start
	ToDate    *time.Time     // Filter by report date range end
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByIDForTenant finds a payment by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindByIDForUpdate loads a payment under a row lock, for use inside a transaction
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindByReference finds a payment by its bank reference for a tenant
	FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*Payment, error)

	// FindByReceipt finds payments reported against a receipt
	FindByReceipt(ctx context.Context, tenantID, receiptID uuid.UUID, filter PaymentFilter) ([]Payment, error)

	// FindAllForTenant finds payments for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]Payment, error)

	// ExistsByReference checks if a reference has already been reported for a tenant
	ExistsByReference(ctx context.Context, tenantID uuid.UUID, reference string) (bool, error)

	// Create persists a new payment
	Create(ctx context.Context, payment *Payment) error

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, payment *Payment) error

	// CountForTenant counts payments for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) (int64, error)
}

// BillingAccountRepository defines the interface for account rollup persistence
type BillingAccountRepository interface {
	// FindByUser finds a user's account for a tenant
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*BillingAccount, error)

	// FindByUserForUpdate loads a user's account under a row lock, creating it if absent
	FindByUserForUpdate(ctx context.Context, tenantID, userID uuid.UUID) (*BillingAccount, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *BillingAccount) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, account *BillingAccount) error
}

// PropertyDirectory exposes the property snapshots allocation runs against.
// The administration side owns the records; the engine only reads them.
type PropertyDirectory interface {
	// ListByCondominium lists all properties of a condominium
	ListByCondominium(ctx context.Context, tenantID, condominiumID uuid.UUID) ([]Property, error)
}

// ExpenseAggregator totals the expenses booked against a condominium for a
// billing period, feeding the allocation engine
type ExpenseAggregator interface {
	// TotalForPeriod sums approved expenses for a condominium and period
	TotalForPeriod(ctx context.Context, tenantID, condominiumID uuid.UUID, period valueobject.BillingPeriod) (valueobject.Money, error)
}
