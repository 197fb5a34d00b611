package billing

import (
	"context"

	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseCategory classifies a condominium expense line
type ExpenseCategory string

const (
	ExpenseCategoryMaintenance ExpenseCategory = "MAINTENANCE"
	ExpenseCategoryUtilities   ExpenseCategory = "UTILITIES"
	ExpenseCategoryPersonnel   ExpenseCategory = "PERSONNEL"
	ExpenseCategoryInsurance   ExpenseCategory = "INSURANCE"
	ExpenseCategoryReserve     ExpenseCategory = "RESERVE"
	ExpenseCategoryOther       ExpenseCategory = "OTHER"
)

// IsValid checks if the category is valid
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategoryMaintenance, ExpenseCategoryUtilities, ExpenseCategoryPersonnel,
		ExpenseCategoryInsurance, ExpenseCategoryReserve, ExpenseCategoryOther:
		return true
	}
	return false
}

// ExpenseRecord is one expense line booked against a condominium for a
// billing period. The period's records are totalled by the aggregator and
// the total is what the allocation engine splits across properties.
// A record may trace back to a supplier invoice.
type ExpenseRecord struct {
	shared.TenantAggregateRoot
	CondominiumID uuid.UUID       `json:"condominium_id"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	Category      ExpenseCategory `json:"category"`
	Description   string          `json:"description"`
	Amount        decimal.Decimal `json:"amount"`
	InvoiceID     *uuid.UUID      `json:"invoice_id"` // Supplier invoice this line came from, if any
}

// NewExpenseRecord books an expense line against a condominium and period
func NewExpenseRecord(
	tenantID uuid.UUID,
	condominiumID uuid.UUID,
	period valueobject.BillingPeriod,
	category ExpenseCategory,
	description string,
	amount valueobject.Money,
	invoiceID *uuid.UUID,
) (*ExpenseRecord, error) {
	if condominiumID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONDOMINIUM", "Condominium ID cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Expense category is not valid")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Expense description cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Expense amount must be positive")
	}

	return &ExpenseRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CondominiumID:       condominiumID,
		Month:               int(period.Month()),
		Year:                period.Year(),
		Category:            category,
		Description:         description,
		Amount:              amount.Amount(),
		InvoiceID:           invoiceID,
	}, nil
}

// Period returns the billing period the expense belongs to
func (e *ExpenseRecord) Period() valueobject.BillingPeriod {
	return valueobject.MustNewBillingPeriod(e.Month, e.Year)
}

// GetAmountMoney returns the expense amount as Money
func (e *ExpenseRecord) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVES(e.Amount)
}

// ExpenseRecordRepository defines the interface for expense persistence
type ExpenseRecordRepository interface {
	// FindByID finds an expense record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ExpenseRecord, error)

	// FindByPeriod lists expense lines for a condominium and period
	FindByPeriod(ctx context.Context, tenantID, condominiumID uuid.UUID, period valueobject.BillingPeriod) ([]ExpenseRecord, error)

	// SumForPeriod totals expense lines for a condominium and period
	SumForPeriod(ctx context.Context, tenantID, condominiumID uuid.UUID, period valueobject.BillingPeriod) (decimal.Decimal, error)

	// Create persists a new expense record
	Create(ctx context.Context, record *ExpenseRecord) error

	// Save creates or updates an expense record
	Save(ctx context.Context, record *ExpenseRecord) error

	// DeleteForTenant removes an expense record for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
