package supplier

import (
	"context"
	"time"

	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	CondominiumID *uuid.UUID     // Filter by condominium
	SupplierID    *uuid.UUID     // Filter by supplier
	Status        *InvoiceStatus // Filter by status
	FromDate      *time.Time     // Filter by issue date range start
	ToDate        *time.Time     // Filter by issue date range end
	Overdue       *bool          // Filter only overdue invoices
}

// InvoiceRepository defines the interface for supplier invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForTenant finds an invoice by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindByInvoiceNumber finds by invoice number and supplier for a tenant
	FindByInvoiceNumber(ctx context.Context, tenantID, supplierID uuid.UUID, invoiceNumber string) (*Invoice, error)

	// FindAllForTenant finds invoices for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) ([]Invoice, error)

	// FindOutstanding finds pending invoices for a condominium
	FindOutstanding(ctx context.Context, tenantID, condominiumID uuid.UUID) ([]Invoice, error)

	// ExistsByInvoiceNumber checks if a supplier's invoice number is already registered
	ExistsByInvoiceNumber(ctx context.Context, tenantID, supplierID uuid.UUID, invoiceNumber string) (bool, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// CountForTenant counts invoices for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter InvoiceFilter) (int64, error)

	// SumOutstandingByCondominium totals pending invoice balances for a condominium
	SumOutstandingByCondominium(ctx context.Context, tenantID, condominiumID uuid.UUID) (decimal.Decimal, error)
}
