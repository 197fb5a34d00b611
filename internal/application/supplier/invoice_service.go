package supplier

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainbilling "github.com/condoledger/backend/internal/domain/billing"
	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/condoledger/backend/internal/domain/supplier"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService manages the supplier invoice mirror
type InvoiceService struct {
	invoiceRepo supplier.InvoiceRepository
	expenseRepo domainbilling.ExpenseRecordRepository
	txManager   shared.TransactionManager
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo supplier.InvoiceRepository,
	expenseRepo domainbilling.ExpenseRecordRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		expenseRepo: expenseRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// RegisterInvoiceRequest represents a supplier invoice entering the ledger
type RegisterInvoiceRequest struct {
	TenantID      uuid.UUID
	InvoiceNumber string
	CondominiumID uuid.UUID
	SupplierID    uuid.UUID
	SupplierName  string
	Concept       string
	Amount        valueobject.Money
	IssueDate     time.Time
	DueDate       *time.Time

	// When set, the invoice is also booked as an expense line for this
	// period so it flows into the next receipt generation run.
	BookAsExpense *valueobject.BillingPeriod
	Category      domainbilling.ExpenseCategory
}

// RegisterInvoice mirrors a supplier invoice into the ledger, optionally
// booking it as an expense line in the same transaction
func (s *InvoiceService) RegisterInvoice(ctx context.Context, req RegisterInvoiceRequest) (*supplier.Invoice, error) {
	var invoice *supplier.Invoice
	err := s.txManager.InTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.invoiceRepo.ExistsByInvoiceNumber(ctx, req.TenantID, req.SupplierID, req.InvoiceNumber)
		if err != nil {
			return fmt.Errorf("failed to check invoice number: %w", err)
		}
		if exists {
			return shared.NewDomainError("DUPLICATE_INVOICE_NUMBER",
				fmt.Sprintf("Invoice %s is already registered for this supplier", req.InvoiceNumber))
		}

		invoice, err = supplier.NewInvoice(req.TenantID, req.InvoiceNumber, req.CondominiumID,
			req.SupplierID, req.SupplierName, req.Concept, req.Amount, req.IssueDate, req.DueDate)
		if err != nil {
			return err
		}
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}

		if req.BookAsExpense != nil {
			category := req.Category
			if category == "" {
				category = domainbilling.ExpenseCategoryOther
			}
			description := req.Concept
			if description == "" {
				description = fmt.Sprintf("%s %s", req.SupplierName, req.InvoiceNumber)
			}
			record, err := domainbilling.NewExpenseRecord(req.TenantID, req.CondominiumID,
				*req.BookAsExpense, category, description, req.Amount, &invoice.ID)
			if err != nil {
				return err
			}
			if err := s.expenseRepo.Create(ctx, record); err != nil {
				return fmt.Errorf("failed to book expense line: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("supplier invoice registered",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", req.InvoiceNumber),
		zap.String("supplier", req.SupplierName),
		zap.String("amount", req.Amount.String()))

	return invoice, nil
}

// PayInvoiceRequest represents a payment made to a supplier
type PayInvoiceRequest struct {
	TenantID  uuid.UUID
	InvoiceID uuid.UUID
	Amount    valueobject.Money
	Method    string
	Reference string
	Remark    string
}

// PayInvoice records a payment against a supplier invoice. Payments
// accumulate until the invoice is fully paid; overpayment and duplicate
// bank references are rejected.
func (s *InvoiceService) PayInvoice(ctx context.Context, req PayInvoiceRequest) (*supplier.Invoice, error) {
	var invoice *supplier.Invoice
	err := s.txManager.InTransaction(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.FindByIDForTenant(ctx, req.TenantID, req.InvoiceID)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
		}
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}

		if err := invoice.ApplyPayment(req.Amount, req.Method, req.Reference, req.Remark); err != nil {
			return err
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("supplier invoice payment recorded",
		zap.String("invoice_id", req.InvoiceID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("status", invoice.Status.String()))

	return invoice, nil
}

// CancelInvoice cancels an unpaid invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID, reason string) (*supplier.Invoice, error) {
	var invoice *supplier.Invoice
	err := s.txManager.InTransaction(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
		}
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}

		if err := invoice.Cancel(reason); err != nil {
			return err
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
			return fmt.Errorf("failed to save invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("supplier invoice cancelled",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("reason", reason))

	return invoice, nil
}

// GetInvoice loads a single invoice for a tenant
func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*supplier.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("INVOICE_NOT_FOUND", "Invoice not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// ListInvoices lists invoices for a tenant with filtering
func (s *InvoiceService) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter supplier.InvoiceFilter) (*shared.Paginated[supplier.Invoice], error) {
	if filter.PageSize <= 0 {
		def := shared.DefaultFilter()
		filter.Page = def.Page
		filter.PageSize = def.PageSize
	}
	invoices, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	total, err := s.invoiceRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}
	paginated := shared.NewPaginated(invoices, total, filter.Page, filter.PageSize)
	return &paginated, nil
}
