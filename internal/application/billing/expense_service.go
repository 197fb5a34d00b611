package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/condoledger/backend/internal/domain/billing"
	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExpenseService books the expense lines that receipt generation allocates
type ExpenseService struct {
	expenseRepo billing.ExpenseRecordRepository
	receiptRepo billing.ReceiptRepository
	logger      *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	expenseRepo billing.ExpenseRecordRepository,
	receiptRepo billing.ReceiptRepository,
	logger *zap.Logger,
) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		receiptRepo: receiptRepo,
		logger:      logger,
	}
}

// BookExpenseRequest represents an expense line to book against a period
type BookExpenseRequest struct {
	TenantID      uuid.UUID
	CondominiumID uuid.UUID
	Period        valueobject.BillingPeriod
	Category      billing.ExpenseCategory
	Description   string
	Amount        valueobject.Money
	InvoiceID     *uuid.UUID
}

// BookExpense records an expense line. Booking is refused once the period
// has been billed; the receipts out there would no longer match the total.
func (s *ExpenseService) BookExpense(ctx context.Context, req BookExpenseRequest) (*billing.ExpenseRecord, error) {
	billed, err := s.receiptRepo.ExistsForPeriod(ctx, req.TenantID, req.CondominiumID, req.Period)
	if err != nil {
		return nil, fmt.Errorf("failed to check period: %w", err)
	}
	if billed {
		return nil, shared.NewDomainError("PERIOD_ALREADY_BILLED",
			fmt.Sprintf("Period %s has already been billed", req.Period))
	}

	record, err := billing.NewExpenseRecord(req.TenantID, req.CondominiumID, req.Period,
		req.Category, req.Description, req.Amount, req.InvoiceID)
	if err != nil {
		return nil, err
	}

	if err := s.expenseRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create expense record: %w", err)
	}

	s.logger.Info("expense booked",
		zap.String("condominium_id", req.CondominiumID.String()),
		zap.String("period", req.Period.String()),
		zap.String("category", string(req.Category)),
		zap.String("amount", req.Amount.String()))

	return record, nil
}

// ListExpenses lists a condominium's expense lines for a period
func (s *ExpenseService) ListExpenses(ctx context.Context, tenantID, condominiumID uuid.UUID, period valueobject.BillingPeriod) ([]billing.ExpenseRecord, error) {
	records, err := s.expenseRepo.FindByPeriod(ctx, tenantID, condominiumID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return records, nil
}

// RemoveExpense deletes an expense line before the period is billed
func (s *ExpenseService) RemoveExpense(ctx context.Context, tenantID, expenseID uuid.UUID) error {
	record, err := s.expenseRepo.FindByID(ctx, expenseID)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError("EXPENSE_NOT_FOUND", "Expense record not found")
	}
	if err != nil {
		return fmt.Errorf("failed to get expense record: %w", err)
	}
	if record.TenantID != tenantID {
		return shared.NewDomainError("EXPENSE_NOT_FOUND", "Expense record not found")
	}

	billed, err := s.receiptRepo.ExistsForPeriod(ctx, tenantID, record.CondominiumID, record.Period())
	if err != nil {
		return fmt.Errorf("failed to check period: %w", err)
	}
	if billed {
		return shared.NewDomainError("PERIOD_ALREADY_BILLED",
			fmt.Sprintf("Period %s has already been billed", record.Period()))
	}

	if err := s.expenseRepo.DeleteForTenant(ctx, tenantID, expenseID); err != nil {
		return fmt.Errorf("failed to delete expense record: %w", err)
	}
	return nil
}
