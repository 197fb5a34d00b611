package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/condoledger/backend/internal/domain/billing"
	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReceiptService drives receipt generation and lifecycle management
type ReceiptService struct {
	receiptRepo billing.ReceiptRepository
	accountRepo billing.BillingAccountRepository
	properties  billing.PropertyDirectory
	expenses    billing.ExpenseAggregator
	txManager   shared.TransactionManager
	lockManager shared.LockManager
	logger      *zap.Logger
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(
	receiptRepo billing.ReceiptRepository,
	accountRepo billing.BillingAccountRepository,
	properties billing.PropertyDirectory,
	expenses billing.ExpenseAggregator,
	txManager shared.TransactionManager,
	lockManager shared.LockManager,
	logger *zap.Logger,
) *ReceiptService {
	return &ReceiptService{
		receiptRepo: receiptRepo,
		accountRepo: accountRepo,
		properties:  properties,
		expenses:    expenses,
		txManager:   txManager,
		lockManager: lockManager,
		logger:      logger,
	}
}

// GenerateReceiptsRequest represents a request to bill a condominium for a
// period. A zero DueDate means the last day of the billed month.
type GenerateReceiptsRequest struct {
	TenantID      uuid.UUID
	CondominiumID uuid.UUID
	Period        valueobject.BillingPeriod
	DueDate       time.Time
}

// GenerateReceiptsResult summarizes a generation run
type GenerateReceiptsResult struct {
	CondominiumID uuid.UUID           `json:"condominium_id"`
	Period        string              `json:"period"`
	TotalExpenses valueobject.Money   `json:"total_expenses"`
	ReceiptIDs    []uuid.UUID         `json:"receipt_ids"`
	Receipts      []billing.Receipt   `json:"receipts"`
}

// GenerateReceipts allocates the period's expenses across the condominium's
// billable properties and issues one receipt per property atomically: either
// every property gets its receipt or none do. Concurrent generation runs for
// the same condominium and period are serialized by an advisory lock and the
// second run fails the duplicate-period check.
func (s *ReceiptService) GenerateReceipts(ctx context.Context, req GenerateReceiptsRequest) (*GenerateReceiptsResult, error) {
	if req.CondominiumID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONDOMINIUM", "Condominium ID cannot be empty")
	}
	if req.DueDate.IsZero() {
		req.DueDate = req.Period.LastDay(time.UTC)
	}
	if req.DueDate.Before(req.Period.FirstDay(time.UTC)) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Due date cannot precede the billing period")
	}

	lockKey := fmt.Sprintf("billing:generate:%s:%s:%s", req.TenantID, req.CondominiumID, req.Period)

	var result *GenerateReceiptsResult
	err := s.lockManager.WithLock(ctx, lockKey, func(ctx context.Context) error {
		return s.txManager.InTransaction(ctx, func(ctx context.Context) error {
			exists, err := s.receiptRepo.ExistsForPeriod(ctx, req.TenantID, req.CondominiumID, req.Period)
			if err != nil {
				return fmt.Errorf("failed to check existing receipts: %w", err)
			}
			if exists {
				return shared.NewDomainError("DUPLICATE_PERIOD",
					fmt.Sprintf("Receipts already generated for period %s", req.Period))
			}

			total, err := s.expenses.TotalForPeriod(ctx, req.TenantID, req.CondominiumID, req.Period)
			if err != nil {
				return fmt.Errorf("failed to total expenses: %w", err)
			}
			if total.IsZero() {
				s.logger.Warn("generating receipts for a period with no expenses",
					zap.String("condominium_id", req.CondominiumID.String()),
					zap.String("period", req.Period.String()))
			}

			properties, err := s.properties.ListByCondominium(ctx, req.TenantID, req.CondominiumID)
			if err != nil {
				return fmt.Errorf("failed to list properties: %w", err)
			}

			shares, err := billing.AllocateExpenses(total, properties)
			if err != nil {
				return err
			}

			receipts := make([]*billing.Receipt, 0, len(shares))
			for _, share := range shares {
				number, err := s.receiptRepo.GenerateReceiptNumber(ctx, req.TenantID, req.Period)
				if err != nil {
					return fmt.Errorf("failed to generate receipt number: %w", err)
				}

				receipt, err := billing.NewReceipt(
					req.TenantID,
					number,
					req.CondominiumID,
					share.PropertyID,
					share.OwnerID,
					share.UserID,
					req.Period,
					share.Amount,
					req.DueDate,
				)
				if err != nil {
					return err
				}
				receipts = append(receipts, receipt)
			}

			if err := s.receiptRepo.CreateBatch(ctx, receipts); err != nil {
				return fmt.Errorf("failed to persist receipts: %w", err)
			}

			// bump each payer's outstanding rollup
			for _, receipt := range receipts {
				if receipt.IsPaid() {
					continue
				}
				account, err := s.accountRepo.FindByUserForUpdate(ctx, req.TenantID, receipt.UserID)
				if err != nil {
					return fmt.Errorf("failed to load billing account: %w", err)
				}
				if err := account.AddPending(receipt.GetPendingAmountMoney()); err != nil {
					return err
				}
				if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
					return fmt.Errorf("failed to save billing account: %w", err)
				}
			}

			ids := make([]uuid.UUID, 0, len(receipts))
			out := make([]billing.Receipt, 0, len(receipts))
			for _, r := range receipts {
				ids = append(ids, r.ID)
				out = append(out, *r)
			}
			result = &GenerateReceiptsResult{
				CondominiumID: req.CondominiumID,
				Period:        req.Period.String(),
				TotalExpenses: total,
				ReceiptIDs:    ids,
				Receipts:      out,
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("receipts generated",
		zap.String("condominium_id", req.CondominiumID.String()),
		zap.String("period", req.Period.String()),
		zap.Int("count", len(result.ReceiptIDs)),
		zap.String("total", result.TotalExpenses.String()))

	return result, nil
}

// GetReceipt loads a single receipt for a tenant
func (s *ReceiptService) GetReceipt(ctx context.Context, tenantID, receiptID uuid.UUID) (*billing.Receipt, error) {
	receipt, err := s.receiptRepo.FindByIDForTenant(ctx, tenantID, receiptID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("RECEIPT_NOT_FOUND", "Receipt not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return receipt, nil
}

// ListReceipts lists receipts for a tenant with filtering
func (s *ReceiptService) ListReceipts(ctx context.Context, tenantID uuid.UUID, filter billing.ReceiptFilter) (*shared.Paginated[billing.Receipt], error) {
	if filter.PageSize <= 0 {
		def := shared.DefaultFilter()
		filter.Page = def.Page
		filter.PageSize = def.PageSize
	}
	receipts, err := s.receiptRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	total, err := s.receiptRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count receipts: %w", err)
	}
	paginated := shared.NewPaginated(receipts, total, filter.Page, filter.PageSize)
	return &paginated, nil
}

// AnnulReceipt voids a receipt and releases its open balance from the
// payer's outstanding rollup
func (s *ReceiptService) AnnulReceipt(ctx context.Context, tenantID, receiptID uuid.UUID, reason string) (*billing.Receipt, error) {
	var annulled *billing.Receipt
	err := s.txManager.InTransaction(ctx, func(ctx context.Context) error {
		receipt, err := s.receiptRepo.FindByIDForUpdate(ctx, tenantID, receiptID)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("RECEIPT_NOT_FOUND", "Receipt not found")
		}
		if err != nil {
			return fmt.Errorf("failed to get receipt: %w", err)
		}

		released := receipt.GetPendingAmountMoney()
		if err := receipt.Annul(reason); err != nil {
			return err
		}
		if err := s.receiptRepo.SaveWithLock(ctx, receipt); err != nil {
			return fmt.Errorf("failed to save receipt: %w", err)
		}

		if released.IsPositive() {
			account, err := s.accountRepo.FindByUserForUpdate(ctx, tenantID, receipt.UserID)
			if err != nil {
				return fmt.Errorf("failed to load billing account: %w", err)
			}
			if err := account.ReleasePending(released); err != nil {
				return err
			}
			if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
				return fmt.Errorf("failed to save billing account: %w", err)
			}
		}

		annulled = receipt
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("receipt annulled",
		zap.String("receipt_id", receiptID.String()),
		zap.String("reason", reason))

	return annulled, nil
}

// SweepOverdue flags every open receipt whose due date passed before asOf.
// It is meant to run on a schedule; receipts that fail to transition are
// logged and skipped so one bad row does not stall the sweep.
func (s *ReceiptService) SweepOverdue(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (int, error) {
	receipts, err := s.receiptRepo.FindDueBefore(ctx, tenantID, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to find due receipts: %w", err)
	}

	marked := 0
	for i := range receipts {
		receipt := &receipts[i]
		if err := receipt.MarkOverdue(asOf); err != nil {
			continue
		}
		if err := s.receiptRepo.SaveWithLock(ctx, receipt); err != nil {
			s.logger.Warn("failed to mark receipt overdue",
				zap.String("receipt_id", receipt.ID.String()),
				zap.Error(err))
			continue
		}
		marked++
	}

	if marked > 0 {
		s.logger.Info("overdue sweep completed",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("marked", marked))
	}

	return marked, nil
}

// SetReceiptVisibility toggles a receipt's resident-facing visibility
func (s *ReceiptService) SetReceiptVisibility(ctx context.Context, tenantID, receiptID uuid.UUID, visible bool) error {
	receipt, err := s.receiptRepo.FindByIDForTenant(ctx, tenantID, receiptID)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError("RECEIPT_NOT_FOUND", "Receipt not found")
	}
	if err != nil {
		return fmt.Errorf("failed to get receipt: %w", err)
	}

	receipt.SetVisible(visible)
	if err := s.receiptRepo.SaveWithLock(ctx, receipt); err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}
	return nil
}
