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

// defaultReferenceTTL bounds how long a bank reference stays reserved in
// the idempotency store. The database unique index is the real guarantee;
// the store just short-circuits rapid duplicate submissions.
const defaultReferenceTTL = 24 * time.Hour

// PaymentService handles payment reporting, review and reconciliation
type PaymentService struct {
	paymentRepo  billing.PaymentRepository
	receiptRepo  billing.ReceiptRepository
	accountRepo  billing.BillingAccountRepository
	idempotency  shared.IdempotencyStore
	txManager    shared.TransactionManager
	referenceTTL time.Duration
	logger       *zap.Logger
}

// NewPaymentService creates a new PaymentService. A non-positive referenceTTL
// falls back to the 24h default.
func NewPaymentService(
	paymentRepo billing.PaymentRepository,
	receiptRepo billing.ReceiptRepository,
	accountRepo billing.BillingAccountRepository,
	idempotency shared.IdempotencyStore,
	txManager shared.TransactionManager,
	referenceTTL time.Duration,
	logger *zap.Logger,
) *PaymentService {
	if referenceTTL <= 0 {
		referenceTTL = defaultReferenceTTL
	}
	return &PaymentService{
		paymentRepo:  paymentRepo,
		receiptRepo:  receiptRepo,
		accountRepo:  accountRepo,
		idempotency:  idempotency,
		txManager:    txManager,
		referenceTTL: referenceTTL,
		logger:       logger,
	}
}

// ReportPaymentRequest represents a resident reporting a payment against a receipt
type ReportPaymentRequest struct {
	TenantID  uuid.UUID
	ReceiptID uuid.UUID
	UserID    uuid.UUID
	Amount    valueobject.Money
	Method    billing.PaymentMethod
	Reference string
	Remark    string
}

// ReportPayment records a reported payment awaiting administrator review.
// The bank reference is unique per tenant; resubmitting the same reference
// is rejected both by the idempotency store and by the reference check.
func (s *PaymentService) ReportPayment(ctx context.Context, req ReportPaymentRequest) (*billing.Payment, error) {
	reservationKey := fmt.Sprintf("payment:ref:%s:%s", req.TenantID, req.Reference)
	if req.Reference != "" {
		fresh, err := s.idempotency.MarkProcessed(ctx, reservationKey, s.referenceTTL)
		if err != nil {
			// the unique reference check below still covers us
			s.logger.Warn("idempotency store unavailable",
				zap.String("reference", req.Reference),
				zap.Error(err))
		} else if !fresh {
			return nil, shared.NewDomainError("DUPLICATE_REFERENCE",
				fmt.Sprintf("Payment reference %s has already been reported", req.Reference))
		}
	}

	var payment *billing.Payment
	err := s.txManager.InTransaction(ctx, func(ctx context.Context) error {
		receipt, err := s.receiptRepo.FindByIDForTenant(ctx, req.TenantID, req.ReceiptID)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("RECEIPT_NOT_FOUND", "Receipt not found")
		}
		if err != nil {
			return fmt.Errorf("failed to get receipt: %w", err)
		}
		if !receipt.Status.CanApplyPayment() {
			return shared.NewDomainError("RECEIPT_ALREADY_SETTLED",
				fmt.Sprintf("Receipt is in %s status", receipt.Status))
		}

		exists, err := s.paymentRepo.ExistsByReference(ctx, req.TenantID, req.Reference)
		if err != nil {
			return fmt.Errorf("failed to check reference: %w", err)
		}
		if exists {
			return shared.NewDomainError("DUPLICATE_REFERENCE",
				fmt.Sprintf("Payment reference %s has already been reported", req.Reference))
		}

		payment, err = billing.NewPayment(req.TenantID, req.ReceiptID, req.UserID,
			req.Amount, req.Method, req.Reference, req.Remark)
		if err != nil {
			return err
		}

		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return fmt.Errorf("failed to create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment reported",
		zap.String("payment_id", payment.ID.String()),
		zap.String("receipt_id", req.ReceiptID.String()),
		zap.String("reference", req.Reference),
		zap.String("amount", req.Amount.String()))

	return payment, nil
}

// ConfirmPaymentResult describes how a confirmed payment was reconciled
type ConfirmPaymentResult struct {
	Payment     *billing.Payment  `json:"payment"`
	Receipt     *billing.Receipt  `json:"receipt"`
	Applied     valueobject.Money `json:"applied"`
	CreditDelta valueobject.Money `json:"credit_delta"`
	Replayed    bool              `json:"replayed"`
}

// ConfirmPayment approves a reported payment and reconciles it against its
// receipt: the open balance absorbs what it can and any excess accrues to
// the payer's credit. Confirming an already applied payment is a no-op
// replay; the stored split is returned and the ledger is left untouched.
func (s *PaymentService) ConfirmPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*ConfirmPaymentResult, error) {
	var result *ConfirmPaymentResult
	err := s.txManager.InTransaction(ctx, func(ctx context.Context) error {
		payment, err := s.paymentRepo.FindByIDForUpdate(ctx, tenantID, paymentID)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
		}
		if err != nil {
			return fmt.Errorf("failed to get payment: %w", err)
		}

		if payment.IsApplied() {
			result = &ConfirmPaymentResult{
				Payment:     payment,
				Applied:     payment.GetAppliedAmountMoney(),
				CreditDelta: payment.GetCreditedAmountMoney(),
				Replayed:    true,
			}
			return nil
		}

		if payment.Status == billing.PaymentStatusRejected {
			return shared.NewDomainError("INVALID_STATE", "Cannot confirm a rejected payment")
		}
		if payment.Status == billing.PaymentStatusPending {
			if err := payment.Approve(); err != nil {
				return err
			}
		}

		receipt, err := s.receiptRepo.FindByIDForUpdate(ctx, tenantID, payment.ReceiptID)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("RECEIPT_NOT_FOUND", "Receipt not found")
		}
		if err != nil {
			return fmt.Errorf("failed to get receipt: %w", err)
		}

		settlement, err := receipt.Settle(payment.GetAmountMoney())
		if err != nil {
			return err
		}
		if err := s.receiptRepo.SaveWithLock(ctx, receipt); err != nil {
			return fmt.Errorf("failed to save receipt: %w", err)
		}

		if err := payment.MarkApplied(settlement.Applied, settlement.CreditDelta); err != nil {
			return err
		}
		if err := s.paymentRepo.SaveWithLock(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		account, err := s.accountRepo.FindByUserForUpdate(ctx, tenantID, receipt.UserID)
		if err != nil {
			return fmt.Errorf("failed to load billing account: %w", err)
		}
		if settlement.Applied.IsPositive() {
			if err := account.ReleasePending(settlement.Applied); err != nil {
				return err
			}
		}
		if settlement.CreditDelta.IsPositive() {
			if err := account.AddCredit(settlement.CreditDelta); err != nil {
				return err
			}
		}
		if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
			return fmt.Errorf("failed to save billing account: %w", err)
		}

		result = &ConfirmPaymentResult{
			Payment:     payment,
			Receipt:     receipt,
			Applied:     settlement.Applied,
			CreditDelta: settlement.CreditDelta,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Replayed {
		s.logger.Info("payment confirmation replayed",
			zap.String("payment_id", paymentID.String()))
	} else {
		s.logger.Info("payment confirmed",
			zap.String("payment_id", paymentID.String()),
			zap.String("applied", result.Applied.String()),
			zap.String("credit_delta", result.CreditDelta.String()))
	}

	return result, nil
}

// RejectPayment denies a reported payment. Nothing in the ledger moves.
func (s *PaymentService) RejectPayment(ctx context.Context, tenantID, paymentID uuid.UUID, reason string) (*billing.Payment, error) {
	var rejected *billing.Payment
	err := s.txManager.InTransaction(ctx, func(ctx context.Context) error {
		payment, err := s.paymentRepo.FindByIDForUpdate(ctx, tenantID, paymentID)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
		}
		if err != nil {
			return fmt.Errorf("failed to get payment: %w", err)
		}

		if err := payment.Reject(reason); err != nil {
			return err
		}
		if err := s.paymentRepo.SaveWithLock(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}

		rejected = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment rejected",
		zap.String("payment_id", paymentID.String()),
		zap.String("reason", reason))

	return rejected, nil
}

// GetPayment loads a single payment for a tenant
func (s *PaymentService) GetPayment(ctx context.Context, tenantID, paymentID uuid.UUID) (*billing.Payment, error) {
	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewDomainError("PAYMENT_NOT_FOUND", "Payment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

// ListPayments lists payments for a tenant with filtering
func (s *PaymentService) ListPayments(ctx context.Context, tenantID uuid.UUID, filter billing.PaymentFilter) (*shared.Paginated[billing.Payment], error) {
	if filter.PageSize <= 0 {
		def := shared.DefaultFilter()
		filter.Page = def.Page
		filter.PageSize = def.PageSize
	}
	payments, err := s.paymentRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	total, err := s.paymentRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count payments: %w", err)
	}
	paginated := shared.NewPaginated(payments, total, filter.Page, filter.PageSize)
	return &paginated, nil
}
