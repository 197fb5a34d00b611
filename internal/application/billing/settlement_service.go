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

// SettlementService spends stored credit against a user's open receipts
type SettlementService struct {
	receiptRepo billing.ReceiptRepository
	paymentRepo billing.PaymentRepository
	accountRepo billing.BillingAccountRepository
	txManager   shared.TransactionManager
	lockManager shared.LockManager
	logger      *zap.Logger
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	receiptRepo billing.ReceiptRepository,
	paymentRepo billing.PaymentRepository,
	accountRepo billing.BillingAccountRepository,
	txManager shared.TransactionManager,
	lockManager shared.LockManager,
	logger *zap.Logger,
) *SettlementService {
	return &SettlementService{
		receiptRepo: receiptRepo,
		paymentRepo: paymentRepo,
		accountRepo: accountRepo,
		txManager:   txManager,
		lockManager: lockManager,
		logger:      logger,
	}
}

// CreditSettlementResult summarizes one auto-settlement run for a user
type CreditSettlementResult struct {
	UserID          uuid.UUID         `json:"user_id"`
	CreditSpent     valueobject.Money `json:"credit_spent"`
	CreditRemaining valueobject.Money `json:"credit_remaining"`
	SettledReceipts []uuid.UUID       `json:"settled_receipts"`
	PaymentIDs      []uuid.UUID       `json:"payment_ids"`
}

// AutoSettleCredit walks a user's open receipts oldest due date first and
// pays them down from stored credit until either the credit or the open
// receipts run out. Each draw is recorded as a synthetic credit payment so
// the payment trail stays complete. Runs for the same user are serialized
// by an advisory lock; a second concurrent run finds nothing left to spend.
func (s *SettlementService) AutoSettleCredit(ctx context.Context, tenantID, userID uuid.UUID) (*CreditSettlementResult, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}

	lockKey := fmt.Sprintf("billing:credit:%s:%s", tenantID, userID)

	var result *CreditSettlementResult
	err := s.lockManager.WithLock(ctx, lockKey, func(ctx context.Context) error {
		return s.txManager.InTransaction(ctx, func(ctx context.Context) error {
			account, err := s.accountRepo.FindByUserForUpdate(ctx, tenantID, userID)
			if err != nil {
				return fmt.Errorf("failed to load billing account: %w", err)
			}

			result = &CreditSettlementResult{
				UserID:          userID,
				CreditSpent:     valueobject.ZeroVES(),
				CreditRemaining: account.GetCreditBalanceMoney(),
				SettledReceipts: []uuid.UUID{},
				PaymentIDs:      []uuid.UUID{},
			}
			if !account.HasCredit() {
				return nil
			}

			receipts, err := s.receiptRepo.FindOutstandingByUserForUpdate(ctx, tenantID, userID)
			if err != nil {
				return fmt.Errorf("failed to load open receipts: %w", err)
			}

			for i := range receipts {
				if !account.HasCredit() {
					break
				}
				receipt := &receipts[i]

				credit := account.GetCreditBalanceMoney()
				draw, err := credit.Min(receipt.GetPendingAmountMoney())
				if err != nil {
					return err
				}
				if !draw.IsPositive() {
					continue
				}

				settlement, err := receipt.Settle(draw)
				if err != nil {
					return err
				}
				if err := s.receiptRepo.SaveWithLock(ctx, receipt); err != nil {
					return fmt.Errorf("failed to save receipt: %w", err)
				}

				reference := fmt.Sprintf("CREDIT-%s", uuid.New())
				payment, err := billing.NewCreditPayment(tenantID, receipt.ID, userID, draw, reference)
				if err != nil {
					return err
				}
				if err := payment.MarkApplied(settlement.Applied, settlement.CreditDelta); err != nil {
					return err
				}
				if err := s.paymentRepo.Create(ctx, payment); err != nil {
					return fmt.Errorf("failed to create credit payment: %w", err)
				}

				if err := account.DrawCredit(draw); err != nil {
					return err
				}
				if err := account.ReleasePending(settlement.Applied); err != nil {
					return err
				}

				result.CreditSpent = result.CreditSpent.MustAdd(draw)
				result.PaymentIDs = append(result.PaymentIDs, payment.ID)
				if receipt.IsPaid() {
					result.SettledReceipts = append(result.SettledReceipts, receipt.ID)
				}
			}

			if result.CreditSpent.IsPositive() {
				if err := s.accountRepo.SaveWithLock(ctx, account); err != nil {
					return fmt.Errorf("failed to save billing account: %w", err)
				}
			}
			result.CreditRemaining = account.GetCreditBalanceMoney()
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if result.CreditSpent.IsPositive() {
		s.logger.Info("credit auto-settlement completed",
			zap.String("user_id", userID.String()),
			zap.String("spent", result.CreditSpent.String()),
			zap.String("remaining", result.CreditRemaining.String()),
			zap.Int("receipts_settled", len(result.SettledReceipts)))
	}

	return result, nil
}

// GetAccount loads a user's billing account rollup, returning an empty
// account when the user has no ledger activity yet
func (s *SettlementService) GetAccount(ctx context.Context, tenantID, userID uuid.UUID) (*billing.BillingAccount, error) {
	account, err := s.accountRepo.FindByUser(ctx, tenantID, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return billing.NewBillingAccount(tenantID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load billing account: %w", err)
	}
	return account, nil
}
