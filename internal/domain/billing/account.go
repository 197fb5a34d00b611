package billing

import (
	"fmt"

	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingAccount is the per-user rollup the reconciler maintains.
// PendingAmount mirrors the sum of the user's open receipt balances and
// CreditBalance holds overpayment excess awaiting settlement. Neither
// is ever negative.
type BillingAccount struct {
	shared.TenantAggregateRoot
	UserID        uuid.UUID       `json:"user_id"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	CreditBalance decimal.Decimal `json:"credit_balance"`
}

// NewBillingAccount creates an empty account for a user
func NewBillingAccount(tenantID, userID uuid.UUID) (*BillingAccount, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}

	return &BillingAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		UserID:              userID,
		PendingAmount:       decimal.Zero,
		CreditBalance:       decimal.Zero,
	}, nil
}

// AddPending raises the user's outstanding total when receipts are issued
func (a *BillingAccount) AddPending(amount valueobject.Money) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Pending delta cannot be negative")
	}

	a.PendingAmount = a.PendingAmount.Add(amount.Amount())
	a.Bump()

	return nil
}

// ReleasePending lowers the outstanding total when receipt balances shrink,
// either through applied payments or annulment
func (a *BillingAccount) ReleasePending(amount valueobject.Money) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Pending delta cannot be negative")
	}
	if a.PendingAmount.LessThan(amount.Amount()) {
		return shared.NewDomainError("INVALID_AMOUNT",
			fmt.Sprintf("Cannot release %s from pending balance %s", amount.String(), a.PendingAmount.String()))
	}

	a.PendingAmount = a.PendingAmount.Sub(amount.Amount())
	a.Bump()

	return nil
}

// AddCredit accrues overpayment excess to the user's stored credit
func (a *BillingAccount) AddCredit(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit delta must be positive")
	}

	a.CreditBalance = a.CreditBalance.Add(amount.Amount())
	a.Bump()

	a.AddDomainEvent(NewCreditAccruedEvent(a, amount))

	return nil
}

// DrawCredit spends stored credit on open receipts
func (a *BillingAccount) DrawCredit(amount valueobject.Money) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit draw must be positive")
	}
	if a.CreditBalance.LessThan(amount.Amount()) {
		return shared.NewDomainError("INSUFFICIENT_CREDIT",
			fmt.Sprintf("Cannot draw %s from credit balance %s", amount.String(), a.CreditBalance.String()))
	}

	a.CreditBalance = a.CreditBalance.Sub(amount.Amount())
	a.Bump()

	a.AddDomainEvent(NewCreditDrawnEvent(a, amount))

	return nil
}

// HasCredit returns true if the account holds spendable credit
func (a *BillingAccount) HasCredit() bool {
	return a.CreditBalance.IsPositive()
}

// GetPendingAmountMoney returns the outstanding total as Money
func (a *BillingAccount) GetPendingAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVES(a.PendingAmount)
}

// GetCreditBalanceMoney returns the stored credit as Money
func (a *BillingAccount) GetCreditBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyVES(a.CreditBalance)
}
