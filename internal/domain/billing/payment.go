package billing

import (
	"fmt"
	"time"

	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a resident paid
type PaymentMethod string

const (
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodMobile   PaymentMethod = "MOBILE" // pago movil
	PaymentMethodCredit   PaymentMethod = "CREDIT" // drawn from stored credit, no external funds
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodTransfer, PaymentMethodCash, PaymentMethodCard,
		PaymentMethodMobile, PaymentMethodCredit:
		return true
	}
	return false
}

// PaymentStatus represents the review status of a reported payment
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"  // Reported, awaiting administrator review
	PaymentStatusApproved PaymentStatus = "APPROVED" // Verified and applied to the receipt
	PaymentStatusRejected PaymentStatus = "REJECTED" // Denied, never applied
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusApproved, PaymentStatusRejected:
		return true
	}
	return false
}

// IsTerminal returns true if the payment can no longer change review status
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusApproved || s == PaymentStatusRejected
}

// Payment is a resident's reported payment against a receipt. It moves
// through administrator review; only approved payments touch the ledger.
// AppliedAmount and CreditedAmount record how the reconciler split it,
// and AppliedAt guards against applying the same payment twice.
type Payment struct {
	shared.TenantAggregateRoot
	ReceiptID      uuid.UUID       `json:"receipt_id"`
	UserID         uuid.UUID       `json:"user_id"`
	Amount         decimal.Decimal `json:"amount"`
	AppliedAmount  decimal.Decimal `json:"applied_amount"`  // Portion absorbed by the receipt
	CreditedAmount decimal.Decimal `json:"credited_amount"` // Excess routed to the payer's credit
	Method         PaymentMethod   `json:"method"`
	Reference      string          `json:"reference"` // Bank reference, unique per tenant
	Remark         string          `json:"remark"`
	Status         PaymentStatus   `json:"status"`
	AppliedAt      *time.Time      `json:"applied_at"`
	RejectedAt     *time.Time      `json:"rejected_at"`
	RejectReason   string          `json:"reject_reason"`
}

// NewPayment records a reported payment awaiting review
func NewPayment(
	tenantID uuid.UUID,
	receiptID uuid.UUID,
	userID uuid.UUID,
	amount valueobject.Money,
	method PaymentMethod,
	reference string,
	remark string,
) (*Payment, error) {
	if receiptID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECEIPT", "Receipt ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method is not valid")
	}
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Payment reference cannot be empty")
	}
	if len(reference) > 100 {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Payment reference cannot exceed 100 characters")
	}

	return &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ReceiptID:           receiptID,
		UserID:              userID,
		Amount:              amount.Amount(),
		AppliedAmount:       decimal.Zero,
		CreditedAmount:      decimal.Zero,
		Method:              method,
		Reference:           reference,
		Remark:              remark,
		Status:              PaymentStatusPending,
	}, nil
}

// NewCreditPayment records a synthetic payment drawn from stored credit.
// Credit draws skip review; they are created approved by the auto-settler.
func NewCreditPayment(
	tenantID uuid.UUID,
	receiptID uuid.UUID,
	userID uuid.UUID,
	amount valueobject.Money,
	reference string,
) (*Payment, error) {
	p, err := NewPayment(tenantID, receiptID, userID, amount, PaymentMethodCredit, reference, "credit auto-settlement")
	if err != nil {
		return nil, err
	}
	p.Status = PaymentStatusApproved
	return p, nil
}

// Approve marks the payment as verified by an administrator
func (p *Payment) Approve() error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot approve payment in %s status", p.Status))
	}

	p.Status = PaymentStatusApproved
	p.Bump()

	return nil
}

// Reject denies the payment. Rejected payments never touch the ledger.
func (p *Payment) Reject(reason string) error {
	if p.Status != PaymentStatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot reject payment in %s status", p.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	p.Status = PaymentStatusRejected
	p.RejectedAt = &now
	p.RejectReason = reason
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentRejectedEvent(p))

	return nil
}

// MarkApplied records how the reconciler split the payment between the
// receipt and the payer's credit. Calling it on an already applied payment
// is an error; the reconciler treats that as a replay and skips the ledger
// mutation instead.
func (p *Payment) MarkApplied(applied, credited valueobject.Money) error {
	if p.Status != PaymentStatusApproved {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot apply payment in %s status", p.Status))
	}
	if p.IsApplied() {
		return shared.NewDomainError("INVALID_STATE", "Payment has already been applied")
	}
	if !applied.MustAdd(credited).Amount().Equal(p.Amount) {
		return shared.NewDomainError("INVALID_AMOUNT", "Applied and credited amounts must add up to the payment")
	}

	now := time.Now()
	p.AppliedAmount = applied.Amount()
	p.CreditedAmount = credited.Amount()
	p.AppliedAt = &now
	p.UpdatedAt = now
	p.IncrementVersion()

	p.AddDomainEvent(NewPaymentAppliedEvent(p))

	return nil
}

// IsApplied returns true if the payment has been reconciled
func (p *Payment) IsApplied() bool {
	return p.AppliedAt != nil
}

// IsCreditDraw returns true for synthetic credit payments
func (p *Payment) IsCreditDraw() bool {
	return p.Method == PaymentMethodCredit
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVES(p.Amount)
}

// GetAppliedAmountMoney returns the applied portion as Money
func (p *Payment) GetAppliedAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVES(p.AppliedAmount)
}

// GetCreditedAmountMoney returns the credited portion as Money
func (p *Payment) GetCreditedAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVES(p.CreditedAmount)
}
