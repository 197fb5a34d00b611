package billing

import (
	"fmt"
	"time"

	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptStatus represents the lifecycle status of a receipt
type ReceiptStatus string

const (
	ReceiptStatusPending ReceiptStatus = "PENDING" // Issued, nothing applied yet
	ReceiptStatusPartial ReceiptStatus = "PARTIAL" // Partially paid, 0 < pending < amount
	ReceiptStatusPaid    ReceiptStatus = "PAID"    // Fully paid, pending = 0
	ReceiptStatusOverdue ReceiptStatus = "OVERDUE" // Past due date with an open balance
	ReceiptStatusAnuled  ReceiptStatus = "ANULED"  // Voided by an administrator before any payment
)

// IsValid checks if the status is a valid ReceiptStatus
func (s ReceiptStatus) IsValid() bool {
	switch s {
	case ReceiptStatusPending, ReceiptStatusPartial, ReceiptStatusPaid,
		ReceiptStatusOverdue, ReceiptStatusAnuled:
		return true
	}
	return false
}

// String returns the string representation of ReceiptStatus
func (s ReceiptStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the receipt is in a terminal state
func (s ReceiptStatus) IsTerminal() bool {
	return s == ReceiptStatusPaid || s == ReceiptStatusAnuled
}

// CanApplyPayment returns true if payments can be applied in this status
func (s ReceiptStatus) CanApplyPayment() bool {
	return s == ReceiptStatusPending || s == ReceiptStatusPartial || s == ReceiptStatusOverdue
}

// IsDelinquent returns true if the status counts toward a user's delinquency
func (s ReceiptStatus) IsDelinquent() bool {
	return s == ReceiptStatusOverdue
}

// Settlement is the outcome of applying a payment to a receipt.
// Applied is the portion absorbed by the receipt's open balance and
// CreditDelta is the excess that must be routed to the payer's credit.
// Applied + CreditDelta always equals the payment amount.
type Settlement struct {
	Applied     valueobject.Money
	CreditDelta valueobject.Money
}

// Receipt is the monthly charge issued to a property for its share of
// the condominium's expenses. It is the aggregate the payment
// reconciler settles against.
type Receipt struct {
	shared.TenantAggregateRoot
	ReceiptNumber string          `json:"receipt_number"`
	CondominiumID uuid.UUID       `json:"condominium_id"`
	PropertyID    uuid.UUID       `json:"property_id"`
	OwnerID       uuid.UUID       `json:"owner_id"`
	UserID        uuid.UUID       `json:"user_id"` // payer identity credit accrues to
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	Amount        decimal.Decimal `json:"amount"`         // Original amount due
	PendingAmount decimal.Decimal `json:"pending_amount"` // Remaining amount due
	Status        ReceiptStatus   `json:"status"`
	DueDate       time.Time       `json:"due_date"`
	Visible       bool            `json:"visible"` // Hidden receipts are excluded from resident listings
	Remark        string          `json:"remark"`
	PaidAt        *time.Time      `json:"paid_at"`
	AnuledAt      *time.Time      `json:"anuled_at"`
	AnulReason    string          `json:"anul_reason"`
}

// NewReceipt creates a receipt for one property's share of a billing period.
// A zero-amount share (a fully vacant month, or a 0% aliquot edge) yields a
// receipt that is already settled.
func NewReceipt(
	tenantID uuid.UUID,
	receiptNumber string,
	condominiumID uuid.UUID,
	propertyID uuid.UUID,
	ownerID uuid.UUID,
	userID uuid.UUID,
	period valueobject.BillingPeriod,
	amount valueobject.Money,
	dueDate time.Time,
) (*Receipt, error) {
	if receiptNumber == "" {
		return nil, shared.NewDomainError("INVALID_RECEIPT_NUMBER", "Receipt number cannot be empty")
	}
	if len(receiptNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_RECEIPT_NUMBER", "Receipt number cannot exceed 50 characters")
	}
	if condominiumID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONDOMINIUM", "Condominium ID cannot be empty")
	}
	if propertyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROPERTY", "Property ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Receipt amount cannot be negative")
	}

	r := &Receipt{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ReceiptNumber:       receiptNumber,
		CondominiumID:       condominiumID,
		PropertyID:          propertyID,
		OwnerID:             ownerID,
		UserID:              userID,
		Month:               int(period.Month()),
		Year:                period.Year(),
		Amount:              amount.Amount(),
		PendingAmount:       amount.Amount(),
		Status:              ReceiptStatusPending,
		DueDate:             dueDate,
		Visible:             true,
	}

	if amount.IsZero() {
		now := time.Now()
		r.Status = ReceiptStatusPaid
		r.PaidAt = &now
	}

	r.AddDomainEvent(NewReceiptIssuedEvent(r))

	return r, nil
}

// Settle applies a payment amount against the receipt's open balance.
// The part of the payment up to the pending amount is absorbed; any excess
// is returned as CreditDelta for the caller to credit to the payer. The
// pending amount never goes negative and Applied + CreditDelta equals the
// payment. Settling the last cent transitions the receipt to PAID.
func (r *Receipt) Settle(payment valueobject.Money) (Settlement, error) {
	if !r.Status.CanApplyPayment() {
		return Settlement{}, shared.NewDomainError("RECEIPT_ALREADY_SETTLED",
			fmt.Sprintf("Cannot apply payment to receipt in %s status", r.Status))
	}
	if !payment.IsPositive() {
		return Settlement{}, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	pending := r.GetPendingAmountMoney()
	applied, err := payment.Min(pending)
	if err != nil {
		return Settlement{}, err
	}
	creditDelta := payment.MustSubtract(applied)

	r.PendingAmount = r.PendingAmount.Sub(applied.Amount())

	now := time.Now()
	if r.PendingAmount.IsZero() {
		r.Status = ReceiptStatusPaid
		r.PaidAt = &now
		r.AddDomainEvent(NewReceiptPaidEvent(r))
	} else {
		r.Status = ReceiptStatusPartial
		r.AddDomainEvent(NewReceiptPartiallyPaidEvent(r, applied))
	}
	if creditDelta.IsPositive() {
		r.AddDomainEvent(NewReceiptOverpaidEvent(r, creditDelta))
	}

	r.UpdatedAt = now
	r.IncrementVersion()

	return Settlement{Applied: applied, CreditDelta: creditDelta}, nil
}

// MarkOverdue flags an open receipt whose due date has passed.
// Already overdue and terminal receipts are left untouched.
func (r *Receipt) MarkOverdue(asOf time.Time) error {
	if r.Status != ReceiptStatusPending && r.Status != ReceiptStatusPartial {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot mark receipt in %s status as overdue", r.Status))
	}
	if !r.DueDate.Before(asOf) {
		return shared.NewDomainError("INVALID_STATE", "Receipt due date has not passed")
	}

	r.Status = ReceiptStatusOverdue
	r.Bump()

	r.AddDomainEvent(NewReceiptOverdueEvent(r))

	return nil
}

// Annul voids the receipt. Receipts that already absorbed payments cannot
// be annulled; the money applied to them would otherwise vanish from the
// ledger. The open balance is released so the payer's pending total drops.
func (r *Receipt) Annul(reason string) error {
	if r.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot annul receipt in %s status", r.Status))
	}
	if r.PendingAmount.LessThan(r.Amount) {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot annul receipt with applied payments")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Annulment reason is required")
	}

	now := time.Now()
	r.Status = ReceiptStatusAnuled
	r.AnuledAt = &now
	r.AnulReason = reason
	r.PendingAmount = decimal.Zero
	r.Visible = false
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewReceiptAnuledEvent(r))

	return nil
}

// SetVisible toggles resident-facing visibility
func (r *Receipt) SetVisible(visible bool) {
	r.Visible = visible
	r.Bump()
}

// Helper methods

// Period returns the billing period the receipt belongs to
func (r *Receipt) Period() valueobject.BillingPeriod {
	return valueobject.MustNewBillingPeriod(r.Month, r.Year)
}

// GetAmountMoney returns the original amount as Money
func (r *Receipt) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVES(r.Amount)
}

// GetPendingAmountMoney returns the open balance as Money
func (r *Receipt) GetPendingAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVES(r.PendingAmount)
}

// GetAppliedAmountMoney returns the portion of the amount already absorbed
func (r *Receipt) GetAppliedAmountMoney() valueobject.Money {
	if r.Status == ReceiptStatusAnuled {
		return valueobject.ZeroVES()
	}
	return valueobject.NewMoneyVES(r.Amount.Sub(r.PendingAmount))
}

// IsPaid returns true if the receipt is fully paid
func (r *Receipt) IsPaid() bool {
	return r.Status == ReceiptStatusPaid
}

// IsAnuled returns true if the receipt has been voided
func (r *Receipt) IsAnuled() bool {
	return r.Status == ReceiptStatusAnuled
}

// IsOpen returns true if the receipt still carries an open balance
func (r *Receipt) IsOpen() bool {
	return r.Status.CanApplyPayment()
}

// IsPastDue returns true if an open receipt's due date has passed
func (r *Receipt) IsPastDue(asOf time.Time) bool {
	if r.Status.IsTerminal() {
		return false
	}
	return r.DueDate.Before(asOf)
}
