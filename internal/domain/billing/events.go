package billing

import (
	"time"

	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptIssuedEvent is raised when a receipt is generated for a property
type ReceiptIssuedEvent struct {
	shared.BaseDomainEvent
	ReceiptID     uuid.UUID       `json:"receipt_id"`
	ReceiptNumber string          `json:"receipt_number"`
	CondominiumID uuid.UUID       `json:"condominium_id"`
	PropertyID    uuid.UUID       `json:"property_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *ReceiptIssuedEvent) EventType() string {
	return "ReceiptIssued"
}

// NewReceiptIssuedEvent creates a new ReceiptIssuedEvent
func NewReceiptIssuedEvent(r *Receipt) *ReceiptIssuedEvent {
	return &ReceiptIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ReceiptIssued", "Receipt", r.ID, r.TenantID),
		ReceiptID:       r.ID,
		ReceiptNumber:   r.ReceiptNumber,
		CondominiumID:   r.CondominiumID,
		PropertyID:      r.PropertyID,
		UserID:          r.UserID,
		Month:           r.Month,
		Year:            r.Year,
		Amount:          r.Amount,
		DueDate:         r.DueDate,
	}
}

// ReceiptPaidEvent is raised when a receipt's open balance reaches zero
type ReceiptPaidEvent struct {
	shared.BaseDomainEvent
	ReceiptID     uuid.UUID       `json:"receipt_id"`
	ReceiptNumber string          `json:"receipt_number"`
	UserID        uuid.UUID       `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAt        time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *ReceiptPaidEvent) EventType() string {
	return "ReceiptPaid"
}

// NewReceiptPaidEvent creates a new ReceiptPaidEvent
func NewReceiptPaidEvent(r *Receipt) *ReceiptPaidEvent {
	paidAt := time.Now()
	if r.PaidAt != nil {
		paidAt = *r.PaidAt
	}
	return &ReceiptPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ReceiptPaid", "Receipt", r.ID, r.TenantID),
		ReceiptID:       r.ID,
		ReceiptNumber:   r.ReceiptNumber,
		UserID:          r.UserID,
		Amount:          r.Amount,
		PaidAt:          paidAt,
	}
}

// ReceiptPartiallyPaidEvent is raised when a payment leaves an open balance
type ReceiptPartiallyPaidEvent struct {
	shared.BaseDomainEvent
	ReceiptID     uuid.UUID       `json:"receipt_id"`
	ReceiptNumber string          `json:"receipt_number"`
	UserID        uuid.UUID       `json:"user_id"`
	AppliedAmount decimal.Decimal `json:"applied_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
}

// EventType returns the event type name
func (e *ReceiptPartiallyPaidEvent) EventType() string {
	return "ReceiptPartiallyPaid"
}

// NewReceiptPartiallyPaidEvent creates a new ReceiptPartiallyPaidEvent
func NewReceiptPartiallyPaidEvent(r *Receipt, applied valueobject.Money) *ReceiptPartiallyPaidEvent {
	return &ReceiptPartiallyPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ReceiptPartiallyPaid", "Receipt", r.ID, r.TenantID),
		ReceiptID:       r.ID,
		ReceiptNumber:   r.ReceiptNumber,
		UserID:          r.UserID,
		AppliedAmount:   applied.Amount(),
		PendingAmount:   r.PendingAmount,
	}
}

// ReceiptOverpaidEvent is raised when a payment exceeds the open balance
// and the excess accrues to the payer's credit
type ReceiptOverpaidEvent struct {
	shared.BaseDomainEvent
	ReceiptID   uuid.UUID       `json:"receipt_id"`
	UserID      uuid.UUID       `json:"user_id"`
	CreditDelta decimal.Decimal `json:"credit_delta"`
}

// EventType returns the event type name
func (e *ReceiptOverpaidEvent) EventType() string {
	return "ReceiptOverpaid"
}

// NewReceiptOverpaidEvent creates a new ReceiptOverpaidEvent
func NewReceiptOverpaidEvent(r *Receipt, creditDelta valueobject.Money) *ReceiptOverpaidEvent {
	return &ReceiptOverpaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ReceiptOverpaid", "Receipt", r.ID, r.TenantID),
		ReceiptID:       r.ID,
		UserID:          r.UserID,
		CreditDelta:     creditDelta.Amount(),
	}
}

// ReceiptOverdueEvent is raised when an open receipt passes its due date
type ReceiptOverdueEvent struct {
	shared.BaseDomainEvent
	ReceiptID     uuid.UUID       `json:"receipt_id"`
	ReceiptNumber string          `json:"receipt_number"`
	UserID        uuid.UUID       `json:"user_id"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	DueDate       time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *ReceiptOverdueEvent) EventType() string {
	return "ReceiptOverdue"
}

// NewReceiptOverdueEvent creates a new ReceiptOverdueEvent
func NewReceiptOverdueEvent(r *Receipt) *ReceiptOverdueEvent {
	return &ReceiptOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ReceiptOverdue", "Receipt", r.ID, r.TenantID),
		ReceiptID:       r.ID,
		ReceiptNumber:   r.ReceiptNumber,
		UserID:          r.UserID,
		PendingAmount:   r.PendingAmount,
		DueDate:         r.DueDate,
	}
}

// ReceiptAnuledEvent is raised when an administrator voids a receipt
type ReceiptAnuledEvent struct {
	shared.BaseDomainEvent
	ReceiptID     uuid.UUID       `json:"receipt_id"`
	ReceiptNumber string          `json:"receipt_number"`
	UserID        uuid.UUID       `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Reason        string          `json:"reason"`
}

// EventType returns the event type name
func (e *ReceiptAnuledEvent) EventType() string {
	return "ReceiptAnuled"
}

// NewReceiptAnuledEvent creates a new ReceiptAnuledEvent
func NewReceiptAnuledEvent(r *Receipt) *ReceiptAnuledEvent {
	return &ReceiptAnuledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ReceiptAnuled", "Receipt", r.ID, r.TenantID),
		ReceiptID:       r.ID,
		ReceiptNumber:   r.ReceiptNumber,
		UserID:          r.UserID,
		Amount:          r.Amount,
		Reason:          r.AnulReason,
	}
}

// PaymentAppliedEvent is raised when an approved payment has been
// reconciled against its receipt
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	PaymentID      uuid.UUID       `json:"payment_id"`
	ReceiptID      uuid.UUID       `json:"receipt_id"`
	UserID         uuid.UUID       `json:"user_id"`
	Amount         decimal.Decimal `json:"amount"`
	AppliedAmount  decimal.Decimal `json:"applied_amount"`
	CreditedAmount decimal.Decimal `json:"credited_amount"`
	Method         PaymentMethod   `json:"method"`
	Reference      string          `json:"reference"`
}

// EventType returns the event type name
func (e *PaymentAppliedEvent) EventType() string {
	return "PaymentApplied"
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(p *Payment) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentApplied", "Payment", p.ID, p.TenantID),
		PaymentID:       p.ID,
		ReceiptID:       p.ReceiptID,
		UserID:          p.UserID,
		Amount:          p.Amount,
		AppliedAmount:   p.AppliedAmount,
		CreditedAmount:  p.CreditedAmount,
		Method:          p.Method,
		Reference:       p.Reference,
	}
}

// PaymentRejectedEvent is raised when an administrator rejects a payment
type PaymentRejectedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID `json:"payment_id"`
	ReceiptID uuid.UUID `json:"receipt_id"`
	Reason    string    `json:"reason"`
}

// EventType returns the event type name
func (e *PaymentRejectedEvent) EventType() string {
	return "PaymentRejected"
}

// NewPaymentRejectedEvent creates a new PaymentRejectedEvent
func NewPaymentRejectedEvent(p *Payment) *PaymentRejectedEvent {
	return &PaymentRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRejected", "Payment", p.ID, p.TenantID),
		PaymentID:       p.ID,
		ReceiptID:       p.ReceiptID,
		Reason:          p.RejectReason,
	}
}

// CreditAccruedEvent is raised when overpayment excess lands on an account
type CreditAccruedEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID       `json:"account_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Delta     decimal.Decimal `json:"delta"`
	Balance   decimal.Decimal `json:"balance"`
}

// EventType returns the event type name
func (e *CreditAccruedEvent) EventType() string {
	return "CreditAccrued"
}

// NewCreditAccruedEvent creates a new CreditAccruedEvent
func NewCreditAccruedEvent(a *BillingAccount, delta valueobject.Money) *CreditAccruedEvent {
	return &CreditAccruedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CreditAccrued", "BillingAccount", a.ID, a.TenantID),
		AccountID:       a.ID,
		UserID:          a.UserID,
		Delta:           delta.Amount(),
		Balance:         a.CreditBalance,
	}
}

// CreditDrawnEvent is raised when stored credit is spent on open receipts
type CreditDrawnEvent struct {
	shared.BaseDomainEvent
	AccountID uuid.UUID       `json:"account_id"`
	UserID    uuid.UUID       `json:"user_id"`
	Delta     decimal.Decimal `json:"delta"`
	Balance   decimal.Decimal `json:"balance"`
}

// EventType returns the event type name
func (e *CreditDrawnEvent) EventType() string {
	return "CreditDrawn"
}

// NewCreditDrawnEvent creates a new CreditDrawnEvent
func NewCreditDrawnEvent(a *BillingAccount, delta valueobject.Money) *CreditDrawnEvent {
	return &CreditDrawnEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("CreditDrawn", "BillingAccount", a.ID, a.TenantID),
		AccountID:       a.ID,
		UserID:          a.UserID,
		Delta:           delta.Amount(),
		Balance:         a.CreditBalance,
	}
}
