package supplier

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of a supplier invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "PENDING"   // Outstanding balance > 0
	InvoiceStatusPaid      InvoiceStatus = "PAID"      // Fully paid, outstanding = 0
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED" // Cancelled before any payment
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is in a terminal state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// PaymentRecord represents a payment made against the invoice.
// It is a value object within the Invoice aggregate, stored as JSONB.
type PaymentRecord struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	PaidAt    time.Time       `json:"paid_at"`
	Remark    string          `json:"remark,omitempty"`
}

// PaymentRecords is a slice of PaymentRecord that implements GORM Scanner/Valuer for JSONB storage
type PaymentRecords []PaymentRecord

// Value implements driver.Valuer interface for GORM to store as JSONB
func (p PaymentRecords) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	return json.Marshal(p)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (p *PaymentRecords) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentRecords{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan PaymentRecords: unsupported type")
	}

	if len(bytes) == 0 {
		*p = PaymentRecords{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// GetAmountMoney returns the record amount as Money
func (p *PaymentRecord) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVES(p.Amount)
}

// Invoice is a supplier invoice mirrored into the ledger. It tracks money
// the condominium owes a supplier. Unlike resident receipts there is no
// credit side here: a payment larger than the outstanding balance is a
// data-entry error and is rejected outright.
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber     string          `json:"invoice_number"`
	CondominiumID     uuid.UUID       `json:"condominium_id"`
	SupplierID        uuid.UUID       `json:"supplier_id"`
	SupplierName      string          `json:"supplier_name"`
	Concept           string          `json:"concept"`
	Amount            decimal.Decimal `json:"amount"`             // Original amount due
	PaidAmount        decimal.Decimal `json:"paid_amount"`        // Amount already paid
	OutstandingAmount decimal.Decimal `json:"outstanding_amount"` // Remaining amount due
	Status            InvoiceStatus   `json:"status"`
	IssueDate         time.Time       `json:"issue_date"`
	DueDate           *time.Time      `json:"due_date"`
	PaymentRecords    PaymentRecords  `json:"payment_records"`
	PaidAt            *time.Time      `json:"paid_at"`
	CancelledAt       *time.Time      `json:"cancelled_at"`
	CancelReason      string          `json:"cancel_reason"`
}

// NewInvoice registers a supplier invoice against a condominium
func NewInvoice(
	tenantID uuid.UUID,
	invoiceNumber string,
	condominiumID uuid.UUID,
	supplierID uuid.UUID,
	supplierName string,
	concept string,
	amount valueobject.Money,
	issueDate time.Time,
	dueDate *time.Time,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if condominiumID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONDOMINIUM", "Condominium ID cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID cannot be empty")
	}
	if supplierName == "" {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_NAME", "Supplier name cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice amount must be positive")
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       invoiceNumber,
		CondominiumID:       condominiumID,
		SupplierID:          supplierID,
		SupplierName:        supplierName,
		Concept:             concept,
		Amount:              amount.Amount(),
		PaidAmount:          decimal.Zero,
		OutstandingAmount:   amount.Amount(),
		Status:              InvoiceStatusPending,
		IssueDate:           issueDate,
		DueDate:             dueDate,
		PaymentRecords:      PaymentRecords{},
	}

	inv.AddDomainEvent(NewInvoiceRegisteredEvent(inv))

	return inv, nil
}

// ApplyPayment records a payment made to the supplier. Payments accumulate
// until the invoice is fully paid; an amount above the outstanding balance
// is rejected, as is a bank reference already recorded on the invoice.
func (inv *Invoice) ApplyPayment(amount valueobject.Money, method, reference, remark string) error {
	if inv.Status != InvoiceStatusPending {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot apply payment to invoice in %s status", inv.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.OutstandingAmount) {
		return shared.NewDomainError("EXCEEDS_OUTSTANDING",
			fmt.Sprintf("Payment amount %s exceeds outstanding amount %s",
				amount.String(), inv.OutstandingAmount.String()))
	}
	if reference == "" {
		return shared.NewDomainError("INVALID_REFERENCE", "Payment reference cannot be empty")
	}
	if inv.HasPaymentReference(reference) {
		return shared.NewDomainError("DUPLICATE_REFERENCE",
			fmt.Sprintf("Payment reference %s has already been recorded on this invoice", reference))
	}

	record := PaymentRecord{
		ID:        uuid.New(),
		Amount:    amount.Amount(),
		Method:    method,
		Reference: reference,
		PaidAt:    time.Now(),
		Remark:    remark,
	}
	inv.PaymentRecords = append(inv.PaymentRecords, record)

	inv.PaidAmount = inv.PaidAmount.Add(amount.Amount())
	inv.OutstandingAmount = inv.Amount.Sub(inv.PaidAmount)

	now := time.Now()
	if inv.OutstandingAmount.IsZero() {
		inv.Status = InvoiceStatusPaid
		inv.PaidAt = &now
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	} else {
		inv.AddDomainEvent(NewInvoicePaymentRecordedEvent(inv, &record))
	}

	inv.UpdatedAt = now
	inv.IncrementVersion()

	return nil
}

// Cancel cancels the invoice (only if no payments have been applied)
func (inv *Invoice) Cancel(reason string) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot cancel invoice in %s status", inv.Status))
	}
	if inv.PaidAmount.IsPositive() {
		return shared.NewDomainError("HAS_PAYMENTS", "Cannot cancel invoice with existing payments")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	inv.Status = InvoiceStatusCancelled
	inv.CancelledAt = &now
	inv.CancelReason = reason
	inv.OutstandingAmount = decimal.Zero
	inv.UpdatedAt = now
	inv.IncrementVersion()

	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv))

	return nil
}

// SetDueDate updates the due date
func (inv *Invoice) SetDueDate(dueDate *time.Time) error {
	if inv.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify due date for invoice in terminal state")
	}

	inv.DueDate = dueDate
	inv.Bump()

	return nil
}

// Helper methods

// GetAmountMoney returns the original amount as Money
func (inv *Invoice) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVES(inv.Amount)
}

// GetPaidAmountMoney returns the paid amount as Money
func (inv *Invoice) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVES(inv.PaidAmount)
}

// GetOutstandingAmountMoney returns the outstanding amount as Money
func (inv *Invoice) GetOutstandingAmountMoney() valueobject.Money {
	return valueobject.NewMoneyVES(inv.OutstandingAmount)
}

// IsPaid returns true if the invoice is fully paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == InvoiceStatusPaid
}

// IsCancelled returns true if the invoice is cancelled
func (inv *Invoice) IsCancelled() bool {
	return inv.Status == InvoiceStatusCancelled
}

// IsOverdue returns true if the invoice is past due and still outstanding
func (inv *Invoice) IsOverdue(asOf time.Time) bool {
	if inv.Status.IsTerminal() {
		return false
	}
	if inv.DueDate == nil {
		return false
	}
	return asOf.After(*inv.DueDate)
}

// PaymentCount returns the number of payments recorded
func (inv *Invoice) PaymentCount() int {
	return len(inv.PaymentRecords)
}

// HasPaymentReference returns true if a payment with this bank reference has
// already been recorded on the invoice
func (inv *Invoice) HasPaymentReference(reference string) bool {
	for i := range inv.PaymentRecords {
		if inv.PaymentRecords[i].Reference == reference {
			return true
		}
	}
	return false
}
