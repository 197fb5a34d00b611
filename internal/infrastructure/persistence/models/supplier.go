package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/condoledger/backend/internal/domain/supplier"
)

// InvoiceModel is the persistence model for the supplier Invoice aggregate root.
type InvoiceModel struct {
	TenantAggregateModel
	InvoiceNumber     string                  `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_supplier_number,priority:3"`
	CondominiumID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	SupplierID        uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_tenant_supplier_number,priority:2"`
	SupplierName      string                  `gorm:"type:varchar(200);not null"`
	Concept           string                  `gorm:"type:varchar(500)"`
	Amount            decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	PaidAmount        decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	OutstandingAmount decimal.Decimal         `gorm:"type:decimal(18,4);not null;index"`
	Status            supplier.InvoiceStatus  `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	IssueDate         time.Time               `gorm:"not null"`
	DueDate           *time.Time              `gorm:"index"`
	PaymentRecords    supplier.PaymentRecords `gorm:"type:jsonb;default:'[]'"`
	PaidAt            *time.Time
	CancelledAt       *time.Time
	CancelReason      string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "supplier_invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *supplier.Invoice {
	return &supplier.Invoice{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		InvoiceNumber:       m.InvoiceNumber,
		CondominiumID:       m.CondominiumID,
		SupplierID:          m.SupplierID,
		SupplierName:        m.SupplierName,
		Concept:             m.Concept,
		Amount:              m.Amount,
		PaidAmount:          m.PaidAmount,
		OutstandingAmount:   m.OutstandingAmount,
		Status:              m.Status,
		IssueDate:           m.IssueDate,
		DueDate:             m.DueDate,
		PaymentRecords:      m.PaymentRecords,
		PaidAt:              m.PaidAt,
		CancelledAt:         m.CancelledAt,
		CancelReason:        m.CancelReason,
	}
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *supplier.Invoice) {
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CondominiumID = inv.CondominiumID
	m.SupplierID = inv.SupplierID
	m.SupplierName = inv.SupplierName
	m.Concept = inv.Concept
	m.Amount = inv.Amount
	m.PaidAmount = inv.PaidAmount
	m.OutstandingAmount = inv.OutstandingAmount
	m.Status = inv.Status
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.PaymentRecords = inv.PaymentRecords
	m.PaidAt = inv.PaidAt
	m.CancelledAt = inv.CancelledAt
	m.CancelReason = inv.CancelReason
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *supplier.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}
