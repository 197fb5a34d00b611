package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/condoledger/backend/internal/domain/billing"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
)

// ReceiptModel is the persistence model for the Receipt aggregate root.
// The partial unique index on (tenant, condominium, period) lives in the
// migrations because it carries a WHERE status != 'ANULED' clause.
type ReceiptModel struct {
	TenantAggregateModel
	ReceiptNumber string                `gorm:"type:varchar(50);not null;uniqueIndex:idx_receipt_tenant_number,priority:2"`
	CondominiumID uuid.UUID             `gorm:"type:uuid;not null;index"`
	PropertyID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	OwnerID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	UserID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	Month         int                   `gorm:"not null"`
	Year          int                   `gorm:"not null"`
	Amount        decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	PendingAmount decimal.Decimal       `gorm:"type:decimal(18,4);not null;index"`
	Status        billing.ReceiptStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	DueDate       time.Time             `gorm:"not null;index"`
	Visible       bool                  `gorm:"not null;default:true"`
	Remark        string                `gorm:"type:text"`
	PaidAt        *time.Time
	AnuledAt      *time.Time
	AnulReason    string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts the persistence model to a domain Receipt entity.
func (m *ReceiptModel) ToDomain() *billing.Receipt {
	return &billing.Receipt{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		ReceiptNumber:       m.ReceiptNumber,
		CondominiumID:       m.CondominiumID,
		PropertyID:          m.PropertyID,
		OwnerID:             m.OwnerID,
		UserID:              m.UserID,
		Month:               m.Month,
		Year:                m.Year,
		Amount:              m.Amount,
		PendingAmount:       m.PendingAmount,
		Status:              m.Status,
		DueDate:             m.DueDate,
		Visible:             m.Visible,
		Remark:              m.Remark,
		PaidAt:              m.PaidAt,
		AnuledAt:            m.AnuledAt,
		AnulReason:          m.AnulReason,
	}
}

// FromDomain populates the persistence model from a domain Receipt entity.
func (m *ReceiptModel) FromDomain(r *billing.Receipt) {
	m.FromDomainTenantAggregateRoot(r.TenantAggregateRoot)
	m.ReceiptNumber = r.ReceiptNumber
	m.CondominiumID = r.CondominiumID
	m.PropertyID = r.PropertyID
	m.OwnerID = r.OwnerID
	m.UserID = r.UserID
	m.Month = r.Month
	m.Year = r.Year
	m.Amount = r.Amount
	m.PendingAmount = r.PendingAmount
	m.Status = r.Status
	m.DueDate = r.DueDate
	m.Visible = r.Visible
	m.Remark = r.Remark
	m.PaidAt = r.PaidAt
	m.AnuledAt = r.AnuledAt
	m.AnulReason = r.AnulReason
}

// ReceiptModelFromDomain creates a new persistence model from a domain Receipt.
func ReceiptModelFromDomain(r *billing.Receipt) *ReceiptModel {
	m := &ReceiptModel{}
	m.FromDomain(r)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
type PaymentModel struct {
	TenantAggregateModel
	ReceiptID      uuid.UUID             `gorm:"type:uuid;not null;index"`
	UserID         uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount         decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	AppliedAmount  decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	CreditedAmount decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Method         billing.PaymentMethod `gorm:"type:varchar(20);not null"`
	Reference      string                `gorm:"type:varchar(100);not null;uniqueIndex:idx_payment_tenant_reference,priority:2"`
	Remark         string                `gorm:"type:text"`
	Status         billing.PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	AppliedAt      *time.Time
	RejectedAt     *time.Time
	RejectReason   string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		ReceiptID:           m.ReceiptID,
		UserID:              m.UserID,
		Amount:              m.Amount,
		AppliedAmount:       m.AppliedAmount,
		CreditedAmount:      m.CreditedAmount,
		Method:              m.Method,
		Reference:           m.Reference,
		Remark:              m.Remark,
		Status:              m.Status,
		AppliedAt:           m.AppliedAt,
		RejectedAt:          m.RejectedAt,
		RejectReason:        m.RejectReason,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.ReceiptID = p.ReceiptID
	m.UserID = p.UserID
	m.Amount = p.Amount
	m.AppliedAmount = p.AppliedAmount
	m.CreditedAmount = p.CreditedAmount
	m.Method = p.Method
	m.Reference = p.Reference
	m.Remark = p.Remark
	m.Status = p.Status
	m.AppliedAt = p.AppliedAt
	m.RejectedAt = p.RejectedAt
	m.RejectReason = p.RejectReason
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// BillingAccountModel is the persistence model for the BillingAccount aggregate root.
type BillingAccountModel struct {
	TenantAggregateModel
	UserID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_account_tenant_user,priority:2"`
	PendingAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreditBalance decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (BillingAccountModel) TableName() string {
	return "billing_accounts"
}

// ToDomain converts the persistence model to a domain BillingAccount entity.
func (m *BillingAccountModel) ToDomain() *billing.BillingAccount {
	return &billing.BillingAccount{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		UserID:              m.UserID,
		PendingAmount:       m.PendingAmount,
		CreditBalance:       m.CreditBalance,
	}
}

// FromDomain populates the persistence model from a domain BillingAccount entity.
func (m *BillingAccountModel) FromDomain(a *billing.BillingAccount) {
	m.FromDomainTenantAggregateRoot(a.TenantAggregateRoot)
	m.UserID = a.UserID
	m.PendingAmount = a.PendingAmount
	m.CreditBalance = a.CreditBalance
}

// BillingAccountModelFromDomain creates a new persistence model from a domain BillingAccount.
func BillingAccountModelFromDomain(a *billing.BillingAccount) *BillingAccountModel {
	m := &BillingAccountModel{}
	m.FromDomain(a)
	return m
}

// ExpenseRecordModel is the persistence model for the ExpenseRecord aggregate root.
type ExpenseRecordModel struct {
	TenantAggregateModel
	CondominiumID uuid.UUID               `gorm:"type:uuid;not null;index"`
	Month         int                     `gorm:"not null"`
	Year          int                     `gorm:"not null"`
	Category      billing.ExpenseCategory `gorm:"type:varchar(30);not null;index"`
	Description   string                  `gorm:"type:varchar(500);not null"`
	Amount        decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	InvoiceID     *uuid.UUID              `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (ExpenseRecordModel) TableName() string {
	return "expense_records"
}

// ToDomain converts the persistence model to a domain ExpenseRecord entity.
func (m *ExpenseRecordModel) ToDomain() *billing.ExpenseRecord {
	return &billing.ExpenseRecord{
		TenantAggregateRoot: m.tenantAggregateRoot(),
		CondominiumID:       m.CondominiumID,
		Month:               m.Month,
		Year:                m.Year,
		Category:            m.Category,
		Description:         m.Description,
		Amount:              m.Amount,
		InvoiceID:           m.InvoiceID,
	}
}

// FromDomain populates the persistence model from a domain ExpenseRecord entity.
func (m *ExpenseRecordModel) FromDomain(e *billing.ExpenseRecord) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.CondominiumID = e.CondominiumID
	m.Month = e.Month
	m.Year = e.Year
	m.Category = e.Category
	m.Description = e.Description
	m.Amount = e.Amount
	m.InvoiceID = e.InvoiceID
}

// ExpenseRecordModelFromDomain creates a new persistence model from a domain ExpenseRecord.
func ExpenseRecordModelFromDomain(e *billing.ExpenseRecord) *ExpenseRecordModel {
	m := &ExpenseRecordModel{}
	m.FromDomain(e)
	return m
}

// PropertyModel is the persistence model for the property snapshots the
// allocation engine reads. The administration side owns these rows.
type PropertyModel struct {
	BaseModel
	TenantID      uuid.UUID              `gorm:"type:uuid;not null;index"`
	CondominiumID uuid.UUID              `gorm:"type:uuid;not null;index"`
	OwnerID       uuid.UUID              `gorm:"type:uuid;not null;index"`
	UserID        uuid.UUID              `gorm:"type:uuid;not null;index"`
	Code          string                 `gorm:"type:varchar(50);not null"`
	Aliquot       *decimal.Decimal       `gorm:"type:decimal(7,4)"`
	Status        billing.PropertyStatus `gorm:"type:varchar(20);not null;default:'OCCUPIED'"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the persistence model to a domain Property snapshot.
func (m *PropertyModel) ToDomain() (billing.Property, error) {
	p := billing.Property{
		ID:            m.ID,
		CondominiumID: m.CondominiumID,
		OwnerID:       m.OwnerID,
		UserID:        m.UserID,
		Code:          m.Code,
		Status:        m.Status,
	}
	if m.Aliquot != nil {
		aliquot, err := valueobject.NewAliquot(*m.Aliquot)
		if err != nil {
			return billing.Property{}, err
		}
		p.Aliquot = &aliquot
	}
	return p, nil
}
