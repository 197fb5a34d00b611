package supplier

import (
	"testing"
	"time"

	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestInvoice(t *testing.T, amount float64) *Invoice {
	inv, err := NewInvoice(
		uuid.New(),
		"FAC-00123",
		uuid.New(),
		uuid.New(),
		"Ascensores Mirandinos C.A.",
		"elevator maintenance",
		valueobject.NewMoneyVESFromFloat(amount),
		time.Now(),
		nil,
	)
	require.NoError(t, err)
	return inv
}

func assertDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestNewInvoice_Success(t *testing.T) {
	inv := createTestInvoice(t, 5000.00)

	assert.Equal(t, InvoiceStatusPending, inv.Status)
	assert.True(t, inv.GetOutstandingAmountMoney().Equals(inv.GetAmountMoney()))
	assert.True(t, inv.GetPaidAmountMoney().IsZero())
	assert.Equal(t, 0, inv.PaymentCount())
}

func TestNewInvoice_Validation(t *testing.T) {
	amount := valueobject.NewMoneyVESFromFloat(100)

	tests := []struct {
		name          string
		invoiceNumber string
		condominiumID uuid.UUID
		supplierID    uuid.UUID
		supplierName  string
		amount        valueobject.Money
		wantCode      string
	}{
		{"empty number", "", uuid.New(), uuid.New(), "X", amount, "INVALID_INVOICE_NUMBER"},
		{"nil condominium", "F-1", uuid.Nil, uuid.New(), "X", amount, "INVALID_CONDOMINIUM"},
		{"nil supplier", "F-1", uuid.New(), uuid.Nil, "X", amount, "INVALID_SUPPLIER"},
		{"empty supplier name", "F-1", uuid.New(), uuid.New(), "", amount, "INVALID_SUPPLIER_NAME"},
		{"zero amount", "F-1", uuid.New(), uuid.New(), "X", valueobject.ZeroVES(), "INVALID_AMOUNT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewInvoice(uuid.New(), tt.invoiceNumber, tt.condominiumID, tt.supplierID,
				tt.supplierName, "", tt.amount, time.Now(), nil)
			assertDomainErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestInvoice_ApplyPayment_Full(t *testing.T) {
	inv := createTestInvoice(t, 5000.00)

	err := inv.ApplyPayment(valueobject.NewMoneyVESFromFloat(5000.00), "TRANSFER", "REF-9", "")

	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.GetOutstandingAmountMoney().IsZero())
	require.NotNil(t, inv.PaidAt)
	assert.Equal(t, 1, inv.PaymentCount())
}

func TestInvoice_ApplyPayment_Cumulative(t *testing.T) {
	inv := createTestInvoice(t, 1000.00)

	require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyVESFromFloat(400.00), "TRANSFER", "REF-1", ""))
	assert.Equal(t, InvoiceStatusPending, inv.Status)
	assert.Equal(t, "600", inv.GetOutstandingAmountMoney().String())

	require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyVESFromFloat(600.00), "TRANSFER", "REF-2", ""))
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.Equal(t, 2, inv.PaymentCount())
}

func TestInvoice_ApplyPayment_RejectsOverpayment(t *testing.T) {
	inv := createTestInvoice(t, 1000.00)

	err := inv.ApplyPayment(valueobject.NewMoneyVESFromFloat(1000.01), "TRANSFER", "REF-1", "")

	assertDomainErrorCode(t, err, "EXCEEDS_OUTSTANDING")
	assert.Equal(t, InvoiceStatusPending, inv.Status)
	assert.Equal(t, 0, inv.PaymentCount())
}

func TestInvoice_ApplyPayment_RejectsOverpaymentOfRemainder(t *testing.T) {
	inv := createTestInvoice(t, 1000.00)
	require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyVESFromFloat(800.00), "TRANSFER", "REF-1", ""))

	err := inv.ApplyPayment(valueobject.NewMoneyVESFromFloat(200.01), "TRANSFER", "REF-2", "")
	assertDomainErrorCode(t, err, "EXCEEDS_OUTSTANDING")
}

func TestInvoice_ApplyPayment_Validation(t *testing.T) {
	inv := createTestInvoice(t, 1000.00)

	err := inv.ApplyPayment(valueobject.ZeroVES(), "TRANSFER", "REF-1", "")
	assertDomainErrorCode(t, err, "INVALID_AMOUNT")

	err = inv.ApplyPayment(valueobject.NewMoneyVESFromFloat(100), "TRANSFER", "", "")
	assertDomainErrorCode(t, err, "INVALID_REFERENCE")
}

func TestInvoice_ApplyPayment_RejectsDuplicateReference(t *testing.T) {
	inv := createTestInvoice(t, 1000.00)
	require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyVESFromFloat(400.00), "TRANSFER", "REF-1", ""))

	err := inv.ApplyPayment(valueobject.NewMoneyVESFromFloat(400.00), "TRANSFER", "REF-1", "")

	assertDomainErrorCode(t, err, "DUPLICATE_REFERENCE")
	assert.Equal(t, 1, inv.PaymentCount())
	assert.Equal(t, "600", inv.GetOutstandingAmountMoney().String())
}

func TestInvoice_ApplyPayment_OnPaidInvoice(t *testing.T) {
	inv := createTestInvoice(t, 100.00)
	require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyVESFromFloat(100.00), "CASH", "REF-1", ""))

	err := inv.ApplyPayment(valueobject.NewMoneyVESFromFloat(1.00), "CASH", "REF-2", "")
	assertDomainErrorCode(t, err, "INVALID_STATE")
}

func TestInvoice_Cancel(t *testing.T) {
	inv := createTestInvoice(t, 100.00)

	err := inv.Cancel("duplicate entry")

	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusCancelled, inv.Status)
	assert.True(t, inv.GetOutstandingAmountMoney().IsZero())
	require.NotNil(t, inv.CancelledAt)
}

func TestInvoice_Cancel_WithPayments(t *testing.T) {
	inv := createTestInvoice(t, 100.00)
	require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyVESFromFloat(50.00), "CASH", "REF-1", ""))

	err := inv.Cancel("mistake")
	assertDomainErrorCode(t, err, "HAS_PAYMENTS")
}

func TestInvoice_Cancel_Twice(t *testing.T) {
	inv := createTestInvoice(t, 100.00)
	require.NoError(t, inv.Cancel("first"))

	err := inv.Cancel("second")
	assertDomainErrorCode(t, err, "INVALID_STATE")
}

func TestInvoice_IsOverdue(t *testing.T) {
	inv := createTestInvoice(t, 100.00)
	assert.False(t, inv.IsOverdue(time.Now()), "no due date means never overdue")

	due := time.Now().AddDate(0, 0, -1)
	require.NoError(t, inv.SetDueDate(&due))
	assert.True(t, inv.IsOverdue(time.Now()))

	require.NoError(t, inv.ApplyPayment(valueobject.NewMoneyVESFromFloat(100.00), "CASH", "REF-1", ""))
	assert.False(t, inv.IsOverdue(time.Now()))
}
