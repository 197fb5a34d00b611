package billing

import (
	"testing"

	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestPayment(t *testing.T, amount float64) *Payment {
	p, err := NewPayment(
		uuid.New(),
		uuid.New(),
		uuid.New(),
		valueobject.NewMoneyVESFromFloat(amount),
		PaymentMethodTransfer,
		"REF-0001",
		"",
	)
	require.NoError(t, err)
	return p
}

func TestNewPayment_Success(t *testing.T) {
	p := createTestPayment(t, 500.00)

	assert.Equal(t, PaymentStatusPending, p.Status)
	assert.True(t, p.GetAppliedAmountMoney().IsZero())
	assert.True(t, p.GetCreditedAmountMoney().IsZero())
	assert.Nil(t, p.AppliedAt)
	assert.False(t, p.IsApplied())
}

func TestNewPayment_Validation(t *testing.T) {
	amount := valueobject.NewMoneyVESFromFloat(100)

	tests := []struct {
		name      string
		receiptID uuid.UUID
		userID    uuid.UUID
		amount    valueobject.Money
		method    PaymentMethod
		reference string
		wantCode  string
	}{
		{"nil receipt", uuid.Nil, uuid.New(), amount, PaymentMethodCash, "R1", "INVALID_RECEIPT"},
		{"nil user", uuid.New(), uuid.Nil, amount, PaymentMethodCash, "R1", "INVALID_USER"},
		{"zero amount", uuid.New(), uuid.New(), valueobject.ZeroVES(), PaymentMethodCash, "R1", "INVALID_AMOUNT"},
		{"negative amount", uuid.New(), uuid.New(), valueobject.NewMoneyVESFromFloat(-5), PaymentMethodCash, "R1", "INVALID_AMOUNT"},
		{"bad method", uuid.New(), uuid.New(), amount, PaymentMethod("CHECK"), "R1", "INVALID_METHOD"},
		{"empty reference", uuid.New(), uuid.New(), amount, PaymentMethodCash, "", "INVALID_REFERENCE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPayment(uuid.New(), tt.receiptID, tt.userID, tt.amount, tt.method, tt.reference, "")
			assertDomainErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestNewCreditPayment_IsPreApproved(t *testing.T) {
	p, err := NewCreditPayment(uuid.New(), uuid.New(), uuid.New(),
		valueobject.NewMoneyVESFromFloat(75.00), "CREDIT-xyz")

	require.NoError(t, err)
	assert.Equal(t, PaymentStatusApproved, p.Status)
	assert.Equal(t, PaymentMethodCredit, p.Method)
	assert.True(t, p.IsCreditDraw())
}

func TestPayment_Approve(t *testing.T) {
	p := createTestPayment(t, 100.00)

	require.NoError(t, p.Approve())
	assert.Equal(t, PaymentStatusApproved, p.Status)

	err := p.Approve()
	assertDomainErrorCode(t, err, "INVALID_STATE")
}

func TestPayment_Reject(t *testing.T) {
	p := createTestPayment(t, 100.00)

	err := p.Reject("reference not found in bank statement")

	require.NoError(t, err)
	assert.Equal(t, PaymentStatusRejected, p.Status)
	require.NotNil(t, p.RejectedAt)
	assert.Equal(t, "reference not found in bank statement", p.RejectReason)
}

func TestPayment_Reject_RequiresReason(t *testing.T) {
	p := createTestPayment(t, 100.00)

	err := p.Reject("")
	assertDomainErrorCode(t, err, "INVALID_REASON")
}

func TestPayment_Reject_AfterApproval(t *testing.T) {
	p := createTestPayment(t, 100.00)
	require.NoError(t, p.Approve())

	err := p.Reject("too late")
	assertDomainErrorCode(t, err, "INVALID_STATE")
}

func TestPayment_MarkApplied(t *testing.T) {
	p := createTestPayment(t, 500.00)
	require.NoError(t, p.Approve())

	err := p.MarkApplied(
		valueobject.NewMoneyVESFromFloat(450.00),
		valueobject.NewMoneyVESFromFloat(50.00),
	)

	require.NoError(t, err)
	assert.True(t, p.IsApplied())
	assert.Equal(t, "450", p.GetAppliedAmountMoney().String())
	assert.Equal(t, "50", p.GetCreditedAmountMoney().String())
	require.NotNil(t, p.AppliedAt)
}

func TestPayment_MarkApplied_SplitMustMatchAmount(t *testing.T) {
	p := createTestPayment(t, 500.00)
	require.NoError(t, p.Approve())

	err := p.MarkApplied(
		valueobject.NewMoneyVESFromFloat(400.00),
		valueobject.NewMoneyVESFromFloat(50.00),
	)
	assertDomainErrorCode(t, err, "INVALID_AMOUNT")
	assert.False(t, p.IsApplied())
}

func TestPayment_MarkApplied_Twice(t *testing.T) {
	p := createTestPayment(t, 100.00)
	require.NoError(t, p.Approve())
	require.NoError(t, p.MarkApplied(valueobject.NewMoneyVESFromFloat(100.00), valueobject.ZeroVES()))

	err := p.MarkApplied(valueobject.NewMoneyVESFromFloat(100.00), valueobject.ZeroVES())
	assertDomainErrorCode(t, err, "INVALID_STATE")
}

func TestPayment_MarkApplied_PendingPayment(t *testing.T) {
	p := createTestPayment(t, 100.00)

	err := p.MarkApplied(valueobject.NewMoneyVESFromFloat(100.00), valueobject.ZeroVES())
	assertDomainErrorCode(t, err, "INVALID_STATE")
}
