package billing

import (
	"context"
	"testing"

	"github.com/condoledger/backend/internal/domain/billing"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPaymentServiceForTest(paymentRepo *MockPaymentRepository, receiptRepo *MockReceiptRepository,
	accountRepo *MockBillingAccountRepository, store *fakeIdempotencyStore) *PaymentService {
	return NewPaymentService(paymentRepo, receiptRepo, accountRepo, store,
		fakeTxManager{}, 0, zap.NewNop())
}

func newTestPayment(t *testing.T, tenantID uuid.UUID, receiptID, userID uuid.UUID, amount float64) *billing.Payment {
	t.Helper()
	p, err := billing.NewPayment(tenantID, receiptID, userID,
		valueobject.NewMoneyVESFromFloat(amount), billing.PaymentMethodTransfer, "REF-123", "")
	require.NoError(t, err)
	return p
}

func TestReportPayment_Success(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	receiptRepo := new(MockReceiptRepository)
	service := newPaymentServiceForTest(paymentRepo, receiptRepo,
		new(MockBillingAccountRepository), newFakeIdempotencyStore())

	tenantID := uuid.New()
	receipt := newTestReceipt(t, tenantID, 1000.00)

	receiptRepo.On("FindByIDForTenant", mock.Anything, tenantID, receipt.ID).Return(receipt, nil)
	paymentRepo.On("ExistsByReference", mock.Anything, tenantID, "REF-777").Return(false, nil)
	paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*billing.Payment")).Return(nil)

	payment, err := service.ReportPayment(context.Background(), ReportPaymentRequest{
		TenantID:  tenantID,
		ReceiptID: receipt.ID,
		UserID:    receipt.UserID,
		Amount:    valueobject.NewMoneyVESFromFloat(1000.00),
		Method:    billing.PaymentMethodTransfer,
		Reference: "REF-777",
	})

	require.NoError(t, err)
	assert.Equal(t, billing.PaymentStatusPending, payment.Status)
	paymentRepo.AssertExpectations(t)
}

func TestReportPayment_DuplicateReferenceInStore(t *testing.T) {
	store := newFakeIdempotencyStore()
	service := newPaymentServiceForTest(new(MockPaymentRepository), new(MockReceiptRepository),
		new(MockBillingAccountRepository), store)

	tenantID := uuid.New()
	req := ReportPaymentRequest{
		TenantID:  tenantID,
		ReceiptID: uuid.New(),
		UserID:    uuid.New(),
		Amount:    valueobject.NewMoneyVESFromFloat(100.00),
		Method:    billing.PaymentMethodTransfer,
		Reference: "REF-DUP",
	}
	_, err := store.MarkProcessed(context.Background(), "payment:ref:"+tenantID.String()+":REF-DUP", 0)
	require.NoError(t, err)

	_, err = service.ReportPayment(context.Background(), req)
	assertDomainErrorCode(t, err, "DUPLICATE_REFERENCE")
}

func TestReportPayment_DuplicateReferenceInDatabase(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	receiptRepo := new(MockReceiptRepository)
	service := newPaymentServiceForTest(paymentRepo, receiptRepo,
		new(MockBillingAccountRepository), newFakeIdempotencyStore())

	tenantID := uuid.New()
	receipt := newTestReceipt(t, tenantID, 1000.00)

	receiptRepo.On("FindByIDForTenant", mock.Anything, tenantID, receipt.ID).Return(receipt, nil)
	paymentRepo.On("ExistsByReference", mock.Anything, tenantID, "REF-1").Return(true, nil)

	_, err := service.ReportPayment(context.Background(), ReportPaymentRequest{
		TenantID:  tenantID,
		ReceiptID: receipt.ID,
		UserID:    receipt.UserID,
		Amount:    valueobject.NewMoneyVESFromFloat(100.00),
		Method:    billing.PaymentMethodTransfer,
		Reference: "REF-1",
	})
	assertDomainErrorCode(t, err, "DUPLICATE_REFERENCE")
	paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReportPayment_SettledReceipt(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	receiptRepo := new(MockReceiptRepository)
	service := newPaymentServiceForTest(paymentRepo, receiptRepo,
		new(MockBillingAccountRepository), newFakeIdempotencyStore())

	tenantID := uuid.New()
	receipt := newTestReceipt(t, tenantID, 100.00)
	_, err := receipt.Settle(valueobject.NewMoneyVESFromFloat(100.00))
	require.NoError(t, err)

	receiptRepo.On("FindByIDForTenant", mock.Anything, tenantID, receipt.ID).Return(receipt, nil)

	_, err = service.ReportPayment(context.Background(), ReportPaymentRequest{
		TenantID:  tenantID,
		ReceiptID: receipt.ID,
		UserID:    receipt.UserID,
		Amount:    valueobject.NewMoneyVESFromFloat(100.00),
		Method:    billing.PaymentMethodTransfer,
		Reference: "REF-LATE",
	})
	assertDomainErrorCode(t, err, "RECEIPT_ALREADY_SETTLED")
}

func TestConfirmPayment_ExactAmount(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	receiptRepo := new(MockReceiptRepository)
	accountRepo := new(MockBillingAccountRepository)
	service := newPaymentServiceForTest(paymentRepo, receiptRepo, accountRepo, newFakeIdempotencyStore())

	tenantID := uuid.New()
	receipt := newTestReceipt(t, tenantID, 1000.00)
	payment := newTestPayment(t, tenantID, receipt.ID, receipt.UserID, 1000.00)
	account, _ := billing.NewBillingAccount(tenantID, receipt.UserID)
	require.NoError(t, account.AddPending(valueobject.NewMoneyVESFromFloat(1000.00)))

	paymentRepo.On("FindByIDForUpdate", mock.Anything, tenantID, payment.ID).Return(payment, nil)
	receiptRepo.On("FindByIDForUpdate", mock.Anything, tenantID, receipt.ID).Return(receipt, nil)
	receiptRepo.On("SaveWithLock", mock.Anything, receipt).Return(nil)
	paymentRepo.On("SaveWithLock", mock.Anything, payment).Return(nil)
	accountRepo.On("FindByUserForUpdate", mock.Anything, tenantID, receipt.UserID).Return(account, nil)
	accountRepo.On("SaveWithLock", mock.Anything, account).Return(nil)

	result, err := service.ConfirmPayment(context.Background(), tenantID, payment.ID)

	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.Equal(t, "1000", result.Applied.String())
	assert.True(t, result.CreditDelta.IsZero())
	assert.Equal(t, billing.ReceiptStatusPaid, receipt.Status)
	assert.True(t, payment.IsApplied())
	assert.True(t, account.GetPendingAmountMoney().IsZero())
	assert.True(t, account.GetCreditBalanceMoney().IsZero())
}

func TestConfirmPayment_OverpaymentAccruesCredit(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	receiptRepo := new(MockReceiptRepository)
	accountRepo := new(MockBillingAccountRepository)
	service := newPaymentServiceForTest(paymentRepo, receiptRepo, accountRepo, newFakeIdempotencyStore())

	tenantID := uuid.New()
	receipt := newTestReceipt(t, tenantID, 800.00)
	payment := newTestPayment(t, tenantID, receipt.ID, receipt.UserID, 1000.00)
	account, _ := billing.NewBillingAccount(tenantID, receipt.UserID)
	require.NoError(t, account.AddPending(valueobject.NewMoneyVESFromFloat(800.00)))

	paymentRepo.On("FindByIDForUpdate", mock.Anything, tenantID, payment.ID).Return(payment, nil)
	receiptRepo.On("FindByIDForUpdate", mock.Anything, tenantID, receipt.ID).Return(receipt, nil)
	receiptRepo.On("SaveWithLock", mock.Anything, receipt).Return(nil)
	paymentRepo.On("SaveWithLock", mock.Anything, payment).Return(nil)
	accountRepo.On("FindByUserForUpdate", mock.Anything, tenantID, receipt.UserID).Return(account, nil)
	accountRepo.On("SaveWithLock", mock.Anything, account).Return(nil)

	result, err := service.ConfirmPayment(context.Background(), tenantID, payment.ID)

	require.NoError(t, err)
	assert.Equal(t, "800", result.Applied.String())
	assert.Equal(t, "200", result.CreditDelta.String())
	assert.Equal(t, "200", account.GetCreditBalanceMoney().String())
	assert.True(t, account.GetPendingAmountMoney().IsZero())
}

func TestConfirmPayment_PartialLeavesBalance(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	receiptRepo := new(MockReceiptRepository)
	accountRepo := new(MockBillingAccountRepository)
	service := newPaymentServiceForTest(paymentRepo, receiptRepo, accountRepo, newFakeIdempotencyStore())

	tenantID := uuid.New()
	receipt := newTestReceipt(t, tenantID, 1000.00)
	payment := newTestPayment(t, tenantID, receipt.ID, receipt.UserID, 300.00)
	account, _ := billing.NewBillingAccount(tenantID, receipt.UserID)
	require.NoError(t, account.AddPending(valueobject.NewMoneyVESFromFloat(1000.00)))

	paymentRepo.On("FindByIDForUpdate", mock.Anything, tenantID, payment.ID).Return(payment, nil)
	receiptRepo.On("FindByIDForUpdate", mock.Anything, tenantID, receipt.ID).Return(receipt, nil)
	receiptRepo.On("SaveWithLock", mock.Anything, receipt).Return(nil)
	paymentRepo.On("SaveWithLock", mock.Anything, payment).Return(nil)
	accountRepo.On("FindByUserForUpdate", mock.Anything, tenantID, receipt.UserID).Return(account, nil)
	accountRepo.On("SaveWithLock", mock.Anything, account).Return(nil)

	result, err := service.ConfirmPayment(context.Background(), tenantID, payment.ID)

	require.NoError(t, err)
	assert.Equal(t, "300", result.Applied.String())
	assert.Equal(t, billing.ReceiptStatusPartial, receipt.Status)
	assert.Equal(t, "700", receipt.GetPendingAmountMoney().String())
	assert.Equal(t, "700", account.GetPendingAmountMoney().String())
}

func TestConfirmPayment_ReplayIsNoOp(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	receiptRepo := new(MockReceiptRepository)
	accountRepo := new(MockBillingAccountRepository)
	service := newPaymentServiceForTest(paymentRepo, receiptRepo, accountRepo, newFakeIdempotencyStore())

	tenantID := uuid.New()
	receipt := newTestReceipt(t, tenantID, 500.00)
	payment := newTestPayment(t, tenantID, receipt.ID, receipt.UserID, 500.00)
	require.NoError(t, payment.Approve())
	require.NoError(t, payment.MarkApplied(valueobject.NewMoneyVESFromFloat(500.00), valueobject.ZeroVES()))

	paymentRepo.On("FindByIDForUpdate", mock.Anything, tenantID, payment.ID).Return(payment, nil)

	result, err := service.ConfirmPayment(context.Background(), tenantID, payment.ID)

	require.NoError(t, err)
	assert.True(t, result.Replayed)
	assert.Equal(t, "500", result.Applied.String())
	// nothing beyond the payment row is touched on replay
	receiptRepo.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything, mock.Anything)
	accountRepo.AssertNotCalled(t, "FindByUserForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmPayment_RejectedPayment(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	service := newPaymentServiceForTest(paymentRepo, new(MockReceiptRepository),
		new(MockBillingAccountRepository), newFakeIdempotencyStore())

	tenantID := uuid.New()
	payment := newTestPayment(t, tenantID, uuid.New(), uuid.New(), 100.00)
	require.NoError(t, payment.Reject("bad reference"))

	paymentRepo.On("FindByIDForUpdate", mock.Anything, tenantID, payment.ID).Return(payment, nil)

	_, err := service.ConfirmPayment(context.Background(), tenantID, payment.ID)
	assertDomainErrorCode(t, err, "INVALID_STATE")
}

func TestRejectPayment(t *testing.T) {
	paymentRepo := new(MockPaymentRepository)
	service := newPaymentServiceForTest(paymentRepo, new(MockReceiptRepository),
		new(MockBillingAccountRepository), newFakeIdempotencyStore())

	tenantID := uuid.New()
	payment := newTestPayment(t, tenantID, uuid.New(), uuid.New(), 100.00)

	paymentRepo.On("FindByIDForUpdate", mock.Anything, tenantID, payment.ID).Return(payment, nil)
	paymentRepo.On("SaveWithLock", mock.Anything, payment).Return(nil)

	rejected, err := service.RejectPayment(context.Background(), tenantID, payment.ID, "not in statement")

	require.NoError(t, err)
	assert.Equal(t, billing.PaymentStatusRejected, rejected.Status)
}
