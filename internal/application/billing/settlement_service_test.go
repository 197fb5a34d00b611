package billing

import (
	"context"
	"testing"
	"time"

	"github.com/condoledger/backend/internal/domain/billing"
	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSettlementServiceForTest(receiptRepo *MockReceiptRepository, paymentRepo *MockPaymentRepository,
	accountRepo *MockBillingAccountRepository) *SettlementService {
	return NewSettlementService(receiptRepo, paymentRepo, accountRepo,
		fakeTxManager{}, fakeLockManager{}, zap.NewNop())
}

func newOpenReceipt(t *testing.T, tenantID, userID uuid.UUID, amount float64, due time.Time) billing.Receipt {
	t.Helper()
	period := valueobject.MustNewBillingPeriod(int(due.Month()), due.Year())
	r, err := billing.NewReceipt(tenantID, "RC-"+uuid.NewString()[:8], uuid.New(), uuid.New(),
		uuid.New(), userID, period, valueobject.NewMoneyVESFromFloat(amount), due)
	require.NoError(t, err)
	return *r
}

func TestAutoSettleCredit_PaysOldestFirst(t *testing.T) {
	receiptRepo := new(MockReceiptRepository)
	paymentRepo := new(MockPaymentRepository)
	accountRepo := new(MockBillingAccountRepository)
	service := newSettlementServiceForTest(receiptRepo, paymentRepo, accountRepo)

	tenantID := uuid.New()
	userID := uuid.New()
	account, _ := billing.NewBillingAccount(tenantID, userID)
	require.NoError(t, account.AddPending(valueobject.NewMoneyVESFromFloat(500.00)))
	require.NoError(t, account.AddCredit(valueobject.NewMoneyVESFromFloat(250.00)))

	// repository returns receipts ordered by due date ascending
	older := newOpenReceipt(t, tenantID, userID, 200.00, time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC))
	newer := newOpenReceipt(t, tenantID, userID, 300.00, time.Date(2026, time.February, 15, 0, 0, 0, 0, time.UTC))

	accountRepo.On("FindByUserForUpdate", mock.Anything, tenantID, userID).Return(account, nil)
	receiptRepo.On("FindOutstandingByUserForUpdate", mock.Anything, tenantID, userID).
		Return([]billing.Receipt{older, newer}, nil)
	receiptRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*billing.Receipt")).Return(nil)
	paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*billing.Payment")).Return(nil)
	accountRepo.On("SaveWithLock", mock.Anything, account).Return(nil)

	result, err := service.AutoSettleCredit(context.Background(), tenantID, userID)

	require.NoError(t, err)
	assert.Equal(t, "250", result.CreditSpent.String())
	assert.True(t, result.CreditRemaining.IsZero())
	// the older receipt is settled in full, the newer one absorbs the rest
	require.Len(t, result.SettledReceipts, 1)
	assert.Equal(t, older.ID, result.SettledReceipts[0])
	assert.Len(t, result.PaymentIDs, 2)
	assert.Equal(t, "250", account.GetPendingAmountMoney().String())

	// every draw leaves a payment trail
	paymentRepo.AssertNumberOfCalls(t, "Create", 2)
}

func TestAutoSettleCredit_CreditCoversEverything(t *testing.T) {
	receiptRepo := new(MockReceiptRepository)
	paymentRepo := new(MockPaymentRepository)
	accountRepo := new(MockBillingAccountRepository)
	service := newSettlementServiceForTest(receiptRepo, paymentRepo, accountRepo)

	tenantID := uuid.New()
	userID := uuid.New()
	account, _ := billing.NewBillingAccount(tenantID, userID)
	require.NoError(t, account.AddPending(valueobject.NewMoneyVESFromFloat(150.00)))
	require.NoError(t, account.AddCredit(valueobject.NewMoneyVESFromFloat(400.00)))

	receipt := newOpenReceipt(t, tenantID, userID, 150.00, time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC))

	accountRepo.On("FindByUserForUpdate", mock.Anything, tenantID, userID).Return(account, nil)
	receiptRepo.On("FindOutstandingByUserForUpdate", mock.Anything, tenantID, userID).
		Return([]billing.Receipt{receipt}, nil)
	receiptRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*billing.Receipt")).Return(nil)
	paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*billing.Payment")).Return(nil)
	accountRepo.On("SaveWithLock", mock.Anything, account).Return(nil)

	result, err := service.AutoSettleCredit(context.Background(), tenantID, userID)

	require.NoError(t, err)
	assert.Equal(t, "150", result.CreditSpent.String())
	assert.Equal(t, "250", result.CreditRemaining.String())
	assert.True(t, account.GetPendingAmountMoney().IsZero())
}

func TestAutoSettleCredit_NoCreditIsNoOp(t *testing.T) {
	receiptRepo := new(MockReceiptRepository)
	accountRepo := new(MockBillingAccountRepository)
	service := newSettlementServiceForTest(receiptRepo, new(MockPaymentRepository), accountRepo)

	tenantID := uuid.New()
	userID := uuid.New()
	account, _ := billing.NewBillingAccount(tenantID, userID)

	accountRepo.On("FindByUserForUpdate", mock.Anything, tenantID, userID).Return(account, nil)

	result, err := service.AutoSettleCredit(context.Background(), tenantID, userID)

	require.NoError(t, err)
	assert.True(t, result.CreditSpent.IsZero())
	receiptRepo.AssertNotCalled(t, "FindOutstandingByUserForUpdate", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetAccount_NoLedgerActivityReturnsEmptyAccount(t *testing.T) {
	accountRepo := new(MockBillingAccountRepository)
	service := newSettlementServiceForTest(new(MockReceiptRepository), new(MockPaymentRepository), accountRepo)

	tenantID := uuid.New()
	userID := uuid.New()
	accountRepo.On("FindByUser", mock.Anything, tenantID, userID).Return(nil, shared.ErrNotFound)

	account, err := service.GetAccount(context.Background(), tenantID, userID)

	require.NoError(t, err)
	assert.Equal(t, tenantID, account.TenantID)
	assert.Equal(t, userID, account.UserID)
	assert.True(t, account.GetPendingAmountMoney().IsZero())
	assert.True(t, account.GetCreditBalanceMoney().IsZero())
}

func TestAutoSettleCredit_NoOpenReceiptsKeepsCredit(t *testing.T) {
	receiptRepo := new(MockReceiptRepository)
	accountRepo := new(MockBillingAccountRepository)
	service := newSettlementServiceForTest(receiptRepo, new(MockPaymentRepository), accountRepo)

	tenantID := uuid.New()
	userID := uuid.New()
	account, _ := billing.NewBillingAccount(tenantID, userID)
	require.NoError(t, account.AddCredit(valueobject.NewMoneyVESFromFloat(75.00)))

	accountRepo.On("FindByUserForUpdate", mock.Anything, tenantID, userID).Return(account, nil)
	receiptRepo.On("FindOutstandingByUserForUpdate", mock.Anything, tenantID, userID).
		Return([]billing.Receipt{}, nil)

	result, err := service.AutoSettleCredit(context.Background(), tenantID, userID)

	require.NoError(t, err)
	assert.True(t, result.CreditSpent.IsZero())
	assert.Equal(t, "75", result.CreditRemaining.String())
}
