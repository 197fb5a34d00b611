package billing

import (
	"context"
	"sync"
	"time"

	"github.com/condoledger/backend/internal/domain/billing"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

type MockReceiptRepository struct {
	mock.Mock
}

func (m *MockReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Receipt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Receipt, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*billing.Receipt, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.ReceiptFilter) ([]billing.Receipt, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindOutstandingByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]billing.Receipt, error) {
	args := m.Called(ctx, tenantID, userID)
	return args.Get(0).([]billing.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindOutstandingByUserForUpdate(ctx context.Context, tenantID, userID uuid.UUID) ([]billing.Receipt, error) {
	args := m.Called(ctx, tenantID, userID)
	return args.Get(0).([]billing.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) FindDueBefore(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]billing.Receipt, error) {
	args := m.Called(ctx, tenantID, asOf)
	return args.Get(0).([]billing.Receipt), args.Error(1)
}

func (m *MockReceiptRepository) ExistsForPeriod(ctx context.Context, tenantID, condominiumID uuid.UUID, period valueobject.BillingPeriod) (bool, error) {
	args := m.Called(ctx, tenantID, condominiumID, period)
	return args.Bool(0), args.Error(1)
}

func (m *MockReceiptRepository) CreateBatch(ctx context.Context, receipts []*billing.Receipt) error {
	args := m.Called(ctx, receipts)
	return args.Error(0)
}

func (m *MockReceiptRepository) Save(ctx context.Context, receipt *billing.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) SaveWithLock(ctx context.Context, receipt *billing.Receipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockReceiptRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.ReceiptFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReceiptRepository) SumPendingByUser(ctx context.Context, tenantID, userID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockReceiptRepository) GenerateReceiptNumber(ctx context.Context, tenantID uuid.UUID, period valueobject.BillingPeriod) (string, error) {
	args := m.Called(ctx, tenantID, period)
	return args.String(0), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*billing.Payment, error) {
	args := m.Called(ctx, tenantID, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByReceipt(ctx context.Context, tenantID, receiptID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, error) {
	args := m.Called(ctx, tenantID, receiptID, filter)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.PaymentFilter) ([]billing.Payment, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ExistsByReference(ctx context.Context, tenantID uuid.UUID, reference string) (bool, error) {
	args := m.Called(ctx, tenantID, reference)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter billing.PaymentFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockBillingAccountRepository struct {
	mock.Mock
}

func (m *MockBillingAccountRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID) (*billing.BillingAccount, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.BillingAccount), args.Error(1)
}

func (m *MockBillingAccountRepository) FindByUserForUpdate(ctx context.Context, tenantID, userID uuid.UUID) (*billing.BillingAccount, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.BillingAccount), args.Error(1)
}

func (m *MockBillingAccountRepository) Save(ctx context.Context, account *billing.BillingAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockBillingAccountRepository) SaveWithLock(ctx context.Context, account *billing.BillingAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

type MockPropertyDirectory struct {
	mock.Mock
}

func (m *MockPropertyDirectory) ListByCondominium(ctx context.Context, tenantID, condominiumID uuid.UUID) ([]billing.Property, error) {
	args := m.Called(ctx, tenantID, condominiumID)
	return args.Get(0).([]billing.Property), args.Error(1)
}

type MockExpenseAggregator struct {
	mock.Mock
}

func (m *MockExpenseAggregator) TotalForPeriod(ctx context.Context, tenantID, condominiumID uuid.UUID, period valueobject.BillingPeriod) (valueobject.Money, error) {
	args := m.Called(ctx, tenantID, condominiumID, period)
	return args.Get(0).(valueobject.Money), args.Error(1)
}

// =============================================================================
// Pass-through fakes for transactional plumbing
// =============================================================================

// fakeTxManager runs the function inline, no transaction semantics
type fakeTxManager struct{}

func (fakeTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeLockManager runs the function inline, no locking semantics
type fakeLockManager struct{}

func (fakeLockManager) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeIdempotencyStore is a map-backed store for tests
type fakeIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{seen: make(map[string]bool)}
}

func (s *fakeIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *fakeIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[key], s.err
}

func (s *fakeIdempotencyStore) Close() error { return nil }
