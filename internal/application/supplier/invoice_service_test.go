package supplier

import (
	"context"
	"testing"
	"time"

	domainbilling "github.com/condoledger/backend/internal/domain/billing"
	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/domain/shared/valueobject"
	"github.com/condoledger/backend/internal/domain/supplier"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =============================================================================
// Mocks
// =============================================================================

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*supplier.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supplier.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*supplier.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supplier.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByInvoiceNumber(ctx context.Context, tenantID, supplierID uuid.UUID, invoiceNumber string) (*supplier.Invoice, error) {
	args := m.Called(ctx, tenantID, supplierID, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*supplier.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter supplier.InvoiceFilter) ([]supplier.Invoice, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]supplier.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOutstanding(ctx context.Context, tenantID, condominiumID uuid.UUID) ([]supplier.Invoice, error) {
	args := m.Called(ctx, tenantID, condominiumID)
	return args.Get(0).([]supplier.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) ExistsByInvoiceNumber(ctx context.Context, tenantID, supplierID uuid.UUID, invoiceNumber string) (bool, error) {
	args := m.Called(ctx, tenantID, supplierID, invoiceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *supplier.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, invoice *supplier.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter supplier.InvoiceFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) SumOutstandingByCondominium(ctx context.Context, tenantID, condominiumID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, condominiumID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockExpenseRecordRepository struct {
	mock.Mock
}

func (m *MockExpenseRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*domainbilling.ExpenseRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainbilling.ExpenseRecord), args.Error(1)
}

func (m *MockExpenseRecordRepository) FindByPeriod(ctx context.Context, tenantID, condominiumID uuid.UUID, period valueobject.BillingPeriod) ([]domainbilling.ExpenseRecord, error) {
	args := m.Called(ctx, tenantID, condominiumID, period)
	return args.Get(0).([]domainbilling.ExpenseRecord), args.Error(1)
}

func (m *MockExpenseRecordRepository) SumForPeriod(ctx context.Context, tenantID, condominiumID uuid.UUID, period valueobject.BillingPeriod) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, condominiumID, period)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockExpenseRecordRepository) Create(ctx context.Context, record *domainbilling.ExpenseRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockExpenseRecordRepository) Save(ctx context.Context, record *domainbilling.ExpenseRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockExpenseRecordRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

type fakeTxManager struct{}

func (fakeTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func assertDomainErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

// =============================================================================
// Tests
// =============================================================================

func newInvoiceServiceForTest(invoiceRepo *MockInvoiceRepository, expenseRepo *MockExpenseRecordRepository) *InvoiceService {
	return NewInvoiceService(invoiceRepo, expenseRepo, fakeTxManager{}, zap.NewNop())
}

func registerRequest(tenantID uuid.UUID) RegisterInvoiceRequest {
	return RegisterInvoiceRequest{
		TenantID:      tenantID,
		InvoiceNumber: "FAC-881",
		CondominiumID: uuid.New(),
		SupplierID:    uuid.New(),
		SupplierName:  "Hidroservicios del Este",
		Concept:       "water pump repair",
		Amount:        valueobject.NewMoneyVESFromFloat(2500.00),
		IssueDate:     time.Now(),
	}
}

func TestRegisterInvoice_Success(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	expenseRepo := new(MockExpenseRecordRepository)
	service := newInvoiceServiceForTest(invoiceRepo, expenseRepo)

	req := registerRequest(uuid.New())
	invoiceRepo.On("ExistsByInvoiceNumber", mock.Anything, req.TenantID, req.SupplierID, req.InvoiceNumber).
		Return(false, nil)
	invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*supplier.Invoice")).Return(nil)

	invoice, err := service.RegisterInvoice(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, supplier.InvoiceStatusPending, invoice.Status)
	expenseRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegisterInvoice_BooksExpenseLine(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	expenseRepo := new(MockExpenseRecordRepository)
	service := newInvoiceServiceForTest(invoiceRepo, expenseRepo)

	req := registerRequest(uuid.New())
	period := valueobject.MustNewBillingPeriod(5, 2026)
	req.BookAsExpense = &period
	req.Category = domainbilling.ExpenseCategoryMaintenance

	invoiceRepo.On("ExistsByInvoiceNumber", mock.Anything, req.TenantID, req.SupplierID, req.InvoiceNumber).
		Return(false, nil)
	invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*supplier.Invoice")).Return(nil)
	expenseRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *domainbilling.ExpenseRecord) bool {
		return r.Category == domainbilling.ExpenseCategoryMaintenance &&
			r.InvoiceID != nil && r.Period().String() == "2026-05"
	})).Return(nil)

	_, err := service.RegisterInvoice(context.Background(), req)

	require.NoError(t, err)
	expenseRepo.AssertExpectations(t)
}

func TestRegisterInvoice_DuplicateNumber(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	service := newInvoiceServiceForTest(invoiceRepo, new(MockExpenseRecordRepository))

	req := registerRequest(uuid.New())
	invoiceRepo.On("ExistsByInvoiceNumber", mock.Anything, req.TenantID, req.SupplierID, req.InvoiceNumber).
		Return(true, nil)

	_, err := service.RegisterInvoice(context.Background(), req)

	assertDomainErrorCode(t, err, "DUPLICATE_INVOICE_NUMBER")
	invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPayInvoice_PartialThenFull(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	service := newInvoiceServiceForTest(invoiceRepo, new(MockExpenseRecordRepository))

	tenantID := uuid.New()
	invoice, err := supplier.NewInvoice(tenantID, "FAC-1", uuid.New(), uuid.New(),
		"Proveedor", "", valueobject.NewMoneyVESFromFloat(1000.00), time.Now(), nil)
	require.NoError(t, err)

	invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	out, err := service.PayInvoice(context.Background(), PayInvoiceRequest{
		TenantID:  tenantID,
		InvoiceID: invoice.ID,
		Amount:    valueobject.NewMoneyVESFromFloat(600.00),
		Method:    "TRANSFER",
		Reference: "OP-1",
	})
	require.NoError(t, err)
	assert.Equal(t, supplier.InvoiceStatusPending, out.Status)
	assert.Equal(t, "400", out.GetOutstandingAmountMoney().String())

	out, err = service.PayInvoice(context.Background(), PayInvoiceRequest{
		TenantID:  tenantID,
		InvoiceID: invoice.ID,
		Amount:    valueobject.NewMoneyVESFromFloat(400.00),
		Method:    "TRANSFER",
		Reference: "OP-2",
	})
	require.NoError(t, err)
	assert.Equal(t, supplier.InvoiceStatusPaid, out.Status)
}

func TestPayInvoice_DuplicateReferenceRejected(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	service := newInvoiceServiceForTest(invoiceRepo, new(MockExpenseRecordRepository))

	tenantID := uuid.New()
	invoice, err := supplier.NewInvoice(tenantID, "FAC-1", uuid.New(), uuid.New(),
		"Proveedor", "", valueobject.NewMoneyVESFromFloat(1000.00), time.Now(), nil)
	require.NoError(t, err)

	invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	_, err = service.PayInvoice(context.Background(), PayInvoiceRequest{
		TenantID:  tenantID,
		InvoiceID: invoice.ID,
		Amount:    valueobject.NewMoneyVESFromFloat(300.00),
		Method:    "TRANSFER",
		Reference: "OP-1",
	})
	require.NoError(t, err)

	// resubmitting the same bank reference must not book a second payment
	_, err = service.PayInvoice(context.Background(), PayInvoiceRequest{
		TenantID:  tenantID,
		InvoiceID: invoice.ID,
		Amount:    valueobject.NewMoneyVESFromFloat(300.00),
		Method:    "TRANSFER",
		Reference: "OP-1",
	})
	assertDomainErrorCode(t, err, "DUPLICATE_REFERENCE")
	assert.Equal(t, 1, invoice.PaymentCount())
	assert.Equal(t, "700", invoice.GetOutstandingAmountMoney().String())
	invoiceRepo.AssertNumberOfCalls(t, "SaveWithLock", 1)
}

func TestPayInvoice_OverpaymentRejected(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	service := newInvoiceServiceForTest(invoiceRepo, new(MockExpenseRecordRepository))

	tenantID := uuid.New()
	invoice, err := supplier.NewInvoice(tenantID, "FAC-1", uuid.New(), uuid.New(),
		"Proveedor", "", valueobject.NewMoneyVESFromFloat(1000.00), time.Now(), nil)
	require.NoError(t, err)

	invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)

	_, err = service.PayInvoice(context.Background(), PayInvoiceRequest{
		TenantID:  tenantID,
		InvoiceID: invoice.ID,
		Amount:    valueobject.NewMoneyVESFromFloat(1200.00),
		Method:    "TRANSFER",
		Reference: "OP-1",
	})

	assertDomainErrorCode(t, err, "EXCEEDS_OUTSTANDING")
	invoiceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestPayInvoice_NotFound(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	service := newInvoiceServiceForTest(invoiceRepo, new(MockExpenseRecordRepository))

	tenantID := uuid.New()
	invoiceID := uuid.New()
	invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoiceID).Return(nil, shared.ErrNotFound)

	_, err := service.PayInvoice(context.Background(), PayInvoiceRequest{
		TenantID:  tenantID,
		InvoiceID: invoiceID,
		Amount:    valueobject.NewMoneyVESFromFloat(10.00),
		Method:    "CASH",
		Reference: "OP-1",
	})
	assertDomainErrorCode(t, err, "INVOICE_NOT_FOUND")
}

func TestCancelInvoice(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	service := newInvoiceServiceForTest(invoiceRepo, new(MockExpenseRecordRepository))

	tenantID := uuid.New()
	invoice, err := supplier.NewInvoice(tenantID, "FAC-1", uuid.New(), uuid.New(),
		"Proveedor", "", valueobject.NewMoneyVESFromFloat(1000.00), time.Now(), nil)
	require.NoError(t, err)

	invoiceRepo.On("FindByIDForTenant", mock.Anything, tenantID, invoice.ID).Return(invoice, nil)
	invoiceRepo.On("SaveWithLock", mock.Anything, invoice).Return(nil)

	out, err := service.CancelInvoice(context.Background(), tenantID, invoice.ID, "registered twice")

	require.NoError(t, err)
	assert.Equal(t, supplier.InvoiceStatusCancelled, out.Status)
}
