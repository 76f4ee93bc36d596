package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vextrus/ledger-core/internal/apperrors"
	"github.com/vextrus/ledger-core/internal/core/domain"
	portsrepo "github.com/vextrus/ledger-core/internal/core/ports/repositories"
	"github.com/vextrus/ledger-core/internal/core/services"
	"github.com/vextrus/ledger-core/internal/dto"
)

var testTime = time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)

// --- Mock PaymentRepository ---
type MockPaymentRepository struct {
	mock.Mock
}

var _ portsrepo.PaymentRepository = (*MockPaymentRepository)(nil)

func (m *MockPaymentRepository) Save(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, paymentID string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

// --- Mock SequenceRepository ---
type MockSequenceRepository struct {
	mock.Mock
}

var _ portsrepo.SequenceRepository = (*MockSequenceRepository)(nil)

func (m *MockSequenceRepository) Next(ctx context.Context, tenantID, name string) (int64, error) {
	args := m.Called(ctx, tenantID, name)
	return args.Get(0).(int64), args.Error(1)
}

func bdt(s string) domain.Money {
	return domain.Money{Amount: decimal.RequireFromString(s), CurrencyCode: "BDT"}
}

func storedPayment(t *testing.T, id string) *domain.Payment {
	t.Helper()
	p, err := domain.NewPayment(id, "tenant-1", "PAY-2024-000042", "inv-1",
		bdt("10000"), domain.Cash{}, "REF-001", testTime, "user-1", testTime)
	require.NoError(t, err)
	p.MarkCommitted()
	return p
}

func validCreateRequest() dto.CreatePaymentRequest {
	return dto.CreatePaymentRequest{
		InvoiceID:    "inv-1",
		Amount:       decimal.NewFromInt(10000),
		CurrencyCode: "BDT",
		Method:       dto.PaymentMethodRequest{Kind: "MOBILE_WALLET", WalletProvider: "BKASH", WalletNumber: "01700000000"},
		Reference:    "REF-001",
		PaymentDate:  testTime,
	}
}

func TestPaymentService_CreatePayment(t *testing.T) {
	payments := new(MockPaymentRepository)
	sequences := new(MockSequenceRepository)
	svc := services.NewPaymentService(payments, sequences)

	sequences.On("Next", mock.Anything, "tenant-1", "payment_number").Return(int64(42), nil).Once()
	payments.On("Save", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil).Once()

	payment, err := svc.CreatePayment(context.Background(), "tenant-1", validCreateRequest(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status())
	assert.Equal(t, fmt.Sprintf("PAY-%d-000042", time.Now().UTC().Year()), payment.PaymentNumber())
	assert.Equal(t, "inv-1", payment.InvoiceID())
	assert.Equal(t, domain.MethodMobileWallet, payment.Method().MethodKind())
	payments.AssertExpectations(t)
	sequences.AssertExpectations(t)
}

func TestPaymentService_CreatePayment_InvalidMethod(t *testing.T) {
	payments := new(MockPaymentRepository)
	sequences := new(MockSequenceRepository)
	svc := services.NewPaymentService(payments, sequences)

	req := validCreateRequest()
	req.Method.Kind = "BARTER"

	_, err := svc.CreatePayment(context.Background(), "tenant-1", req, "user-1")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	sequences.AssertNotCalled(t, "Next", mock.Anything, mock.Anything, mock.Anything)
	payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPaymentService_GetPaymentByID_TenantScoped(t *testing.T) {
	payments := new(MockPaymentRepository)
	svc := services.NewPaymentService(payments, new(MockSequenceRepository))

	payments.On("FindByID", mock.Anything, "pay-1").Return(storedPayment(t, "pay-1"), nil)

	_, err := svc.GetPaymentByID(context.Background(), "tenant-2", "pay-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	got, err := svc.GetPaymentByID(context.Background(), "tenant-1", "pay-1")
	require.NoError(t, err)
	assert.Equal(t, "pay-1", got.AggregateID())
}

func TestPaymentService_CompletePayment(t *testing.T) {
	payments := new(MockPaymentRepository)
	svc := services.NewPaymentService(payments, new(MockSequenceRepository))

	payments.On("FindByID", mock.Anything, "pay-1").Return(storedPayment(t, "pay-1"), nil).Once()
	payments.On("Save", mock.Anything, mock.AnythingOfType("*domain.Payment")).Return(nil).Once()

	payment, err := svc.CompletePayment(context.Background(), "tenant-1", "pay-1", dto.CompletePaymentRequest{TransactionReference: "TXN-9"}, "user-1")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, payment.Status())
	payments.AssertExpectations(t)
}

func TestPaymentService_CompletePayment_RetriesOnVersionConflict(t *testing.T) {
	payments := new(MockPaymentRepository)
	svc := services.NewPaymentService(payments, new(MockSequenceRepository))

	// each attempt reloads a fresh aggregate
	payments.On("FindByID", mock.Anything, "pay-1").Return(storedPayment(t, "pay-1"), nil).Once()
	payments.On("Save", mock.Anything, mock.Anything).Return(apperrors.ErrVersionConflict).Once()
	payments.On("FindByID", mock.Anything, "pay-1").Return(storedPayment(t, "pay-1"), nil).Once()
	payments.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	payment, err := svc.CompletePayment(context.Background(), "tenant-1", "pay-1", dto.CompletePaymentRequest{}, "user-1")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, payment.Status())
	payments.AssertExpectations(t)
}

func TestPaymentService_FailPayment(t *testing.T) {
	payments := new(MockPaymentRepository)
	svc := services.NewPaymentService(payments, new(MockSequenceRepository))

	payments.On("FindByID", mock.Anything, "pay-1").Return(storedPayment(t, "pay-1"), nil).Once()
	payments.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	payment, err := svc.FailPayment(context.Background(), "tenant-1", "pay-1", dto.FailPaymentRequest{Reason: "card declined"}, "user-1")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, payment.Status())
	assert.Equal(t, "card declined", payment.FailureReason())
}

func TestPaymentService_ReconcilePayment(t *testing.T) {
	payments := new(MockPaymentRepository)
	svc := services.NewPaymentService(payments, new(MockSequenceRepository))

	completed := storedPayment(t, "pay-1")
	require.NoError(t, completed.Complete("TXN-9", "user-1", testTime))
	completed.MarkCommitted()

	payments.On("FindByID", mock.Anything, "pay-1").Return(completed, nil).Once()
	payments.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	statement := domain.BankStatement{
		Transactions: []domain.BankTransaction{
			{BankTransactionID: "bt-1", Date: testTime.AddDate(0, 0, 1), Amount: bdt("10000"), Reference: "REF-001"},
		},
	}

	match, err := svc.ReconcilePayment(context.Background(), "tenant-1", "pay-1", statement, "user-1")

	require.NoError(t, err)
	assert.Equal(t, "bt-1", match.BankTransactionID)
	assert.Equal(t, domain.PaymentStatusReconciled, completed.Status())
	assert.Equal(t, "bt-1", completed.BankTransactionID())
	payments.AssertExpectations(t)
}

func TestPaymentService_ReconcilePayment_NoMatch(t *testing.T) {
	payments := new(MockPaymentRepository)
	svc := services.NewPaymentService(payments, new(MockSequenceRepository))

	completed := storedPayment(t, "pay-1")
	require.NoError(t, completed.Complete("TXN-9", "user-1", testTime))
	completed.MarkCommitted()

	payments.On("FindByID", mock.Anything, "pay-1").Return(completed, nil).Once()

	_, err := svc.ReconcilePayment(context.Background(), "tenant-1", "pay-1", domain.BankStatement{}, "user-1")

	assert.ErrorIs(t, err, apperrors.ErrNoMatch)
	assert.Equal(t, domain.PaymentStatusCompleted, completed.Status())
	payments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
