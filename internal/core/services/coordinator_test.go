package services_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vextrus/ledger-core/internal/apperrors"
	"github.com/vextrus/ledger-core/internal/core/domain"
	portsrepo "github.com/vextrus/ledger-core/internal/core/ports/repositories"
	"github.com/vextrus/ledger-core/internal/core/services"
)

// fakeInvoiceRepo backs the coordinator tests with a real aggregate instead
// of a mock: the interesting assertions are about invoice state.
type fakeInvoiceRepo struct {
	invoice   *domain.Invoice
	saveErr   error
	saved     bool
	savedEvts []domain.Event
}

var _ portsrepo.InvoiceRepository = (*fakeInvoiceRepo)(nil)

func (f *fakeInvoiceRepo) Save(_ context.Context, invoice *domain.Invoice) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = true
	f.savedEvts = append(f.savedEvts, invoice.UncommittedEvents()...)
	invoice.MarkCommitted()
	return nil
}

func (f *fakeInvoiceRepo) FindByID(_ context.Context, invoiceID string) (*domain.Invoice, error) {
	if f.invoice == nil || f.invoice.AggregateID() != invoiceID {
		return nil, fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoiceID)
	}
	return f.invoice, nil
}

func approvedInvoice(t *testing.T, total string) *domain.Invoice {
	t.Helper()
	inv, err := domain.NewInvoice("inv-1", "tenant-1", "INV-2024-000001", "cust-1",
		[]domain.LineItem{{Description: "materials", Quantity: decimal.NewFromInt(1), UnitPrice: bdt(total)}},
		"BDT", testTime, "user-1", testTime)
	require.NoError(t, err)
	require.NoError(t, inv.Approve("user-1", testTime))
	inv.MarkCommitted()
	return inv
}

func completedEnvelope(t *testing.T, amount string, tenantID string) domain.Envelope {
	t.Helper()
	event := domain.PaymentCompleted{
		PaymentID: "pay-1",
		InvoiceID: "inv-1",
		Amount:    bdt(amount),
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return domain.Envelope{
		EventID:       "evt-1",
		AggregateID:   "pay-1",
		AggregateType: domain.AggregateTypePayment,
		EventType:     domain.EventPaymentCompleted,
		Version:       2,
		TenantID:      tenantID,
		ActorID:       "user-1",
		OccurredAt:    testTime,
		Payload:       payload,
	}
}

func TestCoordinator_AppliesPaymentToInvoice(t *testing.T) {
	repo := &fakeInvoiceRepo{invoice: approvedInvoice(t, "10000")}
	coordinator := services.NewPaymentCoordinator(repo)

	err := coordinator.HandlePaymentCompleted(context.Background(), completedEnvelope(t, "10000", "tenant-1"))

	require.NoError(t, err)
	assert.True(t, repo.saved)
	assert.Equal(t, domain.InvoiceStatusPaid, repo.invoice.Status())
	assert.True(t, repo.invoice.BalanceAmount().IsZero())

	// full settlement emits recorded plus fully-paid
	require.Len(t, repo.savedEvts, 2)
	assert.Equal(t, domain.EventInvoicePaymentRecorded, repo.savedEvts[0].EventType())
	assert.Equal(t, domain.EventInvoiceFullyPaid, repo.savedEvts[1].EventType())
}

func TestCoordinator_PartialPayment(t *testing.T) {
	repo := &fakeInvoiceRepo{invoice: approvedInvoice(t, "10000")}
	coordinator := services.NewPaymentCoordinator(repo)

	err := coordinator.HandlePaymentCompleted(context.Background(), completedEnvelope(t, "4000", "tenant-1"))

	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusApproved, repo.invoice.Status())
	assert.True(t, repo.invoice.BalanceAmount().Equal(bdt("6000")))
	require.Len(t, repo.savedEvts, 1)
}

func TestCoordinator_OverpaymentDegradesGracefully(t *testing.T) {
	repo := &fakeInvoiceRepo{invoice: approvedInvoice(t, "10000")}
	coordinator := services.NewPaymentCoordinator(repo)

	err := coordinator.HandlePaymentCompleted(context.Background(), completedEnvelope(t, "10000.01", "tenant-1"))

	// the payment stays COMPLETED; the invoice is untouched
	assert.NoError(t, err)
	assert.False(t, repo.saved)
	assert.True(t, repo.invoice.PaidAmount().IsZero())
}

func TestCoordinator_MissingInvoiceDegradesGracefully(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	coordinator := services.NewPaymentCoordinator(repo)

	err := coordinator.HandlePaymentCompleted(context.Background(), completedEnvelope(t, "10000", "tenant-1"))

	assert.NoError(t, err)
	assert.False(t, repo.saved)
}

func TestCoordinator_TenantMismatchReadsAsMissing(t *testing.T) {
	repo := &fakeInvoiceRepo{invoice: approvedInvoice(t, "10000")}
	coordinator := services.NewPaymentCoordinator(repo)

	err := coordinator.HandlePaymentCompleted(context.Background(), completedEnvelope(t, "10000", "tenant-2"))

	assert.NoError(t, err)
	assert.False(t, repo.saved)
	assert.True(t, repo.invoice.PaidAmount().IsZero())
}

func TestCoordinator_CancelledInvoiceDegradesGracefully(t *testing.T) {
	invoice := approvedInvoice(t, "10000")
	require.NoError(t, invoice.Cancel("order withdrawn", "user-1", testTime))
	invoice.MarkCommitted()
	repo := &fakeInvoiceRepo{invoice: invoice}
	coordinator := services.NewPaymentCoordinator(repo)

	err := coordinator.HandlePaymentCompleted(context.Background(), completedEnvelope(t, "10000", "tenant-1"))

	assert.NoError(t, err)
	assert.False(t, repo.saved)
}

func TestCoordinator_DuplicateDeliveryIsIdempotent(t *testing.T) {
	repo := &fakeInvoiceRepo{invoice: approvedInvoice(t, "10000")}
	coordinator := services.NewPaymentCoordinator(repo)
	envelope := completedEnvelope(t, "4000", "tenant-1")

	require.NoError(t, coordinator.HandlePaymentCompleted(context.Background(), envelope))
	require.NoError(t, coordinator.HandlePaymentCompleted(context.Background(), envelope))

	assert.True(t, repo.invoice.PaidAmount().Equal(bdt("4000")))
	require.Len(t, repo.savedEvts, 1)
}

func TestCoordinator_IgnoresOtherEventTypes(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	coordinator := services.NewPaymentCoordinator(repo)

	err := coordinator.HandlePaymentCompleted(context.Background(), domain.Envelope{
		EventType: domain.EventPaymentFailed,
		Payload:   []byte(`{"paymentId":"pay-1"}`),
	})

	assert.NoError(t, err)
	assert.False(t, repo.saved)
}

func TestCoordinator_SaveFailurePropagates(t *testing.T) {
	repo := &fakeInvoiceRepo{invoice: approvedInvoice(t, "10000"), saveErr: fmt.Errorf("connection reset")}
	coordinator := services.NewPaymentCoordinator(repo)

	err := coordinator.HandlePaymentCompleted(context.Background(), completedEnvelope(t, "10000", "tenant-1"))

	assert.Error(t, err)
}
