package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vextrus/ledger-core/internal/apperrors"
	"github.com/vextrus/ledger-core/internal/core/domain"
)

func newTestInvoice(t *testing.T) *domain.Invoice {
	t.Helper()
	inv, err := domain.NewInvoice(
		"inv-1", "tenant-1", "INV-2024-000007", "cust-1",
		[]domain.LineItem{
			{Description: "Cement, 50kg bags", Quantity: decimal.NewFromInt(100), UnitPrice: bdt("550")},
			{Description: "Delivery", Quantity: decimal.NewFromInt(1), UnitPrice: bdt("5000")},
		},
		"BDT", testTime, "user-1", testTime,
	)
	require.NoError(t, err)
	return inv
}

func TestNewInvoice_ComputesTotal(t *testing.T) {
	inv := newTestInvoice(t)

	assert.Equal(t, domain.InvoiceStatusDraft, inv.Status())
	assert.True(t, inv.Total().Equal(bdt("60000")))
	assert.True(t, inv.PaidAmount().IsZero())
	assert.True(t, inv.BalanceAmount().Equal(bdt("60000")))
	assert.Equal(t, int64(1), inv.CurrentVersion())
}

func TestNewInvoice_Validation(t *testing.T) {
	_, err := domain.NewInvoice("inv-1", "tenant-1", "INV-1", "cust-1", nil, "BDT", testTime, "u", testTime)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = domain.NewInvoice("inv-1", "tenant-1", "INV-1", "cust-1",
		[]domain.LineItem{{Description: "free", Quantity: decimal.NewFromInt(1), UnitPrice: bdt("0")}},
		"BDT", testTime, "u", testTime)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = domain.NewInvoice("inv-1", "tenant-1", "INV-1", "cust-1",
		[]domain.LineItem{{Description: "negative qty", Quantity: decimal.NewFromInt(-1), UnitPrice: bdt("10")}},
		"BDT", testTime, "u", testTime)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestInvoice_RecordPayment_Partial(t *testing.T) {
	inv := newTestInvoice(t)
	require.NoError(t, inv.Approve("user-1", testTime))

	require.NoError(t, inv.RecordPayment("pay-1", bdt("25000"), "user-1", testTime))
	assert.True(t, inv.PaidAmount().Equal(bdt("25000")))
	assert.True(t, inv.BalanceAmount().Equal(bdt("35000")))
	assert.Equal(t, domain.InvoiceStatusApproved, inv.Status())
	assert.True(t, inv.HasRecordedPayment("pay-1"))
}

func TestInvoice_RecordPayment_FullyPaidExactlyOnce(t *testing.T) {
	inv := newTestInvoice(t)
	require.NoError(t, inv.Approve("user-1", testTime))
	inv.MarkCommitted()

	require.NoError(t, inv.RecordPayment("pay-1", bdt("60000"), "user-1", testTime))
	assert.Equal(t, domain.InvoiceStatusPaid, inv.Status())
	assert.True(t, inv.BalanceAmount().IsZero())

	// reaching zero emits the recorded event plus exactly one fully-paid event
	events := inv.UncommittedEvents()
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventInvoicePaymentRecorded, events[0].EventType())
	assert.Equal(t, domain.EventInvoiceFullyPaid, events[1].EventType())
}

func TestInvoice_RecordPayment_DuplicateIsNoOp(t *testing.T) {
	inv := newTestInvoice(t)
	require.NoError(t, inv.RecordPayment("pay-1", bdt("25000"), "user-1", testTime))
	version := inv.CurrentVersion()

	assert.NoError(t, inv.RecordPayment("pay-1", bdt("25000"), "user-1", testTime))
	assert.Equal(t, version, inv.CurrentVersion())
	assert.True(t, inv.PaidAmount().Equal(bdt("25000")))
}

func TestInvoice_RecordPayment_OverpaymentLeavesStateUnchanged(t *testing.T) {
	inv := newTestInvoice(t)
	require.NoError(t, inv.RecordPayment("pay-1", bdt("50000"), "user-1", testTime))
	version := inv.CurrentVersion()

	err := inv.RecordPayment("pay-2", bdt("10000.01"), "user-1", testTime)
	assert.ErrorIs(t, err, apperrors.ErrOverpayment)
	assert.Equal(t, version, inv.CurrentVersion())
	assert.True(t, inv.PaidAmount().Equal(bdt("50000")))
	assert.False(t, inv.HasRecordedPayment("pay-2"))
}

func TestInvoice_RecordPayment_OnCancelledIsConflict(t *testing.T) {
	inv := newTestInvoice(t)
	require.NoError(t, inv.Cancel("duplicate order", "user-1", testTime))

	err := inv.RecordPayment("pay-1", bdt("100"), "user-1", testTime)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestInvoice_Cancel(t *testing.T) {
	inv := newTestInvoice(t)
	require.NoError(t, inv.Cancel("order withdrawn", "user-1", testTime))
	assert.Equal(t, domain.InvoiceStatusCancelled, inv.Status())

	// cancelling again is a no-op
	assert.NoError(t, inv.Cancel("again", "user-1", testTime))
}

func TestInvoice_CancelWithPaymentsIsConflict(t *testing.T) {
	inv := newTestInvoice(t)
	require.NoError(t, inv.RecordPayment("pay-1", bdt("100"), "user-1", testTime))

	assert.ErrorIs(t, inv.Cancel("too late", "user-1", testTime), apperrors.ErrConflict)
}

func TestInvoice_ApproveIsIdempotent(t *testing.T) {
	inv := newTestInvoice(t)
	require.NoError(t, inv.Approve("user-1", testTime))
	version := inv.CurrentVersion()
	assert.NoError(t, inv.Approve("user-1", testTime))
	assert.Equal(t, version, inv.CurrentVersion())
}

func TestInvoice_ReplayRebuildsState(t *testing.T) {
	inv := newTestInvoice(t)
	require.NoError(t, inv.Approve("user-1", testTime))
	require.NoError(t, inv.RecordPayment("pay-1", bdt("60000"), "user-1", testTime))

	replayed := domain.NewEmptyInvoice()
	require.NoError(t, replayed.ApplyHistory(inv.UncommittedEvents()))

	assert.Equal(t, domain.InvoiceStatusPaid, replayed.Status())
	assert.True(t, replayed.PaidAmount().Equal(bdt("60000")))
	assert.True(t, replayed.HasRecordedPayment("pay-1"))
	assert.Equal(t, inv.CurrentVersion(), replayed.CurrentVersion())
	assert.Empty(t, replayed.UncommittedEvents())
}

func TestInvoice_SnapshotRoundTrip(t *testing.T) {
	inv := newTestInvoice(t)
	require.NoError(t, inv.RecordPayment("pay-1", bdt("25000"), "user-1", testTime))

	state, err := inv.SnapshotState()
	require.NoError(t, err)

	restored := domain.NewEmptyInvoice()
	require.NoError(t, restored.RestoreSnapshot(inv.CurrentVersion(), state))

	assert.Equal(t, inv.AggregateID(), restored.AggregateID())
	assert.Equal(t, inv.CurrentVersion(), restored.CurrentVersion())
	assert.True(t, restored.PaidAmount().Equal(bdt("25000")))
	assert.True(t, restored.HasRecordedPayment("pay-1"))

	// duplicate detection must survive the snapshot
	version := restored.CurrentVersion()
	assert.NoError(t, restored.RecordPayment("pay-1", bdt("25000"), "user-1", testTime.Add(time.Hour)))
	assert.Equal(t, version, restored.CurrentVersion())
}

func TestInvoice_SnapshotBytesDeterministic(t *testing.T) {
	inv := newTestInvoice(t)
	require.NoError(t, inv.RecordPayment("pay-b", bdt("100"), "user-1", testTime))
	require.NoError(t, inv.RecordPayment("pay-a", bdt("100"), "user-1", testTime))

	first, err := inv.SnapshotState()
	require.NoError(t, err)
	second, err := inv.SnapshotState()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
