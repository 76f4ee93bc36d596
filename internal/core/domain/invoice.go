package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vextrus/ledger-core/internal/apperrors"
)

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusApproved  InvoiceStatus = "APPROVED"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// AggregateTypeInvoice names the invoice stream family.
const AggregateTypeInvoice = "invoice"

// LineItem is a single billed line. Amount is quantity times unit price.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   Money           `json:"unitPrice"`
}

// Amount returns quantity * unit price.
func (li LineItem) Amount() Money {
	return Money{Amount: li.UnitPrice.Amount.Mul(li.Quantity), CurrencyCode: li.UnitPrice.CurrencyCode}
}

// Invoice is the event-sourced invoice aggregate. RecordPayment is the only
// mutator of the paid amount; the balance never goes below zero.
type Invoice struct {
	Root
	invoiceNumber string
	customerID    string
	items         []LineItem
	total         Money
	paidAmount    Money
	status        InvoiceStatus
	issueDate     time.Time
	payments      map[string]struct{} // payment IDs already recorded, for idempotency
}

// NewEmptyInvoice returns an uninitialized invoice for rehydration.
func NewEmptyInvoice() *Invoice { return &Invoice{} }

// NewInvoice creates a DRAFT invoice from its line items. All items must
// share the given currency; the total is computed, never supplied.
func NewInvoice(invoiceID, tenantID, invoiceNumber, customerID string, items []LineItem, currencyCode string, issueDate time.Time, actorID string, now time.Time) (*Invoice, error) {
	if invoiceID == "" || tenantID == "" {
		return nil, fmt.Errorf("%w: invoice ID and tenant ID are required", apperrors.ErrValidation)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: invoice must have at least one line item", apperrors.ErrValidation)
	}
	total := ZeroMoney(currencyCode)
	for i, item := range items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: line item %d quantity must be positive", apperrors.ErrValidation, i)
		}
		if item.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: line item %d unit price must not be negative", apperrors.ErrValidation, i)
		}
		var err error
		total, err = total.Add(item.Amount())
		if err != nil {
			return nil, fmt.Errorf("%w: line item %d: %v", apperrors.ErrValidation, i, err)
		}
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: invoice total must be positive, got %s", apperrors.ErrValidation, total)
	}

	inv := &Invoice{}
	inv.init(invoiceID, tenantID)
	err := inv.apply(inv, InvoiceCreated{
		EventMeta:     EventMeta{ActorID: actorID, OccurredAt: now},
		InvoiceID:     invoiceID,
		TenantID:      tenantID,
		InvoiceNumber: invoiceNumber,
		CustomerID:    customerID,
		Items:         items,
		Total:         total,
		IssueDate:     issueDate,
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// AggregateType implements the event-stream repository contract.
func (inv *Invoice) AggregateType() string { return AggregateTypeInvoice }

func (inv *Invoice) InvoiceNumber() string { return inv.invoiceNumber }
func (inv *Invoice) CustomerID() string    { return inv.customerID }
func (inv *Invoice) Items() []LineItem     { return inv.items }
func (inv *Invoice) Total() Money          { return inv.total }
func (inv *Invoice) PaidAmount() Money     { return inv.paidAmount }
func (inv *Invoice) Status() InvoiceStatus { return inv.status }
func (inv *Invoice) IssueDate() time.Time  { return inv.issueDate }

// BalanceAmount is total minus paid; the invariant keeps it at or above zero.
func (inv *Invoice) BalanceAmount() Money {
	balance, _ := inv.total.Sub(inv.paidAmount)
	return balance
}

// HasRecordedPayment reports whether the given payment was already credited.
func (inv *Invoice) HasRecordedPayment(paymentID string) bool {
	_, ok := inv.payments[paymentID]
	return ok
}

// Approve moves a draft invoice to APPROVED. Approving an already approved
// invoice is a no-op.
func (inv *Invoice) Approve(actorID string, now time.Time) error {
	switch inv.status {
	case InvoiceStatusApproved:
		return nil
	case InvoiceStatusDraft:
		return inv.apply(inv, InvoiceApproved{
			EventMeta: EventMeta{ActorID: actorID, OccurredAt: now},
			InvoiceID: inv.AggregateID(),
		})
	default:
		return fmt.Errorf("%w: cannot approve invoice %s in status %s", apperrors.ErrConflict, inv.AggregateID(), inv.status)
	}
}

// RecordPayment credits a completed payment against the balance. Recording
// the same payment ID twice is an idempotent no-op. An amount that would
// drive the balance below zero is rejected with ErrOverpayment and leaves
// state unchanged. Exactly when the balance reaches zero, InvoiceFullyPaid is
// emitted alongside the payment-recorded event and the status becomes PAID.
func (inv *Invoice) RecordPayment(paymentID string, amount Money, actorID string, now time.Time) error {
	if paymentID == "" {
		return fmt.Errorf("%w: payment ID is required", apperrors.ErrValidation)
	}
	if inv.HasRecordedPayment(paymentID) {
		return nil
	}
	if inv.status == InvoiceStatusCancelled {
		return fmt.Errorf("%w: cannot record payment on cancelled invoice %s", apperrors.ErrConflict, inv.AggregateID())
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: payment amount must be positive, got %s", apperrors.ErrValidation, amount)
	}
	newPaid, err := inv.paidAmount.Add(amount)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	balanceAfter, err := inv.total.Sub(newPaid)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if balanceAfter.IsNegative() {
		return fmt.Errorf("%w: payment %s of %s exceeds remaining balance %s on invoice %s",
			apperrors.ErrOverpayment, paymentID, amount, inv.BalanceAmount(), inv.AggregateID())
	}

	if err := inv.apply(inv, InvoicePaymentRecorded{
		EventMeta:    EventMeta{ActorID: actorID, OccurredAt: now},
		InvoiceID:    inv.AggregateID(),
		PaymentID:    paymentID,
		Amount:       amount,
		BalanceAfter: balanceAfter,
	}); err != nil {
		return err
	}
	if balanceAfter.IsZero() {
		return inv.apply(inv, InvoiceFullyPaid{
			EventMeta: EventMeta{ActorID: actorID, OccurredAt: now},
			InvoiceID: inv.AggregateID(),
			PaidTotal: newPaid,
		})
	}
	return nil
}

// Cancel retires an unpaid invoice. Invoices with recorded payments cannot be
// cancelled; reversing the payments comes first.
func (inv *Invoice) Cancel(reason, actorID string, now time.Time) error {
	switch inv.status {
	case InvoiceStatusCancelled:
		return nil
	case InvoiceStatusDraft, InvoiceStatusApproved:
		if inv.paidAmount.IsPositive() {
			return fmt.Errorf("%w: cannot cancel invoice %s with %s already paid", apperrors.ErrConflict, inv.AggregateID(), inv.paidAmount)
		}
		return inv.apply(inv, InvoiceCancelled{
			EventMeta: EventMeta{ActorID: actorID, OccurredAt: now},
			InvoiceID: inv.AggregateID(),
			Reason:    reason,
		})
	default:
		return fmt.Errorf("%w: cannot cancel invoice %s in status %s", apperrors.ErrConflict, inv.AggregateID(), inv.status)
	}
}

// when is the single fold function for the invoice event sum type.
func (inv *Invoice) when(event Event) error {
	switch e := event.(type) {
	case InvoiceCreated:
		inv.init(e.InvoiceID, e.TenantID)
		inv.invoiceNumber = e.InvoiceNumber
		inv.customerID = e.CustomerID
		inv.items = e.Items
		inv.total = e.Total
		inv.paidAmount = ZeroMoney(e.Total.CurrencyCode)
		inv.status = InvoiceStatusDraft
		inv.issueDate = e.IssueDate
		inv.payments = make(map[string]struct{})
	case InvoiceApproved:
		inv.status = InvoiceStatusApproved
	case InvoicePaymentRecorded:
		paid, err := inv.paidAmount.Add(e.Amount)
		if err != nil {
			return err
		}
		inv.paidAmount = paid
		inv.payments[e.PaymentID] = struct{}{}
	case InvoiceFullyPaid:
		inv.status = InvoiceStatusPaid
	case InvoiceCancelled:
		inv.status = InvoiceStatusCancelled
	default:
		return fmt.Errorf("unexpected event %T on invoice stream", event)
	}
	return nil
}

// ApplyHistory rehydrates the invoice by replaying events in stream order.
func (inv *Invoice) ApplyHistory(events []Event) error {
	return inv.replay(inv, events)
}

// invoiceSnapshot is the serialized snapshot state.
type invoiceSnapshot struct {
	InvoiceID     string        `json:"invoiceId"`
	TenantID      string        `json:"tenantId"`
	InvoiceNumber string        `json:"invoiceNumber"`
	CustomerID    string        `json:"customerId"`
	Items         []LineItem    `json:"items"`
	Total         Money         `json:"total"`
	PaidAmount    Money         `json:"paidAmount"`
	Status        InvoiceStatus `json:"status"`
	IssueDate     time.Time     `json:"issueDate"`
	PaymentIDs    []string      `json:"paymentIds,omitempty"`
}

// SnapshotState serializes the current state for the snapshot store.
func (inv *Invoice) SnapshotState() ([]byte, error) {
	paymentIDs := make([]string, 0, len(inv.payments))
	for id := range inv.payments {
		paymentIDs = append(paymentIDs, id)
	}
	sort.Strings(paymentIDs) // deterministic snapshot bytes
	return json.Marshal(invoiceSnapshot{
		InvoiceID:     inv.AggregateID(),
		TenantID:      inv.TenantID(),
		InvoiceNumber: inv.invoiceNumber,
		CustomerID:    inv.customerID,
		Items:         inv.items,
		Total:         inv.total,
		PaidAmount:    inv.paidAmount,
		Status:        inv.status,
		IssueDate:     inv.issueDate,
		PaymentIDs:    paymentIDs,
	})
}

// RestoreSnapshot rebuilds state from a snapshot taken at the given version.
func (inv *Invoice) RestoreSnapshot(version int64, state []byte) error {
	var snap invoiceSnapshot
	if err := json.Unmarshal(state, &snap); err != nil {
		return err
	}
	inv.restore(snap.InvoiceID, snap.TenantID, version)
	inv.invoiceNumber = snap.InvoiceNumber
	inv.customerID = snap.CustomerID
	inv.items = snap.Items
	inv.total = snap.Total
	inv.paidAmount = snap.PaidAmount
	inv.status = snap.Status
	inv.issueDate = snap.IssueDate
	inv.payments = make(map[string]struct{}, len(snap.PaymentIDs))
	for _, id := range snap.PaymentIDs {
		inv.payments[id] = struct{}{}
	}
	return nil
}
