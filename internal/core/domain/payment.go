package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/vextrus/ledger-core/internal/apperrors"
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusProcessing PaymentStatus = "PROCESSING"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusReconciled PaymentStatus = "RECONCILED"
	PaymentStatusReversed   PaymentStatus = "REVERSED"
)

// AggregateTypePayment names the payment stream family.
const AggregateTypePayment = "payment"

// Payment is the event-sourced payment aggregate. State is reconstructed
// solely by folding payment events through when; business methods are guards
// that either apply the transition events or return a typed rejection.
type Payment struct {
	Root
	paymentNumber     string
	invoiceID         string
	amount            Money
	method            PaymentMethod
	reference         string
	paymentDate       time.Time
	status            PaymentStatus
	failureReason     string
	bankTransactionID string
	reconciledAt      *time.Time
}

// NewEmptyPayment returns an uninitialized payment for rehydration.
func NewEmptyPayment() *Payment { return &Payment{} }

// NewPayment creates a payment in PENDING state.
func NewPayment(paymentID, tenantID, paymentNumber, invoiceID string, amount Money, method PaymentMethod, reference string, paymentDate time.Time, actorID string, now time.Time) (*Payment, error) {
	if paymentID == "" || tenantID == "" {
		return nil, fmt.Errorf("%w: payment ID and tenant ID are required", apperrors.ErrValidation)
	}
	if invoiceID == "" {
		return nil, fmt.Errorf("%w: payment must reference an invoice", apperrors.ErrValidation)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive, got %s", apperrors.ErrValidation, amount)
	}
	if method == nil {
		return nil, fmt.Errorf("%w: payment method is required", apperrors.ErrValidation)
	}

	p := &Payment{}
	p.init(paymentID, tenantID)
	err := p.apply(p, PaymentCreated{
		EventMeta:     EventMeta{ActorID: actorID, OccurredAt: now},
		PaymentID:     paymentID,
		TenantID:      tenantID,
		PaymentNumber: paymentNumber,
		InvoiceID:     invoiceID,
		Amount:        amount,
		Method:        method,
		Reference:     reference,
		PaymentDate:   paymentDate,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// AggregateType implements the event-stream repository contract.
func (p *Payment) AggregateType() string { return AggregateTypePayment }

func (p *Payment) PaymentNumber() string         { return p.paymentNumber }
func (p *Payment) InvoiceID() string             { return p.invoiceID }
func (p *Payment) Amount() Money                 { return p.amount }
func (p *Payment) Method() PaymentMethod         { return p.method }
func (p *Payment) Reference() string             { return p.reference }
func (p *Payment) PaymentDate() time.Time        { return p.paymentDate }
func (p *Payment) Status() PaymentStatus         { return p.status }
func (p *Payment) FailureReason() string         { return p.failureReason }
func (p *Payment) BankTransactionID() string     { return p.bankTransactionID }
func (p *Payment) ReconciledAt() *time.Time      { return p.reconciledAt }

// MarkProcessing moves a pending payment to PROCESSING. Calling it on a
// payment already in PROCESSING is a no-op.
func (p *Payment) MarkProcessing(actorID string, now time.Time) error {
	switch p.status {
	case PaymentStatusProcessing:
		return nil
	case PaymentStatusPending:
		return p.apply(p, PaymentMarkedProcessing{
			EventMeta: EventMeta{ActorID: actorID, OccurredAt: now},
			PaymentID: p.AggregateID(),
		})
	default:
		return fmt.Errorf("%w: cannot mark payment %s as processing from status %s", apperrors.ErrConflict, p.AggregateID(), p.status)
	}
}

// Complete settles the payment. Completion of an already COMPLETED or
// RECONCILED payment is an idempotent no-op, tolerating at-least-once command
// delivery; completing a failed or reversed payment is a rejection.
func (p *Payment) Complete(transactionReference, actorID string, now time.Time) error {
	switch p.status {
	case PaymentStatusCompleted, PaymentStatusReconciled:
		return nil
	case PaymentStatusPending, PaymentStatusProcessing:
		return p.apply(p, PaymentCompleted{
			EventMeta:            EventMeta{ActorID: actorID, OccurredAt: now},
			PaymentID:            p.AggregateID(),
			InvoiceID:            p.invoiceID,
			Amount:               p.amount,
			TransactionReference: transactionReference,
		})
	default:
		return fmt.Errorf("%w: cannot complete payment %s in status %s", apperrors.ErrConflict, p.AggregateID(), p.status)
	}
}

// Fail marks the payment as failed. Already-failed payments are a no-op.
func (p *Payment) Fail(reason, actorID string, now time.Time) error {
	switch p.status {
	case PaymentStatusFailed:
		return nil
	case PaymentStatusPending, PaymentStatusProcessing:
		return p.apply(p, PaymentFailed{
			EventMeta: EventMeta{ActorID: actorID, OccurredAt: now},
			PaymentID: p.AggregateID(),
			Reason:    reason,
		})
	default:
		return fmt.Errorf("%w: cannot fail payment %s in status %s", apperrors.ErrConflict, p.AggregateID(), p.status)
	}
}

// Reconcile links the payment to the matched bank transaction. Reconciling
// again with the same transaction is a no-op; a different transaction is a
// conflict needing manual review.
func (p *Payment) Reconcile(bankTransactionID, actorID string, now time.Time) error {
	if bankTransactionID == "" {
		return fmt.Errorf("%w: bank transaction ID is required", apperrors.ErrValidation)
	}
	switch p.status {
	case PaymentStatusReconciled:
		if p.bankTransactionID == bankTransactionID {
			return nil
		}
		return fmt.Errorf("%w: payment %s already reconciled against transaction %s", apperrors.ErrConflict, p.AggregateID(), p.bankTransactionID)
	case PaymentStatusCompleted:
		return p.apply(p, PaymentReconciled{
			EventMeta:         EventMeta{ActorID: actorID, OccurredAt: now},
			PaymentID:         p.AggregateID(),
			BankTransactionID: bankTransactionID,
			ReconciledAt:      now,
		})
	default:
		return fmt.Errorf("%w: cannot reconcile payment %s in status %s, expected COMPLETED", apperrors.ErrConflict, p.AggregateID(), p.status)
	}
}

// Reverse is the terminal undo of a settled payment.
func (p *Payment) Reverse(reason, actorID string, now time.Time) error {
	switch p.status {
	case PaymentStatusReversed:
		return nil
	case PaymentStatusCompleted, PaymentStatusReconciled:
		return p.apply(p, PaymentReversed{
			EventMeta: EventMeta{ActorID: actorID, OccurredAt: now},
			PaymentID: p.AggregateID(),
			Reason:    reason,
		})
	default:
		return fmt.Errorf("%w: cannot reverse payment %s in status %s", apperrors.ErrConflict, p.AggregateID(), p.status)
	}
}

// when is the single fold function for the payment event sum type.
func (p *Payment) when(event Event) error {
	switch e := event.(type) {
	case PaymentCreated:
		p.init(e.PaymentID, e.TenantID)
		p.paymentNumber = e.PaymentNumber
		p.invoiceID = e.InvoiceID
		p.amount = e.Amount
		p.method = e.Method
		p.reference = e.Reference
		p.paymentDate = e.PaymentDate
		p.status = PaymentStatusPending
	case PaymentMarkedProcessing:
		p.status = PaymentStatusProcessing
	case PaymentCompleted:
		p.status = PaymentStatusCompleted
	case PaymentFailed:
		p.status = PaymentStatusFailed
		p.failureReason = e.Reason
	case PaymentReconciled:
		p.status = PaymentStatusReconciled
		p.bankTransactionID = e.BankTransactionID
		at := e.ReconciledAt
		p.reconciledAt = &at
	case PaymentReversed:
		p.status = PaymentStatusReversed
	default:
		return fmt.Errorf("unexpected event %T on payment stream", event)
	}
	return nil
}

// ApplyHistory rehydrates the payment by replaying events in stream order.
func (p *Payment) ApplyHistory(events []Event) error {
	return p.replay(p, events)
}

// paymentSnapshot is the serialized snapshot state.
type paymentSnapshot struct {
	PaymentID         string          `json:"paymentId"`
	TenantID          string          `json:"tenantId"`
	PaymentNumber     string          `json:"paymentNumber"`
	InvoiceID         string          `json:"invoiceId"`
	Amount            Money           `json:"amount"`
	Method            json.RawMessage `json:"method"`
	Reference         string          `json:"reference,omitempty"`
	PaymentDate       time.Time       `json:"paymentDate"`
	Status            PaymentStatus   `json:"status"`
	FailureReason     string          `json:"failureReason,omitempty"`
	BankTransactionID string          `json:"bankTransactionId,omitempty"`
	ReconciledAt      *time.Time      `json:"reconciledAt,omitempty"`
}

// SnapshotState serializes the current state for the snapshot store.
func (p *Payment) SnapshotState() ([]byte, error) {
	method, err := marshalPaymentMethod(p.method)
	if err != nil {
		return nil, err
	}
	return json.Marshal(paymentSnapshot{
		PaymentID:         p.AggregateID(),
		TenantID:          p.TenantID(),
		PaymentNumber:     p.paymentNumber,
		InvoiceID:         p.invoiceID,
		Amount:            p.amount,
		Method:            method,
		Reference:         p.reference,
		PaymentDate:       p.paymentDate,
		Status:            p.status,
		FailureReason:     p.failureReason,
		BankTransactionID: p.bankTransactionID,
		ReconciledAt:      p.reconciledAt,
	})
}

// RestoreSnapshot rebuilds state from a snapshot taken at the given version.
func (p *Payment) RestoreSnapshot(version int64, state []byte) error {
	var snap paymentSnapshot
	if err := json.Unmarshal(state, &snap); err != nil {
		return err
	}
	method, err := unmarshalPaymentMethod(snap.Method)
	if err != nil {
		return err
	}
	p.restore(snap.PaymentID, snap.TenantID, version)
	p.paymentNumber = snap.PaymentNumber
	p.invoiceID = snap.InvoiceID
	p.amount = snap.Amount
	p.method = method
	p.reference = snap.Reference
	p.paymentDate = snap.PaymentDate
	p.status = snap.Status
	p.failureReason = snap.FailureReason
	p.bankTransactionID = snap.BankTransactionID
	p.reconciledAt = snap.ReconciledAt
	return nil
}
