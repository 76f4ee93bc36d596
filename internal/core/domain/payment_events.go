package domain

import (
	"encoding/json"
	"time"
)

// Event type tags for the payment stream.
const (
	EventPaymentCreated    = "payment.created"
	EventPaymentProcessing = "payment.processing"
	EventPaymentCompleted  = "payment.completed"
	EventPaymentFailed     = "payment.failed"
	EventPaymentReconciled = "payment.reconciled"
	EventPaymentReversed   = "payment.reversed"
)

// PaymentEvent is the closed sum type of events a payment stream can hold.
type PaymentEvent interface {
	Event
	isPaymentEvent()
}

// PaymentCreated starts a payment stream.
type PaymentCreated struct {
	EventMeta
	PaymentID     string        `json:"paymentId"`
	TenantID      string        `json:"tenantId"`
	PaymentNumber string        `json:"paymentNumber"`
	InvoiceID     string        `json:"invoiceId"`
	Amount        Money         `json:"amount"`
	Method        PaymentMethod `json:"-"`
	Reference     string        `json:"reference,omitempty"`
	PaymentDate   time.Time     `json:"paymentDate"`
}

func (PaymentCreated) EventType() string { return EventPaymentCreated }
func (PaymentCreated) isPaymentEvent()   {}

// paymentCreatedJSON is the wire form; the method sum type needs a kind tag.
type paymentCreatedJSON struct {
	EventMeta
	PaymentID     string          `json:"paymentId"`
	TenantID      string          `json:"tenantId"`
	PaymentNumber string          `json:"paymentNumber"`
	InvoiceID     string          `json:"invoiceId"`
	Amount        Money           `json:"amount"`
	Method        json.RawMessage `json:"method"`
	Reference     string          `json:"reference,omitempty"`
	PaymentDate   time.Time       `json:"paymentDate"`
}

func (e PaymentCreated) MarshalJSON() ([]byte, error) {
	method, err := marshalPaymentMethod(e.Method)
	if err != nil {
		return nil, err
	}
	return json.Marshal(paymentCreatedJSON{
		EventMeta:     e.EventMeta,
		PaymentID:     e.PaymentID,
		TenantID:      e.TenantID,
		PaymentNumber: e.PaymentNumber,
		InvoiceID:     e.InvoiceID,
		Amount:        e.Amount,
		Method:        method,
		Reference:     e.Reference,
		PaymentDate:   e.PaymentDate,
	})
}

func (e *PaymentCreated) UnmarshalJSON(data []byte) error {
	var wire paymentCreatedJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	method, err := unmarshalPaymentMethod(wire.Method)
	if err != nil {
		return err
	}
	*e = PaymentCreated{
		EventMeta:     wire.EventMeta,
		PaymentID:     wire.PaymentID,
		TenantID:      wire.TenantID,
		PaymentNumber: wire.PaymentNumber,
		InvoiceID:     wire.InvoiceID,
		Amount:        wire.Amount,
		Method:        method,
		Reference:     wire.Reference,
		PaymentDate:   wire.PaymentDate,
	}
	return nil
}

// PaymentMarkedProcessing records hand-off to the payment processor.
type PaymentMarkedProcessing struct {
	EventMeta
	PaymentID string `json:"paymentId"`
}

func (PaymentMarkedProcessing) EventType() string { return EventPaymentProcessing }
func (PaymentMarkedProcessing) isPaymentEvent()   {}

// PaymentCompleted records successful settlement. It is self-contained so the
// cross-aggregate coordinator can act on it without reloading the payment.
type PaymentCompleted struct {
	EventMeta
	PaymentID            string `json:"paymentId"`
	InvoiceID            string `json:"invoiceId"`
	Amount               Money  `json:"amount"`
	TransactionReference string `json:"transactionReference,omitempty"`
}

func (PaymentCompleted) EventType() string { return EventPaymentCompleted }
func (PaymentCompleted) isPaymentEvent()   {}

// PaymentFailed records a settlement failure.
type PaymentFailed struct {
	EventMeta
	PaymentID string `json:"paymentId"`
	Reason    string `json:"reason,omitempty"`
}

func (PaymentFailed) EventType() string { return EventPaymentFailed }
func (PaymentFailed) isPaymentEvent()   {}

// PaymentReconciled links the payment to a bank statement transaction.
type PaymentReconciled struct {
	EventMeta
	PaymentID         string    `json:"paymentId"`
	BankTransactionID string    `json:"bankTransactionId"`
	ReconciledAt      time.Time `json:"reconciledAt"`
}

func (PaymentReconciled) EventType() string { return EventPaymentReconciled }
func (PaymentReconciled) isPaymentEvent()   {}

// PaymentReversed is the terminal undo; payments are never hard-deleted.
type PaymentReversed struct {
	EventMeta
	PaymentID string `json:"paymentId"`
	Reason    string `json:"reason,omitempty"`
}

func (PaymentReversed) EventType() string { return EventPaymentReversed }
func (PaymentReversed) isPaymentEvent()   {}
