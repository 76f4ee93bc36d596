package domain

import "time"

// Event type tags for the invoice stream.
const (
	EventInvoiceCreated         = "invoice.created"
	EventInvoiceApproved        = "invoice.approved"
	EventInvoicePaymentRecorded = "invoice.payment_recorded"
	EventInvoiceFullyPaid       = "invoice.fully_paid"
	EventInvoiceCancelled       = "invoice.cancelled"
)

// InvoiceEvent is the closed sum type of events an invoice stream can hold.
type InvoiceEvent interface {
	Event
	isInvoiceEvent()
}

// InvoiceCreated starts an invoice stream in DRAFT status.
type InvoiceCreated struct {
	EventMeta
	InvoiceID     string     `json:"invoiceId"`
	TenantID      string     `json:"tenantId"`
	InvoiceNumber string     `json:"invoiceNumber"`
	CustomerID    string     `json:"customerId"`
	Items         []LineItem `json:"items"`
	Total         Money      `json:"total"`
	IssueDate     time.Time  `json:"issueDate"`
}

func (InvoiceCreated) EventType() string { return EventInvoiceCreated }
func (InvoiceCreated) isInvoiceEvent()   {}

// InvoiceApproved moves the invoice from DRAFT to APPROVED.
type InvoiceApproved struct {
	EventMeta
	InvoiceID string `json:"invoiceId"`
}

func (InvoiceApproved) EventType() string { return EventInvoiceApproved }
func (InvoiceApproved) isInvoiceEvent()   {}

// InvoicePaymentRecorded credits a completed payment against the invoice
// balance. BalanceAfter is the balance once this payment is applied.
type InvoicePaymentRecorded struct {
	EventMeta
	InvoiceID    string `json:"invoiceId"`
	PaymentID    string `json:"paymentId"`
	Amount       Money  `json:"amount"`
	BalanceAfter Money  `json:"balanceAfter"`
}

func (InvoicePaymentRecorded) EventType() string { return EventInvoicePaymentRecorded }
func (InvoicePaymentRecorded) isInvoiceEvent()   {}

// InvoiceFullyPaid is emitted exactly once, when the balance reaches zero.
type InvoiceFullyPaid struct {
	EventMeta
	InvoiceID string `json:"invoiceId"`
	PaidTotal Money  `json:"paidTotal"`
}

func (InvoiceFullyPaid) EventType() string { return EventInvoiceFullyPaid }
func (InvoiceFullyPaid) isInvoiceEvent()   {}

// InvoiceCancelled retires the invoice; history remains in the stream.
type InvoiceCancelled struct {
	EventMeta
	InvoiceID string `json:"invoiceId"`
	Reason    string `json:"reason,omitempty"`
}

func (InvoiceCancelled) EventType() string { return EventInvoiceCancelled }
func (InvoiceCancelled) isInvoiceEvent()   {}
