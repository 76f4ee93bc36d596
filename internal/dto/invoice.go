package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vextrus/ledger-core/internal/core/domain"
)

// LineItemRequest is a single billed line in a create-invoice command.
type LineItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// CreateInvoiceRequest is the command payload for creating an invoice.
type CreateInvoiceRequest struct {
	CustomerID   string            `json:"customerId"`
	CurrencyCode string            `json:"currencyCode"`
	IssueDate    time.Time         `json:"issueDate"`
	Items        []LineItemRequest `json:"items"`
}

// CancelInvoiceRequest cancels an unpaid invoice.
type CancelInvoiceRequest struct {
	Reason string `json:"reason,omitempty"`
}

// InvoiceResponse is the read shape returned to the command dispatch layer.
type InvoiceResponse struct {
	InvoiceID     string               `json:"invoiceId"`
	InvoiceNumber string               `json:"invoiceNumber"`
	CustomerID    string               `json:"customerId"`
	Total         decimal.Decimal      `json:"total"`
	PaidAmount    decimal.Decimal      `json:"paidAmount"`
	BalanceAmount decimal.Decimal      `json:"balanceAmount"`
	CurrencyCode  string               `json:"currencyCode"`
	Status        domain.InvoiceStatus `json:"status"`
	IssueDate     time.Time            `json:"issueDate"`
	Version       int64                `json:"version"`
}

// ToInvoiceResponse maps the aggregate to its response shape.
func ToInvoiceResponse(inv *domain.Invoice) InvoiceResponse {
	return InvoiceResponse{
		InvoiceID:     inv.AggregateID(),
		InvoiceNumber: inv.InvoiceNumber(),
		CustomerID:    inv.CustomerID(),
		Total:         inv.Total().Amount,
		PaidAmount:    inv.PaidAmount().Amount,
		BalanceAmount: inv.BalanceAmount().Amount,
		CurrencyCode:  inv.Total().CurrencyCode,
		Status:        inv.Status(),
		IssueDate:     inv.IssueDate(),
		Version:       inv.CurrentVersion(),
	}
}
