package services

import (
	"context"
	"time"

	"github.com/vextrus/ledger-core/internal/core/domain"
	"github.com/vextrus/ledger-core/internal/dto"
)

// PaymentSvcFacade exposes the payment commands invoked by the external
// command dispatch layer.
type PaymentSvcFacade interface {
	CreatePayment(ctx context.Context, tenantID string, req dto.CreatePaymentRequest, actorID string) (*domain.Payment, error)
	MarkPaymentProcessing(ctx context.Context, tenantID, paymentID string, actorID string) (*domain.Payment, error)
	CompletePayment(ctx context.Context, tenantID, paymentID string, req dto.CompletePaymentRequest, actorID string) (*domain.Payment, error)
	FailPayment(ctx context.Context, tenantID, paymentID string, req dto.FailPaymentRequest, actorID string) (*domain.Payment, error)
	ReversePayment(ctx context.Context, tenantID, paymentID string, req dto.ReversePaymentRequest, actorID string) (*domain.Payment, error)
	GetPaymentByID(ctx context.Context, tenantID, paymentID string) (*domain.Payment, error)
	// ReconcilePayment matches a completed payment against a bank statement
	// and links it to the matched transaction. apperrors.ErrNoMatch is a
	// recoverable outcome, not a fault.
	ReconcilePayment(ctx context.Context, tenantID, paymentID string, statement domain.BankStatement, actorID string) (*domain.BankTransaction, error)
}

// InvoiceSvcFacade exposes the invoice commands.
type InvoiceSvcFacade interface {
	CreateInvoice(ctx context.Context, tenantID string, req dto.CreateInvoiceRequest, actorID string) (*domain.Invoice, error)
	ApproveInvoice(ctx context.Context, tenantID, invoiceID string, actorID string) (*domain.Invoice, error)
	CancelInvoice(ctx context.Context, tenantID, invoiceID string, req dto.CancelInvoiceRequest, actorID string) (*domain.Invoice, error)
	GetInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.Invoice, error)
}

// PaymentEventHandler reacts to published payment events. The coordinator
// implements it; the subscriber loop feeds it.
type PaymentEventHandler interface {
	HandlePaymentCompleted(ctx context.Context, envelope domain.Envelope) error
}

// TrialBalanceSvcFacade verifies the fundamental accounting identity over the
// persisted account balances.
type TrialBalanceSvcFacade interface {
	Verify(ctx context.Context, tenantID string, asOf time.Time) (*domain.TrialBalanceReport, error)
}
