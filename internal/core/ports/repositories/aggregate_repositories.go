package repositories

import (
	"context"

	"github.com/vextrus/ledger-core/internal/core/domain"
)

// PaymentRepository loads and saves payment aggregates against their event
// streams. Save surfaces apperrors.ErrVersionConflict distinctly so callers
// can reload and retry; FindByID returns apperrors.ErrNotFound for an empty
// stream.
type PaymentRepository interface {
	Save(ctx context.Context, payment *domain.Payment) error
	FindByID(ctx context.Context, paymentID string) (*domain.Payment, error)
}

// InvoiceRepository is the invoice counterpart of PaymentRepository.
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *domain.Invoice) error
	FindByID(ctx context.Context, invoiceID string) (*domain.Invoice, error)
}
