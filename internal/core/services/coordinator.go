package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vextrus/ledger-core/internal/apperrors"
	"github.com/vextrus/ledger-core/internal/core/domain"
	portsrepo "github.com/vextrus/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/vextrus/ledger-core/internal/core/ports/services"
	"github.com/vextrus/ledger-core/internal/repositories/eventstream"
)

// PaymentCoordinator applies completed payments to their invoices. The two
// aggregates live in separate streams, so the payment side of the fact is
// already durable by the time this runs: invoice-side rejections degrade to
// log lines instead of failing the payment.
type PaymentCoordinator struct {
	BaseService
	invoices portsrepo.InvoiceRepository
	now      func() time.Time
}

// NewPaymentCoordinator creates the coordinator.
func NewPaymentCoordinator(invoices portsrepo.InvoiceRepository) *PaymentCoordinator {
	return &PaymentCoordinator{
		invoices: invoices,
		now:      time.Now,
	}
}

var _ portssvc.PaymentEventHandler = (*PaymentCoordinator)(nil)

// HandlePaymentCompleted records the completed payment against its invoice.
// Envelopes carrying other event types pass through untouched. A missing
// invoice, an overpayment or a state rejection leaves the payment COMPLETED
// and the invoice unchanged; only infrastructure failures propagate.
func (c *PaymentCoordinator) HandlePaymentCompleted(ctx context.Context, envelope domain.Envelope) error {
	if envelope.EventType != domain.EventPaymentCompleted {
		return nil
	}

	var event domain.PaymentCompleted
	if err := json.Unmarshal(envelope.Payload, &event); err != nil {
		return fmt.Errorf("decoding payment.completed %s: %w", envelope.EventID, err)
	}

	err := eventstream.WithConflictRetry(ctx, func(ctx context.Context) error {
		invoice, err := c.invoices.FindByID(ctx, event.InvoiceID)
		if err != nil {
			return err
		}
		if invoice.TenantID() != envelope.TenantID {
			return fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, event.InvoiceID)
		}
		if err := invoice.RecordPayment(event.PaymentID, event.Amount, envelope.ActorID, c.now().UTC()); err != nil {
			return err
		}
		return c.invoices.Save(ctx, invoice)
	})
	if err == nil {
		c.LogInfo(ctx, "payment applied to invoice",
			slog.String("payment_id", event.PaymentID),
			slog.String("invoice_id", event.InvoiceID))
		return nil
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound),
		errors.Is(err, apperrors.ErrOverpayment),
		errors.Is(err, apperrors.ErrConflict):
		c.LogWarn(ctx, "payment left unapplied to invoice",
			slog.String("payment_id", event.PaymentID),
			slog.String("invoice_id", event.InvoiceID),
			slog.String("reason", err.Error()))
		return nil
	default:
		return err
	}
}
