package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vextrus/ledger-core/internal/apperrors"
	"github.com/vextrus/ledger-core/internal/core/domain"
	portsrepo "github.com/vextrus/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/vextrus/ledger-core/internal/core/ports/services"
	"github.com/vextrus/ledger-core/internal/dto"
	"github.com/vextrus/ledger-core/internal/repositories/eventstream"
)

const invoiceSequenceName = "invoice_number"

// InvoiceService implements the invoice commands over the event-sourced
// invoice repository.
type InvoiceService struct {
	BaseService
	invoices  portsrepo.InvoiceRepository
	sequences portsrepo.SequenceRepository
	now       func() time.Time
}

// NewInvoiceService creates an invoice service.
func NewInvoiceService(invoices portsrepo.InvoiceRepository, sequences portsrepo.SequenceRepository) *InvoiceService {
	return &InvoiceService{
		invoices:  invoices,
		sequences: sequences,
		now:       time.Now,
	}
}

var _ portssvc.InvoiceSvcFacade = (*InvoiceService)(nil)

// CreateInvoice mints an invoice number and records the new invoice in DRAFT
// state.
func (s *InvoiceService) CreateInvoice(ctx context.Context, tenantID string, req dto.CreateInvoiceRequest, actorID string) (*domain.Invoice, error) {
	now := s.now().UTC()

	items := make([]domain.LineItem, len(req.Items))
	for i, item := range req.Items {
		unitPrice, err := domain.NewMoney(item.UnitPrice, req.CurrencyCode)
		if err != nil {
			return nil, fmt.Errorf("%w: line item %d: %v", apperrors.ErrValidation, i, err)
		}
		items[i] = domain.LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   unitPrice,
		}
	}

	seq, err := s.sequences.Next(ctx, tenantID, invoiceSequenceName)
	if err != nil {
		s.LogError(ctx, err, "failed to mint invoice number", slog.String("tenant_id", tenantID))
		return nil, err
	}
	invoiceNumber := fmt.Sprintf("INV-%d-%06d", now.Year(), seq)

	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = now
	}

	invoice, err := domain.NewInvoice(uuid.NewString(), tenantID, invoiceNumber, req.CustomerID, items, req.CurrencyCode, issueDate, actorID, now)
	if err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, invoice); err != nil {
		s.LogError(ctx, err, "failed to save new invoice", slog.String("invoice_id", invoice.AggregateID()))
		return nil, err
	}

	s.LogInfo(ctx, "invoice created",
		slog.String("invoice_id", invoice.AggregateID()),
		slog.String("invoice_number", invoiceNumber),
		slog.String("customer_id", req.CustomerID))
	return invoice, nil
}

// GetInvoiceByID loads an invoice scoped to the tenant. An invoice belonging
// to another tenant reads as not found.
func (s *InvoiceService) GetInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.Invoice, error) {
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.TenantID() != tenantID {
		return nil, fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoiceID)
	}
	return invoice, nil
}

// ApproveInvoice moves a draft invoice into APPROVED.
func (s *InvoiceService) ApproveInvoice(ctx context.Context, tenantID, invoiceID string, actorID string) (*domain.Invoice, error) {
	return s.mutateInvoice(ctx, tenantID, invoiceID, "approve", func(inv *domain.Invoice) error {
		return inv.Approve(actorID, s.now().UTC())
	})
}

// CancelInvoice cancels an invoice with no recorded payments.
func (s *InvoiceService) CancelInvoice(ctx context.Context, tenantID, invoiceID string, req dto.CancelInvoiceRequest, actorID string) (*domain.Invoice, error) {
	return s.mutateInvoice(ctx, tenantID, invoiceID, "cancel", func(inv *domain.Invoice) error {
		return inv.Cancel(req.Reason, actorID, s.now().UTC())
	})
}

func (s *InvoiceService) mutateInvoice(ctx context.Context, tenantID, invoiceID, command string, mutate func(inv *domain.Invoice) error) (*domain.Invoice, error) {
	var invoice *domain.Invoice
	err := eventstream.WithConflictRetry(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.GetInvoiceByID(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if err := mutate(invoice); err != nil {
			return err
		}
		return s.invoices.Save(ctx, invoice)
	})
	if err != nil {
		s.LogError(ctx, err, "invoice command failed",
			slog.String("command", command),
			slog.String("invoice_id", invoiceID))
		return nil, err
	}
	return invoice, nil
}
