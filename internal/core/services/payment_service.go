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

const paymentSequenceName = "payment_number"

// PaymentService implements the payment commands over the event-sourced
// payment repository.
type PaymentService struct {
	BaseService
	payments  portsrepo.PaymentRepository
	sequences portsrepo.SequenceRepository
	now       func() time.Time
}

// NewPaymentService creates a payment service.
func NewPaymentService(payments portsrepo.PaymentRepository, sequences portsrepo.SequenceRepository) *PaymentService {
	return &PaymentService{
		payments:  payments,
		sequences: sequences,
		now:       time.Now,
	}
}

var _ portssvc.PaymentSvcFacade = (*PaymentService)(nil)

// CreatePayment mints a payment number and records the new payment in
// PENDING state.
func (s *PaymentService) CreatePayment(ctx context.Context, tenantID string, req dto.CreatePaymentRequest, actorID string) (*domain.Payment, error) {
	now := s.now().UTC()

	amount, err := domain.NewMoney(req.Amount, req.CurrencyCode)
	if err != nil {
		return nil, err
	}
	method, err := req.Method.ToDomain()
	if err != nil {
		return nil, err
	}

	seq, err := s.sequences.Next(ctx, tenantID, paymentSequenceName)
	if err != nil {
		s.LogError(ctx, err, "failed to mint payment number", slog.String("tenant_id", tenantID))
		return nil, err
	}
	paymentNumber := fmt.Sprintf("PAY-%d-%06d", now.Year(), seq)

	paymentDate := req.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = now
	}

	payment, err := domain.NewPayment(uuid.NewString(), tenantID, paymentNumber, req.InvoiceID, amount, method, req.Reference, paymentDate, actorID, now)
	if err != nil {
		return nil, err
	}
	if err := s.payments.Save(ctx, payment); err != nil {
		s.LogError(ctx, err, "failed to save new payment", slog.String("payment_id", payment.AggregateID()))
		return nil, err
	}

	s.LogInfo(ctx, "payment created",
		slog.String("payment_id", payment.AggregateID()),
		slog.String("payment_number", paymentNumber),
		slog.String("invoice_id", req.InvoiceID))
	return payment, nil
}

// GetPaymentByID loads a payment scoped to the tenant. A payment belonging to
// another tenant reads as not found.
func (s *PaymentService) GetPaymentByID(ctx context.Context, tenantID, paymentID string) (*domain.Payment, error) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.TenantID() != tenantID {
		return nil, fmt.Errorf("%w: payment %s", apperrors.ErrNotFound, paymentID)
	}
	return payment, nil
}

// MarkPaymentProcessing moves a pending payment into PROCESSING.
func (s *PaymentService) MarkPaymentProcessing(ctx context.Context, tenantID, paymentID string, actorID string) (*domain.Payment, error) {
	return s.mutatePayment(ctx, tenantID, paymentID, "mark_processing", func(p *domain.Payment) error {
		return p.MarkProcessing(actorID, s.now().UTC())
	})
}

// CompletePayment settles a payment. Completing an already completed payment
// is a no-op.
func (s *PaymentService) CompletePayment(ctx context.Context, tenantID, paymentID string, req dto.CompletePaymentRequest, actorID string) (*domain.Payment, error) {
	return s.mutatePayment(ctx, tenantID, paymentID, "complete", func(p *domain.Payment) error {
		return p.Complete(req.TransactionReference, actorID, s.now().UTC())
	})
}

// FailPayment marks a payment as failed.
func (s *PaymentService) FailPayment(ctx context.Context, tenantID, paymentID string, req dto.FailPaymentRequest, actorID string) (*domain.Payment, error) {
	return s.mutatePayment(ctx, tenantID, paymentID, "fail", func(p *domain.Payment) error {
		return p.Fail(req.Reason, actorID, s.now().UTC())
	})
}

// ReversePayment reverses a settled payment.
func (s *PaymentService) ReversePayment(ctx context.Context, tenantID, paymentID string, req dto.ReversePaymentRequest, actorID string) (*domain.Payment, error) {
	return s.mutatePayment(ctx, tenantID, paymentID, "reverse", func(p *domain.Payment) error {
		return p.Reverse(req.Reason, actorID, s.now().UTC())
	})
}

// ReconcilePayment matches the payment against the bank statement and, on a
// match, records the link to the bank transaction.
func (s *PaymentService) ReconcilePayment(ctx context.Context, tenantID, paymentID string, statement domain.BankStatement, actorID string) (*domain.BankTransaction, error) {
	var matched *domain.BankTransaction
	_, err := s.mutatePayment(ctx, tenantID, paymentID, "reconcile", func(p *domain.Payment) error {
		txn, err := domain.MatchBankTransaction(p, statement)
		if err != nil {
			return err
		}
		matched = txn
		return p.Reconcile(txn.BankTransactionID, actorID, s.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "payment reconciled",
		slog.String("payment_id", paymentID),
		slog.String("bank_transaction_id", matched.BankTransactionID))
	return matched, nil
}

// mutatePayment runs a command against the freshly loaded aggregate and
// saves, reloading and retrying when a concurrent writer advanced the
// stream.
func (s *PaymentService) mutatePayment(ctx context.Context, tenantID, paymentID, command string, mutate func(p *domain.Payment) error) (*domain.Payment, error) {
	var payment *domain.Payment
	err := eventstream.WithConflictRetry(ctx, func(ctx context.Context) error {
		var err error
		payment, err = s.GetPaymentByID(ctx, tenantID, paymentID)
		if err != nil {
			return err
		}
		if err := mutate(payment); err != nil {
			return err
		}
		return s.payments.Save(ctx, payment)
	})
	if err != nil {
		s.LogError(ctx, err, "payment command failed",
			slog.String("command", command),
			slog.String("payment_id", paymentID))
		return nil, err
	}
	return payment, nil
}
