package eventstream

import (
	"encoding/json"
	"fmt"

	"github.com/vextrus/ledger-core/internal/core/domain"
	portsrepo "github.com/vextrus/ledger-core/internal/core/ports/repositories"
)

func decodeAs[E domain.Event](eventType string, payload []byte) (domain.Event, error) {
	var event E
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("unmarshaling %s: %w", eventType, err)
	}
	return event, nil
}

// DecodePaymentEvent rebuilds payment events from their stored form.
func DecodePaymentEvent(eventType string, payload []byte) (domain.Event, error) {
	switch eventType {
	case domain.EventPaymentCreated:
		return decodeAs[domain.PaymentCreated](eventType, payload)
	case domain.EventPaymentProcessing:
		return decodeAs[domain.PaymentMarkedProcessing](eventType, payload)
	case domain.EventPaymentCompleted:
		return decodeAs[domain.PaymentCompleted](eventType, payload)
	case domain.EventPaymentFailed:
		return decodeAs[domain.PaymentFailed](eventType, payload)
	case domain.EventPaymentReconciled:
		return decodeAs[domain.PaymentReconciled](eventType, payload)
	case domain.EventPaymentReversed:
		return decodeAs[domain.PaymentReversed](eventType, payload)
	default:
		return nil, fmt.Errorf("unknown payment event type %q", eventType)
	}
}

// DecodeInvoiceEvent rebuilds invoice events from their stored form.
func DecodeInvoiceEvent(eventType string, payload []byte) (domain.Event, error) {
	switch eventType {
	case domain.EventInvoiceCreated:
		return decodeAs[domain.InvoiceCreated](eventType, payload)
	case domain.EventInvoiceApproved:
		return decodeAs[domain.InvoiceApproved](eventType, payload)
	case domain.EventInvoicePaymentRecorded:
		return decodeAs[domain.InvoicePaymentRecorded](eventType, payload)
	case domain.EventInvoiceFullyPaid:
		return decodeAs[domain.InvoiceFullyPaid](eventType, payload)
	case domain.EventInvoiceCancelled:
		return decodeAs[domain.InvoiceCancelled](eventType, payload)
	default:
		return nil, fmt.Errorf("unknown invoice event type %q", eventType)
	}
}

// NewPaymentRepository wires a repository over payment streams.
func NewPaymentRepository(
	store portsrepo.EventStore,
	snapshots portsrepo.SnapshotStore,
	publisher portsrepo.EventPublisher,
	invalidator portsrepo.CacheInvalidator,
) *Repository[*domain.Payment] {
	return New(store, snapshots, publisher, invalidator, domain.NewEmptyPayment, DecodePaymentEvent)
}

// NewInvoiceRepository wires a repository over invoice streams.
func NewInvoiceRepository(
	store portsrepo.EventStore,
	snapshots portsrepo.SnapshotStore,
	publisher portsrepo.EventPublisher,
	invalidator portsrepo.CacheInvalidator,
) *Repository[*domain.Invoice] {
	return New(store, snapshots, publisher, invalidator, domain.NewEmptyInvoice, DecodeInvoiceEvent)
}
