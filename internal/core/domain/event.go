package domain

import (
	"encoding/json"
	"time"
)

// EventMeta holds the audit fields common to every domain event. It is
// embedded in each concrete event struct.
type EventMeta struct {
	ActorID    string    `json:"actorId,omitempty"` // UserID reference, empty for system-driven events
	OccurredAt time.Time `json:"occurredAt"`
}

// Meta returns the embedded metadata, satisfying the Event interface.
func (m EventMeta) Meta() EventMeta { return m }

// Event is an immutable record of a state change on an aggregate.
// Concrete events are closed per-aggregate sum types; state is only ever
// mutated by folding events through the aggregate's dispatcher.
type Event interface {
	EventType() string
	Meta() EventMeta
}

// Envelope is the persisted form of an event: the serialized payload plus the
// stream metadata the event store owns. Envelopes are append-only; they are
// never mutated or deleted.
type Envelope struct {
	EventID       string          `json:"eventId"`
	AggregateID   string          `json:"aggregateId"`
	AggregateType string          `json:"aggregateType"`
	EventType     string          `json:"eventType"`
	Version       int64           `json:"version"` // position in the aggregate's stream, starts at 1
	TenantID      string          `json:"tenantId"`
	ActorID       string          `json:"actorId,omitempty"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Payload       json.RawMessage `json:"payload"`
}

// Snapshot is a cached reconstruction of aggregate state at a given version.
// Snapshots only bound replay cost; deleting every snapshot must still yield
// the same state via full replay.
type Snapshot struct {
	AggregateID   string          `json:"aggregateId"`
	AggregateType string          `json:"aggregateType"`
	Version       int64           `json:"version"`
	State         json.RawMessage `json:"state"`
	CreatedAt     time.Time       `json:"createdAt"`
}
