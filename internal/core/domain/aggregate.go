package domain

import "fmt"

// applier dispatches an event against aggregate state. Payment and Invoice
// implement it with a single exhaustive switch over their event sum type.
type applier interface {
	when(event Event) error
}

// Root is the embedded base of every event-sourced aggregate. State changes
// go through apply, which validates the event via the aggregate's dispatcher,
// increments the version and buffers the event until the repository commits
// the stream.
type Root struct {
	id          string
	tenantID    string
	version     int64
	uncommitted []Event
}

// AggregateID returns the aggregate's identity.
func (r *Root) AggregateID() string { return r.id }

// TenantID returns the owning tenant.
func (r *Root) TenantID() string { return r.tenantID }

// CurrentVersion returns the stream version, incremented once per applied
// event. A fresh aggregate is at version 0.
func (r *Root) CurrentVersion() int64 { return r.version }

// UncommittedEvents returns the events applied since the last commit, in
// apply order.
func (r *Root) UncommittedEvents() []Event { return r.uncommitted }

// MarkCommitted clears the uncommitted buffer after a successful save.
func (r *Root) MarkCommitted() { r.uncommitted = nil }

// init seeds identity before the first event is applied.
func (r *Root) init(id, tenantID string) {
	r.id = id
	r.tenantID = tenantID
}

// apply runs the event through the dispatcher, then buffers it and bumps the
// version. The dispatcher must reject the event before touching state if any
// invariant would be violated.
func (r *Root) apply(a applier, event Event) error {
	if err := a.when(event); err != nil {
		return err
	}
	r.version++
	r.uncommitted = append(r.uncommitted, event)
	return nil
}

// replay folds history through the dispatcher without buffering, used for
// rehydration from the event store.
func (r *Root) replay(a applier, events []Event) error {
	for _, event := range events {
		if err := a.when(event); err != nil {
			return fmt.Errorf("replaying %s at version %d: %w", event.EventType(), r.version+1, err)
		}
		r.version++
	}
	return nil
}

// restore seeds identity and version from a snapshot.
func (r *Root) restore(id, tenantID string, version int64) {
	r.id = id
	r.tenantID = tenantID
	r.version = version
}
