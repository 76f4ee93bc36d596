package eventstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vextrus/ledger-core/internal/apperrors"
	"github.com/vextrus/ledger-core/internal/core/domain"
	portsrepo "github.com/vextrus/ledger-core/internal/core/ports/repositories"
	"github.com/vextrus/ledger-core/internal/platform/logging"
)

// DefaultSnapshotInterval is how many events a stream accrues between
// snapshots.
const DefaultSnapshotInterval = 100

// Aggregate is the contract an event-sourced aggregate presents to the
// repository: identity, version tracking, the commit protocol, and snapshot
// round-tripping.
type Aggregate interface {
	AggregateID() string
	AggregateType() string
	TenantID() string
	CurrentVersion() int64
	ApplyHistory(events []domain.Event) error
	UncommittedEvents() []domain.Event
	MarkCommitted()
	SnapshotState() ([]byte, error)
	RestoreSnapshot(version int64, state []byte) error
}

// EventDecoder rebuilds a concrete domain event from its persisted type tag
// and payload. Each aggregate family registers one.
type EventDecoder func(eventType string, payload []byte) (domain.Event, error)

// Repository persists one aggregate family against the event store, with
// best-effort snapshotting, event publication and cache invalidation on save.
type Repository[T Aggregate] struct {
	store            portsrepo.EventStore
	snapshots        portsrepo.SnapshotStore
	publisher        portsrepo.EventPublisher
	invalidator      portsrepo.CacheInvalidator
	newAggregate     func() T
	decode           EventDecoder
	snapshotInterval int64
}

// New creates a repository for one aggregate family. Publisher and
// invalidator may be nil when no downstream consumers are wired (tests).
func New[T Aggregate](
	store portsrepo.EventStore,
	snapshots portsrepo.SnapshotStore,
	publisher portsrepo.EventPublisher,
	invalidator portsrepo.CacheInvalidator,
	newAggregate func() T,
	decode EventDecoder,
) *Repository[T] {
	return &Repository[T]{
		store:            store,
		snapshots:        snapshots,
		publisher:        publisher,
		invalidator:      invalidator,
		newAggregate:     newAggregate,
		decode:           decode,
		snapshotInterval: DefaultSnapshotInterval,
	}
}

// WithSnapshotInterval overrides the snapshot cadence.
func (r *Repository[T]) WithSnapshotInterval(n int64) *Repository[T] {
	if n > 0 {
		r.snapshotInterval = n
	}
	return r
}

// StreamID names the stream deterministically from aggregate type and id.
func StreamID(aggregateType, aggregateID string) string {
	return aggregateType + "-" + aggregateID
}

// Save appends the aggregate's uncommitted events to its stream under the
// expected-version check, publishes them, invalidates the read-model cache
// key and clears the buffer. A version conflict surfaces as
// apperrors.ErrVersionConflict; the aggregate is left untouched so the caller
// can reload and retry.
func (r *Repository[T]) Save(ctx context.Context, agg T) error {
	events := agg.UncommittedEvents()
	if len(events) == 0 {
		return nil
	}
	logger := logging.FromCtx(ctx)

	// The expected version is the stream position before the first
	// uncommitted event was applied.
	expectedVersion := agg.CurrentVersion() - int64(len(events))
	streamID := StreamID(agg.AggregateType(), agg.AggregateID())

	envelopes := make([]domain.Envelope, len(events))
	for i, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", event.EventType(), err)
		}
		envelopes[i] = domain.Envelope{
			EventID:       uuid.NewString(),
			AggregateID:   agg.AggregateID(),
			AggregateType: agg.AggregateType(),
			EventType:     event.EventType(),
			Version:       expectedVersion + int64(i) + 1,
			TenantID:      agg.TenantID(),
			ActorID:       event.Meta().ActorID,
			OccurredAt:    event.Meta().OccurredAt,
			Payload:       payload,
		}
	}

	if err := r.store.AppendToStream(ctx, streamID, expectedVersion, envelopes); err != nil {
		return err
	}
	agg.MarkCommitted()

	// Append is committed; publication and invalidation failures degrade to
	// log lines rather than failing the command.
	if r.publisher != nil {
		for _, envelope := range envelopes {
			if err := r.publisher.Publish(ctx, envelope); err != nil {
				logger.Error("failed to publish event",
					slog.String("event_id", envelope.EventID),
					slog.String("event_type", envelope.EventType),
					slog.String("stream_id", streamID),
					slog.String("error", err.Error()))
			}
		}
	}
	if r.invalidator != nil {
		if err := r.invalidator.Invalidate(ctx, streamID); err != nil {
			logger.Warn("cache invalidation failed",
				slog.String("key", streamID),
				slog.String("error", err.Error()))
		}
	}

	if r.crossedSnapshotBoundary(expectedVersion, agg.CurrentVersion()) {
		r.captureSnapshot(ctx, agg)
	}
	return nil
}

// FindByID rehydrates the aggregate from the latest usable snapshot plus the
// events appended after it. An empty stream is apperrors.ErrNotFound.
func (r *Repository[T]) FindByID(ctx context.Context, aggregateID string) (T, error) {
	agg := r.newAggregate()
	streamID := StreamID(agg.AggregateType(), aggregateID)
	logger := logging.FromCtx(ctx)

	var afterVersion int64
	if r.snapshots != nil {
		snapshot, err := r.snapshots.FindLatestSnapshot(ctx, agg.AggregateType(), aggregateID)
		if err != nil {
			logger.Warn("snapshot lookup failed, falling back to full replay",
				slog.String("stream_id", streamID),
				slog.String("error", err.Error()))
		} else if snapshot != nil {
			if err := agg.RestoreSnapshot(snapshot.Version, snapshot.State); err != nil {
				// Snapshots are an optimization; a bad one must not break loads.
				logger.Warn("snapshot restore failed, falling back to full replay",
					slog.String("stream_id", streamID),
					slog.Int64("snapshot_version", snapshot.Version),
					slog.String("error", err.Error()))
				agg = r.newAggregate()
			} else {
				afterVersion = snapshot.Version
			}
		}
	}

	envelopes, err := r.store.ReadStream(ctx, streamID, afterVersion)
	if err != nil {
		return agg, fmt.Errorf("reading stream %s: %w", streamID, err)
	}
	if len(envelopes) == 0 && afterVersion == 0 {
		return agg, fmt.Errorf("%w: stream %s", apperrors.ErrNotFound, streamID)
	}

	events := make([]domain.Event, len(envelopes))
	for i, envelope := range envelopes {
		event, err := r.decode(envelope.EventType, envelope.Payload)
		if err != nil {
			return agg, fmt.Errorf("decoding %s at version %d of %s: %w", envelope.EventType, envelope.Version, streamID, err)
		}
		events[i] = event
	}
	if err := agg.ApplyHistory(events); err != nil {
		return agg, fmt.Errorf("replaying stream %s: %w", streamID, err)
	}
	return agg, nil
}

func (r *Repository[T]) crossedSnapshotBoundary(before, after int64) bool {
	return before/r.snapshotInterval != after/r.snapshotInterval
}

// captureSnapshot persists a snapshot as a fire-and-forget side operation.
// Failures only cost future replay time.
func (r *Repository[T]) captureSnapshot(ctx context.Context, agg T) {
	if r.snapshots == nil {
		return
	}
	logger := logging.FromCtx(ctx)
	state, err := agg.SnapshotState()
	if err != nil {
		logger.Warn("snapshot serialization failed",
			slog.String("aggregate_id", agg.AggregateID()),
			slog.String("error", err.Error()))
		return
	}
	snapshot := domain.Snapshot{
		AggregateID:   agg.AggregateID(),
		AggregateType: agg.AggregateType(),
		Version:       agg.CurrentVersion(),
		State:         state,
		CreatedAt:     time.Now().UTC(),
	}
	// Detached from the request context: the save already succeeded and the
	// caller must not wait on snapshotting.
	go func() {
		bg := logging.WithLogger(context.WithoutCancel(ctx), logger)
		if err := r.snapshots.SaveSnapshot(bg, snapshot); err != nil {
			logger.Warn("snapshot save failed",
				slog.String("aggregate_id", snapshot.AggregateID),
				slog.Int64("version", snapshot.Version),
				slog.String("error", err.Error()))
		}
	}()
}
