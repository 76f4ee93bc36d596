package repositories

import (
	"context"

	"github.com/vextrus/ledger-core/internal/core/domain"
)

// EventStore is the append-only log, one stream per aggregate instance.
// It is the only shared mutable resource in the core.
type EventStore interface {
	// AppendToStream atomically appends the envelopes to the stream,
	// rejecting with apperrors.ErrVersionConflict when the stream's current
	// version differs from expectedVersion. Appends are all-or-nothing.
	AppendToStream(ctx context.Context, streamID string, expectedVersion int64, envelopes []domain.Envelope) error

	// ReadStream returns envelopes with version > afterVersion, in stream order.
	ReadStream(ctx context.Context, streamID string, afterVersion int64) ([]domain.Envelope, error)

	// StreamVersion returns the stream's current version (0 for an empty
	// stream). Used to resolve ambiguous append timeouts before retrying.
	StreamVersion(ctx context.Context, streamID string) (int64, error)
}

// SnapshotStore holds periodic aggregate snapshots. Snapshots bound replay
// cost only; losing them must never change reconstructed state.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error
	FindLatestSnapshot(ctx context.Context, aggregateType, aggregateID string) (*domain.Snapshot, error)
}

// EventPublisher is the downstream publish sink, at-least-once delivery.
// Projection and cache consumers deduplicate by event ID.
type EventPublisher interface {
	Publish(ctx context.Context, envelope domain.Envelope) error
}

// CacheInvalidator is the best-effort, fire-and-forget invalidation sink for
// the external read-model cache.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, key string) error
}
