package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vextrus/ledger-core/internal/apperrors"
	"github.com/vextrus/ledger-core/internal/core/domain"
	portsrepo "github.com/vextrus/ledger-core/internal/core/ports/repositories"
)

const pgUniqueViolation = "23505"

// PgxEventStore persists event streams in the events table. Optimistic
// concurrency rests on the (stream_id, version) primary key: a concurrent
// writer racing past the expected-version check loses on the unique
// constraint instead.
type PgxEventStore struct {
	BaseRepository
}

// NewPgxEventStore creates an event store backed by the given pool.
func NewPgxEventStore(pool *pgxpool.Pool) *PgxEventStore {
	return &PgxEventStore{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.EventStore = (*PgxEventStore)(nil)

// AppendToStream appends envelopes to the stream if its head is still at
// expectedVersion. Returns apperrors.ErrVersionConflict when another writer
// got there first.
func (r *PgxEventStore) AppendToStream(ctx context.Context, streamID string, expectedVersion int64, envelopes []domain.Envelope) error {
	if len(envelopes) == 0 {
		return nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	var currentVersion int64
	err = tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM events WHERE stream_id = $1`,
		streamID,
	).Scan(&currentVersion)
	if err != nil {
		return apperrors.NewAppError(500, "failed to read stream head "+streamID, err)
	}
	if currentVersion != expectedVersion {
		return fmt.Errorf("%w: stream %s at version %d, expected %d",
			apperrors.ErrVersionConflict, streamID, currentVersion, expectedVersion)
	}

	batch := &pgx.Batch{}
	insertQuery := `
		INSERT INTO events (
			event_id, stream_id, aggregate_id, aggregate_type, event_type,
			version, tenant_id, actor_id, occurred_at, payload, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	recordedAt := time.Now().UTC()
	for _, envelope := range envelopes {
		batch.Queue(insertQuery,
			envelope.EventID,
			streamID,
			envelope.AggregateID,
			envelope.AggregateType,
			envelope.EventType,
			envelope.Version,
			envelope.TenantID,
			envelope.ActorID,
			envelope.OccurredAt,
			envelope.Payload,
			recordedAt,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range envelopes {
		if _, err := results.Exec(); err != nil {
			results.Close()
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
				return fmt.Errorf("%w: concurrent append to stream %s", apperrors.ErrVersionConflict, streamID)
			}
			return apperrors.NewAppError(500, "failed to append to stream "+streamID, err)
		}
	}
	if err := results.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to close batch for stream "+streamID, err)
	}

	return r.Commit(ctx, tx)
}

// ReadStream returns the stream's envelopes with version greater than
// afterVersion, in version order. An unknown stream reads as empty.
func (r *PgxEventStore) ReadStream(ctx context.Context, streamID string, afterVersion int64) ([]domain.Envelope, error) {
	query := `
		SELECT event_id, aggregate_id, aggregate_type, event_type,
		       version, tenant_id, actor_id, occurred_at, payload
		FROM events
		WHERE stream_id = $1 AND version > $2
		ORDER BY version ASC;
	`
	rows, err := r.Pool.Query(ctx, query, streamID, afterVersion)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to read stream "+streamID, err)
	}
	defer rows.Close()

	var envelopes []domain.Envelope
	for rows.Next() {
		var envelope domain.Envelope
		err := rows.Scan(
			&envelope.EventID,
			&envelope.AggregateID,
			&envelope.AggregateType,
			&envelope.EventType,
			&envelope.Version,
			&envelope.TenantID,
			&envelope.ActorID,
			&envelope.OccurredAt,
			&envelope.Payload,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan event row", err)
		}
		envelopes = append(envelopes, envelope)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating stream "+streamID, err)
	}
	return envelopes, nil
}

// StreamVersion returns the stream's head version, 0 for an unknown stream.
func (r *PgxEventStore) StreamVersion(ctx context.Context, streamID string) (int64, error) {
	var version int64
	err := r.Pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(version), 0) FROM events WHERE stream_id = $1`,
		streamID,
	).Scan(&version)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to read stream version "+streamID, err)
	}
	return version, nil
}
