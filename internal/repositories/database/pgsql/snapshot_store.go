package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vextrus/ledger-core/internal/apperrors"
	"github.com/vextrus/ledger-core/internal/core/domain"
	portsrepo "github.com/vextrus/ledger-core/internal/core/ports/repositories"
)

// PgxSnapshotStore keeps the latest snapshot per aggregate. Snapshots are an
// optimization over full replay, so writes upsert and reads tolerate absence.
type PgxSnapshotStore struct {
	BaseRepository
}

// NewPgxSnapshotStore creates a snapshot store backed by the given pool.
func NewPgxSnapshotStore(pool *pgxpool.Pool) *PgxSnapshotStore {
	return &PgxSnapshotStore{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SnapshotStore = (*PgxSnapshotStore)(nil)

// SaveSnapshot upserts the snapshot, keeping only the highest version seen.
func (r *PgxSnapshotStore) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	query := `
		INSERT INTO snapshots (aggregate_type, aggregate_id, version, state, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (aggregate_type, aggregate_id) DO UPDATE
		SET version = EXCLUDED.version, state = EXCLUDED.state, created_at = EXCLUDED.created_at
		WHERE snapshots.version < EXCLUDED.version;
	`
	_, err := r.Pool.Exec(ctx, query,
		snapshot.AggregateType,
		snapshot.AggregateID,
		snapshot.Version,
		snapshot.State,
		snapshot.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save snapshot for "+snapshot.AggregateID, err)
	}
	return nil
}

// FindLatestSnapshot returns the stored snapshot, or nil when none exists.
func (r *PgxSnapshotStore) FindLatestSnapshot(ctx context.Context, aggregateType, aggregateID string) (*domain.Snapshot, error) {
	query := `
		SELECT aggregate_type, aggregate_id, version, state, created_at
		FROM snapshots
		WHERE aggregate_type = $1 AND aggregate_id = $2;
	`
	var snapshot domain.Snapshot
	err := r.Pool.QueryRow(ctx, query, aggregateType, aggregateID).Scan(
		&snapshot.AggregateType,
		&snapshot.AggregateID,
		&snapshot.Version,
		&snapshot.State,
		&snapshot.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.NewAppError(500, "failed to find snapshot for "+aggregateID, err)
	}
	return &snapshot, nil
}
