package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vextrus/ledger-core/internal/apperrors"
	portsrepo "github.com/vextrus/ledger-core/internal/core/ports/repositories"
)

// sequenceRepository hands out gapless per-tenant counters for document
// numbering.
type sequenceRepository struct {
	BaseRepository
}

// NewSequenceRepository creates a sequence repository backed by the given pool.
func NewSequenceRepository(pool *pgxpool.Pool) portsrepo.SequenceRepository {
	return &sequenceRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Next atomically increments and returns the named counter for the tenant,
// starting at 1 for a counter never seen before.
func (r *sequenceRepository) Next(ctx context.Context, tenantID, name string) (int64, error) {
	query := `
		INSERT INTO sequences (tenant_id, name, current_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, name) DO UPDATE
		SET current_value = sequences.current_value + 1
		RETURNING current_value;
	`
	var value int64
	if err := r.Pool.QueryRow(ctx, query, tenantID, name).Scan(&value); err != nil {
		return 0, apperrors.NewAppError(500, "failed to advance sequence "+name, err)
	}
	return value, nil
}
