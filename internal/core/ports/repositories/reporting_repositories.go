package repositories

import (
	"context"
	"time"

	"github.com/vextrus/ledger-core/internal/core/domain"
)

// ReportingRepository reads the persisted per-account balances maintained by
// the ledger projections. The verifier consumes these rows directly; it never
// replays raw events.
type ReportingRepository interface {
	GetTrialBalanceData(ctx context.Context, tenantID string, asOf time.Time) ([]domain.TrialBalanceRow, error)
}

// SequenceRepository mints monotonically increasing numbers for
// human-readable document numbering. Implementations must be safe under
// concurrent instances; no process-local counters.
type SequenceRepository interface {
	Next(ctx context.Context, tenantID, name string) (int64, error)
}
