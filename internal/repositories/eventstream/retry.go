package eventstream

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vextrus/ledger-core/internal/apperrors"
	"github.com/vextrus/ledger-core/internal/platform/logging"
)

// MaxConflictAttempts bounds reload-and-retry loops around optimistic
// concurrency conflicts.
const MaxConflictAttempts = 3

// WithConflictRetry runs fn, retrying only on apperrors.ErrVersionConflict.
// fn must reload the aggregate itself; the repository never mutates caller
// state on conflict. After the attempts are exhausted the conflict error is
// returned unchanged.
func WithConflictRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= MaxConflictAttempts; attempt++ {
		err = fn(ctx)
		if err == nil || !errors.Is(err, apperrors.ErrVersionConflict) {
			return err
		}
		if attempt < MaxConflictAttempts {
			logging.FromCtx(ctx).Debug("version conflict, retrying",
				slog.Int("attempt", attempt))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}
