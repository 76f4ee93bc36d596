package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vextrus/ledger-core/internal/core/domain"
	portsrepo "github.com/vextrus/ledger-core/internal/core/ports/repositories"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// NewReportingRepository creates a new reporting repository
func NewReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// GetTrialBalanceData retrieves per-account debit and credit totals as of a
// specific date.
func (r *reportingRepository) GetTrialBalanceData(ctx context.Context, tenantID string, asOf time.Time) ([]domain.TrialBalanceRow, error) {
	query := `
		SELECT
			a.account_id,
			a.name AS account_name,
			a.account_type,
			a.currency_code,
			SUM(CASE WHEN e.direction = 'DEBIT' THEN e.amount ELSE 0 END) AS total_debit,
			SUM(CASE WHEN e.direction = 'CREDIT' THEN e.amount ELSE 0 END) AS total_credit
		FROM account_entries e
		JOIN accounts a ON e.account_id = a.account_id
		WHERE e.entry_date <= $1
			AND a.tenant_id = $2
		GROUP BY a.account_id, a.name, a.account_type, a.currency_code
		ORDER BY a.account_id
	`

	rows, err := r.Pool.Query(ctx, query, asOf, tenantID)
	if err != nil {
		return nil, fmt.Errorf("error querying trial balance data: %w", err)
	}
	defer rows.Close()

	var result []domain.TrialBalanceRow
	for rows.Next() {
		var row domain.TrialBalanceRow
		var accountType string

		if err := rows.Scan(
			&row.AccountID,
			&row.AccountName,
			&accountType,
			&row.CurrencyCode,
			&row.Debit,
			&row.Credit,
		); err != nil {
			return nil, fmt.Errorf("error scanning trial balance row: %w", err)
		}

		row.AccountType = domain.AccountType(accountType)
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trial balance rows: %w", err)
	}

	if len(result) == 0 {
		// Return empty slice instead of nil
		return []domain.TrialBalanceRow{}, nil
	}

	return result, nil
}
