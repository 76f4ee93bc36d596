package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vextrus/ledger-core/internal/core/domain"
	portsrepo "github.com/vextrus/ledger-core/internal/core/ports/repositories"
	portssvc "github.com/vextrus/ledger-core/internal/core/ports/services"
	"github.com/vextrus/ledger-core/internal/utils/accounting"
)

// lineOrder fixes the report's account type ordering to the conventional
// statement order.
var lineOrder = []domain.AccountType{
	domain.Asset,
	domain.Liability,
	domain.Equity,
	domain.Revenue,
	domain.Expense,
}

// TrialBalanceService verifies the accounting identity: total debits must
// equal total credits across every account, within rounding tolerance.
type TrialBalanceService struct {
	BaseService
	reporting portsrepo.ReportingRepository
}

// NewTrialBalanceService creates the verifier.
func NewTrialBalanceService(reporting portsrepo.ReportingRepository) *TrialBalanceService {
	return &TrialBalanceService{reporting: reporting}
}

var _ portssvc.TrialBalanceSvcFacade = (*TrialBalanceService)(nil)

// Verify builds the trial balance report for the tenant as of the given
// date. An out-of-balance ledger is a finding in the report, not an error;
// only data-access failures return one.
func (s *TrialBalanceService) Verify(ctx context.Context, tenantID string, asOf time.Time) (*domain.TrialBalanceReport, error) {
	rows, err := s.reporting.GetTrialBalanceData(ctx, tenantID, asOf)
	if err != nil {
		s.LogError(ctx, err, "failed to load trial balance data", slog.String("tenant_id", tenantID))
		return nil, err
	}

	byType := make(map[domain.AccountType]*domain.TrialBalanceLine)
	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	currencyCode := ""
	for _, row := range rows {
		if currencyCode == "" {
			currencyCode = row.CurrencyCode
		}
		line, ok := byType[row.AccountType]
		if !ok {
			line = &domain.TrialBalanceLine{AccountType: row.AccountType}
			byType[row.AccountType] = line
		}
		line.TotalDebit = line.TotalDebit.Add(row.Debit)
		line.TotalCredit = line.TotalCredit.Add(row.Credit)
		totalDebit = totalDebit.Add(row.Debit)
		totalCredit = totalCredit.Add(row.Credit)
	}

	lines := make([]domain.TrialBalanceLine, 0, len(byType))
	for _, accountType := range lineOrder {
		if line, ok := byType[accountType]; ok {
			lines = append(lines, *line)
		}
	}

	fy := accounting.FiscalYearOf(asOf)
	difference := totalDebit.Sub(totalCredit).Abs()
	report := &domain.TrialBalanceReport{
		TenantID:     tenantID,
		AsOf:         asOf,
		PeriodStart:  fy.Start,
		PeriodEnd:    fy.End,
		CurrencyCode: currencyCode,
		Lines:        lines,
		TotalDebit:   totalDebit,
		TotalCredit:  totalCredit,
		Difference:   difference,
		Balanced:     difference.LessThanOrEqual(accounting.BalanceTolerance),
	}

	if !report.Balanced {
		s.LogWarn(ctx, "trial balance out of balance",
			slog.String("tenant_id", tenantID),
			slog.String("fiscal_year", fy.Label()),
			slog.String("difference", difference.String()))
	}
	return report, nil
}
