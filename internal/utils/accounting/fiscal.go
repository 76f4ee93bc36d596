package accounting

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceTolerance is the maximum |debit - credit| difference (in the ledger
// currency) a trial balance may carry from rounding and still be balanced.
var BalanceTolerance = decimal.New(1, -2) // 0.01

// FiscalYear is an accounting period running July 1 through June 30.
type FiscalYear struct {
	Start time.Time
	End   time.Time
}

// FiscalYearOf returns the fiscal year containing the given date.
// Dates in July through December belong to the year starting that July;
// January through June belong to the year started the previous July.
func FiscalYearOf(t time.Time) FiscalYear {
	startYear := t.Year()
	if t.Month() < time.July {
		startYear--
	}
	loc := t.Location()
	return FiscalYear{
		Start: time.Date(startYear, time.July, 1, 0, 0, 0, 0, loc),
		End:   time.Date(startYear+1, time.June, 30, 23, 59, 59, 0, loc),
	}
}

// Contains reports whether the date falls within the fiscal year.
func (fy FiscalYear) Contains(t time.Time) bool {
	return !t.Before(fy.Start) && !t.After(fy.End)
}

// Label returns the conventional "2024-25" style fiscal year label.
func (fy FiscalYear) Label() string {
	return fy.Start.Format("2006") + "-" + fy.End.Format("06")
}
