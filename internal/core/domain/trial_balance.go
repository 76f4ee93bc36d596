package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of a ledger account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// NormalBalance returns the side an account of this type normally carries.
// DEBIT for assets and expenses, CREDIT for liabilities, equity and revenue.
func (t AccountType) NormalBalance() EntryDirection {
	switch t {
	case Asset, Expense:
		return Debit
	default:
		return Credit
	}
}

// TrialBalanceRow is one account's debit/credit totals as currently persisted
// by the ledger projections, used as verifier input.
type TrialBalanceRow struct {
	AccountID    string          `json:"accountID"`
	AccountName  string          `json:"accountName"`
	AccountType  AccountType     `json:"accountType"`
	CurrencyCode string          `json:"currencyCode"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
}

// TrialBalanceLine aggregates debit and credit totals for one account type.
type TrialBalanceLine struct {
	AccountType AccountType     `json:"accountType"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

// TrialBalanceReport is the verifier's structured finding. An unbalanced
// report signals a data-integrity problem elsewhere; it is reported, not
// raised as an error.
type TrialBalanceReport struct {
	TenantID     string             `json:"tenantID"`
	AsOf         time.Time          `json:"asOf"`
	PeriodStart  time.Time          `json:"periodStart"` // fiscal year start (July 1)
	PeriodEnd    time.Time          `json:"periodEnd"`   // fiscal year end (June 30)
	CurrencyCode string             `json:"currencyCode"`
	Lines        []TrialBalanceLine `json:"lines"`
	TotalDebit   decimal.Decimal    `json:"totalDebit"`
	TotalCredit  decimal.Decimal    `json:"totalCredit"`
	Difference   decimal.Decimal    `json:"difference"` // |debit - credit|
	Balanced     bool               `json:"balanced"`
}
