package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryDirection indicates whether a statement entry debits or credits the
// bank account.
type EntryDirection string

const (
	Debit  EntryDirection = "DEBIT"
	Credit EntryDirection = "CREDIT"
)

// BankTransaction is a single externally reported statement line. Statement
// data is matching input only; this core never persists it.
type BankTransaction struct {
	BankTransactionID string          `json:"bankTransactionId"`
	Date              time.Time       `json:"date"`
	Amount            Money           `json:"amount"`
	Direction         EntryDirection  `json:"direction"`
	Reference         string          `json:"reference,omitempty"`
	Description       string          `json:"description,omitempty"`
	RunningBalance    decimal.Decimal `json:"runningBalance"`
}

// BankStatement is an ordered list of bank transactions for a period.
type BankStatement struct {
	BankName       string            `json:"bankName"`
	AccountNumber  string            `json:"accountNumber"`
	FromDate       time.Time         `json:"fromDate"`
	ToDate         time.Time         `json:"toDate"`
	OpeningBalance decimal.Decimal   `json:"openingBalance"`
	ClosingBalance decimal.Decimal   `json:"closingBalance"`
	Transactions   []BankTransaction `json:"transactions"`
}
