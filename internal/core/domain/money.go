package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrCurrencyMismatch indicates arithmetic between two Money values of
// different currencies.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money is an immutable amount in a specific currency.
// All monetary arithmetic in the core goes through this type; amounts are
// precise decimals, never floats.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"` // ISO 4217, e.g. "BDT"
}

// NewMoney creates a Money value. The currency code must be a three-letter
// ISO code.
func NewMoney(amount decimal.Decimal, currencyCode string) (Money, error) {
	if len(currencyCode) != 3 {
		return Money{}, fmt.Errorf("invalid currency code %q", currencyCode)
	}
	return Money{Amount: amount, CurrencyCode: currencyCode}, nil
}

// ZeroMoney returns a zero amount in the given currency.
func ZeroMoney(currencyCode string) Money {
	return Money{Amount: decimal.Zero, CurrencyCode: currencyCode}
}

// Add returns m + other. Both values must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if m.CurrencyCode != other.CurrencyCode {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.CurrencyCode, other.CurrencyCode)
	}
	return Money{Amount: m.Amount.Add(other.Amount), CurrencyCode: m.CurrencyCode}, nil
}

// Sub returns m - other. Both values must share a currency.
func (m Money) Sub(other Money) (Money, error) {
	if m.CurrencyCode != other.CurrencyCode {
		return Money{}, fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.CurrencyCode, other.CurrencyCode)
	}
	return Money{Amount: m.Amount.Sub(other.Amount), CurrencyCode: m.CurrencyCode}, nil
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// IsPositive reports whether the amount is above zero.
func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

// Equal reports whether both amount and currency are equal.
func (m Money) Equal(other Money) bool {
	return m.CurrencyCode == other.CurrencyCode && m.Amount.Equal(other.Amount)
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.CurrencyCode
}
