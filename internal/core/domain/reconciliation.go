package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/vextrus/ledger-core/internal/apperrors"
)

// matchWindow is how far a statement transaction date may sit from the
// payment date and still be considered the same settlement.
const matchWindow = 3 * 24 * time.Hour

// MatchBankTransaction finds the statement transaction that settles the given
// payment. It is a pure function over its inputs: no I/O, no mutation.
//
// Candidates are transactions whose amount equals the payment amount in the
// same currency, and whose date falls within three days of the payment date
// or whose reference contains the payment reference. A single candidate wins
// outright. Among several, a candidate whose reference equals the payment
// reference exactly, or whose description mentions the payment number, is
// preferred; failing that the first candidate in statement order is taken.
// No candidate at all yields ErrNoMatch, a recoverable outcome routed to
// manual reconciliation.
func MatchBankTransaction(payment *Payment, statement BankStatement) (*BankTransaction, error) {
	if payment.Status() != PaymentStatusCompleted {
		return nil, fmt.Errorf("%w: payment %s is %s, only COMPLETED payments are matched",
			apperrors.ErrConflict, payment.AggregateID(), payment.Status())
	}

	reference := strings.TrimSpace(payment.Reference())
	var candidates []*BankTransaction
	for i := range statement.Transactions {
		txn := &statement.Transactions[i]
		if !txn.Amount.Equal(payment.Amount()) {
			continue
		}
		withinWindow := absDuration(txn.Date.Sub(payment.PaymentDate())) <= matchWindow
		referenceHit := reference != "" && strings.Contains(txn.Reference, reference)
		if withinWindow || referenceHit {
			candidates = append(candidates, txn)
		}
	}

	switch len(candidates) {
	case 0:
		return nil, fmt.Errorf("%w: payment %s for %s", apperrors.ErrNoMatch, payment.AggregateID(), payment.Amount())
	case 1:
		return candidates[0], nil
	}

	if reference != "" {
		for _, txn := range candidates {
			if txn.Reference == reference {
				return txn, nil
			}
		}
	}
	if payment.PaymentNumber() != "" {
		for _, txn := range candidates {
			if strings.Contains(txn.Description, payment.PaymentNumber()) {
				return txn, nil
			}
		}
	}
	// Ambiguous; take the first in statement order. Arbitrary but deterministic.
	return candidates[0], nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
