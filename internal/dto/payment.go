package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vextrus/ledger-core/internal/apperrors"
	"github.com/vextrus/ledger-core/internal/core/domain"
)

// PaymentMethodRequest is the flat wire form of the payment method sum type.
// Only the fields for the named kind are read.
type PaymentMethodRequest struct {
	Kind           string `json:"kind"`
	BankName       string `json:"bankName,omitempty"`
	AccountNumber  string `json:"accountNumber,omitempty"`
	CheckNumber    string `json:"checkNumber,omitempty"`
	WalletProvider string `json:"walletProvider,omitempty"`
	WalletNumber   string `json:"walletNumber,omitempty"`
	CardNetwork    string `json:"cardNetwork,omitempty"`
	CardLastFour   string `json:"cardLastFour,omitempty"`
	Portal         string `json:"portal,omitempty"`
}

// ToDomain converts the request into the domain sum type.
func (r PaymentMethodRequest) ToDomain() (domain.PaymentMethod, error) {
	switch domain.PaymentMethodKind(r.Kind) {
	case domain.MethodCash:
		return domain.Cash{}, nil
	case domain.MethodBankTransfer:
		return domain.BankTransfer{BankName: r.BankName, AccountNumber: r.AccountNumber}, nil
	case domain.MethodCheck:
		return domain.Check{CheckNumber: r.CheckNumber, BankName: r.BankName}, nil
	case domain.MethodMobileWallet:
		return domain.MobileWallet{Provider: domain.MobileWalletProvider(r.WalletProvider), WalletNumber: r.WalletNumber}, nil
	case domain.MethodCard:
		return domain.Card{Network: r.CardNetwork, LastFour: r.CardLastFour}, nil
	case domain.MethodOnlineBanking:
		return domain.OnlineBanking{Portal: r.Portal}, nil
	default:
		return nil, fmt.Errorf("%w: unknown payment method kind %q", apperrors.ErrValidation, r.Kind)
	}
}

// CreatePaymentRequest is the command payload for creating a payment.
type CreatePaymentRequest struct {
	InvoiceID    string               `json:"invoiceId"`
	Amount       decimal.Decimal      `json:"amount"`
	CurrencyCode string               `json:"currencyCode"`
	Method       PaymentMethodRequest `json:"method"`
	Reference    string               `json:"reference,omitempty"`
	PaymentDate  time.Time            `json:"paymentDate"`
}

// CompletePaymentRequest settles a pending payment.
type CompletePaymentRequest struct {
	TransactionReference string `json:"transactionReference,omitempty"`
}

// FailPaymentRequest marks a payment as failed.
type FailPaymentRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ReversePaymentRequest reverses a settled payment.
type ReversePaymentRequest struct {
	Reason string `json:"reason,omitempty"`
}

// PaymentResponse is the read shape returned to the command dispatch layer.
type PaymentResponse struct {
	PaymentID         string               `json:"paymentId"`
	PaymentNumber     string               `json:"paymentNumber"`
	InvoiceID         string               `json:"invoiceId"`
	Amount            decimal.Decimal      `json:"amount"`
	CurrencyCode      string               `json:"currencyCode"`
	Status            domain.PaymentStatus `json:"status"`
	Reference         string               `json:"reference,omitempty"`
	PaymentDate       time.Time            `json:"paymentDate"`
	BankTransactionID string               `json:"bankTransactionId,omitempty"`
	ReconciledAt      *time.Time           `json:"reconciledAt,omitempty"`
	Version           int64                `json:"version"`
}

// ToPaymentResponse maps the aggregate to its response shape.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:         p.AggregateID(),
		PaymentNumber:     p.PaymentNumber(),
		InvoiceID:         p.InvoiceID(),
		Amount:            p.Amount().Amount,
		CurrencyCode:      p.Amount().CurrencyCode,
		Status:            p.Status(),
		Reference:         p.Reference(),
		PaymentDate:       p.PaymentDate(),
		BankTransactionID: p.BankTransactionID(),
		ReconciledAt:      p.ReconciledAt(),
		Version:           p.CurrentVersion(),
	}
}
