package domain

import (
	"encoding/json"
	"fmt"
)

// PaymentMethodKind tags the concrete payment method variant.
type PaymentMethodKind string

const (
	MethodCash          PaymentMethodKind = "CASH"
	MethodBankTransfer  PaymentMethodKind = "BANK_TRANSFER"
	MethodCheck         PaymentMethodKind = "CHECK"
	MethodMobileWallet  PaymentMethodKind = "MOBILE_WALLET"
	MethodCard          PaymentMethodKind = "CARD"
	MethodOnlineBanking PaymentMethodKind = "ONLINE_BANKING"
)

// PaymentMethod is a closed sum type over the supported payment instruments.
// Variant-specific details live on the variant structs; there are no optional
// fields shared across methods.
type PaymentMethod interface {
	MethodKind() PaymentMethodKind
	isPaymentMethod()
}

// Cash is an over-the-counter cash payment.
type Cash struct{}

func (Cash) MethodKind() PaymentMethodKind { return MethodCash }
func (Cash) isPaymentMethod()              {}

// BankTransfer is a direct bank-to-bank transfer.
type BankTransfer struct {
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
}

func (BankTransfer) MethodKind() PaymentMethodKind { return MethodBankTransfer }
func (BankTransfer) isPaymentMethod()              {}

// Check is a paper check payment.
type Check struct {
	CheckNumber string `json:"checkNumber"`
	BankName    string `json:"bankName"`
}

func (Check) MethodKind() PaymentMethodKind { return MethodCheck }
func (Check) isPaymentMethod()              {}

// MobileWalletProvider identifies a mobile financial service operator.
type MobileWalletProvider string

const (
	WalletBkash  MobileWalletProvider = "BKASH"
	WalletNagad  MobileWalletProvider = "NAGAD"
	WalletRocket MobileWalletProvider = "ROCKET"
)

// MobileWallet is a mobile financial service payment (bKash, Nagad, Rocket).
type MobileWallet struct {
	Provider     MobileWalletProvider `json:"provider"`
	WalletNumber string               `json:"walletNumber"`
}

func (MobileWallet) MethodKind() PaymentMethodKind { return MethodMobileWallet }
func (MobileWallet) isPaymentMethod()              {}

// Card is a debit or credit card payment.
type Card struct {
	Network   string `json:"network"`
	LastFour  string `json:"lastFour"`
	AuthCode  string `json:"authCode,omitempty"`
}

func (Card) MethodKind() PaymentMethodKind { return MethodCard }
func (Card) isPaymentMethod()              {}

// OnlineBanking is an internet banking portal payment.
type OnlineBanking struct {
	Portal string `json:"portal"`
}

func (OnlineBanking) MethodKind() PaymentMethodKind { return MethodOnlineBanking }
func (OnlineBanking) isPaymentMethod()              {}

// methodEnvelope is the JSON wire form of a PaymentMethod: a kind tag plus
// the variant payload.
type methodEnvelope struct {
	Kind PaymentMethodKind `json:"kind"`
	Data json.RawMessage   `json:"data,omitempty"`
}

func marshalPaymentMethod(m PaymentMethod) (json.RawMessage, error) {
	if m == nil {
		return nil, fmt.Errorf("payment method is required")
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(methodEnvelope{Kind: m.MethodKind(), Data: data})
}

func unmarshalPaymentMethod(raw json.RawMessage) (PaymentMethod, error) {
	var env methodEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	switch env.Kind {
	case MethodCash:
		return Cash{}, nil
	case MethodBankTransfer:
		var m BankTransfer
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case MethodCheck:
		var m Check
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case MethodMobileWallet:
		var m MobileWallet
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case MethodCard:
		var m Card
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case MethodOnlineBanking:
		var m OnlineBanking
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown payment method kind %q", env.Kind)
	}
}
