package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vextrus/ledger-core/internal/core/domain"
)

func TestPaymentCreated_SerializationPreservesMethod(t *testing.T) {
	event := domain.PaymentCreated{
		PaymentID:     "pay-1",
		TenantID:      "tenant-1",
		PaymentNumber: "PAY-2024-000042",
		InvoiceID:     "inv-1",
		Amount:        bdt("10000"),
		Method:        domain.BankTransfer{BankName: "BRAC Bank", AccountNumber: "1510234567"},
		Reference:     "REF-001",
		PaymentDate:   testTime,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)
	// the kind tag must be on the wire so old events replay into the right variant
	assert.Contains(t, string(data), `"kind":"BANK_TRANSFER"`)

	var decoded domain.PaymentCreated
	require.NoError(t, json.Unmarshal(data, &decoded))

	transfer, ok := decoded.Method.(domain.BankTransfer)
	require.True(t, ok, "expected BankTransfer, got %T", decoded.Method)
	assert.Equal(t, "BRAC Bank", transfer.BankName)
	assert.Equal(t, "1510234567", transfer.AccountNumber)
	assert.True(t, decoded.Amount.Equal(event.Amount))
}

func TestPaymentCreated_SerializationMobileWallet(t *testing.T) {
	event := domain.PaymentCreated{
		PaymentID:   "pay-2",
		TenantID:    "tenant-1",
		InvoiceID:   "inv-1",
		Amount:      bdt("2500"),
		Method:      domain.MobileWallet{Provider: domain.WalletNagad, WalletNumber: "01800000000"},
		PaymentDate: testTime,
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded domain.PaymentCreated
	require.NoError(t, json.Unmarshal(data, &decoded))

	wallet, ok := decoded.Method.(domain.MobileWallet)
	require.True(t, ok, "expected MobileWallet, got %T", decoded.Method)
	assert.Equal(t, domain.WalletNagad, wallet.Provider)
	assert.Equal(t, "01800000000", wallet.WalletNumber)
}

func TestUnmarshalUnknownMethodKind(t *testing.T) {
	payload := []byte(`{"paymentId":"pay-1","amount":{"amount":"1","currencyCode":"BDT"},"method":{"kind":"BARTER","data":{}},"paymentDate":"2024-10-15T12:00:00Z"}`)
	var decoded domain.PaymentCreated
	assert.Error(t, json.Unmarshal(payload, &decoded))
}
