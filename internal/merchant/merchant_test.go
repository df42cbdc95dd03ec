package merchant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finsight/bankstmt/internal/models"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name             string
		narration        string
		expectedMerchant string
		expectedMethod   models.PaymentMethod
	}{
		{
			name:             "UPI with VPA handle",
			narration:        "UPI/ZOMATO@okhdfc/402912345678/FOOD ORDER",
			expectedMerchant: "ZOMATO",
			expectedMethod:   models.MethodUPI,
		},
		{
			name:             "UPI with no merchant-like segment",
			narration:        "UPI/123456/78",
			expectedMerchant: "Unknown UPI",
			expectedMethod:   models.MethodUPI,
		},
		{
			name:             "NEFT transfer",
			narration:        "NEFT-HDFCN12345-ACME CORP PVT-SALARY",
			expectedMerchant: "HDFCN12345",
			expectedMethod:   models.MethodNEFT,
		},
		{
			name:             "IMPS via MMT prefix",
			narration:        "MMT/IMPS/402913579/RAMESH KUMAR",
			expectedMerchant: "RAMESH KUMAR",
			expectedMethod:   models.MethodIMPS,
		},
		{
			name:             "Bill payment",
			narration:        "BIL/000123/AIRTEL POSTPAID",
			expectedMerchant: "AIRTEL POSTPAID",
			expectedMethod:   models.MethodOther,
		},
		{
			name:             "Card via VIN prefix",
			narration:        "VIN/AMAZON IN/20240215",
			expectedMerchant: "AMAZON IN",
			expectedMethod:   models.MethodCard,
		},
		{
			name:             "ATM withdrawal",
			narration:        "ATM CASH WDL 402912 MUMBAI",
			expectedMerchant: "ATM CASH WDL 402912 MUMBAI",
			expectedMethod:   models.MethodATM,
		},
		{
			name:             "Cheque clearing",
			narration:        "CHQ PAID 000482",
			expectedMerchant: "CHQ PAID 000482",
			expectedMethod:   models.MethodCheque,
		},
		{
			name:             "Unrecognized channel",
			narration:        "INT PD 01-01-2024 TO 31-03-2024",
			expectedMerchant: "INT PD 01",
			expectedMethod:   models.MethodOther,
		},
		{
			name:             "Empty narration",
			narration:        "",
			expectedMerchant: "Unknown",
			expectedMethod:   models.MethodOther,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info := Extract(tc.narration)
			assert.Equal(t, tc.expectedMerchant, info.Merchant)
			assert.Equal(t, tc.expectedMethod, info.Method)
		})
	}
}

func TestExtractForCard(t *testing.T) {
	info := ExtractForCard("AMAZON PAY INDIA MUMBAI")
	assert.Equal(t, "AMAZON PAY INDIA MUMBAI", info.Merchant)
	assert.Equal(t, models.MethodCard, info.Method)

	info = ExtractForCard("1234")
	assert.Equal(t, "Unknown Merchant", info.Merchant)
	assert.Equal(t, models.MethodCard, info.Method)
}

func TestIsMerchantLike(t *testing.T) {
	tests := []struct {
		segment  string
		expected bool
	}{
		{"ZOMATO", true},
		{"RAMESH KUMAR", true},
		{"AB", false},          // too short
		{"402912345678", false}, // digits only
		{"UPI", false},          // noise word
		{"NEFT", false},
		{"", false},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, isMerchantLike(tc.segment), "segment %q", tc.segment)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ZOMATO", Normalize("  zomato  "))
	assert.Equal(t, "CAFE COFFEE DAY", Normalize("Cafe-Coffee_Day"))
	assert.Equal(t, "M&S RETAIL", Normalize("m&s retail"))
	assert.Equal(t, "PAY@ONCE", Normalize("pay@once"))
	assert.Equal(t, "", Normalize("  ---  "))
}

func TestHintKey(t *testing.T) {
	assert.Equal(t, "ZOMATO", HintKey("zomato"))
	assert.Equal(t, "MS RETAIL", HintKey("M&S Retail"))
	assert.Equal(t, HintKey("PAY@ONCE"), HintKey("PAYONCE"),
		"VPA leftovers must not split hint groups")
}
