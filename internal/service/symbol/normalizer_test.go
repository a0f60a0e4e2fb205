package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"PriceTrust/internal/domain/models"
)

func TestNormalize_BareNumericDefaultsToTaiwanPrimary(t *testing.T) {
	got := Normalize("2330")

	assert.Equal(t, "2330", got.ID)
	assert.Equal(t, models.MarketTW, got.Market)
	assert.Equal(t, models.ExchangePrimary, got.Exchange)
	assert.Equal(t, "2330.TW", got.ProviderIDs[IDYahoo])
	assert.Equal(t, "2330", got.ProviderIDs[IDBare])
}

func TestNormalize_TWOSuffix(t *testing.T) {
	got := Normalize("8069.TWO")

	assert.Equal(t, "8069", got.ID)
	assert.Equal(t, models.MarketTW, got.Market)
	assert.Equal(t, models.ExchangeOTC, got.Exchange)
	assert.Equal(t, "8069.TWO", got.ProviderIDs[IDYahoo])
}

func TestNormalize_PrefixAndSuffixFormsAgree(t *testing.T) {
	byPrefix := Normalize("TW:2330")
	bySuffix := Normalize("2330.TW")

	// Identical apart from the raw input they were derived from.
	byPrefix.RawInput = ""
	bySuffix.RawInput = ""
	assert.Equal(t, bySuffix, byPrefix)
}

func TestNormalize_PrefixVariants(t *testing.T) {
	cases := []struct {
		in string
		ex models.Exchange
	}{
		{"TSE:2330", models.ExchangePrimary},
		{"TWO:8069", models.ExchangeOTC},
		{"OTC:8069", models.ExchangeOTC},
	}
	for _, c := range cases {
		got := Normalize(c.in)
		assert.Equal(t, models.MarketTW, got.Market, c.in)
		assert.Equal(t, c.ex, got.Exchange, c.in)
	}
}

func TestNormalize_UnrecognizedFallsBackToUppercasedUS(t *testing.T) {
	got := Normalize("aapl")

	assert.Equal(t, "AAPL", got.ID)
	assert.Equal(t, models.MarketUS, got.Market)
	assert.Equal(t, "AAPL", got.ProviderIDs[IDYahoo])
}

func TestNormalize_NumericLengthBounds(t *testing.T) {
	// 2 digits and 7 digits fall outside the code range.
	assert.Equal(t, models.MarketUS, Normalize("12").Market)
	assert.Equal(t, models.MarketUS, Normalize("1234567").Market)
	assert.Equal(t, models.MarketTW, Normalize("123456").Market)
}

func TestNormalize_NeverFails(t *testing.T) {
	for _, in := range []string{"", "  ", "!!??", "TW:", ".TW"} {
		got := Normalize(in)
		assert.NotNil(t, got.ProviderIDs, "input %q", in)
		assert.Equal(t, in, got.RawInput)
	}
}
