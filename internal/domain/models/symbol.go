package models

// Market identifies the market an instrument trades on.
type Market string

const (
	MarketTW    Market = "TW"
	MarketUS    Market = "US"
	MarketOther Market = "OTHER"
)

// Exchange identifies the listing venue within a market.
type Exchange string

const (
	ExchangePrimary Exchange = "primary"
	ExchangeOTC     Exchange = "otc"
	ExchangeUnknown Exchange = "unknown"
)

// CanonicalSymbol is the provider-agnostic identity of an instrument.
// It is derived once per lookup and never persisted.
type CanonicalSymbol struct {
	RawInput    string            `json:"raw_input"`
	ID          string            `json:"id"`
	Market      Market            `json:"market"`
	Exchange    Exchange          `json:"exchange"`
	ProviderIDs map[string]string `json:"provider_ids"`
}

// ProviderID returns the identifier registered for a named provider,
// falling back to the canonical ID when none was registered.
func (s CanonicalSymbol) ProviderID(provider string) string {
	if id, ok := s.ProviderIDs[provider]; ok {
		return id
	}
	return s.ID
}
