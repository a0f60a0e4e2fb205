package models

// Requests for the verification HTTP endpoints. Defined in domain for consistency and reuse.

type VerifiedPriceRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Date     string `query:"date" json:"date" validate:"omitempty,datetime=2006-01-02"`
	Lookback int    `query:"lookback" json:"lookback" default:"5" validate:"gte=1,lte=30"`
}

type TTLRequest struct {
	Tool string `query:"tool" json:"tool" validate:"required"`
	At   string `query:"at" json:"at" validate:"omitempty"`
}

// TTLResponse reports the computed freshness window for a tool.
type TTLResponse struct {
	Tool       string `json:"tool"`
	Lifecycle  string `json:"lifecycle"`
	TTLSeconds int64  `json:"ttl_seconds"`
}
