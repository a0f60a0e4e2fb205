package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRow is a single daily OHLCV bar as returned by a source adapter.
// Rows are compared, never mutated.
type PriceRow struct {
	TradeDate time.Time       `json:"trade_date"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
	Volume    int64           `json:"volume"`
}

// CrossCheckResult records an advisory comparison of the accepted row
// against a secondary provider. It is provenance, never a veto.
type CrossCheckResult struct {
	Match        bool             `json:"match"`
	CloseDiffPct *float64         `json:"close_diff_pct,omitempty"`
	Reason       string           `json:"reason,omitempty"`
	ComparedRow  *PriceRow        `json:"compared_row,omitempty"`
}

// PriceProof is the coordinator's output contract. A failed proof is
// still a fully formed object: Warnings explain why no row was accepted.
//
// Invariants: Success == (Row != nil); TradeDate <= AsOfDate whenever set;
// Warnings accumulates every non-fatal anomaly across all attempted
// providers, in call order, and survives eventual success.
type PriceProof struct {
	Success      bool                        `json:"success"`
	Source       string                      `json:"source"`
	Symbol       CanonicalSymbol             `json:"symbol"`
	AsOfDate     time.Time                   `json:"as_of_date"`
	TradeDate    *time.Time                  `json:"trade_date,omitempty"`
	Row          *PriceRow                   `json:"row,omitempty"`
	Warnings     []string                    `json:"warnings"`
	CrossChecks  map[string]CrossCheckResult `json:"cross_checks,omitempty"`
	FallbackUsed bool                        `json:"fallback_used"`
}

// SourceNone is the Source value of an exhausted proof.
const SourceNone = "none"
