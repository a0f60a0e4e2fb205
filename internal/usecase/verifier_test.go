package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"PriceTrust/internal/domain/models"
	"PriceTrust/internal/service/breaker"
	"PriceTrust/internal/service/symbol"
	"PriceTrust/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	name   string
	rows   []models.PriceRow
	err    error
	calls  int
	lastID string
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Fetch(_ context.Context, id string, from, to time.Time) ([]models.PriceRow, error) {
	f.calls++
	f.lastID = id
	if f.err != nil {
		return nil, f.err
	}
	var out []models.PriceRow
	for _, row := range f.rows {
		if row.TradeDate.Before(from) || row.TradeDate.After(to) {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordProviderAttempt(string)        {}
func (nopMetrics) RecordProviderError(string, string)  {}
func (nopMetrics) RecordBreakerState(string, string)   {}
func (nopMetrics) RecordCrossCheckMismatch(_, _ string) {}
func (nopMetrics) RecordVerifyLatency(float64)         {}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func bar(trade time.Time, close float64) models.PriceRow {
	px := decimal.NewFromFloat(close)
	return models.PriceRow{TradeDate: trade, Open: px, High: px, Low: px, Close: px, Volume: 1000}
}

func newVerifier(cfg VerifierConfig, entries ...ProviderEntry) *Verifier {
	return NewVerifier(entries, cfg, nopMetrics{}, logger.Nop())
}

func TestVerifiedPriceRejectsBadInput(t *testing.T) {
	v := newVerifier(VerifierConfig{}, ProviderEntry{Adapter: &fakeAdapter{name: "vendor"}, IDKey: symbol.IDBare})

	_, err := v.VerifiedPrice(context.Background(), "", day(2024, 1, 5), 5)
	assert.ErrorIs(t, err, ErrBadInput)

	_, err = v.VerifiedPrice(context.Background(), "2330", time.Time{}, 5)
	assert.ErrorIs(t, err, ErrBadInput)
}

func TestVerifiedPriceExactDate(t *testing.T) {
	friday := day(2024, 1, 5)
	vendor := &fakeAdapter{name: "vendor", rows: []models.PriceRow{bar(friday, 584)}}
	v := newVerifier(VerifierConfig{}, ProviderEntry{Adapter: vendor, IDKey: symbol.IDBare})

	proof, err := v.VerifiedPrice(context.Background(), "2330.TW", friday, 5)
	require.NoError(t, err)

	assert.True(t, proof.Success)
	assert.Equal(t, "vendor", proof.Source)
	require.NotNil(t, proof.Row)
	require.NotNil(t, proof.TradeDate)
	assert.Equal(t, friday, *proof.TradeDate)
	assert.False(t, proof.FallbackUsed)
	assert.Empty(t, proof.Warnings)
	assert.Equal(t, "2330", vendor.lastID)
}

func TestVerifiedPriceSaturdayFallsBackToFriday(t *testing.T) {
	friday := day(2024, 1, 5)
	saturday := day(2024, 1, 6)
	vendor := &fakeAdapter{name: "vendor", rows: []models.PriceRow{bar(friday, 584)}}
	v := newVerifier(VerifierConfig{}, ProviderEntry{Adapter: vendor, IDKey: symbol.IDBare})

	proof, err := v.VerifiedPrice(context.Background(), "2330", saturday, 5)
	require.NoError(t, err)

	assert.True(t, proof.Success)
	assert.True(t, proof.FallbackUsed)
	require.NotNil(t, proof.TradeDate)
	assert.Equal(t, friday, *proof.TradeDate)
	require.Len(t, proof.Warnings, 1)
	assert.Contains(t, proof.Warnings[0], "non-trading-day fallback")
	assert.Contains(t, proof.Warnings[0], "2024-01-05")
}

func TestVerifiedPriceWaterfallSecondProviderWins(t *testing.T) {
	asOf := day(2024, 1, 5)
	vendor := &fakeAdapter{name: "vendor", err: models.NewAdapterError("vendor", models.AdapterUnavailable, fmt.Errorf("status 503"))}
	twse := &fakeAdapter{name: "twse", rows: []models.PriceRow{bar(asOf, 584)}}
	v := newVerifier(VerifierConfig{},
		ProviderEntry{Adapter: vendor, IDKey: symbol.IDBare},
		ProviderEntry{Adapter: twse, IDKey: symbol.IDBare},
	)

	proof, err := v.VerifiedPrice(context.Background(), "2330", asOf, 5)
	require.NoError(t, err)

	assert.True(t, proof.Success)
	assert.Equal(t, "twse", proof.Source)
	require.NotEmpty(t, proof.Warnings)
	assert.Contains(t, proof.Warnings[0], "vendor")
}

func TestVerifiedPriceCrossCheckMismatchIsAdvisory(t *testing.T) {
	asOf := day(2024, 1, 5)
	vendor := &fakeAdapter{name: "vendor", rows: []models.PriceRow{bar(asOf, 100)}}
	yahoo := &fakeAdapter{name: "yahoo", rows: []models.PriceRow{bar(asOf, 101)}} // 1% off
	v := newVerifier(VerifierConfig{},
		ProviderEntry{Adapter: vendor, IDKey: symbol.IDBare},
		ProviderEntry{Adapter: yahoo, IDKey: symbol.IDYahoo},
	)

	proof, err := v.VerifiedPrice(context.Background(), "2330", asOf, 5)
	require.NoError(t, err)

	assert.True(t, proof.Success, "mismatch must not discard the accepted row")
	check, ok := proof.CrossChecks["yahoo"]
	require.True(t, ok)
	assert.False(t, check.Match)
	require.NotNil(t, check.CloseDiffPct)
	assert.InDelta(t, 0.01, *check.CloseDiffPct, 1e-9)
}

func TestVerifiedPriceCrossCheckWithinTolerance(t *testing.T) {
	asOf := day(2024, 1, 5)
	vendor := &fakeAdapter{name: "vendor", rows: []models.PriceRow{bar(asOf, 1000)}}
	yahoo := &fakeAdapter{name: "yahoo", rows: []models.PriceRow{bar(asOf, 1002)}} // 0.2% off
	v := newVerifier(VerifierConfig{},
		ProviderEntry{Adapter: vendor, IDKey: symbol.IDBare},
		ProviderEntry{Adapter: yahoo, IDKey: symbol.IDYahoo},
	)

	proof, err := v.VerifiedPrice(context.Background(), "2330", asOf, 5)
	require.NoError(t, err)

	check, ok := proof.CrossChecks["yahoo"]
	require.True(t, ok)
	assert.True(t, check.Match)
}

func TestVerifiedPriceCrossChecksAtMostOneProvider(t *testing.T) {
	asOf := day(2024, 1, 5)
	vendor := &fakeAdapter{name: "vendor", rows: []models.PriceRow{bar(asOf, 100)}}
	twse := &fakeAdapter{name: "twse", rows: []models.PriceRow{bar(asOf, 100)}}
	yahoo := &fakeAdapter{name: "yahoo", rows: []models.PriceRow{bar(asOf, 100)}}
	v := newVerifier(VerifierConfig{},
		ProviderEntry{Adapter: vendor, IDKey: symbol.IDBare},
		ProviderEntry{Adapter: twse, IDKey: symbol.IDBare},
		ProviderEntry{Adapter: yahoo, IDKey: symbol.IDYahoo},
	)

	proof, err := v.VerifiedPrice(context.Background(), "2330", asOf, 5)
	require.NoError(t, err)

	assert.Len(t, proof.CrossChecks, 1)
	assert.Contains(t, proof.CrossChecks, "twse")
	assert.Zero(t, yahoo.calls)
}

func TestVerifiedPriceAllSourcesExhausted(t *testing.T) {
	asOf := day(2024, 1, 5)
	vendor := &fakeAdapter{name: "vendor", err: models.NewAdapterError("vendor", models.AdapterUnavailable, fmt.Errorf("down"))}
	twse := &fakeAdapter{name: "twse"} // reachable, no rows anywhere
	v := newVerifier(VerifierConfig{},
		ProviderEntry{Adapter: vendor, IDKey: symbol.IDBare},
		ProviderEntry{Adapter: twse, IDKey: symbol.IDBare},
	)

	proof, err := v.VerifiedPrice(context.Background(), "2330", asOf, 5)
	require.NoError(t, err, "exhaustion is a failed proof, not an error")

	assert.False(t, proof.Success)
	assert.Equal(t, models.SourceNone, proof.Source)
	assert.Nil(t, proof.Row)
	assert.Nil(t, proof.TradeDate)
	assert.NotEmpty(t, proof.Warnings)
}

func TestVerifiedPriceWideWindowLastResort(t *testing.T) {
	asOf := day(2024, 6, 1)
	old := day(2024, 1, 5) // far outside the 5-day window
	vendor := &fakeAdapter{name: "vendor", rows: []models.PriceRow{bar(old, 584)}}
	v := newVerifier(VerifierConfig{}, ProviderEntry{Adapter: vendor, IDKey: symbol.IDBare})

	proof, err := v.VerifiedPrice(context.Background(), "2330", asOf, 5)
	require.NoError(t, err)

	assert.True(t, proof.Success)
	assert.True(t, proof.FallbackUsed)
	require.NotNil(t, proof.TradeDate)
	assert.Equal(t, old, *proof.TradeDate)

	joined := strings.Join(proof.Warnings, "\n")
	assert.Contains(t, joined, "wide-window fallback")
	assert.Contains(t, joined, "2024-01-05")
}

func TestVerifiedPriceSkipsOpenBreaker(t *testing.T) {
	asOf := day(2024, 1, 5)
	vendor := &fakeAdapter{name: "vendor", rows: []models.PriceRow{bar(asOf, 584)}}
	twse := &fakeAdapter{name: "twse", rows: []models.PriceRow{bar(asOf, 584)}}

	br := breaker.New(1, time.Hour)
	br.OnFailure() // trip it

	v := newVerifier(VerifierConfig{},
		ProviderEntry{Adapter: vendor, Breaker: br, IDKey: symbol.IDBare},
		ProviderEntry{Adapter: twse, IDKey: symbol.IDBare},
	)

	proof, err := v.VerifiedPrice(context.Background(), "2330", asOf, 5)
	require.NoError(t, err)

	assert.Zero(t, vendor.calls)
	assert.Equal(t, "twse", proof.Source)
	assert.Contains(t, proof.Warnings[0], "circuit open")
}

func TestVerifiedPriceWarningsSurviveSuccess(t *testing.T) {
	friday := day(2024, 1, 5)
	saturday := day(2024, 1, 6)
	vendor := &fakeAdapter{name: "vendor", err: models.NewAdapterError("vendor", models.AdapterAuth, fmt.Errorf("status 401"))}
	twse := &fakeAdapter{name: "twse", rows: []models.PriceRow{bar(friday, 584)}}
	v := newVerifier(VerifierConfig{},
		ProviderEntry{Adapter: vendor, IDKey: symbol.IDBare},
		ProviderEntry{Adapter: twse, IDKey: symbol.IDBare},
	)

	proof, err := v.VerifiedPrice(context.Background(), "2330", saturday, 5)
	require.NoError(t, err)

	assert.True(t, proof.Success)
	require.Len(t, proof.Warnings, 2)
	assert.Contains(t, proof.Warnings[0], "auth")
	assert.Contains(t, proof.Warnings[1], "non-trading-day fallback")
}

func TestVerifiedPriceDefaultLookbackApplied(t *testing.T) {
	asOf := day(2024, 1, 10)
	inWindow := day(2024, 1, 8)
	vendor := &fakeAdapter{name: "vendor", rows: []models.PriceRow{bar(inWindow, 584)}}
	v := newVerifier(VerifierConfig{LookbackDays: 3}, ProviderEntry{Adapter: vendor, IDKey: symbol.IDBare})

	proof, err := v.VerifiedPrice(context.Background(), "2330", asOf, 0)
	require.NoError(t, err)
	assert.True(t, proof.Success)
}
