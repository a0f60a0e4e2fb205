package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"PriceTrust/internal/domain/models"
	"PriceTrust/internal/service/lifecycle"
	"PriceTrust/internal/service/symbol"
	"PriceTrust/internal/usecase"
	xcache "PriceTrust/pkg/cache"
	xlogger "PriceTrust/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAdapter struct {
	name  string
	rows  []models.PriceRow
	calls int
}

func (a *staticAdapter) Name() string { return a.name }

func (a *staticAdapter) Fetch(_ context.Context, _ string, from, to time.Time) ([]models.PriceRow, error) {
	a.calls++
	var out []models.PriceRow
	for _, row := range a.rows {
		if !row.TradeDate.Before(from) && !row.TradeDate.After(to) {
			out = append(out, row)
		}
	}
	return out, nil
}

type silentMetrics struct{}

func (silentMetrics) RecordProviderAttempt(string)         {}
func (silentMetrics) RecordProviderError(string, string)   {}
func (silentMetrics) RecordBreakerState(string, string)    {}
func (silentMetrics) RecordCrossCheckMismatch(_, _ string) {}
func (silentMetrics) RecordVerifyLatency(float64)          {}

func newTestHandler(adapter *staticAdapter) (*PriceEchoHandler, *echo.Echo) {
	verifier := usecase.NewVerifier(
		[]usecase.ProviderEntry{{Adapter: adapter, IDKey: symbol.IDBare}},
		usecase.VerifierConfig{},
		silentMetrics{},
		xlogger.Nop(),
	)
	registry := lifecycle.NewRegistry(map[string]models.ToolLifecycleDescriptor{
		ToolPriceVerified: {
			Lifecycle:        models.LifecycleRealtime,
			TradingHoursTTLS: 300,
			AfterHoursMode:   models.AfterHoursUntilOpen,
			JitterPct:        10,
		},
	})
	h := NewPriceEchoHandler(
		xlogger.Nop(),
		verifier,
		xcache.NewMemoryCache(),
		lifecycle.NewCalculator(),
		registry,
		nil,
		nil,
	)
	e := echo.New()
	h.RegisterRoutes(e)
	return h, e
}

func doGET(e *echo.Echo, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	e.ServeHTTP(rec, req)
	return rec
}

func TestPriceEndpointReturnsProof(t *testing.T) {
	adapter := &staticAdapter{name: "vendor", rows: []models.PriceRow{{
		TradeDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Open:      decimal.NewFromInt(586),
		High:      decimal.NewFromInt(589),
		Low:       decimal.NewFromInt(583),
		Close:     decimal.NewFromInt(584),
		Volume:    25779886,
	}}}
	_, e := newTestHandler(adapter)

	rec := doGET(e, "/api/price?symbol=2330&date=2024-01-05")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status int               `json:"status"`
		Data   models.PriceProof `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, http.StatusOK, body.Status)
	assert.True(t, body.Data.Success)
	assert.Equal(t, "vendor", body.Data.Source)
	require.NotNil(t, body.Data.Row)
	assert.Equal(t, "584", body.Data.Row.Close.String())
}

func TestPriceEndpointServesSecondCallFromCache(t *testing.T) {
	adapter := &staticAdapter{name: "vendor", rows: []models.PriceRow{{
		TradeDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		Close:     decimal.NewFromInt(584),
	}}}
	_, e := newTestHandler(adapter)

	rec := doGET(e, "/api/price?symbol=2330&date=2024-01-05")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, adapter.calls)

	rec = doGET(e, "/api/price?symbol=2330&date=2024-01-05")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, adapter.calls, "second request must not hit the provider")
}

func TestPriceEndpointValidatesRequest(t *testing.T) {
	_, e := newTestHandler(&staticAdapter{name: "vendor"})

	rec := doGET(e, "/api/price?date=2024-01-05")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status int `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusBadRequest, body.Status)
}

func TestTTLEndpointUnknownToolGetsDefault(t *testing.T) {
	_, e := newTestHandler(&staticAdapter{name: "vendor"})

	rec := doGET(e, "/api/ttl?tool=mystery")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status int                `json:"status"`
		Data   models.TTLResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "mystery", body.Data.Tool)
	assert.Equal(t, string(models.LifecycleStatic), body.Data.Lifecycle)
	assert.Greater(t, body.Data.TTLSeconds, int64(0))
}

func TestHealthEndpoint(t *testing.T) {
	_, e := newTestHandler(&staticAdapter{name: "vendor"})

	rec := doGET(e, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status"`)
}
