package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	phttp "PriceTrust/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTWSERecord(t *testing.T) {
	row, err := parseTWSERecord([]string{
		"113/01/05", "25,779,886", "15,116,815,836",
		"586.00", "589.00", "583.00", "584.00", "-4.00", "28,922",
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), row.TradeDate)
	assert.Equal(t, "586", row.Open.String())
	assert.Equal(t, "589", row.High.String())
	assert.Equal(t, "583", row.Low.String())
	assert.Equal(t, "584", row.Close.String())
	assert.Equal(t, int64(25779886), row.Volume)
}

func TestParseTWSERecordRejectsMissingClose(t *testing.T) {
	_, err := parseTWSERecord([]string{
		"113/01/05", "0", "0", "--", "--", "--", "--", "0.00", "0",
	})
	assert.Error(t, err)
}

func TestParseROCDate(t *testing.T) {
	day, err := parseROCDate("112/12/29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 29, 0, 0, 0, 0, time.UTC), day)

	_, err = parseROCDate("2024-01-05")
	assert.Error(t, err)
}

func TestYahooFetchDecodesChart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/2330.TW", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"chart": {
				"result": [{
					"timestamp": [1704412800, 1704672000],
					"indicators": {"quote": [{
						"open":   [585.0, null],
						"high":   [590.0, null],
						"low":    [584.0, null],
						"close":  [589.0, null],
						"volume": [21000000, null]
					}]}
				}],
				"error": null
			}
		}`))
	}))
	defer srv.Close()

	adapter := NewYahoo(srv.URL, phttp.NewClient(phttp.WithTimeout(2*time.Second)))
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	rows, err := adapter.Fetch(context.Background(), "2330.TW", from, to)
	require.NoError(t, err)

	// The second bar is all null and must be skipped.
	require.Len(t, rows, 1)
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), rows[0].TradeDate)
	assert.Equal(t, "589", rows[0].Close.String())
}

func TestVendorFetchClassifiesAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	adapter := NewVendor(srv.URL, "bad-key", phttp.NewClient(phttp.WithTimeout(2*time.Second)))
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := adapter.Fetch(context.Background(), "2330", from, from.AddDate(0, 0, 5))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth")
}
