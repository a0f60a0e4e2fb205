package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"PriceTrust/internal/domain/models"
	drepo "PriceTrust/internal/domain/repository"
	phttp "PriceTrust/pkg/http"
	"PriceTrust/pkg/util"

	"github.com/shopspring/decimal"
)

// YahooAdapter fetches daily bars from the public chart API.
type YahooAdapter struct {
	name    string
	baseURL string
	client  *phttp.Client
}

// NewYahoo creates a chart-API-backed SourceAdapter.
func NewYahoo(baseURL string, client *phttp.Client) drepo.SourceAdapter {
	return &YahooAdapter{name: "yahoo", baseURL: baseURL, client: client}
}

func (a *YahooAdapter) Name() string { return a.name }

type yahooQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yahooResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []yahooQuote `json:"quote"`
	} `json:"indicators"`
}

type yahooResponse struct {
	Chart struct {
		Result []yahooResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetch returns daily rows within [from, to], oldest first. Bars with
// null fields (halted or partially reported days) are skipped.
func (a *YahooAdapter) Fetch(ctx context.Context, id string, from, to time.Time) ([]models.PriceRow, error) {
	resp, err := a.client.SendRequest(ctx, &phttp.RequestOptions{
		Method: "GET",
		URL:    fmt.Sprintf("%s/v8/finance/chart/%s", a.baseURL, id),
		QueryParams: map[string][]string{
			"period1":  {strconv.FormatInt(from.Unix(), 10)},
			"period2":  {strconv.FormatInt(to.AddDate(0, 0, 1).Unix(), 10)},
			"interval": {"1d"},
		},
	})
	if err != nil {
		return nil, models.NewAdapterError(a.name, models.AdapterUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		// Unknown ticker. Treated as no data, not a transport failure.
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, models.NewAdapterError(a.name, models.AdapterUnavailable,
			fmt.Errorf("status %d", resp.StatusCode))
	}

	var body yahooResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, models.NewAdapterError(a.name, models.AdapterDecode, err)
	}
	if body.Chart.Error != nil {
		return nil, models.NewAdapterError(a.name, models.AdapterDecode,
			fmt.Errorf("chart error %s: %s", body.Chart.Error.Code, body.Chart.Error.Description))
	}
	if len(body.Chart.Result) == 0 {
		return nil, nil
	}

	result := body.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, nil
	}
	quote := result.Indicators.Quote[0]

	rows := make([]models.PriceRow, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			break
		}
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}
		day := util.DateOnly(time.Unix(ts, 0).UTC())
		if day.Before(from) || day.After(to) {
			continue
		}
		rows = append(rows, models.PriceRow{
			TradeDate: day,
			Open:      decimal.NewFromFloat(*quote.Open[i]),
			High:      decimal.NewFromFloat(*quote.High[i]),
			Low:       decimal.NewFromFloat(*quote.Low[i]),
			Close:     decimal.NewFromFloat(*quote.Close[i]),
			Volume:    *quote.Volume[i],
		})
	}
	return rows, nil
}
