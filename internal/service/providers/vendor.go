package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"PriceTrust/internal/domain/models"
	drepo "PriceTrust/internal/domain/repository"
	phttp "PriceTrust/pkg/http"
	"PriceTrust/pkg/util"

	"github.com/shopspring/decimal"
)

// VendorAdapter fetches daily bars from the licensed vendor API.
type VendorAdapter struct {
	name    string
	baseURL string
	apiKey  string
	client  *phttp.Client
}

// NewVendor creates a vendor-backed SourceAdapter.
func NewVendor(baseURL, apiKey string, client *phttp.Client) drepo.SourceAdapter {
	return &VendorAdapter{
		name:    "vendor",
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
	}
}

func (a *VendorAdapter) Name() string { return a.name }

type vendorBar struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

type vendorResponse struct {
	Status string      `json:"status"`
	Data   []vendorBar `json:"data"`
}

// Fetch returns daily rows within [from, to], oldest first.
func (a *VendorAdapter) Fetch(ctx context.Context, id string, from, to time.Time) ([]models.PriceRow, error) {
	resp, err := a.client.SendRequest(ctx, &phttp.RequestOptions{
		Method: "GET",
		URL:    fmt.Sprintf("%s/v1/daily", a.baseURL),
		Headers: map[string]string{
			"Authorization": "Bearer " + a.apiKey,
		},
		QueryParams: map[string][]string{
			"symbol": {id},
			"from":   {util.FormatDate(from)},
			"to":     {util.FormatDate(to)},
		},
	})
	if err != nil {
		return nil, models.NewAdapterError(a.name, models.AdapterUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		return nil, models.NewAdapterError(a.name, models.AdapterAuth,
			fmt.Errorf("status %d", resp.StatusCode))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, models.NewAdapterError(a.name, models.AdapterUnavailable,
			fmt.Errorf("status %d", resp.StatusCode))
	}

	var body vendorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, models.NewAdapterError(a.name, models.AdapterDecode, err)
	}
	if body.Status != "ok" {
		return nil, models.NewAdapterError(a.name, models.AdapterDecode,
			fmt.Errorf("vendor status %q", body.Status))
	}

	rows := make([]models.PriceRow, 0, len(body.Data))
	for _, bar := range body.Data {
		day, ok := util.ParseDate(bar.Date)
		if !ok {
			return nil, models.NewAdapterError(a.name, models.AdapterDecode,
				fmt.Errorf("bad date %q", bar.Date))
		}
		if day.Before(from) || day.After(to) {
			continue
		}
		rows = append(rows, models.PriceRow{
			TradeDate: day,
			Open:      decimal.NewFromFloat(bar.Open),
			High:      decimal.NewFromFloat(bar.High),
			Low:       decimal.NewFromFloat(bar.Low),
			Close:     decimal.NewFromFloat(bar.Close),
			Volume:    bar.Volume,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].TradeDate.Before(rows[j].TradeDate) })
	return rows, nil
}
