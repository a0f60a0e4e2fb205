package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"PriceTrust/internal/domain/models"
	drepo "PriceTrust/internal/domain/repository"
	phttp "PriceTrust/pkg/http"

	"github.com/shopspring/decimal"
)

// TWSEAdapter fetches daily bars from the exchange's monthly quote feed.
// The feed is month-granular, so a window spanning months issues one
// request per month.
type TWSEAdapter struct {
	name    string
	baseURL string
	client  *phttp.Client
}

// NewTWSE creates an exchange-feed-backed SourceAdapter.
func NewTWSE(baseURL string, client *phttp.Client) drepo.SourceAdapter {
	return &TWSEAdapter{name: "twse", baseURL: baseURL, client: client}
}

func (a *TWSEAdapter) Name() string { return a.name }

type twseResponse struct {
	Stat string     `json:"stat"`
	Data [][]string `json:"data"`
}

// Fetch returns daily rows within [from, to], oldest first.
func (a *TWSEAdapter) Fetch(ctx context.Context, id string, from, to time.Time) ([]models.PriceRow, error) {
	var rows []models.PriceRow
	for month := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC); !month.After(to); month = month.AddDate(0, 1, 0) {
		monthRows, err := a.fetchMonth(ctx, id, month)
		if err != nil {
			return nil, err
		}
		for _, row := range monthRows {
			if row.TradeDate.Before(from) || row.TradeDate.After(to) {
				continue
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (a *TWSEAdapter) fetchMonth(ctx context.Context, id string, month time.Time) ([]models.PriceRow, error) {
	resp, err := a.client.SendRequest(ctx, &phttp.RequestOptions{
		Method: "GET",
		URL:    fmt.Sprintf("%s/exchangeReport/STOCK_DAY", a.baseURL),
		QueryParams: map[string][]string{
			"response": {"json"},
			"date":     {month.Format("20060102")},
			"stockNo":  {id},
		},
	})
	if err != nil {
		return nil, models.NewAdapterError(a.name, models.AdapterUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, models.NewAdapterError(a.name, models.AdapterUnavailable,
			fmt.Errorf("status %d", resp.StatusCode))
	}

	var body twseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, models.NewAdapterError(a.name, models.AdapterDecode, err)
	}
	if body.Stat != "OK" {
		// The feed answers a stat message, not an HTTP error, for months
		// with no listing data.
		return nil, nil
	}

	rows := make([]models.PriceRow, 0, len(body.Data))
	for _, rec := range body.Data {
		row, err := parseTWSERecord(rec)
		if err != nil {
			return nil, models.NewAdapterError(a.name, models.AdapterDecode, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseTWSERecord decodes one feed record. Fields are positional:
// date, shares, value, open, high, low, close, change, transactions.
// Dates use the ROC calendar (year offset 1911) and numbers carry
// thousands separators.
func parseTWSERecord(rec []string) (models.PriceRow, error) {
	if len(rec) < 7 {
		return models.PriceRow{}, fmt.Errorf("record has %d fields, want 9", len(rec))
	}

	day, err := parseROCDate(rec[0])
	if err != nil {
		return models.PriceRow{}, err
	}
	open, err := parseTWSENumber(rec[3])
	if err != nil {
		return models.PriceRow{}, fmt.Errorf("open: %w", err)
	}
	high, err := parseTWSENumber(rec[4])
	if err != nil {
		return models.PriceRow{}, fmt.Errorf("high: %w", err)
	}
	low, err := parseTWSENumber(rec[5])
	if err != nil {
		return models.PriceRow{}, fmt.Errorf("low: %w", err)
	}
	closePx, err := parseTWSENumber(rec[6])
	if err != nil {
		return models.PriceRow{}, fmt.Errorf("close: %w", err)
	}
	volume, err := strconv.ParseInt(strings.ReplaceAll(rec[1], ",", ""), 10, 64)
	if err != nil {
		return models.PriceRow{}, fmt.Errorf("volume: %w", err)
	}

	return models.PriceRow{
		TradeDate: day,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePx,
		Volume:    volume,
	}, nil
}

func parseROCDate(s string) (time.Time, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("bad date %q", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", s)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q", s)
	}
	return time.Date(year+1911, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

func parseTWSENumber(s string) (decimal.Decimal, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if cleaned == "" || cleaned == "--" {
		return decimal.Zero, fmt.Errorf("missing value")
	}
	return decimal.NewFromString(cleaned)
}
