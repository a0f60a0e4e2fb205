package symbol

import (
	"strings"

	"PriceTrust/internal/domain/models"
)

// Provider ID keys populated on every canonical symbol.
const (
	IDBare  = "bare"  // plain code, for providers that take the naked id
	IDYahoo = "yahoo" // code plus market suffix, Yahoo chart style
)

// Normalize parses an arbitrary instrument identifier into its canonical
// form. It never fails: unrecognized input degrades to an uppercased
// US/other identifier because downstream providers do their own final
// validation.
//
// A bare numeric code (rule 5) is assumed Taiwan primary-listed. That
// guess can be wrong for OTC-only instruments; callers needing precision
// must supply an explicit .TW/.TWO suffix.
func Normalize(raw string) models.CanonicalSymbol {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))

	switch {
	case strings.HasSuffix(trimmed, ".TW"):
		return taiwan(raw, strings.TrimSuffix(trimmed, ".TW"), models.ExchangePrimary)
	case strings.HasSuffix(trimmed, ".TWO"):
		return taiwan(raw, strings.TrimSuffix(trimmed, ".TWO"), models.ExchangeOTC)
	case strings.HasPrefix(trimmed, "TW:"):
		return taiwan(raw, strings.TrimPrefix(trimmed, "TW:"), models.ExchangePrimary)
	case strings.HasPrefix(trimmed, "TSE:"):
		return taiwan(raw, strings.TrimPrefix(trimmed, "TSE:"), models.ExchangePrimary)
	case strings.HasPrefix(trimmed, "TWO:"):
		return taiwan(raw, strings.TrimPrefix(trimmed, "TWO:"), models.ExchangeOTC)
	case strings.HasPrefix(trimmed, "OTC:"):
		return taiwan(raw, strings.TrimPrefix(trimmed, "OTC:"), models.ExchangeOTC)
	case isNumericCode(trimmed):
		return taiwan(raw, trimmed, models.ExchangePrimary)
	default:
		return models.CanonicalSymbol{
			RawInput: raw,
			ID:       trimmed,
			Market:   models.MarketUS,
			Exchange: models.ExchangeUnknown,
			ProviderIDs: map[string]string{
				IDBare:  trimmed,
				IDYahoo: trimmed,
			},
		}
	}
}

func taiwan(raw, id string, ex models.Exchange) models.CanonicalSymbol {
	suffix := ".TW"
	if ex == models.ExchangeOTC {
		suffix = ".TWO"
	}
	return models.CanonicalSymbol{
		RawInput: raw,
		ID:       id,
		Market:   models.MarketTW,
		Exchange: ex,
		ProviderIDs: map[string]string{
			IDBare:  id,
			IDYahoo: id + suffix,
		},
	}
}

// isNumericCode reports whether s is a 3-6 digit instrument code.
func isNumericCode(s string) bool {
	if len(s) < 3 || len(s) > 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
