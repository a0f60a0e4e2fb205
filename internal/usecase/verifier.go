package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"PriceTrust/internal/domain/models"
	drepo "PriceTrust/internal/domain/repository"
	"PriceTrust/internal/service/breaker"
	"PriceTrust/internal/service/symbol"
	"PriceTrust/pkg/logger"
	"PriceTrust/pkg/util"
)

// ErrBadInput marks a malformed request rejected before any provider I/O.
var ErrBadInput = errors.New("bad input")

// ProviderEntry is one rung of the verification waterfall. Breaker is
// optional; entries without one are always tried. IDKey selects which
// canonical provider id the adapter is invoked with.
type ProviderEntry struct {
	Adapter drepo.SourceAdapter
	Breaker *breaker.Breaker
	IDKey   string
}

// VerifierConfig tunes the waterfall.
type VerifierConfig struct {
	LookbackDays   int     // query window size, default 5
	WideWindowDays int     // last-resort window, default 365
	CrossTolerance float64 // close diff ratio considered a match, default 0.005
}

// Verifier coordinates the provider waterfall and produces price proofs.
//
// Providers are tried strictly in order, one at a time, and never retried
// within a request. Per-call timeouts are the adapters' concern; the
// verifier imposes none of its own.
type Verifier struct {
	providers []ProviderEntry
	cfg       VerifierConfig
	metrics   drepo.Metrics
	log       *logger.Logger
}

// NewVerifier creates a Verifier over providers in priority order,
// highest trust first.
func NewVerifier(providers []ProviderEntry, cfg VerifierConfig, metrics drepo.Metrics, log *logger.Logger) *Verifier {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 5
	}
	if cfg.WideWindowDays <= 0 {
		cfg.WideWindowDays = 365
	}
	if cfg.CrossTolerance <= 0 {
		cfg.CrossTolerance = 0.005
	}
	return &Verifier{providers: providers, cfg: cfg, metrics: metrics, log: log}
}

// VerifiedPrice resolves one verified daily price for rawSymbol at asOf.
//
// It returns an error only for malformed input. Every provider failure is
// absorbed into the proof's warnings; total exhaustion yields a failed
// proof with Source "none", not an error.
func (v *Verifier) VerifiedPrice(ctx context.Context, rawSymbol string, asOf time.Time, lookbackDays int) (models.PriceProof, error) {
	if rawSymbol == "" {
		return models.PriceProof{}, fmt.Errorf("%w: empty symbol", ErrBadInput)
	}
	if asOf.IsZero() {
		return models.PriceProof{}, fmt.Errorf("%w: zero as-of date", ErrBadInput)
	}
	if lookbackDays <= 0 {
		lookbackDays = v.cfg.LookbackDays
	}

	start := time.Now()
	defer func() {
		v.metrics.RecordVerifyLatency(time.Since(start).Seconds())
	}()

	canonical := symbol.Normalize(rawSymbol)
	asOfDay := util.DateOnly(asOf)
	from := asOfDay.AddDate(0, 0, -lookbackDays)

	proof := models.PriceProof{
		Success:  false,
		Source:   models.SourceNone,
		Symbol:   canonical,
		AsOfDate: asOfDay,
		Warnings: []string{},
	}

	for i, entry := range v.providers {
		row, ok := v.tryProvider(ctx, &proof, entry, canonical, from, asOfDay)
		if !ok {
			continue
		}
		v.accept(ctx, &proof, i, canonical, row, asOfDay)
		return proof, nil
	}

	// Requested date may simply be out of every narrow window. Retry the
	// highest-trust providers over a much wider window before giving up.
	wideFrom := asOfDay.AddDate(0, 0, -v.cfg.WideWindowDays)
	for i, entry := range v.providers {
		if i >= 2 {
			break
		}
		row, ok := v.tryProvider(ctx, &proof, entry, canonical, wideFrom, asOfDay)
		if !ok {
			continue
		}
		proof.Warnings = append(proof.Warnings, fmt.Sprintf(
			"wide-window fallback: no data near %s, returning most recent row %s from %s",
			util.FormatDate(asOfDay), util.FormatDate(row.TradeDate), entry.Adapter.Name()))
		v.accept(ctx, &proof, i, canonical, row, asOfDay)
		proof.FallbackUsed = true
		return proof, nil
	}

	v.log.Warn("all sources exhausted",
		logger.String("symbol", canonical.ID),
		logger.String("as_of", util.FormatDate(asOfDay)),
		logger.Int("warnings", len(proof.Warnings)))
	return proof, nil
}

// tryProvider runs one waterfall rung: breaker gate, fetch, row
// selection. Failures land in proof.Warnings and return ok=false.
func (v *Verifier) tryProvider(ctx context.Context, proof *models.PriceProof, entry ProviderEntry, canonical models.CanonicalSymbol, from, to time.Time) (models.PriceRow, bool) {
	name := entry.Adapter.Name()

	if entry.Breaker != nil && !entry.Breaker.Allow() {
		proof.Warnings = append(proof.Warnings, fmt.Sprintf("%s: circuit open, skipped", name))
		v.metrics.RecordBreakerState(name, string(entry.Breaker.State()))
		return models.PriceRow{}, false
	}

	v.metrics.RecordProviderAttempt(name)
	rows, err := entry.Adapter.Fetch(ctx, canonical.ProviderID(entry.IDKey), from, to)
	if err != nil {
		if entry.Breaker != nil {
			entry.Breaker.OnFailure()
			v.metrics.RecordBreakerState(name, string(entry.Breaker.State()))
		}
		v.metrics.RecordProviderError(name, errorKind(err))
		proof.Warnings = append(proof.Warnings, fmt.Sprintf("%s: %v", name, err))
		v.log.Warn("provider fetch failed", logger.String("provider", name), logger.Error(err))
		return models.PriceRow{}, false
	}
	if entry.Breaker != nil {
		entry.Breaker.OnSuccess()
		v.metrics.RecordBreakerState(name, string(entry.Breaker.State()))
	}

	row, found := latestRowOnOrBefore(rows, to)
	if !found {
		proof.Warnings = append(proof.Warnings, fmt.Sprintf("%s: no rows in window", name))
		return models.PriceRow{}, false
	}
	return row, true
}

// accept fills the proof with an accepted row and runs the advisory
// cross-check against at most one lower-priority provider.
func (v *Verifier) accept(ctx context.Context, proof *models.PriceProof, baseIdx int, canonical models.CanonicalSymbol, row models.PriceRow, asOfDay time.Time) {
	name := v.providers[baseIdx].Adapter.Name()
	tradeDate := row.TradeDate

	proof.Success = true
	proof.Source = name
	proof.Row = &row
	proof.TradeDate = &tradeDate
	if !util.SameDay(tradeDate, asOfDay) {
		proof.FallbackUsed = true
		proof.Warnings = append(proof.Warnings, fmt.Sprintf(
			"non-trading-day fallback: used %s <= %s",
			util.FormatDate(tradeDate), util.FormatDate(asOfDay)))
	}

	v.crossCheck(ctx, proof, baseIdx, canonical, row)
}

func (v *Verifier) crossCheck(ctx context.Context, proof *models.PriceProof, baseIdx int, canonical models.CanonicalSymbol, base models.PriceRow) {
	for i := baseIdx + 1; i < len(v.providers); i++ {
		entry := v.providers[i]
		if entry.Breaker != nil && !entry.Breaker.Allow() {
			continue
		}
		name := entry.Adapter.Name()
		result := v.compareAgainst(ctx, entry, canonical, base)
		if proof.CrossChecks == nil {
			proof.CrossChecks = make(map[string]models.CrossCheckResult)
		}
		proof.CrossChecks[name] = result
		if !result.Match && result.CloseDiffPct != nil {
			v.metrics.RecordCrossCheckMismatch(proof.Source, name)
			v.log.Warn("cross-check mismatch",
				logger.String("base", proof.Source),
				logger.String("other", name),
				logger.Any("close_diff_pct", *result.CloseDiffPct))
		}
		return // at most one cross-check per proof
	}
}

func (v *Verifier) compareAgainst(ctx context.Context, entry ProviderEntry, canonical models.CanonicalSymbol, base models.PriceRow) models.CrossCheckResult {
	day := base.TradeDate
	rows, err := entry.Adapter.Fetch(ctx, canonical.ProviderID(entry.IDKey), day, day)
	if err != nil {
		if entry.Breaker != nil {
			entry.Breaker.OnFailure()
		}
		return models.CrossCheckResult{Match: false, Reason: fmt.Sprintf("provider error: %v", err)}
	}
	if entry.Breaker != nil {
		entry.Breaker.OnSuccess()
	}

	other, found := latestRowOnOrBefore(rows, day)
	if !found || !util.SameDay(other.TradeDate, day) {
		return models.CrossCheckResult{Match: false, Reason: "no row for trade date"}
	}
	if base.Close.IsZero() {
		return models.CrossCheckResult{Match: false, Reason: "base close is zero", ComparedRow: &other}
	}

	diff, _ := other.Close.Sub(base.Close).Abs().Div(base.Close).Float64()
	return models.CrossCheckResult{
		Match:        diff <= v.cfg.CrossTolerance,
		CloseDiffPct: &diff,
		ComparedRow:  &other,
	}
}

// latestRowOnOrBefore selects the row with the maximum trade date not
// after limit.
func latestRowOnOrBefore(rows []models.PriceRow, limit time.Time) (models.PriceRow, bool) {
	var best models.PriceRow
	found := false
	for _, row := range rows {
		day := util.DateOnly(row.TradeDate)
		if day.After(limit) {
			continue
		}
		if !found || day.After(util.DateOnly(best.TradeDate)) {
			best = row
			found = true
		}
	}
	return best, found
}

func errorKind(err error) string {
	var ae *models.AdapterError
	if errors.As(err, &ae) {
		return string(ae.Kind)
	}
	return string(models.AdapterUnavailable)
}
