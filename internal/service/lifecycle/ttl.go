// Package lifecycle computes how long a cached answer for a tool stays
// valid, driven by the tool's declared freshness class and the market's
// trading session. The calculator is pure given an injected clock value
// and a seedable random source.
package lifecycle

import (
	"math/rand"
	"time"

	"PriceTrust/internal/domain/models"
)

const (
	minTTL         = time.Second
	minDynamicTTL  = 60 * time.Second
	dayTTL         = 24 * time.Hour
	afterHoursTTL  = 4 * time.Hour  // realtime tools with fixed after-hours mode
	periodicTTL    = 3 * 24 * time.Hour
	eventDrivenTTL = 10 * time.Minute
)

// CalcOption configures a Calculator.
type CalcOption func(*Calculator)

// WithSession overrides the trading session window.
func WithSession(s Session) CalcOption {
	return func(c *Calculator) { c.session = s }
}

// WithRand injects a seedable random source so jitter is reproducible.
func WithRand(r *rand.Rand) CalcOption {
	return func(c *Calculator) { c.rng = r }
}

// Calculator derives cache TTLs from lifecycle descriptors.
type Calculator struct {
	session Session
	rng     *rand.Rand
}

// NewCalculator creates a calculator with the default Taiwan session.
func NewCalculator(opts ...CalcOption) *Calculator {
	c := &Calculator{
		session: DefaultSession(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL computes the freshness window for desc at the given instant.
// The result is always at least one second, jitter included.
func (c *Calculator) TTL(desc models.ToolLifecycleDescriptor, now time.Time) time.Duration {
	base := c.baseTTL(desc, now)
	return c.jitter(base, desc.JitterPct)
}

func (c *Calculator) baseTTL(desc models.ToolLifecycleDescriptor, now time.Time) time.Duration {
	switch desc.Lifecycle {
	case models.LifecycleRealtime:
		return c.realtimeTTL(desc, now)

	case models.LifecycleIntraday:
		if desc.StaticTTLS > 0 {
			return time.Duration(desc.StaticTTLS) * time.Second
		}
		return floorDuration(c.session.EndOfDay(now).Sub(now), minDynamicTTL)

	case models.LifecyclePeriodic:
		if desc.StaticTTLS > 0 {
			return time.Duration(desc.StaticTTLS) * time.Second
		}
		return periodicTTL

	case models.LifecycleEventDriven:
		// No push invalidation channel exists, so stale-by-short-timeout
		// is the best available approximation.
		if desc.StaticTTLS > 0 {
			return time.Duration(desc.StaticTTLS) * time.Second
		}
		return eventDrivenTTL

	default: // static and anything unrecognized
		if desc.StaticTTLS > 0 {
			return time.Duration(desc.StaticTTLS) * time.Second
		}
		return dayTTL
	}
}

func (c *Calculator) realtimeTTL(desc models.ToolLifecycleDescriptor, now time.Time) time.Duration {
	if c.session.Contains(now) {
		if desc.TradingHoursTTLS > 0 {
			return time.Duration(desc.TradingHoursTTLS) * time.Second
		}
		return 5 * time.Minute
	}

	if desc.AfterHoursMode == models.AfterHoursUntilOpen {
		return floorDuration(c.session.NextOpen(now).Sub(now), minDynamicTTL)
	}
	return afterHoursTTL
}

// jitter perturbs base by up to ±pct% so many entries written together
// do not expire together.
func (c *Calculator) jitter(base time.Duration, pct int) time.Duration {
	if pct <= 0 {
		return floorDuration(base, minTTL)
	}
	span := float64(base) * float64(pct) / 100
	delta := (c.rng.Float64()*2 - 1) * span
	return floorDuration(base+time.Duration(delta), minTTL)
}

func floorDuration(d, floor time.Duration) time.Duration {
	if d < floor {
		return floor
	}
	return d
}
