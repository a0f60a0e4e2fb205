package lifecycle

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"PriceTrust/internal/domain/models"
)

func testCalculator() *Calculator {
	return NewCalculator(WithRand(rand.New(rand.NewSource(1))))
}

// taipei builds a local timestamp in the default session's zone.
func taipei(t *testing.T, y int, m time.Month, d, hh, mm int) time.Time {
	t.Helper()
	return time.Date(y, m, d, hh, mm, 0, 0, DefaultSession().Loc)
}

func TestTTL_RealtimeDuringSession(t *testing.T) {
	c := testCalculator()
	desc := models.ToolLifecycleDescriptor{
		Lifecycle:        models.LifecycleRealtime,
		TradingHoursTTLS: 300,
		JitterPct:        10,
	}

	// Monday 2025-06-02 10:00 Taipei, mid-session.
	now := taipei(t, 2025, 6, 2, 10, 0)
	got := c.TTL(desc, now)

	assert.GreaterOrEqual(t, got, 270*time.Second)
	assert.LessOrEqual(t, got, 330*time.Second)
}

func TestTTL_RealtimeAfterCloseUntilOpen(t *testing.T) {
	c := testCalculator()
	desc := models.ToolLifecycleDescriptor{
		Lifecycle:      models.LifecycleRealtime,
		AfterHoursMode: models.AfterHoursUntilOpen,
	}

	// Monday 14:00, just after the 13:30 close; next open Tuesday 09:00.
	now := taipei(t, 2025, 6, 2, 14, 0)
	got := c.TTL(desc, now)

	assert.Equal(t, 19*time.Hour, got)
}

func TestTTL_RealtimeFridayCloseSkipsWeekend(t *testing.T) {
	c := testCalculator()
	desc := models.ToolLifecycleDescriptor{
		Lifecycle:      models.LifecycleRealtime,
		AfterHoursMode: models.AfterHoursUntilOpen,
	}

	// Friday 2025-06-06 15:00; next open Monday 2025-06-09 09:00.
	now := taipei(t, 2025, 6, 6, 15, 0)
	got := c.TTL(desc, now)

	assert.Equal(t, 66*time.Hour, got)
}

func TestTTL_RealtimeSaturdayIsOutsideSession(t *testing.T) {
	c := testCalculator()
	desc := models.ToolLifecycleDescriptor{
		Lifecycle:        models.LifecycleRealtime,
		TradingHoursTTLS: 60,
		AfterHoursMode:   models.AfterHoursUntilOpen,
	}

	// Saturday 10:00 is inside session hours but not a trading day.
	now := taipei(t, 2025, 6, 7, 10, 0)
	got := c.TTL(desc, now)

	assert.Greater(t, got, time.Minute, "must not use the trading-hours TTL")
}

func TestTTL_RealtimeJustBeforeOpenFloorsAt60s(t *testing.T) {
	c := testCalculator()
	desc := models.ToolLifecycleDescriptor{
		Lifecycle:      models.LifecycleRealtime,
		AfterHoursMode: models.AfterHoursUntilOpen,
	}

	// 08:59:30, thirty seconds before open: floored to the minimum.
	now := taipei(t, 2025, 6, 2, 8, 59).Add(30 * time.Second)
	got := c.TTL(desc, now)

	assert.Equal(t, 60*time.Second, got)
}

func TestTTL_RealtimeFixedAfterHours(t *testing.T) {
	c := testCalculator()
	desc := models.ToolLifecycleDescriptor{
		Lifecycle:      models.LifecycleRealtime,
		AfterHoursMode: models.AfterHoursFixed,
	}

	now := taipei(t, 2025, 6, 2, 20, 0)
	assert.Equal(t, afterHoursTTL, c.TTL(desc, now))
}

func TestTTL_IntradayRunsToEndOfDay(t *testing.T) {
	c := testCalculator()
	desc := models.ToolLifecycleDescriptor{Lifecycle: models.LifecycleIntraday}

	// 18:00: six hours to local midnight.
	now := taipei(t, 2025, 6, 2, 18, 0)
	assert.Equal(t, 6*time.Hour, c.TTL(desc, now))
}

func TestTTL_IntradayStaticOverride(t *testing.T) {
	c := testCalculator()
	desc := models.ToolLifecycleDescriptor{
		Lifecycle:  models.LifecycleIntraday,
		StaticTTLS: 120,
	}

	now := taipei(t, 2025, 6, 2, 18, 0)
	assert.Equal(t, 2*time.Minute, c.TTL(desc, now))
}

func TestTTL_PeriodicAndStaticDefaults(t *testing.T) {
	c := testCalculator()
	now := taipei(t, 2025, 6, 2, 10, 0)

	assert.Equal(t, periodicTTL, c.TTL(models.ToolLifecycleDescriptor{Lifecycle: models.LifecyclePeriodic}, now))
	assert.Equal(t, dayTTL, c.TTL(models.ToolLifecycleDescriptor{Lifecycle: models.LifecycleStatic}, now))
	assert.Equal(t, eventDrivenTTL, c.TTL(models.ToolLifecycleDescriptor{Lifecycle: models.LifecycleEventDriven}, now))
}

func TestTTL_JitterStaysWithinBoundsAndPositive(t *testing.T) {
	c := testCalculator()
	desc := models.ToolLifecycleDescriptor{
		Lifecycle:  models.LifecycleStatic,
		StaticTTLS: 100,
		JitterPct:  30,
	}
	now := taipei(t, 2025, 6, 2, 10, 0)

	for i := 0; i < 200; i++ {
		got := c.TTL(desc, now)
		assert.GreaterOrEqual(t, got, 70*time.Second)
		assert.LessOrEqual(t, got, 130*time.Second)
		assert.Greater(t, got, time.Duration(0))
	}
}

func TestTTL_JitterReproducibleWithSeed(t *testing.T) {
	desc := models.ToolLifecycleDescriptor{
		Lifecycle:  models.LifecycleStatic,
		StaticTTLS: 1000,
		JitterPct:  20,
	}
	now := taipei(t, 2025, 6, 2, 10, 0)

	a := NewCalculator(WithRand(rand.New(rand.NewSource(42)))).TTL(desc, now)
	b := NewCalculator(WithRand(rand.New(rand.NewSource(42)))).TTL(desc, now)
	assert.Equal(t, a, b)
}

func TestRegistry_DefaultForUnknownTool(t *testing.T) {
	r := NewRegistry(map[string]models.ToolLifecycleDescriptor{
		"price_verified": {Lifecycle: models.LifecycleRealtime, TradingHoursTTLS: 300, JitterPct: 10},
	})

	assert.True(t, r.Known("price_verified"))
	assert.False(t, r.Known("nope"))
	assert.Equal(t, DefaultDescriptor, r.Descriptor("nope"))
	assert.Equal(t, models.LifecycleRealtime, r.Descriptor("price_verified").Lifecycle)
}

func TestSession_NextOpenBeforeOpenSameDay(t *testing.T) {
	s := DefaultSession()
	now := taipei(t, 2025, 6, 2, 7, 0) // Monday 07:00
	next := s.NextOpen(now)
	assert.Equal(t, taipei(t, 2025, 6, 2, 9, 0), next)
}

func TestSession_ContainsEdges(t *testing.T) {
	s := DefaultSession()
	assert.True(t, s.Contains(taipei(t, 2025, 6, 2, 9, 0)), "open is inclusive")
	assert.False(t, s.Contains(taipei(t, 2025, 6, 2, 13, 30)), "close is exclusive")
	assert.False(t, s.Contains(taipei(t, 2025, 6, 2, 8, 59)))
}
