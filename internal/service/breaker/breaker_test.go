package breaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(threshold int, reset time.Duration) (*Breaker, *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)}
	return New(threshold, reset, WithClock(clk.Now)), clk
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	b.OnFailure()
	b.OnFailure()
	assert.True(t, b.Allow(), "still closed below threshold")

	b.OnFailure()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(3, time.Minute)

	b.OnFailure()
	b.OnFailure()
	b.OnSuccess()
	b.OnFailure()
	b.OnFailure()

	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreaker_HalfOpenAfterResetTimeout(t *testing.T) {
	b, clk := newTestBreaker(1, time.Minute)

	b.OnFailure()
	assert.False(t, b.Allow())

	clk.Advance(59 * time.Second)
	assert.False(t, b.Allow(), "timeout not yet elapsed")

	clk.Advance(2 * time.Second)
	assert.True(t, b.Allow(), "one trial call permitted")
	assert.Equal(t, StateHalfOpen, b.State())
	assert.False(t, b.Allow(), "second caller waits for the trial outcome")
}

func TestBreaker_HalfOpenSuccessCloses(t *testing.T) {
	b, clk := newTestBreaker(1, time.Minute)

	b.OnFailure()
	clk.Advance(2 * time.Minute)
	assert.True(t, b.Allow())

	b.OnSuccess()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, clk := newTestBreaker(1, time.Minute)

	b.OnFailure()
	clk.Advance(2 * time.Minute)
	assert.True(t, b.Allow())

	b.OnFailure()
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow(), "reopened immediately")

	clk.Advance(time.Minute + time.Second)
	assert.True(t, b.Allow(), "another trial after a full reset timeout")
}
