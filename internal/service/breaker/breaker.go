// Package breaker implements a minimal circuit breaker used to skip
// persistently failing providers without paying their timeout on every
// request. One breaker instance guards one provider and is shared across
// all concurrent callers of that provider.
package breaker

import (
	"sync"
	"time"
)

// State of the breaker state machine.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// Option configures a Breaker.
type Option func(*Breaker)

// WithClock injects a time source for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

// Breaker transitions closed -> open after FailureThreshold consecutive
// failures, open -> half-open once ResetTimeout elapses (Allow then
// permits exactly one trial call), and half-open -> closed/open on the
// next success/failure. The breaker never invokes the guarded call
// itself: callers must report every outcome via OnSuccess/OnFailure.
type Breaker struct {
	failureThreshold int
	resetTimeout     time.Duration
	now              func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
}

// New creates a closed breaker.
func New(failureThreshold int, resetTimeout time.Duration, opts ...Option) *Breaker {
	if failureThreshold <= 0 {
		failureThreshold = 3
	}
	b := &Breaker{
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
		state:            StateClosed,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Allow reports whether a call may proceed. While open, it returns false
// until the reset timeout has elapsed, then transitions to half-open and
// returns true for a single trial call.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.resetTimeout {
			return false
		}
		b.state = StateHalfOpen
		return true
	case StateHalfOpen:
		// Trial call already in flight; wait for its outcome.
		return false
	default:
		return true
	}
}

// OnSuccess records a successful guarded call.
func (b *Breaker) OnSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.state = StateClosed
}

// OnFailure records a failed guarded call.
func (b *Breaker) OnFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.trip()
		return
	}

	b.failures++
	if b.failures >= b.failureThreshold {
		b.trip()
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) trip() {
	b.state = StateOpen
	b.failures = 0
	b.openedAt = b.now()
}
