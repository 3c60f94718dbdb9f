package clients

import (
	"sync"
	"time"
)

// State is a breaker position.
type State int

const (
	StateClosed   State = iota // calls flow, outcomes are counted
	StateOpen                  // calls are refused until the sleep window passes
	StateHalfOpen              // one trial call decides between closed and open
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures the circuit breaker behavior.
type CircuitBreakerConfig struct {
	// Window is the length of the rolling statistics window.
	Window time.Duration

	// Buckets is the number of buckets the window is split into. Outcomes
	// older than the window expire one bucket at a time.
	Buckets int

	// RequestVolumeThreshold is the minimum number of outcomes in the window
	// before the error rate is evaluated.
	RequestVolumeThreshold int

	// ErrorThresholdPercent is the failure percentage (0-100) at or above
	// which the circuit opens.
	ErrorThresholdPercent int

	// SleepWindow is how long the circuit stays open before a trial request
	// is admitted.
	SleepWindow time.Duration
}

// bucket counts outcomes for one slice of the window. slot identifies the
// slice of time the counts belong to.
type bucket struct {
	slot      int64
	successes int
	failures  int
}

// CircuitBreaker decides from a rolling window of outcomes whether calls to
// one downstream service may proceed.
//
// Transitions:
//   - Closed → Open: window volume ≥ RequestVolumeThreshold and error rate ≥ ErrorThresholdPercent
//   - Open → HalfOpen: after SleepWindow, exactly one trial request is admitted
//   - HalfOpen → Closed: the trial succeeds; the window is reset
//   - HalfOpen → Open: the trial fails; the sleep window restarts
//
// A call whose caller gave up is neither a success nor a failure. Release
// drops it, and a released trial lets the next caller try instead.
type CircuitBreaker struct {
	mu       sync.Mutex
	state    State
	buckets  []bucket
	width    time.Duration // duration covered by one bucket
	openedAt time.Time     // start of the current sleep window
	trial    bool          // the half-open trial request is in flight
	cfg      CircuitBreakerConfig

	onStateChange func(from, to State)
	now           func() time.Time
}

// BreakerOption customizes a CircuitBreaker.
type BreakerOption func(*CircuitBreaker)

// WithClock replaces the breaker's time source.
func WithClock(now func() time.Time) BreakerOption {
	return func(cb *CircuitBreaker) {
		cb.now = now
	}
}

// NewCircuitBreaker returns a closed breaker. A zero bucket count is treated
// as one bucket spanning the whole window.
func NewCircuitBreaker(cfg CircuitBreakerConfig, opts ...BreakerOption) *CircuitBreaker {
	if cfg.Buckets < 1 {
		cfg.Buckets = 1
	}

	width := cfg.Window / time.Duration(cfg.Buckets)
	if width <= 0 {
		width = time.Millisecond
	}

	cb := &CircuitBreaker{
		state:   StateClosed,
		buckets: make([]bucket, cfg.Buckets),
		width:   width,
		cfg:     cfg,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(cb)
	}

	cb.resetWindow()

	return cb
}

// OnStateChange registers fn to run after every transition. fn is called
// synchronously with the breaker locked, so transitions are seen in order.
// It must not call back into the breaker.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// Allow reports whether a call may proceed. The first caller after the sleep
// window moves the breaker to half-open and becomes the trial. Everyone else
// is refused until the trial reports back or is released.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true

	case StateOpen:
		if cb.now().Sub(cb.openedAt) >= cb.cfg.SleepWindow {
			cb.transitionTo(StateHalfOpen)
			cb.trial = true
			return true
		}
		return false

	case StateHalfOpen:
		if cb.trial {
			return false
		}
		cb.trial = true
		return true

	default:
		return false
	}
}

// RecordSuccess counts a success. A successful trial closes the breaker with
// an empty window.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.current().successes++

	case StateHalfOpen:
		if !cb.trial {
			return
		}
		cb.trial = false
		cb.resetWindow()
		cb.transitionTo(StateClosed)
	}
}

// RecordFailure counts a failure and opens the breaker once the window has
// enough volume at or above the error threshold. A failed trial reopens it.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		cb.current().failures++

		total, failures := cb.totals()
		if total >= cb.cfg.RequestVolumeThreshold &&
			failures*100 >= cb.cfg.ErrorThresholdPercent*total {
			cb.open()
		}

	case StateHalfOpen:
		if !cb.trial {
			return
		}
		cb.trial = false
		cb.open()
	}
}

// Release gives back an admission without judging it. It is used when the
// caller abandoned the call, which says nothing about the downstream. A
// released half-open trial is handed to the next caller of Allow.
func (cb *CircuitBreaker) Release() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.trial = false
	}
}

// State returns the current position of the breaker.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Counts returns the number of outcomes and failures in the current window.
func (cb *CircuitBreaker) Counts() (total, failures int) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.totals()
}

// The helpers below expect cb.mu to be held.

func (cb *CircuitBreaker) open() {
	cb.openedAt = cb.now()
	cb.transitionTo(StateOpen)
}

// current returns the bucket for now, recycling it if it still holds counts
// from an earlier lap of the ring.
func (cb *CircuitBreaker) current() *bucket {
	slot := cb.now().UnixNano() / int64(cb.width)
	b := &cb.buckets[slot%int64(len(cb.buckets))]

	if b.slot != slot {
		*b = bucket{slot: slot}
	}

	return b
}

func (cb *CircuitBreaker) totals() (total, failures int) {
	slot := cb.now().UnixNano() / int64(cb.width)
	n := int64(len(cb.buckets))

	for _, b := range cb.buckets {
		if age := slot - b.slot; age >= 0 && age < n {
			total += b.successes + b.failures
			failures += b.failures
		}
	}

	return total, failures
}

func (cb *CircuitBreaker) resetWindow() {
	for i := range cb.buckets {
		cb.buckets[i] = bucket{slot: -1}
	}
}

func (cb *CircuitBreaker) transitionTo(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to

	if fn := cb.onStateChange; fn != nil {
		fn(from, to)
	}
}
