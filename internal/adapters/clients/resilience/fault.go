package resilience

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// FaultInjector delays a fraction of calls to exercise timeout and fallback
// paths. The zero probability disables it.
type FaultInjector struct {
	probability float64
	delay       time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewFaultInjector creates an injector that sleeps delay with the given
// probability. A zero seed draws one at random; any other seed makes the
// sequence of injected faults reproducible.
func NewFaultInjector(probability float64, delay time.Duration, seed uint64) *FaultInjector {
	if seed == 0 {
		seed = rand.Uint64() //nolint:gosec // No need for crypto-grade randomness
	}

	return &FaultInjector{
		probability: probability,
		delay:       delay,
		rng:         rand.New(rand.NewPCG(seed, seed>>1|1)), //nolint:gosec // No need for crypto-grade randomness
	}
}

// Trip reports whether the next call should be delayed.
func (f *FaultInjector) Trip() bool {
	if f == nil || f.probability <= 0 || f.delay <= 0 {
		return false
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.rng.Float64() < f.probability
}

// Inject sleeps for the configured delay when Trip fires. It returns early
// with ctx.Err() if ctx ends first. The bool reports whether a fault fired.
func (f *FaultInjector) Inject(ctx context.Context) (bool, error) {
	if !f.Trip() {
		return false, nil
	}

	timer := time.NewTimer(f.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true, nil
	case <-ctx.Done():
		return true, ctx.Err()
	}
}
