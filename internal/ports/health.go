package ports

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// ErrDuplicateChecker is returned when a checker name is registered twice.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// DefaultCheckTimeout bounds a single health check.
const DefaultCheckTimeout = 2 * time.Second

// HealthChecker is implemented by components that can report their health:
// the record store, the service directory and downstream services.
//
//	func (s *Store) Name() string { return "storage" }
//
//	func (s *Store) Check(ctx context.Context) error { ... }
type HealthChecker interface {
	// Name identifies the check in readiness responses. Must be unique.
	Name() string

	// Check returns nil when the component is healthy. It must honor ctx.
	Check(ctx context.Context) error
}

// HealthRegistry aggregates health checks from multiple components.
type HealthRegistry interface {
	// Register adds a critical checker. A failing critical check makes the
	// process unhealthy.
	Register(checker HealthChecker) error

	// RegisterNonCritical adds a checker whose failure only degrades the
	// process. Used for dependencies the process can fall back from.
	RegisterNonCritical(checker HealthChecker) error

	// CheckAll runs every check concurrently and aggregates the results.
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus represents the overall health state.
type HealthStatus string

const (
	// HealthStatusHealthy indicates all checks passed.
	HealthStatusHealthy HealthStatus = "healthy"

	// HealthStatusDegraded indicates only non-critical checks failed. The
	// process keeps serving, with fallbacks.
	HealthStatusDegraded HealthStatus = "degraded"

	// HealthStatusUnhealthy indicates a critical check failed.
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult contains the aggregated health check results.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult contains the result of a single health check.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

type registration struct {
	checker  HealthChecker
	critical bool
}

// DefaultHealthRegistry is a thread-safe implementation of HealthRegistry.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []registration
	timeout  time.Duration
}

// RegistryOption configures a DefaultHealthRegistry.
type RegistryOption func(*DefaultHealthRegistry)

// WithCheckTimeout overrides DefaultCheckTimeout. Non-positive values are ignored.
func WithCheckTimeout(d time.Duration) RegistryOption {
	return func(r *DefaultHealthRegistry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewHealthRegistry creates an empty registry.
func NewHealthRegistry(opts ...RegistryOption) *DefaultHealthRegistry {
	r := &DefaultHealthRegistry{timeout: DefaultCheckTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a critical checker.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	return r.add(registration{checker: checker, critical: true})
}

// RegisterNonCritical adds a checker that can only degrade the result.
func (r *DefaultHealthRegistry) RegisterNonCritical(checker HealthChecker) error {
	return r.add(registration{checker: checker})
}

func (r *DefaultHealthRegistry) add(reg registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := reg.checker.Name()
	if slices.ContainsFunc(r.checkers, func(e registration) bool { return e.checker.Name() == name }) {
		return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
	}
	r.checkers = append(r.checkers, reg)

	return nil
}

// CheckAll runs all registered checks concurrently, each under its own
// timeout. The overall status is the worst individual one.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	regs := slices.Clone(r.checkers)
	r.mu.RUnlock()

	results := make([]*CheckResult, len(regs))

	var wg sync.WaitGroup
	for i, reg := range regs {
		wg.Go(func() { results[i] = r.run(ctx, reg) })
	}
	wg.Wait()

	out := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(regs)),
		Timestamp: time.Now(),
	}
	for i, reg := range regs {
		out.Checks[reg.checker.Name()] = results[i]
		if results[i].Status.severity() > out.Status.severity() {
			out.Status = results[i].Status
		}
	}

	return out
}

func (r *DefaultHealthRegistry) run(ctx context.Context, reg registration) *CheckResult {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	err := reg.checker.Check(ctx)
	res := &CheckResult{Status: HealthStatusHealthy, Duration: time.Since(start)}

	switch {
	case err == nil:
	case reg.critical:
		res.Status, res.Message = HealthStatusUnhealthy, err.Error()
	default:
		res.Status, res.Message = HealthStatusDegraded, err.Error()
	}

	return res
}

func (s HealthStatus) severity() int {
	switch s {
	case HealthStatusUnhealthy:
		return 2
	case HealthStatusDegraded:
		return 1
	default:
		return 0
	}
}
