// Package resilience wraps downstream calls in commands that bound their
// latency and concurrency and substitute a fallback when they fail.
//
// A command applies, in order: the circuit breaker, the bulkhead, the
// timeout, optional fault injection and finally the run function. Every
// failure path ends in the fallback. Commands never retry.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/clients"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/config"
)

// Config configures a Command.
type Config struct {
	// Name identifies the command in logs and metrics.
	Name string

	// Timeout is the wall-clock ceiling of the run function.
	Timeout time.Duration

	FaultInjection FaultInjectionConfig
	Bulkhead       BulkheadConfig
	Breaker        clients.CircuitBreakerConfig
}

// FaultInjectionConfig configures induced latency.
type FaultInjectionConfig struct {
	Probability float64
	Delay       time.Duration
	Seed        uint64
}

// BulkheadConfig bounds command concurrency.
type BulkheadConfig struct {
	MaxConcurrent int
	MaxQueue      int
}

// ConfigFrom builds a Config from the loaded command settings.
func ConfigFrom(name string, cfg config.CommandConfig) Config {
	return Config{
		Name:    name,
		Timeout: cfg.Timeout,
		FaultInjection: FaultInjectionConfig{
			Probability: cfg.FaultInjection.Probability,
			Delay:       cfg.FaultInjection.Delay,
			Seed:        cfg.FaultInjection.Seed,
		},
		Bulkhead: BulkheadConfig{
			MaxConcurrent: cfg.Bulkhead.MaxConcurrent,
			MaxQueue:      cfg.Bulkhead.MaxQueue,
		},
		Breaker: clients.CircuitBreakerConfig{
			Window:                 cfg.CircuitBreaker.Window,
			Buckets:                cfg.CircuitBreaker.Buckets,
			RequestVolumeThreshold: cfg.CircuitBreaker.RequestVolumeThreshold,
			ErrorThresholdPercent:  cfg.CircuitBreaker.ErrorThresholdPercent,
			SleepWindow:            cfg.CircuitBreaker.SleepWindow,
		},
	}
}

// withDefaults fills unset settings. A zero MaxQueue is a valid setting and
// only defaults together with MaxConcurrent.
func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = config.DefaultCommandTimeout
	}

	if c.Bulkhead.MaxConcurrent < 1 {
		c.Bulkhead = BulkheadConfig{
			MaxConcurrent: config.DefaultBulkheadMaxConcurrent,
			MaxQueue:      config.DefaultBulkheadMaxQueue,
		}
	}

	b := &c.Breaker
	if b.Window <= 0 {
		b.Window = config.DefaultBreakerWindow
	}
	if b.Buckets < 1 {
		b.Buckets = config.DefaultBreakerBuckets
	}
	if b.RequestVolumeThreshold < 1 {
		b.RequestVolumeThreshold = config.DefaultBreakerRequestVolume
	}
	if b.ErrorThresholdPercent < 1 {
		b.ErrorThresholdPercent = config.DefaultBreakerErrorThreshold
	}
	if b.SleepWindow <= 0 {
		b.SleepWindow = config.DefaultBreakerSleepWindow
	}

	return c
}

// Option customizes a Command.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	metrics  *Metrics
	injector *FaultInjector
	clock    func() time.Time
}

// WithLogger sets the logger used for breaker state changes.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records command events in m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithFaultInjector replaces the injector built from Config.FaultInjection.
func WithFaultInjector(f *FaultInjector) Option {
	return func(o *options) { o.injector = f }
}

// WithClock replaces the breaker's time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.clock = now }
}

// Func is the protected call.
type Func[T any] func(ctx context.Context) (T, error)

// Fallback produces a substitute result. cause is the reason the run
// function's result is unavailable.
type Fallback[T any] func(ctx context.Context, cause error) (T, error)

// Command executes calls to one downstream dependency. A Command is safe for
// concurrent use; all its calls share one breaker and one bulkhead.
type Command[T any] struct {
	name     string
	timeout  time.Duration
	breaker  *clients.CircuitBreaker
	bulkhead *bulkhead
	injector *FaultInjector
	metrics  *Metrics
	logger   *slog.Logger
}

// NewCommand creates a Command.
func NewCommand[T any](cfg Config, opts ...Option) *Command[T] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.injector == nil {
		o.injector = NewFaultInjector(cfg.FaultInjection.Probability, cfg.FaultInjection.Delay, cfg.FaultInjection.Seed)
	}

	cfg = cfg.withDefaults()

	var breakerOpts []clients.BreakerOption
	if o.clock != nil {
		breakerOpts = append(breakerOpts, clients.WithClock(o.clock))
	}

	c := &Command[T]{
		name:     cfg.Name,
		timeout:  cfg.Timeout,
		breaker:  clients.NewCircuitBreaker(cfg.Breaker, breakerOpts...),
		bulkhead: newBulkhead(cfg.Bulkhead.MaxConcurrent, cfg.Bulkhead.MaxQueue),
		injector: o.injector,
		metrics:  o.metrics,
		logger:   o.logger.With(slog.String("component", "resilience.Command"), slog.String("command", cfg.Name)),
	}

	c.breaker.OnStateChange(func(from, to clients.State) {
		c.logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
		c.metrics.setOpen(c.name, to == clients.StateOpen)
	})
	c.metrics.setOpen(c.name, false)

	return c
}

// Name returns the command name.
func (c *Command[T]) Name() string {
	return c.name
}

// BreakerState returns the state of the command's circuit breaker.
func (c *Command[T]) BreakerState() clients.State {
	return c.breaker.State()
}

type result[T any] struct {
	value T
	err   error
}

// Execute runs fn under the command's protections. If fn fails, panics,
// times out, or is rejected, fallback is invoked with the cause and its
// result is returned. A fallback error is wrapped in ErrFallbackFailed. With
// a nil fallback the cause itself is returned.
//
// On timeout fn keeps running in its goroutine with a cancelled context; its
// result is discarded.
//
// When ctx ends before fn returns, the call is abandoned rather than failed:
// the breaker is not charged and the fallback gets the context's cause.
func (c *Command[T]) Execute(ctx context.Context, fn Func[T], fallback Fallback[T]) (T, error) {
	if !c.breaker.Allow() {
		c.metrics.event(c.name, EventShortCircuited)
		return c.fallback(ctx, fallback, ErrBreakerOpen)
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.bulkhead.acquire(runCtx); err != nil {
		if ctx.Err() != nil {
			return c.abandon(ctx, fallback)
		}
		// Rejections count against the breaker so a half-open trial is
		// always resolved.
		c.breaker.RecordFailure()
		if errors.Is(err, ErrBulkheadFull) {
			c.metrics.event(c.name, EventRejected)
			return c.fallback(ctx, fallback, ErrBulkheadFull)
		}
		c.metrics.event(c.name, EventTimeout)
		return c.fallback(ctx, fallback, ErrTimeout)
	}

	done := make(chan result[T], 1)
	go func() {
		defer c.bulkhead.release()
		done <- c.run(runCtx, fn)
	}()

	select {
	case r := <-done:
		if r.err == nil {
			c.breaker.RecordSuccess()
			c.metrics.event(c.name, EventSuccess)
			return r.value, nil
		}
		if errors.Is(r.err, ErrRunPanic) {
			c.breaker.RecordFailure()
			c.metrics.event(c.name, EventPanic)
			return c.fallback(ctx, fallback, r.err)
		}
		if runCtx.Err() == nil {
			c.breaker.RecordFailure()
			c.metrics.event(c.name, EventFailure)
			return c.fallback(ctx, fallback, r.err)
		}
	case <-runCtx.Done():
	}

	if ctx.Err() != nil {
		return c.abandon(ctx, fallback)
	}

	c.breaker.RecordFailure()
	c.metrics.event(c.name, EventTimeout)

	return c.fallback(ctx, fallback, fmt.Errorf("%w after %s", ErrTimeout, c.timeout))
}

// run calls fn after any injected fault. A panic in fn is returned as an
// ErrRunPanic error.
func (c *Command[T]) run(ctx context.Context, fn Func[T]) (r result[T]) {
	defer func() {
		if p := recover(); p != nil {
			c.logger.Error("command run panicked",
				slog.Any("panic", p),
				slog.String("stack", string(debug.Stack())),
			)
			r = result[T]{err: fmt.Errorf("%w: %v", ErrRunPanic, p)}
		}
	}()

	if fired, err := c.injector.Inject(ctx); fired {
		c.metrics.event(c.name, EventFaultInjected)
		if err != nil {
			return result[T]{err: err}
		}
	}

	v, err := fn(ctx)
	return result[T]{value: v, err: err}
}

// abandon ends a call whose caller went away. The breaker admission is
// released unjudged.
func (c *Command[T]) abandon(ctx context.Context, fallback Fallback[T]) (T, error) {
	c.breaker.Release()
	c.metrics.event(c.name, EventCancelled)
	return c.fallback(ctx, fallback, context.Cause(ctx))
}

func (c *Command[T]) fallback(ctx context.Context, fallback Fallback[T], cause error) (T, error) {
	if fallback == nil {
		var zero T
		return zero, cause
	}

	v, err := fallback(ctx, cause)
	if err != nil {
		c.metrics.event(c.name, EventFallbackFailure)
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrFallbackFailed, err)
	}

	c.metrics.event(c.name, EventFallbackSuccess)

	return v, nil
}
