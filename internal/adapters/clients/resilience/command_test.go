package resilience

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/clients"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/config"
)

// fakeClock is a manually advanced time source for the breaker.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testConfig() Config {
	return Config{
		Name:    "getOrganization",
		Timeout: time.Second,
		Bulkhead: BulkheadConfig{
			MaxConcurrent: 30,
			MaxQueue:      10,
		},
		Breaker: clients.CircuitBreakerConfig{
			Window:                 15 * time.Second,
			Buckets:                5,
			RequestVolumeThreshold: 10,
			ErrorThresholdPercent:  75,
			SleepWindow:            7 * time.Second,
		},
	}
}

func fallbackValue(value string) Fallback[string] {
	return func(context.Context, error) (string, error) {
		return value, nil
	}
}

func succeed(value string) Func[string] {
	return func(context.Context) (string, error) {
		return value, nil
	}
}

func fail(err error) Func[string] {
	return func(context.Context) (string, error) {
		return "", err
	}
}

func TestCommand_Success(t *testing.T) {
	cmd := NewCommand[string](testConfig())

	got, err := cmd.Execute(context.Background(), succeed("org"), fallbackValue("fallback"))

	require.NoError(t, err)
	assert.Equal(t, "org", got)
	assert.Equal(t, "getOrganization", cmd.Name())
}

func TestCommand_DownstreamErrorUsesFallback(t *testing.T) {
	cmd := NewCommand[string](testConfig())
	downstream := errors.New("connection refused")

	var cause error
	got, err := cmd.Execute(context.Background(), fail(downstream), func(_ context.Context, c error) (string, error) {
		cause = c
		return "fallback", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
	assert.ErrorIs(t, cause, downstream)
}

func TestCommand_TimeoutUsesFallbackWithinBudget(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 50 * time.Millisecond
	cmd := NewCommand[string](cfg)

	released := make(chan struct{})
	slow := func(context.Context) (string, error) {
		// Ignores cancellation; the command must not wait for it.
		<-released
		return "late", nil
	}
	defer close(released)

	var cause error
	start := time.Now()
	got, err := cmd.Execute(context.Background(), slow, func(_ context.Context, c error) (string, error) {
		cause = c
		return "fallback", nil
	})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
	assert.ErrorIs(t, cause, ErrTimeout)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestCommand_TimeoutCancelsRunContext(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	cmd := NewCommand[string](cfg)

	cancelled := make(chan struct{})
	run := func(ctx context.Context) (string, error) {
		<-ctx.Done()
		close(cancelled)
		return "", ctx.Err()
	}

	got, err := cmd.Execute(context.Background(), run, fallbackValue("fallback"))
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("run context was not cancelled")
	}
}

func TestCommand_NilFallbackReturnsCause(t *testing.T) {
	cmd := NewCommand[string](testConfig())
	downstream := errors.New("boom")

	_, err := cmd.Execute(context.Background(), fail(downstream), nil)

	assert.ErrorIs(t, err, downstream)
}

func TestCommand_FallbackFailure(t *testing.T) {
	cmd := NewCommand[string](testConfig())
	fbErr := errors.New("no cached value")

	_, err := cmd.Execute(context.Background(), fail(errors.New("boom")), func(context.Context, error) (string, error) {
		return "", fbErr
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFallbackFailed)
	assert.ErrorIs(t, err, fbErr)
}

func TestCommand_FaultInjectionForcesTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 50 * time.Millisecond
	cfg.FaultInjection = FaultInjectionConfig{Probability: 1, Delay: 11 * time.Second, Seed: 7}
	cmd := NewCommand[string](cfg)

	var runs atomic.Int32
	run := func(context.Context) (string, error) {
		runs.Add(1)
		return "org", nil
	}

	var cause error
	start := time.Now()
	got, err := cmd.Execute(context.Background(), run, func(_ context.Context, c error) (string, error) {
		cause = c
		return "fallback", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
	assert.ErrorIs(t, cause, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
	assert.Zero(t, runs.Load(), "the injected delay runs before the real call")
}

func TestCommand_BreakerOpensAndShortCircuits(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	cmd := NewCommand[string](testConfig(), WithClock(clock.Now))

	var calls atomic.Int32
	failing := func(context.Context) (string, error) {
		calls.Add(1)
		return "", errors.New("down")
	}

	// 3 successes + 9 failures: 75% of 12
	for range 3 {
		_, err := cmd.Execute(context.Background(), succeed("org"), fallbackValue("fallback"))
		require.NoError(t, err)
	}
	for range 9 {
		_, err := cmd.Execute(context.Background(), failing, fallbackValue("fallback"))
		require.NoError(t, err)
	}
	require.Equal(t, clients.StateOpen, cmd.BreakerState())
	require.Equal(t, int32(9), calls.Load())

	var cause error
	got, err := cmd.Execute(context.Background(), failing, func(_ context.Context, c error) (string, error) {
		cause = c
		return "fallback", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
	assert.ErrorIs(t, cause, ErrBreakerOpen)
	assert.Equal(t, int32(9), calls.Load(), "open breaker must not call downstream")

	// After the sleep window one trial goes through and closes the breaker
	clock.Advance(7 * time.Second)
	got, err = cmd.Execute(context.Background(), succeed("org"), fallbackValue("fallback"))
	require.NoError(t, err)
	assert.Equal(t, "org", got)
	assert.Equal(t, clients.StateClosed, cmd.BreakerState())
}

func TestCommand_HalfOpenAdmitsSingleTrial(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	cmd := NewCommand[string](testConfig(), WithClock(clock.Now))

	for range 10 {
		_, _ = cmd.Execute(context.Background(), fail(errors.New("down")), fallbackValue("fallback"))
	}
	require.Equal(t, clients.StateOpen, cmd.BreakerState())

	clock.Advance(7 * time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	trial := func(context.Context) (string, error) {
		close(started)
		<-release
		return "org", nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var trialResult string
	go func() {
		defer wg.Done()
		trialResult, _ = cmd.Execute(context.Background(), trial, fallbackValue("fallback"))
	}()
	<-started

	var concurrentCalls atomic.Int32
	got, err := cmd.Execute(context.Background(), func(context.Context) (string, error) {
		concurrentCalls.Add(1)
		return "org", nil
	}, fallbackValue("fallback"))
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
	assert.Zero(t, concurrentCalls.Load())

	close(release)
	wg.Wait()

	assert.Equal(t, "org", trialResult)
	assert.Equal(t, clients.StateClosed, cmd.BreakerState())
}

func TestCommand_CallerCancelDoesNotTripBreaker(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	cmd := NewCommand[string](testConfig(), WithClock(clock.Now))

	waitForCaller := func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	for range 10 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)

		var cause error
		got, err := cmd.Execute(ctx, waitForCaller, func(_ context.Context, c error) (string, error) {
			cause = c
			return "fallback", nil
		})
		cancel()

		require.NoError(t, err)
		assert.Equal(t, "fallback", got)
		assert.ErrorIs(t, cause, context.DeadlineExceeded)
		assert.NotErrorIs(t, cause, ErrTimeout)
	}

	assert.Equal(t, clients.StateClosed, cmd.BreakerState())
	total, failures := cmd.breaker.Counts()
	assert.Zero(t, total)
	assert.Zero(t, failures)

	got, err := cmd.Execute(context.Background(), succeed("org"), fallbackValue("fallback"))
	require.NoError(t, err)
	assert.Equal(t, "org", got)
}

func TestCommand_CallerCancelReleasesHalfOpenTrial(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	cmd := NewCommand[string](testConfig(), WithClock(clock.Now))

	for range 10 {
		_, _ = cmd.Execute(context.Background(), fail(errors.New("down")), fallbackValue("fallback"))
	}
	require.Equal(t, clients.StateOpen, cmd.BreakerState())
	clock.Advance(7 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	go func() {
		<-started
		cancel()
	}()

	_, err := cmd.Execute(ctx, func(ctx context.Context) (string, error) {
		close(started)
		<-ctx.Done()
		return "", ctx.Err()
	}, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, clients.StateHalfOpen, cmd.BreakerState(), "an abandoned trial is not judged")

	got, err := cmd.Execute(context.Background(), succeed("org"), fallbackValue("fallback"))
	require.NoError(t, err)
	assert.Equal(t, "org", got, "the next caller becomes the trial")
	assert.Equal(t, clients.StateClosed, cmd.BreakerState())
}

func TestCommand_PanicUsesFallback(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	cmd := NewCommand[string](testConfig(), WithMetrics(metrics))

	panicking := func(context.Context) (string, error) {
		var counts map[string]int
		counts["org"]++
		return "org", nil
	}

	var cause error
	got, err := cmd.Execute(context.Background(), panicking, func(_ context.Context, c error) (string, error) {
		cause = c
		return "fallback", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
	assert.ErrorIs(t, cause, ErrRunPanic)
	assert.ErrorContains(t, cause, "nil map")

	_, failures := cmd.breaker.Counts()
	assert.Equal(t, 1, failures)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.events.WithLabelValues("getOrganization", EventPanic)), 0)

	got, err = cmd.Execute(context.Background(), succeed("org"), nil)
	require.NoError(t, err)
	assert.Equal(t, "org", got)
}

func TestCommand_PanicsOpenBreaker(t *testing.T) {
	cmd := NewCommand[string](testConfig())

	for range 10 {
		_, err := cmd.Execute(context.Background(), func(context.Context) (string, error) {
			panic("boom")
		}, nil)
		require.ErrorIs(t, err, ErrRunPanic)
	}

	assert.Equal(t, clients.StateOpen, cmd.BreakerState())
}

func TestCommand_CircuitGaugeFollowsTransitions(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	clock := &fakeClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	cmd := NewCommand[string](testConfig(), WithMetrics(metrics), WithClock(clock.Now))
	gauge := metrics.circuitOpen.WithLabelValues("getOrganization")

	for range 20 {
		for range 10 {
			_, _ = cmd.Execute(context.Background(), fail(errors.New("down")), fallbackValue("fallback"))
		}
		require.InDelta(t, 1, testutil.ToFloat64(gauge), 0)

		clock.Advance(7 * time.Second)
		_, err := cmd.Execute(context.Background(), succeed("org"), nil)
		require.NoError(t, err)
		require.InDelta(t, 0, testutil.ToFloat64(gauge), 0, "a closed breaker never reads as open")
	}
}

func TestCommand_BulkheadRejects(t *testing.T) {
	cfg := testConfig()
	cfg.Bulkhead = BulkheadConfig{MaxConcurrent: 1, MaxQueue: 0}
	cmd := NewCommand[string](cfg)

	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = cmd.Execute(context.Background(), func(context.Context) (string, error) {
			close(started)
			<-release
			return "org", nil
		}, fallbackValue("fallback"))
	}()
	<-started

	var cause error
	got, err := cmd.Execute(context.Background(), succeed("org"), func(_ context.Context, c error) (string, error) {
		cause = c
		return "fallback", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "fallback", got)
	assert.ErrorIs(t, cause, ErrBulkheadFull)

	close(release)
	wg.Wait()
}

func TestCommand_BulkheadQueues(t *testing.T) {
	cfg := testConfig()
	cfg.Bulkhead = BulkheadConfig{MaxConcurrent: 1, MaxQueue: 1}
	cmd := NewCommand[string](cfg)

	release := make(chan struct{})
	started := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = cmd.Execute(context.Background(), func(context.Context) (string, error) {
			close(started)
			<-release
			return "org", nil
		}, fallbackValue("fallback"))
	}()
	<-started

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(release)
	}()

	got, err := cmd.Execute(context.Background(), succeed("queued"), fallbackValue("fallback"))
	require.NoError(t, err)
	assert.Equal(t, "queued", got, "the queued call runs once the slot frees")

	wg.Wait()
}

func TestCommand_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := NewMetrics(reg)
	require.NoError(t, err)

	cmd := NewCommand[string](testConfig(), WithMetrics(metrics))

	_, _ = cmd.Execute(context.Background(), succeed("org"), fallbackValue("fallback"))
	_, _ = cmd.Execute(context.Background(), fail(errors.New("down")), fallbackValue("fallback"))

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.events.WithLabelValues("getOrganization", EventSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.events.WithLabelValues("getOrganization", EventFailure)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.events.WithLabelValues("getOrganization", EventFallbackSuccess)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.circuitOpen.WithLabelValues("getOrganization")), 0)
}

func TestNewMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()

	first, err := NewMetrics(reg)
	require.NoError(t, err)
	second, err := NewMetrics(reg)
	require.NoError(t, err)

	assert.Same(t, first.events, second.events)
	assert.Same(t, first.circuitOpen, second.circuitOpen)
}

func TestNewCommand_DefaultTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.Timeout = 0

	cmd := NewCommand[string](cfg)

	assert.Equal(t, config.DefaultCommandTimeout, cmd.timeout)
}

func TestConfig_WithDefaults(t *testing.T) {
	got := Config{Name: "bare"}.withDefaults()

	assert.Equal(t, config.DefaultCommandTimeout, got.Timeout)
	assert.Equal(t, BulkheadConfig{
		MaxConcurrent: config.DefaultBulkheadMaxConcurrent,
		MaxQueue:      config.DefaultBulkheadMaxQueue,
	}, got.Bulkhead)
	assert.Equal(t, clients.CircuitBreakerConfig{
		Window:                 config.DefaultBreakerWindow,
		Buckets:                config.DefaultBreakerBuckets,
		RequestVolumeThreshold: config.DefaultBreakerRequestVolume,
		ErrorThresholdPercent:  config.DefaultBreakerErrorThreshold,
		SleepWindow:            config.DefaultBreakerSleepWindow,
	}, got.Breaker)

	// An explicit zero queue is kept
	kept := Config{Bulkhead: BulkheadConfig{MaxConcurrent: 1}}.withDefaults()
	assert.Equal(t, BulkheadConfig{MaxConcurrent: 1}, kept.Bulkhead)
}

func TestConfigFrom(t *testing.T) {
	got := ConfigFrom("getOrganization", config.CommandConfig{
		Timeout: 15 * time.Second,
		FaultInjection: config.FaultInjectionConfig{
			Probability: 0.33,
			Delay:       11 * time.Second,
			Seed:        9,
		},
		Bulkhead: config.BulkheadConfig{MaxConcurrent: 30, MaxQueue: 10},
		CircuitBreaker: config.CircuitBreakerConfig{
			Window:                 15 * time.Second,
			Buckets:                5,
			RequestVolumeThreshold: 10,
			ErrorThresholdPercent:  75,
			SleepWindow:            7 * time.Second,
		},
	})

	assert.Equal(t, "getOrganization", got.Name)
	assert.Equal(t, 15*time.Second, got.Timeout)
	assert.Equal(t, FaultInjectionConfig{Probability: 0.33, Delay: 11 * time.Second, Seed: 9}, got.FaultInjection)
	assert.Equal(t, BulkheadConfig{MaxConcurrent: 30, MaxQueue: 10}, got.Bulkhead)
	assert.Equal(t, 75, got.Breaker.ErrorThresholdPercent)
	assert.Equal(t, 7*time.Second, got.Breaker.SleepWindow)
}

func TestConfigFrom_EnrichmentInheritsDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "base.yaml"), []byte(`
resilience:
  default:
    bulkhead:
      max_concurrent: 4
      max_queue: 2
    circuit_breaker:
      request_volume_threshold: 2
      sleep_window: 3s
`), 0o600))

	loaded, err := config.Load("", config.WithDir(dir))
	require.NoError(t, err)

	cfg := ConfigFrom("license-enrichment", loaded.Resilience.Enrichment)
	assert.Equal(t, config.DefaultEnrichmentTimeout, cfg.Timeout)
	assert.Equal(t, BulkheadConfig{MaxConcurrent: 4, MaxQueue: 2}, cfg.Bulkhead)
	assert.Equal(t, 3*time.Second, cfg.Breaker.SleepWindow)

	clock := &fakeClock{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)}
	cmd := NewCommand[string](cfg, WithClock(clock.Now))

	for range 2 {
		_, _ = cmd.Execute(context.Background(), fail(errors.New("down")), nil)
	}
	require.Equal(t, clients.StateOpen, cmd.BreakerState(), "inherited volume threshold applies")

	clock.Advance(3 * time.Second)
	got, err := cmd.Execute(context.Background(), succeed("org"), nil)
	require.NoError(t, err)
	assert.Equal(t, "org", got, "inherited sleep window applies")
}
