package clients

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http/middleware"
	"github.com/jsamuelsen/licensing-mesh/internal/app/correlation"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/config"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/licensing-mesh/internal/adapters/clients"

	defaultTimeout      = 30 * time.Second
	defaultJitterFactor = 0.25

	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second
)

// propagatedHeaders are the user context keys copied onto every outbound
// request. The user and org ids stay inside the service that received them.
var propagatedHeaders = []string{correlation.KeyCorrelationID, correlation.KeyAuthToken}

// Config configures a Client.
type Config struct {
	// BaseURL prefixes relative paths, e.g. "http://127.0.0.1:8081".
	// Ignored when Resolver is set.
	BaseURL string

	// Resolver picks the base URL for every request.
	Resolver Resolver

	// ServiceName is the logical downstream name used in logs, spans and
	// metrics. Required.
	ServiceName string

	// Timeout bounds a single attempt. Retries and backoff come on top.
	Timeout time.Duration

	Retry     config.RetryConfig
	Transport config.TransportConfig

	// Breaker enables a client-level circuit breaker. Resilience commands
	// normally own the breaker, so it is nil for most clients.
	Breaker *CircuitBreakerConfig

	Logger *slog.Logger
}

// Client sends requests to one downstream service. Every call is traced,
// measured, and stamped with the caller's request id and user context.
// Transport failures and 5xx responses are retried with jittered
// exponential backoff; 4xx responses are returned to the caller as is.
type Client struct {
	http     *http.Client
	baseURL  string
	resolver Resolver
	service  string
	retry    config.RetryConfig
	logger   *slog.Logger
	cb       *CircuitBreaker

	tracer   trace.Tracer
	duration metric.Float64Histogram
	total    metric.Int64Counter
}

// New creates a Client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("client config is required")
	}
	if cfg.ServiceName == "" {
		return nil, errors.New("client service name is required")
	}

	retry := cfg.Retry
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = config.DefaultClientRetryMaxAttempts
	}

	logger := cmp.Or(cfg.Logger, slog.Default()).With(
		slog.String("component", "clients.Client"),
		slog.String("downstream", cfg.ServiceName),
	)

	meter := otel.Meter(instrumentationName)
	duration, durErr := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Duration of HTTP client requests"),
		metric.WithUnit("s"),
	)
	total, totErr := meter.Int64Counter("http.client.request.total",
		metric.WithDescription("Total number of HTTP client requests"),
	)
	if err := errors.Join(durErr, totErr); err != nil {
		return nil, fmt.Errorf("creating client instruments: %w", err)
	}

	c := &Client{
		http: &http.Client{
			Timeout:   cmp.Or(cfg.Timeout, defaultTimeout),
			Transport: newTransport(cfg.Transport),
		},
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		resolver: cfg.Resolver,
		service:  cfg.ServiceName,
		retry:    retry,
		logger:   logger,
		tracer:   otel.Tracer(instrumentationName),
		duration: duration,
		total:    total,
	}

	if cfg.Breaker != nil {
		c.cb = NewCircuitBreaker(*cfg.Breaker)
		c.cb.OnStateChange(func(from, to State) {
			logger.Warn("circuit breaker state changed",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		})
	}

	return c, nil
}

// ServiceName returns the downstream service this client talks to.
func (c *Client) ServiceName() string {
	return c.service
}

// CircuitState reports the client-level breaker. Without one it is always
// StateClosed.
func (c *Client) CircuitState() State {
	if c.cb == nil {
		return StateClosed
	}
	return c.cb.State()
}

// Get sends a GET for path.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	return c.Request(ctx, http.MethodGet, path, nil)
}

// Request sends method to path. A non-nil body is sent as JSON; retries
// replay it only when it is one of the in-memory readers net/http can
// rewind.
func (c *Client) Request(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	target, err := c.buildURL(ctx, path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, cmp.Or[io.Reader](body, http.NoBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.Do(ctx, req)
}

// Do sends a prepared request. On success the caller owns the response body.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := time.Now()
	logger := logging.FromContextOr(ctx, c.logger).With(
		slog.String("downstream", c.service),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if c.cb != nil && !c.cb.Allow() {
		c.observe(ctx, req.Method, 0, start, "circuit_open")
		logger.Warn("request blocked by circuit breaker")
		return nil, fmt.Errorf("%s: %w", c.service, ErrCircuitOpen)
	}

	ctx, span := c.tracer.Start(ctx, "HTTP "+req.Method+" "+c.service,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", c.service),
		),
	)
	defer span.End()

	c.stamp(ctx, req)

	resp, err := c.send(ctx, req, logger)
	c.recordBreaker(ctx, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.observe(ctx, req.Method, 0, start, outcome(ctx))
		logger.Error("request failed",
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, resp.Status)
	}
	c.observe(ctx, req.Method, resp.StatusCode, start, fmt.Sprintf("%dxx", resp.StatusCode/100))

	logger.Debug("request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	return resp, nil
}

// send runs the attempt loop. Transport errors the caller did not cause and
// 5xx responses are retried; once attempts run out the last failure is
// wrapped in ErrMaxRetriesExceeded.
func (c *Client) send(ctx context.Context, req *http.Request, logger *slog.Logger) (*http.Response, error) {
	var last error

	for attempt := range c.retry.MaxAttempts {
		if attempt > 0 {
			if err := c.pause(ctx, attempt, logger); err != nil {
				return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
			}
			if err := rewind(req); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, errors.Join(last, err))
			}
		}

		resp, err := c.http.Do(req.WithContext(ctx))
		switch {
		case err != nil && !retryable(ctx, err):
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
		case err != nil:
			last = err
		case resp.StatusCode >= http.StatusInternalServerError:
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			last = fmt.Errorf("server error: %s", resp.Status)
		default:
			return resp, nil
		}

		logger.Debug("attempt failed", slog.Int("attempt", attempt+1), slog.Any("error", last))
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrMaxRetriesExceeded, c.retry.MaxAttempts, last)
}

func (c *Client) pause(ctx context.Context, attempt int, logger *slog.Logger) error {
	wait := c.backoff(attempt)
	logger.Debug("retrying request", slog.Int("attempt", attempt+1), slog.Duration("backoff", wait))

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// backoff is InitialInterval * Multiplier^attempt, capped at MaxInterval
// and spread by the jitter factor in both directions.
func (c *Client) backoff(attempt int) time.Duration {
	r := c.retry
	d := float64(r.InitialInterval) * math.Pow(r.Multiplier, float64(attempt))
	if r.MaxInterval > 0 {
		d = min(d, float64(r.MaxInterval))
	}

	spread := cmp.Or(r.JitterFactor, defaultJitterFactor)
	return time.Duration(d * (1 + spread*(2*rand.Float64()-1))) //nolint:gosec // jitter only
}

// stamp copies the request id, propagated user context keys and trace
// context onto req.
func (c *Client) stamp(ctx context.Context, req *http.Request) {
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.HeaderRequestID, id)
	}

	if uc := correlation.FromContext(ctx); uc != nil {
		for _, key := range propagatedHeaders {
			if v := uc.Get(key); v != "" {
				req.Header.Set(key, v)
			}
		}
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
}

// buildURL joins the base URL and path. Absolute URLs pass through; with a
// Resolver the base is looked up for this call only.
func (c *Client) buildURL(ctx context.Context, path string) (string, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path, nil
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	base := c.baseURL
	if c.resolver != nil {
		resolved, err := c.resolver.Resolve(ctx)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", c.service, err)
		}
		base = strings.TrimSuffix(resolved, "/")
	}

	if base == "" {
		return "", fmt.Errorf("%s %s: %w", c.service, path, ErrNoBaseURL)
	}

	return base + path, nil
}

// recordBreaker reports the outcome of a call to the breaker. A call cut
// short by the caller's context is released instead of counted.
func (c *Client) recordBreaker(ctx context.Context, err error) {
	switch {
	case c.cb == nil:
	case err == nil:
		c.cb.RecordSuccess()
	case ctx.Err() != nil:
		c.cb.Release()
	default:
		c.cb.RecordFailure()
	}
}

func (c *Client) observe(ctx context.Context, method string, status int, start time.Time, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.service),
		attribute.String("result", result),
	}
	if status > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", status))
	}

	set := metric.WithAttributes(attrs...)
	c.duration.Record(ctx, time.Since(start).Seconds(), set)
	c.total.Add(ctx, 1, set)
}

func outcome(ctx context.Context) string {
	if ctx.Err() != nil {
		return "context_canceled"
	}
	return "error"
}

// retryable reports whether a transport error is worth another attempt.
// Once the caller's context is done nothing is retried; per-attempt
// timeouts and connection failures are.
func retryable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// rewind resets the body for another attempt.
func rewind(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	if req.GetBody == nil {
		return errors.New("request body cannot be replayed")
	}

	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("replaying request body: %w", err)
	}
	req.Body = body
	return nil
}

func newTransport(cfg config.TransportConfig) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // stdlib default
	t.MaxIdleConns = cmp.Or(cfg.MaxIdleConns, defaultMaxIdleConns)
	t.MaxIdleConnsPerHost = cmp.Or(cfg.MaxIdleConnsPerHost, defaultMaxIdleConnsPerHost)
	t.IdleConnTimeout = cmp.Or(cfg.IdleConnTimeout, defaultIdleConnTimeout)
	return t
}
