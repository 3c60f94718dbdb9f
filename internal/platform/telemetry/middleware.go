package telemetry

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/licensing-mesh/internal/app/correlation"
)

const (
	instrumentationName = "github.com/jsamuelsen/licensing-mesh/telemetry"

	// AttrCorrelationID is the span attribute holding the correlation id.
	AttrCorrelationID = "correlation.id"

	// HeaderTraceID echoes the trace id to callers.
	HeaderTraceID = "X-Trace-ID"
)

// Metrics are the per-request instruments shared by the gateway and the
// backend services. Every data point is tagged with the service name.
type Metrics struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	inflight metric.Int64UpDownCounter
}

// NewMetrics registers the instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	duration, errDuration := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
	)
	requests, errRequests := meter.Int64Counter("http.server.request.total",
		metric.WithDescription("HTTP requests served"),
	)
	inflight, errInflight := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("HTTP requests in flight"),
	)

	if err := errors.Join(errDuration, errRequests, errInflight); err != nil {
		return nil, err
	}

	return &Metrics{duration: duration, requests: requests, inflight: inflight}, nil
}

// Middleware records request metrics, echoes the trace id and tags the
// server span with the request's correlation id. It must run after
// TracingMiddleware and UserContext.
func Middleware(serviceName string) gin.HandlerFunc {
	metrics, err := NewMetrics()
	if err != nil {
		otel.Handle(err)
	}

	service := attribute.String("service.name", serviceName)

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()

		base := []attribute.KeyValue{
			service,
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", c.FullPath()),
		}

		if metrics != nil {
			metrics.inflight.Add(ctx, 1, metric.WithAttributes(base...))
			defer metrics.inflight.Add(ctx, -1, metric.WithAttributes(base...))
		}

		// The header has to be set before the handler writes the response.
		span := trace.SpanFromContext(ctx)
		if sc := span.SpanContext(); sc.HasTraceID() {
			c.Header(HeaderTraceID, sc.TraceID().String())
		}

		c.Next()

		if id := correlation.IDFromContext(c.Request.Context()); id != "" {
			span.SetAttributes(CorrelationAttr(id))
		}

		if metrics != nil {
			done := metric.WithAttributes(append(base, attribute.Int("http.status_code", c.Writer.Status()))...)
			metrics.duration.Record(ctx, time.Since(start).Seconds(), done)
			metrics.requests.Add(ctx, 1, done)
		}
	}
}

// TracingMiddleware starts a server span per request, continuing the trace
// the gateway forwarded. It must run before Middleware.
func TracingMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}
