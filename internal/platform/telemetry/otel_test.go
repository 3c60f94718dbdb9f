package telemetry

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNew_DisabledIsNoop(t *testing.T) {
	p, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestInjectHeaders_ForwardsTraceContext(t *testing.T) {
	// Disabled telemetry still installs the propagator
	_, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "gateway")
	defer span.End()

	h := http.Header{}
	InjectHeaders(ctx, h)

	traceparent := h.Get("traceparent")
	require.NotEmpty(t, traceparent)
	assert.Contains(t, traceparent, span.SpanContext().TraceID().String())
}

func TestInjectHeaders_NoSpan(t *testing.T) {
	_, err := New(context.Background(), &Config{Enabled: false})
	require.NoError(t, err)

	h := http.Header{}
	InjectHeaders(context.Background(), h)

	assert.Empty(t, h.Get("traceparent"))
}

func TestCorrelationAttr(t *testing.T) {
	kv := CorrelationAttr("abc123")

	assert.Equal(t, AttrCorrelationID, string(kv.Key))
	assert.Equal(t, "abc123", kv.Value.AsString())
}

func TestProvider_ShutdownReverseOrder(t *testing.T) {
	var order []string
	stop := func(name string, err error) func(context.Context) error {
		return func(ctx context.Context) error {
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			order = append(order, name)
			return err
		}
	}

	p := &Provider{shutdowns: []func(context.Context) error{
		stop("tracer", nil),
		stop("meter", errors.New("collector unreachable")),
	}}
	require.True(t, p.Enabled())

	err := p.Shutdown(context.Background())
	require.ErrorContains(t, err, "collector unreachable")
	assert.Equal(t, []string{"meter", "tracer"}, order)

	assert.False(t, p.Enabled())
	assert.NoError(t, p.Shutdown(context.Background()), "second shutdown is a noop")
}
