// Package gateway implements the edge router that fronts the licensing and
// organization services. Every request runs through a chain of pre filters,
// is forwarded to an instance resolved from the service directory, and runs
// through the post filters before the response leaves the gateway.
package gateway

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/jsamuelsen/licensing-mesh/internal/app/correlation"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/logging"
)

// Phase selects when a filter runs.
type Phase int

const (
	// PhasePre filters run before the request is routed.
	PhasePre Phase = iota

	// PhasePost filters run after the downstream call returns, on success
	// and failure paths alike.
	PhasePost
)

// String returns the phase name used in logs.
func (p Phase) String() string {
	switch p {
	case PhasePre:
		return "pre"
	case PhasePost:
		return "post"
	default:
		return "unknown"
	}
}

// ErrFilterPanic is reported when a filter panics.
var ErrFilterPanic = errors.New("filter panicked")

// RequestContext is the per-request state handed to filters.
type RequestContext struct {
	// Request is the inbound request. Filters may replace it to enrich its context.
	Request *http.Request

	// UpstreamHeaders are added to the forwarded request.
	UpstreamHeaders http.Header

	// ResponseHeaders are the headers of the response being returned.
	// Nil during the pre phase.
	ResponseHeaders http.Header

	// Route is the matched route, zero when no route matched.
	Route Route

	// Correlation is the request's correlation context.
	Correlation *correlation.Context
}

// NewRequestContext creates the filter state for r, reusing a correlation
// context already attached to it.
func NewRequestContext(r *http.Request) *RequestContext {
	cc := correlation.FromContext(r.Context())
	if cc == nil {
		cc = correlation.New()
		r = r.WithContext(correlation.WithContext(r.Context(), cc))
	}

	return &RequestContext{
		Request:         r,
		UpstreamHeaders: make(http.Header),
		Correlation:     cc,
	}
}

// Filter is a unit of gateway behavior.
type Filter struct {
	Name  string
	Phase Phase

	// Order sorts filters within a phase, lowest first.
	Order int

	// ShouldFilter gates Run. A nil predicate always runs.
	ShouldFilter func(*RequestContext) bool

	Run func(*RequestContext) error
}

// Chain runs filters by phase in ascending order. Filters with the same
// order keep their registration order.
type Chain struct {
	pre  []Filter
	post []Filter
}

// NewChain creates a chain from filters.
func NewChain(filters ...Filter) *Chain {
	c := &Chain{}
	for _, f := range filters {
		switch f.Phase {
		case PhasePre:
			c.pre = append(c.pre, f)
		case PhasePost:
			c.post = append(c.post, f)
		}
	}

	byOrder := func(a, b Filter) int { return cmp.Compare(a.Order, b.Order) }
	slices.SortStableFunc(c.pre, byOrder)
	slices.SortStableFunc(c.post, byOrder)

	return c
}

// Filters returns the filters of phase in execution order.
func (c *Chain) Filters(phase Phase) []Filter {
	if phase == PhasePre {
		return slices.Clone(c.pre)
	}
	return slices.Clone(c.post)
}

// Run executes the filters of phase against rc. The first error or panic
// is logged and stops the remaining filters of the pass; it is returned
// so the caller can note it, but the request is expected to continue.
func (c *Chain) Run(phase Phase, rc *RequestContext) error {
	filters := c.pre
	if phase == PhasePost {
		filters = c.post
	}

	for _, f := range filters {
		if f.ShouldFilter != nil && !f.ShouldFilter(rc) {
			continue
		}

		if err := runFilter(f, rc); err != nil {
			ctx := rc.Request.Context()
			logging.FromContext(ctx).ErrorContext(ctx, "gateway filter failed",
				slog.String("filter", f.Name),
				slog.String("phase", phase.String()),
				slog.Any("error", err),
			)
			return fmt.Errorf("%s filter %s: %w", phase, f.Name, err)
		}
	}

	return nil
}

func runFilter(f Filter, rc *RequestContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrFilterPanic, r)
		}
	}()

	if f.Run == nil {
		return nil
	}

	return f.Run(rc)
}
