package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"slices"
	"strings"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http/dto"
	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http/middleware"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/config"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/logging"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/telemetry"
	"github.com/jsamuelsen/licensing-mesh/internal/ports"
)

// ErrNoRoute is reported when no route matches the request path.
var ErrNoRoute = errors.New("no route for path")

// Route maps a path prefix to a logical service.
type Route struct {
	Prefix      string
	ServiceID   string
	StripPrefix bool
}

// Matches reports whether path falls under the route's prefix.
func (r Route) Matches(path string) bool {
	if !strings.HasPrefix(path, r.Prefix) {
		return false
	}
	rest := path[len(r.Prefix):]
	return rest == "" || rest[0] == '/'
}

// UpstreamPath returns the path forwarded to the service.
func (r Route) UpstreamPath(path string) string {
	if !r.StripPrefix {
		return path
	}

	rest := strings.TrimPrefix(path, r.Prefix)
	if rest == "" {
		return "/"
	}
	return rest
}

// RoutesFromConfig converts configured routes.
func RoutesFromConfig(cfgs []config.RouteConfig) []Route {
	routes := make([]Route, 0, len(cfgs))
	for _, rc := range cfgs {
		routes = append(routes, Route{
			Prefix:      strings.TrimSuffix(rc.Prefix, "/"),
			ServiceID:   rc.ServiceID,
			StripPrefix: rc.StripPrefix,
		})
	}
	return routes
}

// Config holds the gateway dependencies.
type Config struct {
	Routes    []Route
	Directory ports.ServiceDirectory
	Chain     *Chain

	// Transport is used for upstream calls. Defaults to http.DefaultTransport.
	Transport http.RoundTripper

	Logger *slog.Logger
}

// Gateway routes inbound requests to service instances through the filter chain.
type Gateway struct {
	routes    []Route
	directory ports.ServiceDirectory
	chain     *Chain
	proxy     *httputil.ReverseProxy
	logger    *slog.Logger
}

type ctxKey struct{}

// upstream is the per-request forwarding state carried on the request context.
type upstream struct {
	rc     *RequestContext
	target *url.URL
	path   string
}

// New creates a gateway. Routes are matched longest prefix first.
func New(cfg Config) *Gateway {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	chain := cfg.Chain
	if chain == nil {
		chain = NewChain()
	}

	routes := slices.Clone(cfg.Routes)
	slices.SortStableFunc(routes, func(a, b Route) int {
		return len(b.Prefix) - len(a.Prefix)
	})

	g := &Gateway{
		routes:    routes,
		directory: cfg.Directory,
		chain:     chain,
		logger:    logger.With(slog.String("component", "gateway")),
	}

	g.proxy = &httputil.ReverseProxy{
		Rewrite:        g.rewrite,
		ModifyResponse: g.modifyResponse,
		ErrorHandler:   g.proxyError,
		Transport:      cfg.Transport,
	}

	return g
}

// Routes returns the configured routes in match order.
func (g *Gateway) Routes() []Route {
	return slices.Clone(g.routes)
}

// ServeHTTP runs the pre filters, resolves the upstream instance and proxies
// the request. The post filters run on every outcome before the response is
// written.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := NewRequestContext(r)

	// Filter failures are logged by the chain and never stop the request.
	_ = g.chain.Run(PhasePre, rc)

	if id := middleware.RequestIDFromContext(rc.Request.Context()); id != "" {
		rc.UpstreamHeaders.Set(middleware.HeaderRequestID, id)
	}

	route, ok := g.match(rc.Request.URL.Path)
	if !ok {
		g.fail(w, rc, http.StatusNotFound, dto.ErrorCodeNotFound,
			fmt.Sprintf("%s: %s", ErrNoRoute, rc.Request.URL.Path))
		return
	}
	rc.Route = route

	target, err := g.resolve(rc.Request.Context(), route.ServiceID)
	if err != nil {
		ctx := rc.Request.Context()
		logging.FromContext(ctx).WarnContext(ctx, "no upstream instance",
			slog.String("service", route.ServiceID),
			slog.Any("error", err),
		)
		g.fail(w, rc, http.StatusServiceUnavailable, dto.ErrorCodeUnavailable,
			fmt.Sprintf("no instance of %s available", route.ServiceID))
		return
	}

	up := &upstream{rc: rc, target: target, path: route.UpstreamPath(rc.Request.URL.Path)}
	req := rc.Request.WithContext(context.WithValue(rc.Request.Context(), ctxKey{}, up))

	g.proxy.ServeHTTP(w, req)
}

func (g *Gateway) match(path string) (Route, bool) {
	for _, r := range g.routes {
		if r.Matches(path) {
			return r, true
		}
	}
	return Route{}, false
}

// resolve looks the service up on every request and takes the first instance.
func (g *Gateway) resolve(ctx context.Context, serviceID string) (*url.URL, error) {
	if g.directory == nil {
		return nil, fmt.Errorf("resolving %s: no service directory", serviceID)
	}

	instances, err := g.directory.Lookup(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", serviceID, err)
	}
	if len(instances) == 0 {
		return nil, fmt.Errorf("resolving %s: no instances", serviceID)
	}

	target, err := url.Parse(instances[0].URI())
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", serviceID, err)
	}

	return target, nil
}

func (g *Gateway) rewrite(pr *httputil.ProxyRequest) {
	up, _ := pr.In.Context().Value(ctxKey{}).(*upstream)
	if up == nil {
		return
	}

	pr.Out.URL.Scheme = up.target.Scheme
	pr.Out.URL.Host = up.target.Host
	pr.Out.URL.Path = up.path
	pr.Out.URL.RawPath = ""
	pr.Out.Host = up.target.Host
	pr.SetXForwarded()

	for key, values := range up.rc.UpstreamHeaders {
		pr.Out.Header[key] = slices.Clone(values)
	}

	telemetry.InjectHeaders(pr.In.Context(), pr.Out.Header)
}

func (g *Gateway) modifyResponse(resp *http.Response) error {
	up, _ := resp.Request.Context().Value(ctxKey{}).(*upstream)
	if up == nil {
		return nil
	}

	up.rc.ResponseHeaders = resp.Header
	_ = g.chain.Run(PhasePost, up.rc)

	return nil
}

func (g *Gateway) proxyError(w http.ResponseWriter, r *http.Request, err error) {
	up, _ := r.Context().Value(ctxKey{}).(*upstream)
	if up == nil {
		dto.WriteError(w, http.StatusBadGateway, dto.ErrorCodeBadGateway, "upstream request failed", "")
		return
	}

	ctx := up.rc.Request.Context()
	logging.FromContext(ctx).ErrorContext(ctx, "upstream request failed",
		slog.String("service", up.rc.Route.ServiceID),
		slog.String("target", up.target.String()),
		slog.Any("error", err),
	)

	g.fail(w, up.rc, http.StatusBadGateway, dto.ErrorCodeBadGateway,
		fmt.Sprintf("upstream %s request failed", up.rc.Route.ServiceID))
}

// fail runs the post filters against w's headers and writes an error envelope.
func (g *Gateway) fail(w http.ResponseWriter, rc *RequestContext, status int, code, message string) {
	rc.ResponseHeaders = w.Header()
	_ = g.chain.Run(PhasePost, rc)

	traceID := rc.Correlation.CorrelationID()
	if traceID == "" {
		traceID = middleware.RequestIDFromContext(rc.Request.Context())
	}

	dto.WriteError(w, status, code, message, traceID)
}
