package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http/gateway"
	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http/handlers"
	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http/middleware"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/config"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/telemetry"
)

// DefaultRequestTimeout bounds /v1 requests. It sits above the enrichment
// command's ceiling so a degraded answer can still be written.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig describes one backend service's engine. Exactly one of the
// business handlers is normally set.
type RouterConfig struct {
	Logger        *slog.Logger
	AppConfig     *config.AppConfig
	HealthHandler *handlers.HealthHandler

	LicenseHandler      *handlers.LicenseHandler
	OrganizationHandler *handlers.OrganizationHandler

	// Timeout is the /v1 deadline. Zero leaves requests unbounded.
	Timeout time.Duration
}

// GatewayRouterConfig describes the gateway's engine.
type GatewayRouterConfig struct {
	Logger        *slog.Logger
	AppConfig     *config.AppConfig
	HealthHandler *handlers.HealthHandler

	// Gateway proxies every configured route.
	Gateway http.Handler
	Routes  []gateway.Route
}

// edgeMiddleware is the stack every engine in the mesh runs, outermost
// first: recovery, the server span, the request id, the user context read
// from inbound headers, metrics tagged with the correlation id, and the
// access log.
func edgeMiddleware(logger *slog.Logger, service string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		middleware.Recovery(logger),
		telemetry.TracingMiddleware(service),
		middleware.RequestID(),
		middleware.UserContext(),
		telemetry.Middleware(service),
		middleware.Logging(logger),
	}
}

// SetupRouter mounts the health probes under /-/ and the business routes
// under /v1. Probes never get the request deadline.
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(edgeMiddleware(cfg.Logger, cfg.AppConfig.Name)...)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	v1 := engine.Group("/v1")
	if cfg.Timeout > 0 {
		v1.Use(middleware.Deadline(cfg.Timeout))
	}

	if cfg.LicenseHandler != nil {
		cfg.LicenseHandler.RegisterLicenseRoutes(v1)
	}
	if cfg.OrganizationHandler != nil {
		cfg.OrganizationHandler.RegisterOrganizationRoutes(v1)
	}
}

// SetupGatewayRouter hands every route prefix, with and without a trailing
// path, to the gateway. Correlation ids are stamped by the gateway's own
// filter chain, not by this middleware.
func SetupGatewayRouter(engine *gin.Engine, cfg GatewayRouterConfig) {
	engine.Use(edgeMiddleware(cfg.Logger, cfg.AppConfig.Name)...)

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterHealthRoutesOnEngine(engine)
	}

	proxy := gin.WrapH(cfg.Gateway)
	for _, route := range cfg.Routes {
		engine.Any(route.Prefix, proxy)
		engine.Any(route.Prefix+"/*path", proxy)
	}
}
