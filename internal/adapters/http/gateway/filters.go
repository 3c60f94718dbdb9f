package gateway

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/jsamuelsen/licensing-mesh/internal/app/correlation"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/config"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/logging"
)

// Filter names.
const (
	TrackingFilterName = "tracking"
	ResponseFilterName = "response"
)

// TrackingFilter stamps the request with a correlation id. An inbound
// correlation-id header is reused, otherwise a UUID is generated. The id is
// forwarded upstream and added to the request logger.
func TrackingFilter(order int) Filter {
	return Filter{
		Name:  TrackingFilterName,
		Phase: PhasePre,
		Order: order,
		Run: func(rc *RequestContext) error {
			ctx := rc.Request.Context()
			logger := logging.FromContext(ctx)

			id := rc.Request.Header.Get(correlation.HeaderCorrelationID)
			if id != "" {
				logger.DebugContext(ctx, "correlation-id found in tracking filter",
					slog.String("correlation_id", id))
			} else {
				id = uuid.NewString()
				logger.DebugContext(ctx, "correlation-id generated in tracking filter",
					slog.String("correlation_id", id))
			}

			rc.Correlation.SetCorrelationID(id)
			rc.UpstreamHeaders.Set(correlation.HeaderCorrelationID, id)

			ctx = logging.WithCorrelationID(ctx, id)
			rc.Request = rc.Request.WithContext(ctx)

			logging.Trace(ctx, "processing incoming request", slog.String("path", rc.Request.URL.Path))

			return nil
		},
	}
}

// ResponseFilter writes the correlation id onto the response headers. It
// writes nothing when no id was assigned.
func ResponseFilter(order int) Filter {
	return Filter{
		Name:  ResponseFilterName,
		Phase: PhasePost,
		Order: order,
		Run: func(rc *RequestContext) error {
			id := rc.Correlation.CorrelationID()
			if id != "" && rc.ResponseHeaders != nil {
				rc.ResponseHeaders.Set(correlation.HeaderCorrelationID, id)
			}

			ctx := rc.Request.Context()
			logging.FromContext(ctx).DebugContext(ctx, "adding correlation id to outbound headers",
				slog.String("correlation_id", id),
				slog.String("path", rc.Request.URL.Path),
			)

			return nil
		},
	}
}

// FiltersFromConfig returns the enabled built-in filters with their
// configured orders.
func FiltersFromConfig(cfg config.FiltersConfig) []Filter {
	var filters []Filter

	if cfg.Tracking.Enabled {
		filters = append(filters, TrackingFilter(cfg.Tracking.Order))
	}
	if cfg.Response.Enabled {
		filters = append(filters, ResponseFilter(cfg.Response.Order))
	}

	return filters
}
