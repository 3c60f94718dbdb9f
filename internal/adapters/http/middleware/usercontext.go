package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/licensing-mesh/internal/app/correlation"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/logging"
)

// UserContext returns middleware that builds the request's correlation
// context from the inbound correlation-id, auth-token, user-id and org-id
// headers. Outbound clients copy the values onto downstream calls.
//
// Missing headers stay empty; the gateway is the origin of correlation ids.
// A context already present on the request, for example one installed by a
// gateway filter in the same process, is reused.
func UserContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		cc := correlation.FromContext(ctx)
		if cc == nil {
			cc = correlation.New()
			ctx = correlation.WithContext(ctx, cc)
		}

		for _, key := range correlation.PropagatedKeys {
			if v := c.GetHeader(key); v != "" && cc.Get(key) == "" {
				cc.Set(key, v)
			}
		}

		if id := cc.CorrelationID(); id != "" {
			ctx = logging.WithCorrelationID(ctx, id)
		}

		logging.Trace(ctx, "user context established",
			"user_id", cc.UserID(),
			"org_id", cc.OrgID(),
		)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
