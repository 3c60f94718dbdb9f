// Package middleware holds the gin middleware shared by the gateway and the
// backend services.
package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jsamuelsen/licensing-mesh/internal/platform/logging"
)

// HeaderRequestID carries the per-hop request id.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// RequestID assigns the id for this hop: the inbound X-Request-ID if present,
// else a new UUID. The response echoes it and the context logger is tagged
// with it.
//
// The correlation id that spans the whole call chain is separate. It belongs
// to the gateway filters and UserContext.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)

		ctx := ContextWithRequestID(c.Request.Context(), id)
		c.Request = c.Request.WithContext(logging.WithRequestID(ctx, id))

		c.Next()
	}
}

// ContextWithRequestID stores id for outbound clients to forward.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the stored id. It is empty for a nil or
// untagged context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Deadline bounds the request context. Resilience commands normally fall
// back well before it fires.
func Deadline(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
