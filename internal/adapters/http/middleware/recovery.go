package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http/dto"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/logging"
)

// Recovery converts a handler panic into the 500 error envelope and logs the
// stack. It goes first in the chain. When the handler already wrote part of
// a response the connection is only aborted.
func Recovery(fallback *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				recovered(c, fallback, r)
			}
		}()

		c.Next()
	}
}

func recovered(c *gin.Context, fallback *slog.Logger, r any) {
	traceID := dto.GetTraceID(c)
	ctx := c.Request.Context()

	logging.FromContextOr(ctx, fallback).ErrorContext(ctx, "panic recovered",
		slog.String("panic", fmt.Sprint(r)),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("trace_id", traceID),
		slog.String("stack", string(debug.Stack())),
	)

	if c.Writer.Written() {
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred").WithTraceID(traceID))
}
