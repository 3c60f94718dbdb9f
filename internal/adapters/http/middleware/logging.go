package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/licensing-mesh/internal/platform/logging"
)

// opsPrefix holds the probe and metrics routes, which are polled too often
// to be worth an access record.
const opsPrefix = "/-/"

// Logging emits one access record per request. The record goes to the
// context logger, which already carries the request, correlation and trace
// ids. fallback is used when the request has none.
func Logging(fallback *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, opsPrefix) {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		method, target := c.Request.Method, c.Request.URL.RequestURI()
		logging.Trace(ctx, "request received", slog.String("method", method), slog.String("path", target))

		began := time.Now()
		c.Next()
		elapsed := time.Since(began)

		status := c.Writer.Status()
		record := []any{
			slog.String("method", method),
			slog.String("path", target),
			slog.Int("status", status),
			slog.Duration("latency", elapsed),
			slog.Int("bytes", c.Writer.Size()),
			slog.String("client_ip", c.ClientIP()),
		}
		if route := c.FullPath(); route != "" {
			record = append(record, slog.String("route", route))
		}
		if errs := c.Errors.String(); errs != "" {
			record = append(record, slog.String("errors", errs))
		}

		logging.FromContextOr(ctx, fallback).Log(ctx, accessLevel(status), "request completed", record...)
	}
}

// accessLevel puts server errors at error, client errors at warn and the
// rest at info.
func accessLevel(status int) slog.Level {
	if status >= http.StatusInternalServerError {
		return slog.LevelError
	}
	if status >= http.StatusBadRequest {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
