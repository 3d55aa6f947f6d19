package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/pkg/logger"
	"github.com/prohmpiriya/autostore-platform/pkg/telemetry"
	"go.uber.org/zap"
)

// Probe endpoints hit every few seconds; successful ones are not logged.
var quietPaths = map[string]struct{}{
	"/health": {},
	"/ready":  {},
}

// Logger writes one access log entry per request. 5xx logs at error, 4xx at
// warn, everything else at info.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		if _, quiet := quietPaths[path]; quiet && status < 400 {
			return
		}

		fields := make([]zap.Field, 0, 14)
		fields = append(fields,
			zap.String("request_id", GetRequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		)
		if traceID := telemetry.TraceID(c.Request.Context()); traceID != "" {
			fields = append(fields, zap.String("trace_id", traceID))
		}
		if key, ok := GetIdempotencyKey(c); ok {
			fields = append(fields, zap.String("idempotency_key", key))
		}
		if route := c.FullPath(); route != "" && route != path {
			fields = append(fields, zap.String("route", route))
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		// Set by auth.Guard
		if userID := c.GetString("user_id"); userID != "" {
			fields = append(fields, zap.String("user_id", userID), zap.String("role", c.GetString("role")))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			log.Error("Server error", fields...)
		case status >= 400:
			log.Warn("Client error", fields...)
		default:
			log.Info("Request completed", fields...)
		}
	}
}
