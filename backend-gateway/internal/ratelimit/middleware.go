package ratelimit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/pkg/logger"
	"github.com/prohmpiriya/autostore-platform/pkg/response"
	"github.com/prohmpiriya/autostore-platform/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Middleware limits requests per client IP. Limiter errors let the request
// through.
func Middleware(limiter Limiter, cfg Config, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.NewNop()
	}
	limit := strconv.Itoa(cfg.RequestsPerSecond)

	return func(c *gin.Context) {
		ctx, span := telemetry.StartSpan(c.Request.Context(), "middleware.rate_limiter")
		defer span.End()

		clientIP := c.ClientIP()
		span.SetAttributes(attribute.String("client_ip", clientIP))

		decision, err := limiter.Allow(ctx, clientIP)
		if err != nil {
			log.Warn("Rate limiter unavailable, allowing request", zap.Error(err))
			telemetry.RecordError(span, err)
			c.Next()
			return
		}
		span.SetAttributes(attribute.Bool("allowed", decision.Allowed))

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			span.SetStatus(codes.Error, "rate limit exceeded")
			c.Header("Retry-After", "1")
			response.Abort(c, http.StatusTooManyRequests, "TOO_MANY_REQUESTS", "Rate limit exceeded. Please retry after 1 second(s).")
			return
		}
		c.Next()
	}
}
