package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the correlation id between gateway and services
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the gin key for the correlation id
	RequestIDKey = "request_id"

	maxRequestIDLength = 128
)

type requestIDCtxKey struct{}

// RequestID keeps an inbound X-Request-ID when it is usable and mints a UUID
// otherwise. The id is echoed back and also stored on the request context so
// outbound calls (proxy, Kafka, email) can forward it.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), id))

		c.Next()
	}
}

// GetRequestID returns the id set by RequestID, or "" outside that middleware
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// WithRequestID returns a copy of ctx carrying id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDCtxKey{}, id)
}

// RequestIDFromContext returns the id stored by WithRequestID
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDCtxKey{}).(string)
	return id
}

// Printable ASCII only; anything else would end up in log lines and headers.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
