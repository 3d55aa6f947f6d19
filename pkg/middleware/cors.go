package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORSConfig describes which browser origins may call the API
type CORSConfig struct {
	// AllowOrigins lists exact origins. Empty or a "*" entry allows any.
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int // seconds
}

// DefaultCORSConfig allows any origin with the headers the shop front end sends
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept", "Authorization",
			RequestIDHeader, IdempotencyKeyHeader,
		},
		ExposeHeaders: []string{
			"Content-Length", RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After",
		},
		MaxAge: 86400,
	}
}

// CORS applies DefaultCORSConfig restricted to origins
func CORS(origins ...string) gin.HandlerFunc {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = origins
	return CORSWithConfig(cfg)
}

// CORSWithConfig answers preflight requests itself and decorates the rest
func CORSWithConfig(config CORSConfig) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(config.AllowOrigins))
	wildcard := len(config.AllowOrigins) == 0
	for _, o := range config.AllowOrigins {
		if o == "*" {
			wildcard = true
		}
		allowed[o] = struct{}{}
	}

	methods := strings.Join(config.AllowMethods, ", ")
	headers := strings.Join(config.AllowHeaders, ", ")
	expose := strings.Join(config.ExposeHeaders, ", ")
	maxAge := ""
	if config.MaxAge > 0 {
		maxAge = strconv.Itoa(config.MaxAge)
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		h := c.Writer.Header()
		switch _, ok := allowed[origin]; {
		case wildcard:
			h.Set("Access-Control-Allow-Origin", "*")
		case ok:
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			if config.AllowCredentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		default:
			// Unknown origin: no CORS headers, the browser blocks the response
			c.Next()
			return
		}
		h.Set("Access-Control-Expose-Headers", expose)

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			if maxAge != "" {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
