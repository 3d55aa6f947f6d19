// Package health serves liveness and readiness endpoints.
package health

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// CheckFunc reports whether a dependency is reachable
type CheckFunc func(ctx context.Context) error

// Handler serves /health and /ready
type Handler struct {
	service string
	timeout time.Duration
	checks  map[string]CheckFunc
}

// NewHandler creates a handler with no dependencies
func NewHandler(service string) *Handler {
	return &Handler{
		service: service,
		timeout: 3 * time.Second,
		checks:  make(map[string]CheckFunc),
	}
}

// AddCheck registers a readiness dependency such as "database" or "redis"
func (h *Handler) AddCheck(name string, fn CheckFunc) *Handler {
	h.checks[name] = fn
	return h
}

// Register mounts both endpoints on r
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
}

// Health returns basic health status
// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.service,
	})
}

// Ready checks every registered dependency
// GET /ready
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	deps := make(gin.H, len(names))
	ready := true
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			_ = c.Error(err)
			deps[name] = "disconnected"
			ready = false
			continue
		}
		deps[name] = "connected"
	}

	status, state := http.StatusOK, "ready"
	if !ready {
		status, state = http.StatusServiceUnavailable, "not_ready"
	}
	c.JSON(status, gin.H{
		"status":       state,
		"service":      h.service,
		"dependencies": deps,
	})
}
