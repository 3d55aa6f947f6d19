// Package proxy forwards public API traffic to the owning backend service.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
	"github.com/prohmpiriya/autostore-platform/pkg/config"
	"github.com/prohmpiriya/autostore-platform/pkg/health"
	"github.com/prohmpiriya/autostore-platform/pkg/middleware"
	"github.com/prohmpiriya/autostore-platform/pkg/response"
	"github.com/prohmpiriya/autostore-platform/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Upstream names
const (
	UpstreamAuth  = "backend-auth"
	UpstreamStore = "backend-store"
	UpstreamMOT   = "backend-mot"
)

// Upstream is a backend service the gateway forwards to
type Upstream struct {
	Name    string
	BaseURL string
	Timeout time.Duration
}

// Route sends every path under PathPrefix to one upstream
type Route struct {
	PathPrefix string
	Upstream   string
	// RequireAuth rejects requests without a valid bearer token before they
	// leave the gateway
	RequireAuth bool
	// AllowedMethods restricts the route (empty = all). A matching path with
	// another method is answered 405 by the gateway.
	AllowedMethods []string
}

// Config holds the routing table
type Config struct {
	Upstreams      []Upstream
	Routes         []Route
	DefaultTimeout time.Duration
}

var (
	readWrite = []string{http.MethodGet, http.MethodPost}
	crud      = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete}
)

// ConfigFromGateway builds the routing table of the autostore services
func ConfigFromGateway(gc config.GatewayConfig) Config {
	return Config{
		Upstreams: []Upstream{
			{Name: UpstreamAuth, BaseURL: gc.AuthServiceURL},
			{Name: UpstreamStore, BaseURL: gc.StoreServiceURL},
			{Name: UpstreamMOT, BaseURL: gc.MOTServiceURL},
		},
		Routes: []Route{
			{PathPrefix: "/auth", Upstream: UpstreamAuth, AllowedMethods: readWrite},
			{PathPrefix: "/admin", Upstream: UpstreamAuth, RequireAuth: true, AllowedMethods: []string{http.MethodPatch}},
			{PathPrefix: "/products", Upstream: UpstreamStore, AllowedMethods: crud},
			{PathPrefix: "/cart", Upstream: UpstreamStore, RequireAuth: true, AllowedMethods: crud},
			{PathPrefix: "/orders", Upstream: UpstreamStore, RequireAuth: true, AllowedMethods: crud},
			{PathPrefix: "/bookings", Upstream: UpstreamMOT, RequireAuth: true, AllowedMethods: append([]string{http.MethodPut}, crud...)},
		},
		DefaultTimeout: gc.ProxyTimeout,
	}
}

// ReverseProxy routes requests to upstream services
type ReverseProxy struct {
	config    Config
	guard     *auth.Guard
	upstreams map[string]Upstream
	proxies   map[string]*httputil.ReverseProxy
	client    *http.Client
}

// NewReverseProxy creates a proxy for every upstream in cfg. guard may be nil
// when no route requires authentication.
func NewReverseProxy(cfg Config, guard *auth.Guard) (*ReverseProxy, error) {
	if cfg.DefaultTimeout == 0 {
		cfg.DefaultTimeout = 30 * time.Second
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	rp := &ReverseProxy{
		config:    cfg,
		guard:     guard,
		upstreams: make(map[string]Upstream, len(cfg.Upstreams)),
		proxies:   make(map[string]*httputil.ReverseProxy, len(cfg.Upstreams)),
		client:    &http.Client{Transport: transport, Timeout: 5 * time.Second},
	}

	for _, up := range cfg.Upstreams {
		target, err := url.Parse(up.BaseURL)
		if err != nil || target.Scheme == "" || target.Host == "" {
			return nil, fmt.Errorf("invalid url for %s: %q", up.Name, up.BaseURL)
		}
		rp.upstreams[up.Name] = up
		rp.proxies[up.Name] = newSingleHostProxy(target, transport)
	}
	for _, route := range cfg.Routes {
		if _, ok := rp.proxies[route.Upstream]; !ok {
			return nil, fmt.Errorf("route %s: unknown upstream %q", route.PathPrefix, route.Upstream)
		}
		if route.RequireAuth && guard == nil {
			return nil, fmt.Errorf("route %s requires auth but no guard was given", route.PathPrefix)
		}
	}
	return rp, nil
}

func newSingleHostProxy(target *url.URL, transport http.RoundTripper) *httputil.ReverseProxy {
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Transport = transport

	director := proxy.Director
	proxy.Director = func(req *http.Request) {
		director(req)
		req.Host = target.Host
	}

	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		status, body := http.StatusBadGateway, response.Error("BAD_GATEWAY", "Backend service unavailable")
		if isTimeout(err) {
			status, body = http.StatusGatewayTimeout, response.Error("GATEWAY_TIMEOUT", "Backend service timed out")
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}

	proxy.ModifyResponse = func(resp *http.Response) error {
		// CORS is answered by the gateway's own middleware
		for name := range resp.Header {
			if strings.HasPrefix(name, "Access-Control-") {
				resp.Header.Del(name)
			}
		}
		resp.Header.Set("X-Proxied-By", "backend-gateway")
		return nil
	}
	return proxy
}

// match returns the first route whose prefix covers path on a segment
// boundary and whose methods allow method. When only the path matched, allow
// lists the methods the path accepts.
func (rp *ReverseProxy) match(path, method string) (route *Route, allow []string) {
	for i := range rp.config.Routes {
		r := &rp.config.Routes[i]
		if path != r.PathPrefix && !strings.HasPrefix(path, r.PathPrefix+"/") {
			continue
		}
		if len(r.AllowedMethods) > 0 && !containsFold(r.AllowedMethods, method) {
			allow = append(allow, r.AllowedMethods...)
			continue
		}
		return r, nil
	}
	return nil, allow
}

// Handler forwards the request, or answers 404 when no route matches. It is
// meant for router.NoRoute.
func (rp *ReverseProxy) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := telemetry.StartSpan(c.Request.Context(), "gateway.proxy")
		defer span.End()

		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.path", c.Request.URL.Path),
		)

		route, allow := rp.match(c.Request.URL.Path, c.Request.Method)
		if route == nil && len(allow) > 0 {
			span.SetStatus(codes.Error, "method not allowed")
			c.Header("Allow", strings.Join(allow, ", "))
			response.Abort(c, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed on this path")
			return
		}
		if route == nil {
			span.SetStatus(codes.Error, "no route")
			response.Abort(c, http.StatusNotFound, "ROUTE_NOT_FOUND", "No route configured for this path")
			return
		}
		span.SetAttributes(attribute.String("target.service", route.Upstream))

		if route.RequireAuth {
			if _, err := rp.guard.AuthenticateHeader(c.GetHeader("Authorization")); err != nil {
				span.SetStatus(codes.Error, "unauthorized")
				c.Header("WWW-Authenticate", "Bearer")
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Unauthorized("Could not validate credentials"))
				return
			}
		}

		if id := middleware.GetRequestID(c); id != "" {
			c.Request.Header.Set(middleware.RequestIDHeader, id)
		}

		timeout := rp.upstreams[route.Upstream].Timeout
		if timeout == 0 {
			timeout = rp.config.DefaultTimeout
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		rp.proxies[route.Upstream].ServeHTTP(c.Writer, c.Request.WithContext(ctx))
		c.Abort()
	}
}

// HealthChecks returns one readiness check per upstream, each calling its
// /health endpoint
func (rp *ReverseProxy) HealthChecks() map[string]health.CheckFunc {
	checks := make(map[string]health.CheckFunc, len(rp.upstreams))
	for name, up := range rp.upstreams {
		healthURL := strings.TrimRight(up.BaseURL, "/") + "/health"
		checks[name] = func(ctx context.Context) error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
			if err != nil {
				return err
			}
			resp, err := rp.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("health returned %d", resp.StatusCode)
			}
			return nil
		}
	}
	return checks
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
