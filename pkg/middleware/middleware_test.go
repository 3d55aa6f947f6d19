package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func requestIDRouter() *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		if GetRequestID(c) != RequestIDFromContext(c.Request.Context()) {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, GetRequestID(c))
	})
	return r
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "generated when missing", incoming: "", keep: false},
		{name: "inbound id kept", incoming: "existing-request-id-123", keep: true},
		{name: "id with spaces replaced", incoming: "bad id", keep: false},
		{name: "oversized id replaced", incoming: strings.Repeat("a", maxRequestIDLength+1), keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			requestIDRouter().ServeHTTP(w, req)

			headerID := w.Header().Get(RequestIDHeader)
			require.NotEmpty(t, headerID)
			assert.Equal(t, headerID, w.Body.String())
			if tt.keep {
				assert.Equal(t, tt.incoming, headerID)
			} else {
				assert.NotEqual(t, tt.incoming, headerID)
			}
		})
	}
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	assert.Empty(t, RequestIDFromContext(context.Background()))
	assert.Equal(t, "abc", RequestIDFromContext(WithRequestID(context.Background(), "abc")))
}

func corsRequest(r *gin.Engine, method, origin string, preflight bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/test", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS_SimpleRequest(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := corsRequest(r, http.MethodGet, "http://example.com", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), RequestIDHeader)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))

	w = corsRequest(r, http.MethodGet, "", false)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS())
	r.OPTIONS("/test", func(c *gin.Context) { c.String(http.StatusOK, "handler") })

	w := corsRequest(r, http.MethodOptions, "http://example.com", true)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Methods"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), IdempotencyKeyHeader)
	assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))

	// A plain OPTIONS without the preflight header reaches the route
	w = corsRequest(r, http.MethodOptions, "http://example.com", false)
	assert.Equal(t, "handler", w.Body.String())
}

func TestCORS_AllowList(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://shop.example.com"}
	cfg.AllowCredentials = true

	r := gin.New()
	r.Use(CORSWithConfig(cfg))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := corsRequest(r, http.MethodGet, "https://shop.example.com", false)
	assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))

	w = corsRequest(r, http.MethodGet, "https://evil.example.com", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestLogger_LevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(RequestID(), Logger(logger.FromZap(zap.New(core))))
	r.GET("/ok", func(c *gin.Context) {
		c.Set("user_id", "42")
		c.Set("role", "customer")
		c.Status(http.StatusOK)
	})
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok", "/missing", "/boom"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "42", entries[0].ContextMap()["user_id"])
	assert.Equal(t, "customer", entries[0].ContextMap()["role"])
	assert.NotEmpty(t, entries[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestLogger_QuietProbes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	healthy := true

	r := gin.New()
	r.Use(Logger(logger.FromZap(zap.New(core))))
	r.GET("/health", func(c *gin.Context) {
		if healthy {
			c.Status(http.StatusOK)
			return
		}
		c.Status(http.StatusServiceUnavailable)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Zero(t, logs.Len())

	healthy = false
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, 1, logs.Len())
}

func setupIdempotencyRouter(t *testing.T, status int, calls *int) (*gin.Engine, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(Idempotency(DefaultIdempotencyConfig(rdb)))
	r.POST("/orders", func(c *gin.Context) {
		*calls++
		c.JSON(status, gin.H{"id": *calls})
	})
	return r, mr
}

func postOrder(r *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysCompletedResponse(t *testing.T) {
	calls := 0
	r, _ := setupIdempotencyRouter(t, http.StatusCreated, &calls)

	first := postOrder(r, "key-1", `{"a":1}`)
	second := postOrder(r, "key-1", `{"a":1}`)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusCreated, first.Code)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
}

func TestLogger_IdempotencyKeyField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	r := gin.New()
	r.Use(Logger(logger.FromZap(zap.New(core))), Idempotency(DefaultIdempotencyConfig(rdb)))
	r.POST("/orders", func(c *gin.Context) { c.Status(http.StatusCreated) })

	postOrder(r, "key-9", `{}`)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "key-9", logs.All()[0].ContextMap()["idempotency_key"])
	_, hasTrace := logs.All()[0].ContextMap()["trace_id"]
	assert.False(t, hasTrace)
}

func TestIdempotency_WithoutKeyPassesThrough(t *testing.T) {
	calls := 0
	r, _ := setupIdempotencyRouter(t, http.StatusCreated, &calls)

	postOrder(r, "", `{}`)
	postOrder(r, "", `{}`)

	assert.Equal(t, 2, calls)
}

func TestIdempotency_RequireKey(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	cfg := DefaultIdempotencyConfig(rdb)
	cfg.RequireKey = true
	r := gin.New()
	r.Use(Idempotency(cfg))
	r.POST("/orders", func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := postOrder(r, "", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_IDEMPOTENCY_KEY")
}

func TestIdempotency_KeyReusedWithDifferentBody(t *testing.T) {
	calls := 0
	r, _ := setupIdempotencyRouter(t, http.StatusCreated, &calls)

	postOrder(r, "key-1", `{"a":1}`)
	w := postOrder(r, "key-1", `{"a":2}`)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "IDEMPOTENCY_KEY_REUSED")
}

func TestIdempotency_ServerErrorsAreNotCached(t *testing.T) {
	calls := 0
	r, mr := setupIdempotencyRouter(t, http.StatusInternalServerError, &calls)

	postOrder(r, "key-1", `{}`)
	assert.False(t, mr.Exists(IdempotencyKeyPrefix+"key-1"))

	postOrder(r, "key-1", `{}`)
	assert.Equal(t, 2, calls)
}

func TestIdempotency_InFlightDuplicate(t *testing.T) {
	calls := 0
	r, mr := setupIdempotencyRouter(t, http.StatusCreated, &calls)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	body := `{"a":1}`
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/orders", nil)
	record := &IdempotencyRecord{
		Key:         "key-1",
		Status:      StatusProcessing,
		RequestHash: hashRequest(c, []byte(body)),
		CreatedAt:   time.Now(),
	}
	require.True(t, trySetIdempotencyRecord(context.Background(), rdb, IdempotencyKeyPrefix+"key-1", record, time.Minute))

	w := postOrder(r, "key-1", body)
	assert.Equal(t, 0, calls)
	assert.Equal(t, http.StatusConflict, w.Code)
}
