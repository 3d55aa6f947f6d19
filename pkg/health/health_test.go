package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := gin.New()
	h.Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := serve(NewHandler("backend-auth"), "/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","service":"backend-auth"}`, w.Body.String())
}

func TestReady_AllConnected(t *testing.T) {
	h := NewHandler("backend-store").
		AddCheck("database", func(ctx context.Context) error { return nil }).
		AddCheck("redis", func(ctx context.Context) error { return nil })

	w := serve(h, "/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
	assert.Equal(t, map[string]interface{}{"database": "connected", "redis": "connected"}, body["dependencies"])
}

func TestReady_DependencyDown(t *testing.T) {
	h := NewHandler("backend-store").
		AddCheck("database", func(ctx context.Context) error { return errors.New("dial tcp: refused") })

	w := serve(h, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"not_ready"`)
	assert.NotContains(t, w.Body.String(), "refused")
}
