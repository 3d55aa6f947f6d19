package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupGuardRouter(t *testing.T, codec *TokenCodec) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	guard := NewGuard(codec)
	router := gin.New()

	router.GET("/public", guard.Optional(), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"sub": claims.Subject})
	})

	protected := router.Group("")
	protected.Use(guard.Authenticate())
	protected.GET("/me", func(c *gin.Context) {
		claims, _ := ClaimsFrom(c)
		c.JSON(http.StatusOK, gin.H{"sub": claims.Subject, "role": claims.Role, "user_id": c.GetString(UserIDKey)})
	})
	protected.PATCH("/admin", RequireRole(RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	protected.POST("/products", RequireRole(RoleSeller, RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	return router
}

func issue(t *testing.T, codec *TokenCodec, sub string, role Role, ttl time.Duration) string {
	t.Helper()
	token, err := codec.Issue(Claims{Role: role, RegisteredClaims: jwt.RegisteredClaims{Subject: sub}}, ttl)
	require.NoError(t, err)
	return token
}

func doRequest(router *gin.Engine, method, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGuard_Authenticate(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, "guard-secret", now)
	router := setupGuardRouter(t, codec)

	valid := issue(t, codec, "5", RoleBuyer, time.Hour)

	w := doRequest(router, http.MethodGet, "/me", "Bearer "+valid)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "5", body["sub"])
	assert.Equal(t, "buyer", body["role"])
	assert.Equal(t, "5", body["user_id"])

	w = doRequest(router, http.MethodGet, "/me", "bearer "+valid)
	assert.Equal(t, http.StatusOK, w.Code, "scheme is case-insensitive")
}

func TestGuard_RejectionsAreIndistinguishable(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	oldCodec := newTestCodec(t, "guard-secret", issuedAt)
	expired := issue(t, oldCodec, "5", RoleBuyer, time.Minute)

	otherCodec := newTestCodec(t, "other-secret", time.Now())
	forged := issue(t, otherCodec, "5", RoleAdmin, time.Hour)

	router := setupGuardRouter(t, newTestCodec(t, "guard-secret", time.Now()))

	headers := map[string]string{
		"missing header": "",
		"wrong scheme":   "Basic dXNlcjpwYXNz",
		"empty token":    "Bearer ",
		"expired":        "Bearer " + expired,
		"bad signature":  "Bearer " + forged,
		"garbage":        "Bearer abc.def.ghi",
	}

	var first string
	for name, header := range headers {
		t.Run(name, func(t *testing.T) {
			w := doRequest(router, http.MethodGet, "/me", header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			assert.JSONEq(t, `{"success":false,"error":{"code":"UNAUTHORIZED","message":"Could not validate credentials"}}`, w.Body.String())
			if first == "" {
				first = w.Body.String()
			}
			assert.Equal(t, first, w.Body.String())
		})
	}
}

func TestRequireRole(t *testing.T) {
	codec := newTestCodec(t, "guard-secret", time.Now())
	router := setupGuardRouter(t, codec)

	tests := []struct {
		name   string
		method string
		path   string
		role   Role
		want   int
	}{
		{"admin passes admin gate", http.MethodPatch, "/admin", RoleAdmin, http.StatusNoContent},
		{"buyer blocked at admin gate", http.MethodPatch, "/admin", RoleBuyer, http.StatusForbidden},
		{"seller blocked at admin gate", http.MethodPatch, "/admin", RoleSeller, http.StatusForbidden},
		{"seller passes seller gate", http.MethodPost, "/products", RoleSeller, http.StatusCreated},
		{"admin passes seller gate", http.MethodPost, "/products", RoleAdmin, http.StatusCreated},
		{"buyer blocked at seller gate", http.MethodPost, "/products", RoleBuyer, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := issue(t, codec, "9", tt.role, time.Hour)
			w := doRequest(router, tt.method, tt.path, "Bearer "+token)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	w := doRequest(router, http.MethodPatch, "/admin", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, "authentication runs before role checks")
}

func TestGuard_Optional(t *testing.T) {
	codec := newTestCodec(t, "guard-secret", time.Now())
	router := setupGuardRouter(t, codec)

	w := doRequest(router, http.MethodGet, "/public", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"anonymous":true}`, w.Body.String())

	w = doRequest(router, http.MethodGet, "/public", "Bearer broken")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"anonymous":true}`, w.Body.String())

	w = doRequest(router, http.MethodGet, "/public", "Bearer "+issue(t, codec, "3", RoleSeller, time.Hour))
	assert.JSONEq(t, `{"sub":"3"}`, w.Body.String())
}

func TestAuthorize(t *testing.T) {
	assert.ErrorIs(t, Authorize(nil, RoleAdmin), ErrUnauthorized)
	assert.ErrorIs(t, Authorize(&Claims{Role: RoleBuyer}, RoleAdmin), ErrForbidden)
	assert.NoError(t, Authorize(&Claims{Role: RoleAdmin}, RoleAdmin))
	assert.NoError(t, Authorize(&Claims{Role: RoleSeller}, RoleSeller, RoleAdmin))
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = bearerToken("Bearer")
	assert.False(t, ok)
	_, ok = bearerToken("Token abc")
	assert.False(t, ok)
}
