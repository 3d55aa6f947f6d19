package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/pkg/response"
)

const (
	// ClaimsKey is the gin context key holding *Claims
	ClaimsKey = "auth_claims"
	// UserIDKey holds the token subject, read by request-scoped middleware
	UserIDKey = "user_id"
	// RoleKey holds the caller role as a string
	RoleKey = "role"

	bearerScheme = "bearer"
)

var (
	ErrUnauthorized = errors.New("auth: could not validate credentials")
	ErrForbidden    = errors.New("auth: insufficient role")
)

// Guard authenticates inbound requests with bearer tokens
type Guard struct {
	verifier TokenVerifier
}

// NewGuard creates a guard that verifies tokens with v
func NewGuard(v TokenVerifier) *Guard {
	return &Guard{verifier: v}
}

// AuthenticateHeader extracts the bearer token from an Authorization header
// value and verifies it. Every failure collapses into ErrUnauthorized so
// callers cannot tell an expired token from a forged one.
func (g *Guard) AuthenticateHeader(header string) (*Claims, error) {
	token, ok := bearerToken(header)
	if !ok {
		return nil, ErrUnauthorized
	}
	claims, err := g.verifier.Verify(token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// Authenticate rejects requests without a valid bearer token with 401 and
// stores the claims in the context otherwise.
func (g *Guard) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := g.AuthenticateHeader(c.GetHeader("Authorization"))
		if err != nil {
			abortUnauthorized(c)
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// Optional stores claims when a valid token is present and never rejects
func (g *Guard) Optional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			if claims, err := g.AuthenticateHeader(header); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// RequireRole allows the request through only when the caller holds one of
// roles. It must run after Authenticate.
func RequireRole(roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			abortUnauthorized(c)
			return
		}
		if err := Authorize(claims, roles...); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Forbidden(forbiddenMessage(roles)))
			return
		}
		c.Next()
	}
}

// Authorize is the pure role predicate behind RequireRole
func Authorize(claims *Claims, roles ...Role) error {
	if claims == nil {
		return ErrUnauthorized
	}
	for _, r := range roles {
		if claims.Role == r {
			return nil
		}
	}
	return ErrForbidden
}

// ClaimsFrom returns the verified claims of the current request
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok && claims != nil
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set(ClaimsKey, claims)
	c.Set(UserIDKey, claims.Subject)
	c.Set(RoleKey, string(claims.Role))
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	response.Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials")
}

func forbiddenMessage(roles []Role) string {
	if len(roles) == 1 && roles[0] == RoleAdmin {
		return "Admin only"
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return "Requires role: " + strings.Join(names, " or ")
}
