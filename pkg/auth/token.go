// Package auth holds the token codec, password hashing and the gin guard
// shared by every service.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret    = errors.New("auth: signing secret is empty")
	ErrInvalidTTL     = errors.New("auth: token ttl must be positive")
	ErrTokenExpired   = errors.New("auth: token expired")
	ErrTokenMalformed = errors.New("auth: token malformed")
)

// Role is the coarse-grained authorization attribute carried in a token
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// ParseRole normalizes s and reports whether it names a known role
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return r, true
	}
	return "", false
}

// Claims is the payload of an access token. Subject is the string form of
// the user id.
type Claims struct {
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullname,omitempty"`
	Role     Role   `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject as a numeric user id
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("auth: subject %q is not a user id: %w", c.Subject, err)
	}
	return id, nil
}

// IsAdmin reports whether the token carries the admin role
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// TokenIssuer signs claims into a token
type TokenIssuer interface {
	Issue(claims Claims, ttl time.Duration) (string, error)
}

// TokenVerifier decodes and validates a token
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// TokenCodec issues and verifies HS256 tokens with a single shared secret
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// CodecOption configures a TokenCodec
type CodecOption func(*TokenCodec)

// WithClock overrides the time source used for iat/exp
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		c.now = now
	}
}

// NewTokenCodec creates a codec bound to secret
func NewTokenCodec(secret string, opts ...CodecOption) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	c := &TokenCodec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue copies claims, stamps iat and exp = now + ttl and signs the result
func (c *TokenCodec) Issue(claims Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}

	now := c.now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry. The returned error is
// always ErrTokenExpired or ErrTokenMalformed.
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)

	claims := &Claims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	if !parsed.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenMalformed)
	}

	return claims, nil
}
