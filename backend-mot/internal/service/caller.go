package service

import "github.com/prohmpiriya/autostore-platform/pkg/auth"

// Caller is the authenticated user a request acts for
type Caller struct {
	UserID int64
	Role   auth.Role
}

// CallerFromClaims builds a Caller from verified token claims
func CallerFromClaims(claims *auth.Claims) (Caller, error) {
	id, err := claims.UserID()
	if err != nil {
		return Caller{}, err
	}
	return Caller{UserID: id, Role: claims.Role}, nil
}

// IsAdmin reports whether the caller holds the admin role
func (c Caller) IsAdmin() bool {
	return c.Role == auth.RoleAdmin
}
