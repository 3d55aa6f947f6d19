package service

import "github.com/prohmpiriya/autostore-platform/pkg/auth"

// Caller is the authenticated user a request acts for
type Caller struct {
	UserID int64
	Email  string
	Name   string
	Role   auth.Role
}

// CallerFromClaims builds a Caller from verified token claims
func CallerFromClaims(claims *auth.Claims) (Caller, error) {
	id, err := claims.UserID()
	if err != nil {
		return Caller{}, err
	}
	return Caller{
		UserID: id,
		Email:  claims.Email,
		Name:   claims.FullName,
		Role:   claims.Role,
	}, nil
}

// IsAdmin reports whether the caller holds the admin role
func (c Caller) IsAdmin() bool {
	return c.Role == auth.RoleAdmin
}

// DisplayName is the name shown to other users, falling back to the email
// when no real name was registered
func (c Caller) DisplayName() string {
	if c.Name != "" && c.Name != "-" {
		return c.Name
	}
	return c.Email
}
