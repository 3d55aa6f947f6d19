package domain

import (
	"time"

	"github.com/prohmpiriya/autostore-platform/pkg/auth"
)

// DefaultFullName is stored when registration omits a display name
const DefaultFullName = "-"

// User represents a user entity
type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"fullname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password
	Role         auth.Role `json:"role"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
