package repository

import (
	"context"

	"github.com/prohmpiriya/autostore-platform/backend-auth/internal/domain"
)

// UserRepository defines the interface for user data access. Lookups of a
// missing user return domain.ErrUserNotFound.
type UserRepository interface {
	// Create inserts user and fills in its generated ID. A duplicate email
	// returns domain.ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) error
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByEmail retrieves a user by normalized email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// ExistsByEmail checks if a user exists with the given email
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// SetActive flips the activation flag
	SetActive(ctx context.Context, id int64, active bool) error
}
