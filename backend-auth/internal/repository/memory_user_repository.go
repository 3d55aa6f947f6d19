package repository

import (
	"context"
	"sync"
	"time"

	"github.com/prohmpiriya/autostore-platform/backend-auth/internal/domain"
)

// MemoryUserRepository keeps users in process memory
type MemoryUserRepository struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]*domain.User
	byEmail map[string]int64
}

// NewMemoryUserRepository creates an empty repository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[int64]*domain.User),
		byEmail: make(map[string]int64),
	}
}

// Create stores a copy of user and assigns its ID
func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return domain.ErrEmailTaken
	}

	r.nextID++
	user.ID = r.nextID
	stored := *user
	r.users[user.ID] = &stored
	r.byEmail[user.Email] = user.ID
	return nil
}

// GetByID retrieves a user by ID
func (r *MemoryUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

// GetByEmail retrieves a user by email
func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.GetByID(ctx, id)
}

// ExistsByEmail checks if a user exists with the given email
func (r *MemoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

// SetActive updates the activation flag
func (r *MemoryUserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.IsActive = active
	u.UpdatedAt = time.Now()
	return nil
}
