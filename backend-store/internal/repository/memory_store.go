package repository

import (
	"sync"

	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
)

// MemoryStore keeps every store table in process memory behind one lock, so
// multi-table writes such as checkout stay atomic.
type MemoryStore struct {
	mu sync.RWMutex

	seq        map[string]int64
	products   map[int64]*domain.Product
	carts      map[int64]*domain.Cart
	cartItems  map[int64]*domain.CartItem
	orders     map[int64]*domain.Order
	orderItems map[int64][]*domain.OrderItem
	payments   map[int64]*domain.Payment
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		seq:        make(map[string]int64),
		products:   make(map[int64]*domain.Product),
		carts:      make(map[int64]*domain.Cart),
		cartItems:  make(map[int64]*domain.CartItem),
		orders:     make(map[int64]*domain.Order),
		orderItems: make(map[int64][]*domain.OrderItem),
		payments:   make(map[int64]*domain.Payment),
	}
}

func (s *MemoryStore) next(table string) int64 {
	s.seq[table]++
	return s.seq[table]
}

func page[T any](rows []T, skip, limit int) []T {
	if skip >= len(rows) {
		return []T{}
	}
	rows = rows[skip:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
