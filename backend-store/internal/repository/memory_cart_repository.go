package repository

import (
	"context"
	"sort"
	"time"

	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
)

// MemoryCartRepository implements CartRepository on a MemoryStore
type MemoryCartRepository struct{ s *MemoryStore }

// NewMemoryCartRepository creates a cart repository backed by s
func NewMemoryCartRepository(s *MemoryStore) *MemoryCartRepository {
	return &MemoryCartRepository{s: s}
}

func (r *MemoryCartRepository) GetActive(ctx context.Context, userID int64) (*domain.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c := r.s.activeCart(userID)
	if c == nil {
		return nil, domain.ErrCartNotFound
	}
	return r.s.cartWithItems(c), nil
}

func (r *MemoryCartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing := r.s.activeCart(cart.UserID); existing != nil {
		*cart = *r.s.cartWithItems(existing)
		return nil
	}

	cart.ID = r.s.next("carts")
	cart.Status = domain.CartStatusActive
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = time.Now()
	}
	cart.Items = []*domain.CartItem{}
	stored := *cart
	stored.Items = nil
	r.s.carts[cart.ID] = &stored
	return nil
}

func (r *MemoryCartRepository) AddItem(ctx context.Context, item *domain.CartItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if item.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if _, ok := r.s.carts[item.CartID]; !ok {
		return domain.ErrCartNotFound
	}
	if _, ok := r.s.products[item.ProductID]; !ok {
		return domain.ErrProductNotFound
	}

	for _, it := range r.s.cartItems {
		if it.CartID == item.CartID && it.ProductID == item.ProductID {
			it.Quantity += item.Quantity
			*item = *it
			return nil
		}
	}

	item.ID = r.s.next("cart_items")
	stored := *item
	r.s.cartItems[item.ID] = &stored
	return nil
}

func (r *MemoryCartRepository) GetItem(ctx context.Context, itemID int64) (*domain.CartItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	it, ok := r.s.cartItems[itemID]
	if !ok {
		return nil, domain.ErrCartItemNotFound
	}
	out := *it
	return &out, nil
}

func (r *MemoryCartRepository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	it, ok := r.s.cartItems[itemID]
	if !ok {
		return domain.ErrCartItemNotFound
	}
	it.Quantity = quantity
	return nil
}

func (r *MemoryCartRepository) DeleteItem(ctx context.Context, itemID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.cartItems[itemID]; !ok {
		return domain.ErrCartItemNotFound
	}
	delete(r.s.cartItems, itemID)
	return nil
}

func (s *MemoryStore) activeCart(userID int64) *domain.Cart {
	for _, c := range s.carts {
		if c.UserID == userID && c.Status == domain.CartStatusActive {
			return c
		}
	}
	return nil
}

func (s *MemoryStore) cartWithItems(c *domain.Cart) *domain.Cart {
	out := *c
	out.Items = []*domain.CartItem{}
	for _, it := range s.cartItems {
		if it.CartID == c.ID {
			cp := *it
			out.Items = append(out.Items, &cp)
		}
	}
	sort.Slice(out.Items, func(i, j int) bool { return out.Items[i].ID < out.Items[j].ID })
	return &out
}
