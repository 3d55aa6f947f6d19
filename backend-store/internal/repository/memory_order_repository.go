package repository

import (
	"context"
	"sort"
	"time"

	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
)

// MemoryOrderRepository implements OrderRepository on a MemoryStore
type MemoryOrderRepository struct{ s *MemoryStore }

// NewMemoryOrderRepository creates an order repository backed by s
func NewMemoryOrderRepository(s *MemoryStore) *MemoryOrderRepository {
	return &MemoryOrderRepository{s: s}
}

// Create stages the order and its items and only commits them when every
// item passes the same checks the schema enforces.
func (r *MemoryOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.s.insertOrders([]*domain.Order{order})
}

func (r *MemoryOrderRepository) Checkout(ctx context.Context, cartID int64, orders []*domain.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cart, ok := r.s.carts[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	if cart.Status != domain.CartStatusActive {
		return domain.ErrCartNotActive
	}
	if err := r.s.insertOrders(orders); err != nil {
		return err
	}
	cart.Status = domain.CartStatusCheckedOut
	return nil
}

func (s *MemoryStore) insertOrders(orders []*domain.Order) error {
	// Stage copies against a copy of the sequence. Nothing, including the
	// caller's orders, changes unless every order passes.
	staged := make([]*domain.Order, 0, len(orders))
	stagedItems := make([][]*domain.OrderItem, 0, len(orders))
	orderSeq, itemSeq := s.seq["orders"], s.seq["order_items"]
	now := time.Now()

	for _, o := range orders {
		if o.Total.IsNegative() {
			return domain.ErrInvalidAmount
		}
		orderSeq++
		stored := *o
		stored.ID = orderSeq
		stored.Items = nil
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = now
		}
		items := make([]*domain.OrderItem, 0, len(o.Items))
		for _, it := range o.Items {
			if it.Quantity <= 0 {
				return domain.ErrInvalidQuantity
			}
			itemSeq++
			cp := *it
			cp.ID = itemSeq
			cp.OrderID = stored.ID
			items = append(items, &cp)
		}
		staged = append(staged, &stored)
		stagedItems = append(stagedItems, items)
	}

	for i, o := range orders {
		stored := staged[i]
		s.orders[stored.ID] = stored
		s.orderItems[stored.ID] = stagedItems[i]

		o.ID = stored.ID
		o.CreatedAt = stored.CreatedAt
		for j, it := range o.Items {
			it.ID = stagedItems[i][j].ID
			it.OrderID = stored.ID
		}
	}
	s.seq["orders"], s.seq["order_items"] = orderSeq, itemSeq
	return nil
}

func (r *MemoryOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return r.s.orderWithItems(o), nil
}

func (r *MemoryOrderRepository) List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []*domain.Order
	for _, o := range r.s.orders {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		rows = append(rows, r.s.orderWithItems(o))
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return page(rows, filter.Skip, filter.Limit), nil
}

func (r *MemoryOrderRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.Status != from {
		return domain.ErrInvalidStatusTransition
	}
	o.Status = to
	return nil
}

// Delete removes the order, its items and its payments
func (r *MemoryOrderRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.s.orders, id)
	delete(r.s.orderItems, id)
	for pid, p := range r.s.payments {
		if p.OrderID == id {
			delete(r.s.payments, pid)
		}
	}
	return nil
}

func (s *MemoryStore) orderWithItems(o *domain.Order) *domain.Order {
	out := *o
	out.Items = make([]*domain.OrderItem, 0, len(s.orderItems[o.ID]))
	for _, it := range s.orderItems[o.ID] {
		cp := *it
		out.Items = append(out.Items, &cp)
	}
	return &out
}
