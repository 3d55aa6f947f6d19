package repository

import (
	"context"
	"sort"
	"time"

	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
)

// MemoryProductRepository implements ProductRepository on a MemoryStore
type MemoryProductRepository struct{ s *MemoryStore }

// NewMemoryProductRepository creates a product repository backed by s
func NewMemoryProductRepository(s *MemoryStore) *MemoryProductRepository {
	return &MemoryProductRepository{s: s}
}

func (r *MemoryProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := product.Validate(); err != nil {
		return err
	}
	product.ID = r.s.next("products")
	if product.AddedAt.IsZero() {
		product.AddedAt = time.Now()
	}
	stored := *product
	r.s.products[product.ID] = &stored
	return nil
}

func (r *MemoryProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	out := *p
	return &out, nil
}

func (r *MemoryProductRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var rows []*domain.Product
	for _, p := range r.s.products {
		if filter.SellerID != nil && p.SellerUserID != *filter.SellerID {
			continue
		}
		if !filter.Visible(p) {
			continue
		}
		out := *p
		rows = append(rows, &out)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return page(rows, filter.Skip, filter.Limit), nil
}

func (r *MemoryProductRepository) Update(ctx context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[product.ID]; !ok {
		return domain.ErrProductNotFound
	}
	if err := product.Validate(); err != nil {
		return err
	}
	stored := *product
	r.s.products[product.ID] = &stored
	return nil
}

// Delete removes the product and any cart lines that reference it
func (r *MemoryProductRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.s.products, id)
	for itemID, it := range r.s.cartItems {
		if it.ProductID == id {
			delete(r.s.cartItems, itemID)
		}
	}
	return nil
}
