package repository

import (
	"context"
	"sort"
	"time"

	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
)

// MemoryPaymentRepository implements PaymentRepository on a MemoryStore
type MemoryPaymentRepository struct{ s *MemoryStore }

// NewMemoryPaymentRepository creates a payment repository backed by s
func NewMemoryPaymentRepository(s *MemoryStore) *MemoryPaymentRepository {
	return &MemoryPaymentRepository{s: s}
}

func (r *MemoryPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[payment.OrderID]; !ok {
		return domain.ErrOrderNotFound
	}
	payment.ID = r.s.next("payments")
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	stored := *payment
	r.s.payments[payment.ID] = &stored
	return nil
}

func (r *MemoryPaymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]*domain.Payment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := []*domain.Payment{}
	for _, p := range r.s.payments {
		if p.OrderID == orderID {
			out := *p
			rows = append(rows, &out)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}
