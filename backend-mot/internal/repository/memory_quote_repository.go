package repository

import (
	"context"
	"time"

	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/domain"
)

// MemoryQuoteRepository implements QuoteRepository in memory
type MemoryQuoteRepository struct {
	s *MemoryStore
}

// NewMemoryQuoteRepository creates a new MemoryQuoteRepository
func NewMemoryQuoteRepository(s *MemoryStore) *MemoryQuoteRepository {
	return &MemoryQuoteRepository{s: s}
}

func (r *MemoryQuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.bookings[quote.BookingID]; !ok {
		return domain.ErrBookingNotFound
	}
	if _, exists := r.s.quotes[quote.BookingID]; exists {
		return domain.ErrQuoteExists
	}
	if err := quote.Validate(); err != nil {
		return err
	}
	r.s.quoteSeq++
	quote.ID = r.s.quoteSeq
	if quote.CreatedAt.IsZero() {
		quote.CreatedAt = time.Now()
	}
	stored := *quote
	r.s.quotes[quote.BookingID] = &stored
	return nil
}

func (r *MemoryQuoteRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Quote, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	q, ok := r.s.quotes[bookingID]
	if !ok {
		return nil, domain.ErrQuoteNotFound
	}
	out := *q
	return &out, nil
}

func (r *MemoryQuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q, ok := r.s.quotes[quote.BookingID]
	if !ok || q.ID != quote.ID {
		return domain.ErrQuoteNotFound
	}
	if err := quote.Validate(); err != nil {
		return err
	}
	q.Amount = quote.Amount
	q.Status = quote.Status
	return nil
}

func (r *MemoryQuoteRepository) DeleteByBookingID(ctx context.Context, bookingID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.quotes[bookingID]; !ok {
		return domain.ErrQuoteNotFound
	}
	delete(r.s.quotes, bookingID)
	return nil
}
