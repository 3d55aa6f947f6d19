package repository

import (
	"context"
	"sort"
	"time"

	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/domain"
)

// MemoryBookingRepository implements BookingRepository in memory
type MemoryBookingRepository struct {
	s *MemoryStore
}

// NewMemoryBookingRepository creates a new MemoryBookingRepository
func NewMemoryBookingRepository(s *MemoryStore) *MemoryBookingRepository {
	return &MemoryBookingRepository{s: s}
}

func (r *MemoryBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.regIndex[booking.VehicleRegNumber]; taken {
		return domain.ErrBookingExists
	}
	r.s.bookingSeq++
	booking.ID = r.s.bookingSeq
	if booking.Status == "" {
		booking.Status = domain.BookingPending
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}
	stored := *booking
	r.s.bookings[booking.ID] = &stored
	r.s.regIndex[booking.VehicleRegNumber] = booking.ID
	return nil
}

func (r *MemoryBookingRepository) GetByRegNumber(ctx context.Context, reg string) (*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.regIndex[reg]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	out := *r.s.bookings[id]
	return &out, nil
}

func (r *MemoryBookingRepository) List(ctx context.Context, filter BookingFilter) ([]*domain.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rows := []*domain.Booking{}
	for _, b := range r.s.bookings {
		if filter.CustomerID != nil && b.CustomerUserID != *filter.CustomerID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out := *b
		rows = append(rows, &out)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

	if filter.Skip >= len(rows) {
		return []*domain.Booking{}, nil
	}
	rows = rows[filter.Skip:]
	if filter.Limit > 0 && filter.Limit < len(rows) {
		rows = rows[:filter.Limit]
	}
	return rows, nil
}

func (r *MemoryBookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.bookings[booking.ID]
	if !ok {
		return domain.ErrBookingNotFound
	}
	if booking.VehicleRegNumber != current.VehicleRegNumber {
		if _, taken := r.s.regIndex[booking.VehicleRegNumber]; taken {
			return domain.ErrBookingExists
		}
		delete(r.s.regIndex, current.VehicleRegNumber)
		r.s.regIndex[booking.VehicleRegNumber] = booking.ID
	}

	stored := *booking
	stored.CustomerUserID = current.CustomerUserID
	stored.Status = current.Status
	stored.CreatedAt = current.CreatedAt
	r.s.bookings[booking.ID] = &stored
	*booking = stored
	return nil
}

func (r *MemoryBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (r *MemoryBookingRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return domain.ErrBookingNotFound
	}
	delete(r.s.regIndex, b.VehicleRegNumber)
	delete(r.s.bookings, id)
	delete(r.s.quotes, id)
	return nil
}
