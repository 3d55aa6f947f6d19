package repository

import (
	"context"

	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/domain"
)

// BookingFilter narrows booking listings. Nil fields do not filter.
type BookingFilter struct {
	Skip       int
	Limit      int
	CustomerID *int64
	Status     *domain.BookingStatus
}

// BookingRepository defines the interface for booking data access
type BookingRepository interface {
	// Create inserts a booking. A taken registration number is ErrBookingExists.
	Create(ctx context.Context, booking *domain.Booking) error
	// GetByRegNumber looks a booking up by its normalized registration number
	GetByRegNumber(ctx context.Context, reg string) (*domain.Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]*domain.Booking, error)
	// Update overwrites every editable field, including the registration number
	Update(ctx context.Context, booking *domain.Booking) error
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	// Delete removes the booking and its quote
	Delete(ctx context.Context, id int64) error
}

// QuoteRepository defines the interface for quote data access. A booking has
// at most one quote.
type QuoteRepository interface {
	// Create inserts a quote. A second quote for a booking is ErrQuoteExists.
	Create(ctx context.Context, quote *domain.Quote) error
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Quote, error)
	Update(ctx context.Context, quote *domain.Quote) error
	DeleteByBookingID(ctx context.Context, bookingID int64) error
}
