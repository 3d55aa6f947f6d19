package repository

import (
	"context"
	"testing"

	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBooking(customer int64, reg string) *domain.Booking {
	return &domain.Booking{
		CustomerUserID:   customer,
		Name:             "Sam Driver",
		VehicleMake:      "Ford",
		VehicleModel:     "Focus",
		VehicleYear:      2015,
		VehicleRegNumber: reg,
		Mileage:          64000,
		Date:             "2026-11-02",
		Time:             "09:30",
	}
}

func TestMemoryBookingRepository_RegNumberIsUnique(t *testing.T) {
	repo := NewMemoryBookingRepository(NewMemoryStore())
	ctx := context.Background()

	first := newBooking(1, "AB12CDE")
	require.NoError(t, repo.Create(ctx, first))
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, domain.BookingPending, first.Status)
	assert.False(t, first.CreatedAt.IsZero())

	assert.ErrorIs(t, repo.Create(ctx, newBooking(2, "AB12CDE")), domain.ErrBookingExists)

	got, err := repo.GetByRegNumber(ctx, "AB12CDE")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.CustomerUserID)

	_, err = repo.GetByRegNumber(ctx, "ZZ99ZZZ")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestMemoryBookingRepository_UpdateMovesRegNumber(t *testing.T) {
	repo := NewMemoryBookingRepository(NewMemoryStore())
	ctx := context.Background()

	a := newBooking(1, "AAA111")
	b := newBooking(1, "BBB222")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	clash := *a
	clash.VehicleRegNumber = "BBB222"
	assert.ErrorIs(t, repo.Update(ctx, &clash), domain.ErrBookingExists)

	moved := *a
	moved.VehicleRegNumber = "CCC333"
	moved.Status = domain.BookingCompleted // ignored, status has its own operation
	require.NoError(t, repo.Update(ctx, &moved))
	assert.Equal(t, domain.BookingPending, moved.Status)

	_, err := repo.GetByRegNumber(ctx, "AAA111")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	got, err := repo.GetByRegNumber(ctx, "CCC333")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	missing := newBooking(1, "DDD444")
	missing.ID = 99
	assert.ErrorIs(t, repo.Update(ctx, missing), domain.ErrBookingNotFound)
}

func TestMemoryBookingRepository_ListFilters(t *testing.T) {
	repo := NewMemoryBookingRepository(NewMemoryStore())
	ctx := context.Background()

	for i, reg := range []string{"R1", "R2", "R3", "R4"} {
		require.NoError(t, repo.Create(ctx, newBooking(int64(1+i%2), reg)))
	}
	require.NoError(t, repo.UpdateStatus(ctx, 3, domain.BookingApproved))

	all, err := repo.List(ctx, BookingFilter{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	customer := int64(1)
	mine, err := repo.List(ctx, BookingFilter{Limit: 100, CustomerID: &customer})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "R1", mine[0].VehicleRegNumber)
	assert.Equal(t, "R3", mine[1].VehicleRegNumber)

	approved := domain.BookingApproved
	byStatus, err := repo.List(ctx, BookingFilter{Limit: 100, Status: &approved})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, int64(3), byStatus[0].ID)

	page, err := repo.List(ctx, BookingFilter{Skip: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(2), page[0].ID)

	past, err := repo.List(ctx, BookingFilter{Skip: 10, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestMemoryQuoteRepository_OneQuotePerBooking(t *testing.T) {
	store := NewMemoryStore()
	bookings := NewMemoryBookingRepository(store)
	quotes := NewMemoryQuoteRepository(store)
	ctx := context.Background()

	b := newBooking(1, "AB12CDE")
	require.NoError(t, bookings.Create(ctx, b))

	assert.ErrorIs(t, quotes.Create(ctx, &domain.Quote{BookingID: 42, Amount: 100}), domain.ErrBookingNotFound)

	q := &domain.Quote{BookingID: b.ID, Amount: 5485}
	require.NoError(t, quotes.Create(ctx, q))
	assert.Equal(t, domain.QuotePending, q.Status)
	assert.ErrorIs(t, quotes.Create(ctx, &domain.Quote{BookingID: b.ID, Amount: 1}), domain.ErrQuoteExists)

	q.Status = domain.QuoteAccepted
	require.NoError(t, quotes.Update(ctx, q))
	got, err := quotes.GetByBookingID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteAccepted, got.Status)
	assert.Equal(t, int64(5485), got.Amount)

	q.Amount = -1
	assert.ErrorIs(t, quotes.Update(ctx, q), domain.ErrInvalidQuoteAmount)
}

func TestMemoryBookingRepository_DeleteCascadesToQuote(t *testing.T) {
	store := NewMemoryStore()
	bookings := NewMemoryBookingRepository(store)
	quotes := NewMemoryQuoteRepository(store)
	ctx := context.Background()

	b := newBooking(1, "AB12CDE")
	require.NoError(t, bookings.Create(ctx, b))
	require.NoError(t, quotes.Create(ctx, &domain.Quote{BookingID: b.ID, Amount: 100}))

	require.NoError(t, bookings.Delete(ctx, b.ID))
	_, err := quotes.GetByBookingID(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrQuoteNotFound)
	assert.ErrorIs(t, bookings.Delete(ctx, b.ID), domain.ErrBookingNotFound)

	// the registration number is free again
	require.NoError(t, bookings.Create(ctx, newBooking(2, "AB12CDE")))
}
