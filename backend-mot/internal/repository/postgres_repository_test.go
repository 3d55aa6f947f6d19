package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-mot/migrations"
	"github.com/prohmpiriya/autostore-platform/pkg/database/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMOTDB(t *testing.T) *pgxpool.Pool {
	return dbtest.Open(t, "mot_test", migrations.FS, "quotes", "bookings")
}

func TestPostgresBookingRepository_RoundTripsDateAndTime(t *testing.T) {
	pool := openMOTDB(t)
	repo := NewPostgresBookingRepository(pool)
	ctx := context.Background()

	b := newBooking(5, "AB12CDE")
	require.NoError(t, repo.Create(ctx, b))
	assert.NotZero(t, b.ID)

	got, err := repo.GetByRegNumber(ctx, "AB12CDE")
	require.NoError(t, err)
	assert.Equal(t, "2026-11-02", got.Date)
	assert.Equal(t, "09:30", got.Time)
	assert.Equal(t, domain.BookingPending, got.Status)
	assert.Equal(t, 64000, got.Mileage)

	assert.ErrorIs(t, repo.Create(ctx, newBooking(6, "AB12CDE")), domain.ErrBookingExists)
}

func TestPostgresBookingRepository_UpdateAndList(t *testing.T) {
	pool := openMOTDB(t)
	repo := NewPostgresBookingRepository(pool)
	ctx := context.Background()

	a := newBooking(1, "AAA111")
	b := newBooking(2, "BBB222")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	a.VehicleRegNumber = "BBB222"
	assert.ErrorIs(t, repo.Update(ctx, a), domain.ErrBookingExists)

	a.VehicleRegNumber = "CCC333"
	a.Time = "14:15"
	require.NoError(t, repo.Update(ctx, a))
	got, err := repo.GetByRegNumber(ctx, "CCC333")
	require.NoError(t, err)
	assert.Equal(t, "14:15", got.Time)

	require.NoError(t, repo.UpdateStatus(ctx, b.ID, domain.BookingApproved))
	approved := domain.BookingApproved
	rows, err := repo.List(ctx, BookingFilter{Limit: 10, Status: &approved})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, b.ID, rows[0].ID)

	customer := int64(1)
	rows, err = repo.List(ctx, BookingFilter{Limit: 10, CustomerID: &customer})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, a.ID, rows[0].ID)
}

func TestPostgresQuoteRepository_CascadeAndUniqueness(t *testing.T) {
	pool := openMOTDB(t)
	bookings := NewPostgresBookingRepository(pool)
	quotes := NewPostgresQuoteRepository(pool)
	ctx := context.Background()

	b := newBooking(1, "AB12CDE")
	require.NoError(t, bookings.Create(ctx, b))

	assert.ErrorIs(t, quotes.Create(ctx, &domain.Quote{BookingID: b.ID + 100, Amount: 1}), domain.ErrBookingNotFound)

	q := &domain.Quote{BookingID: b.ID, Amount: 5485}
	require.NoError(t, quotes.Create(ctx, q))
	assert.ErrorIs(t, quotes.Create(ctx, &domain.Quote{BookingID: b.ID, Amount: 1}), domain.ErrQuoteExists)

	q.Status = domain.QuoteDeclined
	require.NoError(t, quotes.Update(ctx, q))
	got, err := quotes.GetByBookingID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteDeclined, got.Status)

	require.NoError(t, bookings.Delete(ctx, b.ID))
	_, err = quotes.GetByBookingID(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrQuoteNotFound)
}
