package service

import (
	"context"
	"testing"

	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) quote(t *testing.T, reg string, amount int64) *domain.Quote {
	t.Helper()
	q, err := f.quotes.Create(context.Background(), admin, reg, &dto.CreateQuoteRequest{Amount: ptr(amount)})
	require.NoError(t, err)
	return q
}

func TestQuoteService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, customer, "AB12CDE")

	_, err := f.quotes.Create(ctx, customer, "AB12CDE", &dto.CreateQuoteRequest{Amount: ptr(int64(100))})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.quotes.Create(ctx, admin, "NOPE", &dto.CreateQuoteRequest{Amount: ptr(int64(100))})
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	_, err = f.quotes.Create(ctx, admin, "AB12CDE", &dto.CreateQuoteRequest{Amount: ptr(int64(-5))})
	assert.ErrorIs(t, err, domain.ErrInvalidQuoteAmount)
	_, err = f.quotes.Create(ctx, admin, "AB12CDE", &dto.CreateQuoteRequest{Amount: ptr(int64(5)), Status: "maybe"})
	assert.ErrorIs(t, err, domain.ErrInvalidQuoteStatus)

	q := f.quote(t, "ab12cde", 5485)
	assert.Equal(t, b.ID, q.BookingID)
	assert.Equal(t, domain.QuotePending, q.Status)

	_, err = f.quotes.Create(ctx, admin, "AB12CDE", &dto.CreateQuoteRequest{Amount: ptr(int64(1))})
	assert.ErrorIs(t, err, domain.ErrQuoteExists)
}

func TestQuoteService_GetVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, customer, "AB12CDE")

	_, err := f.quotes.Get(ctx, customer, "AB12CDE")
	assert.ErrorIs(t, err, domain.ErrQuoteNotFound)

	f.quote(t, "AB12CDE", 5485)

	q, err := f.quotes.Get(ctx, customer, "AB12CDE")
	require.NoError(t, err)
	assert.Equal(t, int64(5485), q.Amount)

	_, err = f.quotes.Get(ctx, other, "AB12CDE")
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	_, err = f.quotes.Get(ctx, admin, "AB12CDE")
	assert.NoError(t, err)
}

func TestQuoteService_OwnerMayOnlyAnswer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, customer, "AB12CDE")
	f.quote(t, "AB12CDE", 5485)

	tests := []struct {
		name string
		req  *dto.UpdateQuoteRequest
		want error
	}{
		{"amount", &dto.UpdateQuoteRequest{Amount: ptr(int64(1))}, domain.ErrForbidden},
		{"amount with answer", &dto.UpdateQuoteRequest{Amount: ptr(int64(1)), Status: ptr("Accepted")}, domain.ErrForbidden},
		{"back to pending", &dto.UpdateQuoteRequest{Status: ptr("Pending")}, domain.ErrForbidden},
		{"empty", &dto.UpdateQuoteRequest{}, domain.ErrForbidden},
		{"unknown status", &dto.UpdateQuoteRequest{Status: ptr("Haggle")}, domain.ErrInvalidQuoteStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.quotes.Update(ctx, customer, "AB12CDE", tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := f.quotes.Update(ctx, other, "AB12CDE", &dto.UpdateQuoteRequest{Status: ptr("Accepted")})
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)

	q, err := f.quotes.Update(ctx, customer, "AB12CDE", &dto.UpdateQuoteRequest{Status: ptr("declined")})
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteDeclined, q.Status)
	assert.Equal(t, int64(5485), q.Amount)
}

func TestQuoteService_AdminUpdatesAndDeletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, customer, "AB12CDE")
	f.quote(t, "AB12CDE", 5485)

	q, err := f.quotes.Update(ctx, admin, "AB12CDE", &dto.UpdateQuoteRequest{Amount: ptr(int64(4999)), Status: ptr("Pending")})
	require.NoError(t, err)
	assert.Equal(t, int64(4999), q.Amount)

	_, err = f.quotes.Update(ctx, admin, "AB12CDE", &dto.UpdateQuoteRequest{Amount: ptr(int64(-1))})
	assert.ErrorIs(t, err, domain.ErrInvalidQuoteAmount)

	assert.ErrorIs(t, f.quotes.Delete(ctx, customer, "AB12CDE"), domain.ErrForbidden)
	require.NoError(t, f.quotes.Delete(ctx, admin, "AB12CDE"))
	assert.ErrorIs(t, f.quotes.Delete(ctx, admin, "AB12CDE"), domain.ErrQuoteNotFound)

	_, err = f.quotes.Update(ctx, admin, "AB12CDE", &dto.UpdateQuoteRequest{Amount: ptr(int64(1))})
	assert.ErrorIs(t, err, domain.ErrQuoteNotFound)
}

func TestQuoteService_BookingDeleteRemovesQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, customer, "AB12CDE")
	f.quote(t, "AB12CDE", 100)

	require.NoError(t, f.bookings.Delete(ctx, customer, "AB12CDE"))
	f.book(t, customer, "AB12CDE")
	_, err := f.quotes.Get(ctx, customer, "AB12CDE")
	assert.ErrorIs(t, err, domain.ErrQuoteNotFound)
}
