package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/domain"
	"github.com/prohmpiriya/autostore-platform/pkg/database"
)

const quoteColumns = `id, booking_id, amount, status, created_at`

// PostgresQuoteRepository implements QuoteRepository using PostgreSQL
type PostgresQuoteRepository struct {
	db database.DBTX
}

// NewPostgresQuoteRepository creates a new PostgresQuoteRepository
func NewPostgresQuoteRepository(db database.DBTX) *PostgresQuoteRepository {
	return &PostgresQuoteRepository{db: db}
}

// Create creates the quote of a booking
func (r *PostgresQuoteRepository) Create(ctx context.Context, q *domain.Quote) error {
	if err := q.Validate(); err != nil {
		return err
	}
	query := `
		INSERT INTO quotes (booking_id, amount, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, q.BookingID, q.Amount, q.Status).Scan(&q.ID, &q.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.ErrQuoteExists
		}
		if database.IsForeignKeyViolation(err) {
			return domain.ErrBookingNotFound
		}
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

// GetByBookingID retrieves the quote of a booking
func (r *PostgresQuoteRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Quote, error) {
	q := &domain.Quote{}
	err := r.db.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE booking_id = $1`, bookingID).
		Scan(&q.ID, &q.BookingID, &q.Amount, &q.Status, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("select quote: %w", err)
	}
	return q, nil
}

// Update overwrites the amount and status of a quote
func (r *PostgresQuoteRepository) Update(ctx context.Context, q *domain.Quote) error {
	if err := q.Validate(); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE quotes SET amount = $3, status = $4 WHERE id = $1 AND booking_id = $2`,
		q.ID, q.BookingID, q.Amount, q.Status,
	)
	if err != nil {
		return fmt.Errorf("update quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuoteNotFound
	}
	return nil
}

// DeleteByBookingID removes the quote of a booking
func (r *PostgresQuoteRepository) DeleteByBookingID(ctx context.Context, bookingID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quotes WHERE booking_id = $1`, bookingID)
	if err != nil {
		return fmt.Errorf("delete quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuoteNotFound
	}
	return nil
}
