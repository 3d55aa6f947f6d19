package repository

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
	"github.com/prohmpiriya/autostore-platform/pkg/database"
)

// PostgresPaymentRepository implements PaymentRepository using PostgreSQL
type PostgresPaymentRepository struct {
	db database.DBTX
}

// NewPostgresPaymentRepository creates a new PostgresPaymentRepository
func NewPostgresPaymentRepository(db database.DBTX) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

// Create records a payment attempt
func (r *PostgresPaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `
		INSERT INTO payments (order_id, transaction_id, amount, currency, status, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query,
		p.OrderID,
		p.TransactionID,
		p.Amount,
		p.Currency,
		p.Status,
		p.FailureReason,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// ListByOrder returns the payment attempts of an order, oldest first
func (r *PostgresPaymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]*domain.Payment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, transaction_id, amount, currency, status, failure_reason, created_at
		 FROM payments WHERE order_id = $1 ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	payments := []*domain.Payment{}
	for rows.Next() {
		p := &domain.Payment{}
		if err := rows.Scan(&p.ID, &p.OrderID, &p.TransactionID, &p.Amount, &p.Currency, &p.Status, &p.FailureReason, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
