package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
	"github.com/prohmpiriya/autostore-platform/pkg/database"
)

// PostgresCartRepository implements CartRepository using PostgreSQL
type PostgresCartRepository struct {
	db database.DBTX
}

// NewPostgresCartRepository creates a new PostgresCartRepository
func NewPostgresCartRepository(db database.DBTX) *PostgresCartRepository {
	return &PostgresCartRepository{db: db}
}

// GetActive returns the user's active cart with its items
func (r *PostgresCartRepository) GetActive(ctx context.Context, userID int64) (*domain.Cart, error) {
	cart := &domain.Cart{}
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, status, created_at FROM carts WHERE user_id = $1 AND status = 'ACTIVE'`,
		userID,
	).Scan(&cart.ID, &cart.UserID, &cart.Status, &cart.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, fmt.Errorf("select cart: %w", err)
	}

	cart.Items, err = r.items(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// Create inserts an active cart. The partial unique index on active carts
// turns a concurrent create into a read of the winner.
func (r *PostgresCartRepository) Create(ctx context.Context, cart *domain.Cart) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO carts (user_id, status) VALUES ($1, 'ACTIVE') RETURNING id, status, created_at`,
		cart.UserID,
	).Scan(&cart.ID, &cart.Status, &cart.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			existing, getErr := r.GetActive(ctx, cart.UserID)
			if getErr != nil {
				return getErr
			}
			*cart = *existing
			return nil
		}
		return fmt.Errorf("insert cart: %w", err)
	}
	cart.Items = []*domain.CartItem{}
	return nil
}

// AddItem upserts on (cart_id, product_id), adding to the existing quantity
func (r *PostgresCartRepository) AddItem(ctx context.Context, item *domain.CartItem) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, quantity, unit_price
	`
	err := r.db.QueryRow(ctx, query, item.CartID, item.ProductID, item.Quantity, item.UnitPrice).
		Scan(&item.ID, &item.Quantity, &item.UnitPrice)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

// GetItem retrieves a cart line by ID
func (r *PostgresCartRepository) GetItem(ctx context.Context, itemID int64) (*domain.CartItem, error) {
	it := &domain.CartItem{}
	err := r.db.QueryRow(ctx,
		`SELECT id, cart_id, product_id, quantity, unit_price FROM cart_items WHERE id = $1`,
		itemID,
	).Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.UnitPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("select cart item: %w", err)
	}
	return it, nil
}

// UpdateItemQuantity sets the quantity of a line
func (r *PostgresCartRepository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	tag, err := r.db.Exec(ctx, `UPDATE cart_items SET quantity = $2 WHERE id = $1`, itemID, quantity)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

// DeleteItem removes a line
func (r *PostgresCartRepository) DeleteItem(ctx context.Context, itemID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartItemNotFound
	}
	return nil
}

func (r *PostgresCartRepository) items(ctx context.Context, cartID int64) ([]*domain.CartItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, cart_id, product_id, quantity, unit_price FROM cart_items WHERE cart_id = $1 ORDER BY id`,
		cartID,
	)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	items := []*domain.CartItem{}
	for rows.Next() {
		it := &domain.CartItem{}
		if err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
