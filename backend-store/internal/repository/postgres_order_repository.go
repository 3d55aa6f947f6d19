package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
	"github.com/prohmpiriya/autostore-platform/pkg/database"
)

const orderColumns = `id, user_id, seller_user_id, subtotal, tax, shipping_cost, discount_amount, total, status, created_at`

// TxDB is a connection pool that can also open transactions.
// *pgxpool.Pool satisfies it.
type TxDB interface {
	database.DBTX
	database.TxBeginner
}

// PostgresOrderRepository implements OrderRepository using PostgreSQL
type PostgresOrderRepository struct {
	db TxDB
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository
func NewPostgresOrderRepository(db TxDB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// Create inserts the order and its items in one transaction. Generated ids
// are copied onto order only after commit.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	var keys insertedOrder
	err := database.WithTx(ctx, r.db, func(ctx context.Context, tx database.DBTX) error {
		var err error
		keys, err = insertOrder(ctx, tx, order)
		return err
	})
	if err != nil {
		return err
	}
	keys.applyTo(order)
	return nil
}

// Checkout inserts every order and closes the cart in one transaction. The
// cart row is locked so two checkouts of the same cart cannot both succeed.
func (r *PostgresOrderRepository) Checkout(ctx context.Context, cartID int64, orders []*domain.Order) error {
	keys := make([]insertedOrder, 0, len(orders))
	err := database.WithTx(ctx, r.db, func(ctx context.Context, tx database.DBTX) error {
		keys = keys[:0]
		var status domain.CartStatus
		err := tx.QueryRow(ctx, `SELECT status FROM carts WHERE id = $1 FOR UPDATE`, cartID).Scan(&status)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrCartNotFound
			}
			return fmt.Errorf("lock cart: %w", err)
		}
		if status != domain.CartStatusActive {
			return domain.ErrCartNotActive
		}

		for _, o := range orders {
			k, err := insertOrder(ctx, tx, o)
			if err != nil {
				return err
			}
			keys = append(keys, k)
		}

		if _, err := tx.Exec(ctx, `UPDATE carts SET status = 'CHECKED_OUT' WHERE id = $1`, cartID); err != nil {
			return fmt.Errorf("close cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	for i, o := range orders {
		keys[i].applyTo(o)
	}
	return nil
}

// insertedOrder holds the values the database generated for one order
type insertedOrder struct {
	id        int64
	createdAt time.Time
	itemIDs   []int64
}

func (k insertedOrder) applyTo(o *domain.Order) {
	o.ID = k.id
	o.CreatedAt = k.createdAt
	for i, it := range o.Items {
		it.ID = k.itemIDs[i]
		it.OrderID = k.id
	}
}

func insertOrder(ctx context.Context, tx database.DBTX, o *domain.Order) (insertedOrder, error) {
	var k insertedOrder
	query := `
		INSERT INTO orders (user_id, seller_user_id, subtotal, tax, shipping_cost, discount_amount, total, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := tx.QueryRow(ctx, query,
		o.UserID,
		o.SellerUserID,
		o.Subtotal,
		o.Tax,
		o.ShippingCost,
		o.DiscountAmount,
		o.Total,
		o.Status,
	).Scan(&k.id, &k.createdAt)
	if err != nil {
		return k, fmt.Errorf("insert order: %w", err)
	}

	k.itemIDs = make([]int64, len(o.Items))
	for i, it := range o.Items {
		err := tx.QueryRow(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, unit_price, line_total)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			k.id, it.ProductID, it.Quantity, it.UnitPrice, it.LineTotal,
		).Scan(&k.itemIDs[i])
		if err != nil {
			return k, fmt.Errorf("insert order item: %w", err)
		}
	}
	return k, nil
}

// GetByID retrieves an order with its items
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	byOrder, err := r.itemsFor(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = byOrder[o.ID]
	if o.Items == nil {
		o.Items = []*domain.OrderItem{}
	}
	return o, nil
}

// List returns orders ordered by id, each with its items
func (r *PostgresOrderRepository) List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
		WHERE ($1::BIGINT IS NULL OR user_id = $1)
		ORDER BY id
		OFFSET $2 LIMIT $3`

	rows, err := r.db.Query(ctx, query, filter.UserID, filter.Skip, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	var ids []int64
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	byOrder, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Items = byOrder[o.ID]
		if o.Items == nil {
			o.Items = []*domain.OrderItem{}
		}
	}
	return orders, nil
}

func (r *PostgresOrderRepository) itemsFor(ctx context.Context, orderIDs []int64) (map[int64][]*domain.OrderItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, order_id, product_id, quantity, unit_price, line_total
		 FROM order_items WHERE order_id = ANY($1) ORDER BY id`,
		orderIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]*domain.OrderItem, len(orderIDs))
	for rows.Next() {
		it := &domain.OrderItem{}
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

// UpdateStatus moves an order from one status to another
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check order: %w", err)
	}
	if !exists {
		return domain.ErrOrderNotFound
	}
	return domain.ErrInvalidStatusTransition
}

// Delete removes an order. Items and payments cascade.
func (r *PostgresOrderRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	o := &domain.Order{}
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.SellerUserID,
		&o.Subtotal,
		&o.Tax,
		&o.ShippingCost,
		&o.DiscountAmount,
		&o.Total,
		&o.Status,
		&o.CreatedAt,
	)
	return o, err
}
