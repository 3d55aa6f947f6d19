package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-store/migrations"
	"github.com/prohmpiriya/autostore-platform/pkg/database/dbtest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStoreDB(t *testing.T) *pgxpool.Pool {
	return dbtest.Open(t, "store_test", migrations.FS, "payments", "order_items", "orders", "cart_items", "carts", "products")
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestPostgresOrderRepository_CreateIsAtomic(t *testing.T) {
	pool := openStoreDB(t)
	repo := NewPostgresOrderRepository(pool)
	ctx := context.Background()

	price := decimal.RequireFromString("10.00")
	o := newOrder(1, 2,
		domain.NewOrderItem(1, 1, price),
		domain.NewOrderItem(2, 0, price), // rejected by the quantity check
		domain.NewOrderItem(3, 1, price),
	)

	assert.Error(t, repo.Create(ctx, o))
	assert.Equal(t, 0, countRows(t, pool, "orders"))
	assert.Equal(t, 0, countRows(t, pool, "order_items"))
	assert.Zero(t, o.ID)
	assert.Zero(t, o.Items[0].ID)

	ok := newOrder(1, 2, domain.NewOrderItem(1, 2, price))
	require.NoError(t, repo.Create(ctx, ok))

	got, err := repo.GetByID(ctx, ok.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, ok.Items[0].ID, got.Items[0].ID)
	assert.True(t, decimal.RequireFromString("20").Equal(got.Subtotal))
	assert.True(t, decimal.RequireFromString("24").Equal(got.Total))
	assert.Equal(t, domain.OrderStatusCreated, got.Status)
}

func TestPostgresStore_CartCheckoutFlow(t *testing.T) {
	pool := openStoreDB(t)
	products := NewPostgresProductRepository(pool)
	carts := NewPostgresCartRepository(pool)
	orders := NewPostgresOrderRepository(pool)
	payments := NewPostgresPaymentRepository(pool)
	ctx := context.Background()

	p := &domain.Product{SellerUserID: 9, SellerUsername: "Shop", Name: "Wiper", Price: decimal.RequireFromString("7.50"), Condition: domain.ConditionUsed, Stock: 4, Active: true}
	require.NoError(t, products.Create(ctx, p))

	cart := &domain.Cart{UserID: 3}
	require.NoError(t, carts.Create(ctx, cart))
	dup := &domain.Cart{UserID: 3}
	require.NoError(t, carts.Create(ctx, dup))
	assert.Equal(t, cart.ID, dup.ID)

	require.NoError(t, carts.AddItem(ctx, &domain.CartItem{CartID: cart.ID, ProductID: p.ID, Quantity: 1, UnitPrice: p.Price}))
	item := &domain.CartItem{CartID: cart.ID, ProductID: p.ID, Quantity: 2, UnitPrice: p.Price}
	require.NoError(t, carts.AddItem(ctx, item))
	assert.Equal(t, 3, item.Quantity)

	o := newOrder(3, 9, domain.NewOrderItem(p.ID, 3, p.Price))
	require.NoError(t, orders.Checkout(ctx, cart.ID, []*domain.Order{o}))
	assert.ErrorIs(t, orders.Checkout(ctx, cart.ID, nil), domain.ErrCartNotActive)

	_, err := carts.GetActive(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrCartNotFound)

	require.NoError(t, payments.Create(ctx, &domain.Payment{OrderID: o.ID, TransactionID: "pi_1", Amount: o.Total, Currency: "gbp", Status: domain.PaymentStatusSuccess}))
	require.NoError(t, orders.UpdateStatus(ctx, o.ID, domain.OrderStatusCreated, domain.OrderStatusProcessing))
	assert.ErrorIs(t, orders.UpdateStatus(ctx, o.ID, domain.OrderStatusCreated, domain.OrderStatusProcessing), domain.ErrInvalidStatusTransition)
	require.NoError(t, orders.UpdateStatus(ctx, o.ID, domain.OrderStatusProcessing, domain.OrderStatusPaid))

	list, err := payments.ListByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, o.Total.Equal(list[0].Amount))

	require.NoError(t, orders.Delete(ctx, o.ID))
	assert.Equal(t, 0, countRows(t, pool, "payments"))
	assert.ErrorIs(t, orders.Delete(ctx, o.ID), domain.ErrOrderNotFound)
}
