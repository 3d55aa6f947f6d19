package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f *fixture) order(t *testing.T, by Caller, seller Caller, items ...dto.OrderItemRequest) *domain.Order {
	t.Helper()
	o, err := f.orders.Create(context.Background(), by, &dto.CreateOrderRequest{
		SellerUserID: seller.UserID,
		Items:        items,
	})
	require.NoError(t, err)
	return o
}

func TestOrderCreate_Totals(t *testing.T) {
	f := newFixture(t, nil)
	p := f.product(t, sellerA, "9.93", 10)
	q := f.product(t, sellerA, "4.00", 10)

	o, err := f.orders.Create(context.Background(), buyer, &dto.CreateOrderRequest{
		SellerUserID:   sellerA.UserID,
		Items:          []dto.OrderItemRequest{{ProductID: p.ID, Quantity: 2}, {ProductID: q.ID, Quantity: 1}},
		ShippingCost:   dec("3.00"),
		DiscountAmount: dec("1.00"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusCreated, o.Status)
	assert.Equal(t, buyer.UserID, o.UserID)
	assert.True(t, o.Subtotal.Equal(dec("23.86")), o.Subtotal.String())
	assert.True(t, o.Tax.Equal(dec("4.77")), o.Tax.String())
	assert.True(t, o.Total.Equal(dec("30.63")), o.Total.String())
	require.Len(t, o.Items, 2)
	assert.True(t, o.Items[0].LineTotal.Equal(dec("19.86")))

	assert.Equal(t, []int64{o.ID}, f.publisher.created)
	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, buyer.Email, f.mailer.sent[0].To)
}

func TestOrderCreate_Rejections(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	mine := f.product(t, sellerA, "5", 10)
	theirs := f.product(t, sellerB, "5", 10)

	tests := []struct {
		name string
		req  *dto.CreateOrderRequest
		want error
	}{
		{
			name: "no items",
			req:  &dto.CreateOrderRequest{SellerUserID: sellerA.UserID},
			want: domain.ErrEmptyOrder,
		},
		{
			name: "other seller's product",
			req: &dto.CreateOrderRequest{
				SellerUserID: sellerA.UserID,
				Items:        []dto.OrderItemRequest{{ProductID: mine.ID, Quantity: 1}, {ProductID: theirs.ID, Quantity: 1}},
			},
			want: domain.ErrSellerMismatch,
		},
		{
			name: "unknown product",
			req: &dto.CreateOrderRequest{
				SellerUserID: sellerA.UserID,
				Items:        []dto.OrderItemRequest{{ProductID: 404, Quantity: 1}},
			},
			want: domain.ErrProductNotFound,
		},
		{
			name: "negative shipping",
			req: &dto.CreateOrderRequest{
				SellerUserID: sellerA.UserID,
				Items:        []dto.OrderItemRequest{{ProductID: mine.ID, Quantity: 1}},
				ShippingCost: dec("-1"),
			},
			want: domain.ErrInvalidAmount,
		},
		{
			name: "zero quantity",
			req: &dto.CreateOrderRequest{
				SellerUserID: sellerA.UserID,
				Items:        []dto.OrderItemRequest{{ProductID: mine.ID, Quantity: 0}},
			},
			want: domain.ErrInvalidQuantity,
		},
		{
			name: "more than in stock",
			req: &dto.CreateOrderRequest{
				SellerUserID: sellerA.UserID,
				Items:        []dto.OrderItemRequest{{ProductID: mine.ID, Quantity: 11}},
			},
			want: domain.ErrInsufficientStock,
		},
		{
			name: "lines together exceed stock",
			req: &dto.CreateOrderRequest{
				SellerUserID: sellerA.UserID,
				Items:        []dto.OrderItemRequest{{ProductID: mine.ID, Quantity: 6}, {ProductID: mine.ID, Quantity: 5}},
			},
			want: domain.ErrInsufficientStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.orders.Create(ctx, buyer, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	all, err := f.orders.List(ctx, admin, &dto.OrderListQuery{})
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.publisher.created)
}

func TestOrderCreate_PublishFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture(t, nil)
	f.publisher.err = errors.New("broker down")
	p := f.product(t, sellerA, "5", 10)

	o := f.order(t, buyer, sellerA, dto.OrderItemRequest{ProductID: p.ID, Quantity: 1})
	assert.NotZero(t, o.ID)
}

func TestOrderCheckout_SplitsBySeller(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	a := f.product(t, sellerA, "10.00", 5)
	b := f.product(t, sellerB, "3.83", 5)

	_, err := f.carts.AddItem(ctx, buyer.UserID, &dto.AddCartItemRequest{ProductID: b.ID, Quantity: 1})
	require.NoError(t, err)
	cart, err := f.carts.AddItem(ctx, buyer.UserID, &dto.AddCartItemRequest{ProductID: a.ID, Quantity: 2})
	require.NoError(t, err)

	res, err := f.orders.Checkout(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, res.CartID)
	require.Len(t, res.Orders, 2)

	first, second := res.Orders[0], res.Orders[1]
	assert.Equal(t, sellerA.UserID, first.SellerUserID)
	assert.True(t, first.Total.Equal(dec("24.00")), first.Total.String())
	assert.Equal(t, sellerB.UserID, second.SellerUserID)
	assert.True(t, second.Tax.Equal(dec("0.77")), second.Tax.String())
	assert.True(t, second.Total.Equal(dec("4.60")), second.Total.String())

	assert.Len(t, f.publisher.created, 2)
	assert.Len(t, f.mailer.sent, 2)

	// The checked out cart is replaced by a fresh one
	next, err := f.carts.Get(ctx, buyer.UserID)
	require.NoError(t, err)
	assert.NotEqual(t, cart.ID, next.ID)
	assert.Empty(t, next.Items)

	_, err = f.orders.Checkout(ctx, buyer)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestOrderCheckout_StockRecheckedAtCheckout(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := f.product(t, sellerA, "1", 5)

	_, err := f.carts.AddItem(ctx, buyer.UserID, &dto.AddCartItemRequest{ProductID: p.ID, Quantity: 4})
	require.NoError(t, err)
	_, err = f.products.Update(ctx, sellerA, p.ID, &dto.UpdateProductRequest{Stock: ptr(2)})
	require.NoError(t, err)

	_, err = f.orders.Checkout(ctx, buyer)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	cart, err := f.carts.Get(ctx, buyer.UserID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestOrderCheckout_NoCart(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.orders.Checkout(context.Background(), buyer)
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestOrderVisibility(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := f.product(t, sellerA, "5", 10)
	o := f.order(t, buyer, sellerA, dto.OrderItemRequest{ProductID: p.ID, Quantity: 1})
	f.order(t, stranger, sellerA, dto.OrderItemRequest{ProductID: p.ID, Quantity: 1})

	for _, c := range []Caller{buyer, sellerA, admin} {
		_, err := f.orders.Get(ctx, c, o.ID)
		assert.NoError(t, err, c.Email)
	}
	_, err := f.orders.Get(ctx, stranger, o.ID)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	// Non-admins only ever see their own purchases
	mine, err := f.orders.List(ctx, buyer, &dto.OrderListQuery{UserID: ptr(stranger.UserID)})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, o.ID, mine[0].ID)

	theirs, err := f.orders.List(ctx, admin, &dto.OrderListQuery{UserID: ptr(stranger.UserID)})
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, stranger.UserID, theirs[0].UserID)

	all, err := f.orders.List(ctx, admin, &dto.OrderListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOrderUpdateStatus(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := f.product(t, sellerA, "5", 10)
	o := f.order(t, buyer, sellerA, dto.OrderItemRequest{ProductID: p.ID, Quantity: 1})

	_, err := f.orders.UpdateStatus(ctx, buyer, o.ID, &dto.UpdateOrderStatusRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.orders.UpdateStatus(ctx, stranger, o.ID, &dto.UpdateOrderStatusRequest{Status: "CANCELLED"})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	_, err = f.orders.UpdateStatus(ctx, sellerA, o.ID, &dto.UpdateOrderStatusRequest{Status: "LOST"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrderStatus)

	_, err = f.orders.UpdateStatus(ctx, sellerA, o.ID, &dto.UpdateOrderStatusRequest{Status: "SHIPPED"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	updated, err := f.orders.UpdateStatus(ctx, sellerA, o.ID, &dto.UpdateOrderStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, updated.Status)

	_, err = f.orders.UpdateStatus(ctx, admin, o.ID, &dto.UpdateOrderStatusRequest{Status: "PAID"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestOrderDelete(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := f.product(t, sellerA, "5", 10)
	o := f.order(t, buyer, sellerA, dto.OrderItemRequest{ProductID: p.ID, Quantity: 1})

	require.NoError(t, f.orders.Delete(ctx, o.ID))
	assert.ErrorIs(t, f.orders.Delete(ctx, o.ID), domain.ErrOrderNotFound)
}
