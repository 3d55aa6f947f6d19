package service

import (
	"context"
	"sync"
	"testing"

	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/dto"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/gateway"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/notifier"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/repository"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sellerA  = Caller{UserID: 10, Email: "alice@motors.test", Name: "Alice Motors", Role: auth.RoleSeller}
	sellerB  = Caller{UserID: 11, Email: "bob@parts.test", Name: "-", Role: auth.RoleSeller}
	buyer    = Caller{UserID: 20, Email: "buyer@example.com", Name: "Bea Buyer", Role: auth.RoleBuyer}
	stranger = Caller{UserID: 30, Email: "nosy@example.com", Role: auth.RoleBuyer}
	admin    = Caller{UserID: 1, Email: "admin@example.com", Role: auth.RoleAdmin}
)

// recordingPublisher keeps the ids of published orders
type recordingPublisher struct {
	mu      sync.Mutex
	created []int64
	paid    []int64
	err     error
}

func (p *recordingPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, order.ID)
	return p.err
}

func (p *recordingPublisher) PublishOrderPaid(ctx context.Context, order *domain.Order, payment *domain.Payment) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paid = append(p.paid, order.ID)
	return p.err
}

func (p *recordingPublisher) Close() {}

// recordingMailer keeps every dispatched email
type recordingMailer struct {
	mu   sync.Mutex
	sent []*notifier.Email
}

func (m *recordingMailer) Dispatch(ctx context.Context, email *notifier.Email) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
}

type fixture struct {
	products  ProductService
	carts     CartService
	orders    OrderService
	payments  PaymentService
	orderRepo repository.OrderRepository
	gw        gateway.PaymentGateway
	publisher *recordingPublisher
	mailer    *recordingMailer
}

func newFixture(t *testing.T, gw gateway.PaymentGateway) *fixture {
	t.Helper()
	if gw == nil {
		gw = gateway.NewMockGateway(nil)
	}
	store := repository.NewMemoryStore()
	productRepo := repository.NewMemoryProductRepository(store)
	cartRepo := repository.NewMemoryCartRepository(store)
	orderRepo := repository.NewMemoryOrderRepository(store)
	paymentRepo := repository.NewMemoryPaymentRepository(store)

	pub := &recordingPublisher{}
	mailer := &recordingMailer{}
	cfg := &OrderServiceConfig{TaxRate: decimal.RequireFromString("0.20"), Currency: "gbp"}

	return &fixture{
		products:  NewProductService(productRepo),
		carts:     NewCartService(cartRepo, productRepo),
		orders:    NewOrderService(orderRepo, cartRepo, productRepo, pub, mailer, cfg, nil),
		payments:  NewPaymentService(orderRepo, paymentRepo, gw, pub, mailer, "GBP", nil),
		orderRepo: orderRepo,
		gw:        gw,
		publisher: pub,
		mailer:    mailer,
	}
}

func (f *fixture) product(t *testing.T, seller Caller, price string, stock int) *domain.Product {
	t.Helper()
	p := decimal.RequireFromString(price)
	out, err := f.products.Create(context.Background(), seller, &dto.CreateProductRequest{
		Name:  "Brake pads",
		Price: &p,
		Stock: stock,
	})
	require.NoError(t, err)
	return out
}

func ptr[T any](v T) *T { return &v }

func TestProductCreate_Defaults(t *testing.T) {
	f := newFixture(t, nil)

	p := f.product(t, sellerA, "49.99", 3)
	assert.Equal(t, sellerA.UserID, p.SellerUserID)
	assert.Equal(t, "Alice Motors", p.SellerUsername)
	assert.Equal(t, domain.ConditionNew, p.Condition)
	assert.True(t, p.Active)

	// No registered name falls back to the email
	q := f.product(t, sellerB, "5", 1)
	assert.Equal(t, "bob@parts.test", q.SellerUsername)
}

func TestProductCreate_Validation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	zero := decimal.Zero
	_, err := f.products.Create(ctx, sellerA, &dto.CreateProductRequest{Name: "x", Price: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	price := decimal.NewFromInt(5)
	_, err = f.products.Create(ctx, sellerA, &dto.CreateProductRequest{Name: "x", Price: &price, Stock: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidStock)

	_, err = f.products.Create(ctx, sellerA, &dto.CreateProductRequest{Name: "x", Price: &price, Condition: "broken"})
	assert.ErrorIs(t, err, domain.ErrInvalidCondition)
}

func TestProductUpdate_Ownership(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := f.product(t, sellerA, "10", 1)

	_, err := f.products.Update(ctx, sellerB, p.ID, &dto.UpdateProductRequest{Stock: ptr(4)})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := f.products.Update(ctx, sellerA, p.ID, &dto.UpdateProductRequest{Stock: ptr(4), Condition: ptr("used")})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Stock)
	assert.Equal(t, domain.ConditionUsed, updated.Condition)

	// Admin may edit any listing
	_, err = f.products.Update(ctx, admin, p.ID, &dto.UpdateProductRequest{Active: ptr(false)})
	require.NoError(t, err)

	got, err := f.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestProductDelete(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := f.product(t, sellerA, "10", 1)

	assert.ErrorIs(t, f.products.Delete(ctx, sellerB, p.ID), domain.ErrForbidden)
	require.NoError(t, f.products.Delete(ctx, sellerA, p.ID))
	assert.ErrorIs(t, f.products.Delete(ctx, sellerA, p.ID), domain.ErrProductNotFound)
}

func TestProductList_LimitClamped(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		f.product(t, sellerA, "1", 1)
	}
	f.product(t, sellerB, "1", 1)

	all, err := f.products.List(ctx, nil, &dto.ProductListQuery{Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	mine, err := f.products.List(ctx, nil, &dto.ProductListQuery{SellerID: ptr(sellerB.UserID)})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, sellerB.UserID, mine[0].SellerUserID)
}

func TestProductList_InactiveVisibility(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.product(t, sellerA, "1", 1)
	hiddenA := f.product(t, sellerA, "1", 1)
	_, err := f.products.Update(ctx, sellerA, hiddenA.ID, &dto.UpdateProductRequest{Active: ptr(false)})
	require.NoError(t, err)
	hiddenB := f.product(t, sellerB, "1", 1)
	_, err = f.products.Update(ctx, sellerB, hiddenB.ID, &dto.UpdateProductRequest{Active: ptr(false)})
	require.NoError(t, err)

	tests := []struct {
		name   string
		viewer *Caller
		want   int
	}{
		{"anonymous", nil, 1},
		{"buyer", &buyer, 1},
		{"seller sees own inactive", &sellerA, 2},
		{"admin sees all", &admin, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.products.List(ctx, tt.viewer, &dto.ProductListQuery{})
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestCart_GetCreatesOnce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first, err := f.carts.Get(ctx, buyer.UserID)
	require.NoError(t, err)
	second, err := f.carts.Get(ctx, buyer.UserID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, second.Items)
}

func TestCart_AddItemMergesAndChecksStock(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := f.product(t, sellerA, "12.50", 3)

	cart, err := f.carts.AddItem(ctx, buyer.UserID, &dto.AddCartItemRequest{ProductID: p.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	cart, err = f.carts.AddItem(ctx, buyer.UserID, &dto.AddCartItemRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].UnitPrice.Equal(decimal.RequireFromString("12.50")))

	_, err = f.carts.AddItem(ctx, buyer.UserID, &dto.AddCartItemRequest{ProductID: p.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestCart_AddItemRejectsInactiveProduct(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := f.product(t, sellerA, "1", 5)
	_, err := f.products.Update(ctx, sellerA, p.ID, &dto.UpdateProductRequest{Active: ptr(false)})
	require.NoError(t, err)

	_, err = f.carts.AddItem(ctx, buyer.UserID, &dto.AddCartItemRequest{ProductID: p.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = f.carts.AddItem(ctx, buyer.UserID, &dto.AddCartItemRequest{ProductID: 999, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCart_UpdateAndRemoveItem(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	p := f.product(t, sellerA, "1", 5)

	cart, err := f.carts.AddItem(ctx, buyer.UserID, &dto.AddCartItemRequest{ProductID: p.ID, Quantity: 1})
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = f.carts.UpdateItem(ctx, buyer.UserID, itemID, &dto.UpdateCartItemRequest{Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)

	_, err = f.carts.UpdateItem(ctx, buyer.UserID, itemID, &dto.UpdateCartItemRequest{Quantity: 6})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Another user's line is invisible
	_, err = f.carts.UpdateItem(ctx, stranger.UserID, itemID, &dto.UpdateCartItemRequest{Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrCartItemNotFound)
	assert.ErrorIs(t, f.carts.RemoveItem(ctx, stranger.UserID, itemID), domain.ErrCartItemNotFound)

	require.NoError(t, f.carts.RemoveItem(ctx, buyer.UserID, itemID))
	cart, err = f.carts.Get(ctx, buyer.UserID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}
