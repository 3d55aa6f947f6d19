package repository

import (
	"context"

	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
)

// ProductFilter narrows product listings. With ActiveOnly set, inactive
// products are dropped unless they belong to OwnerID.
type ProductFilter struct {
	Skip       int
	Limit      int
	SellerID   *int64
	ActiveOnly bool
	OwnerID    *int64
}

// Visible reports whether p passes the active filter
func (f ProductFilter) Visible(p *domain.Product) bool {
	if !f.ActiveOnly || p.Active {
		return true
	}
	return f.OwnerID != nil && p.SellerUserID == *f.OwnerID
}

// OrderFilter narrows order listings. A nil UserID lists every order.
type OrderFilter struct {
	Skip   int
	Limit  int
	UserID *int64
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
}

// CartRepository defines the interface for cart data access
type CartRepository interface {
	// GetActive returns the user's active cart with its items
	GetActive(ctx context.Context, userID int64) (*domain.Cart, error)
	// Create inserts an active cart. When the user already has one, that
	// cart is loaded into cart instead.
	Create(ctx context.Context, cart *domain.Cart) error
	// AddItem inserts a line, or adds its quantity to the existing line for
	// the same product. item is updated to the stored line.
	AddItem(ctx context.Context, item *domain.CartItem) error
	GetItem(ctx context.Context, itemID int64) (*domain.CartItem, error)
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error
	DeleteItem(ctx context.Context, itemID int64) error
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// Create stores the order and its items atomically
	Create(ctx context.Context, order *domain.Order) error
	// Checkout stores every order and marks the cart checked out, atomically
	Checkout(ctx context.Context, cartID int64, orders []*domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
	// UpdateStatus moves an order from one status to another. It fails with
	// ErrInvalidStatusTransition when the order is no longer in from.
	UpdateStatus(ctx context.Context, id int64, from, to domain.OrderStatus) error
	Delete(ctx context.Context, id int64) error
}

// PaymentRepository defines the interface for payment data access
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	ListByOrder(ctx context.Context, orderID int64) ([]*domain.Payment, error)
}
