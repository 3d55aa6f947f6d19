package dto

import (
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
	"github.com/shopspring/decimal"
)

// OrderItemRequest is one requested line. The price is resolved server side.
type OrderItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// CreateOrderRequest is the body of POST /orders. The buyer is taken from the
// token.
type CreateOrderRequest struct {
	SellerUserID   int64              `json:"seller_user_id" binding:"required"`
	Items          []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingCost   decimal.Decimal    `json:"shipping_cost"`
	DiscountAmount decimal.Decimal    `json:"discount_amount"`
}

// OrderListQuery is the query string of GET /orders
type OrderListQuery struct {
	Skip   int    `form:"skip" binding:"min=0"`
	Limit  int    `form:"limit" binding:"min=0"`
	UserID *int64 `form:"user_id"`
}

// UpdateOrderStatusRequest is the body of PATCH /orders/:id/status
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// CheckoutResponse lists the orders created from a cart
type CheckoutResponse struct {
	CartID int64           `json:"cart_id"`
	Orders []*domain.Order `json:"orders"`
}
