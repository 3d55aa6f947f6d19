package domain

import "errors"

var (
	// Products
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidPrice     = errors.New("price must be greater than zero")
	ErrInvalidStock     = errors.New("stock must not be negative")
	ErrInvalidCondition = errors.New("condition must be NEW or USED")

	// Carts
	ErrCartNotFound      = errors.New("cart not found")
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrCartNotActive     = errors.New("cart is not active")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInsufficientStock = errors.New("insufficient stock")

	// Orders
	ErrOrderNotFound           = errors.New("order not found")
	ErrEmptyOrder              = errors.New("order has no items")
	ErrSellerMismatch          = errors.New("product does not belong to seller")
	ErrInvalidAmount           = errors.New("amount must not be negative")
	ErrInvalidOrderStatus      = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")

	// Payments
	ErrOrderNotPayable    = errors.New("order is not awaiting payment")
	ErrPaymentDeclined    = errors.New("payment declined")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// Access
	ErrForbidden = errors.New("forbidden")
)
