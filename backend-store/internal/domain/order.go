package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order. PROCESSING holds an order
// while a charge is in flight and only the payment flow enters it.
type OrderStatus string

const (
	OrderStatusCreated    OrderStatus = "CREATED"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// orderTransitions are the moves PATCH /orders/:id/status may make. A stuck
// PROCESSING order can still be cancelled.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:    {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCancelled},
	OrderStatusPaid:       {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

// ParseOrderStatus normalizes s and reports whether it is a status a client
// may request. PROCESSING is internal and rejected.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case OrderStatusCreated, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return st, nil
	}
	return "", ErrInvalidOrderStatus
}

// CanTransitionTo reports whether an order may move from s to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order is a purchase from a single seller
type Order struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"user_id"`
	SellerUserID   int64           `json:"seller_user_id"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Tax            decimal.Decimal `json:"tax"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Total          decimal.Decimal `json:"total"`
	Status         OrderStatus     `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	Items          []*OrderItem    `json:"items"`
}

// OrderItem is one product line of an order
type OrderItem struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// NewOrderItem builds a line and its total
func NewOrderItem(productID int64, quantity int, unitPrice decimal.Decimal) *OrderItem {
	return &OrderItem{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		LineTotal: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// IsVisibleTo reports whether the buyer or the seller of the order is userID
func (o *Order) IsVisibleTo(userID int64) bool {
	return o.UserID == userID || o.SellerUserID == userID
}

// ComputeTotals fills Subtotal, Tax and Total from the items, shipping and
// discount. Tax is rounded to two places and the total never goes below zero.
func (o *Order) ComputeTotals(taxRate decimal.Decimal) {
	subtotal := decimal.Zero
	for _, it := range o.Items {
		subtotal = subtotal.Add(it.LineTotal)
	}
	o.Subtotal = subtotal
	o.Tax = subtotal.Mul(taxRate).Round(2)

	total := subtotal.Add(o.Tax).Add(o.ShippingCost).Sub(o.DiscountAmount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	o.Total = total
}
