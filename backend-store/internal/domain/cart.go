package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartStatus is the lifecycle state of a cart
type CartStatus string

const (
	CartStatusActive     CartStatus = "ACTIVE"
	CartStatusCheckedOut CartStatus = "CHECKED_OUT"
)

// Cart holds the items a buyer intends to order. A user has at most one
// active cart.
type Cart struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	Status    CartStatus  `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	Items     []*CartItem `json:"items"`
}

// CartItem is one product line in a cart. UnitPrice is copied from the
// product when the item is first added.
type CartItem struct {
	ID        int64           `json:"id"`
	CartID    int64           `json:"cart_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// FindItem returns the line for productID, or nil
func (c *Cart) FindItem(productID int64) *CartItem {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it
		}
	}
	return nil
}
