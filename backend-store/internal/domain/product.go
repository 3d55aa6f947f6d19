package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Condition describes the state of a listed item
type Condition string

const (
	ConditionNew  Condition = "NEW"
	ConditionUsed Condition = "USED"
)

// ParseCondition normalizes s, defaulting to NEW when empty
func ParseCondition(s string) (Condition, error) {
	switch c := Condition(strings.ToUpper(strings.TrimSpace(s))); c {
	case "":
		return ConditionNew, nil
	case ConditionNew, ConditionUsed:
		return c, nil
	}
	return "", ErrInvalidCondition
}

// Product is a catalog listing owned by a seller
type Product struct {
	ID             int64           `json:"id"`
	SellerUserID   int64           `json:"seller_user_id"`
	SellerUsername string          `json:"seller_username"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Condition      Condition       `json:"condition"`
	Brand          string          `json:"brand"`
	Stock          int             `json:"stock"`
	Active         bool            `json:"active"`
	AddedAt        time.Time       `json:"added_at"`
}

// Validate checks the price and stock invariants
func (p *Product) Validate() error {
	if !p.Price.IsPositive() {
		return ErrInvalidPrice
	}
	if p.Stock < 0 {
		return ErrInvalidStock
	}
	if p.Condition != ConditionNew && p.Condition != ConditionUsed {
		return ErrInvalidCondition
	}
	return nil
}

// IsOwnedBy reports whether userID listed the product
func (p *Product) IsOwnedBy(userID int64) bool {
	return p.SellerUserID == userID
}
