package dto

import "github.com/shopspring/decimal"

// CreateProductRequest is the body of POST /products. The seller is taken
// from the token.
type CreateProductRequest struct {
	Name        string           `json:"name" binding:"required,max=200"`
	Description string           `json:"description" binding:"max=5000"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Condition   string           `json:"condition"`
	Brand       string           `json:"brand" binding:"max=100"`
	Stock       int              `json:"stock"`
	Active      *bool            `json:"active"`
}

// UpdateProductRequest is the body of PATCH /products/:id. Nil fields are
// left unchanged.
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string          `json:"description" binding:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price"`
	Condition   *string          `json:"condition"`
	Brand       *string          `json:"brand" binding:"omitempty,max=100"`
	Stock       *int             `json:"stock"`
	Active      *bool            `json:"active"`
}

// ProductListQuery is the query string of GET /products
type ProductListQuery struct {
	Skip     int    `form:"skip" binding:"min=0"`
	Limit    int    `form:"limit" binding:"min=0"`
	SellerID *int64 `form:"seller_id"`
}
