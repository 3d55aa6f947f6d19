package dto

// AddCartItemRequest is the body of POST /cart/items
type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// UpdateCartItemRequest is the body of PATCH /cart/items/:item_id
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}
