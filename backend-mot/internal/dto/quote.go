package dto

// CreateQuoteRequest is the body of POST /bookings/:reg/quote. Amount is in
// pence.
type CreateQuoteRequest struct {
	Amount *int64 `json:"amount" binding:"required"`
	Status string `json:"status"`
}

// UpdateQuoteRequest is the body of PATCH /bookings/:reg/quote
type UpdateQuoteRequest struct {
	Amount *int64  `json:"amount"`
	Status *string `json:"status"`
}
