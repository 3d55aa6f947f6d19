package dto

// CreatePaymentRequest is the body of POST /orders/:id/payments
type CreatePaymentRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}
