package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the outcome of a charge attempt
type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "SUCCESS"
	PaymentStatusFailed  PaymentStatus = "FAILED"
	PaymentStatusPending PaymentStatus = "PENDING"
)

// Payment records one charge attempt against an order. Failed attempts are
// kept.
type Payment struct {
	ID            int64           `json:"id"`
	OrderID       int64           `json:"order_id"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        PaymentStatus   `json:"status"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MinorUnits converts amount to the smallest currency unit
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
