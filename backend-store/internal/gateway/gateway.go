// Package gateway charges orders through a card processor.
package gateway

import (
	"context"
	"errors"
)

// ErrUnavailable means the processor could not be reached or answered with
// something other than a decision on the card
var ErrUnavailable = errors.New("payment gateway unavailable")

// ChargeRequest describes one charge attempt
type ChargeRequest struct {
	OrderID int64
	// Attempt numbers the charges of one order from 1, so a retried attempt
	// reuses its idempotency key and a new attempt does not
	Attempt       int
	AmountMinor   int64
	Currency      string
	PaymentMethod string
	Description   string
	Metadata      map[string]string
}

// ChargeResponse is the processor's decision. A decline is a response, not
// an error.
type ChargeResponse struct {
	Success       bool
	Pending       bool
	TransactionID string
	Status        string
	FailureCode   string
	FailureReason string
}

// PaymentGateway charges cards
type PaymentGateway interface {
	Charge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error)
	Name() string
}
