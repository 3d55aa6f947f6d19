package gateway

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeGateway implements PaymentGateway using Stripe PaymentIntents
type StripeGateway struct {
	config *StripeGatewayConfig
}

// StripeGatewayConfig holds configuration for Stripe gateway
type StripeGatewayConfig struct {
	SecretKey string
}

// NewStripeGateway creates a new Stripe gateway
func NewStripeGateway(config *StripeGatewayConfig) (*StripeGateway, error) {
	if config == nil {
		return nil, fmt.Errorf("stripe config is required")
	}
	if config.SecretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}

	// Set Stripe API key globally
	stripe.Key = config.SecretKey

	return &StripeGateway{config: config}, nil
}

// IdempotencyKey identifies a charge attempt to the processor
func IdempotencyKey(req *ChargeRequest) string {
	return "order-" + strconv.FormatInt(req.OrderID, 10) + "-attempt-" + strconv.Itoa(req.Attempt)
}

// Charge creates and confirms a PaymentIntent in one call
func (g *StripeGateway) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("charge request is required")
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.AmountMinor),
		Currency:           stripe.String(req.Currency),
		PaymentMethod:      stripe.String(req.PaymentMethod),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
		Metadata:           map[string]string{"order_id": strconv.FormatInt(req.OrderID, 10)},
	}
	for k, v := range req.Metadata {
		params.Metadata[k] = v
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.SetIdempotencyKey(IdempotencyKey(req))

	pi, err := paymentintent.New(params)
	if err != nil {
		return classifyStripeError(err)
	}
	return fromPaymentIntent(pi), nil
}

// Name returns the gateway name
func (g *StripeGateway) Name() string {
	return "stripe"
}

func fromPaymentIntent(pi *stripe.PaymentIntent) *ChargeResponse {
	resp := &ChargeResponse{
		TransactionID: pi.ID,
		Status:        string(pi.Status),
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		resp.Success = true
	case stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresCapture:
		resp.Pending = true
	case stripe.PaymentIntentStatusCanceled:
		resp.FailureCode = "canceled"
		resp.FailureReason = "payment canceled"
	default:
		resp.FailureCode = string(pi.Status)
		resp.FailureReason = "payment requires a new payment method"
		if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
			resp.FailureReason = pi.LastPaymentError.Msg
		}
	}
	return resp
}

// classifyStripeError turns card errors into declines and everything else
// into ErrUnavailable
func classifyStripeError(err error) (*ChargeResponse, error) {
	var serr *stripe.Error
	if errors.As(err, &serr) && serr.Type == stripe.ErrorTypeCard {
		resp := &ChargeResponse{
			Status:        "failed",
			FailureCode:   string(serr.Code),
			FailureReason: serr.Msg,
		}
		if serr.PaymentIntent != nil {
			resp.TransactionID = serr.PaymentIntent.ID
		}
		return resp, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
}
