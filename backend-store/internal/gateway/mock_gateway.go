package gateway

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Test payment methods understood by MockGateway. They match the Stripe test
// tokens of the same name.
const (
	MockCardVisa              = "pm_card_visa"
	MockCardDeclined          = "pm_card_chargeDeclined"
	MockCardInsufficientFunds = "pm_card_chargeDeclinedInsufficientFunds"
)

// alphanumericChars for generating Stripe-compatible IDs
const alphanumericChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomAlphanumeric(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = alphanumericChars[rand.Intn(len(alphanumericChars))]
	}
	return string(b)
}

// MockGatewayConfig holds configuration for the mock gateway
type MockGatewayConfig struct {
	// Delay simulates processing time
	Delay time.Duration

	// Declines maps payment methods to the reason they are declined with
	Declines map[string]string
}

// DefaultMockGatewayConfig returns default configuration
func DefaultMockGatewayConfig() *MockGatewayConfig {
	return &MockGatewayConfig{
		Declines: map[string]string{
			MockCardDeclined:          "Your card was declined.",
			MockCardInsufficientFunds: "Your card has insufficient funds.",
		},
	}
}

// MockGateway is a deterministic PaymentGateway for development and tests.
// Every payment method succeeds unless it is listed in Declines.
type MockGateway struct {
	config *MockGatewayConfig

	mu   sync.Mutex
	seen map[string]*ChargeResponse
}

// NewMockGateway creates a new mock gateway
func NewMockGateway(config *MockGatewayConfig) *MockGateway {
	if config == nil {
		config = DefaultMockGatewayConfig()
	}
	return &MockGateway{
		config: config,
		seen:   make(map[string]*ChargeResponse),
	}
}

// Charge decides on the payment method. Repeating an attempt returns the
// first response, like an idempotent processor.
func (g *MockGateway) Charge(ctx context.Context, req *ChargeRequest) (*ChargeResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("charge request is required")
	}

	if g.config.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.config.Delay):
		}
	}

	key := IdempotencyKey(req)
	g.mu.Lock()
	defer g.mu.Unlock()
	if prev, ok := g.seen[key]; ok {
		out := *prev
		return &out, nil
	}

	resp := &ChargeResponse{
		TransactionID: "pi_mock_" + randomAlphanumeric(24),
	}
	if reason, declined := g.config.Declines[req.PaymentMethod]; declined {
		resp.Status = "requires_payment_method"
		resp.FailureCode = "card_declined"
		resp.FailureReason = reason
	} else {
		resp.Success = true
		resp.Status = "succeeded"
	}

	g.seen[key] = resp
	out := *resp
	return &out, nil
}

// Name returns the gateway name
func (g *MockGateway) Name() string {
	return "mock"
}
