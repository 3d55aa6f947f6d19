// Package events publishes order lifecycle events.
package events

import (
	"context"
	"time"

	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventOrderCreated = "order.created"
	EventOrderPaid    = "order.paid"
)

// Envelope wraps every event on the order topic
type Envelope struct {
	EventID    string      `json:"event_id"`
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Source     string      `json:"source"`
	Data       interface{} `json:"data"`
}

// OrderCreatedData is the payload of order.created
type OrderCreatedData struct {
	OrderID      int64               `json:"order_id"`
	UserID       int64               `json:"user_id"`
	SellerUserID int64               `json:"seller_user_id"`
	Total        decimal.Decimal     `json:"total"`
	Items        []*domain.OrderItem `json:"items"`
}

// OrderPaidData is the payload of order.paid
type OrderPaidData struct {
	OrderID       int64           `json:"order_id"`
	UserID        int64           `json:"user_id"`
	SellerUserID  int64           `json:"seller_user_id"`
	PaymentID     int64           `json:"payment_id"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
}

// EventPublisher publishes order events. Implementations must not block the
// caller on broker outages for longer than their own timeouts.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	PublishOrderPaid(ctx context.Context, order *domain.Order, payment *domain.Payment) error
	Close()
}

// NoOpEventPublisher discards every event
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a NoOpEventPublisher
func NewNoOpEventPublisher() *NoOpEventPublisher { return &NoOpEventPublisher{} }

func (*NoOpEventPublisher) PublishOrderCreated(context.Context, *domain.Order) error { return nil }

func (*NoOpEventPublisher) PublishOrderPaid(context.Context, *domain.Order, *domain.Payment) error {
	return nil
}

func (*NoOpEventPublisher) Close() {}
