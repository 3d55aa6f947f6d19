package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
	"github.com/prohmpiriya/autostore-platform/pkg/middleware"
	"github.com/prohmpiriya/autostore-platform/pkg/retry"
)

// Producer is the part of *kafka.Producer the publisher needs
type Producer interface {
	Produce(ctx context.Context, topic, key string, value []byte, headers map[string]string) error
	Close()
}

// KafkaPublisherConfig configures KafkaEventPublisher
type KafkaPublisherConfig struct {
	Topic  string
	Source string
	Retry  *retry.Config
}

// KafkaEventPublisher writes order events keyed by order id, so every event
// of one order lands on the same partition
type KafkaEventPublisher struct {
	producer Producer
	topic    string
	source   string
	dlq      *retry.DLQHandler
	now      func() time.Time
}

// NewKafkaEventPublisher creates a publisher. Events that still fail after
// retries go to the topic's dead letter topic.
func NewKafkaEventPublisher(producer Producer, cfg *KafkaPublisherConfig) *KafkaEventPublisher {
	p := &KafkaEventPublisher{
		producer: producer,
		topic:    cfg.Topic,
		source:   cfg.Source,
		now:      time.Now,
	}
	p.dlq = retry.NewDLQHandler(cfg.Retry, p, cfg.Source)
	return p
}

// PublishOrderCreated publishes order.created
func (p *KafkaEventPublisher) PublishOrderCreated(ctx context.Context, o *domain.Order) error {
	return p.publish(ctx, EventOrderCreated, o.ID, &OrderCreatedData{
		OrderID:      o.ID,
		UserID:       o.UserID,
		SellerUserID: o.SellerUserID,
		Total:        o.Total,
		Items:        o.Items,
	})
}

// PublishOrderPaid publishes order.paid
func (p *KafkaEventPublisher) PublishOrderPaid(ctx context.Context, o *domain.Order, pay *domain.Payment) error {
	return p.publish(ctx, EventOrderPaid, o.ID, &OrderPaidData{
		OrderID:       o.ID,
		UserID:        o.UserID,
		SellerUserID:  o.SellerUserID,
		PaymentID:     pay.ID,
		TransactionID: pay.TransactionID,
		Amount:        pay.Amount,
		Currency:      pay.Currency,
	})
}

func (p *KafkaEventPublisher) publish(ctx context.Context, eventType string, orderID int64, data interface{}) error {
	env := &Envelope{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		OccurredAt: p.now().UTC(),
		Source:     p.source,
		Data:       data,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}

	key := strconv.FormatInt(orderID, 10)
	headers := map[string]string{
		"event_type": eventType,
		"event_id":   env.EventID,
		"source":     p.source,
	}
	if id := middleware.RequestIDFromContext(ctx); id != "" {
		headers["request_id"] = id
	}

	return p.dlq.Process(ctx, p.topic, key, value, headers, func(ctx context.Context) error {
		return p.producer.Produce(ctx, p.topic, key, value, headers)
	})
}

// PublishDeadLetter writes an exhausted event to its dead letter topic
func (p *KafkaEventPublisher) PublishDeadLetter(ctx context.Context, dl *retry.DeadLetter) error {
	value, err := json.Marshal(dl)
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}
	headers := map[string]string{
		"original_topic": dl.Topic,
		"source":         dl.Source,
	}
	return p.producer.Produce(ctx, retry.DLQTopic(dl.Topic), dl.Key, value, headers)
}

// Close closes the producer
func (p *KafkaEventPublisher) Close() {
	p.producer.Close()
}
