// Package kafka wraps a franz-go client for publishing JSON events.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// ProducerConfig holds producer configuration
type ProducerConfig struct {
	Brokers  []string
	ClientID string
	// ProduceTimeout bounds a single synchronous produce
	ProduceTimeout time.Duration
}

// syncProducer is the part of *kgo.Client the producer needs
type syncProducer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Ping(ctx context.Context) error
	Close()
}

// Producer publishes records synchronously
type Producer struct {
	client  syncProducer
	timeout time.Duration
}

// NewProducer connects to the brokers and checks that at least one answers
func NewProducer(ctx context.Context, cfg *ProducerConfig) (*Producer, error) {
	if cfg == nil || len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka: failed to create client: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka: failed to reach brokers: %w", err)
	}

	return newProducer(client, cfg.ProduceTimeout), nil
}

func newProducer(client syncProducer, timeout time.Duration) *Producer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Producer{client: client, timeout: timeout}
}

// Produce writes one record and waits for the broker acknowledgement
func (p *Producer) Produce(ctx context.Context, topic, key string, value []byte, headers map[string]string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	record := &kgo.Record{
		Topic:     topic,
		Value:     value,
		Timestamp: time.Now(),
	}
	if key != "" {
		record.Key = []byte(key)
	}
	for k, v := range headers {
		record.Headers = append(record.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}

	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("kafka: produce to %s failed: %w", topic, err)
	}
	return nil
}

// ProduceJSON marshals data and produces it
func (p *Producer) ProduceJSON(ctx context.Context, topic, key string, data interface{}, headers map[string]string) error {
	value, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("kafka: failed to marshal message: %w", err)
	}
	return p.Produce(ctx, topic, key, value, headers)
}

// HealthCheck pings the brokers
func (p *Producer) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Close closes the underlying client
func (p *Producer) Close() {
	p.client.Close()
}
