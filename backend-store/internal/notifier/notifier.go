// Package notifier sends transactional email about orders.
package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/prohmpiriya/autostore-platform/pkg/logger"
	"go.uber.org/zap"
)

// Email is one outbound message
type Email struct {
	From     string `json:"from,omitempty"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	BodyText string `json:"body_text"`
	BodyHTML string `json:"body_html,omitempty"`
}

// Notifier delivers email
type Notifier interface {
	Send(ctx context.Context, email *Email) error
}

// LogNotifier writes messages to the log instead of delivering them
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

// Send logs the message
func (n *LogNotifier) Send(ctx context.Context, email *Email) error {
	n.log.Info("Email not delivered, no mail function configured",
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
	)
	return nil
}

// Dispatcher sends email in the background so delivery never delays or
// fails the request that caused it
type Dispatcher struct {
	notifier Notifier
	log      *logger.Logger
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher. timeout bounds each delivery.
func NewDispatcher(n Notifier, log *logger.Logger, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{notifier: n, log: log, timeout: timeout}
}

// Dispatch queues email for delivery. Failures are logged.
func (d *Dispatcher) Dispatch(ctx context.Context, email *Email) {
	if email == nil || email.To == "" {
		return
	}

	// Detach from the request, which ends before delivery does
	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		if err := d.notifier.Send(ctx, email); err != nil {
			d.log.Error("Failed to send email",
				zap.String("to", email.To),
				zap.String("subject", email.Subject),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until every queued delivery has finished
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
