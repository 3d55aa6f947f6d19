package retry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DLQSuffix is appended to a topic to name its dead letter topic
const DLQSuffix = ".dlq"

// DLQTopic returns the dead letter topic for topic
func DLQTopic(topic string) string {
	return topic + DLQSuffix
}

// DeadLetter is what lands on a dead letter topic after retries run out
type DeadLetter struct {
	Topic          string            `json:"original_topic"`
	Key            string            `json:"original_key"`
	Payload        json.RawMessage   `json:"payload"`
	Headers        map[string]string `json:"headers,omitempty"`
	Error          string            `json:"error"`
	Attempts       int               `json:"attempts"`
	FirstAttemptAt time.Time         `json:"first_attempt_at"`
	MovedAt        time.Time         `json:"moved_to_dlq_at"`
	Source         string            `json:"source"`
}

// DeadLetterSink stores dead letters
type DeadLetterSink interface {
	PublishDeadLetter(ctx context.Context, dl *DeadLetter) error
}

// DLQHandler retries a publish and hands it to a sink once retries run out
type DLQHandler struct {
	retrier *Retrier
	sink    DeadLetterSink
	source  string
	now     func() time.Time
}

// NewDLQHandler builds a handler. A nil sink drops exhausted messages.
func NewDLQHandler(cfg *Config, sink DeadLetterSink, source string) *DLQHandler {
	return &DLQHandler{
		retrier: New(cfg),
		sink:    sink,
		source:  source,
		now:     time.Now,
	}
}

// Process runs op with retries. When op keeps failing the message is
// published as a dead letter and the original failure is returned.
func (h *DLQHandler) Process(ctx context.Context, topic, key string, payload []byte, headers map[string]string, op Operation) error {
	first := h.now()
	res := h.retrier.Do(ctx, op)
	if res.Err == nil {
		return nil
	}

	cause := res.Err
	if res.LastError != nil {
		cause = res.LastError
	}
	if h.sink == nil {
		return cause
	}

	dl := &DeadLetter{
		Topic:          topic,
		Key:            key,
		Payload:        json.RawMessage(payload),
		Headers:        headers,
		Error:          cause.Error(),
		Attempts:       res.Attempts,
		FirstAttemptAt: first,
		MovedAt:        h.now(),
		Source:         h.source,
	}
	// ctx may already be done; the dead letter still needs a chance
	if err := h.sink.PublishDeadLetter(context.WithoutCancel(ctx), dl); err != nil {
		return fmt.Errorf("dead letter publish failed: %w (original error: %v)", err, cause)
	}
	return cause
}
