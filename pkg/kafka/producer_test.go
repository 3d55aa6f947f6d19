package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"
)

type fakeClient struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (f *fakeClient) ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		f.records = append(f.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.err }
func (f *fakeClient) Close()                         { f.closed = true }

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(context.Background(), &ProducerConfig{})
	assert.Error(t, err)

	_, err = NewProducer(context.Background(), nil)
	assert.Error(t, err)
}

func TestProducer_ProduceJSON(t *testing.T) {
	fc := &fakeClient{}
	p := newProducer(fc, 0)

	err := p.ProduceJSON(context.Background(), "order-events", "42", map[string]int{"order_id": 42}, map[string]string{"event_type": "order.created"})
	require.NoError(t, err)

	require.Len(t, fc.records, 1)
	r := fc.records[0]
	assert.Equal(t, "order-events", r.Topic)
	assert.Equal(t, []byte("42"), r.Key)
	assert.JSONEq(t, `{"order_id":42}`, string(r.Value))
	require.Len(t, r.Headers, 1)
	assert.Equal(t, "event_type", r.Headers[0].Key)
	assert.Equal(t, "order.created", string(r.Headers[0].Value))
}

func TestProducer_ProduceError(t *testing.T) {
	fc := &fakeClient{err: errors.New("not leader")}
	p := newProducer(fc, 0)

	err := p.Produce(context.Background(), "order-events", "", []byte("{}"), nil)
	assert.ErrorContains(t, err, "not leader")
	assert.Nil(t, fc.records[0].Key)
}

func TestProducer_ProduceJSONMarshalError(t *testing.T) {
	p := newProducer(&fakeClient{}, 0)
	err := p.ProduceJSON(context.Background(), "t", "k", make(chan int), nil)
	assert.Error(t, err)
}

func TestProducer_Close(t *testing.T) {
	fc := &fakeClient{}
	newProducer(fc, 0).Close()
	assert.True(t, fc.closed)
}
