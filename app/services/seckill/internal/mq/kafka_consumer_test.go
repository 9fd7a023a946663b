package mq

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"TripHub/app/common/consts/biz"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/jsonx"
)

// sliceReader hands out msgs in order and cancels the consumer once drained.
type sliceReader struct {
	mu        sync.Mutex
	msgs      []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *sliceReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		r.cancel()
		return kafka.Message{}, context.Canceled
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *sliceReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type captureWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.msgs = append(w.msgs, msgs...)
	return nil
}

// downWriter fails every write and stops the consumer after a few attempts.
type downWriter struct {
	mu       sync.Mutex
	attempts int
	stopAt   int
	cancel   context.CancelFunc
}

func (w *downWriter) WriteMessages(_ context.Context, _ ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.attempts++
	if w.attempts >= w.stopAt && w.cancel != nil {
		w.cancel()
	}
	return errors.New("broker down")
}

func intentMessage(t *testing.T, offset int64, in OrderIntent) kafka.Message {
	body, err := jsonx.Marshal(in)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Key: []byte("k"), Value: body}
}

func runConsumer(t *testing.T, c *OrderConsumer, r *sliceReader) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cancel = cancel
	c.reader = r
	require.NoError(t, c.Consume(ctx))
}

func TestConsumeRedeliveredIntentMaterializesOnce(t *testing.T) {
	m, _, orders, activities := newTestMaterializer(t)
	dlq := &captureWriter{}
	c := &OrderConsumer{deadLetter: dlq, materializer: m, maxRetries: 2, retryInterval: time.Millisecond}

	in := OrderIntent{OrderId: 42, UserId: 5, ActivityId: 1}
	r := &sliceReader{msgs: []kafka.Message{intentMessage(t, 1, in), intentMessage(t, 2, in)}}
	runConsumer(t, c, r)

	assert.Equal(t, 1, orders.count())
	assert.Equal(t, int64(2), activities.left(1))
	assert.Equal(t, []int64{1, 2}, r.committed)
	assert.Empty(t, dlq.msgs)
}

func TestConsumeBadPayloadGoesToDeadLetter(t *testing.T) {
	m, _, orders, _ := newTestMaterializer(t)
	dlq := &captureWriter{}
	c := &OrderConsumer{deadLetter: dlq, materializer: m, maxRetries: 2, retryInterval: time.Millisecond}

	r := &sliceReader{msgs: []kafka.Message{
		{Offset: 1, Value: []byte("{oops")},
		intentMessage(t, 2, OrderIntent{UserId: 5, ActivityId: 1}),
	}}
	runConsumer(t, c, r)

	assert.Zero(t, orders.count())
	require.Len(t, dlq.msgs, 2)
	assert.Equal(t, []byte("{oops"), dlq.msgs[0].Value)
	assert.Equal(t, []int64{1, 2}, r.committed)
}

func TestConsumeLockBusyExhaustsRetries(t *testing.T) {
	m, mr, orders, _ := newTestMaterializer(t)
	require.NoError(t, mr.Set(biz.SeckillOrderLockKey+"5", "other-worker"))
	dlq := &captureWriter{}
	c := &OrderConsumer{deadLetter: dlq, materializer: m, maxRetries: 2, retryInterval: time.Millisecond}

	msg := intentMessage(t, 7, OrderIntent{OrderId: 42, UserId: 5, ActivityId: 1})
	r := &sliceReader{msgs: []kafka.Message{msg}}
	runConsumer(t, c, r)

	assert.Zero(t, orders.count())
	require.Len(t, dlq.msgs, 1)
	assert.Equal(t, msg.Value, dlq.msgs[0].Value)
	assert.Equal(t, []int64{7}, r.committed)
}

func TestConsumeKeepsOffsetWhenDeadLetterFails(t *testing.T) {
	m, mr, orders, _ := newTestMaterializer(t)
	require.NoError(t, mr.Set(biz.SeckillOrderLockKey+"5", "other-worker"))
	dlq := &downWriter{stopAt: 3}
	c := &OrderConsumer{deadLetter: dlq, materializer: m, maxRetries: 1, retryInterval: time.Millisecond}

	msg := intentMessage(t, 7, OrderIntent{OrderId: 42, UserId: 5, ActivityId: 1})
	r := &sliceReader{msgs: []kafka.Message{msg, intentMessage(t, 8, OrderIntent{OrderId: 43, UserId: 6, ActivityId: 1})}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cancel = cancel
	dlq.cancel = cancel
	c.reader = r
	require.NoError(t, c.Consume(ctx))

	assert.Zero(t, orders.count())
	assert.Equal(t, 3, dlq.attempts)
	assert.Empty(t, r.committed)
	// offset 8 is never fetched while 7 is still pending
	assert.Len(t, r.msgs, 1)
}
