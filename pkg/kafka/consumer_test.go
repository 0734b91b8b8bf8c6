package kafka

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"adhub/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	drained   chan struct{}
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	return &fakeReader{queue: msgs, drained: make(chan struct{})}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	if len(r.queue) == 0 {
		select {
		case <-r.drained:
		default:
			close(r.drained)
		}
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

type fakeWriter struct {
	mu      sync.Mutex
	written []kafka.Message
	err     error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Output: &bytes.Buffer{}})
}

func headerValue(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func runUntilDrained(t *testing.T, c *Consumer, r *fakeReader) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()
	<-r.drained
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestConsumer_CommitsAfterSuccess(t *testing.T) {
	reader := newFakeReader(
		kafka.Message{Topic: "booking-events", Offset: 1, Key: []byte("a"), Value: []byte(`{}`)},
		kafka.Message{Topic: "booking-events", Offset: 2, Key: []byte("b"), Value: []byte(`{}`)},
	)
	var seen []string
	c := &Consumer{
		reader: reader,
		topic:  "booking-events",
		log:    testLogger(),
		handler: func(_ context.Context, msg Message) error {
			seen = append(seen, msg.Key)
			return nil
		},
	}

	runUntilDrained(t, c, reader)

	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Equal(t, []int64{1, 2}, reader.committed)
}

func TestConsumer_RetriesTransientThenSucceeds(t *testing.T) {
	reader := newFakeReader(kafka.Message{Offset: 7, Key: []byte("k"), Value: []byte(`{}`)})
	attempts := 0
	c := &Consumer{
		reader:     reader,
		log:        testLogger(),
		maxRetries: 3,
		handler: func(context.Context, Message) error {
			attempts++
			if attempts < 3 {
				return NewTransientError("flaky", nil)
			}
			return nil
		},
	}

	runUntilDrained(t, c, reader)

	assert.Equal(t, 3, attempts)
	assert.Equal(t, []int64{7}, reader.committed)
}

func TestConsumer_PermanentFailureGoesToDLQ(t *testing.T) {
	reader := newFakeReader(kafka.Message{Topic: "booking-events", Offset: 3, Key: []byte("k"), Value: []byte(`nope`)})
	dlq := &fakeWriter{}
	attempts := 0
	c := &Consumer{
		reader:     reader,
		dlqWriter:  dlq,
		topic:      "booking-events",
		groupID:    "notifier",
		log:        testLogger(),
		maxRetries: 3,
		handler: func(context.Context, Message) error {
			attempts++
			return NewPermanentError("decode", errors.New("bad json"))
		},
	}

	runUntilDrained(t, c, reader)

	assert.Equal(t, 1, attempts)
	require.Len(t, dlq.written, 1)
	parked := dlq.written[0]
	assert.Equal(t, "booking-events", headerValue(parked, HeaderOriginalTopic))
	assert.Equal(t, "notifier", headerValue(parked, HeaderDLQGroup))
	assert.Contains(t, headerValue(parked, HeaderDLQError), "bad json")
	assert.Equal(t, []int64{3}, reader.committed)
}

func TestConsumer_MiddlewareOrder(t *testing.T) {
	reader := newFakeReader(kafka.Message{Offset: 1, Key: []byte("k"), Value: []byte(`{}`)})
	var order []string
	c := &Consumer{
		reader: reader,
		log:    testLogger(),
		handler: func(context.Context, Message) error {
			order = append(order, "handler")
			return nil
		},
	}
	for _, name := range []string{"outer", "inner"} {
		name := name
		c.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	runUntilDrained(t, c, reader)

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestProducer_PublishValidatesAndParksFailures(t *testing.T) {
	writer := &fakeWriter{err: errors.New("leader not available")}
	dlq := &fakeWriter{}
	p := &Producer{writer: writer, dlqWriter: dlq, topic: "booking-events", log: testLogger()}

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte(`{}`)}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	err := p.Publish(context.Background(), Message{Key: "k", Value: []byte(`{}`), Headers: map[string]string{}})
	require.Error(t, err)
	require.Len(t, dlq.written, 1)
	assert.Equal(t, "booking-events", headerValue(dlq.written[0], HeaderOriginalTopic))

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte(`{}`)}), ErrProducerClosed)
}
