package kafka

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
)

type mockKafkaReader struct {
	messages  chan kafka.Message
	mu        sync.Mutex
	committed []kafka.Message
	closed    atomic.Bool
}

func newMockReader(msgs ...kafka.Message) *mockKafkaReader {
	ch := make(chan kafka.Message, len(msgs))
	for _, m := range msgs {
		ch <- m
	}
	return &mockKafkaReader{messages: ch}
}

func (r *mockKafkaReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.messages:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *mockKafkaReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *mockKafkaReader) committedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func (r *mockKafkaReader) Close() error {
	r.closed.Store(true)
	return nil
}

func newTestConsumer(reader ReaderInterface) *Consumer {
	return &Consumer{
		reader:   reader,
		config:   ConsumerConfig{Brokers: []string{"localhost:9092"}, GroupID: "reggap-workers"},
		logger:   logging.NewNopLogger(),
		handlers: make(map[string]MessageHandler),
		metrics:  &ConsumerMetrics{},
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

// ─────────────────────────────────────────────────────────────────────────────
// Config validation
// ─────────────────────────────────────────────────────────────────────────────

func TestValidateConsumerConfig_RequiresGroupID(t *testing.T) {
	t.Parallel()

	err := ValidateConsumerConfig(ConsumerConfig{Brokers: []string{"localhost:9092"}})

	assert.Error(t, err)
}

func TestValidateConsumerConfig_RejectsBadOffsetReset(t *testing.T) {
	t.Parallel()

	err := ValidateConsumerConfig(ConsumerConfig{
		Brokers:         []string{"localhost:9092"},
		GroupID:         "g",
		AutoOffsetReset: "middle",
	})

	assert.Error(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Consume loop
// ─────────────────────────────────────────────────────────────────────────────

func TestConsumer_DispatchesToHandler(t *testing.T) {
	t.Parallel()
	reader := newMockReader(kafka.Message{
		Topic:  TopicAnalysisCompleted,
		Offset: 7,
		Value:  []byte(`{"event_id":"e-1"}`),
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeAnalysisCompleted)},
		},
	})
	c := newTestConsumer(reader)

	var received atomic.Pointer[Message]
	c.Subscribe(TopicAnalysisCompleted, func(_ context.Context, msg *Message) error {
		received.Store(msg)
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	waitFor(t, func() bool { return received.Load() != nil })
	msg := received.Load()
	assert.Equal(t, TopicAnalysisCompleted, msg.Topic)
	assert.Equal(t, int64(7), msg.Offset)
	assert.Equal(t, EventTypeAnalysisCompleted, msg.Headers["event_type"])
	waitFor(t, func() bool { return c.metrics.MessagesProcessed.Load() == 1 })
}

func TestConsumer_CommitsUnhandledTopics(t *testing.T) {
	t.Parallel()
	reader := newMockReader(kafka.Message{Topic: "unknown.topic", Value: []byte("x")})
	c := newTestConsumer(reader)

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	waitFor(t, func() bool { return reader.committedCount() == 1 })
}

func TestConsumer_RetriesFailedHandler(t *testing.T) {
	t.Parallel()
	reader := newMockReader(kafka.Message{Topic: "t", Value: []byte("x")})
	c := newTestConsumer(reader)
	c.config.RetryConfig = RetryConfig{MaxRetries: 2, RetryBackoff: time.Millisecond}

	var calls atomic.Int64
	c.Subscribe("t", func(_ context.Context, _ *Message) error {
		if calls.Add(1) < 2 {
			return stderrors.New("transient")
		}
		return nil
	})

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	waitFor(t, func() bool { return c.metrics.MessagesProcessed.Load() == 1 })
	assert.Equal(t, int64(2), calls.Load())
	assert.Equal(t, int64(1), c.metrics.MessagesRetried.Load())
}

func TestConsumer_CountsExhaustedRetriesAsFailed(t *testing.T) {
	t.Parallel()
	reader := newMockReader(kafka.Message{Topic: "t", Value: []byte("x")})
	c := newTestConsumer(reader)
	c.config.RetryConfig = RetryConfig{MaxRetries: 1, RetryBackoff: time.Millisecond}

	c.Subscribe("t", func(_ context.Context, _ *Message) error {
		return stderrors.New("permanent")
	})

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	waitFor(t, func() bool { return c.metrics.MessagesFailed.Load() == 1 })
	// Offset still advances so a poison message cannot wedge the partition.
	waitFor(t, func() bool { return reader.committedCount() == 1 })
}

func TestConsumer_StartTwiceFails(t *testing.T) {
	t.Parallel()
	c := newTestConsumer(newMockReader())

	require.NoError(t, c.Start(context.Background()))
	defer c.Close()

	assert.ErrorIs(t, c.Start(context.Background()), ErrAlreadyRunning)
}

func TestConsumer_CloseStopsLoop(t *testing.T) {
	t.Parallel()
	reader := newMockReader()
	c := newTestConsumer(reader)

	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Close())

	assert.True(t, reader.closed.Load())
}
