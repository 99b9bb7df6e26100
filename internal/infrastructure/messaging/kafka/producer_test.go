package kafka

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
)

type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closeFunc func() error
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, msgs...)
	}
	return nil
}

func (m *mockKafkaWriter) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func newTestProducerConfig() ProducerConfig {
	return ProducerConfig{
		Brokers:         []string{"localhost:9092"},
		MaxMessageBytes: 1024 * 1024,
	}
}

func newTestProducer(writer WriterInterface) *Producer {
	return &Producer{
		writer:  writer,
		config:  newTestProducerConfig(),
		logger:  logging.NewNopLogger(),
		metrics: &ProducerMetrics{},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Config validation
// ─────────────────────────────────────────────────────────────────────────────

func TestValidateProducerConfig_Valid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidateProducerConfig(newTestProducerConfig()))
}

func TestValidateProducerConfig_EmptyBrokers(t *testing.T) {
	t.Parallel()
	cfg := newTestProducerConfig()
	cfg.Brokers = nil
	assert.Error(t, ValidateProducerConfig(cfg))
}

// ─────────────────────────────────────────────────────────────────────────────
// Publish
// ─────────────────────────────────────────────────────────────────────────────

func TestPublish_Success(t *testing.T) {
	t.Parallel()
	var captured []kafka.Message
	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(_ context.Context, msgs ...kafka.Message) error {
			captured = msgs
			return nil
		},
	})

	err := p.Publish(context.Background(), &OutboundMessage{
		Topic: TopicAnalysisCompleted,
		Key:   []byte("doc-1"),
		Value: []byte(`{"document_id":"doc-1"}`),
	})

	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Equal(t, TopicAnalysisCompleted, captured[0].Topic)
	assert.Equal(t, "doc-1", string(captured[0].Key))
	assert.Equal(t, int64(1), p.MessagesSent())
}

func TestPublish_WriteError(t *testing.T) {
	t.Parallel()
	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(_ context.Context, _ ...kafka.Message) error {
			return stderrors.New("broker unavailable")
		},
	})

	err := p.Publish(context.Background(), &OutboundMessage{
		Topic: TopicAnalysisCompleted,
		Value: []byte("x"),
	})

	require.Error(t, err)
	assert.Equal(t, int64(1), p.MessagesFailed())
}

func TestPublish_RejectsEmptyTopic(t *testing.T) {
	t.Parallel()
	p := newTestProducer(&mockKafkaWriter{})

	err := p.Publish(context.Background(), &OutboundMessage{Value: []byte("x")})

	assert.Error(t, err)
}

func TestPublish_RejectsEmptyValue(t *testing.T) {
	t.Parallel()
	p := newTestProducer(&mockKafkaWriter{})

	err := p.Publish(context.Background(), &OutboundMessage{Topic: "t"})

	assert.Error(t, err)
}

func TestPublish_RejectsOversizedMessage(t *testing.T) {
	t.Parallel()
	p := newTestProducer(&mockKafkaWriter{})
	p.config.MaxMessageBytes = 8

	err := p.Publish(context.Background(), &OutboundMessage{
		Topic: "t",
		Value: []byte("a much longer payload"),
	})

	assert.Error(t, err)
}

func TestPublish_AfterCloseFails(t *testing.T) {
	t.Parallel()
	p := newTestProducer(&mockKafkaWriter{})
	require.NoError(t, p.Close())

	err := p.Publish(context.Background(), &OutboundMessage{Topic: "t", Value: []byte("x")})

	assert.ErrorIs(t, err, ErrProducerClosed)
}

func TestPublishBatch_Success(t *testing.T) {
	t.Parallel()
	var captured []kafka.Message
	p := newTestProducer(&mockKafkaWriter{
		writeFunc: func(_ context.Context, msgs ...kafka.Message) error {
			captured = msgs
			return nil
		},
	})

	err := p.PublishBatch(context.Background(), []*OutboundMessage{
		{Topic: "t", Value: []byte("a")},
		{Topic: "t", Value: []byte("b")},
	})

	require.NoError(t, err)
	assert.Len(t, captured, 2)
	assert.Equal(t, int64(2), p.MessagesSent())
}

func TestClose_Idempotent(t *testing.T) {
	t.Parallel()
	closes := 0
	p := newTestProducer(&mockKafkaWriter{
		closeFunc: func() error {
			closes++
			return nil
		},
	})

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, closes)
}
