package kafka

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
)

type mockKafkaConn struct {
	created    []kafka.TopicConfig
	createErr  error
	partitions []kafka.Partition
}

func (m *mockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, topics...)
	return nil
}

func (m *mockKafkaConn) DeleteTopics(_ ...string) error { return nil }

func (m *mockKafkaConn) ReadPartitions(_ ...string) ([]kafka.Partition, error) {
	return m.partitions, nil
}

func (m *mockKafkaConn) Close() error { return nil }

// ─────────────────────────────────────────────────────────────────────────────
// Envelope
// ─────────────────────────────────────────────────────────────────────────────

func TestEventEnvelope_RoundTrip(t *testing.T) {
	t.Parallel()

	payload := DocumentIngestedPayload{
		DocumentID:   "doc-1",
		Jurisdiction: "US",
		SourcePath:   "/data/us.txt",
		WordCount:    1200,
		IngestedAt:   time.Now().UTC(),
	}
	env, err := NewEventEnvelope("document.ingested", sourceService, payload)
	require.NoError(t, err)
	assert.NotEmpty(t, env.EventID)
	assert.Equal(t, "v1", env.SchemaVersion)

	msg, err := env.ToMessage(TopicDocumentIngested)
	require.NoError(t, err)
	assert.Equal(t, TopicDocumentIngested, msg.Topic)
	assert.Equal(t, "document.ingested", msg.Headers["event_type"])

	decoded, err := DecodeEnvelope(&Message{Value: msg.Value})
	require.NoError(t, err)
	assert.Equal(t, env.EventID, decoded.EventID)

	var out DocumentIngestedPayload
	require.NoError(t, decoded.DecodePayload(&out))
	assert.Equal(t, "doc-1", out.DocumentID)
	assert.Equal(t, 1200, out.WordCount)
}

func TestDecodeEnvelope_EmptyValue(t *testing.T) {
	t.Parallel()

	_, err := DecodeEnvelope(&Message{})

	assert.Error(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// TopicManager
// ─────────────────────────────────────────────────────────────────────────────

func TestCreateTopic_SetsRetention(t *testing.T) {
	t.Parallel()
	conn := &mockKafkaConn{}
	m := &TopicManager{conn: conn, logger: logging.NewNopLogger()}

	err := m.CreateTopic(context.Background(), TopicConfig{
		Name:              TopicReportGenerated,
		NumPartitions:     3,
		ReplicationFactor: 3,
		RetentionMs:       90 * 24 * 3600 * 1000,
	})

	require.NoError(t, err)
	require.Len(t, conn.created, 1)
	assert.Equal(t, TopicReportGenerated, conn.created[0].Topic)
	require.Len(t, conn.created[0].ConfigEntries, 1)
	assert.Equal(t, "retention.ms", conn.created[0].ConfigEntries[0].ConfigName)
}

func TestCreateTopic_ExistingTopicNotAnError(t *testing.T) {
	t.Parallel()
	conn := &mockKafkaConn{
		createErr:  stderrors.New("topic already exists"),
		partitions: []kafka.Partition{{Topic: "t"}},
	}
	m := &TopicManager{conn: conn, logger: logging.NewNopLogger()}

	err := m.CreateTopic(context.Background(), TopicConfig{
		Name: "t", NumPartitions: 3, ReplicationFactor: 3,
	})

	assert.NoError(t, err)
}

func TestCreateTopic_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()
	m := &TopicManager{conn: &mockKafkaConn{}, logger: logging.NewNopLogger()}

	assert.Error(t, m.CreateTopic(context.Background(), TopicConfig{NumPartitions: 1, ReplicationFactor: 1}))
	assert.Error(t, m.CreateTopic(context.Background(), TopicConfig{Name: "t", ReplicationFactor: 1}))
	assert.Error(t, m.CreateTopic(context.Background(), TopicConfig{Name: "t", NumPartitions: 1}))
}

func TestEnsureDefaultTopics_CreatesAll(t *testing.T) {
	t.Parallel()
	conn := &mockKafkaConn{}
	m := &TopicManager{conn: conn, logger: logging.NewNopLogger()}

	require.NoError(t, m.EnsureDefaultTopics(context.Background()))

	assert.Len(t, conn.created, len(DefaultTopics()))
}

func TestListTopics_Deduplicates(t *testing.T) {
	t.Parallel()
	conn := &mockKafkaConn{partitions: []kafka.Partition{
		{Topic: TopicAnalysisCompleted}, {Topic: TopicAnalysisCompleted}, {Topic: TopicReportGenerated},
	}}
	m := &TopicManager{conn: conn, logger: logging.NewNopLogger()}

	topics, err := m.ListTopics(context.Background())

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{TopicAnalysisCompleted, TopicReportGenerated}, topics)
}
