package kafka

import (
	"context"

	"github.com/turtacn/RegGap-Intelligence/internal/application/analysis"
	"github.com/turtacn/RegGap-Intelligence/internal/infrastructure/monitoring/logging"
)

// Event type names carried in envelope headers.
const (
	EventTypeAnalysisCompleted = "analysis.completed"
	EventTypeReportGenerated   = "report.generated"
)

// sourceService identifies this service in event envelopes.
const sourceService = "reggap-intelligence"

// EventPublisher publishes pipeline events through a Producer. It
// implements analysis.EventPublisher.
type EventPublisher struct {
	producer *Producer
	logger   logging.Logger
}

// NewEventPublisher wraps a producer for pipeline event publishing.
func NewEventPublisher(producer *Producer, logger logging.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, logger: logger}
}

var _ analysis.EventPublisher = (*EventPublisher)(nil)

// PublishAnalysisCompleted announces a finished document analysis.
func (p *EventPublisher) PublishAnalysisCompleted(ctx context.Context, event analysis.AnalysisCompletedEvent) error {
	env, err := NewEventEnvelope(EventTypeAnalysisCompleted, sourceService, event)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(TopicAnalysisCompleted)
	if err != nil {
		return err
	}
	// Key by document so per-document events stay ordered.
	msg.Key = []byte(event.DocumentID)
	return p.producer.Publish(ctx, msg)
}

// PublishReportGenerated announces an assembled compliance report.
func (p *EventPublisher) PublishReportGenerated(ctx context.Context, event analysis.ReportGeneratedEvent) error {
	env, err := NewEventEnvelope(EventTypeReportGenerated, sourceService, event)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(TopicReportGenerated)
	if err != nil {
		return err
	}
	msg.Key = []byte(event.ReportID)
	return p.producer.Publish(ctx, msg)
}
