package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// InterviewCompletedEvent is the payload published when an interview reaches
// the completed status.
type InterviewCompletedEvent struct {
	InterviewID uuid.UUID `json:"interview_id"`
}

type completionPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// CompletionPublisher enqueues completed interviews for scoring by
// publishing to the scoring subject. It implements CompletionNotifier.
type CompletionPublisher struct {
	broker  completionPublisher
	subject string
	logger  *slog.Logger
}

// NewCompletionPublisher creates a publisher for the given subject.
func NewCompletionPublisher(broker completionPublisher, subject string, logger *slog.Logger) *CompletionPublisher {
	return &CompletionPublisher{
		broker:  broker,
		subject: subject,
		logger:  logger,
	}
}

// InterviewCompleted publishes the completion event.
func (p *CompletionPublisher) InterviewCompleted(ctx context.Context, interviewID uuid.UUID) error {
	event := InterviewCompletedEvent{InterviewID: interviewID}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal completion event: %w", err)
	}

	if err := p.broker.Publish(ctx, p.subject, data); err != nil {
		return fmt.Errorf("publish completion event: %w", err)
	}

	p.logger.InfoContext(ctx, "Enqueued interview for scoring", "interview_id", interviewID, "subject", p.subject)
	completionEventsCounter.WithLabelValues("published").Inc()
	return nil
}

type queueSubscriber interface {
	SubscribeToSubjectWithQueue(ctx context.Context, subject, queueGroup string, handler nats.MsgHandler) error
}

// ScoringConsumer consumes completion events from NATS and hands them to the
// worker pool via outputChan.
type ScoringConsumer struct {
	broker     queueSubscriber
	logger     *slog.Logger
	outputChan chan<- InterviewCompletedEvent
}

// NewScoringConsumer creates a consumer feeding outputChan.
func NewScoringConsumer(broker queueSubscriber, logger *slog.Logger, outputChan chan<- InterviewCompletedEvent) *ScoringConsumer {
	return &ScoringConsumer{
		broker:     broker,
		logger:     logger,
		outputChan: outputChan,
	}
}

// StartConsuming subscribes to the given subject as part of queueGroup and
// forwards deserialized events. It blocks until ctx is cancelled.
func (c *ScoringConsumer) StartConsuming(ctx context.Context, subject, queueGroup string) error {
	msgHandler := func(msg *nats.Msg) {
		completionEventsCounter.WithLabelValues("received").Inc()

		var event InterviewCompletedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			c.logger.ErrorContext(ctx, "Failed to deserialize completion event",
				"error", err, "subject", msg.Subject, "data", string(msg.Data))
			completionEventsCounter.WithLabelValues("malformed").Inc()
			return
		}

		if event.InterviewID == uuid.Nil {
			c.logger.ErrorContext(ctx, "Completion event without interview id", "subject", msg.Subject)
			completionEventsCounter.WithLabelValues("malformed").Inc()
			return
		}

		select {
		case c.outputChan <- event:
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Context cancelled, dropping completion event",
				"interview_id", event.InterviewID)
		}
	}

	c.logger.InfoContext(ctx, "Starting scoring subscription", "subject", subject, "queue_group", queueGroup)
	if err := c.broker.SubscribeToSubjectWithQueue(ctx, subject, queueGroup, msgHandler); err != nil && ctx.Err() == nil {
		return fmt.Errorf("scoring subscription: %w", err)
	}
	return ctx.Err()
}
