package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talentwire/interview-gateway/internal/interview_service/domain"
)

// ExternalClassifier is the optional LLM-backed weak-answer check. It is
// consulted only when the heuristic does not match.
type ExternalClassifier interface {
	ClassifyWeak(ctx context.Context, answerText string) (bool, error)
}

// Marker phrases that flag an answer as weak without any external call.
var weakAnswerMarkers = []string{
	"don't know", "do not know", "not sure", "unsure", "no idea",
	"can't remember", "cannot remember", "can't recall", "cannot recall",
	"sorry", "apolog", "maybe later", "haven't used", "never used",
	"no experience", "don't have experience", "not familiar", "don't remember",
}

// AnswerClassifier decides whether a single answer text is weak. It reads
// only the given text, never the conversation state.
type AnswerClassifier struct {
	external ExternalClassifier
	timeout  time.Duration
	logger   *slog.Logger
}

// NewAnswerClassifier creates a classifier. external may be nil, in which
// case only the marker heuristic applies.
func NewAnswerClassifier(external ExternalClassifier, timeout time.Duration, logger *slog.Logger) *AnswerClassifier {
	return &AnswerClassifier{
		external: external,
		timeout:  timeout,
		logger:   logger,
	}
}

// IsWeak reports whether the answer shows uncertainty or lack of knowledge.
// On any external failure it fails open toward false: a candidate is never
// rescheduled because the classifier was unavailable.
func (c *AnswerClassifier) IsWeak(ctx context.Context, answerText string) bool {
	lowered := strings.ToLower(strings.TrimSpace(answerText))

	for _, marker := range weakAnswerMarkers {
		if strings.Contains(lowered, marker) {
			classifierOutcomeCounter.WithLabelValues("heuristic", "weak").Inc()
			return true
		}
	}

	if c.external == nil {
		classifierOutcomeCounter.WithLabelValues("heuristic", "strong").Inc()
		return false
	}

	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	weak, err := c.external.ClassifyWeak(callCtx, answerText)
	if err != nil {
		c.logger.WarnContext(ctx, "External answer classification failed, defaulting to strong", "error", err)
		classifierOutcomeCounter.WithLabelValues("external", "error").Inc()
		return false
	}

	outcome := "strong"
	if weak {
		outcome = "weak"
	}
	classifierOutcomeCounter.WithLabelValues("external", outcome).Inc()
	return weak
}

// The reschedule check covers the answers to these question sequences.
var rescheduleSequences = []int{1, 2, 3}

// RescheduleEvaluator implements the reschedule predicate: cancel early when
// the answers to the first three questions are all weak.
type RescheduleEvaluator struct {
	messages   domain.MessageRepository
	classifier *AnswerClassifier
	logger     *slog.Logger
}

// NewRescheduleEvaluator creates the predicate over the message log.
func NewRescheduleEvaluator(messages domain.MessageRepository, classifier *AnswerClassifier, logger *slog.Logger) *RescheduleEvaluator {
	return &RescheduleEvaluator{
		messages:   messages,
		classifier: classifier,
		logger:     logger,
	}
}

// ShouldReschedule is true only when all three opening sequences have been
// answered and every answer classifies weak. It short-circuits on the first
// strong answer. Repository failures count as "do not reschedule".
func (e *RescheduleEvaluator) ShouldReschedule(ctx context.Context, interviewID uuid.UUID) bool {
	answers, err := e.messages.InboundForSequences(ctx, interviewID, rescheduleSequences)
	if err != nil {
		e.logger.ErrorContext(ctx, "Failed to load opening answers for reschedule check", "error", err, "interview_id", interviewID)
		return false
	}

	seen := make(map[int]bool, len(rescheduleSequences))
	for _, answer := range answers {
		seen[answer.SequenceNumber] = true
	}
	for _, seq := range rescheduleSequences {
		if !seen[seq] {
			return false
		}
	}

	for _, answer := range answers {
		if !e.classifier.IsWeak(ctx, answer.Message.MessageText) {
			return false
		}
	}

	e.logger.InfoContext(ctx, "All opening answers classified weak", "interview_id", interviewID, "answers", len(answers))
	return true
}
