package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/talentwire/interview-gateway/internal/interview_service/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAnswerClassifier_MarkerHeuristic(t *testing.T) {
	classifier := NewAnswerClassifier(nil, 0, discardLogger())

	tests := []struct {
		name   string
		answer string
		weak   bool
	}{
		{"dont know", "I don't know that one", true},
		{"not sure", "Honestly not sure", true},
		{"apology", "Sorry, I can't answer that", true},
		{"no experience", "I have no experience with Kafka", true},
		{"mixed case", "No Idea at all", true},
		{"confident answer", "I designed the billing pipeline and ran it in production for two years.", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.weak, classifier.IsWeak(context.Background(), tc.answer))
		})
	}
}

func TestAnswerClassifier_ExternalConsultedWhenHeuristicMisses(t *testing.T) {
	external := new(MockExternalClassifier)
	external.On("ClassifyWeak", mock.Anything, "A rambling non-answer").Return(true, nil)

	classifier := NewAnswerClassifier(external, time.Second, discardLogger())

	assert.True(t, classifier.IsWeak(context.Background(), "A rambling non-answer"))
	external.AssertExpectations(t)
}

func TestAnswerClassifier_ExternalSkippedWhenHeuristicMatches(t *testing.T) {
	external := new(MockExternalClassifier)

	classifier := NewAnswerClassifier(external, time.Second, discardLogger())

	assert.True(t, classifier.IsWeak(context.Background(), "no idea, sorry"))
	external.AssertNotCalled(t, "ClassifyWeak", mock.Anything, mock.Anything)
}

func TestAnswerClassifier_ExternalFailureDefaultsToStrong(t *testing.T) {
	external := new(MockExternalClassifier)
	external.On("ClassifyWeak", mock.Anything, mock.Anything).Return(false, errors.New("model unavailable"))

	classifier := NewAnswerClassifier(external, time.Second, discardLogger())

	assert.False(t, classifier.IsWeak(context.Background(), "A long and detailed answer"))
}

func inboundAnswer(interviewID uuid.UUID, seq int, text string) domain.InboundAnswer {
	return domain.InboundAnswer{
		Message: domain.Message{
			ID:          uuid.New(),
			InterviewID: interviewID,
			Direction:   domain.DirectionInbound,
			MessageText: text,
			Status:      domain.MessageStatusReceived,
		},
		SequenceNumber: seq,
	}
}

func TestRescheduleEvaluator_AllWeakAnswers(t *testing.T) {
	interviewID := uuid.New()
	messages := new(MockMessageRepository)
	messages.On("InboundForSequences", mock.Anything, interviewID, []int{1, 2, 3}).Return([]domain.InboundAnswer{
		inboundAnswer(interviewID, 1, "I don't know"),
		inboundAnswer(interviewID, 2, "not sure really"),
		inboundAnswer(interviewID, 3, "sorry, no idea"),
	}, nil)

	evaluator := NewRescheduleEvaluator(messages, NewAnswerClassifier(nil, 0, discardLogger()), discardLogger())

	assert.True(t, evaluator.ShouldReschedule(context.Background(), interviewID))
}

func TestRescheduleEvaluator_MissingAnswerMeansNoReschedule(t *testing.T) {
	interviewID := uuid.New()
	messages := new(MockMessageRepository)
	messages.On("InboundForSequences", mock.Anything, interviewID, []int{1, 2, 3}).Return([]domain.InboundAnswer{
		inboundAnswer(interviewID, 1, "I don't know"),
		inboundAnswer(interviewID, 3, "no idea"),
	}, nil)

	evaluator := NewRescheduleEvaluator(messages, NewAnswerClassifier(nil, 0, discardLogger()), discardLogger())

	assert.False(t, evaluator.ShouldReschedule(context.Background(), interviewID))
}

func TestRescheduleEvaluator_OneStrongAnswerShortCircuits(t *testing.T) {
	interviewID := uuid.New()
	messages := new(MockMessageRepository)
	messages.On("InboundForSequences", mock.Anything, interviewID, []int{1, 2, 3}).Return([]domain.InboundAnswer{
		inboundAnswer(interviewID, 1, "I don't know"),
		inboundAnswer(interviewID, 2, "I led the rollout across three regions."),
		inboundAnswer(interviewID, 3, "no idea"),
	}, nil)

	external := new(MockExternalClassifier)
	external.On("ClassifyWeak", mock.Anything, "I led the rollout across three regions.").Return(false, nil).Once()

	evaluator := NewRescheduleEvaluator(messages, NewAnswerClassifier(external, time.Second, discardLogger()), discardLogger())

	assert.False(t, evaluator.ShouldReschedule(context.Background(), interviewID))
	external.AssertExpectations(t)
}

func TestRescheduleEvaluator_RepositoryFailureMeansNoReschedule(t *testing.T) {
	interviewID := uuid.New()
	messages := new(MockMessageRepository)
	messages.On("InboundForSequences", mock.Anything, interviewID, []int{1, 2, 3}).Return(nil, errors.New("connection reset"))

	evaluator := NewRescheduleEvaluator(messages, NewAnswerClassifier(nil, 0, discardLogger()), discardLogger())

	require.False(t, evaluator.ShouldReschedule(context.Background(), interviewID))
}
