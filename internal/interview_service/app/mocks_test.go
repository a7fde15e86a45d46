package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/talentwire/interview-gateway/internal/interview_service/domain"
)

// --- Mocks shared by the app package tests ---

type MockCandidateRepository struct {
	mock.Mock
}

func (m *MockCandidateRepository) FindByPhone(ctx context.Context, phoneNumber string) (*domain.Candidate, error) {
	args := m.Called(ctx, phoneNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

func (m *MockCandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Candidate), args.Error(1)
}

type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

type MockInterviewRepository struct {
	mock.Mock
}

func (m *MockInterviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Interview, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Interview), args.Error(1)
}

func (m *MockInterviewRepository) FindActiveByCandidate(ctx context.Context, candidateID uuid.UUID) (*domain.Interview, error) {
	args := m.Called(ctx, candidateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Interview), args.Error(1)
}

func (m *MockInterviewRepository) TransitionWithOutbound(ctx context.Context, interviewID uuid.UUID, transition domain.StatusTransition, outbound *domain.Message) (bool, error) {
	args := m.Called(ctx, interviewID, transition, outbound)
	return args.Bool(0), args.Error(1)
}

func (m *MockInterviewRepository) BackfillEndedAt(ctx context.Context, interviewID uuid.UUID, endedAt time.Time) error {
	args := m.Called(ctx, interviewID, endedAt)
	return args.Error(0)
}

func (m *MockInterviewRepository) SetScoreIfUnset(ctx context.Context, interviewID uuid.UUID, score float64) (bool, error) {
	args := m.Called(ctx, interviewID, score)
	return args.Bool(0), args.Error(1)
}

type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) FindBySequence(ctx context.Context, interviewID uuid.UUID, sequenceNumber int) (*domain.Question, error) {
	args := m.Called(ctx, interviewID, sequenceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) FindNextAfter(ctx context.Context, interviewID uuid.UUID, sequenceNumber int) (*domain.Question, error) {
	args := m.Called(ctx, interviewID, sequenceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) ListByInterview(ctx context.Context, interviewID uuid.UUID) ([]domain.Question, error) {
	args := m.Called(ctx, interviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Question), args.Error(1)
}

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Append(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockMessageRepository) LastOutbound(ctx context.Context, interviewID uuid.UUID) (*domain.Message, error) {
	args := m.Called(ctx, interviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) InboundForSequences(ctx context.Context, interviewID uuid.UUID, sequenceNumbers []int) ([]domain.InboundAnswer, error) {
	args := m.Called(ctx, interviewID, sequenceNumbers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InboundAnswer), args.Error(1)
}

func (m *MockMessageRepository) ListByInterview(ctx context.Context, interviewID uuid.UUID) ([]domain.Message, error) {
	args := m.Called(ctx, interviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

type MockReschedulePredicate struct {
	mock.Mock
}

func (m *MockReschedulePredicate) ShouldReschedule(ctx context.Context, interviewID uuid.UUID) bool {
	args := m.Called(ctx, interviewID)
	return args.Bool(0)
}

type MockCompletionNotifier struct {
	mock.Mock
}

func (m *MockCompletionNotifier) InterviewCompleted(ctx context.Context, interviewID uuid.UUID) error {
	args := m.Called(ctx, interviewID)
	return args.Error(0)
}

type MockScorer struct {
	mock.Mock
}

func (m *MockScorer) Score(ctx context.Context, prompt string) (*domain.ScoreResult, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScoreResult), args.Error(1)
}

type MockExternalClassifier struct {
	mock.Mock
}

func (m *MockExternalClassifier) ClassifyWeak(ctx context.Context, answerText string) (bool, error) {
	args := m.Called(ctx, answerText)
	return args.Bool(0), args.Error(1)
}
