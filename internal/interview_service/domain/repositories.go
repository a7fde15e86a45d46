package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CandidateRepository reads candidate records.
type CandidateRepository interface {
	FindByPhone(ctx context.Context, phoneNumber string) (*Candidate, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Candidate, error)
}

// JobRepository reads job records.
type JobRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)
}

// InterviewRepository manages interview state.
type InterviewRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Interview, error)

	// FindActiveByCandidate returns the candidate's interview with status
	// scheduled or in_progress, or ErrNotFound.
	FindActiveByCandidate(ctx context.Context, candidateID uuid.UUID) (*Interview, error)

	// TransitionWithOutbound applies a guarded status transition and appends
	// the outbound reply in a single transaction. It returns false without
	// error when the interview no longer holds the transition's From status,
	// so a replayed inbound event cannot double-transition.
	TransitionWithOutbound(ctx context.Context, interviewID uuid.UUID, transition StatusTransition, outbound *Message) (bool, error)

	// BackfillEndedAt sets ended_at to the given time only if it is still
	// null. A narrow update that never touches status or score.
	BackfillEndedAt(ctx context.Context, interviewID uuid.UUID, endedAt time.Time) error

	// SetScoreIfUnset writes the job-fit score only if none has been written
	// yet. Returns false when a score was already present.
	SetScoreIfUnset(ctx context.Context, interviewID uuid.UUID, score float64) (bool, error)
}

// QuestionRepository reads the (immutable) question bank.
type QuestionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Question, error)
	FindBySequence(ctx context.Context, interviewID uuid.UUID, sequenceNumber int) (*Question, error)

	// FindNextAfter returns the question with the smallest sequence number
	// strictly greater than the given one, or ErrNotFound.
	FindNextAfter(ctx context.Context, interviewID uuid.UUID, sequenceNumber int) (*Question, error)

	ListByInterview(ctx context.Context, interviewID uuid.UUID) ([]Question, error)
}

// MessageRepository manages the append-only message log. All list/lookup
// results follow strict creation order (created_at, then insert order).
type MessageRepository interface {
	Append(ctx context.Context, msg *Message) error

	// LastOutbound returns the most recently created outbound message for the
	// interview, or ErrNotFound.
	LastOutbound(ctx context.Context, interviewID uuid.UUID) (*Message, error)

	// InboundForSequences returns inbound messages whose correlated question
	// has one of the given sequence numbers, ordered by sequence number.
	InboundForSequences(ctx context.Context, interviewID uuid.UUID, sequenceNumbers []int) ([]InboundAnswer, error)

	ListByInterview(ctx context.Context, interviewID uuid.UUID) ([]Message, error)
}
