package domain

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// InterviewStatus represents the lifecycle state of an interview.
type InterviewStatus string

const (
	InterviewStatusScheduled  InterviewStatus = "scheduled"
	InterviewStatusInProgress InterviewStatus = "in_progress"
	InterviewStatusCompleted  InterviewStatus = "completed"
	InterviewStatusCanceled   InterviewStatus = "canceled"
)

func (s InterviewStatus) String() string {
	return string(s)
}

// Interview is one candidate's scheduled conversational assessment for one job.
// JobFitScore is written at most once, after the interview completes; the
// conditional update in the repository enforces that.
type Interview struct {
	ID          uuid.UUID       `json:"id"`
	CandidateID uuid.UUID       `json:"candidate_id"`
	JobID       uuid.UUID       `json:"job_id"`
	Status      InterviewStatus `json:"status"`
	ScheduledAt sql.NullTime    `json:"scheduled_at,omitempty"`
	StartedAt   sql.NullTime    `json:"started_at,omitempty"`
	EndedAt     sql.NullTime    `json:"ended_at,omitempty"`
	JobFitScore sql.NullFloat64 `json:"job_fit_score,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// StatusTransition describes a guarded status change. From is the status the
// interview must still hold for the transition to apply; StartedAt/EndedAt
// are stamped when non-nil.
type StatusTransition struct {
	From      InterviewStatus
	To        InterviewStatus
	StartedAt *time.Time
	EndedAt   *time.Time
}
