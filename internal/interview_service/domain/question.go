package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuestionType categorizes an interview question.
type QuestionType string

const (
	QuestionTypeTechnical  QuestionType = "technical"
	QuestionTypeBehavioral QuestionType = "behavioral"
	QuestionTypeExperience QuestionType = "experience"
	QuestionTypeOther      QuestionType = "other"
)

// Question is a single interview question. Questions are created before the
// conversation starts and are immutable thereafter; SequenceNumber is a
// positive integer, unique within an interview, and defines the strict ask
// order.
type Question struct {
	ID             uuid.UUID    `json:"id"`
	InterviewID    uuid.UUID    `json:"interview_id"`
	QuestionText   string       `json:"question_text"`
	QuestionType   QuestionType `json:"question_type"`
	SequenceNumber int          `json:"sequence_number"`
	CreatedAt      time.Time    `json:"created_at"`
}
