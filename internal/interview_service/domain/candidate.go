package domain

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is the applicant taking the interview. Candidate records are
// owned by the applicant-tracking side of the system; this service only
// reads them.
type Candidate struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number"`
	CreatedAt   time.Time `json:"created_at"`
}

// FullName returns the candidate's display name.
func (c *Candidate) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Job is the position the interview assesses fit for. Read-only here.
type Job struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
