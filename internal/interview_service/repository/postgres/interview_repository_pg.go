package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talentwire/interview-gateway/internal/interview_service/domain"
)

type PgInterviewRepository struct {
	db     PgxPool
	logger *slog.Logger
}

func NewPgInterviewRepository(db PgxPool, logger *slog.Logger) *PgInterviewRepository {
	return &PgInterviewRepository{db: db, logger: logger}
}

const interviewColumns = `id, candidate_id, job_id, status, scheduled_at, started_at, ended_at, job_fit_score, created_at, updated_at`

func scanInterview(row pgx.Row) (*domain.Interview, error) {
	interview := &domain.Interview{}
	err := row.Scan(
		&interview.ID, &interview.CandidateID, &interview.JobID, &interview.Status,
		&interview.ScheduledAt, &interview.StartedAt, &interview.EndedAt,
		&interview.JobFitScore, &interview.CreatedAt, &interview.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return interview, nil
}

func (r *PgInterviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Interview, error) {
	query := `SELECT ` + interviewColumns + ` FROM interviews WHERE id = $1`
	interview, err := scanInterview(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting interview by ID", "error", err, "interview_id", id)
		return nil, err
	}
	return interview, nil
}

func (r *PgInterviewRepository) FindActiveByCandidate(ctx context.Context, candidateID uuid.UUID) (*domain.Interview, error) {
	query := `
		SELECT ` + interviewColumns + `
		FROM interviews
		WHERE candidate_id = $1 AND status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`
	interview, err := scanInterview(r.db.QueryRow(ctx, query, candidateID,
		domain.InterviewStatusScheduled, domain.InterviewStatusInProgress))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error finding active interview", "error", err, "candidate_id", candidateID)
		return nil, err
	}
	return interview, nil
}

// TransitionWithOutbound applies the guarded status update and, when it
// applied, appends the outbound message in the same transaction. The WHERE
// status guard makes a replayed event a no-op instead of a double
// transition.
func (r *PgInterviewRepository) TransitionWithOutbound(ctx context.Context, interviewID uuid.UUID, transition domain.StatusTransition, outbound *domain.Message) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE interviews
		SET status = $1,
		    started_at = COALESCE($2, started_at),
		    ended_at = COALESCE($3, ended_at),
		    updated_at = $4
		WHERE id = $5 AND status = $6
	`
	tag, err := tx.Exec(ctx, updateQuery,
		transition.To, transition.StartedAt, transition.EndedAt,
		time.Now().UTC(), interviewID, transition.From,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating interview status",
			"error", err, "interview_id", interviewID, "to", transition.To)
		return false, err
	}

	if tag.RowsAffected() == 0 {
		// Status moved on since the caller read it; nothing to record.
		return false, nil
	}

	if outbound != nil {
		if err := insertMessage(ctx, tx, outbound); err != nil {
			r.logger.ErrorContext(ctx, "Error appending outbound message in transition",
				"error", err, "interview_id", interviewID, "message_id", outbound.ID)
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transition: %w", err)
	}
	return true, nil
}

// BackfillEndedAt stamps ended_at only where it is still null. Narrow by
// design: it must never touch status or score.
func (r *PgInterviewRepository) BackfillEndedAt(ctx context.Context, interviewID uuid.UUID, endedAt time.Time) error {
	query := `
		UPDATE interviews
		SET ended_at = $1, updated_at = $1
		WHERE id = $2 AND ended_at IS NULL
	`
	if _, err := r.db.Exec(ctx, query, endedAt, interviewID); err != nil {
		r.logger.ErrorContext(ctx, "Error backfilling ended_at", "error", err, "interview_id", interviewID)
		return err
	}
	return nil
}

// SetScoreIfUnset is the update-if-null guard: two concurrent scoring runs
// cannot both write.
func (r *PgInterviewRepository) SetScoreIfUnset(ctx context.Context, interviewID uuid.UUID, score float64) (bool, error) {
	query := `
		UPDATE interviews
		SET job_fit_score = $1, updated_at = $2
		WHERE id = $3 AND job_fit_score IS NULL
	`
	tag, err := r.db.Exec(ctx, query, score, time.Now().UTC(), interviewID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error setting job fit score", "error", err, "interview_id", interviewID)
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
