package postgres

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentwire/interview-gateway/internal/interview_service/domain"
)

func setupInterviewRepoTest(t *testing.T) (*PgInterviewRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewPgInterviewRepository(mockPool, logger), mockPool
}

func interviewRows(pool pgxmock.PgxPoolIface, interview *domain.Interview) *pgxmock.Rows {
	return pool.NewRows([]string{
		"id", "candidate_id", "job_id", "status", "scheduled_at",
		"started_at", "ended_at", "job_fit_score", "created_at", "updated_at",
	}).AddRow(
		interview.ID, interview.CandidateID, interview.JobID, interview.Status,
		interview.ScheduledAt, interview.StartedAt, interview.EndedAt,
		interview.JobFitScore, interview.CreatedAt, interview.UpdatedAt,
	)
}

func TestPgInterviewRepository_GetByID(t *testing.T) {
	repo, mockPool := setupInterviewRepoTest(t)
	defer mockPool.Close()

	interviewID := uuid.New()
	expected := &domain.Interview{
		ID:          interviewID,
		CandidateID: uuid.New(),
		JobID:       uuid.New(),
		Status:      domain.InterviewStatusCompleted,
		JobFitScore: sql.NullFloat64{Float64: 4.2, Valid: true},
		CreatedAt:   time.Now().Add(-time.Hour),
		UpdatedAt:   time.Now(),
	}

	t.Run("Found", func(t *testing.T) {
		mockPool.ExpectQuery(`SELECT .+ FROM interviews WHERE id = \$1`).
			WithArgs(interviewID).
			WillReturnRows(interviewRows(mockPool, expected))

		interview, err := repo.GetByID(context.Background(), interviewID)
		require.NoError(t, err)
		assert.Equal(t, expected.ID, interview.ID)
		assert.Equal(t, domain.InterviewStatusCompleted, interview.Status)
		assert.Equal(t, 4.2, interview.JobFitScore.Float64)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mockPool.ExpectQuery(`SELECT .+ FROM interviews WHERE id = \$1`).
			WithArgs(interviewID).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(context.Background(), interviewID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPgInterviewRepository_FindActiveByCandidate_FiltersStatuses(t *testing.T) {
	repo, mockPool := setupInterviewRepoTest(t)
	defer mockPool.Close()

	candidateID := uuid.New()
	active := &domain.Interview{
		ID:          uuid.New(),
		CandidateID: candidateID,
		JobID:       uuid.New(),
		Status:      domain.InterviewStatusInProgress,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	mockPool.ExpectQuery(`WHERE candidate_id = \$1 AND status IN \(\$2, \$3\)`).
		WithArgs(candidateID, domain.InterviewStatusScheduled, domain.InterviewStatusInProgress).
		WillReturnRows(interviewRows(mockPool, active))

	interview, err := repo.FindActiveByCandidate(context.Background(), candidateID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, interview.ID)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgInterviewRepository_TransitionWithOutbound(t *testing.T) {
	interviewID := uuid.New()
	now := time.Now().UTC()
	transition := domain.StatusTransition{
		From:    domain.InterviewStatusInProgress,
		To:      domain.InterviewStatusCompleted,
		EndedAt: &now,
	}
	outbound := domain.NewMessage(interviewID, domain.DirectionOutbound, "Thank you!", domain.MessageStatusSent, uuid.NullUUID{})

	t.Run("Applied", func(t *testing.T) {
		repo, mockPool := setupInterviewRepoTest(t)
		defer mockPool.Close()

		mockPool.ExpectBegin()
		mockPool.ExpectExec(`UPDATE interviews\s+SET status = \$1,.+WHERE id = \$5 AND status = \$6`).
			WithArgs(transition.To, transition.StartedAt, transition.EndedAt, pgxmock.AnyArg(), interviewID, transition.From).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockPool.ExpectQuery(`INSERT INTO messages .+ RETURNING log_seq`).
			WithArgs(outbound.ID, outbound.InterviewID, outbound.Direction, outbound.MessageText,
				outbound.Status, outbound.QuestionID, outbound.CreatedAt).
			WillReturnRows(mockPool.NewRows([]string{"log_seq"}).AddRow(int64(7)))
		mockPool.ExpectCommit()

		applied, err := repo.TransitionWithOutbound(context.Background(), interviewID, transition, outbound)
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, int64(7), outbound.LogSeq)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("StaleStatusIsNoOp", func(t *testing.T) {
		repo, mockPool := setupInterviewRepoTest(t)
		defer mockPool.Close()

		// The interview already moved on; the guard matches zero rows and
		// nothing else runs in the transaction.
		mockPool.ExpectBegin()
		mockPool.ExpectExec(`UPDATE interviews\s+SET status = \$1,.+WHERE id = \$5 AND status = \$6`).
			WithArgs(transition.To, transition.StartedAt, transition.EndedAt, pgxmock.AnyArg(), interviewID, transition.From).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mockPool.ExpectRollback()

		applied, err := repo.TransitionWithOutbound(context.Background(), interviewID, transition, outbound)
		require.NoError(t, err)
		assert.False(t, applied)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NilOutboundSkipsInsert", func(t *testing.T) {
		repo, mockPool := setupInterviewRepoTest(t)
		defer mockPool.Close()

		mockPool.ExpectBegin()
		mockPool.ExpectExec(`UPDATE interviews\s+SET status = \$1,.+WHERE id = \$5 AND status = \$6`).
			WithArgs(transition.To, transition.StartedAt, transition.EndedAt, pgxmock.AnyArg(), interviewID, transition.From).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mockPool.ExpectCommit()

		applied, err := repo.TransitionWithOutbound(context.Background(), interviewID, transition, nil)
		require.NoError(t, err)
		assert.True(t, applied)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPgInterviewRepository_SetScoreIfUnset(t *testing.T) {
	interviewID := uuid.New()

	t.Run("Written", func(t *testing.T) {
		repo, mockPool := setupInterviewRepoTest(t)
		defer mockPool.Close()

		mockPool.ExpectExec(`UPDATE interviews\s+SET job_fit_score = \$1, updated_at = \$2\s+WHERE id = \$3 AND job_fit_score IS NULL`).
			WithArgs(3.5, pgxmock.AnyArg(), interviewID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		written, err := repo.SetScoreIfUnset(context.Background(), interviewID, 3.5)
		require.NoError(t, err)
		assert.True(t, written)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("AlreadyScored", func(t *testing.T) {
		repo, mockPool := setupInterviewRepoTest(t)
		defer mockPool.Close()

		mockPool.ExpectExec(`UPDATE interviews\s+SET job_fit_score = \$1, updated_at = \$2\s+WHERE id = \$3 AND job_fit_score IS NULL`).
			WithArgs(3.5, pgxmock.AnyArg(), interviewID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		written, err := repo.SetScoreIfUnset(context.Background(), interviewID, 3.5)
		require.NoError(t, err)
		assert.False(t, written)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPgInterviewRepository_BackfillEndedAt(t *testing.T) {
	repo, mockPool := setupInterviewRepoTest(t)
	defer mockPool.Close()

	interviewID := uuid.New()
	endedAt := time.Now().UTC()

	mockPool.ExpectExec(`UPDATE interviews\s+SET ended_at = \$1, updated_at = \$1\s+WHERE id = \$2 AND ended_at IS NULL`).
		WithArgs(endedAt, interviewID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.BackfillEndedAt(context.Background(), interviewID, endedAt)
	require.NoError(t, err)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
