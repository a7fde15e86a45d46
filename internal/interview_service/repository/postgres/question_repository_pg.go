package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talentwire/interview-gateway/internal/interview_service/domain"
)

type PgQuestionRepository struct {
	db     PgxPool
	logger *slog.Logger
}

func NewPgQuestionRepository(db PgxPool, logger *slog.Logger) *PgQuestionRepository {
	return &PgQuestionRepository{db: db, logger: logger}
}

const questionColumns = `id, interview_id, question_text, question_type, sequence_number, created_at`

func scanQuestion(row pgx.Row) (*domain.Question, error) {
	question := &domain.Question{}
	err := row.Scan(
		&question.ID, &question.InterviewID, &question.QuestionText,
		&question.QuestionType, &question.SequenceNumber, &question.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return question, nil
}

func (r *PgQuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`
	question, err := scanQuestion(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting question by ID", "error", err, "question_id", id)
		return nil, err
	}
	return question, nil
}

func (r *PgQuestionRepository) FindBySequence(ctx context.Context, interviewID uuid.UUID, sequenceNumber int) (*domain.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE interview_id = $1 AND sequence_number = $2
		LIMIT 1
	`
	question, err := scanQuestion(r.db.QueryRow(ctx, query, interviewID, sequenceNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error finding question by sequence", "error", err,
			"interview_id", interviewID, "sequence_number", sequenceNumber)
		return nil, err
	}
	return question, nil
}

func (r *PgQuestionRepository) FindNextAfter(ctx context.Context, interviewID uuid.UUID, sequenceNumber int) (*domain.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE interview_id = $1 AND sequence_number > $2
		ORDER BY sequence_number
		LIMIT 1
	`
	question, err := scanQuestion(r.db.QueryRow(ctx, query, interviewID, sequenceNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error finding next question", "error", err,
			"interview_id", interviewID, "after_sequence", sequenceNumber)
		return nil, err
	}
	return question, nil
}

func (r *PgQuestionRepository) ListByInterview(ctx context.Context, interviewID uuid.UUID) ([]domain.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE interview_id = $1
		ORDER BY sequence_number
	`
	rows, err := r.db.Query(ctx, query, interviewID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing questions", "error", err, "interview_id", interviewID)
		return nil, err
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var question domain.Question
		if err := rows.Scan(
			&question.ID, &question.InterviewID, &question.QuestionText,
			&question.QuestionType, &question.SequenceNumber, &question.CreatedAt,
		); err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}
	return questions, rows.Err()
}
