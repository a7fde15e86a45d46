package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talentwire/interview-gateway/internal/interview_service/domain"
)

type PgMessageRepository struct {
	db     PgxPool
	logger *slog.Logger
}

func NewPgMessageRepository(db PgxPool, logger *slog.Logger) *PgMessageRepository {
	return &PgMessageRepository{db: db, logger: logger}
}

// rowQuerier is satisfied by both the pool and a transaction, so the insert
// can run inside the interview repository's transition transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// insertMessage appends one message row; log_seq comes from the sequence on
// insert so per-interview ordering is never ambiguous.
func insertMessage(ctx context.Context, q rowQuerier, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, interview_id, direction, message_text, status, question_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING log_seq
	`
	return q.QueryRow(ctx, query,
		msg.ID, msg.InterviewID, msg.Direction, msg.MessageText,
		msg.Status, msg.QuestionID, msg.CreatedAt,
	).Scan(&msg.LogSeq)
}

func (r *PgMessageRepository) Append(ctx context.Context, msg *domain.Message) error {
	if err := insertMessage(ctx, r.db, msg); err != nil {
		r.logger.ErrorContext(ctx, "Error appending message", "error", err, "message_id", msg.ID, "interview_id", msg.InterviewID)
		return err
	}
	return nil
}

func (r *PgMessageRepository) LastOutbound(ctx context.Context, interviewID uuid.UUID) (*domain.Message, error) {
	// Latest strictly by creation time; log_seq breaks same-instant ties by
	// insert order, never by message identifier.
	query := `
		SELECT id, interview_id, direction, message_text, status, question_id, log_seq, created_at
		FROM messages
		WHERE interview_id = $1 AND direction = $2
		ORDER BY created_at DESC, log_seq DESC
		LIMIT 1
	`
	msg := &domain.Message{}
	err := r.db.QueryRow(ctx, query, interviewID, domain.DirectionOutbound).Scan(
		&msg.ID, &msg.InterviewID, &msg.Direction, &msg.MessageText,
		&msg.Status, &msg.QuestionID, &msg.LogSeq, &msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error finding last outbound message", "error", err, "interview_id", interviewID)
		return nil, err
	}
	return msg, nil
}

func (r *PgMessageRepository) InboundForSequences(ctx context.Context, interviewID uuid.UUID, sequenceNumbers []int) ([]domain.InboundAnswer, error) {
	query := `
		SELECT m.id, m.interview_id, m.direction, m.message_text, m.status, m.question_id, m.log_seq, m.created_at,
		       q.sequence_number
		FROM messages m
		JOIN questions q ON q.id = m.question_id
		WHERE m.interview_id = $1 AND m.direction = $2 AND q.sequence_number = ANY($3)
		ORDER BY q.sequence_number, m.created_at, m.log_seq
	`
	rows, err := r.db.Query(ctx, query, interviewID, domain.DirectionInbound, sequenceNumbers)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error querying inbound answers", "error", err, "interview_id", interviewID)
		return nil, err
	}
	defer rows.Close()

	var answers []domain.InboundAnswer
	for rows.Next() {
		var answer domain.InboundAnswer
		msg := &answer.Message
		if err := rows.Scan(
			&msg.ID, &msg.InterviewID, &msg.Direction, &msg.MessageText,
			&msg.Status, &msg.QuestionID, &msg.LogSeq, &msg.CreatedAt,
			&answer.SequenceNumber,
		); err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}
	return answers, rows.Err()
}

func (r *PgMessageRepository) ListByInterview(ctx context.Context, interviewID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT id, interview_id, direction, message_text, status, question_id, log_seq, created_at
		FROM messages
		WHERE interview_id = $1
		ORDER BY created_at, log_seq
	`
	rows, err := r.db.Query(ctx, query, interviewID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing messages", "error", err, "interview_id", interviewID)
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID, &msg.InterviewID, &msg.Direction, &msg.MessageText,
			&msg.Status, &msg.QuestionID, &msg.LogSeq, &msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
