package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talentwire/interview-gateway/internal/interview_service/domain"
)

type PgCandidateRepository struct {
	db     PgxPool
	logger *slog.Logger
}

func NewPgCandidateRepository(db PgxPool, logger *slog.Logger) *PgCandidateRepository {
	return &PgCandidateRepository{db: db, logger: logger}
}

func (r *PgCandidateRepository) FindByPhone(ctx context.Context, phoneNumber string) (*domain.Candidate, error) {
	query := `
		SELECT id, first_name, last_name, email, phone_number, created_at
		FROM candidates
		WHERE phone_number = $1
		LIMIT 1
	`
	candidate := &domain.Candidate{}
	err := r.db.QueryRow(ctx, query, phoneNumber).Scan(
		&candidate.ID, &candidate.FirstName, &candidate.LastName,
		&candidate.Email, &candidate.PhoneNumber, &candidate.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error finding candidate by phone", "error", err)
		return nil, err
	}
	return candidate, nil
}

func (r *PgCandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Candidate, error) {
	query := `
		SELECT id, first_name, last_name, email, phone_number, created_at
		FROM candidates
		WHERE id = $1
	`
	candidate := &domain.Candidate{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&candidate.ID, &candidate.FirstName, &candidate.LastName,
		&candidate.Email, &candidate.PhoneNumber, &candidate.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting candidate by ID", "error", err, "candidate_id", id)
		return nil, err
	}
	return candidate, nil
}
