package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/talentwire/interview-gateway/internal/interview_service/domain"
)

type PgJobRepository struct {
	db     PgxPool
	logger *slog.Logger
}

func NewPgJobRepository(db PgxPool, logger *slog.Logger) *PgJobRepository {
	return &PgJobRepository{db: db, logger: logger}
}

func (r *PgJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	query := `
		SELECT id, title, category, description, created_at
		FROM jobs
		WHERE id = $1
	`
	job := &domain.Job{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&job.ID, &job.Title, &job.Category, &job.Description, &job.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting job by ID", "error", err, "job_id", id)
		return nil, err
	}
	return job, nil
}
