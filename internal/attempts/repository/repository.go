package repository

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/SlavaShagalov/hotel-admin/internal/models"
	"github.com/SlavaShagalov/hotel-admin/pkg/sqlxutils"
)

const DefaultLimit = 100

type SqlxRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewSqlxRepository(db *sqlx.DB, logger *slog.Logger) *SqlxRepository {
	return &SqlxRepository{
		db:     db,
		logger: logger,
	}
}

func (r *SqlxRepository) HealthCheck(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// GetAttempts returns the latest attempts first.
func (r *SqlxRepository) GetAttempts(ctx context.Context, limit int) ([]models.Attempt, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	const getCmd = `
	SELECT id, outcome, email, role, message, created_at
	FROM registration_attempts
	ORDER BY created_at DESC
	LIMIT $1;`

	attempts := make([]models.Attempt, 0)
	if err := sqlxutils.Select(ctx, r.db, &attempts, getCmd, limit); err != nil {
		r.logger.Error(err.Error())
		return nil, err
	}

	return attempts, nil
}

// SaveAttempt is idempotent on the attempt id so redelivered messages are harmless.
func (r *SqlxRepository) SaveAttempt(ctx context.Context, attempt models.Attempt) error {
	const createCmd = `
	INSERT INTO registration_attempts (id, outcome, email, role, message, created_at)
	VALUES (:id, :outcome, :email, :role, :message, :created_at)
	ON CONFLICT (id) DO NOTHING;`

	_, err := r.db.NamedExecContext(ctx, createCmd, attempt)
	if err != nil {
		return errors.Wrap(err, "failed to save attempt")
	}

	return nil
}
