package delivery

import (
	"context"

	"github.com/SlavaShagalov/hotel-admin/internal/models"
	"github.com/SlavaShagalov/hotel-admin/internal/pkg/app"
)

type Repository interface {
	app.HealthChecker

	GetAttempts(ctx context.Context, limit int) ([]models.Attempt, error)
}
