package delivery

import (
	"context"

	"github.com/SlavaShagalov/hotel-admin/internal/models"
	"github.com/SlavaShagalov/hotel-admin/internal/pkg/app"
)

type Recorder interface {
	app.HealthChecker

	Push(ctx context.Context, attempt models.Attempt) error
}

type Observer interface {
	ObserveSubmission(outcome models.Outcome)
}
