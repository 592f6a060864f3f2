package delivery

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/SlavaShagalov/hotel-admin/internal/attempts/delivery/errors"
	"github.com/SlavaShagalov/hotel-admin/internal/pkg/app"
)

const attemptsPath = "/api/v1/attempts"

type Delivery struct {
	repo      Repository
	validator *app.TokenValidator
	logger    *slog.Logger
}

func New(repo Repository, validator *app.TokenValidator, logger *slog.Logger) *Delivery {
	return &Delivery{
		repo:      repo,
		validator: validator,
		logger:    logger,
	}
}

func (d *Delivery) HealthCheck(ctx context.Context) error {
	return d.repo.HealthCheck(ctx)
}

func (d *Delivery) AddHandlers(router fiber.Router) {
	admin := router.Group(attemptsPath, app.JWTAuthMiddleware(d.validator), app.AdminOnlyMiddleware())
	admin.Get("/", d.list)
}

func (d *Delivery) list(ctx *fiber.Ctx) error {
	limit := ctx.QueryInt("limit", 0)
	if limit < 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(errors.ErrInvalidLimit.Map())
	}

	attempts, err := d.repo.GetAttempts(ctx.UserContext(), limit)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusOK).JSON(NewAttemptsResponse(attempts))
}
