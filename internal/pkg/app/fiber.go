package app

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	slogfiber "github.com/samber/slog-fiber"
)

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Delivery interface {
	HealthChecker

	AddHandlers(router fiber.Router)
}

type FiberApp struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger
}

func NewFiberApp(config WebConfig, delivery Delivery, logger *slog.Logger, middlewares ...fiber.Handler) *FiberApp {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(logger),
	})

	app.Use(slogfiber.New(logger))
	app.Use(recover.New())
	for _, mw := range middlewares {
		app.Use(mw)
	}

	app.Get("/health", func(ctx *fiber.Ctx) error {
		if err := delivery.HealthCheck(ctx.UserContext()); err != nil {
			logger.Error("health check failed", slog.String("error", err.Error()))
			return ctx.SendStatus(fiber.StatusServiceUnavailable)
		}
		return ctx.SendStatus(fiber.StatusOK)
	})

	delivery.AddHandlers(app)

	return &FiberApp{
		app:    app,
		addr:   config.Host + ":" + config.Port,
		logger: logger,
	}
}

func (a *FiberApp) Handle(method, path string, handler fiber.Handler) {
	a.app.Add(method, path, handler)
}

func (a *FiberApp) Start() error {
	return a.app.Listen(a.addr)
}

func (a *FiberApp) Shutdown(ctx context.Context) error {
	return a.app.ShutdownWithContext(ctx)
}

// ErrorHandler answers with {"message": ...} and the status of a *fiber.Error, 500 otherwise.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
		} else {
			logger.Error("request failed",
				slog.String("path", ctx.Path()),
				slog.String("error", err.Error()),
			)
		}

		return ctx.Status(code).JSON(fiber.Map{"message": err.Error()})
	}
}
