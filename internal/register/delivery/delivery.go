package delivery

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/SlavaShagalov/hotel-admin/internal/models"
	"github.com/SlavaShagalov/hotel-admin/internal/register/delivery/errors"
	"github.com/SlavaShagalov/hotel-admin/internal/register/usecase"
)

const (
	SessionCookie = "admin_register_sid"
	CSRFCookie    = "admin_register_csrf"

	csrfField      = "_csrf"
	csrfContextKey = "csrf"
	csrfExpiration = time.Hour
)

type Delivery struct {
	csrf     fiber.Handler
	sessions *Sessions
	recorder Recorder
	observer Observer
	clock    clockwork.Clock
	logger   *slog.Logger
}

func New(sessions *Sessions, recorder Recorder, observer Observer, clock clockwork.Clock, logger *slog.Logger) *Delivery {
	return &Delivery{
		csrf: csrf.New(csrf.Config{
			KeyLookup:      "form:" + csrfField,
			CookieName:     CSRFCookie,
			CookiePath:     pagePath,
			CookieHTTPOnly: true,
			CookieSameSite: fiber.CookieSameSiteStrictMode,
			Expiration:     csrfExpiration,
			ContextKey:     csrfContextKey,
			ErrorHandler: func(ctx *fiber.Ctx, err error) error {
				logger.Warn("reject registration request", slog.String("reason", err.Error()))
				return ctx.Status(fiber.StatusForbidden).JSON(errors.ErrForbiddenRequest.Map())
			},
		}),
		sessions: sessions,
		recorder: recorder,
		observer: observer,
		clock:    clock,
		logger:   logger,
	}
}

func (d *Delivery) HealthCheck(ctx context.Context) error {
	return d.recorder.HealthCheck(ctx)
}

func (d *Delivery) AddHandlers(router fiber.Router) {
	router.Get(pagePath, d.csrf, d.page)
	router.Post(pagePath, d.csrf, d.submit)
}

// page renders a blank form for visitors without a live session; sessions start on submit.
func (d *Delivery) page(ctx *fiber.Ctx) error {
	session, ok := d.sessions.Lookup(ctx.Cookies(SessionCookie))
	if !ok {
		return d.render(ctx, usecase.Snapshot{})
	}

	if target := session.Target(); target != "" {
		d.sessions.Release(session.ID)
		ctx.ClearCookie(SessionCookie)
		return ctx.Redirect(target, fiber.StatusSeeOther)
	}

	setSessionCookie(ctx, session)

	return d.render(ctx, session.Controller.Snapshot())
}

func (d *Delivery) submit(ctx *fiber.Ctx) error {
	var dto RegistrationDTO
	if err := ctx.BodyParser(&dto); err != nil {
		d.logger.Error(err.Error())
		return ctx.Status(fiber.StatusBadRequest).JSON(errors.ErrInvalidRegisterRequest.Map())
	}

	session, err := d.sessions.Acquire(ctx.Cookies(SessionCookie))
	if err != nil {
		d.logger.Warn("start registration session", slog.String("error", err.Error()))
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(errors.ErrTooManySessions.Map())
	}
	setSessionCookie(ctx, session)
	controller := session.Controller

	form := dto.Form()
	for _, field := range models.FormFields {
		if err := controller.UpdateField(field, form.Get(field)); err != nil {
			return err
		}
	}

	outcome := controller.Submit(ctx.UserContext())

	// the password is never kept past the request that carried it
	if err := controller.UpdateField(models.FieldPassword, ""); err != nil {
		d.logger.Debug("clear password", slog.String("error", err.Error()))
	}
	snapshot := controller.Snapshot()

	d.observer.ObserveSubmission(outcome)
	if outcome != models.OutcomeIgnored {
		d.record(ctx.UserContext(), outcome, snapshot)
	}

	return d.render(ctx, snapshot)
}

func setSessionCookie(ctx *fiber.Ctx, session *Session) {
	ctx.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    session.ID,
		Path:     pagePath,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (d *Delivery) render(ctx *fiber.Ctx, snapshot usecase.Snapshot) error {
	props := PageProps{
		Form:       snapshot.Form,
		Message:    snapshot.Message,
		Submitting: snapshot.Submitting,
	}
	props.CSRFToken, _ = ctx.Locals(csrfContextKey).(string)
	if !snapshot.Deadline.IsZero() {
		props.Refresh = refreshAfter(d.clock.Now(), snapshot.Deadline)
	}

	ctx.Type("html", "utf-8")

	return RegisterPage(props).Render(ctx.UserContext(), ctx.Response().BodyWriter())
}

func (d *Delivery) record(ctx context.Context, outcome models.Outcome, snapshot usecase.Snapshot) {
	attempt := models.Attempt{
		ID:        uuid.NewString(),
		Outcome:   outcome,
		Email:     snapshot.Form.Email,
		Role:      snapshot.Form.Role,
		Message:   snapshot.Message.Text,
		CreatedAt: d.clock.Now(),
	}

	if err := d.recorder.Push(ctx, attempt); err != nil {
		d.logger.Error("push registration attempt",
			slog.String("attempt_id", attempt.ID),
			slog.String("error", err.Error()),
		)
	}
}

// refreshAfter rounds up to whole seconds so the reload never lands before the timer.
func refreshAfter(now, deadline time.Time) int {
	seconds := int(math.Ceil(deadline.Sub(now).Seconds()))
	if seconds < 1 {
		return 1
	}

	return seconds
}
