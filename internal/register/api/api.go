package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker/v2"

	"github.com/SlavaShagalov/hotel-admin/internal/models"
	"github.com/SlavaShagalov/hotel-admin/internal/pkg/app"
)

const registerPath = "/api/auth/register"

// responseDTO is the body of every answer. The HTTP status is authoritative,
// the "status" field of the body only repeats it.
type responseDTO struct {
	Message string `json:"message"`
}

type API struct {
	addr    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[models.RegistrationResponse]
	logger  *slog.Logger
}

// New creates the registration API client. The breaker opens after maxFails
// consecutive failures; zero keeps the gobreaker default.
func New(addr string, client *http.Client, maxFails uint32, logger *slog.Logger) *API {
	settings := gobreaker.Settings{
		Name:         "registration-api",
		IsSuccessful: isSuccessful,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}
	if maxFails > 0 {
		settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFails
		}
	}

	return &API{
		addr:    addr,
		client:  client,
		breaker: gobreaker.NewCircuitBreaker[models.RegistrationResponse](settings),
		logger:  logger,
	}
}

func (a *API) Register(ctx context.Context, form models.RegistrationForm) (models.RegistrationResponse, error) {
	resp, err := a.breaker.Execute(func() (models.RegistrationResponse, error) {
		return a.register(ctx, form)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return models.RegistrationResponse{}, errors.Wrap(err, "registration service unavailable")
	}

	return resp, err
}

func (a *API) register(ctx context.Context, form models.RegistrationForm) (models.RegistrationResponse, error) {
	body, err := json.Marshal(form)
	if err != nil {
		return models.RegistrationResponse{}, errors.Wrap(err, "marshal registration form")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.addr+registerPath, bytes.NewReader(body))
	if err != nil {
		return models.RegistrationResponse{}, errors.Wrap(err, "create registration request")
	}
	req.Header.Set("Content-Type", "application/json")

	if err = app.AddAuth(ctx, req); err != nil {
		a.logger.Debug("registration request without bearer token", slog.String("reason", err.Error()))
	}

	a.logger.Debug("send registration request", slog.String("url", req.URL.String()))

	resp, err := a.client.Do(req)
	if err != nil {
		return models.RegistrationResponse{}, errors.Wrap(err, "send registration request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.RegistrationResponse{}, errors.Wrap(err, "read registration response")
	}

	var dto responseDTO
	if len(raw) > 0 {
		if err = json.Unmarshal(raw, &dto); err != nil {
			a.logger.Debug("registration response is not json", slog.Int("status", resp.StatusCode))
			dto = responseDTO{}
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return models.RegistrationResponse{}, &ResponseError{StatusCode: resp.StatusCode, Message: dto.Message}
	}

	return models.RegistrationResponse{StatusCode: resp.StatusCode, Message: dto.Message}, nil
}

// isSuccessful keeps client errors from tripping the breaker: the service answered.
func isSuccessful(err error) bool {
	if err == nil {
		return true
	}

	var respErr *ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode < http.StatusInternalServerError
}
