package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/SlavaShagalov/hotel-admin/internal/models"
)

const (
	ValidationMessage   = "Please fill all fields"
	UnauthorizedMessage = "Anautorizedm Admin Page only"
	SuccessMessage      = "Admin Registered successfully"

	unexpectedStatusMessage = "Unexpected response status: %d"

	LoginPath = "/login"

	DefaultMessageTTL      = 5 * time.Second
	DefaultNavigationDelay = 3 * time.Second
)

type State int

const (
	StateIdle State = iota
	StateValidating
	StateAuthorizing
	StateSubmitting
	StateRejected
	StateFailed
	StateSucceeded
	StateNavigatedAway
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateAuthorizing:
		return "authorizing"
	case StateSubmitting:
		return "submitting"
	case StateRejected:
		return "rejected"
	case StateFailed:
		return "failed"
	case StateSucceeded:
		return "succeeded"
	case StateNavigatedAway:
		return "navigated_away"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var validate = validator.New()

type Option func(c *FormController)

func WithMessageTTL(ttl time.Duration) Option {
	return func(c *FormController) {
		c.messageTTL = ttl
	}
}

func WithNavigationDelay(delay time.Duration) Option {
	return func(c *FormController) {
		c.navigationDelay = delay
	}
}

// Snapshot is a consistent copy of the controller state taken under one lock.
// Deadline is zero when no timer is pending.
type Snapshot struct {
	Form       models.RegistrationForm
	Message    models.StatusMessage
	State      State
	Submitting bool
	Deadline   time.Time
}

// FormController owns the state of one rendered admin registration form.
type FormController struct {
	api        RegistrationAPI
	authorizer Authorizer
	navigator  Navigator
	clock      clockwork.Clock
	logger     *slog.Logger

	messageTTL      time.Duration
	navigationDelay time.Duration

	mu       sync.Mutex
	form     models.RegistrationForm
	message  models.StatusMessage
	state    State
	inFlight bool
	closed   bool

	// messageSeq identifies the current message; a clear timer only clears the message it was armed for.
	messageSeq uint64
	clearTimer clockwork.Timer
	clearAt    time.Time
	navTimer   clockwork.Timer
	navAt      time.Time
}

func NewFormController(
	api RegistrationAPI,
	authorizer Authorizer,
	navigator Navigator,
	clock clockwork.Clock,
	logger *slog.Logger,
	opts ...Option,
) *FormController {
	c := &FormController{
		api:             api,
		authorizer:      authorizer,
		navigator:       navigator,
		clock:           clock,
		logger:          logger,
		messageTTL:      DefaultMessageTTL,
		navigationDelay: DefaultNavigationDelay,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// UpdateField overwrites exactly one field. Values are not validated until Submit.
func (c *FormController) UpdateField(field models.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	if !c.form.Set(field, value) {
		return errors.Wrapf(ErrUnknownField, "field %q", field)
	}

	return nil
}

// Submit runs validation, the admin check and the registration call.
// Problems never surface as errors, only as the status message.
func (c *FormController) Submit(ctx context.Context) models.Outcome {
	form, ok := c.begin()
	if !ok {
		c.logger.Debug("registration submit ignored")
		return models.OutcomeIgnored
	}
	defer c.finish()

	if err := validate.Struct(form.Trimmed()); err != nil {
		c.logger.Debug("registration form rejected", slog.String("reason", err.Error()))
		c.fail(StateRejected, ValidationMessage)
		return models.OutcomeInvalid
	}

	c.setState(StateAuthorizing)
	if !c.authorizer.IsAdmin(ctx) {
		c.logger.Warn("registration attempt without admin session")
		c.fail(StateRejected, UnauthorizedMessage)
		return models.OutcomeUnauthorized
	}

	c.setState(StateSubmitting)
	resp, err := c.api.Register(ctx, form)
	if err != nil {
		c.logger.Error("register admin", slog.String("error", err.Error()))
		c.fail(StateFailed, errorMessage(err))
		return models.OutcomeFailed
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("register admin: unexpected response",
			slog.Int("status", resp.StatusCode),
			slog.String("message", resp.Message),
		)
		c.fail(StateFailed, fmt.Sprintf(unexpectedStatusMessage, resp.StatusCode))
		return models.OutcomeFailed
	}

	c.logger.Info("admin registered", slog.String("email", form.Email))
	c.succeed()

	return models.OutcomeRegistered
}

func (c *FormController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	deadline := c.clearAt
	if !c.navAt.IsZero() && (deadline.IsZero() || c.navAt.Before(deadline)) {
		deadline = c.navAt
	}

	return Snapshot{
		Form:       c.form,
		Message:    c.message,
		State:      c.state,
		Submitting: c.inFlight,
		Deadline:   deadline,
	}
}

// Close unmounts the controller: pending timers are cancelled and later calls become no-ops.
func (c *FormController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	c.stopClearLocked()
	if c.navTimer != nil {
		c.navTimer.Stop()
		c.navTimer = nil
		c.navAt = time.Time{}
	}
}

func (c *FormController) begin() (models.RegistrationForm, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.inFlight || c.state == StateSucceeded || c.state == StateNavigatedAway {
		return models.RegistrationForm{}, false
	}

	c.inFlight = true
	c.state = StateValidating

	return c.form, true
}

func (c *FormController) finish() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

func (c *FormController) setState(state State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.state = state
	}
}

func (c *FormController) fail(state State, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.state = state
	seq := c.showLocked(models.StatusMessage{Kind: models.MessageError, Text: text})
	c.clearAt = c.clock.Now().Add(c.messageTTL)
	c.clearTimer = c.clock.AfterFunc(c.messageTTL, func() {
		c.clearMessage(seq)
	})
}

func (c *FormController) succeed() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.state = StateSucceeded
	c.showLocked(models.StatusMessage{Kind: models.MessageSuccess, Text: SuccessMessage})
	c.navAt = c.clock.Now().Add(c.navigationDelay)
	c.navTimer = c.clock.AfterFunc(c.navigationDelay, c.navigate)
}

// showLocked replaces the message and disarms the clear timer of the previous one.
func (c *FormController) showLocked(msg models.StatusMessage) uint64 {
	c.stopClearLocked()
	c.messageSeq++
	c.message = msg

	return c.messageSeq
}

func (c *FormController) stopClearLocked() {
	if c.clearTimer != nil {
		c.clearTimer.Stop()
		c.clearTimer = nil
	}
	c.clearAt = time.Time{}
}

func (c *FormController) clearMessage(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || seq != c.messageSeq {
		return
	}

	c.message = models.StatusMessage{}
	c.clearTimer = nil
	c.clearAt = time.Time{}

	if c.state == StateRejected || c.state == StateFailed {
		c.state = StateIdle
	}
}

func (c *FormController) navigate() {
	c.mu.Lock()
	if c.closed || c.state != StateSucceeded {
		c.mu.Unlock()
		return
	}
	c.state = StateNavigatedAway
	c.navTimer = nil
	c.navAt = time.Time{}
	c.mu.Unlock()

	c.navigator.Navigate(LoginPath)
}

// serverMessenger is implemented by API errors that carry a message sent by the server.
type serverMessenger interface {
	ServerMessage() string
}

func errorMessage(err error) string {
	var sm serverMessenger
	if errors.As(err, &sm) && sm.ServerMessage() != "" {
		return sm.ServerMessage()
	}

	return err.Error()
}
