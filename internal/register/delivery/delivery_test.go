package delivery

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SlavaShagalov/hotel-admin/internal/models"
	"github.com/SlavaShagalov/hotel-admin/internal/pkg/app"
	"github.com/SlavaShagalov/hotel-admin/internal/register/usecase"
)

type fakeAPI struct {
	mu    sync.Mutex
	calls int
	resp  models.RegistrationResponse
	err   error
}

func (f *fakeAPI) Register(context.Context, models.RegistrationForm) (models.RegistrationResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.resp, f.err
}

func (f *fakeAPI) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeAuthorizer bool

func (f fakeAuthorizer) IsAdmin(context.Context) bool { return bool(f) }

type fakeRecorder struct {
	mu       sync.Mutex
	attempts []models.Attempt
}

func (f *fakeRecorder) HealthCheck(context.Context) error { return nil }

func (f *fakeRecorder) Push(_ context.Context, attempt models.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, attempt)
	return nil
}

type fakeObserver struct {
	outcomes []models.Outcome
}

func (f *fakeObserver) ObserveSubmission(outcome models.Outcome) {
	f.outcomes = append(f.outcomes, outcome)
}

type serverError struct{ server string }

func (e serverError) Error() string         { return "request failed with status code 409" }
func (e serverError) ServerMessage() string { return e.server }

type env struct {
	app      *fiber.App
	api      *fakeAPI
	clock    *clockwork.FakeClock
	sessions *Sessions
	recorder *fakeRecorder
	observer *fakeObserver
}

func newEnv(t *testing.T, admin bool, api *fakeAPI) *env {
	t.Helper()
	return newEnvWith(t, fakeAuthorizer(admin), api)
}

func newEnvWith(t *testing.T, authorizer usecase.Authorizer, api *fakeAPI, middlewares ...fiber.Handler) *env {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	clock := clockwork.NewFakeClock()
	sessions := NewSessions(func(navigator usecase.Navigator) *usecase.FormController {
		return usecase.NewFormController(api, authorizer, navigator, clock, logger)
	}, clock, time.Minute, 100)
	t.Cleanup(sessions.Close)

	e := &env{
		app:      fiber.New(),
		api:      api,
		clock:    clock,
		sessions: sessions,
		recorder: &fakeRecorder{},
		observer: &fakeObserver{},
	}
	for _, mw := range middlewares {
		e.app.Use(mw)
	}
	New(sessions, e.recorder, e.observer, clock, logger).AddHandlers(e.app)

	return e
}

var csrfInput = regexp.MustCompile(`name="_csrf" value="([^"]*)"`)

// browser keeps cookies and the last rendered csrf token between requests.
type browser struct {
	env     *env
	cookies map[string]string
	token   string
	headers map[string]string
}

func (e *env) browser() *browser {
	return &browser{env: e, cookies: make(map[string]string), headers: make(map[string]string)}
}

func (b *browser) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()

	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	for name, value := range b.headers {
		req.Header.Set(name, value)
	}

	resp, err := b.env.app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	for _, cookie := range resp.Cookies() {
		if cookie.Value == "" {
			delete(b.cookies, cookie.Name)
			continue
		}
		b.cookies[cookie.Name] = cookie.Value
	}

	body := string(raw)
	if m := csrfInput.FindStringSubmatch(body); m != nil {
		b.token = m[1]
	}

	return resp, body
}

func (b *browser) open(t *testing.T) (*http.Response, string) {
	t.Helper()
	return b.do(t, httptest.NewRequest(http.MethodGet, pagePath, nil))
}

func (b *browser) submit(t *testing.T, values url.Values) (*http.Response, string) {
	t.Helper()

	form := url.Values{}
	for key, value := range values {
		form[key] = value
	}
	if b.token != "" {
		form.Set(csrfField, b.token)
	}

	req := httptest.NewRequest(http.MethodPost, pagePath, strings.NewReader(form.Encode()))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)

	return b.do(t, req)
}

func validValues() url.Values {
	return url.Values{
		"firstName":   {"Ada"},
		"lastName":    {"Lovelace"},
		"email":       {"ada@example.com"},
		"password":    {"secret"},
		"phoneNumber": {"+44 20 7946 0000"},
		"role":        {"ADMIN"},
	}
}

func (e *env) target(sid string) string {
	session, ok := e.sessions.Lookup(sid)
	if !ok {
		return ""
	}
	return session.Target()
}

func TestDelivery_Page(t *testing.T) {
	e := newEnv(t, true, &fakeAPI{})
	b := e.browser()

	resp, body := b.open(t)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")
	assert.NotEmpty(t, b.token)
	assert.Equal(t, b.token, b.cookies[CSRFCookie])

	last := -1
	for _, field := range []string{"firstName", "lastName", "email", "phoneNumber", "password", "role"} {
		idx := strings.Index(body, `name="`+field+`"`)
		require.Greater(t, idx, last, "field %s out of order", field)
		last = idx
	}

	assert.Contains(t, body, `<label for="phoneNumber">phone Number: </label>`)
	assert.Contains(t, body, `type="email" name="email"`)
	assert.Contains(t, body, `<button type="submit">Add Admin</button>`)
	assert.Contains(t, body, `<a href="/login">Login</a>`)
	assert.NotContains(t, body, "-message")
	assert.NotContains(t, body, "http-equiv")
}

func TestDelivery_PageStartsNoSession(t *testing.T) {
	e := newEnv(t, true, &fakeAPI{})

	for i := 0; i < 3; i++ {
		b := e.browser()
		b.open(t)
		assert.NotContains(t, b.cookies, SessionCookie)
	}

	assert.Zero(t, e.sessions.Len())
}

func TestDelivery_SubmitInvalid(t *testing.T) {
	e := newEnv(t, true, &fakeAPI{})
	b := e.browser()
	b.open(t)
	values := validValues()
	values.Set("email", "   ")

	resp, body := b.submit(t, values)

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `<p class="error-message">Please fill all fields</p>`)
	assert.Contains(t, body, `<meta http-equiv="refresh" content="5">`)
	assert.Zero(t, e.api.Calls())
	assert.Equal(t, []models.Outcome{models.OutcomeInvalid}, e.observer.outcomes)

	require.Len(t, e.recorder.attempts, 1)
	attempt := e.recorder.attempts[0]
	assert.Equal(t, models.OutcomeInvalid, attempt.Outcome)
	assert.Equal(t, "Please fill all fields", attempt.Message)
	assert.NotEmpty(t, attempt.ID)
}

func TestDelivery_SubmitUnauthorized(t *testing.T) {
	e := newEnv(t, false, &fakeAPI{})
	b := e.browser()
	b.open(t)

	_, body := b.submit(t, validValues())

	assert.Contains(t, body, `<p class="error-message">Anautorizedm Admin Page only</p>`)
	assert.Zero(t, e.api.Calls())
}

func TestDelivery_SubmitRegisteredThenNavigates(t *testing.T) {
	e := newEnv(t, true, &fakeAPI{resp: models.RegistrationResponse{StatusCode: 200}})
	b := e.browser()
	b.open(t)

	_, body := b.submit(t, validValues())
	sid := b.cookies[SessionCookie]
	require.NotEmpty(t, sid)

	assert.Contains(t, body, `<p class="success-message">Admin Registered successfully</p>`)
	assert.Contains(t, body, `<meta http-equiv="refresh" content="3">`)
	assert.Equal(t, 1, e.api.Calls())

	e.clock.Advance(usecase.DefaultNavigationDelay)
	require.Eventually(t, func() bool {
		return e.target(sid) == "/login"
	}, time.Second, time.Millisecond)

	resp, _ := b.open(t)

	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get(fiber.HeaderLocation))
	assert.Zero(t, e.sessions.Len())
	assert.NotContains(t, b.cookies, SessionCookie)
}

func TestDelivery_SubmitFailedShowsEscapedServerMessage(t *testing.T) {
	e := newEnv(t, true, &fakeAPI{err: serverError{server: `Email <b>already</b> exists`}})
	b := e.browser()
	b.open(t)

	_, body := b.submit(t, validValues())

	assert.Contains(t, body, `<p class="error-message">Email &lt;b&gt;already&lt;/b&gt; exists</p>`)
	assert.Equal(t, []models.Outcome{models.OutcomeFailed}, e.observer.outcomes)
}

func TestDelivery_PasswordNeverRenderedOrKept(t *testing.T) {
	e := newEnv(t, true, &fakeAPI{err: serverError{server: "Email already exists"}})
	b := e.browser()
	b.open(t)

	_, body := b.submit(t, validValues())

	assert.NotContains(t, body, `value="secret"`)
	assert.Contains(t, body, `name="password" value=""`)
	assert.Contains(t, body, `name="email" value="ada@example.com"`)

	session, ok := e.sessions.Lookup(b.cookies[SessionCookie])
	require.True(t, ok)
	assert.Empty(t, session.Controller.Snapshot().Form.Password)

	_, body = b.open(t)
	assert.NotContains(t, body, "secret")
}

func TestDelivery_MessageClearedOnReload(t *testing.T) {
	e := newEnv(t, true, &fakeAPI{})
	b := e.browser()
	b.open(t)

	b.submit(t, url.Values{})
	sid := b.cookies[SessionCookie]

	e.clock.Advance(usecase.DefaultMessageTTL)
	require.Eventually(t, func() bool {
		session, ok := e.sessions.Lookup(sid)
		return ok && !session.Controller.Snapshot().Message.Visible()
	}, time.Second, time.Millisecond)

	_, body := b.open(t)

	assert.NotContains(t, body, "error-message")
	assert.NotContains(t, body, "http-equiv")
}

func TestDelivery_SessionsExpire(t *testing.T) {
	e := newEnv(t, true, &fakeAPI{})
	b := e.browser()
	b.open(t)

	b.submit(t, url.Values{})
	first := b.cookies[SessionCookie]
	require.Equal(t, 1, e.sessions.Len())

	e.clock.Advance(2 * time.Minute)
	b.submit(t, url.Values{})

	assert.NotEqual(t, first, b.cookies[SessionCookie])
	assert.Equal(t, 1, e.sessions.Len())
}

func TestDelivery_SubmitWithoutCSRFTokenRejected(t *testing.T) {
	e := newEnv(t, true, &fakeAPI{resp: models.RegistrationResponse{StatusCode: 200}})
	b := e.browser()

	resp, body := b.submit(t, validValues())

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.JSONEq(t, `{"message":"request rejected: missing or invalid csrf token"}`, body)
	assert.Zero(t, e.api.Calls())
	assert.Zero(t, e.sessions.Len())
	assert.Empty(t, e.recorder.attempts)
}

func TestDelivery_SubmitWithForeignCSRFTokenRejected(t *testing.T) {
	e := newEnv(t, true, &fakeAPI{resp: models.RegistrationResponse{StatusCode: 200}})
	victim := e.browser()
	victim.open(t)

	attacker := e.browser()
	attacker.open(t)
	victim.token = attacker.token

	resp, _ := victim.submit(t, validValues())

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Zero(t, e.api.Calls())
}

func TestDelivery_CrossSiteSubmitWithAdminCookieRejected(t *testing.T) {
	const secret = "session-secret"
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "ADMIN"}).SignedString([]byte(secret))
	require.NoError(t, err)

	api := &fakeAPI{resp: models.RegistrationResponse{StatusCode: 200}}
	e := newEnvWith(t, app.SessionAuthorizer{}, api,
		app.NewAuth(app.NewTokenValidator(secret), slog.New(slog.DiscardHandler)))

	b := e.browser()
	b.cookies[app.TokenCookie] = token
	b.open(t)

	// a foreign page cannot read the rendered token
	b.token = ""
	b.headers[fiber.HeaderOrigin] = "https://evil.example"
	resp, _ := b.submit(t, validValues())

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	assert.Zero(t, api.Calls())
	assert.Zero(t, e.sessions.Len())
}

func TestDelivery_SameSiteSubmitWithAdminCookieRegisters(t *testing.T) {
	const secret = "session-secret"
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "ADMIN"}).SignedString([]byte(secret))
	require.NoError(t, err)

	api := &fakeAPI{resp: models.RegistrationResponse{StatusCode: 200}}
	e := newEnvWith(t, app.SessionAuthorizer{}, api,
		app.NewAuth(app.NewTokenValidator(secret), slog.New(slog.DiscardHandler)))

	b := e.browser()
	b.cookies[app.TokenCookie] = token
	b.open(t)

	_, body := b.submit(t, validValues())

	assert.Contains(t, body, "Admin Registered successfully")
	assert.Equal(t, 1, api.Calls())
}

func TestRefreshAfter(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 5, refreshAfter(now, now.Add(5*time.Second)))
	assert.Equal(t, 3, refreshAfter(now, now.Add(2100*time.Millisecond)))
	assert.Equal(t, 1, refreshAfter(now, now))
	assert.Equal(t, 1, refreshAfter(now, now.Add(-time.Second)))
}
