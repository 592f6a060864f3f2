package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/SlavaShagalov/hotel-admin/internal/models"
)

type ctxKey string

const (
	bearerKey ctxKey = "bearer"
	roleKey   ctxKey = "role"
)

// TokenCookie holds the session token issued by the login page.
const TokenCookie = "token"

// NewAuth creates the session middleware. Requests without a valid token stay anonymous,
// the admin check happens where it is needed.
func NewAuth(validator *TokenValidator, logger *slog.Logger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token := bearerToken(ctx)
		if token == "" {
			return ctx.Next()
		}

		parsed, err := validator.ValidateToken(token)
		if err != nil {
			logger.Debug("ignore session token", slog.String("reason", err.Error()))
			return ctx.Next()
		}

		role, err := extractRole(parsed)
		if err != nil {
			logger.Debug("ignore session token", slog.String("reason", err.Error()))
			return ctx.Next()
		}

		ctx.SetUserContext(WithSession(ctx.UserContext(), token, role))

		return ctx.Next()
	}
}

func WithSession(ctx context.Context, token, role string) context.Context {
	ctx = context.WithValue(ctx, bearerKey, token)
	return context.WithValue(ctx, roleKey, role)
}

func SessionRole(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}

func AddAuth(ctx context.Context, req *http.Request) error {
	ctxToken := ctx.Value(bearerKey)
	if ctxToken == nil {
		return errors.New("missing bearer token")
	}

	token, ok := ctxToken.(string)
	if !ok {
		return fmt.Errorf("invalid type of bearer token %v", ctxToken)
	}

	req.Header.Set("Authorization", "Bearer "+token)

	return nil
}

// SessionAuthorizer answers the admin question from the session stored in the request context.
type SessionAuthorizer struct{}

func (SessionAuthorizer) IsAdmin(ctx context.Context) bool {
	return models.IsAdmin(SessionRole(ctx))
}

func bearerToken(ctx *fiber.Ctx) string {
	header := ctx.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	return ctx.Cookies(TokenCookie)
}

func extractRole(token *jwt.Token) (string, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid type of token claims")
	}

	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("missing 'role' in claims")
	}

	return role, nil
}
