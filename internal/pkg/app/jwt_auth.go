package app

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/SlavaShagalov/hotel-admin/internal/models"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenValidator checks HS256 session tokens signed with the shared secret.
type TokenValidator struct {
	secret []byte
}

func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret)}
}

func (v *TokenValidator) ValidateToken(tokenString string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(ErrInvalidToken, err.Error())
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return token, nil
}

func JWTAuthMiddleware(validator *TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":             "unauthorized",
				"error_description": "Authorization header required",
			})
		}

		parsed, err := validator.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":             "invalid_token",
				"error_description": "Invalid or expired token",
			})
		}

		c.Locals("user", parsed)

		return c.Next()
	}
}

func AdminOnlyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := c.Locals("user").(*jwt.Token)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":             "unauthorized",
				"error_description": "Missing token",
			})
		}

		role, err := extractRole(token)
		if err != nil || !models.IsAdmin(role) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":             "insufficient_permissions",
				"error_description": "Admin role required",
			})
		}

		return c.Next()
	}
}
