package middleware

import (
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v2"
)

// TokenValidator checks a signed token and returns its claims.
type TokenValidator interface {
	ValidateToken(token string) (jwt.MapClaims, error)
}

// AuthRequired lets a request through only when it carries a bearer token
// that tokens accepts. Rejections are returned as 401 fiber errors and
// rendered by the app's ErrorHandler.
func AuthRequired(tokens TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing bearer token")
		}
		if _, err := tokens.ValidateToken(token); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}
		return c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
