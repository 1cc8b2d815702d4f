package middleware

import (
	"strings"

	"github.com/Karan2916/Intellimail-2/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

const accessTokenKey = "access_token"

// BearerAuth requires a Google access token in the Authorization header.
// The token is not validated here; Gmail rejects bad tokens with 401.
func BearerAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return apperr.Unauthorized("missing authorization")
		}

		c.Locals(accessTokenKey, parts[1])
		return c.Next()
	}
}

// AccessToken returns the token stored by BearerAuth.
func AccessToken(c *fiber.Ctx) (string, error) {
	token, ok := c.Locals(accessTokenKey).(string)
	if !ok || token == "" {
		return "", apperr.ErrUnauthorized
	}
	return token, nil
}
