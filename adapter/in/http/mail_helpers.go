package http

import (
	"github.com/Karan2916/Intellimail-2/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// parseBody decodes the JSON request body into v.
func parseBody(c *fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return apperr.BadRequest("request body is required")
	}
	if err := c.BodyParser(v); err != nil {
		return apperr.BadRequest("invalid request body").WithError(err)
	}
	return nil
}
