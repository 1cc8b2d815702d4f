package http

import (
	"github.com/Karan2916/Intellimail-2/core/port/in"
	"github.com/Karan2916/Intellimail-2/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService in.AuthService
}

func NewAuthHandler(authService in.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(router fiber.Router) {
	auth := router.Group("/auth/google")
	auth.Get("/url", h.AuthURL)
	auth.Get("/callback", h.Callback)
}

func (h *AuthHandler) AuthURL(c *fiber.Ctx) error {
	url, err := h.authService.AuthURL(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"url": url})
}

// Callback finishes the consent flow and returns the session to the client.
func (h *AuthHandler) Callback(c *fiber.Ctx) error {
	if reason := c.Query("error"); reason != "" {
		return apperr.Forbidden("google sign-in was not completed").WithDetail("reason", reason)
	}

	session, err := h.authService.Callback(c.UserContext(), c.Query("code"), c.Query("state"))
	if err != nil {
		return err
	}
	return c.JSON(session)
}
