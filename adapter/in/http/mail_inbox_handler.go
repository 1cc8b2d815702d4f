package http

import (
	"github.com/Karan2916/Intellimail-2/core/domain"
	"github.com/Karan2916/Intellimail-2/core/port/in"
	"github.com/Karan2916/Intellimail-2/infra/middleware"
	"github.com/Karan2916/Intellimail-2/pkg/sanitize"

	"github.com/gofiber/fiber/v2"
)

type MailHandler struct {
	inboxService in.InboxService
}

func NewMailHandler(inboxService in.InboxService) *MailHandler {
	return &MailHandler{inboxService: inboxService}
}

// Register mounts the mailbox routes. middlewares must include
// middleware.BearerAuth.
func (h *MailHandler) Register(router fiber.Router, middlewares ...fiber.Handler) {
	with := func(handler fiber.Handler) []fiber.Handler {
		handlers := make([]fiber.Handler, 0, len(middlewares)+1)
		handlers = append(handlers, middlewares...)
		return append(handlers, handler)
	}
	router.Get("/inbox", with(h.Inbox)...)
	router.Post("/messages/send", with(h.Send)...)
	router.Get("/me", with(h.Me)...)
}

// Inbox returns the normalized first page of the inbox.
// Query: refresh=true skips the cache, sanitize=true strips active HTML.
func (h *MailHandler) Inbox(c *fiber.Ctx) error {
	token, err := middleware.AccessToken(c)
	if err != nil {
		return err
	}

	messages, err := h.inboxService.FetchInbox(c.UserContext(), token, in.FetchOptions{
		Refresh: c.QueryBool("refresh", false),
	})
	if err != nil {
		return err
	}

	if c.QueryBool("sanitize", false) {
		// The slice may be shared with concurrent callers of the same load.
		clean := make([]domain.NormalizedMessage, len(messages))
		for i, m := range messages {
			m.Body = sanitize.HTML(m.Body)
			clean[i] = m
		}
		messages = clean
	}

	return c.JSON(fiber.Map{
		"emails": messages,
		"count":  len(messages),
	})
}

func (h *MailHandler) Send(c *fiber.Ctx) error {
	token, err := middleware.AccessToken(c)
	if err != nil {
		return err
	}

	var req domain.OutgoingMail
	if err := parseBody(c, &req); err != nil {
		return err
	}

	sent, err := h.inboxService.SendMail(c.UserContext(), token, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sent)
}

func (h *MailHandler) Me(c *fiber.Ctx) error {
	token, err := middleware.AccessToken(c)
	if err != nil {
		return err
	}

	user, err := h.inboxService.UserInfo(c.UserContext(), token)
	if err != nil {
		return err
	}
	return c.JSON(user)
}
