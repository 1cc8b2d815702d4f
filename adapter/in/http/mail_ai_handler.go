package http

import (
	"github.com/Karan2916/Intellimail-2/core/domain"
	"github.com/Karan2916/Intellimail-2/core/port/in"

	"github.com/gofiber/fiber/v2"
)

type AIHandler struct {
	aiService in.AIService
}

func NewAIHandler(aiService in.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// Register mounts the AI routes. Extra handlers, such as a rate limiter,
// run before each route.
func (h *AIHandler) Register(router fiber.Router, middlewares ...fiber.Handler) {
	route := func(path string, handler fiber.Handler) {
		handlers := make([]fiber.Handler, 0, len(middlewares)+1)
		handlers = append(handlers, middlewares...)
		router.Post(path, append(handlers, handler)...)
	}
	route("/generate", h.Generate)
	route("/summarize-text", h.SummarizeText)
	route("/summarize-image", h.SummarizeImage)
	route("/search", h.Search)
}

type generateRequest struct {
	Prompt string `json:"prompt"`
	Tone   string `json:"tone"`
}

func (h *AIHandler) Generate(c *fiber.Ctx) error {
	var req generateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	content, err := h.aiService.GenerateEmail(c.UserContext(), req.Prompt, req.Tone)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"content": content})
}

type summarizeTextRequest struct {
	Text string `json:"text"`
}

func (h *AIHandler) SummarizeText(c *fiber.Ctx) error {
	var req summarizeTextRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	summary, err := h.aiService.SummarizeText(c.UserContext(), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"summary": summary})
}

type summarizeImageRequest struct {
	Image    string `json:"image"`
	MimeType string `json:"mimeType"`
}

func (h *AIHandler) SummarizeImage(c *fiber.Ctx) error {
	var req summarizeImageRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	summary, err := h.aiService.SummarizeImage(c.UserContext(), req.Image, req.MimeType)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"summary": summary})
}

type searchRequest struct {
	Query  string                     `json:"query"`
	Emails []domain.NormalizedMessage `json:"emails"`
}

func (h *AIHandler) Search(c *fiber.Ctx) error {
	var req searchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	result, err := h.aiService.SearchEmails(c.UserContext(), req.Query, req.Emails)
	if err != nil {
		return err
	}
	return c.JSON(result)
}
