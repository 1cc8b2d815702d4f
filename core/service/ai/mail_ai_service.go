// Package ai implements the generative features: drafting, summaries and semantic search.
package ai

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/Karan2916/Intellimail-2/core/domain"
	"github.com/Karan2916/Intellimail-2/core/port/in"
	"github.com/Karan2916/Intellimail-2/core/port/out"
	"github.com/Karan2916/Intellimail-2/pkg/apperr"
	"github.com/Karan2916/Intellimail-2/pkg/logger"
)

const (
	maxSummaryInput = 30000
	maxSearchEmails = 200
)

const imagePrompt = "Analyze this image. If it is a document or chart, summarize its key information. " +
	"If it is a picture, describe what is happening in detail."

const searchSystemPrompt = `You are a semantic search agent for an email client. Analyze the user's natural language query and find the matching emails in the provided JSON list.
Respond ONLY with a JSON object of the form {"ids": ["<id>", ...]} listing the IDs of the matching emails. Do not add any other text or explanation.
If no email matches, respond with {"ids": []}.`

type Service struct {
	llm out.LLMClient
}

func NewService(llm out.LLMClient) *Service {
	return &Service{llm: llm}
}

// GenerateEmail drafts an email body for prompt in the requested tone.
// Unknown tones are passed to the model as written.
func (s *Service) GenerateEmail(ctx context.Context, prompt, tone string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	tone = strings.TrimSpace(tone)
	if prompt == "" || tone == "" {
		return "", apperr.BadRequest("Prompt and tone are required.")
	}
	if known, ok := domain.ParseTone(tone); ok {
		tone = string(known)
	}

	systemPrompt := fmt.Sprintf(`You are an expert email assistant. Write an email based on the user's prompt.
The tone of the email should be %s.
Respond with only the email body content, without greetings or sign-offs unless the prompt asks for them.`, strings.ToLower(tone))

	content, err := s.llm.CompleteWithSystem(ctx, systemPrompt, prompt)
	if err != nil {
		return "", wrapAIError("generate email content", err)
	}
	return strings.TrimSpace(content), nil
}

func (s *Service) SummarizeText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperr.BadRequest("Text to summarize is required.")
	}

	prompt := fmt.Sprintf(`Summarize the following email thread into a few key bullet points.
Focus on action items, decisions, and important questions. Here is the text:

---

%s`, truncate(text, maxSummaryInput))

	summary, err := s.llm.Complete(ctx, prompt)
	if err != nil {
		return "", wrapAIError("summarize text", err)
	}
	return strings.TrimSpace(summary), nil
}

func (s *Service) SummarizeImage(ctx context.Context, imageBase64, mimeType string) (string, error) {
	imageBase64 = strings.TrimSpace(imageBase64)
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if imageBase64 == "" || mimeType == "" {
		return "", apperr.BadRequest("A base64-encoded image and its mimeType are required.")
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", apperr.InvalidInput("mimeType", "must be an image type")
	}
	// Clients sometimes send a full data URL instead of the bare payload.
	if i := strings.Index(imageBase64, ";base64,"); strings.HasPrefix(imageBase64, "data:") && i >= 0 {
		imageBase64 = imageBase64[i+len(";base64,"):]
	}

	summary, err := s.llm.DescribeImage(ctx, imagePrompt, imageBase64, mimeType)
	if err != nil {
		return "", wrapAIError("summarize the image", err)
	}
	return strings.TrimSpace(summary), nil
}

// SearchEmails asks the model which emails match query. Results keep the
// order of emails. Only the first 200 emails are sent to the model; the rest
// are keyword matched. If the model cannot be used, a keyword match over all
// emails is returned with Fallback set.
func (s *Service) SearchEmails(ctx context.Context, query string, emails []domain.NormalizedMessage) (*in.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" || emails == nil {
		return nil, apperr.BadRequest("Query and emails array are required.")
	}
	if len(emails) == 0 {
		return &in.SearchResult{Results: []domain.NormalizedMessage{}}, nil
	}

	ids, err := s.searchIDs(ctx, query, emails)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.WithError(err).Warn("ai search failed, using keyword match: query_len=%d", len(query))
		return &in.SearchResult{Results: keywordMatch(query, emails), Fallback: true}, nil
	}

	terms := keywordTerms(query)
	results := make([]domain.NormalizedMessage, 0, len(ids))
	for i, e := range emails {
		if (i < maxSearchEmails && ids[e.ID]) || (i >= maxSearchEmails && matchesTerms(e, terms)) {
			results = append(results, e)
		}
	}
	return &in.SearchResult{Results: results}, nil
}

func (s *Service) searchIDs(ctx context.Context, query string, emails []domain.NormalizedMessage) (map[string]bool, error) {
	candidates := make([]domain.SearchCandidate, 0, min(len(emails), maxSearchEmails))
	for i, e := range emails {
		if i == maxSearchEmails {
			break
		}
		candidates = append(candidates, domain.SearchCandidate{
			ID:      e.ID,
			From:    e.Sender,
			Subject: e.Subject,
			Snippet: e.Snippet,
		})
	}

	list, err := json.MarshalIndent(candidates, "", "  ")
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf("User Query: %q\n\nEmail List (JSON):\n%s", query, list)

	raw, err := s.llm.CompleteJSON(ctx, searchSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}
	return parseIDs(raw)
}

// parseIDs accepts {"ids": [...]} or a bare JSON array of ids.
func parseIDs(raw string) (map[string]bool, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var ids []string
	if raw == "" {
		return map[string]bool{}, nil
	}
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &ids); err != nil {
			return nil, fmt.Errorf("parse search ids: %w", err)
		}
	} else {
		var resp struct {
			IDs []string `json:"ids"`
		}
		if err := json.Unmarshal([]byte(raw), &resp); err != nil {
			return nil, fmt.Errorf("parse search ids: %w", err)
		}
		ids = resp.IDs
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// keywordMatch keeps emails whose subject, snippet or sender contain every query term.
func keywordMatch(query string, emails []domain.NormalizedMessage) []domain.NormalizedMessage {
	terms := keywordTerms(query)
	results := make([]domain.NormalizedMessage, 0)
	for _, e := range emails {
		if matchesTerms(e, terms) {
			results = append(results, e)
		}
	}
	return results
}

func keywordTerms(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

func matchesTerms(e domain.NormalizedMessage, terms []string) bool {
	haystack := strings.ToLower(e.Subject + " " + e.Snippet + " " + e.Sender)
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return true
}

func wrapAIError(operation string, err error) error {
	if apperr.IsAppError(err) {
		return err
	}
	return apperr.AIFailed(operation, err)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	for maxLen > 0 && !utf8.RuneStart(s[maxLen]) {
		maxLen--
	}
	return s[:maxLen] + "..."
}

var _ in.AIService = (*Service)(nil)
