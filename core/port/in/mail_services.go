package in

import (
	"context"

	"github.com/Karan2916/Intellimail-2/core/domain"
)

type InboxService interface {
	FetchInbox(ctx context.Context, token string, opts FetchOptions) ([]domain.NormalizedMessage, error)
	SendMail(ctx context.Context, token string, mail *domain.OutgoingMail) (*domain.SentMessage, error)
	UserInfo(ctx context.Context, token string) (*domain.UserInfo, error)
}

type FetchOptions struct {
	// Refresh bypasses the cached snapshot.
	Refresh bool
}

type AIService interface {
	GenerateEmail(ctx context.Context, prompt, tone string) (string, error)
	SummarizeText(ctx context.Context, text string) (string, error)
	SummarizeImage(ctx context.Context, imageBase64, mimeType string) (string, error)
	SearchEmails(ctx context.Context, query string, emails []domain.NormalizedMessage) (*SearchResult, error)
}

type SearchResult struct {
	Results []domain.NormalizedMessage `json:"results"`
	// Fallback is set when the model was unavailable and keyword matching was used.
	Fallback bool `json:"fallback"`
}

type AuthService interface {
	AuthURL(ctx context.Context) (string, error)
	Callback(ctx context.Context, code, state string) (*domain.Session, error)
}
