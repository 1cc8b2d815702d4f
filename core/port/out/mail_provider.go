package out

import (
	"context"

	"github.com/Karan2916/Intellimail-2/core/domain"
)

// MailProvider is the outbound port to the user's mailbox.
// token is the caller's OAuth access token.
type MailProvider interface {
	ListMessageIDs(ctx context.Context, token string, max int) ([]string, error)
	GetMessage(ctx context.Context, token, id string) (*domain.RawMessage, error)
	SendMessage(ctx context.Context, token string, mail *domain.OutgoingMail) (*domain.SentMessage, error)
	GetUserInfo(ctx context.Context, token string) (*domain.UserInfo, error)
}
