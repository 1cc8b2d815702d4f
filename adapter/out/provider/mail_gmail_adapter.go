// Package provider implements mail provider adapters.
package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Karan2916/Intellimail-2/core/domain"
	"github.com/Karan2916/Intellimail-2/core/port/out"
	"github.com/Karan2916/Intellimail-2/pkg/apperr"
	"github.com/Karan2916/Intellimail-2/pkg/logger"
	"github.com/Karan2916/Intellimail-2/pkg/resilience"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const (
	gmailUser           = "me"
	defaultGmailTimeout = 30 * time.Second
)

// GmailAdapter implements out.MailProvider on the Gmail REST API using the
// caller's access token.
type GmailAdapter struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	breaker    *resilience.Breaker
}

// GmailConfig holds Gmail configuration.
type GmailConfig struct {
	// Endpoint overrides the Google API root, e.g. for a local stub.
	Endpoint   string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewGmailAdapter creates a new Gmail adapter.
func NewGmailAdapter(cfg GmailConfig) *GmailAdapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGmailTimeout
	}
	return &GmailAdapter{
		endpoint:   cfg.Endpoint,
		httpClient: cfg.HTTPClient,
		timeout:    timeout,
		breaker:    resilience.NewBreaker("gmail-api", tripsBreaker),
	}
}

// ListMessageIDs returns up to max ids of the newest messages.
func (a *GmailAdapter) ListMessageIDs(ctx context.Context, token string, max int) ([]string, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	svc, err := a.gmailService(ctx, token)
	if err != nil {
		return nil, err
	}

	var resp *gmail.ListMessagesResponse
	cbErr := a.breaker.Execute("ListMessages", func() error {
		var apiErr error
		resp, apiErr = svc.Users.Messages.List(gmailUser).MaxResults(int64(max)).Context(ctx).Do()
		return apiErr
	})
	if cbErr != nil {
		return nil, a.wrapError(cbErr, "failed to list messages")
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		if m != nil && m.Id != "" {
			ids = append(ids, m.Id)
		}
	}
	return ids, nil
}

// GetMessage fetches one message in full format. Failures are reported per
// message and never count against the circuit breaker.
func (a *GmailAdapter) GetMessage(ctx context.Context, token, id string) (*domain.RawMessage, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	svc, err := a.gmailService(ctx, token)
	if err != nil {
		return nil, err
	}

	msg, err := svc.Users.Messages.Get(gmailUser, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, a.wrapError(err, "failed to get message")
	}

	return convertMessage(msg), nil
}

// SendMessage sends an HTML message.
func (a *GmailAdapter) SendMessage(ctx context.Context, token string, mail *domain.OutgoingMail) (*domain.SentMessage, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	svc, err := a.gmailService(ctx, token)
	if err != nil {
		return nil, err
	}

	gmailMsg := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(buildRawMessage(mail))),
	}

	var sent *gmail.Message
	cbErr := a.breaker.Execute("Send", func() error {
		var apiErr error
		sent, apiErr = svc.Users.Messages.Send(gmailUser, gmailMsg).Context(ctx).Do()
		return apiErr
	})
	if cbErr != nil {
		return nil, a.wrapError(cbErr, "failed to send message")
	}

	logger.WithContext(ctx).WithField("message_id", sent.Id).Info("message sent")
	return &domain.SentMessage{ID: sent.Id, ThreadID: sent.ThreadId}, nil
}

// GetUserInfo returns the Google profile bound to token.
func (a *GmailAdapter) GetUserInfo(ctx context.Context, token string) (*domain.UserInfo, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	opts, err := a.clientOptions(ctx, token)
	if err != nil {
		return nil, err
	}
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return nil, apperr.InternalWithError(err)
	}

	var info *oauth2api.Userinfo
	cbErr := a.breaker.Execute("UserInfo", func() error {
		var apiErr error
		info, apiErr = svc.Userinfo.Get().Context(ctx).Do()
		return apiErr
	})
	if cbErr != nil {
		return nil, a.wrapError(cbErr, "failed to get user info")
	}

	return &domain.UserInfo{Email: info.Email, Name: info.Name, Picture: info.Picture}, nil
}

// CircuitState returns the breaker state for health reporting.
func (a *GmailAdapter) CircuitState() string {
	return a.breaker.State()
}

// =============================================================================
// Internal Helpers
// =============================================================================

func (a *GmailAdapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

func (a *GmailAdapter) clientOptions(ctx context.Context, token string) ([]option.ClientOption, error) {
	if token == "" {
		return nil, apperr.Unauthorized("missing access token")
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	base := ctx
	if a.httpClient != nil {
		base = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	}

	opts := []option.ClientOption{option.WithHTTPClient(oauth2.NewClient(base, src))}
	if a.endpoint != "" {
		opts = append(opts, option.WithEndpoint(a.endpoint))
	}
	return opts, nil
}

func (a *GmailAdapter) gmailService(ctx context.Context, token string) (*gmail.Service, error) {
	opts, err := a.clientOptions(ctx, token)
	if err != nil {
		return nil, err
	}
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, apperr.InternalWithError(err)
	}
	return svc, nil
}

// tripsBreaker: server-side failures count against the breaker, client errors
// and cancellations do not.
func tripsBreaker(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 400, 401, 403, 404:
			return false
		}
	}
	return true
}

func (a *GmailAdapter) wrapError(err error, defaultMsg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, resilience.ErrCircuitOpen) {
		return apperr.Wrap(err, apperr.CodeExternalError, "gmail is temporarily unavailable", http.StatusServiceUnavailable)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Timeout(defaultMsg).WithError(err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401:
			return apperr.InvalidToken("access token expired or invalid").WithError(err)
		case 403:
			if strings.Contains(apiErr.Message, "Rate Limit") {
				return apperr.Wrap(err, apperr.CodeRateLimited, "gmail rate limit exceeded", http.StatusTooManyRequests)
			}
			return apperr.Forbidden("access to the mailbox was denied").WithError(err)
		case 404:
			return apperr.NotFound("message").WithError(err)
		case 429:
			return apperr.Wrap(err, apperr.CodeRateLimited, "gmail rate limit exceeded", http.StatusTooManyRequests)
		}
	}

	return apperr.ExternalError("gmail", fmt.Errorf("%s: %w", defaultMsg, err))
}

func convertMessage(msg *gmail.Message) *domain.RawMessage {
	if msg == nil {
		return nil
	}
	raw := &domain.RawMessage{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		LabelIDs: msg.LabelIds,
		Snippet:  msg.Snippet,
		Payload:  convertPart(msg.Payload),
	}
	if msg.InternalDate != 0 {
		raw.InternalDate = strconv.FormatInt(msg.InternalDate, 10)
	}
	return raw
}

func convertPart(p *gmail.MessagePart) *domain.MimePart {
	if p == nil {
		return nil
	}
	part := &domain.MimePart{
		PartID:   p.PartId,
		MimeType: p.MimeType,
		Filename: p.Filename,
	}
	for _, h := range p.Headers {
		if h != nil {
			part.Headers = append(part.Headers, domain.Header{Name: h.Name, Value: h.Value})
		}
	}
	if p.Body != nil {
		part.Body = &domain.PartBody{
			AttachmentID: p.Body.AttachmentId,
			Data:         p.Body.Data,
			Size:         p.Body.Size,
		}
	}
	for _, child := range p.Parts {
		if c := convertPart(child); c != nil {
			part.Parts = append(part.Parts, c)
		}
	}
	return part
}

var headerSanitizer = strings.NewReplacer("\r", "", "\n", "")

// buildRawMessage renders an RFC 822 HTML message.
func buildRawMessage(mail *domain.OutgoingMail) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("To: %s\r\n", headerSanitizer.Replace(mail.To)))
	if mail.From != "" {
		buf.WriteString(fmt.Sprintf("From: %s\r\n", headerSanitizer.Replace(mail.From)))
	}
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", headerSanitizer.Replace(mail.Subject))))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(mail.Body)

	return buf.String()
}

var _ out.MailProvider = (*GmailAdapter)(nil)
