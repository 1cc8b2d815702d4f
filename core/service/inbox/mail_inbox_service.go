// Package inbox fetches and normalizes the most recent messages of a mailbox.
package inbox

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/Karan2916/Intellimail-2/core/domain"
	"github.com/Karan2916/Intellimail-2/core/port/in"
	"github.com/Karan2916/Intellimail-2/core/port/out"
	"github.com/Karan2916/Intellimail-2/core/service/message"
	"github.com/Karan2916/Intellimail-2/pkg/apperr"
	"github.com/Karan2916/Intellimail-2/pkg/logger"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultPageSize          = 20
	defaultPerMessageTimeout = 15 * time.Second
	cacheKeyPrefix           = "inbox:"
)

type Config struct {
	PageSize          int
	Concurrency       int
	PerMessageTimeout time.Duration
	CacheTTL          time.Duration
}

type Service struct {
	provider   out.MailProvider
	store      out.SessionStore
	normalizer *message.Normalizer
	cfg        Config
	group      singleflight.Group
}

// NewService builds the inbox service. store may be nil to disable caching.
func NewService(provider out.MailProvider, store out.SessionStore, normalizer *message.Normalizer, cfg Config) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = cfg.PageSize
	}
	if cfg.PerMessageTimeout <= 0 {
		cfg.PerMessageTimeout = defaultPerMessageTimeout
	}
	if normalizer == nil {
		normalizer = message.NewNormalizer(nil)
	}
	return &Service{
		provider:   provider,
		store:      store,
		normalizer: normalizer,
		cfg:        cfg,
	}
}

// FetchFailure records a message that was listed but could not be fetched.
type FetchFailure struct {
	ID  string
	Err error
}

// FetchReport separates delivered messages from per-item failures.
// Messages keep listing order.
type FetchReport struct {
	Messages []domain.NormalizedMessage
	Failed   []FetchFailure
}

// FetchInbox returns the most recent messages, normalized.
// Only a listing failure is returned as an error; messages that fail to
// fetch are logged and dropped.
func (s *Service) FetchInbox(ctx context.Context, token string, opts in.FetchOptions) ([]domain.NormalizedMessage, error) {
	if token == "" {
		return nil, apperr.Unauthorized("missing access token")
	}

	key := cacheKey(token)
	if !opts.Refresh && s.store != nil {
		var cached []domain.NormalizedMessage
		hit, err := s.store.GetJSON(ctx, key, &cached)
		if err != nil {
			logger.WithContext(ctx).WithError(err).Warn("inbox cache read failed")
		} else if hit {
			logger.WithContext(ctx).Debug("inbox served from cache (%d messages)", len(cached))
			return cached, nil
		}
	}

	// The shared load outlives any single caller; adapter and per-message
	// timeouts still bound it.
	loadCtx := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do(key, func() (any, error) {
		report, err := s.Load(loadCtx, token)
		if err != nil {
			return nil, err
		}
		return report.Messages, nil
	})
	if err != nil {
		return nil, err
	}
	messages := v.([]domain.NormalizedMessage)

	if s.store != nil && !shared && s.cfg.CacheTTL > 0 {
		if err := s.store.SetJSON(ctx, key, messages, s.cfg.CacheTTL); err != nil {
			logger.WithContext(ctx).WithError(err).Warn("inbox cache write failed")
		}
	}

	return messages, nil
}

// Load lists the newest message ids and fetches them concurrently.
func (s *Service) Load(ctx context.Context, token string) (*FetchReport, error) {
	start := time.Now()

	ids, err := s.provider.ListMessageIDs(ctx, token, s.cfg.PageSize)
	if err != nil {
		if apperr.GetHTTPStatus(err) == http.StatusUnauthorized {
			return nil, err
		}
		return nil, apperr.MailboxUnavailable(err)
	}
	if len(ids) == 0 {
		return &FetchReport{Messages: []domain.NormalizedMessage{}}, nil
	}

	raws, errs := s.fetchAll(ctx, token, ids)

	report := &FetchReport{Messages: make([]domain.NormalizedMessage, 0, len(ids))}
	for i, id := range ids {
		if errs[i] != nil {
			report.Failed = append(report.Failed, FetchFailure{ID: id, Err: errs[i]})
			logger.WithContext(ctx).WithError(errs[i]).WithField("message_id", id).Warn("dropping message that failed to fetch")
			continue
		}
		report.Messages = append(report.Messages, s.normalizer.Normalize(raws[i]))
	}

	logger.WithContext(ctx).WithDuration(time.Since(start)).WithFields(map[string]any{
		"listed":  len(ids),
		"fetched": len(report.Messages),
		"failed":  len(report.Failed),
	}).Info("inbox loaded")

	return report, nil
}

// fetchAll fetches every id; slot i of each result slice belongs to ids[i].
func (s *Service) fetchAll(ctx context.Context, token string, ids []string) ([]*domain.RawMessage, []error) {
	raws := make([]*domain.RawMessage, len(ids))
	errs := make([]error, len(ids))

	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)

	for i, id := range ids {
		g.Go(func() error {
			msgCtx, cancel := context.WithTimeout(ctx, s.cfg.PerMessageTimeout)
			defer cancel()

			raw, err := s.provider.GetMessage(msgCtx, token, id)
			switch {
			case err != nil:
				errs[i] = err
			case raw == nil:
				errs[i] = apperr.NotFound("message " + id)
			default:
				raws[i] = raw
			}
			return nil
		})
	}
	_ = g.Wait()

	return raws, errs
}

// SendMail sends an HTML message and invalidates the cached inbox.
func (s *Service) SendMail(ctx context.Context, token string, mail *domain.OutgoingMail) (*domain.SentMessage, error) {
	if token == "" {
		return nil, apperr.Unauthorized("missing access token")
	}
	if mail == nil || strings.TrimSpace(mail.To) == "" {
		return nil, apperr.MissingField("to")
	}
	if strings.TrimSpace(mail.Subject) == "" {
		return nil, apperr.MissingField("subject")
	}

	sent, err := s.provider.SendMessage(ctx, token, mail)
	if err != nil {
		return nil, err
	}

	if s.store != nil {
		if err := s.store.Delete(ctx, cacheKey(token)); err != nil {
			logger.WithContext(ctx).WithError(err).Warn("inbox cache invalidation failed")
		}
	}
	return sent, nil
}

func (s *Service) UserInfo(ctx context.Context, token string) (*domain.UserInfo, error) {
	if token == "" {
		return nil, apperr.Unauthorized("missing access token")
	}
	return s.provider.GetUserInfo(ctx, token)
}

// cacheKey never stores the raw token.
func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

var _ in.InboxService = (*Service)(nil)
