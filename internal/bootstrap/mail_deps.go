package bootstrap

import (
	"context"
	"time"

	"github.com/Karan2916/Intellimail-2/adapter/out/provider"
	"github.com/Karan2916/Intellimail-2/config"
	"github.com/Karan2916/Intellimail-2/core/agent/llm"
	"github.com/Karan2916/Intellimail-2/core/port/out"
	"github.com/Karan2916/Intellimail-2/core/service/ai"
	"github.com/Karan2916/Intellimail-2/core/service/auth"
	"github.com/Karan2916/Intellimail-2/core/service/inbox"
	"github.com/Karan2916/Intellimail-2/core/service/message"
	"github.com/Karan2916/Intellimail-2/pkg/cache"
	"github.com/Karan2916/Intellimail-2/pkg/httputil"
	"github.com/Karan2916/Intellimail-2/pkg/logger"
)

const memoryStoreEntries = 10000

type Dependencies struct {
	Config *config.Config

	Store out.SessionStore

	// Providers
	GmailProvider *provider.GmailAdapter
	LLMClient     *llm.Client

	// Services
	InboxService *inbox.Service
	AIService    *ai.Service
	AuthService  *auth.Service
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, nil, err
	}

	// Session store: Redis when configured, in-process otherwise.
	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		cancel()
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, falling back to in-memory session store")
			deps.Store = cache.NewMemoryStore(memoryStoreEntries)
		} else {
			store := cache.NewRedisStore(client, "intellimail:")
			deps.Store = store
			cleanups = append(cleanups, func() {
				if err := store.Close(); err != nil {
					logger.WithError(err).Warn("Failed to close Redis")
				}
			})
			logger.Info("Redis session store connected")
		}
	} else {
		deps.Store = cache.NewMemoryStore(memoryStoreEntries)
		logger.Info("Using in-memory session store")
	}

	concurrency := cfg.InboxFetchConcurrency
	if concurrency <= 0 {
		concurrency = cfg.InboxPageSize
	}

	deps.GmailProvider = provider.NewGmailAdapter(provider.GmailConfig{
		Endpoint:   cfg.GmailAPIEndpoint,
		HTTPClient: httputil.NewClient(httputil.GmailClientConfig(concurrency, cfg.GmailTimeout())),
		Timeout:    cfg.GmailTimeout(),
	})

	deps.LLMClient = llm.NewClientWithConfig(llm.ClientConfig{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.LLMBaseURL,
		Model:          cfg.LLMModel,
		MaxTokens:      cfg.LLMMaxTokens,
		Temperature:    cfg.LLMTemperature,
		HTTPClient:     httputil.NewClient(httputil.LLMClientConfig(cfg.LLMTimeout())),
		MaxRetries:     cfg.LLMMaxRetries,
		RetryBaseDelay: time.Duration(cfg.LLMRetryBaseMS) * time.Millisecond,
		RetryMaxDelay:  time.Duration(cfg.LLMRetryMaxMS) * time.Millisecond,
	})

	deps.InboxService = inbox.NewService(
		deps.GmailProvider,
		deps.Store,
		message.NewNormalizer(loc),
		inbox.Config{
			PageSize:    cfg.InboxPageSize,
			Concurrency: concurrency,
			CacheTTL:    cfg.InboxCacheTTL(),
		},
	)
	deps.AIService = ai.NewService(deps.LLMClient)
	deps.AuthService = auth.NewService(auth.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	}, deps.Store, deps.GmailProvider)

	if cfg.GoogleClientID == "" {
		logger.Warn("GOOGLE_CLIENT_ID not set, server-side OAuth routes are disabled")
	}

	logger.Info("Dependencies initialized: model=%s page_size=%d concurrency=%d", deps.LLMClient.Model(), cfg.InboxPageSize, concurrency)
	return deps, cleanup, nil
}
