package bootstrap

import (
	"strings"
	"time"

	"github.com/Karan2916/Intellimail-2/adapter/in/http"
	"github.com/Karan2916/Intellimail-2/config"
	"github.com/Karan2916/Intellimail-2/infra/middleware"
	"github.com/Karan2916/Intellimail-2/pkg/logger"
	"github.com/Karan2916/Intellimail-2/pkg/metrics"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// bodyLimit leaves room for base64 encoded images.
const bodyLimit = 10 * 1024 * 1024

func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := NewApp(cfg, deps)

	logger.Info("API server initialized successfully")
	return app, cleanup, nil
}

// NewApp builds the fiber application and its routes from deps.
func NewApp(cfg *config.Config, deps *Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),

		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit:    bodyLimit,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,

		ServerHeader:       "",
		DisableDefaultDate: true,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())

	latency := metrics.NewRegistry(metrics.DefaultWindow)
	app.Use(middleware.Latency(latency))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	if allowOrigins == "" {
		if cfg.IsProduction() {
			logger.Warn("ALLOWED_ORIGINS not set, cross-origin requests are blocked")
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:5173"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders: "X-Request-ID,X-RateLimit-Limit,X-RateLimit-Remaining,X-RateLimit-Reset,Retry-After",
		MaxAge:        86400,
	}))

	api := app.Group("/api")

	http.NewHealthHandlerWithDeps(deps.Store, deps.GmailProvider, latency).Register(api)
	http.NewAuthHandler(deps.AuthService).Register(api)
	http.NewAIHandler(deps.AIService).Register(api, middleware.RateLimit(cfg.AIRateLimit, time.Minute))
	http.NewMailHandler(deps.InboxService).Register(api, middleware.BearerAuth())

	return app
}
