package http

import (
	"context"
	"time"

	"github.com/Karan2916/Intellimail-2/core/port/out"
	"github.com/Karan2916/Intellimail-2/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// BreakerState reports the state of an upstream circuit breaker.
type BreakerState interface {
	CircuitState() string
}

type HealthHandler struct {
	store   out.SessionStore
	gmail   BreakerState
	latency *metrics.Registry
}

func NewHealthHandler(store out.SessionStore) *HealthHandler {
	return &HealthHandler{store: store}
}

func NewHealthHandlerWithDeps(store out.SessionStore, gmail BreakerState, latency *metrics.Registry) *HealthHandler {
	return &HealthHandler{
		store:   store,
		gmail:   gmail,
		latency: latency,
	}
}

func (h *HealthHandler) Register(router fiber.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
	router.Get("/metrics", h.Metrics)
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"message": "Server is running",
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status, statusCode := "ready", fiber.StatusOK

	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			checks["session_store"] = "unhealthy: " + err.Error()
			status, statusCode = "not ready", fiber.StatusServiceUnavailable
		} else {
			checks["session_store"] = "healthy"
		}
	} else {
		checks["session_store"] = "not configured"
	}

	if h.gmail != nil {
		checks["gmail_circuit"] = h.gmail.CircuitState()
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Metrics returns latency percentiles per route since startup.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	routes := map[string]metrics.Stats{}
	if h.latency != nil {
		routes = h.latency.Snapshot()
	}
	return c.JSON(fiber.Map{
		"routes":    routes,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
