package middleware

import (
	"time"

	"github.com/Karan2916/Intellimail-2/pkg/metrics"

	"github.com/gofiber/fiber/v2"
)

// Latency records handler latency per matched route.
func Latency(registry *metrics.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		registry.Record(c.Method()+" "+c.Route().Path, time.Since(start))
		return err
	}
}
