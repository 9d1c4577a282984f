package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/seu-repo/ambience/internal/observability/telemetry"
)

// Metrics records a request counter and a duration histogram per route.
// The route pattern is used as label, never the raw path.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		route := c.Route().Path
		telemetry.HTTPRequestsTotal.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

		return err
	}
}
