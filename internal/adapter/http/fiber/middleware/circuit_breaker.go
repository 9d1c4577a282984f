package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/ambience/internal/infrastructure/circuitbreaker"
)

var errServerResponse = errors.New("server error response")

// CircuitBreaker sheds webhook traffic with 503 while the downstream turn
// pipeline keeps failing with server errors. Client errors, unknown routes
// included, pass through without counting against the breaker.
func CircuitBreaker(settings circuitbreaker.Settings, log *zap.Logger) fiber.Handler {
	cb := circuitbreaker.New(settings, log)

	return func(c *fiber.Ctx) error {
		var handlerErr error
		_, err := cb.Execute(func() (interface{}, error) {
			handlerErr = c.Next()
			if isServerError(handlerErr, c.Response().StatusCode()) {
				return nil, errServerResponse
			}
			return nil, nil
		})

		if circuitbreaker.IsCircuitOpen(err) {
			log.Warn("Rejecting request, circuit open", zap.String("path", c.Path()))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Service temporarily unavailable",
			})
		}

		return handlerErr
	}
}

// isServerError reports whether the handler outcome is a 5xx. Errors that are
// not *fiber.Error end up as 500 in the error handler.
func isServerError(err error, status int) bool {
	if err == nil {
		return status >= fiber.StatusInternalServerError
	}
	var e *fiber.Error
	if errors.As(err, &e) {
		return e.Code >= fiber.StatusInternalServerError
	}
	return true
}
