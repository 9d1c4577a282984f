package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/seu-repo/ambience/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/ambience/internal/observability/telemetry"
	"github.com/seu-repo/ambience/pkg/config"
)

func TestCircuitBreaker_OpensAfterServerErrors(t *testing.T) {
	// Arrange
	settings := circuitbreaker.DefaultSettings("test")
	settings.FailureThreshold = 2
	settings.Timeout = time.Minute

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Use(CircuitBreaker(settings, zap.NewNop()))
	calls := 0
	app.Get("/boom", func(c *fiber.Ctx) error {
		calls++
		return c.SendStatus(fiber.StatusInternalServerError)
	})

	// Act
	var codes []int
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		codes = append(codes, resp.StatusCode)
	}

	// Assert
	if codes[0] != 500 || codes[1] != 500 {
		t.Errorf("expected handler errors first, got %v", codes)
	}
	if codes[2] != fiber.StatusServiceUnavailable {
		t.Errorf("expected 503 once open, got %d", codes[2])
	}
	if calls != 2 {
		t.Errorf("handler should not run while open, ran %d times", calls)
	}
}

func TestCircuitBreaker_PassesClientErrors(t *testing.T) {
	settings := circuitbreaker.DefaultSettings("test")
	settings.FailureThreshold = 1

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Use(CircuitBreaker(settings, zap.NewNop()))
	app.Get("/bad", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	})

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/bad", nil))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	}
}

func TestCircuitBreaker_UnknownRoutesDoNotTrip(t *testing.T) {
	// Arrange
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	api := app.Group("/api/v1", CircuitBreaker(circuitbreaker.DefaultSettings("webhook"), zap.NewNop()))
	api.Post("/fulfillment", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	// Act
	for i := 0; i < 10; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/nope", nil))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	}
	resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/fulfillment", nil))

	// Assert
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected webhook to stay available, got %d", resp.StatusCode)
	}
}

func TestCircuitBreaker_ReturnedServerErrorsTrip(t *testing.T) {
	settings := circuitbreaker.DefaultSettings("test")
	settings.FailureThreshold = 1
	settings.Timeout = time.Minute

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Use(CircuitBreaker(settings, zap.NewNop()))
	app.Get("/down", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadGateway, "catalog down")
	})

	first, err := app.Test(httptest.NewRequest("GET", "/down", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	second, err := app.Test(httptest.NewRequest("GET", "/down", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if first.StatusCode != fiber.StatusBadGateway {
		t.Errorf("expected 502 from handler, got %d", first.StatusCode)
	}
	if second.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("expected 503 once open, got %d", second.StatusCode)
	}
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"FiberError", fiber.NewError(fiber.StatusNotFound, "missing"), fiber.StatusNotFound},
		{"PlainError", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestMetrics_LabelsByRoute(t *testing.T) {
	app := fiber.New()
	app.Use(Metrics())
	app.Get("/items/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusTeapot) })

	counter := telemetry.HTTPRequestsTotal.WithLabelValues("/items/:id", "GET", "418")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2"} {
		if _, err := app.Test(httptest.NewRequest("GET", "/items/"+id, nil)); err != nil {
			t.Fatalf("request failed: %v", err)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("expected 2 requests counted under the route pattern, got %v", got)
	}
}

func TestNewCORS_Preflight(t *testing.T) {
	app := fiber.New()
	app.Use(NewCORS(config.CORSConfig{AllowedOrigins: []string{"https://console.test"}}))
	app.Post("/api/v1/fulfillment", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	req := httptest.NewRequest("OPTIONS", "/api/v1/fulfillment", nil)
	req.Header.Set("Origin", "https://console.test")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://console.test" {
		t.Errorf("expected allowed origin echoed, got %q", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); got != defaultAllowMethods {
		t.Errorf("expected default methods, got %q", got)
	}
}
