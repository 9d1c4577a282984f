package main

import (
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/ambience/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/ambience/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/ambience/internal/ports"
	"github.com/seu-repo/ambience/internal/service/health"
	"github.com/seu-repo/ambience/pkg/config"
)

// newApp builds the Fiber application with middleware and routes.
func newApp(cfg *config.Config, skill ports.Assistant, healthService *health.Service, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ServerHeader:          cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		BodyLimit:             cfg.HTTP.BodyLimit,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(middleware.Metrics())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	}

	// Health Check Endpoints
	health.NewFiberHandler(healthService).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		metrics := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			metrics(c.Context())
			return nil
		})
	}

	// API v1 Routes
	v1 := app.Group("/api/v1")
	if cfg.CircuitBreaker.Enabled {
		v1.Use(middleware.CircuitBreaker(breakerSettings(cfg.CircuitBreaker, "webhook"), logger))
	}

	fulfillment := handlers.NewFulfillmentHandler(skill, logger)
	v1.Post("/fulfillment", fulfillment.Fulfill)

	return app
}
