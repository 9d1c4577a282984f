package health

import (
	"github.com/gofiber/fiber/v2"
)

type FiberHandler struct {
	service *Service
}

func NewFiberHandler(service *Service) *FiberHandler {
	return &FiberHandler{service: service}
}

// RegisterRoutes mounts the probes plus their Kubernetes-style aliases.
func (h *FiberHandler) RegisterRoutes(app *fiber.App) {
	for _, path := range []string{"/health", "/healthz", "/live", "/livez"} {
		app.Get(path, h.Health)
	}
	for _, path := range []string{"/ready", "/readyz"} {
		app.Get(path, h.Ready)
	}
}

func (h *FiberHandler) Health(c *fiber.Ctx) error {
	return c.JSON(h.service.Health(c.UserContext()))
}

// Ready answers 503 while a required dependency is unhealthy.
func (h *FiberHandler) Ready(c *fiber.Ctx) error {
	resp := h.service.Ready(c.UserContext())
	if !resp.Ready {
		c.Status(fiber.StatusServiceUnavailable)
	}
	return c.JSON(resp)
}
