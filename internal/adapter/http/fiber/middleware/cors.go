package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	fibercors "github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/seu-repo/ambience/pkg/config"
)

// The webhook is called server-to-server; browsers only reach it through the
// simulator or test consoles, so the defaults stay narrow.
const (
	defaultAllowMethods  = "GET,POST,OPTIONS"
	defaultAllowHeaders  = "Origin,Content-Type,Accept,X-Request-ID"
	defaultExposeHeaders = "Content-Length,X-Request-ID"
	defaultMaxAge        = 86400
)

func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	return strings.Join(values, ",")
}

// NewCORS creates a CORS middleware from application config
func NewCORS(cfg config.CORSConfig) fiber.Handler {
	maxAge := defaultMaxAge
	if cfg.MaxAge > 0 {
		maxAge = cfg.MaxAge
	}

	return fibercors.New(fibercors.Config{
		AllowOrigins:     joinOr(cfg.AllowedOrigins, "*"),
		AllowMethods:     joinOr(cfg.AllowedMethods, defaultAllowMethods),
		AllowHeaders:     joinOr(cfg.AllowedHeaders, defaultAllowHeaders),
		ExposeHeaders:    joinOr(cfg.ExposeHeaders, defaultExposeHeaders),
		AllowCredentials: cfg.Credentials,
		MaxAge:           maxAge,
	})
}
