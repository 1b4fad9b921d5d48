package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"FastNotes/internal/api"
	"FastNotes/internal/api/middleware"
	"FastNotes/internal/config"
	"FastNotes/internal/notes"
	"FastNotes/internal/storage"
	"FastNotes/internal/web"
)

// New composes the HTTP application: JSON API under /api, HTML pages under
// /notes, plus the root message and health check.
func New(cfg *config.Config, svc *notes.Service, flashes storage.FlashStorage, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          api.ErrorHandler(log),
		Immutable:             true,
		DisableStartupMessage: true,
	})

	app.Use(middleware.Logging(log.With().Str("component", "http").Logger()))
	app.Use(middleware.CORS(cfg.HTTP.CORSAllowedOrigins))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "Open /notes to use the web UI or /api for JSON API"})
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := svc.Ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	group := app.Group("/api", middleware.RateLimit(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst, log))
	api.NewHandler(svc, log).Register(group)

	web.NewHandler(svc, flashes, log).Register(app)

	return app
}
