// Package router wires the HTTP intake routes and global middlewares.
package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/logtide/logtide/internal/handlers"
	"github.com/logtide/logtide/internal/logging"
	"github.com/logtide/logtide/internal/sink"
)

// New builds the fiber application serving the event intake API
func New(logger *logging.Logger, s *sink.Sink) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	h := handlers.New(logger, s)

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger))

	app.Get("/health", h.Health)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/v1")
	v1.Post("/events", h.Ingest)
	v1.Get("/stats", h.Stats)

	app.Use(h.NotFound)
	return app
}
