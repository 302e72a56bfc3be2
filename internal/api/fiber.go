// Package api builds the Fiber application serving REST, GraphQL and metrics.
package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/ortelius/media-provisioner/internal/services"
	"github.com/ortelius/media-provisioner/restapi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewFiberApp creates and configures a Fiber app with REST, GraphQL and metrics routes
func NewFiberApp(deps restapi.Dependencies, metrics *services.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "media-provisioner API v1.0",
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Minute,
	})

	// Middleware
	app.Use(fiberrecover.New())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(logger.New())

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	if metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	}

	restapi.SetupRoutes(app, deps)

	return app
}
