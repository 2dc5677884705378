package http

import (
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler) {
	// Health and metrics
	app.Get("/health", handler.HealthCheck)
	app.Get("/ready", handler.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Reference data
		api.Get("/about", handler.GetAbout)
		api.Get("/regions", handler.GetRegions)
		api.Get("/areas", handler.GetAreas)
		api.Get("/areas/nearest", handler.GetNearestArea)
		api.Get("/areas/geojson", handler.GetAreasGeoJSON)

		// Per-session dashboard state
		api.Get("/session", handler.GetSession)
		api.Put("/session/mode", handler.SetMode)
		api.Put("/session/area", handler.SelectArea)
		api.Post("/fetch", handler.Fetch)
		api.Get("/chart.png", handler.GetChart)

		api.Post("/admin/reload", handler.Reload)
	}
}
