package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/sla-analytics/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health  *handlers.HealthHandler
	Upload  *handlers.UploadHandler
	Reports *handlers.ReportsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	uploadGroup := app.Group("/upload")
	uploadGroup.Post("/tickets", cfg.Upload.UploadTickets)
	uploadGroup.Post("/sla", cfg.Upload.UploadSLA)

	reportsGroup := app.Group("/reports")
	reportsGroup.Get("/assignee_avg", cfg.Reports.AssigneeAverages)
	reportsGroup.Get("/product_avg", cfg.Reports.ProductAverages)
	reportsGroup.Get("/violations", cfg.Reports.Violations)
	reportsGroup.Get("/reopens", cfg.Reports.Reopens)
	reportsGroup.Get("/summary", cfg.Reports.Summary)
}
