package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Dashboard *DashboardHandler
	Screening *ScreeningHandler
	History   *HistoryHandler
}

func RegisterRoutes(app *fiber.App, h Handlers) {
	app.Get("/", h.Dashboard.HandleIndex)
	app.Post("/screen", h.Dashboard.HandleScreen)

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Get("/roles", h.Screening.HandleRoles)
	api.Post("/screenings", h.Screening.HandleCreate)
	api.Get("/screenings/:id", h.Screening.HandleGet)
	api.Get("/screenings/:id/export", h.Screening.HandleExport)

	api.Get("/history", h.History.HandleList)
	api.Get("/history/:id", h.History.HandleGet)
	api.Get("/candidates/search", h.History.HandleSearch)
}
