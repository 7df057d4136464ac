package routers

import (
	"github.com/gofiber/fiber/v2"

	"vod-pipeline/internal/delivery/http/handlers"
	"vod-pipeline/internal/usecases"
)

func SetupTitleRoutes(app *fiber.App, service usecases.ContentService) {
	handler := handlers.NewTitleHandler(service)

	app.Post("/titles", handler.CreateTitle)
	app.Get("/titles", handler.ListTitles)
}
