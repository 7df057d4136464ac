package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"vod-pipeline/internal/domain/dto"
	"vod-pipeline/internal/usecases"
)

type TitleHandler struct {
	service usecases.ContentService
}

func NewTitleHandler(service usecases.ContentService) *TitleHandler {
	return &TitleHandler{service: service}
}

// CreateTitle inserts a title plus its pending content and schedules
// the processing job. When the row is committed but the job could not
// be enqueued, the client gets a 502 and the created title id.
func (h *TitleHandler) CreateTitle(c *fiber.Ctx) error {
	var req dto.CreateTitleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid payload"})
	}

	titleID, err := h.service.CreateTitle(c.Context(), req)
	if err != nil {
		var dispatchErr *usecases.ErrDispatchFailed
		if errors.As(err, &dispatchErr) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"title_id": titleID,
				"error":    "title created but processing was not scheduled",
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"title_id": titleID})
}

func (h *TitleHandler) ListTitles(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", 20)
	search := c.Query("search")

	titles, total, err := h.service.ListTitles(c.Context(), page, perPage, search)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not list titles"})
	}

	return c.JSON(fiber.Map{
		"data":  titles,
		"total": total,
	})
}
