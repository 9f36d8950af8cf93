package handlers

import (
	"log/slog"

	"brandpanel/internal/service"
	"github.com/gofiber/fiber/v2"
)

type DocumentHandler struct {
	s service.DocumentService
}

func NewDocumentHandler(service service.DocumentService) *DocumentHandler {
	return &DocumentHandler{s: service}
}

func (h *DocumentHandler) UploadDocument(c *fiber.Ctx) error {
	userID := GetUserID(c)
	brandID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid brand id",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file provided",
		})
	}

	docID, err := h.s.Upload(c.Context(), userID, int64(brandID), file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id": docID,
	})
}

func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	userID := GetUserID(c)
	brandID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid brand id",
		})
	}

	docs, err := h.s.List(c.Context(), userID, int64(brandID))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list documents",
		})
	}

	return c.Status(fiber.StatusOK).JSON(docs)
}

func (h *DocumentHandler) RemoveDocument(c *fiber.Ctx) error {
	userID := GetUserID(c)
	docID := c.QueryInt("id", 0)

	if err := h.s.Remove(c.Context(), userID, int64(docID)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Document removed",
	})
}
