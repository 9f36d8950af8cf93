package handlers

import (
	"log/slog"

	"brandpanel/internal/service"
	"github.com/gofiber/fiber/v2"
)

// TokenHandler exposes the shared Meta token to the panel so an operator can
// seed it initially and rotate it when Meta invalidates it.
type TokenHandler struct {
	s service.TokenService
}

func NewTokenHandler(service service.TokenService) *TokenHandler {
	return &TokenHandler{s: service}
}

func (h *TokenHandler) GetGlobalToken(c *fiber.Ctx) error {
	token := h.s.GetGlobalToken(c.Context())

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token":      token,
		"configured": token != "",
	})
}

func (h *TokenHandler) SetGlobalToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	if req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Token cannot be empty",
		})
	}

	if err := h.s.SetGlobalToken(c.Context(), req.Token); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to save token",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Token saved",
	})
}
