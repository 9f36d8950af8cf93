package handlers

import (
	"log/slog"

	"brandpanel/internal/models"
	"brandpanel/internal/service"
	"brandpanel/internal/transfer"
	"github.com/gofiber/fiber/v2"
)

type BrandHandler struct {
	s service.BrandService
}

func NewBrandHandler(service service.BrandService) *BrandHandler {
	return &BrandHandler{s: service}
}

func (h *BrandHandler) CreateBrand(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var req transfer.BrandCreation
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	brandID, err := h.s.Create(c.Context(), userID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id": brandID,
	})
}

func (h *BrandHandler) ListBrands(c *fiber.Ctx) error {
	userID := GetUserID(c)
	brandID := c.QueryInt("id", 0)

	if brandID != 0 {
		brand, err := h.s.BrandInfo(c.Context(), int64(brandID), userID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to get brand info",
			})
		}
		return c.Status(fiber.StatusOK).JSON(brand)
	}

	brands, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list brands",
		})
	}

	return c.Status(fiber.StatusOK).JSON(brands)
}

func (h *BrandHandler) UpdateBrand(c *fiber.Ctx) error {
	userID := GetUserID(c)
	brandID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid brand id",
		})
	}

	var req transfer.BrandCreation
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	if err := h.s.Update(c.Context(), userID, int64(brandID), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Brand updated",
	})
}

func (h *BrandHandler) RemoveBrand(c *fiber.Ctx) error {
	userID := GetUserID(c)
	brandID := c.QueryInt("id", 0)

	if err := h.s.Remove(c.Context(), userID, int64(brandID)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Brand removed",
	})
}

func (h *BrandHandler) SetCredentials(c *fiber.Ctx) error {
	userID := GetUserID(c)
	brandID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid brand id",
		})
	}
	provider := c.Params("provider")

	var creds models.Credentials
	if err := c.BodyParser(&creds); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	if err := h.s.SetCredentials(c.Context(), userID, int64(brandID), provider, creds); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Credentials saved",
	})
}

func (h *BrandHandler) RemoveCredentials(c *fiber.Ctx) error {
	userID := GetUserID(c)
	brandID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid brand id",
		})
	}
	provider := c.Params("provider")

	if err := h.s.RemoveCredentials(c.Context(), userID, int64(brandID), provider); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Credentials removed",
	})
}

func (h *BrandHandler) ListProviders(c *fiber.Ctx) error {
	userID := GetUserID(c)
	brandID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid brand id",
		})
	}

	providers, err := h.s.ListProviders(c.Context(), userID, int64(brandID))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"providers": providers,
	})
}
