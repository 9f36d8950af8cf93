package handlers

import (
	"fmt"
	"log/slog"
	"time"

	config "brandpanel/configs"
	"brandpanel/internal/service"
	"brandpanel/internal/transfer"
	"brandpanel/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

const oauthStateCookie = "oauth_state"

type AuthHandler struct {
	s   service.AuthService
	cfg config.Config
}

func NewAuthHandler(cfg config.Config, service service.AuthService) *AuthHandler {
	return &AuthHandler{s: service, cfg: cfg}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req transfer.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	userID, err := h.s.Register(c.Context(), &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.setSessionCookie(c, userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Registered successfully",
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req transfer.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Info(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request",
		})
	}

	userID, err := h.s.Login(c.Context(), &req)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := h.setSessionCookie(c, userID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged in successfully",
	})
}

func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	state, err := utils.GenerateRandomKey(16)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		HTTPOnly: true,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
	})

	return c.Redirect(h.s.GoogleAuthURL(state))
}

func (h *AuthHandler) GoogleLoginCallback(c *fiber.Ctx) error {
	if c.Query("state") == "" || c.Query("state") != c.Cookies(oauthStateCookie) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid state",
		})
	}

	userID, err := h.s.GoogleLoginCallback(c.Context(), c.Query("code"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	if err := h.setSessionCookie(c, userID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	return c.Redirect(h.cfg.FrontendURL, fiber.StatusTemporaryRedirect)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:   h.cfg.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logged out",
	})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, userID int64) error {
	token, err := utils.GenerateToken(h.cfg.SecretKey, fmt.Sprintf("%d", userID), 24*time.Hour)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   false,
		SameSite: fiber.CookieSameSiteNoneMode,
		Path:     "/",
		Expires:  time.Now().Add(24 * time.Hour),
	})
	return nil
}
