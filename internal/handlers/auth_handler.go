package handlers

import (
	"errors"
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/config"
	"github.com/fitlogapp/fitlog-backend/internal/dto"
	"github.com/fitlogapp/fitlog-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Refresh tokens travel in a secure, httpOnly, strict-same-site cookie
// scoped to the auth path. The JSON body is a fallback for non-browser
// clients.
const (
	refreshCookieName = "fitlog_refresh"
	refreshCookiePath = "/api/auth"
)

type AuthHandler struct {
	authService  *services.AuthService
	tokenService *services.TokenService
	cfg          *config.Config
}

func NewAuthHandler(authService *services.AuthService, tokenService *services.TokenService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, tokenService: tokenService, cfg: cfg}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrEmailRequired) || errors.Is(err, services.ErrWeakPassword) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	h.setRefreshCookie(c, resp.RefreshToken)
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Internal server error",
		})
	}

	h.setRefreshCookie(c, resp.RefreshToken)
	return c.JSON(resp)
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	raw := h.presentedRefreshToken(c)
	if raw == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Missing refresh token",
		})
	}

	pair, err := h.tokenService.Rotate(c.UserContext(), raw)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) || errors.Is(err, services.ErrExpiredToken) {
			// The client-held token is dead either way; make the client drop it.
			h.clearRefreshCookie(c)
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid or expired refresh token",
			})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Service temporarily unavailable",
		})
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	raw := h.presentedRefreshToken(c)
	if raw != "" {
		if err := h.tokenService.Revoke(c.UserContext(), raw); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "Failed to logout",
			})
		}
	}

	h.clearRefreshCookie(c)
	return c.JSON(dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	userID, err := authenticatedUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if err := h.tokenService.RevokeAll(c.UserContext(), userID); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to logout",
		})
	}

	h.clearRefreshCookie(c)
	return c.JSON(dto.MessageResponse{Message: "Logged out everywhere"})
}

func (h *AuthHandler) presentedRefreshToken(c *fiber.Ctx) string {
	if raw := c.Cookies(refreshCookieName); raw != "" {
		return raw
	}
	var req dto.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return ""
	}
	return req.RefreshToken
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, raw string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    raw,
		Path:     refreshCookiePath,
		Expires:  time.Now().Add(h.cfg.RefreshTokenExpiry),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   true,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func authenticatedUserID(c *fiber.Ctx) (uuid.UUID, error) {
	tok, ok := c.Locals("user").(*jwt.Token)
	if !ok || tok == nil {
		return uuid.Nil, errors.New("no token in context")
	}
	sub, err := tok.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(sub)
}
