package handlers

import (
	"errors"

	"github.com/fitlogapp/fitlog-backend/internal/dto"
	"github.com/fitlogapp/fitlog-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PasswordHandler struct {
	resetService *services.PasswordResetService
}

func NewPasswordHandler(resetService *services.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{resetService: resetService}
}

// ForgotPassword answers the same way for every address, registered or not.
func (h *PasswordHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Email is required",
		})
	}

	h.resetService.RequestReset(c.UserContext(), req.Email)

	return c.JSON(dto.MessageResponse{
		Message: "If that email is registered, a reset link has been sent",
	})
}

func (h *PasswordHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	err := h.resetService.CompleteReset(c.UserContext(), req.Token, req.NewPassword)
	if err != nil {
		if errors.Is(err, services.ErrWeakPassword) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrInvalidToken) {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid or expired reset token",
			})
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Error: true, Message: "Service temporarily unavailable",
		})
	}

	return c.JSON(dto.MessageResponse{Message: "Password updated, please sign in again"})
}
