package handlers

import (
	"time"

	"github.com/fitlogapp/fitlog-backend/internal/database"
	"github.com/fitlogapp/fitlog-backend/internal/dto"
	"github.com/fitlogapp/fitlog-backend/internal/ratelimit"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct {
	selector *ratelimit.Selector
}

func NewHealthHandler(selector *ratelimit.Selector) *HealthHandler {
	return &HealthHandler{selector: selector}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "up"
	if err := database.Ping(); err != nil {
		dbStatus = "down"
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		RateLimit: h.selector.Kind(),
	})
}
