package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/wanderguide/marketplace-api/internal/config"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/services"
)

type DevHandler struct {
	dev *services.DevService
	cfg *config.Config
}

func NewDevHandler(dev *services.DevService, cfg *config.Config) *DevHandler {
	return &DevHandler{dev: dev, cfg: cfg}
}

func (h *DevHandler) Seed(c *fiber.Ctx) error {
	if h.cfg.IsProduction() {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "Not found"})
	}
	result, err := h.dev.Seed(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	slog.Warn("dev seed applied", "cities", result.Cities, "users", result.Users, "slots", result.Slots)
	return c.JSON(result)
}

func (h *DevHandler) Reset(c *fiber.Ctx) error {
	if h.cfg.IsProduction() {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "Not found"})
	}
	if err := h.dev.Reset(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	slog.Warn("dev reset applied")
	return c.JSON(dto.MessageResponse{Message: "All marketplace data deleted"})
}
