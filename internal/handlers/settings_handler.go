package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/services"
	"github.com/wanderguide/marketplace-api/internal/validation"
)

type SettingsHandler struct {
	settings  *services.SettingsService
	validator *validation.Validator
}

func NewSettingsHandler(settings *services.SettingsService, v *validation.Validator) *SettingsHandler {
	return &SettingsHandler{settings: settings, validator: v}
}

// GetConfig returns the public platform settings.
func (h *SettingsHandler) GetConfig(c *fiber.Ctx) error {
	result, err := h.settings.Public(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

// SetKey creates or updates a setting (admin only).
func (h *SettingsHandler) SetKey(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Key parameter is required"})
	}

	var req dto.SetSettingRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	row, err := h.settings.Set(c.UserContext(), key, req.Value, req.Type, req.Public)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(row)
}

func (h *SettingsHandler) DeleteKey(c *fiber.Ctx) error {
	if err := h.settings.Delete(c.UserContext(), c.Params("key")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Setting deleted successfully"})
}
