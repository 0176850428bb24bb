package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/models"
	"github.com/wanderguide/marketplace-api/internal/services"
	"github.com/wanderguide/marketplace-api/internal/validation"
)

type AvailabilityHandler struct {
	availability *services.AvailabilityService
	validator    *validation.Validator
}

func NewAvailabilityHandler(availability *services.AvailabilityService, v *validation.Validator) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability, validator: v}
}

func (h *AvailabilityHandler) Create(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	if caller.Role != models.RoleGuide {
		return respondError(c, services.ErrNotGuide)
	}

	var req dto.CreateSlotsRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	created, err := h.availability.Create(c.UserContext(), caller.ID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"slots": created})
}

func (h *AvailabilityHandler) ListForGuide(c *fiber.Ctx) error {
	from, err := queryTime(c, "from")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid from; expected RFC 3339"})
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid to; expected RFC 3339"})
	}

	rows, err := h.availability.ListOpen(c.UserContext(), c.Params("handle"), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return list(c, rows, int64(len(rows)), len(rows), 0)
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *AvailabilityHandler) Get(c *fiber.Ctx) error {
	id, ok, err := parseUUIDParam(c, "id")
	if !ok {
		return err
	}
	slot, err := h.availability.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(slot)
}

func (h *AvailabilityHandler) Update(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	id, ok, err := parseUUIDParam(c, "id")
	if !ok {
		return err
	}
	var req dto.UpdateSlotRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	slot, err := h.availability.Update(c.UserContext(), caller.ID, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(slot)
}

func (h *AvailabilityHandler) Delete(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	id, ok, err := parseUUIDParam(c, "id")
	if !ok {
		return err
	}
	if err := h.availability.Delete(c.UserContext(), caller.ID, id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
