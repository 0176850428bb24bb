package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wanderguide/marketplace-api/internal/services"
	"github.com/wanderguide/marketplace-api/internal/validation"
)

type AdminHandler struct {
	admin        *services.AdminService
	guides       *services.GuideService
	reservations *services.ReservationService
	validator    *validation.Validator
}

func NewAdminHandler(admin *services.AdminService, guides *services.GuideService, reservations *services.ReservationService, v *validation.Validator) *AdminHandler {
	return &AdminHandler{admin: admin, guides: guides, reservations: reservations, validator: v}
}

func (h *AdminHandler) Users(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	users, total, err := h.admin.ListUsers(c.UserContext(), c.Query("role"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return list(c, users, total, limit, offset)
}

func (h *AdminHandler) Guides(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	var verified *bool
	if v := c.Query("verified"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			verified = &b
		}
	}
	guides, total, err := h.admin.ListGuides(c.UserContext(), verified, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return list(c, guides, total, limit, offset)
}

type verifyRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

func (h *AdminHandler) VerifyGuide(c *fiber.Ctx) error {
	uid, ok, err := parseUUIDParam(c, "uid")
	if !ok {
		return err
	}
	var req verifyRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}
	profile, err := h.guides.SetVerified(c.UserContext(), uid, *req.Verified)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

func (h *AdminHandler) Bookings(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	rows, total, err := h.reservations.ListAll(c.UserContext(), c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return list(c, rows, total, limit, offset)
}
