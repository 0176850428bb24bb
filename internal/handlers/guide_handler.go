package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/services"
	"github.com/wanderguide/marketplace-api/internal/validation"
)

type GuideHandler struct {
	guides    *services.GuideService
	validator *validation.Validator
}

func NewGuideHandler(guides *services.GuideService, v *validation.Validator) *GuideHandler {
	return &GuideHandler{guides: guides, validator: v}
}

// parseGuideFilter reads listing filters from the query string. Malformed
// numeric values are ignored rather than rejected.
func parseGuideFilter(c *fiber.Ctx) dto.GuideFilter {
	f := dto.GuideFilter{
		City:     c.Query("city"),
		Language: c.Query("language"),
		Theme:    c.Query("theme"),
		Q:        c.Query("q"),
		Sort:     c.Query("sort"),
	}
	f.Limit, f.Offset = pagination(c)
	f.MinPrice = queryFloat(c, "minPrice")
	f.MaxPrice = queryFloat(c, "maxPrice")
	f.MinRating = queryFloat(c, "minRating")
	if v := c.Query("verified"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Verified = &b
		}
	}
	return f
}

func queryFloat(c *fiber.Ctx, key string) *float64 {
	v := c.Query(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func (h *GuideHandler) List(c *fiber.Ctx) error {
	f := parseGuideFilter(c)
	if err := h.validator.Struct(&f); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Details: h.validator.Details(err),
		})
	}

	guides, total, err := h.guides.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	return list(c, guides, total, f.Limit, f.Offset)
}

func (h *GuideHandler) Get(c *fiber.Ctx) error {
	detail, err := h.guides.GetByHandle(c.UserContext(), c.Params("handle"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(detail)
}

func (h *GuideHandler) UpsertMe(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	var req dto.GuideProfileRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	profile, err := h.guides.UpsertProfile(c.UserContext(), caller.ID, caller.Role, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

func (h *GuideHandler) GetTravelerMe(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	profile, err := h.guides.GetTraveler(c.UserContext(), caller.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}

func (h *GuideHandler) UpdateTravelerMe(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	var req dto.TravelerProfileRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}
	profile, err := h.guides.UpdateTraveler(c.UserContext(), caller.ID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(profile)
}
