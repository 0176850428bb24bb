package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/services"
	"github.com/wanderguide/marketplace-api/internal/validation"
)

type CityHandler struct {
	cities    *services.CityService
	validator *validation.Validator
}

func NewCityHandler(cities *services.CityService, v *validation.Validator) *CityHandler {
	return &CityHandler{cities: cities, validator: v}
}

func (h *CityHandler) List(c *fiber.Ctx) error {
	cities, err := h.cities.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return list(c, cities, int64(len(cities)), len(cities), 0)
}

func (h *CityHandler) Get(c *fiber.Ctx) error {
	city, err := h.cities.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(city)
}

func (h *CityHandler) Create(c *fiber.Ctx) error {
	var req dto.CityRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}
	city, err := h.cities.Create(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(city)
}

func (h *CityHandler) Update(c *fiber.Ctx) error {
	id, ok, err := parseUUIDParam(c, "id")
	if !ok {
		return err
	}
	var req dto.CityRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}
	city, err := h.cities.Update(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(city)
}

func (h *CityHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := parseUUIDParam(c, "id")
	if !ok {
		return err
	}
	if err := h.cities.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
