package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/services"
	"github.com/wanderguide/marketplace-api/internal/validation"
)

type ReviewHandler struct {
	reviews   *services.ReviewService
	validator *validation.Validator
}

func NewReviewHandler(reviews *services.ReviewService, v *validation.Validator) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, validator: v}
}

func (h *ReviewHandler) List(c *fiber.Ctx) error {
	guideID, err := uuid.Parse(c.Query("guideId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "guideId query parameter is required"})
	}
	limit, offset := pagination(c)
	rows, total, err := h.reviews.ListForGuide(c.UserContext(), guideID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return list(c, rows, total, limit, offset)
}

func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	var req dto.CreateReviewRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}
	review, err := h.reviews.Create(c.UserContext(), caller, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *ReviewHandler) Update(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	id, ok, err := parseUUIDParam(c, "id")
	if !ok {
		return err
	}
	var req dto.UpdateReviewRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}
	review, err := h.reviews.Update(c.UserContext(), caller, id, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(review)
}
