package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/services"
	"github.com/wanderguide/marketplace-api/internal/validation"
)

type ReservationHandler struct {
	reservations *services.ReservationService
	validator    *validation.Validator
}

func NewReservationHandler(reservations *services.ReservationService, v *validation.Validator) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, validator: v}
}

func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	var req dto.CreateReservationRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	resp, err := h.reservations.Create(c.UserContext(), caller, &req)
	if err != nil {
		return respondError(c, err)
	}

	slog.InfoContext(c.UserContext(), "reservation created",
		"reservation_id", resp.Reservation.ID,
		"guide_id", resp.Reservation.GuideID,
		"slot_reserved", resp.SlotReserved,
		"total", resp.Quote.Total,
	)
	return c.Status(fiber.StatusCreated).JSON(resp)
}

type quoteRequest struct {
	GuideID   uuid.UUID `json:"guide_id" validate:"required"`
	Durations []int     `json:"durations" validate:"required,min=1,max=14,dive,blockhours"`
}

// Quote prices a set of blocks for a guide without reserving anything.
func (h *ReservationHandler) Quote(c *fiber.Ctx) error {
	var req quoteRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}
	quote, err := h.reservations.Quote(c.UserContext(), req.GuideID, req.Durations)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(quote)
}

func (h *ReservationHandler) ListMine(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	limit, offset := pagination(c)
	rows, total, err := h.reservations.ListMine(c.UserContext(), caller, c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return list(c, rows, total, limit, offset)
}

func (h *ReservationHandler) Get(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	id, ok, err := parseUUIDParam(c, "id")
	if !ok {
		return err
	}
	reservation, err := h.reservations.Get(c.UserContext(), caller, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reservation)
}

func (h *ReservationHandler) Update(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	id, ok, err := parseUUIDParam(c, "id")
	if !ok {
		return err
	}
	var req dto.UpdateReservationRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	reservation, err := h.reservations.Transition(c.UserContext(), caller, id, req.Status)
	if err != nil {
		return respondError(c, err)
	}

	slog.InfoContext(c.UserContext(), "reservation status changed",
		"reservation_id", reservation.ID,
		"status", reservation.Status,
		"actor", caller.ID,
	)
	return c.JSON(reservation)
}
