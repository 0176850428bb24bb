package handlers

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/identity"
	"github.com/wanderguide/marketplace-api/internal/pricing"
	"github.com/wanderguide/marketplace-api/internal/services"
	"github.com/wanderguide/marketplace-api/internal/slots"
	"github.com/wanderguide/marketplace-api/internal/validation"
)

var (
	notFoundErrors = []error{
		services.ErrUserNotFound, services.ErrGuideNotFound,
		services.ErrTravelerNotFound, services.ErrCityNotFound, services.ErrSlotNotFound,
		services.ErrReservationNotFound, services.ErrReviewNotFound, services.ErrConversationNotFound,
		services.ErrReportNotFound, services.ErrReportTarget, services.ErrSettingNotFound,
		services.ErrSubscriptionNotFound,
	}
	forbiddenErrors = []error{
		services.ErrForbidden, services.ErrTravelerOnly, services.ErrNotGuide,
		services.ErrEditWindowExpired, services.ErrNotReviewParticipant, services.ErrBlocked,
	}
	conflictErrors = []error{
		services.ErrEmailTaken, services.ErrCitySlugTaken, services.ErrReviewExists,
		services.ErrAlreadyBlocked, services.ErrConcurrentUpdate,
	}
	unauthorizedErrors = []error{
		services.ErrInvalidCredentials, services.ErrInvalidToken,
	}
	badRequestErrors = []error{
		services.ErrSlotUnavailable, services.ErrSelfBooking, services.ErrGroupTooLarge,
		services.ErrSessionMismatch, services.ErrReviewNotAllowed, services.ErrSelfBlock,
		services.ErrRoleNotAllowed, services.ErrSlotNotDeletable,
		slots.ErrInvalidDuration, slots.ErrStartInPast, slots.ErrOverlap,
		slots.ErrInvalidSlotTransition, slots.ErrInvalidTransition,
		pricing.ErrInvalidDuration, pricing.ErrNoSessions, pricing.ErrNoPrice,
	}
)

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusFor maps service errors to HTTP status codes. Unknown errors are 500.
func statusFor(err error) int {
	var rejected *services.ContentRejectedError
	switch {
	case isAny(err, notFoundErrors):
		return fiber.StatusNotFound
	case isAny(err, forbiddenErrors):
		return fiber.StatusForbidden
	case isAny(err, conflictErrors):
		return fiber.StatusConflict
	case isAny(err, unauthorizedErrors):
		return fiber.StatusUnauthorized
	case isAny(err, badRequestErrors), services.IsValidation(err), errors.As(err, &rejected):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		slog.ErrorContext(c.UserContext(), "request failed",
			"error", err,
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		)
		return c.Status(status).JSON(dto.ErrorResponse{Error: "Internal server error"})
	}

	resp := dto.ErrorResponse{Error: err.Error()}
	var rejected *services.ContentRejectedError
	if errors.As(err, &rejected) {
		resp.Details = map[string]string{"reason": rejected.Reason}
	}
	return c.Status(status).JSON(resp)
}

// parseBody decodes the JSON body into dst and validates it. On failure it
// writes the 400 response and returns ok=false.
func parseBody(c *fiber.Ctx, v *validation.Validator, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid request body"})
	}
	if err := v.Struct(dst); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error:   "validation failed",
			Details: v.Details(err),
		})
	}
	return true, nil
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "Invalid " + name})
	}
	return id, true, nil
}

func callerOrUnauthorized(c *fiber.Ctx) (identity.Caller, bool, error) {
	caller, err := identity.GetCaller(c)
	if err != nil {
		return identity.Caller{}, false, c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: "Unauthorized"})
	}
	return caller, true, nil
}

func pagination(c *fiber.Ctx) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func list[T any](c *fiber.Ctx, items []T, total int64, limit, offset int) error {
	if items == nil {
		items = []T{}
	}
	return c.JSON(dto.ListResponse[T]{Items: items, Total: total, Limit: limit, Offset: offset})
}
