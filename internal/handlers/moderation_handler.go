package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/services"
	"github.com/wanderguide/marketplace-api/internal/validation"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
	validator         *validation.Validator
}

func NewModerationHandler(moderationService *services.ModerationService, v *validation.Validator) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService, validator: v}
}

func (h *ModerationHandler) CreateReport(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}

	var req dto.CreateReportRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	report, err := h.moderationService.CreateReport(c.UserContext(), caller.ID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(report)
}

func (h *ModerationHandler) BlockUser(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}

	var req dto.BlockUserRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	if err := h.moderationService.BlockUser(c.UserContext(), caller.ID, req.BlockedID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "User blocked successfully"})
}

func (h *ModerationHandler) UnblockUser(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	blockedID, ok, err := parseUUIDParam(c, "id")
	if !ok {
		return err
	}

	if err := h.moderationService.UnblockUser(c.UserContext(), caller.ID, blockedID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "User unblocked successfully"})
}

func (h *ModerationHandler) ListReports(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	reports, total, err := h.moderationService.ListReports(c.UserContext(), c.Query("status"), limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return list(c, reports, total, limit, offset)
}

func (h *ModerationHandler) ActionReport(c *fiber.Ctx) error {
	reportID, ok, err := parseUUIDParam(c, "id")
	if !ok {
		return err
	}

	var req dto.ActionReportRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}

	if err := h.moderationService.ActionReport(c.UserContext(), reportID, &req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "Report updated successfully"})
}

func (h *ModerationHandler) ListBlocked(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	ids, err := h.moderationService.GetBlockedIDs(c.UserContext(), caller.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"blocked_ids": ids})
}
