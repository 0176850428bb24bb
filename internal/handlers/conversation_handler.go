package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/services"
	"github.com/wanderguide/marketplace-api/internal/validation"
)

type ConversationHandler struct {
	messaging *services.MessagingService
	validator *validation.Validator
}

func NewConversationHandler(messaging *services.MessagingService, v *validation.Validator) *ConversationHandler {
	return &ConversationHandler{messaging: messaging, validator: v}
}

func (h *ConversationHandler) List(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	rows, err := h.messaging.ListConversations(c.UserContext(), caller.ID)
	if err != nil {
		return respondError(c, err)
	}
	return list(c, rows, int64(len(rows)), len(rows), 0)
}

func (h *ConversationHandler) Messages(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	id, ok, err := parseUUIDParam(c, "id")
	if !ok {
		return err
	}
	limit, offset := pagination(c)
	rows, err := h.messaging.ListMessages(c.UserContext(), caller.ID, id, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return list(c, rows, int64(len(rows)), limit, offset)
}

func (h *ConversationHandler) Send(c *fiber.Ctx) error {
	caller, ok, err := callerOrUnauthorized(c)
	if !ok {
		return err
	}
	id, ok, err := parseUUIDParam(c, "id")
	if !ok {
		return err
	}
	var req dto.SendMessageRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}
	msg, err := h.messaging.Send(c.UserContext(), caller.ID, id, req.Body)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
