package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/services"
	"github.com/wanderguide/marketplace-api/internal/validation"
)

type ContactHandler struct {
	contact   *services.ContactService
	validator *validation.Validator
}

func NewContactHandler(contact *services.ContactService, v *validation.Validator) *ContactHandler {
	return &ContactHandler{contact: contact, validator: v}
}

func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	var req dto.ContactRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}
	if _, err := h.contact.Submit(c.UserContext(), &req); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "Thanks, we'll be in touch"})
}

func (h *ContactHandler) Subscribe(c *fiber.Ctx) error {
	var req dto.NewsletterSubscribeRequest
	if ok, err := parseBody(c, h.validator, &req); !ok {
		return err
	}
	if _, err := h.contact.Subscribe(c.UserContext(), req.Email); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "Subscription pending confirmation"})
}

func (h *ContactHandler) Confirm(c *fiber.Ctx) error {
	sub, err := h.contact.Confirm(c.UserContext(), c.Params("token"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"email": sub.Email, "confirmed_at": sub.ConfirmedAt})
}
