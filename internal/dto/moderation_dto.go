package dto

import "github.com/google/uuid"

type CreateReportRequest struct {
	Type     string    `json:"type" validate:"required,oneof=profile review message"`
	TargetID uuid.UUID `json:"target_id" validate:"required"`
	Reason   string    `json:"reason" validate:"required,min=3,max=500"`
}

type ActionReportRequest struct {
	Status    string `json:"status" validate:"required,oneof=reviewed actioned dismissed"`
	AdminNote string `json:"admin_note" validate:"max=1000"`
}

type BlockUserRequest struct {
	BlockedID uuid.UUID `json:"blocked_id" validate:"required"`
}
