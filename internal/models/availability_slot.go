package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SlotStatus string

const (
	SlotOpen    SlotStatus = "open"
	SlotPending SlotStatus = "pending"
	SlotBooked  SlotStatus = "booked"
	SlotClosed  SlotStatus = "closed"
)

// AvailabilitySlot is a guide-published block of 4, 6 or 8 hours.
type AvailabilitySlot struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	GuideID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_slots_guide_start,priority:1" json:"guide_id"`
	StartTime     time.Time  `gorm:"not null;index:idx_slots_guide_start,priority:2" json:"start_time"`
	EndTime       time.Time  `gorm:"not null" json:"end_time"`
	DurationHours int        `gorm:"not null" json:"duration_hours"`
	Status        SlotStatus `gorm:"size:20;not null;default:'open';index" json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (s *AvailabilitySlot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
