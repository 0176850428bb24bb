package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Review struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ReservationID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"reservation_id"`
	GuideID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"guide_id"`
	TravelerID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"traveler_id"`
	Rating           int        `gorm:"not null" json:"rating"`
	Text             string     `gorm:"type:text" json:"text"`
	GuideResponse    string     `gorm:"type:text" json:"guide_response,omitempty"`
	GuideRespondedAt *time.Time `json:"guide_responded_at,omitempty"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
