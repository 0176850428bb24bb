package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationAccepted  ReservationStatus = "accepted"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
	ReservationRefunded  ReservationStatus = "refunded"
)

// Reservation is the commercial record of a traveler's request. Amounts are
// whole currency units.
type Reservation struct {
	ID                uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	TravelerID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"traveler_id"`
	GuideID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"guide_id"`
	SlotID            *uuid.UUID        `gorm:"type:uuid;index" json:"slot_id,omitempty"`
	Status            ReservationStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Subtotal          int64             `gorm:"not null" json:"subtotal"`
	TravelerFee       int64             `gorm:"not null" json:"traveler_fee"`
	Total             int64             `gorm:"not null" json:"total"`
	CommissionPercent int               `gorm:"not null" json:"commission_percent"`
	CommissionMin     int64             `gorm:"not null" json:"commission_min"`
	Commission        int64             `gorm:"not null" json:"commission"`
	GuidePayout       int64             `gorm:"not null" json:"guide_payout"`
	Currency          string            `gorm:"size:3;not null" json:"currency"`
	CancelledBy       *uuid.UUID        `gorm:"type:uuid" json:"cancelled_by,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	Booking           *Booking          `gorm:"foreignKey:ReservationID" json:"booking,omitempty"`
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type Session struct {
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	DurationHours int    `json:"duration_hours"`
}

// Booking holds the scheduling detail attached 1:1 to a reservation.
type Booking struct {
	ID            uuid.UUID                    `gorm:"type:uuid;primaryKey" json:"id"`
	ReservationID uuid.UUID                    `gorm:"type:uuid;not null;uniqueIndex" json:"reservation_id"`
	Sessions      datatypes.JSONSlice[Session] `json:"sessions"`
	Meeting       string                       `gorm:"size:255" json:"meeting"`
	ItineraryNote string                       `gorm:"type:text" json:"itinerary_note"`
	GroupSize     int                          `gorm:"default:1" json:"group_size"`
	CreatedAt     time.Time                    `json:"created_at"`
	UpdatedAt     time.Time                    `json:"updated_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
