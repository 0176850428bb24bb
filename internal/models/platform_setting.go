package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	SettingTravelerFeePercent = "traveler_fee_percent"
	SettingCommissionPercent  = "commission_percent"
	SettingCommissionMin      = "commission_min"
	SettingMaintenanceMode    = "maintenance_mode"
)

// PlatformSetting is a typed key/value row editable by admins.
type PlatformSetting struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Key       string    `gorm:"size:100;not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	Type      string    `gorm:"size:20;default:'string'" json:"type"` // string, bool, int, json
	Public    bool      `gorm:"not null" json:"public"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *PlatformSetting) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (PlatformSetting) TableName() string {
	return "platform_settings"
}
