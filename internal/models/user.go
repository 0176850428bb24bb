package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleTraveler  = "traveler"
	RoleGuide     = "guide"
	RoleAdmin     = "admin"
	RoleSupport   = "support"
	RoleModerator = "moderator"
)

// User is the account row. Role is fixed at creation.
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password    string         `gorm:"not null" json:"-"`
	Role        string         `gorm:"size:20;not null;default:'traveler';index" json:"role"`
	DisplayName string         `gorm:"size:120" json:"display_name"`
	AvatarURL   string         `gorm:"size:500" json:"avatar_url,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsStaffRole reports whether role may see other users' reservations and reports.
func IsStaffRole(role string) bool {
	return role == RoleAdmin || role == RoleSupport || role == RoleModerator
}
