package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GuideProfile is keyed by the guide's user id.
type GuideProfile struct {
	UID          uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"uid"`
	Handle       string                      `gorm:"size:120;not null;uniqueIndex" json:"handle"`
	DisplayName  string                      `gorm:"size:120" json:"display_name"`
	CityID       *uuid.UUID                  `gorm:"type:uuid;index" json:"city_id,omitempty"`
	Location     string                      `gorm:"size:255" json:"location"`
	Bio          string                      `gorm:"type:text" json:"bio"`
	Languages    datatypes.JSONSlice[string] `json:"languages"`
	Themes       datatypes.JSONSlice[string] `json:"themes"`
	PriceH4      int64                       `gorm:"column:price_h4;default:0" json:"price_h4"`
	PriceH6      int64                       `gorm:"column:price_h6;default:0" json:"price_h6"`
	PriceH8      int64                       `gorm:"column:price_h8;default:0" json:"price_h8"`
	BaseRateHour *int64                      `json:"base_rate_hour,omitempty"`
	MaxGroupSize int                         `gorm:"default:6" json:"max_group_size"`
	Verified     bool                        `gorm:"default:false;index" json:"verified"`
	RatingAvg    float64                     `gorm:"default:0" json:"rating_avg"`
	RatingCount  int                         `gorm:"default:0" json:"rating_count"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
	City         *City                       `gorm:"foreignKey:CityID" json:"city,omitempty"`
}

// HourlyPrice is the rate used for price filtering and sorting.
func (g *GuideProfile) HourlyPrice() float64 {
	if g.BaseRateHour != nil {
		return float64(*g.BaseRateHour)
	}
	return float64(g.PriceH4) / 4
}

// FlatPrice returns the legacy tier price for a block length, 0 when unset.
func (g *GuideProfile) FlatPrice(hours int) int64 {
	switch hours {
	case 4:
		return g.PriceH4
	case 6:
		return g.PriceH6
	case 8:
		return g.PriceH8
	}
	return 0
}

type TravelerProfile struct {
	UID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"uid"`
	HomeCountry       string    `gorm:"size:2" json:"home_country"`
	PreferredLanguage string    `gorm:"size:10" json:"preferred_language"`
	RatingAvg         float64   `gorm:"default:0" json:"rating_avg"`
	RatingCount       int       `gorm:"default:0" json:"rating_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
