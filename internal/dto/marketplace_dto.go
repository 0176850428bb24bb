package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/wanderguide/marketplace-api/internal/models"
	"github.com/wanderguide/marketplace-api/internal/pricing"
)

// --- Cities ---

type CityRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	CountryCode string  `json:"country_code" validate:"required,len=2,alpha"`
	Slug        string  `json:"slug" validate:"omitempty,max=140"`
	Latitude    float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Timezone    string  `json:"timezone" validate:"omitempty,timezone"`
}

// --- Guides & travelers ---

type GuideProfileRequest struct {
	DisplayName  string     `json:"display_name" validate:"required,min=2,max=120"`
	CityID       *uuid.UUID `json:"city_id"`
	Location     string     `json:"location" validate:"max=255"`
	Bio          string     `json:"bio" validate:"max=5000"`
	Languages    []string   `json:"languages" validate:"max=20,dive,min=2,max=10"`
	Themes       []string   `json:"themes" validate:"max=20,dive,min=2,max=40"`
	PriceH4      int64      `json:"price_h4" validate:"gte=0"`
	PriceH6      int64      `json:"price_h6" validate:"gte=0"`
	PriceH8      int64      `json:"price_h8" validate:"gte=0"`
	BaseRateHour *int64     `json:"base_rate_hour" validate:"omitempty,gt=0"`
	MaxGroupSize int        `json:"max_group_size" validate:"omitempty,min=1,max=50"`
}

type TravelerProfileRequest struct {
	HomeCountry       string `json:"home_country" validate:"omitempty,len=2,alpha"`
	PreferredLanguage string `json:"preferred_language" validate:"omitempty,min=2,max=10"`
}

type GuideFilter struct {
	City      string   `query:"city"`
	Language  string   `query:"language"`
	Theme     string   `query:"theme"`
	MinPrice  *float64 `query:"minPrice"`
	MaxPrice  *float64 `query:"maxPrice"`
	MinRating *float64 `query:"minRating"`
	Verified  *bool    `query:"verified"`
	Q         string   `query:"q"`
	Sort      string   `query:"sort" validate:"omitempty,oneof=rating price_asc price_desc newest"`
	Limit     int      `query:"limit"`
	Offset    int      `query:"offset"`
}

type GuideDetailResponse struct {
	Profile       *models.GuideProfile `json:"profile"`
	RecentReviews []models.Review      `json:"recent_reviews"`
}

// --- Availability ---

type SlotInput struct {
	StartTime     time.Time `json:"start_time" validate:"required"`
	DurationHours int       `json:"duration_hours" validate:"blockhours"`
}

type CreateSlotsRequest struct {
	Slots []SlotInput `json:"slots" validate:"required,min=1,max=50,dive"`
}

type UpdateSlotRequest struct {
	Status        *models.SlotStatus `json:"status" validate:"omitempty,oneof=open closed"`
	StartTime     *time.Time         `json:"start_time"`
	DurationHours *int               `json:"duration_hours" validate:"omitempty,blockhours"`
}

// --- Reservations ---

type SessionInput struct {
	Date          string `json:"date" validate:"required,date"`
	StartTime     string `json:"start_time" validate:"required,clock"`
	DurationHours int    `json:"duration_hours" validate:"blockhours"`
}

type CreateReservationRequest struct {
	GuideID       uuid.UUID      `json:"guide_id" validate:"required"`
	SlotID        *uuid.UUID     `json:"slot_id"`
	Sessions      []SessionInput `json:"sessions" validate:"max=14,dive"`
	Meeting       string         `json:"meeting" validate:"max=255"`
	ItineraryNote string         `json:"itinerary_note" validate:"max=5000"`
	GroupSize     int            `json:"group_size" validate:"omitempty,min=1"`
}

type UpdateReservationRequest struct {
	Status models.ReservationStatus `json:"status" validate:"required,oneof=accepted cancelled completed refunded"`
}

type ReservationResponse struct {
	Reservation  *models.Reservation `json:"reservation"`
	Booking      *models.Booking     `json:"booking"`
	Quote        pricing.Quote       `json:"quote"`
	SlotReserved bool                `json:"slot_reserved"`
}

// --- Reviews ---

type CreateReviewRequest struct {
	ReservationID uuid.UUID `json:"reservation_id" validate:"required"`
	Rating        int       `json:"rating" validate:"required,min=1,max=5"`
	Text          string    `json:"text" validate:"max=5000"`
}

type UpdateReviewRequest struct {
	Rating        *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Text          *string `json:"text" validate:"omitempty,max=5000"`
	GuideResponse *string `json:"guide_response" validate:"omitempty,max=5000"`
}

// --- Messaging ---

type SendMessageRequest struct {
	Body string `json:"body" validate:"required,min=1,max=4000"`
}

// --- Contact & newsletter ---

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

type NewsletterSubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// --- Settings ---

type SetSettingRequest struct {
	Value  string `json:"value" validate:"required"`
	Type   string `json:"type" validate:"omitempty,oneof=string bool int json"`
	Public *bool  `json:"public"`
}
