package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wanderguide/marketplace-api/internal/config"
	"github.com/wanderguide/marketplace-api/internal/database"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/identity"
	"github.com/wanderguide/marketplace-api/internal/models"
	"github.com/wanderguide/marketplace-api/internal/pricing"
	"github.com/wanderguide/marketplace-api/internal/slots"
	"gorm.io/gorm"
)

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrSlotNotFound        = errors.New("slot not found")
	ErrSlotUnavailable     = errors.New("slot no longer available")
	ErrTravelerOnly        = errors.New("only travelers can make reservations")
	ErrSelfBooking         = errors.New("guides cannot book themselves")
	ErrGroupTooLarge       = errors.New("group size exceeds the guide's maximum")
	ErrSessionMismatch     = errors.New("session duration does not match the slot")
	ErrConcurrentUpdate    = errors.New("reservation was modified concurrently")
)

type ReservationService struct {
	db       *gorm.DB
	cfg      *config.Config
	settings *SettingsService
}

func NewReservationService(db *gorm.DB, cfg *config.Config, settings *SettingsService) *ReservationService {
	return &ReservationService{db: db, cfg: cfg, settings: settings}
}

// Create prices and stores a reservation with its booking. When a slot is
// given it is moved open -> pending with a guarded update so that concurrent
// requests for the same slot produce exactly one reservation.
func (s *ReservationService) Create(ctx context.Context, caller identity.Caller, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
	if caller.Role != models.RoleTraveler {
		return nil, ErrTravelerOnly
	}
	if req.GuideID == caller.ID {
		return nil, ErrSelfBooking
	}

	groupSize := req.GroupSize
	if groupSize == 0 {
		groupSize = 1
	}

	var resp dto.ReservationResponse
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var guide models.GuideProfile
		if err := tx.First(&guide, "uid = ?", req.GuideID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuideNotFound
			}
			return err
		}
		if guide.MaxGroupSize > 0 && groupSize > guide.MaxGroupSize {
			return ErrGroupTooLarge
		}

		sessions := make([]models.Session, 0, len(req.Sessions))
		for _, in := range req.Sessions {
			sessions = append(sessions, models.Session{Date: in.Date, StartTime: in.StartTime, DurationHours: in.DurationHours})
		}

		if req.SlotID != nil {
			slot, err := reserveSlot(tx, *req.SlotID, guide.UID)
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				sessions = append(sessions, sessionFromSlot(slot))
			} else if sessions[0].DurationHours != slot.DurationHours {
				return ErrSessionMismatch
			}
			resp.SlotReserved = true
		}

		durations := make([]int, len(sessions))
		for i, sess := range sessions {
			durations[i] = sess.DurationHours
		}
		quote, err := pricing.Calculate(rateCardFor(&guide), durations, s.settings.Policy(tx))
		if err != nil {
			return err
		}

		reservation := models.Reservation{
			TravelerID:        caller.ID,
			GuideID:           guide.UID,
			SlotID:            req.SlotID,
			Status:            models.ReservationPending,
			Subtotal:          quote.Subtotal,
			TravelerFee:       quote.TravelerFee,
			Total:             quote.Total,
			CommissionPercent: quote.CommissionPercent,
			CommissionMin:     quote.CommissionMin,
			Commission:        quote.Commission,
			GuidePayout:       quote.GuidePayout,
			Currency:          s.cfg.Currency,
		}
		if err := tx.Create(&reservation).Error; err != nil {
			return err
		}

		booking := models.Booking{
			ReservationID: reservation.ID,
			Sessions:      sessions,
			Meeting:       req.Meeting,
			ItineraryNote: req.ItineraryNote,
			GroupSize:     groupSize,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		resp.Reservation = &reservation
		resp.Booking = &booking
		resp.Quote = quote
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func reserveSlot(tx *gorm.DB, slotID, guideID uuid.UUID) (*models.AvailabilitySlot, error) {
	result := tx.Model(&models.AvailabilitySlot{}).
		Where("id = ? AND guide_id = ? AND status = ?", slotID, guideID, models.SlotOpen).
		Update("status", models.SlotPending)
	if result.Error != nil {
		return nil, result.Error
	}

	var slot models.AvailabilitySlot
	if err := tx.First(&slot, "id = ?", slotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	if result.RowsAffected == 0 {
		return nil, ErrSlotUnavailable
	}
	return &slot, nil
}

func sessionFromSlot(slot *models.AvailabilitySlot) models.Session {
	start := slot.StartTime.UTC()
	return models.Session{
		Date:          start.Format("2006-01-02"),
		StartTime:     start.Format("15:04"),
		DurationHours: slot.DurationHours,
	}
}

// Transition moves a reservation to status on behalf of caller and applies
// the matching slot change in the same transaction.
func (s *ReservationService) Transition(ctx context.Context, caller identity.Caller, id uuid.UUID, to models.ReservationStatus) (*models.Reservation, error) {
	var reservation models.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).First(&reservation, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if !canActOn(caller, &reservation) {
			return ErrReservationNotFound
		}
		if !slots.CanTransitionReservation(reservation.Status, to) {
			return slots.ErrInvalidTransition
		}
		if !actorAllowed(caller, &reservation, to) {
			return ErrForbidden
		}

		from := reservation.Status
		updates := map[string]interface{}{"status": to}
		if to == models.ReservationCancelled {
			updates["cancelled_by"] = caller.ID
		}
		result := tx.Model(&models.Reservation{}).Where("id = ? AND status = ?", id, from).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrConcurrentUpdate
		}

		if reservation.SlotID != nil {
			if target, ok := slots.SlotStatusFor(to); ok {
				if err := moveSlot(tx, *reservation.SlotID, target); err != nil {
					return err
				}
			}
		}

		if to == models.ReservationAccepted {
			conv := models.Conversation{
				ReservationID: reservation.ID,
				TravelerID:    reservation.TravelerID,
				GuideID:       reservation.GuideID,
			}
			if err := tx.Create(&conv).Error; err != nil {
				return err
			}
		}

		return tx.Preload("Booking").First(&reservation, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func moveSlot(tx *gorm.DB, slotID uuid.UUID, target models.SlotStatus) error {
	var slot models.AvailabilitySlot
	if err := tx.First(&slot, "id = ?", slotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if slot.Status == target {
		// A booked slot already belongs to another accepted reservation.
		if target == models.SlotBooked {
			return ErrSlotUnavailable
		}
		return nil
	}
	if !slots.CanTransitionSlot(slot.Status, target) {
		return slots.ErrInvalidSlotTransition
	}
	result := tx.Model(&models.AvailabilitySlot{}).
		Where("id = ? AND status = ?", slot.ID, slot.Status).
		Update("status", target)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSlotUnavailable
	}
	return nil
}

func canActOn(caller identity.Caller, r *models.Reservation) bool {
	return caller.Role == models.RoleAdmin || caller.ID == r.TravelerID || caller.ID == r.GuideID
}

func actorAllowed(caller identity.Caller, r *models.Reservation, to models.ReservationStatus) bool {
	if caller.Role == models.RoleAdmin {
		return true
	}
	isGuide := caller.ID == r.GuideID
	isTraveler := caller.ID == r.TravelerID
	switch to {
	case models.ReservationAccepted, models.ReservationCompleted:
		return isGuide
	case models.ReservationCancelled:
		return isGuide || isTraveler
	}
	return false
}

// Get returns a reservation visible to caller: its traveler, its guide or staff.
func (s *ReservationService) Get(ctx context.Context, caller identity.Caller, id uuid.UUID) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := s.db.WithContext(ctx).Preload("Booking").First(&reservation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if !models.IsStaffRole(caller.Role) && caller.ID != reservation.TravelerID && caller.ID != reservation.GuideID {
		return nil, ErrReservationNotFound
	}
	return &reservation, nil
}

// ListMine returns the caller's reservations as traveler or as guide.
func (s *ReservationService) ListMine(ctx context.Context, caller identity.Caller, status string, limit, offset int) ([]models.Reservation, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Reservation{})
	if caller.Role == models.RoleGuide {
		query = query.Where("guide_id = ?", caller.ID)
	} else {
		query = query.Where("traveler_id = ?", caller.ID)
	}
	return listReservations(query, status, limit, offset)
}

// ListAll backs the admin bookings view.
func (s *ReservationService) ListAll(ctx context.Context, status string, limit, offset int) ([]models.Reservation, int64, error) {
	return listReservations(s.db.WithContext(ctx).Model(&models.Reservation{}), status, limit, offset)
}

func listReservations(query *gorm.DB, status string, limit, offset int) ([]models.Reservation, int64, error) {
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Reservation
	err := query.Scopes(database.Paginate(limit, offset)).
		Preload("Booking").
		Order("created_at DESC").
		Find(&rows).Error
	return rows, total, err
}

// Quote prices sessions for a guide without reserving anything.
func (s *ReservationService) Quote(ctx context.Context, guideID uuid.UUID, durations []int) (pricing.Quote, error) {
	var guide models.GuideProfile
	db := s.db.WithContext(ctx)
	if err := db.First(&guide, "uid = ?", guideID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pricing.Quote{}, ErrGuideNotFound
		}
		return pricing.Quote{}, err
	}
	return pricing.Calculate(rateCardFor(&guide), durations, s.settings.Policy(db))
}

func rateCardFor(guide *models.GuideProfile) pricing.RateCard {
	flat := make(map[int]int64, len(slots.AllowedDurations))
	for _, hours := range slots.AllowedDurations {
		flat[hours] = guide.FlatPrice(hours)
	}
	return pricing.RateCard{BaseRateHour: guide.BaseRateHour, Flat: flat}
}
