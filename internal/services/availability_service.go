package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wanderguide/marketplace-api/internal/database"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/models"
	"github.com/wanderguide/marketplace-api/internal/slots"
	"gorm.io/gorm"
)

var ErrSlotNotDeletable = errors.New("only open or closed slots can be deleted")

type AvailabilityService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{db: db, now: time.Now}
}

// Create publishes a batch of slots for guideID. The guide profile row is
// locked first so concurrent batches for one guide see each other's slots.
func (s *AvailabilityService) Create(ctx context.Context, guideID uuid.UUID, req *dto.CreateSlotsRequest) ([]models.AvailabilitySlot, error) {
	candidates := make([]slots.Interval, len(req.Slots))
	for i, in := range req.Slots {
		if !slots.ValidDuration(in.DurationHours) {
			return nil, slots.ErrInvalidDuration
		}
		candidates[i] = slots.NewInterval(in.StartTime, in.DurationHours)
	}

	created := make([]models.AvailabilitySlot, 0, len(req.Slots))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var guide models.GuideProfile
		if err := database.ForUpdate(tx).First(&guide, "uid = ?", guideID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuideNotFound
			}
			return err
		}

		existing, err := activeIntervals(tx, guideID, uuid.Nil)
		if err != nil {
			return err
		}
		if err := slots.ValidateNew(candidates, existing, s.now()); err != nil {
			return err
		}

		for i, c := range candidates {
			slot := models.AvailabilitySlot{
				GuideID:       guideID,
				StartTime:     c.Start,
				EndTime:       c.End,
				DurationHours: req.Slots[i].DurationHours,
				Status:        models.SlotOpen,
			}
			if err := tx.Create(&slot).Error; err != nil {
				return err
			}
			created = append(created, slot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// activeIntervals returns the guide's non-closed slots, skipping exclude.
func activeIntervals(tx *gorm.DB, guideID, exclude uuid.UUID) ([]slots.Interval, error) {
	var rows []models.AvailabilitySlot
	if err := tx.Where("guide_id = ? AND status <> ? AND id <> ?", guideID, models.SlotClosed, exclude).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]slots.Interval, len(rows))
	for i, r := range rows {
		out[i] = slots.Interval{Start: r.StartTime.UTC(), End: r.EndTime.UTC()}
	}
	return out, nil
}

// ListOpen returns open future slots of the guide with handle, optionally
// bounded by [from, to).
func (s *AvailabilityService) ListOpen(ctx context.Context, handle string, from, to *time.Time) ([]models.AvailabilitySlot, error) {
	db := s.db.WithContext(ctx)
	var guide models.GuideProfile
	if err := db.Select("uid").Where("handle = ?", handle).First(&guide).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuideNotFound
		}
		return nil, err
	}

	start := s.now().UTC()
	if from != nil && from.After(start) {
		start = from.UTC()
	}
	query := db.Where("guide_id = ? AND status = ? AND start_time > ?", guide.UID, models.SlotOpen, start)
	if to != nil {
		query = query.Where("start_time < ?", to.UTC())
	}

	var rows []models.AvailabilitySlot
	if err := query.Order("start_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *AvailabilityService) Get(ctx context.Context, id uuid.UUID) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	if err := s.db.WithContext(ctx).First(&slot, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &slot, nil
}

// Update lets the owning guide open or close a slot, or move an open slot.
func (s *AvailabilityService) Update(ctx context.Context, guideID, id uuid.UUID, req *dto.UpdateSlotRequest) (*models.AvailabilitySlot, error) {
	var slot models.AvailabilitySlot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.ForUpdate(tx).First(&models.GuideProfile{}, "uid = ?", guideID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGuideNotFound
			}
			return err
		}
		if err := tx.First(&slot, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}
		if slot.GuideID != guideID {
			return ErrForbidden
		}

		original := slot.Status
		if req.StartTime != nil || req.DurationHours != nil {
			if slot.Status != models.SlotOpen {
				return ErrSlotUnavailable
			}
			start, hours := slot.StartTime, slot.DurationHours
			if req.StartTime != nil {
				start = *req.StartTime
			}
			if req.DurationHours != nil {
				hours = *req.DurationHours
			}
			if !slots.ValidDuration(hours) {
				return slots.ErrInvalidDuration
			}
			moved := slots.NewInterval(start, hours)
			existing, err := activeIntervals(tx, guideID, slot.ID)
			if err != nil {
				return err
			}
			if err := slots.ValidateNew([]slots.Interval{moved}, existing, s.now()); err != nil {
				return err
			}
			slot.StartTime, slot.EndTime, slot.DurationHours = moved.Start, moved.End, hours
		}

		if req.Status != nil && *req.Status != slot.Status {
			if !slots.GuideCanToggle(slot.Status) {
				return ErrSlotUnavailable
			}
			if !slots.CanTransitionSlot(slot.Status, *req.Status) {
				return slots.ErrInvalidSlotTransition
			}
			if *req.Status == models.SlotOpen {
				existing, err := activeIntervals(tx, guideID, slot.ID)
				if err != nil {
					return err
				}
				if err := slots.ValidateNew([]slots.Interval{{Start: slot.StartTime.UTC(), End: slot.EndTime.UTC()}}, existing, s.now()); err != nil {
					return err
				}
			}
			slot.Status = *req.Status
		}

		result := tx.Model(&models.AvailabilitySlot{}).
			Where("id = ? AND status = ?", slot.ID, original).
			Updates(map[string]interface{}{
				"start_time":     slot.StartTime,
				"end_time":       slot.EndTime,
				"duration_hours": slot.DurationHours,
				"status":         slot.Status,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSlotUnavailable
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (s *AvailabilityService) Delete(ctx context.Context, guideID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var slot models.AvailabilitySlot
		if err := tx.First(&slot, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSlotNotFound
			}
			return err
		}
		if slot.GuideID != guideID {
			return ErrForbidden
		}
		result := tx.Where("id = ? AND status IN ?", id, []models.SlotStatus{models.SlotOpen, models.SlotClosed}).
			Delete(&models.AvailabilitySlot{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSlotNotDeletable
		}
		return nil
	})
}
