package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/wanderguide/marketplace-api/internal/cache"
	"github.com/wanderguide/marketplace-api/internal/config"
	"github.com/wanderguide/marketplace-api/internal/database"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/identity"
	"github.com/wanderguide/marketplace-api/internal/models"
	"gorm.io/gorm"
)

var (
	ErrReviewNotFound       = errors.New("review not found")
	ErrReviewExists         = errors.New("reservation already reviewed")
	ErrReviewNotAllowed     = errors.New("only completed reservations can be reviewed")
	ErrEditWindowExpired    = errors.New("review can no longer be edited")
	ErrNotReviewParticipant = errors.New("only the author or the reviewed guide can change a review")
)

type ReviewService struct {
	db         *gorm.DB
	loader     *cache.Loader
	editWindow time.Duration
	now        func() time.Time
}

func NewReviewService(db *gorm.DB, cfg *config.Config, loader *cache.Loader) *ReviewService {
	return &ReviewService{db: db, loader: loader, editWindow: cfg.ReviewEditWindow, now: time.Now}
}

func (s *ReviewService) ListForGuide(ctx context.Context, guideID uuid.UUID, limit, offset int) ([]models.Review, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Review{}).Where("guide_id = ?", guideID)
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.Review
	err := query.Scopes(database.Paginate(limit, offset)).Order("created_at DESC").Find(&rows).Error
	return rows, total, err
}

// Create stores the traveler's review of a completed reservation and refreshes
// the guide's rating aggregates.
func (s *ReviewService) Create(ctx context.Context, caller identity.Caller, req *dto.CreateReviewRequest) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reservation models.Reservation
		if err := tx.First(&reservation, "id = ?", req.ReservationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}
		if reservation.TravelerID != caller.ID {
			return ErrReservationNotFound
		}
		if reservation.Status != models.ReservationCompleted {
			return ErrReviewNotAllowed
		}

		var count int64
		if err := tx.Model(&models.Review{}).Where("reservation_id = ?", reservation.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrReviewExists
		}

		review = models.Review{
			ReservationID: reservation.ID,
			GuideID:       reservation.GuideID,
			TravelerID:    caller.ID,
			Rating:        req.Rating,
			Text:          req.Text,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return refreshGuideRating(tx, reservation.GuideID)
	})
	if err != nil {
		return nil, err
	}
	s.loader.Bump(ctx, guideListNamespace)
	return &review, nil
}

// Update applies an author edit (rating, text) within the edit window, or a
// guide response. Each party may only touch its own fields.
func (s *ReviewService) Update(ctx context.Context, caller identity.Caller, id uuid.UUID, req *dto.UpdateReviewRequest) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&review, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReviewNotFound
			}
			return err
		}

		authorEdit := req.Rating != nil || req.Text != nil
		switch {
		case caller.ID == review.TravelerID:
			if req.GuideResponse != nil {
				return ErrNotReviewParticipant
			}
			if authorEdit && s.now().Sub(review.CreatedAt) > s.editWindow {
				return ErrEditWindowExpired
			}
		case caller.ID == review.GuideID:
			if authorEdit {
				return ErrNotReviewParticipant
			}
		default:
			return ErrNotReviewParticipant
		}

		if req.Rating != nil {
			review.Rating = *req.Rating
		}
		if req.Text != nil {
			review.Text = *req.Text
		}
		if req.GuideResponse != nil {
			now := s.now().UTC()
			review.GuideResponse = *req.GuideResponse
			review.GuideRespondedAt = &now
		}
		if err := tx.Save(&review).Error; err != nil {
			return err
		}
		if req.Rating != nil {
			return refreshGuideRating(tx, review.GuideID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if req.Rating != nil {
		s.loader.Bump(ctx, guideListNamespace)
	}
	return &review, nil
}

func refreshGuideRating(tx *gorm.DB, guideID uuid.UUID) error {
	var agg struct {
		Avg   float64
		Count int
	}
	if err := tx.Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("guide_id = ?", guideID).
		Scan(&agg).Error; err != nil {
		return err
	}
	return tx.Model(&models.GuideProfile{}).Where("uid = ?", guideID).
		Updates(map[string]interface{}{"rating_avg": agg.Avg, "rating_count": agg.Count}).Error
}
