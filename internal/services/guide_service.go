package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/wanderguide/marketplace-api/internal/cache"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/models"
	"github.com/wanderguide/marketplace-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrGuideNotFound    = errors.New("guide not found")
	ErrTravelerNotFound = errors.New("traveler profile not found")
	ErrNotGuide         = errors.New("only guides can manage a guide profile")
)

// guideListNamespace versions every cached search page. Anything that changes
// what a listing shows (profiles, verification, ratings, cities) bumps it.
const guideListNamespace = "guides:list"

type GuideService struct {
	db     *gorm.DB
	loader *cache.Loader
}

func NewGuideService(db *gorm.DB, loader *cache.Loader) *GuideService {
	return &GuideService{db: db, loader: loader}
}

type guidePage struct {
	Items []models.GuideProfile `json:"items"`
	Total int64                 `json:"total"`
}

// List serves one page of the public search. Pages are cached per normalized
// filter under the current generation of guideListNamespace.
func (s *GuideService) List(ctx context.Context, f dto.GuideFilter) ([]models.GuideProfile, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	filterKey, err := json.Marshal(f)
	if err != nil {
		return nil, 0, err
	}
	key := guideListNamespace + ":" + s.loader.Generation(ctx, guideListNamespace) + ":" + string(filterKey)

	var page guidePage
	err = s.loader.Load(ctx, key, &page, func(ctx context.Context) (interface{}, error) {
		return s.search(ctx, f)
	})
	if err != nil {
		return nil, 0, err
	}
	if page.Items == nil {
		page.Items = []models.GuideProfile{}
	}
	return page.Items, page.Total, nil
}

// search narrows by the columns SQL can match directly; language, theme,
// derived hourly price and free text are applied by FilterGuides.
func (s *GuideService) search(ctx context.Context, f dto.GuideFilter) (guidePage, error) {
	db := s.db.WithContext(ctx)
	query := db.Model(&models.GuideProfile{}).Preload("City")
	if f.City != "" {
		query = query.Where("city_id IN (?)", db.Model(&models.City{}).Select("id").Where("slug = ?", f.City))
	}
	if f.Verified != nil {
		query = query.Where("verified = ?", *f.Verified)
	}
	if f.MinRating != nil {
		query = query.Where("rating_avg >= ?", *f.MinRating)
	}

	var guides []models.GuideProfile
	if err := query.Find(&guides).Error; err != nil {
		return guidePage{}, err
	}

	filtered := FilterGuides(guides, f)
	page := guidePage{Items: []models.GuideProfile{}, Total: int64(len(filtered))}
	if f.Offset >= len(filtered) {
		return page, nil
	}
	end := f.Offset + f.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	page.Items = filtered[f.Offset:end]
	return page, nil
}

func (s *GuideService) GetByHandle(ctx context.Context, handle string) (*dto.GuideDetailResponse, error) {
	db := s.db.WithContext(ctx)
	var profile models.GuideProfile
	if err := db.Preload("City").Where("handle = ?", handle).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuideNotFound
		}
		return nil, err
	}

	var reviews []models.Review
	if err := db.Where("guide_id = ?", profile.UID).Order("created_at DESC").Limit(5).Find(&reviews).Error; err != nil {
		return nil, err
	}
	return &dto.GuideDetailResponse{Profile: &profile, RecentReviews: reviews}, nil
}

func (s *GuideService) GetByID(ctx context.Context, uid uuid.UUID) (*models.GuideProfile, error) {
	var profile models.GuideProfile
	if err := s.db.WithContext(ctx).First(&profile, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGuideNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// UpsertProfile creates or updates the caller's guide profile. The handle is
// assigned once, from the display name, on first save.
func (s *GuideService) UpsertProfile(ctx context.Context, caller uuid.UUID, role string, req *dto.GuideProfileRequest) (*models.GuideProfile, error) {
	if role != models.RoleGuide {
		return nil, ErrNotGuide
	}

	var profile models.GuideProfile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.CityID != nil {
			var count int64
			if err := tx.Model(&models.City{}).Where("id = ?", *req.CityID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrCityNotFound
			}
		}

		err := tx.First(&profile, "uid = ?", caller).Error
		isNew := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !isNew {
			return err
		}

		if isNew {
			handle, err := uniqueHandle(tx, req.DisplayName)
			if err != nil {
				return err
			}
			profile = models.GuideProfile{UID: caller, Handle: handle, MaxGroupSize: 6}
		}

		profile.DisplayName = req.DisplayName
		profile.CityID = req.CityID
		profile.Location = req.Location
		profile.Bio = req.Bio
		profile.Languages = req.Languages
		profile.Themes = req.Themes
		profile.PriceH4 = req.PriceH4
		profile.PriceH6 = req.PriceH6
		profile.PriceH8 = req.PriceH8
		profile.BaseRateHour = req.BaseRateHour
		if req.MaxGroupSize > 0 {
			profile.MaxGroupSize = req.MaxGroupSize
		}

		if isNew {
			return tx.Create(&profile).Error
		}
		return tx.Save(&profile).Error
	})
	if err != nil {
		return nil, err
	}
	s.loader.Bump(ctx, guideListNamespace)
	return &profile, nil
}

func (s *GuideService) SetVerified(ctx context.Context, uid uuid.UUID, verified bool) (*models.GuideProfile, error) {
	result := s.db.WithContext(ctx).Model(&models.GuideProfile{}).Where("uid = ?", uid).Update("verified", verified)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrGuideNotFound
	}
	s.loader.Bump(ctx, guideListNamespace)
	return s.GetByID(ctx, uid)
}

func (s *GuideService) GetTraveler(ctx context.Context, uid uuid.UUID) (*models.TravelerProfile, error) {
	var profile models.TravelerProfile
	if err := s.db.WithContext(ctx).First(&profile, "uid = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTravelerNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (s *GuideService) UpdateTraveler(ctx context.Context, uid uuid.UUID, req *dto.TravelerProfileRequest) (*models.TravelerProfile, error) {
	profile, err := s.GetTraveler(ctx, uid)
	if err != nil {
		return nil, err
	}
	if req.HomeCountry != "" {
		profile.HomeCountry = req.HomeCountry
	}
	if req.PreferredLanguage != "" {
		profile.PreferredLanguage = req.PreferredLanguage
	}
	if err := s.db.WithContext(ctx).Save(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func uniqueHandle(tx *gorm.DB, name string) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		base = "guide"
	}
	candidate := base
	for i := 2; ; i++ {
		var count int64
		if err := tx.Model(&models.GuideProfile{}).Where("handle = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}
