package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/wanderguide/marketplace-api/internal/cache"
	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/models"
	"github.com/wanderguide/marketplace-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrCityNotFound  = errors.New("city not found")
	ErrCitySlugTaken = errors.New("city slug already exists")
)

const cityListKey = "cities:all"

func citySlugKey(slug string) string { return "cities:slug:" + slug }

type CityService struct {
	db     *gorm.DB
	loader *cache.Loader
}

func NewCityService(db *gorm.DB, loader *cache.Loader) *CityService {
	return &CityService{db: db, loader: loader}
}

func (s *CityService) List(ctx context.Context) ([]models.City, error) {
	var cities []models.City
	err := s.loader.Load(ctx, cityListKey, &cities, func(ctx context.Context) (interface{}, error) {
		var rows []models.City
		if err := s.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
			return nil, err
		}
		return rows, nil
	})
	return cities, err
}

func (s *CityService) GetBySlug(ctx context.Context, slug string) (*models.City, error) {
	var city models.City
	err := s.loader.Load(ctx, citySlugKey(slug), &city, func(ctx context.Context) (interface{}, error) {
		var row models.City
		if err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCityNotFound
			}
			return nil, err
		}
		return row, nil
	})
	if err != nil {
		return nil, err
	}
	return &city, nil
}

func (s *CityService) Create(ctx context.Context, req *dto.CityRequest) (*models.City, error) {
	city := models.City{}
	applyCity(&city, req)
	if city.Slug == "" {
		return nil, &ValidationError{Message: "slug could not be derived from name"}
	}
	if err := s.ensureSlugFree(ctx, city.Slug, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&city).Error; err != nil {
		return nil, err
	}
	s.loader.Invalidate(ctx, cityListKey)
	return &city, nil
}

func (s *CityService) Update(ctx context.Context, id uuid.UUID, req *dto.CityRequest) (*models.City, error) {
	db := s.db.WithContext(ctx)
	var city models.City
	if err := db.First(&city, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCityNotFound
		}
		return nil, err
	}
	oldSlug := city.Slug
	applyCity(&city, req)
	if err := s.ensureSlugFree(ctx, city.Slug, city.ID); err != nil {
		return nil, err
	}
	if err := db.Save(&city).Error; err != nil {
		return nil, err
	}
	s.loader.Invalidate(ctx, cityListKey, citySlugKey(oldSlug), citySlugKey(city.Slug))
	s.loader.Bump(ctx, guideListNamespace)
	return &city, nil
}

func (s *CityService) Delete(ctx context.Context, id uuid.UUID) error {
	db := s.db.WithContext(ctx)
	var city models.City
	if err := db.First(&city, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCityNotFound
		}
		return err
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.GuideProfile{}).Where("city_id = ?", id).Update("city_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&city).Error
	})
	if err != nil {
		return err
	}
	s.loader.Invalidate(ctx, cityListKey, citySlugKey(city.Slug))
	s.loader.Bump(ctx, guideListNamespace)
	return nil
}

func (s *CityService) ensureSlugFree(ctx context.Context, slug string, self uuid.UUID) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.City{}).
		Where("slug = ? AND id <> ?", slug, self).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrCitySlugTaken
	}
	return nil
}

func applyCity(city *models.City, req *dto.CityRequest) {
	city.Name = strings.TrimSpace(req.Name)
	city.CountryCode = strings.ToUpper(req.CountryCode)
	city.Slug = utils.Slugify(req.Slug)
	if city.Slug == "" {
		city.Slug = utils.Slugify(req.Name)
	}
	city.Latitude = req.Latitude
	city.Longitude = req.Longitude
	city.Timezone = req.Timezone
}
