package services

import (
	"context"

	"github.com/wanderguide/marketplace-api/internal/database"
	"github.com/wanderguide/marketplace-api/internal/models"
	"gorm.io/gorm"
)

type AdminService struct {
	db *gorm.DB
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) ListUsers(ctx context.Context, role string, limit, offset int) ([]models.User, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	err := query.Scopes(database.Paginate(limit, offset)).Order("created_at DESC").Find(&users).Error
	return users, total, err
}

// ListGuides returns every guide profile, optionally filtered by verification.
func (s *AdminService) ListGuides(ctx context.Context, verified *bool, limit, offset int) ([]models.GuideProfile, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.GuideProfile{})
	if verified != nil {
		query = query.Where("verified = ?", *verified)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var guides []models.GuideProfile
	err := query.Scopes(database.Paginate(limit, offset)).Preload("City").Order("created_at DESC").Find(&guides).Error
	return guides, total, err
}
