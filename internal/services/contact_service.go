package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wanderguide/marketplace-api/internal/dto"
	"github.com/wanderguide/marketplace-api/internal/models"
	"gorm.io/gorm"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// ContactService stores inbound contact and newsletter requests. Delivery is
// handled outside this API.
type ContactService struct {
	db *gorm.DB
}

func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{db: db}
}

func (s *ContactService) Submit(ctx context.Context, req *dto.ContactRequest) (*models.ContactMessage, error) {
	msg := models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Subject: strings.TrimSpace(req.Subject),
		Message: req.Message,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// Subscribe is idempotent per email; an existing row keeps its token.
func (s *ContactService) Subscribe(ctx context.Context, email string) (*models.NewsletterSubscription, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	db := s.db.WithContext(ctx)

	var sub models.NewsletterSubscription
	err := db.Where("email = ?", email).First(&sub).Error
	if err == nil {
		return &sub, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	token, err := randomToken(32)
	if err != nil {
		return nil, err
	}
	sub = models.NewsletterSubscription{Email: email, Token: token}
	if err := db.Create(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *ContactService) Confirm(ctx context.Context, token string) (*models.NewsletterSubscription, error) {
	db := s.db.WithContext(ctx)
	var sub models.NewsletterSubscription
	if err := db.Where("token = ?", token).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	if sub.ConfirmedAt == nil {
		now := time.Now().UTC()
		sub.ConfirmedAt = &now
		if err := db.Model(&sub).Update("confirmed_at", now).Error; err != nil {
			return nil, err
		}
	}
	return &sub, nil
}
