package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/wanderguide/marketplace-api/internal/database"
	"github.com/wanderguide/marketplace-api/internal/models"
	"gorm.io/gorm"
)

var ErrConversationNotFound = errors.New("conversation not found")

// ContentRejectedError carries the content filter reason for a blocked message.
type ContentRejectedError struct {
	Reason  string
	Message string
}

func (e *ContentRejectedError) Error() string {
	return e.Message
}

type MessagingService struct {
	db         *gorm.DB
	filter     *ContentFilter
	moderation *ModerationService
}

func NewMessagingService(db *gorm.DB, filter *ContentFilter, moderation *ModerationService) *MessagingService {
	return &MessagingService{db: db, filter: filter, moderation: moderation}
}

func (s *MessagingService) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var rows []models.Conversation
	err := s.db.WithContext(ctx).
		Where("traveler_id = ? OR guide_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (s *MessagingService) conversation(ctx context.Context, userID, id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.WithContext(ctx).First(&conv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, ErrConversationNotFound
	}
	return &conv, nil
}

func (s *MessagingService) ListMessages(ctx context.Context, userID, conversationID uuid.UUID, limit, offset int) ([]models.Message, error) {
	if _, err := s.conversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	var rows []models.Message
	err := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Scopes(database.Paginate(limit, offset)).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (s *MessagingService) Send(ctx context.Context, userID, conversationID uuid.UUID, body string) (*models.Message, error) {
	conv, err := s.conversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	recipient := conv.GuideID
	if userID == conv.GuideID {
		recipient = conv.TravelerID
	}
	blocked, err := s.moderation.IsBlocked(ctx, recipient, userID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, ErrBlocked
	}
	if ok, reason := s.filter.Check(body); !ok {
		return nil, &ContentRejectedError{Reason: reason, Message: s.filter.RejectionMessage(reason)}
	}
	msg := models.Message{ConversationID: conversationID, SenderID: userID, Body: body}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}
