package gorm

import (
	"context"

	"github.com/google/uuid"
	"github.com/mealsmith/api/internal/domain/cooking"
	"github.com/mealsmith/api/internal/ports/outbound"
	apperrors "github.com/mealsmith/api/pkg/errors"
	"gorm.io/gorm"
)

// MessageRepository implements conversation persistence using GORM
type MessageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *gorm.DB) outbound.MessageRepository {
	return &MessageRepository{db: db}
}

// Append stores one conversation turn
func (r *MessageRepository) Append(ctx context.Context, msg *cooking.Message) error {
	model := MessageModel{
		ID:          msg.ID,
		UserID:      msg.UserID,
		UserMessage: msg.UserMessage,
		AIReply:     msg.AIReply,
		CreatedAt:   msg.CreatedAt,
	}

	if result := r.db.WithContext(ctx).Create(&model); result.Error != nil {
		return apperrors.NewDatabaseError("append message", result.Error)
	}
	return nil
}

// ListByUser returns up to limit messages for a user, newest first
func (r *MessageRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*cooking.Message, error) {
	var models []MessageModel

	query := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if result := query.Find(&models); result.Error != nil {
		return nil, apperrors.NewDatabaseError("list messages", result.Error)
	}

	messages := make([]*cooking.Message, 0, len(models))
	for _, m := range models {
		messages = append(messages, &cooking.Message{
			ID:          m.ID,
			UserID:      m.UserID,
			UserMessage: m.UserMessage,
			AIReply:     m.AIReply,
			CreatedAt:   m.CreatedAt,
		})
	}
	return messages, nil
}
