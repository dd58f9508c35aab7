package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/trolukyanrl/jorhatx/internal/models"
)

// MessageRepository persists chat messages and their read state.
type MessageRepository interface {
	// CreateAndStampThread inserts the message and patches the parent
	// thread's last-message summary inside a single transaction.
	CreateAndStampThread(ctx context.Context, message *models.Message, threadID uint) error
	ListByThread(ctx context.Context, threadKey string, limit int) ([]models.Message, error)
	MarkRead(ctx context.Context, threadKey, receiverID string) (int64, error)
	MarkDelivered(ctx context.Context, threadKey, receiverID string) (int64, error)
	CountUnread(ctx context.Context, threadKey, receiverID string) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository constructs a message repository backed by GORM.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) CreateAndStampThread(ctx context.Context, message *models.Message, threadID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}

		stamp := message.CreatedAt
		if stamp.IsZero() {
			stamp = time.Now().UTC()
		}

		return tx.Model(&models.Thread{}).Where("id = ?", threadID).Updates(map[string]interface{}{
			"last_message":    message.Body,
			"last_message_at": stamp,
			"last_sender_id":  message.SenderID,
		}).Error
	})
}

func (r *messageRepository) ListByThread(ctx context.Context, threadKey string, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 1000 {
		limit = 500
	}

	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("thread_key = ?", threadKey).
		Order("created_at ASC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flips every unread message addressed to receiverID. The
// update is not atomic with any other write, but retrying is safe: rows
// already read match nothing.
func (r *messageRepository) MarkRead(ctx context.Context, threadKey, receiverID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("thread_key = ? AND receiver_id = ? AND is_read = ?", threadKey, receiverID, false).
		Updates(map[string]interface{}{
			"status":  models.MessageStatusRead,
			"is_read": true,
		})
	return result.RowsAffected, result.Error
}

// MarkDelivered advances sent messages to delivered. Read messages are
// left alone so the status transition stays monotonic.
func (r *messageRepository) MarkDelivered(ctx context.Context, threadKey, receiverID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("thread_key = ? AND receiver_id = ? AND status = ?", threadKey, receiverID, models.MessageStatusSent).
		Update("status", models.MessageStatusDelivered)
	return result.RowsAffected, result.Error
}

func (r *messageRepository) CountUnread(ctx context.Context, threadKey, receiverID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("thread_key = ? AND receiver_id = ? AND is_read = ?", threadKey, receiverID, false).
		Count(&count).Error
	return count, err
}
