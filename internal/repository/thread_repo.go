package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/trolukyanrl/jorhatx/internal/models"
)

// ThreadRepository persists conversation threads.
type ThreadRepository interface {
	Create(ctx context.Context, thread *models.Thread) error
	ByKey(ctx context.Context, threadKey string) (models.Thread, error)
	PatchIdentity(ctx context.Context, id uint, listingID, participantOne, participantTwo string) error
	ListForUser(ctx context.Context, userID string, limit int) ([]models.Thread, error)
	SetTyping(ctx context.Context, threadKey, userID string, at time.Time) error
	ClearTyping(ctx context.Context, threadKey string) error
}

type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository constructs a thread repository backed by GORM.
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

func (r *threadRepository) Create(ctx context.Context, thread *models.Thread) error {
	return r.db.WithContext(ctx).Create(thread).Error
}

// ByKey looks a thread up by its deterministic key with an equality
// query. gorm.ErrRecordNotFound propagates when no thread exists.
func (r *threadRepository) ByKey(ctx context.Context, threadKey string) (models.Thread, error) {
	var thread models.Thread
	err := r.db.WithContext(ctx).Where("thread_key = ?", threadKey).First(&thread).Error
	if err != nil {
		return models.Thread{}, err
	}
	return thread, nil
}

// PatchIdentity refreshes the listing/participant columns. Repeated
// calls with the same values are safe.
func (r *threadRepository) PatchIdentity(ctx context.Context, id uint, listingID, participantOne, participantTwo string) error {
	updates := map[string]interface{}{}
	if listingID != "" {
		updates["listing_id"] = listingID
	}
	if participantOne != "" {
		updates["participant_one_id"] = participantOne
	}
	if participantTwo != "" {
		updates["participant_two_id"] = participantTwo
	}
	if len(updates) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Model(&models.Thread{}).Where("id = ?", id).Updates(updates).Error
}

func (r *threadRepository) ListForUser(ctx context.Context, userID string, limit int) ([]models.Thread, error) {
	if limit <= 0 || limit > 400 {
		limit = 200
	}

	var threads []models.Thread
	err := r.db.WithContext(ctx).
		Where("participant_one_id = ? OR participant_two_id = ?", userID, userID).
		Order("COALESCE(last_message_at, created_at) DESC").
		Limit(limit).
		Find(&threads).Error
	if err != nil {
		return nil, err
	}
	return threads, nil
}

// SetTyping stamps the shared typing indicator. Last writer wins.
func (r *threadRepository) SetTyping(ctx context.Context, threadKey, userID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Thread{}).
		Where("thread_key = ?", threadKey).
		Updates(map[string]interface{}{
			"typing_user_id": userID,
			"typing_at":      at,
		}).Error
}

func (r *threadRepository) ClearTyping(ctx context.Context, threadKey string) error {
	return r.db.WithContext(ctx).Model(&models.Thread{}).
		Where("thread_key = ?", threadKey).
		Updates(map[string]interface{}{
			"typing_user_id": "",
			"typing_at":      nil,
		}).Error
}
