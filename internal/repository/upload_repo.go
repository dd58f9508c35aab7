package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/trolukyanrl/jorhatx/internal/models"
)

// UploadRepository records stored binary assets.
type UploadRepository interface {
	Create(ctx context.Context, upload *models.Upload) error
	ByPublicID(ctx context.Context, publicID string) (models.Upload, error)
	ByChecksum(ctx context.Context, checksum string) (models.Upload, error)
}

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository constructs an upload repository backed by GORM.
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(ctx context.Context, upload *models.Upload) error {
	return r.db.WithContext(ctx).Create(upload).Error
}

func (r *uploadRepository) ByPublicID(ctx context.Context, publicID string) (models.Upload, error) {
	var upload models.Upload
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&upload).Error
	if err != nil {
		return models.Upload{}, err
	}
	return upload, nil
}

func (r *uploadRepository) ByChecksum(ctx context.Context, checksum string) (models.Upload, error) {
	var upload models.Upload
	err := r.db.WithContext(ctx).Where("checksum = ?", checksum).First(&upload).Error
	if err != nil {
		return models.Upload{}, err
	}
	return upload, nil
}
