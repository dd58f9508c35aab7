package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/trolukyanrl/jorhatx/internal/models"
)

// CategoryRepository persists listing categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	ByID(ctx context.Context, id string) (models.Category, error)
	ByName(ctx context.Context, name string) (models.Category, error)
	List(ctx context.Context, limit int) ([]models.Category, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository constructs a category repository backed by GORM.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) ByID(ctx context.Context, id string) (models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if err != nil {
		return models.Category{}, err
	}
	return category, nil
}

// ByName performs a case-insensitive equality lookup. Name uniqueness is
// soft-enforced through this query, not a schema constraint.
func (r *categoryRepository) ByName(ctx context.Context, name string) (models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name))).
		First(&category).Error
	if err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (r *categoryRepository) List(ctx context.Context, limit int) ([]models.Category, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	var categories []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Limit(limit).Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Rename(ctx context.Context, id, name string) error {
	return r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Update("name", name).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{}).Error
}
