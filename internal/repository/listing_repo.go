package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/trolukyanrl/jorhatx/internal/models"
)

// DefaultListingPageSize applies when a query does not set a page size.
const DefaultListingPageSize = 20

// ListingFilter narrows and paginates listing queries.
type ListingFilter struct {
	CategoryID string
	OwnerID    string
	OwnerRole  string
	Search     string
	Page       int
	PageSize   int
}

// ListingRepository persists marketplace listings.
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	ByID(ctx context.Context, id string) (models.Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]models.Listing, int64, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Listing, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository constructs a listing repository backed by GORM.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) Create(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepository) ByID(ctx context.Context, id string) (models.Listing, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&listing).Error
	if err != nil {
		return models.Listing{}, err
	}
	return listing, nil
}

func (r *listingRepository) List(ctx context.Context, filter ListingFilter) ([]models.Listing, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Listing{})

	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.OwnerID != "" {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.OwnerRole != "" {
		query = query.Where("owner_role = ?", filter.OwnerRole)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = DefaultListingPageSize
	}

	var listings []models.Listing
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

func (r *listingRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Listing, error) {
	if len(ids) == 0 {
		return []models.Listing{}, nil
	}

	var listings []models.Listing
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("created_at DESC").Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *listingRepository) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Listing{}).Where("id = ?", id).Updates(updates).Error
}

func (r *listingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Listing{}).Error
}
