package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/trolukyanrl/jorhatx/internal/models"
)

// WishlistRepository persists user favorite markers.
type WishlistRepository interface {
	ListingIDs(ctx context.Context, userID string, limit int) ([]string, error)
	Entries(ctx context.Context, userID string, limit int) ([]models.WishlistEntry, error)
	Find(ctx context.Context, userID, listingID string) ([]models.WishlistEntry, error)
	Create(ctx context.Context, entry *models.WishlistEntry) error
	DeleteByID(ctx context.Context, id uint) error
	DeletePair(ctx context.Context, userID, listingID string) error
}

type wishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository constructs a wishlist repository backed by GORM.
func NewWishlistRepository(db *gorm.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) ListingIDs(ctx context.Context, userID string, limit int) ([]string, error) {
	entries, err := r.Entries(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(entries))
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.ListingID == "" {
			continue
		}
		if _, ok := seen[entry.ListingID]; ok {
			continue
		}
		seen[entry.ListingID] = struct{}{}
		ids = append(ids, entry.ListingID)
	}
	return ids, nil
}

func (r *wishlistRepository) Entries(ctx context.Context, userID string, limit int) ([]models.WishlistEntry, error) {
	if limit <= 0 || limit > 400 {
		limit = 200
	}

	var entries []models.WishlistEntry
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Limit(limit).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Find returns every entry for the pair. More than one row means the
// at-most-one invariant was violated upstream; callers delete them all.
func (r *wishlistRepository) Find(ctx context.Context, userID, listingID string) ([]models.WishlistEntry, error) {
	var entries []models.WishlistEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Limit(10).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *wishlistRepository) Create(ctx context.Context, entry *models.WishlistEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *wishlistRepository) DeleteByID(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.WishlistEntry{}).Error
}

func (r *wishlistRepository) DeletePair(ctx context.Context, userID, listingID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&models.WishlistEntry{}).Error
}
