package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/trolukyanrl/jorhatx/internal/dto"
	"github.com/trolukyanrl/jorhatx/internal/models"
	"github.com/trolukyanrl/jorhatx/internal/repository"
)

const wishlistLimit = 200

// WishlistService manages each user's favorite listings.
type WishlistService interface {
	IDs(ctx context.Context, userID string) (dto.WishlistResponse, error)
	Listings(ctx context.Context, userID string) ([]dto.ListingResponse, error)
	// Toggle adds the listing if absent and removes it if present.
	// Returns true when the listing is favorited after the call.
	Toggle(ctx context.Context, userID string, req dto.WishlistToggleRequest) (bool, error)
	// Replace swaps the user's whole favorite set for the given ids.
	Replace(ctx context.Context, userID string, req dto.WishlistReplaceRequest) (dto.WishlistResponse, error)
}

type wishlistService struct {
	wishlist  repository.WishlistRepository
	listings  repository.ListingRepository
	resolve   func(publicID string) string
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewWishlistService constructs the wishlist service. resolveURL maps a
// stored image public id to a view URL and may be nil.
func NewWishlistService(wishlist repository.WishlistRepository, listings repository.ListingRepository, resolveURL func(string) string, validate *validator.Validate, logger zerolog.Logger) WishlistService {
	return &wishlistService{
		wishlist:  wishlist,
		listings:  listings,
		resolve:   resolveURL,
		validator: validate,
		logger:    logger.With().Str("component", "wishlist_service").Logger(),
	}
}

func (s *wishlistService) IDs(ctx context.Context, userID string) (dto.WishlistResponse, error) {
	ids, err := s.wishlist.ListingIDs(ctx, userID, wishlistLimit)
	if err != nil {
		return dto.WishlistResponse{}, err
	}
	if ids == nil {
		ids = []string{}
	}
	return dto.WishlistResponse{ListingIDs: ids}, nil
}

// Listings resolves the favorite set into full listing payloads.
// Favorites pointing at deleted listings are silently skipped.
func (s *wishlistService) Listings(ctx context.Context, userID string) ([]dto.ListingResponse, error) {
	ids, err := s.wishlist.ListingIDs(ctx, userID, wishlistLimit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []dto.ListingResponse{}, nil
	}

	listings, err := s.listings.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ListingResponse, 0, len(listings))
	for _, listing := range listings {
		items = append(items, dto.NewListingResponse(listing, decodeImageIDs(listing.ImageIDs), s.resolve))
	}
	return items, nil
}

func (s *wishlistService) Toggle(ctx context.Context, userID string, req dto.WishlistToggleRequest) (bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return false, err
	}

	listingID := strings.TrimSpace(req.ListingID)
	if _, err := s.listings.ByID(ctx, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrListingNotFound
		}
		return false, err
	}

	existing, err := s.wishlist.Find(ctx, userID, listingID)
	if err != nil {
		return false, err
	}

	if len(existing) > 0 {
		// Duplicate markers can accumulate from racing toggles; clear
		// the whole pair rather than a single row.
		if err := s.wishlist.DeletePair(ctx, userID, listingID); err != nil {
			return false, err
		}
		return false, nil
	}

	entry := models.WishlistEntry{UserID: userID, ListingID: listingID}
	if err := s.wishlist.Create(ctx, &entry); err != nil {
		return false, err
	}
	return true, nil
}

func (s *wishlistService) Replace(ctx context.Context, userID string, req dto.WishlistReplaceRequest) (dto.WishlistResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.WishlistResponse{}, err
	}

	desired := map[string]bool{}
	for _, id := range req.ListingIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			desired[id] = true
		}
	}

	current, err := s.wishlist.ListingIDs(ctx, userID, wishlistLimit)
	if err != nil {
		return dto.WishlistResponse{}, err
	}

	for _, id := range current {
		if !desired[id] {
			if err := s.wishlist.DeletePair(ctx, userID, id); err != nil {
				return dto.WishlistResponse{}, err
			}
		}
		delete(desired, id)
	}

	for id := range desired {
		entry := models.WishlistEntry{UserID: userID, ListingID: id}
		if err := s.wishlist.Create(ctx, &entry); err != nil {
			return dto.WishlistResponse{}, err
		}
	}

	return s.IDs(ctx, userID)
}
