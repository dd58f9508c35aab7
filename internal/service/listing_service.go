package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/trolukyanrl/jorhatx/internal/dto"
	"github.com/trolukyanrl/jorhatx/internal/models"
	"github.com/trolukyanrl/jorhatx/internal/repository"
)

var (
	// ErrListingNotFound indicates the listing does not exist.
	ErrListingNotFound = errors.New("listing not found")
	// ErrListingForbidden indicates the caller is neither the owner nor
	// an admin.
	ErrListingForbidden = errors.New("not allowed to modify this listing")
	// ErrCategoryNotFound indicates the referenced category does not exist.
	ErrCategoryNotFound = errors.New("category not found")
)

// ListingService owns the classifieds feed: publishing, browsing,
// updating and removing listings.
type ListingService interface {
	Create(ctx context.Context, ownerID, ownerRole string, req dto.ListingCreateRequest) (dto.ListingResponse, error)
	ByID(ctx context.Context, id string) (dto.ListingResponse, error)
	List(ctx context.Context, query dto.ListingQuery) (dto.ListingPage, error)
	ListByOwner(ctx context.Context, ownerID string) ([]dto.ListingResponse, error)
	Update(ctx context.Context, id, actorID, actorRole string, req dto.ListingUpdateRequest) (dto.ListingResponse, error)
	Delete(ctx context.Context, id, actorID, actorRole string) error
}

type listingService struct {
	listings   repository.ListingRepository
	categories repository.CategoryRepository
	resolveURL func(publicID string) string
	validator  *validator.Validate
	logger     zerolog.Logger
	tracer     trace.Tracer
	sanitizer  *bluemonday.Policy
}

// NewListingService constructs the listing service. resolveURL maps a
// stored image public id to a browser-viewable URL and may be nil.
func NewListingService(listings repository.ListingRepository, categories repository.CategoryRepository, resolveURL func(string) string, validate *validator.Validate, logger zerolog.Logger) ListingService {
	return &listingService{
		listings:   listings,
		categories: categories,
		resolveURL: resolveURL,
		validator:  validate,
		logger:     logger.With().Str("component", "listing_service").Logger(),
		tracer:     otel.Tracer("listing-service"),
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

func (s *listingService) Create(ctx context.Context, ownerID, ownerRole string, req dto.ListingCreateRequest) (dto.ListingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ListingResponse{}, err
	}

	ctx, span := s.tracer.Start(ctx, "listing.create")
	defer span.End()

	categoryID := strings.TrimSpace(req.CategoryID)
	if categoryID != "" {
		if _, err := s.categories.ByID(ctx, categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ListingResponse{}, ErrCategoryNotFound
			}
			return dto.ListingResponse{}, err
		}
	}

	imageIDs, err := encodeImageIDs(req.ImageIDs)
	if err != nil {
		return dto.ListingResponse{}, err
	}

	listing := models.Listing{
		Title:       strings.TrimSpace(s.sanitizer.Sanitize(req.Title)),
		CategoryID:  categoryID,
		Price:       req.Price,
		Description: strings.TrimSpace(s.sanitizer.Sanitize(req.Description)),
		Location:    strings.TrimSpace(req.Location),
		Address:     strings.TrimSpace(req.Address),
		City:        strings.TrimSpace(req.City),
		State:       strings.TrimSpace(req.State),
		Pincode:     strings.TrimSpace(req.Pincode),
		ImageIDs:    imageIDs,
		OwnerID:     ownerID,
		OwnerRole:   ownerRole,
	}

	if err := s.listings.Create(ctx, &listing); err != nil {
		return dto.ListingResponse{}, err
	}

	s.logger.Info().
		Str("listing_id", listing.ID).
		Str("owner_id", ownerID).
		Msg("listing published")

	return s.toResponse(listing), nil
}

func (s *listingService) ByID(ctx context.Context, id string) (dto.ListingResponse, error) {
	listing, err := s.listings.ByID(ctx, strings.TrimSpace(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.ListingResponse{}, ErrListingNotFound
	}
	if err != nil {
		return dto.ListingResponse{}, err
	}
	return s.toResponse(listing), nil
}

func (s *listingService) List(ctx context.Context, query dto.ListingQuery) (dto.ListingPage, error) {
	if err := s.validator.Struct(query); err != nil {
		return dto.ListingPage{}, err
	}

	filter := repository.ListingFilter{
		CategoryID: strings.TrimSpace(query.CategoryID),
		Search:     strings.TrimSpace(query.Search),
		Page:       query.Page,
		PageSize:   query.PageSize,
	}

	listings, total, err := s.listings.List(ctx, filter)
	if err != nil {
		return dto.ListingPage{}, err
	}

	items := make([]dto.ListingResponse, 0, len(listings))
	for _, listing := range listings {
		items = append(items, s.toResponse(listing))
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = repository.DefaultListingPageSize
	}

	return dto.ListingPage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *listingService) ListByOwner(ctx context.Context, ownerID string) ([]dto.ListingResponse, error) {
	listings, _, err := s.listings.List(ctx, repository.ListingFilter{OwnerID: ownerID, PageSize: 100})
	if err != nil {
		return nil, err
	}

	items := make([]dto.ListingResponse, 0, len(listings))
	for _, listing := range listings {
		items = append(items, s.toResponse(listing))
	}
	return items, nil
}

func (s *listingService) Update(ctx context.Context, id, actorID, actorRole string, req dto.ListingUpdateRequest) (dto.ListingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ListingResponse{}, err
	}

	listing, err := s.authorisedListing(ctx, id, actorID, actorRole)
	if err != nil {
		return dto.ListingResponse{}, err
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(s.sanitizer.Sanitize(*req.Title))
	}
	if req.CategoryID != nil {
		categoryID := strings.TrimSpace(*req.CategoryID)
		if categoryID != "" {
			if _, err := s.categories.ByID(ctx, categoryID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return dto.ListingResponse{}, ErrCategoryNotFound
				}
				return dto.ListingResponse{}, err
			}
		}
		updates["category_id"] = categoryID
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Description != nil {
		updates["description"] = strings.TrimSpace(s.sanitizer.Sanitize(*req.Description))
	}
	if req.Location != nil {
		updates["location"] = strings.TrimSpace(*req.Location)
	}
	if req.Address != nil {
		updates["address"] = strings.TrimSpace(*req.Address)
	}
	if req.City != nil {
		updates["city"] = strings.TrimSpace(*req.City)
	}
	if req.State != nil {
		updates["state"] = strings.TrimSpace(*req.State)
	}
	if req.Pincode != nil {
		updates["pincode"] = strings.TrimSpace(*req.Pincode)
	}
	if req.ImageIDs != nil {
		imageIDs, err := encodeImageIDs(*req.ImageIDs)
		if err != nil {
			return dto.ListingResponse{}, err
		}
		updates["image_ids"] = imageIDs
	}

	if len(updates) > 0 {
		if err := s.listings.Update(ctx, listing.ID, updates); err != nil {
			return dto.ListingResponse{}, err
		}
	}

	return s.ByID(ctx, listing.ID)
}

func (s *listingService) Delete(ctx context.Context, id, actorID, actorRole string) error {
	listing, err := s.authorisedListing(ctx, id, actorID, actorRole)
	if err != nil {
		return err
	}

	if err := s.listings.Delete(ctx, listing.ID); err != nil {
		return err
	}

	s.logger.Info().
		Str("listing_id", listing.ID).
		Str("actor_id", actorID).
		Msg("listing removed")
	return nil
}

// authorisedListing loads the listing and verifies the actor may modify
// it. Admins may modify any listing, users only their own.
func (s *listingService) authorisedListing(ctx context.Context, id, actorID, actorRole string) (models.Listing, error) {
	listing, err := s.listings.ByID(ctx, strings.TrimSpace(id))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Listing{}, ErrListingNotFound
	}
	if err != nil {
		return models.Listing{}, err
	}

	if actorRole != models.RoleAdmin && listing.OwnerID != actorID {
		return models.Listing{}, ErrListingForbidden
	}
	return listing, nil
}

func (s *listingService) toResponse(listing models.Listing) dto.ListingResponse {
	return dto.NewListingResponse(listing, decodeImageIDs(listing.ImageIDs), s.resolveURL)
}

func encodeImageIDs(ids []string) (datatypes.JSON, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func decodeImageIDs(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return []string{}
	}
	return ids
}
