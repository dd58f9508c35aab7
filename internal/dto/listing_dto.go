package dto

import (
	"time"

	"github.com/trolukyanrl/jorhatx/internal/models"
)

// ListingCreateRequest is the payload to publish a listing.
type ListingCreateRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=255"`
	CategoryID  string   `json:"category_id" validate:"omitempty,max=64"`
	Price       float64  `json:"price" validate:"required,gt=0"`
	Description string   `json:"description" validate:"omitempty,max=8000"`
	Location    string   `json:"location" validate:"omitempty,max=255"`
	Address     string   `json:"address" validate:"omitempty,max=255"`
	City        string   `json:"city" validate:"omitempty,max=128"`
	State       string   `json:"state" validate:"omitempty,max=128"`
	Pincode     string   `json:"pincode" validate:"omitempty,max=16"`
	ImageIDs    []string `json:"image_ids" validate:"omitempty,max=12,dive,max=255"`
}

// ListingUpdateRequest patches an existing listing; nil fields are left
// untouched.
type ListingUpdateRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=3,max=255"`
	CategoryID  *string   `json:"category_id" validate:"omitempty,max=64"`
	Price       *float64  `json:"price" validate:"omitempty,gt=0"`
	Description *string   `json:"description" validate:"omitempty,max=8000"`
	Location    *string   `json:"location" validate:"omitempty,max=255"`
	Address     *string   `json:"address" validate:"omitempty,max=255"`
	City        *string   `json:"city" validate:"omitempty,max=128"`
	State       *string   `json:"state" validate:"omitempty,max=128"`
	Pincode     *string   `json:"pincode" validate:"omitempty,max=16"`
	ImageIDs    *[]string `json:"image_ids" validate:"omitempty,max=12,dive,max=255"`
}

// ListingQuery filters the public listing feed.
type ListingQuery struct {
	CategoryID string `query:"category_id" validate:"omitempty,max=64"`
	Search     string `query:"search" validate:"omitempty,max=255"`
	Page       int    `query:"page" validate:"omitempty,min=1"`
	PageSize   int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ListingResponse is the serialized listing representation. ImageURLs
// are derived from the stored public ids at response time.
type ListingResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CategoryID  string    `json:"category_id,omitempty"`
	Price       float64   `json:"price"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	State       string    `json:"state,omitempty"`
	Pincode     string    `json:"pincode,omitempty"`
	ImageIDs    []string  `json:"image_ids"`
	ImageURLs   []string  `json:"image_urls"`
	OwnerID     string    `json:"owner_id"`
	OwnerRole   string    `json:"owner_role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListingPage wraps a paginated feed slice.
type ListingPage struct {
	Items    []ListingResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// NewListingResponse converts a model into a DTO. imageIDs must already
// be decoded from the stored JSON column; resolveURL derives a view URL
// per id and may be nil.
func NewListingResponse(listing models.Listing, imageIDs []string, resolveURL func(string) string) ListingResponse {
	if imageIDs == nil {
		imageIDs = []string{}
	}

	urls := make([]string, 0, len(imageIDs))
	if resolveURL != nil {
		for _, id := range imageIDs {
			urls = append(urls, resolveURL(id))
		}
	}

	return ListingResponse{
		ID:          listing.ID,
		Title:       listing.Title,
		CategoryID:  listing.CategoryID,
		Price:       listing.Price,
		Description: listing.Description,
		Location:    listing.Location,
		Address:     listing.Address,
		City:        listing.City,
		State:       listing.State,
		Pincode:     listing.Pincode,
		ImageIDs:    imageIDs,
		ImageURLs:   urls,
		OwnerID:     listing.OwnerID,
		OwnerRole:   listing.OwnerRole,
		CreatedAt:   listing.CreatedAt,
		UpdatedAt:   listing.UpdatedAt,
	}
}
