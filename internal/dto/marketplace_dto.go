package dto

import (
	"time"

	"github.com/trolukyanrl/jorhatx/internal/models"
)

// CategoryMutationRequest creates or renames a category.
type CategoryMutationRequest struct {
	Name string `json:"name" validate:"required,min=2,max=128"`
}

// CategoryResponse is the serialized category representation.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCategoryResponse converts a model into a DTO.
func NewCategoryResponse(category models.Category) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
	}
}

// NewCategoryResponseSlice converts a slice of models into DTOs.
func NewCategoryResponseSlice(categories []models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, NewCategoryResponse(category))
	}
	return out
}

// WishlistToggleRequest flips a favorite marker for the caller.
type WishlistToggleRequest struct {
	ListingID string `json:"listing_id" validate:"required,max=64"`
}

// WishlistReplaceRequest swaps the caller's whole favorite set.
type WishlistReplaceRequest struct {
	ListingIDs []string `json:"listing_ids" validate:"max=200,dive,max=64"`
}

// WishlistResponse reports the caller's favorite listing ids.
type WishlistResponse struct {
	ListingIDs []string `json:"listing_ids"`
}

// UserRoleRequest changes an account's role (admin operation).
type UserRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

// UserBanRequest bans or unbans an account (admin operation).
type UserBanRequest struct {
	Banned bool `json:"banned"`
}

// UserQuery filters the admin user directory.
type UserQuery struct {
	Search   string `query:"search" validate:"omitempty,max=255"`
	Role     string `query:"role" validate:"omitempty,oneof=admin user"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// UserPage wraps a paginated user directory slice.
type UserPage struct {
	Items    []UserResponse `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// UploadResponse reports a stored binary asset.
type UploadResponse struct {
	ID        string    `json:"id"`
	PublicID  string    `json:"public_id"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mime_type"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUploadResponse converts a model into a DTO.
func NewUploadResponse(upload models.Upload) UploadResponse {
	return UploadResponse{
		ID:        upload.ID,
		PublicID:  upload.PublicID,
		URL:       upload.URL,
		MimeType:  upload.MimeType,
		SizeBytes: upload.SizeBytes,
		CreatedAt: upload.CreatedAt,
	}
}
