package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Listing is a marketplace item for sale, owned by a user or an admin.
// ImageIDs holds an ordered JSON array of storage public ids.
type Listing struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	CategoryID  string         `gorm:"type:uuid;index" json:"category_id"`
	Price       float64        `gorm:"not null" json:"price"`
	Description string         `gorm:"type:text" json:"description"`
	Location    string         `gorm:"size:255" json:"location"`
	Address     string         `gorm:"size:255" json:"address"`
	City        string         `gorm:"size:128" json:"city"`
	State       string         `gorm:"size:128" json:"state"`
	Pincode     string         `gorm:"size:16" json:"pincode"`
	ImageIDs    datatypes.JSON `gorm:"type:json" json:"image_ids"`
	OwnerID     string         `gorm:"type:uuid;index;not null" json:"owner_id"`
	OwnerRole   string         `gorm:"size:32;not null;default:user" json:"owner_role"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// Category names a listing bucket. Uniqueness is soft-enforced by the
// service via an equality query, not a schema constraint.
type Category struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:128;index;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// WishlistEntry marks a listing as a favorite of a user. At most one
// entry exists per (user, listing) pair.
type WishlistEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"type:uuid;index;not null" json:"user_id"`
	ListingID string    `gorm:"type:uuid;index;not null" json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Upload records a stored binary asset and where it can be viewed.
type Upload struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	PublicID   string    `gorm:"size:255;index;not null" json:"public_id"`
	URL        string    `gorm:"size:1024;not null" json:"url"`
	MimeType   string    `gorm:"size:128" json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	Checksum   string    `gorm:"size:64;index" json:"checksum"`
	UploaderID string    `gorm:"type:uuid;index" json:"uploader_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *Upload) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
