package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles understood by the authorization layer.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a marketplace account. Admin accounts manage categories,
// users and admin-authored listings; regular accounts buy and sell.
type User struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Name          string    `gorm:"size:255" json:"name"`
	PasswordHash  string    `gorm:"size:255;not null" json:"-"`
	Role          string    `gorm:"size:32;not null;default:user" json:"role"`
	Banned        bool      `gorm:"not null;default:false" json:"banned"`
	Verified      bool      `gorm:"not null;default:false" json:"verified"`
	LocationLabel string    `gorm:"size:255" json:"location_label"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when none was provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
