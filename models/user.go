package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a registered account. Passwords are stored as bcrypt hashes only.
// The user's refresh-token set lives in RefreshToken records keyed by token id.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	Name         string    `gorm:"size:128;not null" json:"name" bson:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email" bson:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-" bson:"password"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`

	RefreshTokens []RefreshToken `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-" bson:"-"`
}

// NormalizeEmail trims and lower-cases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// PrepareCreate assigns an id and timestamps to a record about to be inserted.
func (u *User) PrepareCreate(now time.Time) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}

// BeforeCreate hook ensures id and timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.PrepareCreate(time.Now())
	return nil
}
