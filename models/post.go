package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post is a piece of content owned by the user whose id equals UserID.
type Post struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	UserID    string    `gorm:"size:36;index;not null" json:"userId" bson:"userId"`
	Content   string    `gorm:"type:text;not null" json:"content" bson:"content"`
	CreatedAt time.Time `gorm:"index" json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// OwnerID implements the ownership policy.
func (p *Post) OwnerID() string { return p.UserID }

// PrepareCreate assigns an id and timestamps to a record about to be inserted.
func (p *Post) PrepareCreate(now time.Time) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	p.PrepareCreate(time.Now())
	return nil
}
