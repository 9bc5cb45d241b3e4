package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment represents a reply to a post.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	PostID    string    `gorm:"size:36;index;not null" json:"postId" bson:"postId"`
	UserID    string    `gorm:"size:36;index;not null" json:"userId" bson:"userId"`
	Content   string    `gorm:"type:text;not null" json:"content" bson:"content"`
	CreatedAt time.Time `gorm:"index" json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (c *Comment) OwnerID() string { return c.UserID }

func (c *Comment) PrepareCreate(now time.Time) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	c.PrepareCreate(time.Now())
	return nil
}
