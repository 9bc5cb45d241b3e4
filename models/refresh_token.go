package models

import "time"

// RefreshToken is the server-side record of an issued refresh token.
// ID is the token's jti claim; a token is valid only while its record exists.
type RefreshToken struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id" bson:"_id"`
	UserID    string    `gorm:"size:36;index;not null" json:"userId" bson:"userId"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expiresAt" bson:"expiresAt"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// Expired reports whether the record outlived its token.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
