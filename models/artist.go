// Package models contains domain entities and business models for the artist content platform
package models

import (
	"time"

	"github.com/google/uuid"
)

// Artist represents a registered artist account
// Email is the login identity and must be unique
type Artist struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UUID            uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:uk_artists_uuid" json:"uuid"`
	Email           string     `gorm:"size:255;not null;uniqueIndex:uk_artists_email" json:"email"`
	PasswordHash    string     `gorm:"size:255;not null" json:"-"` // Never serialize password hash
	ArtistName      string     `gorm:"size:255;not null;index:idx_artists_artist_name" json:"artist_name"`
	Genre           *string    `gorm:"size:100" json:"genre,omitempty"`
	Bio             *string    `gorm:"type:text" json:"bio,omitempty"`
	WebsiteURL      *string    `gorm:"size:500" json:"website_url,omitempty"`
	IsActive        *bool      `gorm:"default:true;index:idx_artists_is_active" json:"is_active"`
	IsEmailVerified *bool      `gorm:"default:false" json:"is_email_verified"`
	LastLoginAt     *time.Time `gorm:"index:idx_artists_last_login" json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_artists_created_at" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Artist) TableName() string {
	return "artists"
}

// ArtistFilter represents filter criteria for artist queries
type ArtistFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Email         *string
	ArtistName    *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
