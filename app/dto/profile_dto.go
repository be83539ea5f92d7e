package dto

import "time"

// ArtistProfileDTO is the full artist profile shape
type ArtistProfileDTO struct {
	ID              uint       `json:"id"`
	UUID            string     `json:"uuid"`
	Email           string     `json:"email"`
	ArtistName      string     `json:"artist_name"`
	Genre           *string    `json:"genre,omitempty"`
	Bio             *string    `json:"bio,omitempty"`
	WebsiteURL      *string    `json:"website_url,omitempty"`
	IsActive        bool       `json:"is_active"`
	IsEmailVerified bool       `json:"is_email_verified"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// GetProfileResponse wraps the profile for responses
type GetProfileResponse struct {
	Message string           `json:"message"`
	Artist  ArtistProfileDTO `json:"artist"`
}

// UpdateProfileRequest applies partial profile updates
type UpdateProfileRequest struct {
	ArtistName *string `json:"artist_name,omitempty" validate:"omitempty,min=1,max=255"`
	Genre      *string `json:"genre,omitempty" validate:"omitempty,max=100"`
	Bio        *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
	WebsiteURL *string `json:"website_url,omitempty" validate:"omitempty,url,max=500"`
}
