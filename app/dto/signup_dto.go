// Package dto contains request and response shapes for the HTTP surface
package dto

// SignupRequest is the artist registration payload
type SignupRequest struct {
	Email      string  `json:"email" validate:"required,email,max=255"`
	Password   string  `json:"password" validate:"required,min=8,max=128"`
	ArtistName string  `json:"artist_name" validate:"required,min=1,max=255"`
	Genre      *string `json:"genre,omitempty" validate:"omitempty,max=100"`
	Bio        *string `json:"bio,omitempty" validate:"omitempty,max=2000"`
}

// SignupResponse returns the new account with its initial session
type SignupResponse struct {
	Message string           `json:"message"`
	Artist  AuthArtistDTO    `json:"artist"`
	Session ArtistSessionDTO `json:"session"`
}

// AuthArtistDTO is the artist shape embedded in auth responses
type AuthArtistDTO struct {
	ID         uint    `json:"id"`
	UUID       string  `json:"uuid"`
	Email      string  `json:"email"`
	ArtistName string  `json:"artist_name"`
	Genre      *string `json:"genre,omitempty"`
	IsActive   bool    `json:"is_active"`
	CreatedAt  string  `json:"created_at"`
}

// ArtistSessionDTO carries the issued token pair
type ArtistSessionDTO struct {
	SessionToken string `json:"session_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
	CreatedAt    string `json:"created_at"`
}
