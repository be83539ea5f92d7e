package dto

// LoginRequest is the email/password login payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// LoginResponse returns the artist with a fresh session
type LoginResponse struct {
	Message string           `json:"message"`
	Artist  AuthArtistDTO    `json:"artist"`
	Session ArtistSessionDTO `json:"session"`
}

// RefreshTokenRequest rotates a session using its refresh token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
