package models

import (
	"encoding/json"
	"time"

	"github.com/amirphl/Ame-no-Uzume/utils"
)

type ArtistSession struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ArtistID       uint            `gorm:"not null;index:idx_sessions_artist_id" json:"artist_id"`
	Artist         Artist          `gorm:"foreignKey:ArtistID;references:ID" json:"artist,omitempty"`
	SessionToken   string          `gorm:"size:512;not null;uniqueIndex:uk_sessions_session_token" json:"-"` // Never serialize token
	RefreshToken   *string         `gorm:"size:512;uniqueIndex:uk_sessions_refresh_token" json:"-"`          // Never serialize refresh token
	DeviceInfo     json.RawMessage `gorm:"type:jsonb" json:"device_info,omitempty"`
	IPAddress      *string         `gorm:"type:inet;index:idx_sessions_ip_address" json:"ip_address,omitempty"`
	UserAgent      *string         `gorm:"type:text" json:"user_agent,omitempty"`
	IsActive       *bool           `gorm:"default:true;index:idx_sessions_is_active" json:"is_active"`
	CreatedAt      time.Time       `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
	LastAccessedAt time.Time       `gorm:"default:CURRENT_TIMESTAMP;index:idx_sessions_last_accessed" json:"last_accessed_at"`
	ExpiresAt      time.Time       `gorm:"not null;index:idx_sessions_expires_at" json:"expires_at"`
}

func (ArtistSession) TableName() string {
	return "artist_sessions"
}

// ArtistSessionFilter represents filter criteria for session queries
type ArtistSessionFilter struct {
	ID            *uint
	ArtistID      *uint
	IsActive      *bool
	IPAddress     *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	ExpiresAfter  *time.Time
	ExpiresBefore *time.Time
}

func (s *ArtistSession) IsExpired() bool {
	return utils.UTCNow().After(s.ExpiresAt)
}

func (s *ArtistSession) IsValid() bool {
	return utils.IsTrue(s.IsActive) && !s.IsExpired()
}
