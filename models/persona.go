package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Persona tone labels. The set is open; these are the values the
// questionnaire offers and the tone lexicons know about.
const (
	ToneCasual       = "casual"
	ToneProfessional = "professional"
	ToneEdgy         = "edgy"
	ToneFriendly     = "friendly"
	ToneMysterious   = "mysterious"
)

// Persona represents the derived voice of an artist used to condition
// content generation. At most one persona per artist is active at a time;
// questionnaire resubmissions and file uploads mutate the active persona
// in place (upsert), they never append a second one.
type Persona struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	UUID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_personas_uuid" json:"uuid"`
	ArtistID       uint            `gorm:"not null;index:idx_personas_artist_id" json:"artist_id"`
	Artist         Artist          `gorm:"foreignKey:ArtistID;references:ID" json:"artist,omitempty"`
	Name           string          `gorm:"size:255;not null" json:"name"`
	Tone           string          `gorm:"size:50;not null;index:idx_personas_tone" json:"tone"`
	TargetAudience string          `gorm:"type:text" json:"target_audience"`
	ThemeKeywords  pq.StringArray  `gorm:"type:text[]" json:"theme_keywords"`
	VoiceTraits    json.RawMessage `gorm:"type:jsonb;default:'{}'" json:"voice_traits"`
	IsActive       *bool           `gorm:"default:true;index:idx_personas_is_active,where:is_active IS TRUE" json:"is_active"`
	CreatedAt      time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_personas_created_at" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Responses []QuestionnaireResponse `gorm:"foreignKey:PersonaID;references:ID" json:"responses,omitempty"`
}

func (Persona) TableName() string {
	return "personas"
}

// PersonaFilter represents filter criteria for persona queries
type PersonaFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	ArtistID      *uint
	Tone          *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// VoiceTraitsMap decodes the jsonb voice traits column
func (p *Persona) VoiceTraitsMap() (map[string]string, error) {
	traits := map[string]string{}
	if len(p.VoiceTraits) == 0 {
		return traits, nil
	}
	if err := json.Unmarshal(p.VoiceTraits, &traits); err != nil {
		return nil, err
	}
	return traits, nil
}
