// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/amirphl/Ame-no-Uzume/app/dto"
	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and session tracking
type ClientMetadata struct {
	IPAddress  string            `json:"ip_address"`
	UserAgent  string            `json:"user_agent"`
	RequestID  string            `json:"request_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Additional map[string]string `json:"additional,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Additional: make(map[string]string),
	}
}

// AddAdditional adds additional custom information to the metadata
func (cm *ClientMetadata) AddAdditional(key, value string) {
	if cm.Additional == nil {
		cm.Additional = make(map[string]string)
	}
	cm.Additional[key] = value
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// SetSessionID sets the session ID
func (cm *ClientMetadata) SetSessionID(sessionID string) {
	cm.SessionID = sessionID
}

// ToAuthArtistDTO converts an artist model to AuthArtistDTO for authentication responses
func ToAuthArtistDTO(artist models.Artist) dto.AuthArtistDTO {
	return dto.AuthArtistDTO{
		ID:         artist.ID,
		UUID:       artist.UUID.String(),
		Email:      artist.Email,
		ArtistName: artist.ArtistName,
		Genre:      artist.Genre,
		IsActive:   artist.IsActive != nil && *artist.IsActive,
		CreatedAt:  artist.CreatedAt.Format(time.RFC3339),
	}
}

func ToArtistSessionDTO(session models.ArtistSession) dto.ArtistSessionDTO {
	refreshToken := ""
	if session.RefreshToken != nil {
		refreshToken = *session.RefreshToken
	}
	return dto.ArtistSessionDTO{
		SessionToken: session.SessionToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(session.ExpiresAt.Sub(utils.UTCNow()).Seconds()),
		TokenType:    "Bearer",
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

// ToPersonaDTO converts a persona model with its responses to a DTO
func ToPersonaDTO(persona *models.Persona) dto.PersonaDTO {
	traits, err := persona.VoiceTraitsMap()
	if err != nil {
		traits = map[string]string{}
	}
	out := dto.PersonaDTO{
		UUID:           persona.UUID.String(),
		Name:           persona.Name,
		Tone:           persona.Tone,
		TargetAudience: persona.TargetAudience,
		ThemeKeywords:  persona.ThemeKeywords,
		VoiceTraits:    traits,
		IsActive:       persona.IsActive != nil && *persona.IsActive,
		CreatedAt:      persona.CreatedAt,
		UpdatedAt:      persona.UpdatedAt,
	}
	for _, r := range persona.Responses {
		out.Responses = append(out.Responses, dto.QuestionnaireResponseDTO{
			QuestionKey:  r.QuestionKey,
			QuestionText: r.QuestionText,
			Answer:       r.Answer,
			AnswerType:   r.AnswerType,
		})
	}
	return out
}

// ToTemplateDTO converts a template model to a DTO
func ToTemplateDTO(t *models.ContentTemplate) dto.TemplateDTO {
	out := dto.TemplateDTO{
		UUID:        t.UUID.String(),
		Name:        t.Name,
		ContentType: t.ContentType,
		Description: t.Description,
		Body:        t.Body,
		IsActive:    t.IsActive != nil && *t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	for _, v := range t.Variables {
		out.Variables = append(out.Variables, dto.TemplateVariableDTO{
			Name:        v.Name,
			Type:        v.Type,
			Required:    v.Required,
			Default:     v.Default,
			Options:     v.Options,
			Description: v.Description,
		})
	}
	return out
}
