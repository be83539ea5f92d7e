package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Approval statuses for generated content. Status starts at draft and is
// only ever changed by an explicit approve/reject call, never automatically.
const (
	ContentStatusDraft    = "draft"
	ContentStatusApproved = "approved"
	ContentStatusRejected = "rejected"
)

// Generation backends
const (
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
)

// GeneratedContent is one variation produced by a generation request.
// Metrics holds the quality score snapshot taken at generation time;
// Params holds the request parameters that produced this variation.
type GeneratedContent struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_generated_content_uuid" json:"uuid"`
	PersonaID    uint            `gorm:"not null;index:idx_generated_content_persona_id" json:"persona_id"`
	Persona      Persona         `gorm:"foreignKey:PersonaID;references:ID" json:"persona,omitempty"`
	ContentType  string          `gorm:"size:50;not null;index:idx_generated_content_type" json:"content_type"`
	Text         string          `gorm:"type:text;not null" json:"text"`
	Backend      string          `gorm:"size:30;not null;index:idx_generated_content_backend" json:"backend"`
	QualityScore float64         `gorm:"not null;index:idx_generated_content_score" json:"quality_score"`
	Metrics      json.RawMessage `gorm:"type:jsonb;default:'{}'" json:"metrics"`
	Params       json.RawMessage `gorm:"type:jsonb;default:'{}'" json:"params"`
	Status       string          `gorm:"size:20;not null;default:draft;index:idx_generated_content_status" json:"status"`
	CreatedAt    time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_generated_content_created_at" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (GeneratedContent) TableName() string {
	return "generated_content"
}

// GeneratedContentFilter represents filter criteria for generated content queries
type GeneratedContentFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	PersonaID     *uint
	ContentType   *string
	Backend       *string
	Status        *string
	MinScore      *float64
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// IsValidContentStatus reports whether s is a known approval status
func IsValidContentStatus(s string) bool {
	switch s {
	case ContentStatusDraft, ContentStatusApproved, ContentStatusRejected:
		return true
	}
	return false
}

// IsValidBackend reports whether b names a known generation backend
func IsValidBackend(b string) bool {
	return b == BackendOpenAI || b == BackendAnthropic
}
