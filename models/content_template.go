package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Template variable types
const (
	VariableTypeText    = "text"
	VariableTypeNumber  = "number"
	VariableTypeDate    = "date"
	VariableTypeBoolean = "boolean"
	VariableTypeSelect  = "select"
)

// Content types templates and generated content are partitioned by
const (
	ContentTypeInstagramPost   = "instagram_post"
	ContentTypeTweet           = "tweet"
	ContentTypeFacebookPost    = "facebook_post"
	ContentTypeShowAnnounce    = "show_announcement"
	ContentTypeReleaseAnnounce = "release_announcement"
)

// TemplateVariable declares one typed slot of a template body
type TemplateVariable struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Default     *string  `json:"default,omitempty"`
	Options     []string `json:"options,omitempty"` // Required for select type
	Description string   `json:"description,omitempty"`
}

// TemplateVariables is the jsonb column holding the declared variable list
type TemplateVariables []TemplateVariable

func (v TemplateVariables) Value() (driver.Value, error) {
	return json.Marshal(v)
}

func (v *TemplateVariables) Scan(value any) error {
	switch data := value.(type) {
	case []byte:
		return json.Unmarshal(data, v)
	case string:
		return json.Unmarshal([]byte(data), v)
	case nil:
		*v = nil
		return nil
	}
	return fmt.Errorf("unsupported type for TemplateVariables: %T", value)
}

// ContentTemplate is a reusable body with {{placeholder}} slots.
// Invariant (enforced at registration): the set of placeholder names in
// Body exactly equals the set of declared variable names.
// Templates are global and soft-deleted via IsActive.
type ContentTemplate struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	UUID        uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:uk_templates_uuid" json:"uuid"`
	Name        string            `gorm:"size:255;not null;uniqueIndex:uk_templates_name" json:"name"`
	ContentType string            `gorm:"size:50;not null;index:idx_templates_content_type" json:"content_type"`
	Description *string           `gorm:"type:text" json:"description,omitempty"`
	Body        string            `gorm:"type:text;not null" json:"body"`
	Variables   TemplateVariables `gorm:"type:jsonb;not null;default:'[]'" json:"variables"`
	IsActive    *bool             `gorm:"default:true;index:idx_templates_is_active" json:"is_active"`
	CreatedAt   time.Time         `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_templates_created_at" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (ContentTemplate) TableName() string {
	return "content_templates"
}

// ContentTemplateFilter represents filter criteria for template queries
type ContentTemplateFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	Name          *string
	ContentType   *string
	IsActive      *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// IsValidVariableType reports whether t is one of the declared variable types
func IsValidVariableType(t string) bool {
	switch t {
	case VariableTypeText, VariableTypeNumber, VariableTypeDate, VariableTypeBoolean, VariableTypeSelect:
		return true
	}
	return false
}

// VariableNames returns the declared variable names in declaration order
func (t *ContentTemplate) VariableNames() []string {
	names := make([]string, 0, len(t.Variables))
	for _, v := range t.Variables {
		names = append(names, v.Name)
	}
	return names
}
