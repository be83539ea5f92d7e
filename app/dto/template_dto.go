package dto

import "time"

// TemplateVariableDTO declares one placeholder of a template body
type TemplateVariableDTO struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Type        string   `json:"type" validate:"required,oneof=text number date boolean select"`
	Required    bool     `json:"required"`
	Default     *string  `json:"default,omitempty"`
	Options     []string `json:"options,omitempty"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=500"`
}

// TemplateDTO is a registered content template
type TemplateDTO struct {
	UUID        string                `json:"uuid"`
	Name        string                `json:"name"`
	ContentType string                `json:"content_type"`
	Description *string               `json:"description,omitempty"`
	Body        string                `json:"body"`
	Variables   []TemplateVariableDTO `json:"variables"`
	IsActive    bool                  `json:"is_active"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// RegisterTemplateRequest creates or replaces a template by name
type RegisterTemplateRequest struct {
	Name        string                `json:"name" validate:"required,max=100"`
	ContentType string                `json:"content_type" validate:"required"`
	Description *string               `json:"description,omitempty" validate:"omitempty,max=500"`
	Body        string                `json:"body" validate:"required,max=10000"`
	Variables   []TemplateVariableDTO `json:"variables" validate:"omitempty,dive"`
}

// TemplateResponse wraps a single template
type TemplateResponse struct {
	Message  string      `json:"message"`
	Template TemplateDTO `json:"template"`
}

// ListTemplatesResponse wraps a template listing
type ListTemplatesResponse struct {
	Message   string        `json:"message"`
	Templates []TemplateDTO `json:"templates"`
}

// RenderTemplateRequest renders a template with caller values
type RenderTemplateRequest struct {
	Name   string            `json:"name" validate:"required"`
	Values map[string]string `json:"values"`
}

// RenderTemplateResponse carries the rendered text
type RenderTemplateResponse struct {
	Message string `json:"message"`
	Text    string `json:"text"`
}

// TemplateSuggestionDTO pairs a template with its persona affinity
type TemplateSuggestionDTO struct {
	Template TemplateDTO `json:"template"`
	Affinity float64     `json:"affinity"`
}

// SuggestTemplatesResponse wraps ranked template suggestions
type SuggestTemplatesResponse struct {
	Message     string                  `json:"message"`
	Suggestions []TemplateSuggestionDTO `json:"suggestions"`
}
