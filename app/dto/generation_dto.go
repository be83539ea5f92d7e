package dto

import "time"

// GenerateContentRequest asks for content variations for the active persona
type GenerateContentRequest struct {
	ContentType    string            `json:"content_type" validate:"required"`
	Context        string            `json:"context,omitempty" validate:"omitempty,max=2000"`
	MaxLength      int               `json:"max_length,omitempty" validate:"omitempty,min=1,max=10000"`
	VariationCount int               `json:"variation_count,omitempty" validate:"omitempty,min=1,max=5"`
	TemplateName   string            `json:"template_name,omitempty"`
	TemplateValues map[string]string `json:"template_values,omitempty"`
	Backend        string            `json:"backend" validate:"required"`
}

// QualityMetricsDTO is the per-variation quality breakdown
type QualityMetricsDTO struct {
	Overall          float64  `json:"overall"`
	Readability      float64  `json:"readability"`
	Engagement       float64  `json:"engagement"`
	BrandConsistency float64  `json:"brand_consistency"`
	Issues           []string `json:"issues"`
	Suggestions      []string `json:"suggestions"`
}

// GeneratedContentDTO is one generated variation
type GeneratedContentDTO struct {
	UUID         string            `json:"uuid,omitempty"`
	Text         string            `json:"text"`
	ContentType  string            `json:"content_type"`
	Backend      string            `json:"backend"`
	QualityScore float64           `json:"quality_score"`
	Metrics      QualityMetricsDTO `json:"metrics"`
	Status       string            `json:"status"`
	Saved        bool              `json:"saved"`
	SaveError    *string           `json:"save_error,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// GenerateContentResponse carries ranked variations, best first
type GenerateContentResponse struct {
	Message  string                `json:"message"`
	CacheHit bool                  `json:"cache_hit"`
	Items    []GeneratedContentDTO `json:"items"`
}

// ListContentResponse wraps a page of generated content
type ListContentResponse struct {
	Message string                `json:"message"`
	Items   []GeneratedContentDTO `json:"items"`
}

// UpdateContentStatusRequest moves a generated item through review
type UpdateContentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft approved rejected"`
}
