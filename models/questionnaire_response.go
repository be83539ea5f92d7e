package models

import "time"

// Questionnaire answer types
const (
	AnswerTypeText           = "text"
	AnswerTypeMultipleChoice = "multiple_choice"
	AnswerTypeScale          = "scale"
	AnswerTypeBoolean        = "boolean"
)

// Well-known question keys the persona derivation interprets
const (
	QuestionKeyTone           = "tone"
	QuestionKeyTargetAudience = "target_audience"
	QuestionKeyThemes         = "themes"
	QuestionKeyPersonaName    = "persona_name"
)

// QuestionnaireResponse is one answered question belonging to a persona.
// (persona_id, question_key) is unique: resubmitting the same key
// overwrites the previous answer instead of duplicating it.
type QuestionnaireResponse struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	PersonaID    uint      `gorm:"not null;uniqueIndex:uk_responses_persona_question;index:idx_responses_persona_id" json:"persona_id"`
	QuestionKey  string    `gorm:"size:100;not null;uniqueIndex:uk_responses_persona_question" json:"question_key"`
	QuestionText string    `gorm:"type:text;not null" json:"question_text"`
	Answer       string    `gorm:"type:text;not null" json:"answer"`
	AnswerType   string    `gorm:"size:30;not null;default:text" json:"answer_type"`
	CreatedAt    time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt    time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (QuestionnaireResponse) TableName() string {
	return "questionnaire_responses"
}

// QuestionnaireResponseFilter represents filter criteria for response queries
type QuestionnaireResponseFilter struct {
	ID          *uint
	PersonaID   *uint
	QuestionKey *string
	AnswerType  *string
}

// IsValidAnswerType reports whether t is one of the declared answer types
func IsValidAnswerType(t string) bool {
	switch t {
	case AnswerTypeText, AnswerTypeMultipleChoice, AnswerTypeScale, AnswerTypeBoolean:
		return true
	}
	return false
}
