package dto

import "time"

// QuestionnaireAnswerDTO is one submitted answer
type QuestionnaireAnswerDTO struct {
	QuestionKey  string `json:"question_key" validate:"required,max=100"`
	QuestionText string `json:"question_text,omitempty" validate:"omitempty,max=1000"`
	Answer       string `json:"answer" validate:"required,max=5000"`
	AnswerType   string `json:"answer_type,omitempty" validate:"omitempty,oneof=text multiple_choice scale boolean"`
}

// SubmitQuestionnaireRequest carries a batch of answers. Resubmitting a
// question key overwrites the earlier answer.
type SubmitQuestionnaireRequest struct {
	Answers []QuestionnaireAnswerDTO `json:"answers" validate:"required,min=1,dive"`
}

// QuestionnaireResponseDTO is one stored answer echoed back
type QuestionnaireResponseDTO struct {
	QuestionKey  string `json:"question_key"`
	QuestionText string `json:"question_text"`
	Answer       string `json:"answer"`
	AnswerType   string `json:"answer_type"`
}

// PersonaDTO is the derived persona with its answer set
type PersonaDTO struct {
	UUID           string                     `json:"uuid"`
	Name           string                     `json:"name"`
	Tone           string                     `json:"tone"`
	TargetAudience string                     `json:"target_audience"`
	ThemeKeywords  []string                   `json:"theme_keywords"`
	VoiceTraits    map[string]string          `json:"voice_traits"`
	IsActive       bool                       `json:"is_active"`
	CreatedAt      time.Time                  `json:"created_at"`
	UpdatedAt      time.Time                  `json:"updated_at"`
	Responses      []QuestionnaireResponseDTO `json:"responses,omitempty"`
}

// PersonaResponse wraps a persona for responses
type PersonaResponse struct {
	Message string     `json:"message"`
	Persona PersonaDTO `json:"persona"`
}
