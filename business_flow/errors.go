// Package businessflow contains the core business logic and use cases for persona and content generation workflows
package businessflow

import (
	"errors"
	"fmt"
	"strings"
)

// Business flow error constants
var (
	// Artist-related errors
	ErrArtistNotFound     = errors.New("artist not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")

	// Persona errors
	ErrPersonaNotFound      = errors.New("no active persona found")
	ErrQuestionnaireEmpty   = errors.New("questionnaire has no answers")
	ErrInvalidAnswerType    = errors.New("invalid answer type")
	ErrQuestionKeyRequired  = errors.New("question key is required")
	ErrAnswerRequired       = errors.New("answer is required")
	ErrUploadedFileInvalid  = errors.New("uploaded file could not be parsed")
	ErrUploadedFileTooLarge = errors.New("uploaded file exceeds the size limit")

	// Template errors
	ErrTemplateNotFound    = errors.New("template not found")
	ErrTemplateNameEmpty   = errors.New("template name is required")
	ErrTemplateBodyEmpty   = errors.New("template body is required")
	ErrTemplateTypeEmpty   = errors.New("template content type is required")
	ErrTemplateInvalid     = errors.New("template definition is invalid")
	ErrMissingVariables    = errors.New("required template variables are missing")
	ErrInvalidContentType  = errors.New("invalid content type")
	ErrInvalidVariableType = errors.New("invalid variable type")

	// Generation errors
	ErrGenerationBackend      = errors.New("generation backend call failed")
	ErrInvalidBackend         = errors.New("invalid generation backend")
	ErrInvalidVariationCount  = errors.New("variation count out of range")
	ErrInvalidContentStatus   = errors.New("invalid content status")
	ErrGeneratedContentAbsent = errors.New("generated content not found")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError enumerates every offending field of a template
// definition or substitution call, not just the first.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrTemplateInvalid
}

func NewValidationError(problems []string) *ValidationError {
	return &ValidationError{Problems: problems}
}

// MissingVariableError lists every required variable absent from a
// substitution call.
type MissingVariableError struct {
	Missing []string
}

func (e *MissingVariableError) Error() string {
	return "missing required variables: " + strings.Join(e.Missing, ", ")
}

func (e *MissingVariableError) Unwrap() error {
	return ErrMissingVariables
}

func IsArtistNotFound(err error) bool {
	return errors.Is(err, ErrArtistNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

func IsPersonaNotFound(err error) bool {
	return errors.Is(err, ErrPersonaNotFound)
}

func IsQuestionnaireEmpty(err error) bool {
	return errors.Is(err, ErrQuestionnaireEmpty)
}

func IsUploadedFileInvalid(err error) bool {
	return errors.Is(err, ErrUploadedFileInvalid)
}

func IsUploadedFileTooLarge(err error) bool {
	return errors.Is(err, ErrUploadedFileTooLarge)
}

func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

func IsTemplateInvalid(err error) bool {
	return errors.Is(err, ErrTemplateInvalid)
}

func IsMissingVariables(err error) bool {
	return errors.Is(err, ErrMissingVariables)
}

func IsInvalidContentType(err error) bool {
	return errors.Is(err, ErrInvalidContentType)
}

func IsGenerationBackend(err error) bool {
	return errors.Is(err, ErrGenerationBackend)
}

func IsInvalidBackend(err error) bool {
	return errors.Is(err, ErrInvalidBackend)
}

func IsInvalidContentStatus(err error) bool {
	return errors.Is(err, ErrInvalidContentStatus)
}

func IsGeneratedContentAbsent(err error) bool {
	return errors.Is(err, ErrGeneratedContentAbsent)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}
