// Package testing provides test utilities and database setup for testing the content platform
package testing

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestArtist creates an active artist with a unique email
func (tf *TestFixtures) CreateTestArtist() (*models.Artist, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("TestPass123!"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	suffix := rand.Intn(90000000) + 10000000
	genre := "synthpop"
	bio := "Test artist bio"

	artist := &models.Artist{
		UUID:            uuid.New(),
		Email:           fmt.Sprintf("artist.%d@example.com", suffix),
		PasswordHash:    string(hashedPassword),
		ArtistName:      fmt.Sprintf("Test Artist %d", suffix),
		Genre:           &genre,
		Bio:             &bio,
		IsActive:        utils.ToPtr(true),
		IsEmailVerified: utils.ToPtr(false),
		CreatedAt:       utils.UTCNow(),
		UpdatedAt:       utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(artist).Error; err != nil {
		return nil, fmt.Errorf("failed to create test artist: %w", err)
	}

	return artist, nil
}

func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateTestSession creates an active session for the artist
func (tf *TestFixtures) CreateTestSession(artistID uint) (*models.ArtistSession, error) {
	sessionToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure session token: %w", err)
	}

	refreshToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure refresh token: %w", err)
	}

	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	session := &models.ArtistSession{
		ArtistID:     artistID,
		SessionToken: sessionToken,
		RefreshToken: &refreshToken,
		ExpiresAt:    time.Now().Add(24 * time.Hour),
		IsActive:     utils.ToPtr(true),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	return session, nil
}

// CreateTestPersona creates an active persona with a few theme keywords
func (tf *TestFixtures) CreateTestPersona(artistID uint) (*models.Persona, error) {
	voiceTraits, err := json.Marshal(map[string]string{"humor": "dry", "energy": "high"})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal voice traits: %w", err)
	}

	persona := &models.Persona{
		UUID:           uuid.New(),
		ArtistID:       artistID,
		Name:           "Test Persona",
		Tone:           models.ToneCasual,
		TargetAudience: "indie fans",
		ThemeKeywords:  pq.StringArray{"tour", "vinyl", "studio"},
		VoiceTraits:    voiceTraits,
		IsActive:       utils.ToPtr(true),
		CreatedAt:      utils.UTCNow(),
		UpdatedAt:      utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(persona).Error; err != nil {
		return nil, fmt.Errorf("failed to create test persona: %w", err)
	}

	return persona, nil
}

// CreateTestResponses attaches questionnaire responses to the persona
func (tf *TestFixtures) CreateTestResponses(personaID uint, count int) ([]*models.QuestionnaireResponse, error) {
	var responses []*models.QuestionnaireResponse
	for i := 0; i < count; i++ {
		response := &models.QuestionnaireResponse{
			PersonaID:    personaID,
			QuestionKey:  fmt.Sprintf("question_%d", i+1),
			QuestionText: fmt.Sprintf("Test question %d", i+1),
			Answer:       fmt.Sprintf("Test answer %d", i+1),
			AnswerType:   models.AnswerTypeText,
			CreatedAt:    utils.UTCNow(),
			UpdatedAt:    utils.UTCNow(),
		}
		if err := tf.DB.DB.Create(response).Error; err != nil {
			return nil, fmt.Errorf("failed to create test response %d: %w", i, err)
		}
		responses = append(responses, response)
	}
	return responses, nil
}

// CreateTestTemplate creates an active template with one required variable
func (tf *TestFixtures) CreateTestTemplate(name string) (*models.ContentTemplate, error) {
	description := "Test template"

	template := &models.ContentTemplate{
		UUID:        uuid.New(),
		Name:        name,
		ContentType: models.ContentTypeInstagramPost,
		Description: &description,
		Body:        "New drop from {artist_name}, out {date}",
		Variables: models.TemplateVariables{
			{Name: "artist_name", Type: models.VariableTypeText, Required: true},
			{Name: "date", Type: models.VariableTypeDate, Required: false, Default: utils.ToPtr("soon")},
		},
		IsActive:  utils.ToPtr(true),
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(template).Error; err != nil {
		return nil, fmt.Errorf("failed to create test template: %w", err)
	}

	return template, nil
}

// CreateTestGeneratedContent creates a draft content row for the persona
func (tf *TestFixtures) CreateTestGeneratedContent(personaID uint) (*models.GeneratedContent, error) {
	metrics, err := json.Marshal(map[string]float64{"readability": 0.7, "engagement": 0.6, "brand_consistency": 0.8})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metrics: %w", err)
	}

	content := &models.GeneratedContent{
		UUID:         uuid.New(),
		PersonaID:    personaID,
		ContentType:  models.ContentTypeInstagramPost,
		Text:         "Test generated text about the new single",
		Backend:      models.BackendOpenAI,
		QualityScore: 0.7,
		Metrics:      metrics,
		Status:       models.ContentStatusDraft,
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}

	if err := tf.DB.DB.Create(content).Error; err != nil {
		return nil, fmt.Errorf("failed to create test generated content: %w", err)
	}

	return content, nil
}

// CreateTestAuditLog creates a test audit log entry
func (tf *TestFixtures) CreateTestAuditLog(artistID *uint, action string, success bool) (*models.AuditLog, error) {
	description := fmt.Sprintf("Test %s action", action)
	ipAddress := "127.0.0.1"
	userAgent := "Test User Agent"

	audit := &models.AuditLog{
		ArtistID:    artistID,
		Action:      action,
		Description: &description,
		Success:     &success,
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}

	if !success {
		errorMessage := "Test failed action"
		audit.ErrorMessage = &errorMessage
	}

	if err := tf.DB.DB.Create(audit).Error; err != nil {
		return nil, fmt.Errorf("failed to create test audit log: %w", err)
	}

	return audit, nil
}
