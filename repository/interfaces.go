// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/Ame-no-Uzume/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ArtistRepository defines operations for artist accounts
type ArtistRepository interface {
	Repository[models.Artist, models.ArtistFilter]
	ByEmail(ctx context.Context, email string) (*models.Artist, error)
	ByUUID(ctx context.Context, uuid string) (*models.Artist, error)
	Update(ctx context.Context, artist *models.Artist) error
	UpdateLastLogin(ctx context.Context, artistID uint) error
}

// ArtistSessionRepository defines operations for artist sessions
type ArtistSessionRepository interface {
	Repository[models.ArtistSession, models.ArtistSessionFilter]
	BySessionToken(ctx context.Context, token string) (*models.ArtistSession, error)
	ByRefreshToken(ctx context.Context, token string) (*models.ArtistSession, error)
	ExpireSession(ctx context.Context, sessionID uint) error
	ExpireAllArtistSessions(ctx context.Context, artistID uint) error
	DeactivateStaleSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// PersonaRepository defines operations for personas.
// ActiveByArtist is the persona store accessor: it returns the single
// active persona joined with all questionnaire responses, or nil when
// the artist has none. It errors only on storage failure.
type PersonaRepository interface {
	Repository[models.Persona, models.PersonaFilter]
	ActiveByArtist(ctx context.Context, artistID uint) (*models.Persona, error)
	ByUUID(ctx context.Context, uuid string) (*models.Persona, error)
	Update(ctx context.Context, persona *models.Persona) error
	DeactivateAllForArtist(ctx context.Context, artistID uint) error
}

// QuestionnaireResponseRepository defines operations for questionnaire responses
type QuestionnaireResponseRepository interface {
	Repository[models.QuestionnaireResponse, models.QuestionnaireResponseFilter]
	ListByPersona(ctx context.Context, personaID uint) ([]*models.QuestionnaireResponse, error)
	Upsert(ctx context.Context, response *models.QuestionnaireResponse) error
}

// ContentTemplateRepository defines operations for content templates
type ContentTemplateRepository interface {
	Repository[models.ContentTemplate, models.ContentTemplateFilter]
	ByName(ctx context.Context, name string) (*models.ContentTemplate, error)
	ByUUID(ctx context.Context, uuid string) (*models.ContentTemplate, error)
	ListActive(ctx context.Context, contentType *string) ([]*models.ContentTemplate, error)
	Upsert(ctx context.Context, template *models.ContentTemplate) error
	Deactivate(ctx context.Context, id uint) error
}

// GeneratedContentRepository defines operations for generated content
type GeneratedContentRepository interface {
	Repository[models.GeneratedContent, models.GeneratedContentFilter]
	ByUUID(ctx context.Context, uuid string) (*models.GeneratedContent, error)
	ListByPersona(ctx context.Context, personaID uint, limit, offset int) ([]*models.GeneratedContent, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
}

// UploadedFileRepository defines operations for uploaded questionnaire files
type UploadedFileRepository interface {
	Repository[models.UploadedFile, models.UploadedFileFilter]
	ListByArtist(ctx context.Context, artistID uint, limit, offset int) ([]*models.UploadedFile, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByArtist(ctx context.Context, artistID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
