package repository

import (
	"context"
	"errors"

	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"gorm.io/gorm"
)

// PersonaRepositoryImpl implements PersonaRepository interface
type PersonaRepositoryImpl struct {
	*BaseRepository[models.Persona, models.PersonaFilter]
}

// NewPersonaRepository creates a new persona repository
func NewPersonaRepository(db *gorm.DB) PersonaRepository {
	return &PersonaRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Persona, models.PersonaFilter](db),
	}
}

// ActiveByArtist returns the artist's active persona preloaded with all
// questionnaire responses, or nil when no active persona exists.
// Absence is not an error; only storage failures are.
func (r *PersonaRepositoryImpl) ActiveByArtist(ctx context.Context, artistID uint) (*models.Persona, error) {
	db := r.getDB(ctx)
	var row models.Persona
	err := db.Preload("Responses").
		Where("artist_id = ? AND is_active = ?", artistID, true).
		Last(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	// A row without an identity is a join artifact, treat as absent
	if row.ID == 0 {
		return nil, nil
	}
	return &row, nil
}

// ByUUID retrieves a persona by UUID string
func (r *PersonaRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Persona, error) {
	db := r.getDB(ctx)
	var row models.Persona
	if err := db.Where("uuid = ?", uuidStr).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Update persists changes to an existing persona
func (r *PersonaRepositoryImpl) Update(ctx context.Context, persona *models.Persona) error {
	db := r.getDB(ctx)
	persona.UpdatedAt = utils.UTCNow()
	return db.Omit("Responses", "Artist").Save(persona).Error
}

// DeactivateAllForArtist clears the active flag on every persona of an
// artist. Used inside the upsert transaction to keep the one-active-persona
// invariant before activating a new one.
func (r *PersonaRepositoryImpl) DeactivateAllForArtist(ctx context.Context, artistID uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.Persona{}).
		Where("artist_id = ? AND is_active = ?", artistID, true).
		Updates(map[string]any{"is_active": false, "updated_at": utils.UTCNow()}).Error
}

// applyFilter applies filter criteria to a GORM query
func (r *PersonaRepositoryImpl) applyFilter(query *gorm.DB, filter models.PersonaFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.ArtistID != nil {
		query = query.Where("artist_id = ?", *filter.ArtistID)
	}
	if filter.Tone != nil {
		query = query.Where("tone = ?", *filter.Tone)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves personas based on filter criteria
func (r *PersonaRepositoryImpl) ByFilter(ctx context.Context, filter models.PersonaFilter, orderBy string, limit, offset int) ([]*models.Persona, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Persona{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.Persona
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of personas matching the filter
func (r *PersonaRepositoryImpl) Count(ctx context.Context, filter models.PersonaFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Persona{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any persona matching the filter exists
func (r *PersonaRepositoryImpl) Exists(ctx context.Context, filter models.PersonaFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
