package repository

import (
	"context"
	"errors"

	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"gorm.io/gorm"
)

// GeneratedContentRepositoryImpl implements GeneratedContentRepository interface
type GeneratedContentRepositoryImpl struct {
	*BaseRepository[models.GeneratedContent, models.GeneratedContentFilter]
}

// NewGeneratedContentRepository creates a new generated content repository
func NewGeneratedContentRepository(db *gorm.DB) GeneratedContentRepository {
	return &GeneratedContentRepositoryImpl{
		BaseRepository: NewBaseRepository[models.GeneratedContent, models.GeneratedContentFilter](db),
	}
}

// ByUUID retrieves a generated content row by UUID string
func (r *GeneratedContentRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.GeneratedContent, error) {
	db := r.getDB(ctx)
	var row models.GeneratedContent
	if err := db.Where("uuid = ?", uuidStr).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListByPersona returns content for a persona, newest first
func (r *GeneratedContentRepositoryImpl) ListByPersona(ctx context.Context, personaID uint, limit, offset int) ([]*models.GeneratedContent, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.GeneratedContent{}).
		Where("persona_id = ?", personaID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.GeneratedContent
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus transitions a content row to the given approval status
func (r *GeneratedContentRepositoryImpl) UpdateStatus(ctx context.Context, id uint, status string) error {
	db := r.getDB(ctx)
	return db.Model(&models.GeneratedContent{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": utils.UTCNow()}).Error
}

// applyFilter applies filter criteria to a GORM query
func (r *GeneratedContentRepositoryImpl) applyFilter(query *gorm.DB, filter models.GeneratedContentFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.PersonaID != nil {
		query = query.Where("persona_id = ?", *filter.PersonaID)
	}
	if filter.ContentType != nil {
		query = query.Where("content_type = ?", *filter.ContentType)
	}
	if filter.Backend != nil {
		query = query.Where("backend = ?", *filter.Backend)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.MinScore != nil {
		query = query.Where("quality_score >= ?", *filter.MinScore)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves generated content based on filter criteria
func (r *GeneratedContentRepositoryImpl) ByFilter(ctx context.Context, filter models.GeneratedContentFilter, orderBy string, limit, offset int) ([]*models.GeneratedContent, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.GeneratedContent{})

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

	var rows []*models.GeneratedContent
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of content rows matching the filter
func (r *GeneratedContentRepositoryImpl) Count(ctx context.Context, filter models.GeneratedContentFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.GeneratedContent{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any content row matching the filter exists
func (r *GeneratedContentRepositoryImpl) Exists(ctx context.Context, filter models.GeneratedContentFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
