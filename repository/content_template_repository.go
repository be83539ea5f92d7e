package repository

import (
	"context"
	"errors"

	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ContentTemplateRepositoryImpl implements ContentTemplateRepository interface
type ContentTemplateRepositoryImpl struct {
	*BaseRepository[models.ContentTemplate, models.ContentTemplateFilter]
}

// NewContentTemplateRepository creates a new content template repository
func NewContentTemplateRepository(db *gorm.DB) ContentTemplateRepository {
	return &ContentTemplateRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ContentTemplate, models.ContentTemplateFilter](db),
	}
}

// ByName retrieves a template by its unique name
func (r *ContentTemplateRepositoryImpl) ByName(ctx context.Context, name string) (*models.ContentTemplate, error) {
	db := r.getDB(ctx)
	var row models.ContentTemplate
	if err := db.Where("name = ?", name).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ByUUID retrieves a template by UUID string
func (r *ContentTemplateRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.ContentTemplate, error) {
	db := r.getDB(ctx)
	var row models.ContentTemplate
	if err := db.Where("uuid = ?", uuidStr).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListActive returns active templates, optionally filtered by content
// type, in stable name order.
func (r *ContentTemplateRepositoryImpl) ListActive(ctx context.Context, contentType *string) ([]*models.ContentTemplate, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ContentTemplate{}).Where("is_active = ?", true)
	if contentType != nil && *contentType != "" {
		query = query.Where("content_type = ?", *contentType)
	}
	var rows []*models.ContentTemplate
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert inserts a template or overwrites the definition of an existing
// name.
func (r *ContentTemplateRepositoryImpl) Upsert(ctx context.Context, template *models.ContentTemplate) error {
	db := r.getDB(ctx)
	template.UpdatedAt = utils.UTCNow()
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"content_type", "description", "body", "variables", "is_active", "updated_at"}),
	}).Create(template).Error
}

// Deactivate soft-deletes a template
func (r *ContentTemplateRepositoryImpl) Deactivate(ctx context.Context, id uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.ContentTemplate{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_active": false, "updated_at": utils.UTCNow()}).Error
}

// applyFilter applies filter criteria to a GORM query
func (r *ContentTemplateRepositoryImpl) applyFilter(query *gorm.DB, filter models.ContentTemplateFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Name != nil {
		query = query.Where("name = ?", *filter.Name)
	}
	if filter.ContentType != nil {
		query = query.Where("content_type = ?", *filter.ContentType)
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

// ByFilter retrieves templates based on filter criteria
func (r *ContentTemplateRepositoryImpl) ByFilter(ctx context.Context, filter models.ContentTemplateFilter, orderBy string, limit, offset int) ([]*models.ContentTemplate, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ContentTemplate{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "name ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.ContentTemplate
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of templates matching the filter
func (r *ContentTemplateRepositoryImpl) Count(ctx context.Context, filter models.ContentTemplateFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ContentTemplate{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any template matching the filter exists
func (r *ContentTemplateRepositoryImpl) Exists(ctx context.Context, filter models.ContentTemplateFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
