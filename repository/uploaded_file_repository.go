package repository

import (
	"context"

	"github.com/amirphl/Ame-no-Uzume/models"
	"gorm.io/gorm"
)

// UploadedFileRepositoryImpl implements UploadedFileRepository interface
type UploadedFileRepositoryImpl struct {
	*BaseRepository[models.UploadedFile, models.UploadedFileFilter]
}

// NewUploadedFileRepository creates a new uploaded file repository
func NewUploadedFileRepository(db *gorm.DB) UploadedFileRepository {
	return &UploadedFileRepositoryImpl{
		BaseRepository: NewBaseRepository[models.UploadedFile, models.UploadedFileFilter](db),
	}
}

// ListByArtist returns upload records for an artist, newest first
func (r *UploadedFileRepositoryImpl) ListByArtist(ctx context.Context, artistID uint, limit, offset int) ([]*models.UploadedFile, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.UploadedFile{}).
		Where("artist_id = ?", artistID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.UploadedFile
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// applyFilter applies filter criteria to a GORM query
func (r *UploadedFileRepositoryImpl) applyFilter(query *gorm.DB, filter models.UploadedFileFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.ArtistID != nil {
		query = query.Where("artist_id = ?", *filter.ArtistID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves upload records based on filter criteria
func (r *UploadedFileRepositoryImpl) ByFilter(ctx context.Context, filter models.UploadedFileFilter, orderBy string, limit, offset int) ([]*models.UploadedFile, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.UploadedFile{})

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

	var rows []*models.UploadedFile
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of upload records matching the filter
func (r *UploadedFileRepositoryImpl) Count(ctx context.Context, filter models.UploadedFileFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.UploadedFile{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any upload record matching the filter exists
func (r *UploadedFileRepositoryImpl) Exists(ctx context.Context, filter models.UploadedFileFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
