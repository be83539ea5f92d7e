package repository

import (
	"context"
	"errors"

	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"gorm.io/gorm"
)

// ArtistRepositoryImpl implements ArtistRepository interface
type ArtistRepositoryImpl struct {
	*BaseRepository[models.Artist, models.ArtistFilter]
}

// NewArtistRepository creates a new artist repository
func NewArtistRepository(db *gorm.DB) ArtistRepository {
	return &ArtistRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Artist, models.ArtistFilter](db),
	}
}

// ByEmail retrieves an artist by email address
func (r *ArtistRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.Artist, error) {
	filter := models.ArtistFilter{Email: &email}
	rows, err := r.ByFilter(ctx, filter, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ByUUID retrieves an artist by UUID string
func (r *ArtistRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Artist, error) {
	db := r.getDB(ctx)
	var row models.Artist
	if err := db.Where("uuid = ?", uuidStr).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Update persists changes to an existing artist
func (r *ArtistRepositoryImpl) Update(ctx context.Context, artist *models.Artist) error {
	db := r.getDB(ctx)
	artist.UpdatedAt = utils.UTCNow()
	return db.Save(artist).Error
}

// UpdateLastLogin stamps the artist's last login time
func (r *ArtistRepositoryImpl) UpdateLastLogin(ctx context.Context, artistID uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.Artist{}).
		Where("id = ?", artistID).
		Updates(map[string]any{"last_login_at": utils.UTCNow(), "updated_at": utils.UTCNow()}).Error
}

// applyFilter applies filter criteria to a GORM query
func (r *ArtistRepositoryImpl) applyFilter(query *gorm.DB, filter models.ArtistFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}
	if filter.ArtistName != nil {
		query = query.Where("artist_name = ?", *filter.ArtistName)
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

// ByFilter retrieves artists based on filter criteria
func (r *ArtistRepositoryImpl) ByFilter(ctx context.Context, filter models.ArtistFilter, orderBy string, limit, offset int) ([]*models.Artist, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Artist{})

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

	var rows []*models.Artist
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of artists matching the filter
func (r *ArtistRepositoryImpl) Count(ctx context.Context, filter models.ArtistFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.Artist{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any artist matching the filter exists
func (r *ArtistRepositoryImpl) Exists(ctx context.Context, filter models.ArtistFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
