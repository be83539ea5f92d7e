package repository

import (
	"context"
	"errors"
	"time"

	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"gorm.io/gorm"
)

// ArtistSessionRepositoryImpl implements ArtistSessionRepository interface
type ArtistSessionRepositoryImpl struct {
	*BaseRepository[models.ArtistSession, models.ArtistSessionFilter]
}

// NewArtistSessionRepository creates a new artist session repository
func NewArtistSessionRepository(db *gorm.DB) ArtistSessionRepository {
	return &ArtistSessionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ArtistSession, models.ArtistSessionFilter](db),
	}
}

// BySessionToken retrieves a session by its access token
func (r *ArtistSessionRepositoryImpl) BySessionToken(ctx context.Context, token string) (*models.ArtistSession, error) {
	db := r.getDB(ctx)
	var row models.ArtistSession
	if err := db.Where("session_token = ?", token).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ByRefreshToken retrieves a session by its refresh token
func (r *ArtistSessionRepositoryImpl) ByRefreshToken(ctx context.Context, token string) (*models.ArtistSession, error) {
	db := r.getDB(ctx)
	var row models.ArtistSession
	if err := db.Where("refresh_token = ?", token).Last(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ExpireSession deactivates a single session
func (r *ArtistSessionRepositoryImpl) ExpireSession(ctx context.Context, sessionID uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.ArtistSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{"is_active": false, "expires_at": utils.UTCNow()}).Error
}

// DeactivateStaleSessions deactivates every active session whose expiry
// passed before the cutoff and returns how many rows changed
func (r *ArtistSessionRepositoryImpl) DeactivateStaleSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	db := r.getDB(ctx)
	res := db.Model(&models.ArtistSession{}).
		Where("is_active = ? AND expires_at < ?", true, cutoff).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// ExpireAllArtistSessions deactivates every active session of an artist
func (r *ArtistSessionRepositoryImpl) ExpireAllArtistSessions(ctx context.Context, artistID uint) error {
	db := r.getDB(ctx)
	return db.Model(&models.ArtistSession{}).
		Where("artist_id = ? AND is_active = ?", artistID, true).
		Updates(map[string]any{"is_active": false, "expires_at": utils.UTCNow()}).Error
}

// applyFilter applies filter criteria to a GORM query
func (r *ArtistSessionRepositoryImpl) applyFilter(query *gorm.DB, filter models.ArtistSessionFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.ArtistID != nil {
		query = query.Where("artist_id = ?", *filter.ArtistID)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.IPAddress != nil {
		query = query.Where("ip_address = ?", *filter.IPAddress)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	if filter.ExpiresAfter != nil {
		query = query.Where("expires_at > ?", *filter.ExpiresAfter)
	}
	if filter.ExpiresBefore != nil {
		query = query.Where("expires_at < ?", *filter.ExpiresBefore)
	}
	return query
}

// ByFilter retrieves sessions based on filter criteria
func (r *ArtistSessionRepositoryImpl) ByFilter(ctx context.Context, filter models.ArtistSessionFilter, orderBy string, limit, offset int) ([]*models.ArtistSession, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ArtistSession{})

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

	var rows []*models.ArtistSession
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns the number of sessions matching the filter
func (r *ArtistSessionRepositoryImpl) Count(ctx context.Context, filter models.ArtistSessionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ArtistSession{})
	query = r.applyFilter(query, filter)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any session matching the filter exists
func (r *ArtistSessionRepositoryImpl) Exists(ctx context.Context, filter models.ArtistSessionFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
