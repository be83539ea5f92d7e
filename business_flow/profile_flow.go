package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/Ame-no-Uzume/app/dto"
	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/repository"
	"github.com/amirphl/Ame-no-Uzume/utils"
)

type ProfileFlow interface {
	GetProfile(ctx context.Context, artistID uint) (*dto.GetProfileResponse, error)
	UpdateProfile(ctx context.Context, artistID uint, req *dto.UpdateProfileRequest, metadata *ClientMetadata) (*dto.GetProfileResponse, error)
}

type ProfileFlowImpl struct {
	artistRepo repository.ArtistRepository
	auditRepo  repository.AuditLogRepository
}

func NewProfileFlow(artistRepo repository.ArtistRepository, auditRepo repository.AuditLogRepository) ProfileFlow {
	return &ProfileFlowImpl{artistRepo: artistRepo, auditRepo: auditRepo}
}

func (f *ProfileFlowImpl) GetProfile(ctx context.Context, artistID uint) (*dto.GetProfileResponse, error) {
	artist, err := f.fetchArtist(ctx, artistID)
	if err != nil {
		return nil, err
	}
	return &dto.GetProfileResponse{
		Message: "Artist profile retrieved",
		Artist:  mapArtistToProfileDTO(artist),
	}, nil
}

// UpdateProfile applies the provided fields; absent fields keep their value
func (f *ProfileFlowImpl) UpdateProfile(ctx context.Context, artistID uint, req *dto.UpdateProfileRequest, metadata *ClientMetadata) (*dto.GetProfileResponse, error) {
	artist, err := f.fetchArtist(ctx, artistID)
	if err != nil {
		return nil, err
	}

	if req.ArtistName != nil && strings.TrimSpace(*req.ArtistName) != "" {
		artist.ArtistName = strings.TrimSpace(*req.ArtistName)
	}
	if req.Genre != nil {
		artist.Genre = req.Genre
	}
	if req.Bio != nil {
		artist.Bio = req.Bio
	}
	if req.WebsiteURL != nil {
		artist.WebsiteURL = req.WebsiteURL
	}
	artist.UpdatedAt = utils.UTCNow()

	if err := f.artistRepo.Update(ctx, artist); err != nil {
		return nil, NewBusinessError("PROFILE_UPDATE_FAILED", "Failed to update profile", err)
	}
	recordAudit(ctx, f.auditRepo, artistID, models.AuditActionProfileUpdated, "profile updated", true, metadata)

	return &dto.GetProfileResponse{
		Message: "Artist profile updated",
		Artist:  mapArtistToProfileDTO(artist),
	}, nil
}

func (f *ProfileFlowImpl) fetchArtist(ctx context.Context, artistID uint) (*models.Artist, error) {
	if artistID == 0 {
		return nil, NewBusinessError("ARTIST_ID_REQUIRED", "artist_id must be greater than 0", ErrArtistNotFound)
	}
	artist, err := f.artistRepo.ByID(ctx, artistID)
	if err != nil {
		return nil, NewBusinessError("ARTIST_FETCH_FAILED", "Failed to fetch artist", err)
	}
	if artist == nil {
		return nil, NewBusinessError("ARTIST_NOT_FOUND", "Artist not found", ErrArtistNotFound)
	}
	return artist, nil
}

func mapArtistToProfileDTO(a *models.Artist) dto.ArtistProfileDTO {
	return dto.ArtistProfileDTO{
		ID:              a.ID,
		UUID:            a.UUID.String(),
		Email:           a.Email,
		ArtistName:      a.ArtistName,
		Genre:           a.Genre,
		Bio:             a.Bio,
		WebsiteURL:      a.WebsiteURL,
		IsActive:        utils.IsTrue(a.IsActive),
		IsEmailVerified: utils.IsTrue(a.IsEmailVerified),
		LastLoginAt:     a.LastLoginAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
