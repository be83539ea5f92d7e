package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/Ame-no-Uzume/app/dto"
	"github.com/amirphl/Ame-no-Uzume/app/services"
	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/repository"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SignupFlow registers new artist accounts
type SignupFlow interface {
	Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error)
}

type SignupFlowImpl struct {
	artistRepo   repository.ArtistRepository
	sessionRepo  repository.ArtistSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

func NewSignupFlow(
	artistRepo repository.ArtistRepository,
	sessionRepo repository.ArtistSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) SignupFlow {
	return &SignupFlowImpl{
		artistRepo:   artistRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Signup creates the account and an initial session in one transaction
func (f *SignupFlowImpl) Signup(ctx context.Context, req *dto.SignupRequest, metadata *ClientMetadata) (*dto.SignupResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := f.artistRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("ARTIST_LOOKUP_FAILED", "Failed to check existing accounts", err)
	}
	if existing != nil {
		return nil, NewBusinessError("EMAIL_ALREADY_EXISTS", "An account with this email already exists", ErrEmailAlreadyExists)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, NewBusinessError("PASSWORD_HASH_FAILED", "Failed to hash password", err)
	}

	artist := &models.Artist{
		UUID:         uuid.New(),
		Email:        email,
		PasswordHash: string(passwordHash),
		ArtistName:   strings.TrimSpace(req.ArtistName),
		Genre:        req.Genre,
		Bio:          req.Bio,
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}

	var session *models.ArtistSession
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.artistRepo.Save(txCtx, artist); err != nil {
			return err
		}
		session, err = createSession(txCtx, f.sessionRepo, f.tokenService, artist.ID, metadata)
		return err
	})
	if err != nil {
		recordAudit(ctx, f.auditRepo, 0, models.AuditActionSignupFailed, "signup failed for "+email, false, metadata)
		return nil, NewBusinessError("SIGNUP_FAILED", "Failed to create account", err)
	}

	recordAudit(ctx, f.auditRepo, artist.ID, models.AuditActionSignupCompleted, "signup completed", true, metadata)

	return &dto.SignupResponse{
		Message: "Account created",
		Artist:  ToAuthArtistDTO(*artist),
		Session: ToArtistSessionDTO(*session),
	}, nil
}

// createSession issues a token pair and persists the session row
func createSession(ctx context.Context, sessionRepo repository.ArtistSessionRepository, tokenService services.TokenService, artistID uint, metadata *ClientMetadata) (*models.ArtistSession, error) {
	accessToken, refreshToken, err := tokenService.GenerateTokens(artistID)
	if err != nil {
		return nil, err
	}

	session := &models.ArtistSession{
		ArtistID:       artistID,
		SessionToken:   accessToken,
		RefreshToken:   &refreshToken,
		IsActive:       utils.ToPtr(true),
		CreatedAt:      utils.UTCNow(),
		LastAccessedAt: utils.UTCNow(),
		ExpiresAt:      utils.UTCNow().Add(utils.SessionTimeout),
	}
	if metadata != nil {
		if metadata.IPAddress != "" {
			session.IPAddress = &metadata.IPAddress
		}
		if metadata.UserAgent != "" {
			session.UserAgent = &metadata.UserAgent
		}
	}

	if err := sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}
