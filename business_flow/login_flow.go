package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/Ame-no-Uzume/app/dto"
	"github.com/amirphl/Ame-no-Uzume/app/services"
	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/repository"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// LoginFlow authenticates artists and refreshes their sessions
type LoginFlow interface {
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	RefreshSession(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
}

type LoginFlowImpl struct {
	artistRepo   repository.ArtistRepository
	sessionRepo  repository.ArtistSessionRepository
	auditRepo    repository.AuditLogRepository
	tokenService services.TokenService
	db           *gorm.DB
}

func NewLoginFlow(
	artistRepo repository.ArtistRepository,
	sessionRepo repository.ArtistSessionRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	db *gorm.DB,
) LoginFlow {
	return &LoginFlowImpl{
		artistRepo:   artistRepo,
		sessionRepo:  sessionRepo,
		auditRepo:    auditRepo,
		tokenService: tokenService,
		db:           db,
	}
}

// Login verifies credentials and opens a fresh session
func (f *LoginFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	artist, err := f.artistRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("ARTIST_LOOKUP_FAILED", "Failed to look up account", err)
	}
	if artist == nil {
		recordAudit(ctx, f.auditRepo, 0, models.AuditActionLoginFailed, "login failed for "+email, false, metadata)
		return nil, NewBusinessError("ARTIST_NOT_FOUND", "No account with this email", ErrArtistNotFound)
	}
	if !utils.IsTrue(artist.IsActive) {
		return nil, NewBusinessError("ACCOUNT_INACTIVE", "Account is inactive", ErrAccountInactive)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(artist.PasswordHash), []byte(req.Password)); err != nil {
		recordAudit(ctx, f.auditRepo, artist.ID, models.AuditActionLoginFailed, "incorrect password", false, metadata)
		return nil, NewBusinessError("INCORRECT_PASSWORD", "Incorrect password", ErrIncorrectPassword)
	}

	var session *models.ArtistSession
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		session, err = createSession(txCtx, f.sessionRepo, f.tokenService, artist.ID, metadata)
		if err != nil {
			return err
		}
		return f.artistRepo.UpdateLastLogin(txCtx, artist.ID)
	})
	if err != nil {
		return nil, NewBusinessError("LOGIN_FAILED", "Failed to open session", err)
	}

	recordAudit(ctx, f.auditRepo, artist.ID, models.AuditActionLoginSuccessful, "login successful", true, metadata)

	return &dto.LoginResponse{
		Message: "Login successful",
		Artist:  ToAuthArtistDTO(*artist),
		Session: ToArtistSessionDTO(*session),
	}, nil
}

// RefreshSession rotates the token pair bound to a refresh token
func (f *LoginFlowImpl) RefreshSession(ctx context.Context, req *dto.RefreshTokenRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	claims, err := f.tokenService.ValidateToken(req.RefreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, NewBusinessError("SESSION_INVALID", "Refresh token is invalid", ErrSessionNotFound)
	}

	session, err := f.sessionRepo.ByRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("SESSION_LOOKUP_FAILED", "Failed to look up session", err)
	}
	if session == nil {
		return nil, NewBusinessError("SESSION_NOT_FOUND", "Session not found", ErrSessionNotFound)
	}
	if !session.IsValid() {
		return nil, NewBusinessError("SESSION_EXPIRED", "Session has expired", ErrSessionExpired)
	}

	artist, err := f.artistRepo.ByID(ctx, session.ArtistID)
	if err != nil {
		return nil, NewBusinessError("ARTIST_LOOKUP_FAILED", "Failed to look up account", err)
	}
	if artist == nil || !utils.IsTrue(artist.IsActive) {
		return nil, NewBusinessError("ACCOUNT_INACTIVE", "Account is inactive", ErrAccountInactive)
	}

	var newSession *models.ArtistSession
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.sessionRepo.ExpireSession(txCtx, session.ID); err != nil {
			return err
		}
		newSession, err = createSession(txCtx, f.sessionRepo, f.tokenService, artist.ID, metadata)
		return err
	})
	if err != nil {
		return nil, NewBusinessError("SESSION_REFRESH_FAILED", "Failed to refresh session", err)
	}

	return &dto.LoginResponse{
		Message: "Session refreshed",
		Artist:  ToAuthArtistDTO(*artist),
		Session: ToArtistSessionDTO(*newSession),
	}, nil
}
