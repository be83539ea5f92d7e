package businessflow_test

import (
	"testing"
	"time"

	"github.com/amirphl/Ame-no-Uzume/app/dto"
	"github.com/amirphl/Ame-no-Uzume/app/services"
	businessflow "github.com/amirphl/Ame-no-Uzume/business_flow"
	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/repository"
	testingutil "github.com/amirphl/Ame-no-Uzume/testing"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key-that-is-long-enough-for-hs256"

// withTestDB provisions a throwaway database and skips the test when no
// PostgreSQL server is reachable.
func withTestDB(t *testing.T, fn func(testDB *testingutil.TestDB)) {
	t.Helper()

	testDB, err := testingutil.SetupTestDB()
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	defer func() {
		if err := testDB.TeardownTestDB(); err != nil {
			t.Logf("warning: failed to cleanup test database: %v", err)
		}
	}()

	fn(testDB)
}

func newTestTokenService(t *testing.T) services.TokenService {
	t.Helper()
	tokenService, err := services.NewTokenService(
		1*time.Hour,
		24*time.Hour,
		"uzume-test",
		"uzume-test-api",
		false,
		"",
		"",
		testJWTSecret,
	)
	require.NoError(t, err)
	return tokenService
}

func newAuthFlows(t *testing.T, testDB *testingutil.TestDB) (businessflow.SignupFlow, businessflow.LoginFlow) {
	t.Helper()

	artistRepo := repository.NewArtistRepository(testDB.DB)
	sessionRepo := repository.NewArtistSessionRepository(testDB.DB)
	auditRepo := repository.NewAuditLogRepository(testDB.DB)
	tokenService := newTestTokenService(t)

	signupFlow := businessflow.NewSignupFlow(artistRepo, sessionRepo, auditRepo, tokenService, testDB.DB)
	loginFlow := businessflow.NewLoginFlow(artistRepo, sessionRepo, auditRepo, tokenService, testDB.DB)
	return signupFlow, loginFlow
}

func testMetadata() *businessflow.ClientMetadata {
	return businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")
}

func TestSignupFlow(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		signupFlow, _ := newAuthFlows(t, testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("SuccessfulSignup", func(t *testing.T) {
			genre := "dream pop"
			req := &dto.SignupRequest{
				Email:      "new.artist@example.com",
				Password:   "StrongPass123!",
				ArtistName: "New Artist",
				Genre:      &genre,
			}

			res, err := signupFlow.Signup(ctx, req, testMetadata())
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Equal(t, "new.artist@example.com", res.Artist.Email)
			assert.Equal(t, "New Artist", res.Artist.ArtistName)
			assert.True(t, res.Artist.IsActive)
			assert.NotEmpty(t, res.Session.SessionToken)
			assert.NotEmpty(t, res.Session.RefreshToken)
			assert.Equal(t, "Bearer", res.Session.TokenType)
		})

		t.Run("EmailNormalizedToLowercase", func(t *testing.T) {
			req := &dto.SignupRequest{
				Email:      "Mixed.Case@Example.COM",
				Password:   "StrongPass123!",
				ArtistName: "Case Artist",
			}

			res, err := signupFlow.Signup(ctx, req, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "mixed.case@example.com", res.Artist.Email)
		})

		t.Run("DuplicateEmailRejected", func(t *testing.T) {
			req := &dto.SignupRequest{
				Email:      "taken@example.com",
				Password:   "StrongPass123!",
				ArtistName: "First Artist",
			}
			_, err := signupFlow.Signup(ctx, req, testMetadata())
			require.NoError(t, err)

			req2 := &dto.SignupRequest{
				Email:      "taken@example.com",
				Password:   "OtherPass456!",
				ArtistName: "Second Artist",
			}
			_, err = signupFlow.Signup(ctx, req2, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsEmailAlreadyExists(err))
		})

		t.Run("SignupWritesAuditLog", func(t *testing.T) {
			auditRepo := repository.NewAuditLogRepository(testDB.DB)

			req := &dto.SignupRequest{
				Email:      "audited@example.com",
				Password:   "StrongPass123!",
				ArtistName: "Audited Artist",
			}
			res, err := signupFlow.Signup(ctx, req, testMetadata())
			require.NoError(t, err)

			logs, err := auditRepo.ListByArtist(ctx, res.Artist.ID, 10, 0)
			require.NoError(t, err)
			require.NotEmpty(t, logs)
			assert.Equal(t, models.AuditActionSignupCompleted, logs[0].Action)
		})
	})
}

func TestLoginFlow(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		signupFlow, loginFlow := newAuthFlows(t, testDB)
		ctx := testingutil.CreateTestContext()

		signup := func(t *testing.T, email string) {
			t.Helper()
			_, err := signupFlow.Signup(ctx, &dto.SignupRequest{
				Email:      email,
				Password:   "StrongPass123!",
				ArtistName: "Login Artist",
			}, testMetadata())
			require.NoError(t, err)
		}

		t.Run("SuccessfulLogin", func(t *testing.T) {
			signup(t, "login.ok@example.com")

			res, err := loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    "login.ok@example.com",
				Password: "StrongPass123!",
			}, testMetadata())
			require.NoError(t, err)
			assert.Equal(t, "login.ok@example.com", res.Artist.Email)
			assert.NotEmpty(t, res.Session.SessionToken)
		})

		t.Run("WrongPassword", func(t *testing.T) {
			signup(t, "login.badpw@example.com")

			_, err := loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    "login.badpw@example.com",
				Password: "WrongPass999!",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsIncorrectPassword(err))
		})

		t.Run("UnknownEmail", func(t *testing.T) {
			_, err := loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    "nobody@example.com",
				Password: "StrongPass123!",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsArtistNotFound(err))
		})

		t.Run("InactiveAccount", func(t *testing.T) {
			signup(t, "login.inactive@example.com")

			err := testDB.DB.Model(&models.Artist{}).
				Where("email = ?", "login.inactive@example.com").
				Update("is_active", false).Error
			require.NoError(t, err)

			_, err = loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    "login.inactive@example.com",
				Password: "StrongPass123!",
			}, testMetadata())
			require.Error(t, err)
			assert.True(t, businessflow.IsAccountInactive(err))
		})

		t.Run("LoginUpdatesLastLogin", func(t *testing.T) {
			signup(t, "login.stamp@example.com")

			_, err := loginFlow.Login(ctx, &dto.LoginRequest{
				Email:    "login.stamp@example.com",
				Password: "StrongPass123!",
			}, testMetadata())
			require.NoError(t, err)

			artistRepo := repository.NewArtistRepository(testDB.DB)
			artist, err := artistRepo.ByEmail(ctx, "login.stamp@example.com")
			require.NoError(t, err)
			assert.NotNil(t, artist.LastLoginAt)
		})
	})
}

func TestRefreshSession(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		signupFlow, loginFlow := newAuthFlows(t, testDB)
		ctx := testingutil.CreateTestContext()

		signupRes, err := signupFlow.Signup(ctx, &dto.SignupRequest{
			Email:      "refresh@example.com",
			Password:   "StrongPass123!",
			ArtistName: "Refresh Artist",
		}, testMetadata())
		require.NoError(t, err)

		t.Run("RotatesSession", func(t *testing.T) {
			res, err := loginFlow.RefreshSession(ctx, &dto.RefreshTokenRequest{
				RefreshToken: signupRes.Session.RefreshToken,
			}, testMetadata())
			require.NoError(t, err)
			assert.NotEmpty(t, res.Session.SessionToken)
			assert.NotEqual(t, signupRes.Session.SessionToken, res.Session.SessionToken)

			// The old session is retired once rotated
			sessionRepo := repository.NewArtistSessionRepository(testDB.DB)
			old, err := sessionRepo.BySessionToken(ctx, signupRes.Session.SessionToken)
			require.NoError(t, err)
			if old != nil {
				assert.False(t, utils.IsTrue(old.IsActive))
			}
		})

		t.Run("UnknownRefreshToken", func(t *testing.T) {
			_, err := loginFlow.RefreshSession(ctx, &dto.RefreshTokenRequest{
				RefreshToken: "not-a-real-token",
			}, testMetadata())
			require.Error(t, err)
		})
	})
}
