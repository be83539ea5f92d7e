package repository_test

import (
	"testing"
	"time"

	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/repository"
	testingutil "github.com/amirphl/Ame-no-Uzume/testing"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func TestArtistRepository(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewArtistRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("Save", func(t *testing.T) {
			artist, err := fixtures.CreateTestArtist()
			require.NoError(t, err)
			assert.NotZero(t, artist.ID)
		})

		t.Run("ByID", func(t *testing.T) {
			original, err := fixtures.CreateTestArtist()
			require.NoError(t, err)

			artist, err := repo.ByID(ctx, original.ID)
			require.NoError(t, err)
			require.NotNil(t, artist)
			assert.Equal(t, original.ID, artist.ID)
			assert.Equal(t, original.Email, artist.Email)
		})

		t.Run("ByEmail", func(t *testing.T) {
			original, err := fixtures.CreateTestArtist()
			require.NoError(t, err)

			artist, err := repo.ByEmail(ctx, original.Email)
			require.NoError(t, err)
			require.NotNil(t, artist)
			assert.Equal(t, original.ID, artist.ID)
		})

		t.Run("ByEmailNotFound", func(t *testing.T) {
			artist, err := repo.ByEmail(ctx, "nonexistent@example.com")
			assert.NoError(t, err)
			assert.Nil(t, artist)
		})

		t.Run("ByUUID", func(t *testing.T) {
			original, err := fixtures.CreateTestArtist()
			require.NoError(t, err)

			artist, err := repo.ByUUID(ctx, original.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, artist)
			assert.Equal(t, original.ID, artist.ID)
		})

		t.Run("Update", func(t *testing.T) {
			artist, err := fixtures.CreateTestArtist()
			require.NoError(t, err)

			artist.ArtistName = "Renamed Artist"
			require.NoError(t, repo.Update(ctx, artist))

			reloaded, err := repo.ByID(ctx, artist.ID)
			require.NoError(t, err)
			assert.Equal(t, "Renamed Artist", reloaded.ArtistName)
		})

		t.Run("UpdateLastLogin", func(t *testing.T) {
			artist, err := fixtures.CreateTestArtist()
			require.NoError(t, err)
			require.Nil(t, artist.LastLoginAt)

			require.NoError(t, repo.UpdateLastLogin(ctx, artist.ID))

			reloaded, err := repo.ByID(ctx, artist.ID)
			require.NoError(t, err)
			assert.NotNil(t, reloaded.LastLoginAt)
		})

		t.Run("ByFilter", func(t *testing.T) {
			artist, err := fixtures.CreateTestArtist()
			require.NoError(t, err)

			artists, err := repo.ByFilter(ctx, models.ArtistFilter{Email: &artist.Email}, "", 0, 0)
			require.NoError(t, err)
			require.Len(t, artists, 1)
			assert.Equal(t, artist.ID, artists[0].ID)
		})

		t.Run("Exists", func(t *testing.T) {
			artist, err := fixtures.CreateTestArtist()
			require.NoError(t, err)

			exists, err := repo.Exists(ctx, models.ArtistFilter{Email: &artist.Email})
			require.NoError(t, err)
			assert.True(t, exists)
		})
	})
}

func TestArtistSessionRepository(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewArtistSessionRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		artist, err := fixtures.CreateTestArtist()
		require.NoError(t, err)

		t.Run("BySessionToken", func(t *testing.T) {
			original, err := fixtures.CreateTestSession(artist.ID)
			require.NoError(t, err)

			session, err := repo.BySessionToken(ctx, original.SessionToken)
			require.NoError(t, err)
			require.NotNil(t, session)
			assert.Equal(t, original.ID, session.ID)
		})

		t.Run("ByRefreshToken", func(t *testing.T) {
			original, err := fixtures.CreateTestSession(artist.ID)
			require.NoError(t, err)

			session, err := repo.ByRefreshToken(ctx, *original.RefreshToken)
			require.NoError(t, err)
			require.NotNil(t, session)
			assert.Equal(t, original.ID, session.ID)
		})

		t.Run("ExpireSession", func(t *testing.T) {
			session, err := fixtures.CreateTestSession(artist.ID)
			require.NoError(t, err)

			require.NoError(t, repo.ExpireSession(ctx, session.ID))

			reloaded, err := repo.ByID(ctx, session.ID)
			require.NoError(t, err)
			assert.False(t, utils.IsTrue(reloaded.IsActive))
		})

		t.Run("ExpireAllArtistSessions", func(t *testing.T) {
			other, err := fixtures.CreateTestArtist()
			require.NoError(t, err)
			_, err = fixtures.CreateTestSession(other.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestSession(other.ID)
			require.NoError(t, err)

			require.NoError(t, repo.ExpireAllArtistSessions(ctx, other.ID))

			active := true
			count, err := repo.Count(ctx, models.ArtistSessionFilter{ArtistID: &other.ID, IsActive: &active})
			require.NoError(t, err)
			assert.Zero(t, count)
		})

		t.Run("DeactivateStaleSessions", func(t *testing.T) {
			session, err := fixtures.CreateTestSession(artist.ID)
			require.NoError(t, err)

			// Push the session past its expiry
			err = testDB.DB.Model(&models.ArtistSession{}).
				Where("id = ?", session.ID).
				Update("expires_at", time.Now().Add(-1*time.Hour)).Error
			require.NoError(t, err)

			n, err := repo.DeactivateStaleSessions(ctx, utils.UTCNow())
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, int64(1))

			reloaded, err := repo.ByID(ctx, session.ID)
			require.NoError(t, err)
			assert.False(t, utils.IsTrue(reloaded.IsActive))
		})
	})
}

func TestPersonaRepository(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewPersonaRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ActiveByArtist", func(t *testing.T) {
			artist, err := fixtures.CreateTestArtist()
			require.NoError(t, err)
			persona, err := fixtures.CreateTestPersona(artist.ID)
			require.NoError(t, err)
			_, err = fixtures.CreateTestResponses(persona.ID, 3)
			require.NoError(t, err)

			loaded, err := repo.ActiveByArtist(ctx, artist.ID)
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, persona.ID, loaded.ID)
			assert.Len(t, loaded.Responses, 3)
		})

		t.Run("ActiveByArtistNone", func(t *testing.T) {
			artist, err := fixtures.CreateTestArtist()
			require.NoError(t, err)

			loaded, err := repo.ActiveByArtist(ctx, artist.ID)
			require.NoError(t, err)
			assert.Nil(t, loaded)
		})

		t.Run("DeactivateAllForArtist", func(t *testing.T) {
			artist, err := fixtures.CreateTestArtist()
			require.NoError(t, err)
			_, err = fixtures.CreateTestPersona(artist.ID)
			require.NoError(t, err)

			require.NoError(t, repo.DeactivateAllForArtist(ctx, artist.ID))

			loaded, err := repo.ActiveByArtist(ctx, artist.ID)
			require.NoError(t, err)
			assert.Nil(t, loaded)
		})

		t.Run("ByUUID", func(t *testing.T) {
			artist, err := fixtures.CreateTestArtist()
			require.NoError(t, err)
			persona, err := fixtures.CreateTestPersona(artist.ID)
			require.NoError(t, err)

			loaded, err := repo.ByUUID(ctx, persona.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, persona.ID, loaded.ID)
			assert.EqualValues(t, []string{"tour", "vinyl", "studio"}, []string(loaded.ThemeKeywords))
		})
	})
}

func TestQuestionnaireResponseRepository(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewQuestionnaireResponseRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		artist, err := fixtures.CreateTestArtist()
		require.NoError(t, err)
		persona, err := fixtures.CreateTestPersona(artist.ID)
		require.NoError(t, err)

		t.Run("UpsertInsertsThenUpdates", func(t *testing.T) {
			response := &models.QuestionnaireResponse{
				PersonaID:   persona.ID,
				QuestionKey: "vibe",
				Answer:      "first answer",
				AnswerType:  models.AnswerTypeText,
			}
			require.NoError(t, repo.Upsert(ctx, response))

			// Same key again replaces the answer instead of duplicating the row
			response2 := &models.QuestionnaireResponse{
				PersonaID:   persona.ID,
				QuestionKey: "vibe",
				Answer:      "second answer",
				AnswerType:  models.AnswerTypeText,
			}
			require.NoError(t, repo.Upsert(ctx, response2))

			responses, err := repo.ListByPersona(ctx, persona.ID)
			require.NoError(t, err)
			require.Len(t, responses, 1)
			assert.Equal(t, "second answer", responses[0].Answer)
		})

		t.Run("ListByPersona", func(t *testing.T) {
			_, err := fixtures.CreateTestResponses(persona.ID, 2)
			require.NoError(t, err)

			responses, err := repo.ListByPersona(ctx, persona.ID)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(responses), 2)
		})
	})
}

func TestContentTemplateRepository(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewContentTemplateRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		t.Run("ByName", func(t *testing.T) {
			original, err := fixtures.CreateTestTemplate("release-announcement")
			require.NoError(t, err)

			template, err := repo.ByName(ctx, "release-announcement")
			require.NoError(t, err)
			require.NotNil(t, template)
			assert.Equal(t, original.ID, template.ID)
			require.Len(t, template.Variables, 2)
			assert.Equal(t, "artist_name", template.Variables[0].Name)
		})

		t.Run("ByNameNotFound", func(t *testing.T) {
			template, err := repo.ByName(ctx, "no-such-template")
			assert.NoError(t, err)
			assert.Nil(t, template)
		})

		t.Run("UpsertReplacesByName", func(t *testing.T) {
			_, err := fixtures.CreateTestTemplate("show-reminder")
			require.NoError(t, err)

			replacement := &models.ContentTemplate{
				UUID:        uuid.New(),
				Name:        "show-reminder",
				ContentType: models.ContentTypeShowAnnounce,
				Body:        "See you at {venue} tonight",
				Variables: models.TemplateVariables{
					{Name: "venue", Type: models.VariableTypeText, Required: true},
				},
				IsActive: utils.ToPtr(true),
			}
			require.NoError(t, repo.Upsert(ctx, replacement))

			template, err := repo.ByName(ctx, "show-reminder")
			require.NoError(t, err)
			require.NotNil(t, template)
			assert.Equal(t, "See you at {venue} tonight", template.Body)
			assert.Equal(t, models.ContentTypeShowAnnounce, template.ContentType)
		})

		t.Run("ListActiveFiltersByContentType", func(t *testing.T) {
			_, err := fixtures.CreateTestTemplate("insta-one")
			require.NoError(t, err)
			_, err = fixtures.CreateTestTemplate("insta-two")
			require.NoError(t, err)

			contentType := models.ContentTypeInstagramPost
			templates, err := repo.ListActive(ctx, &contentType)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(templates), 2)
			for _, template := range templates {
				assert.Equal(t, models.ContentTypeInstagramPost, template.ContentType)
			}
		})

		t.Run("Deactivate", func(t *testing.T) {
			template, err := fixtures.CreateTestTemplate("short-lived")
			require.NoError(t, err)

			require.NoError(t, repo.Deactivate(ctx, template.ID))

			reloaded, err := repo.ByName(ctx, "short-lived")
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.False(t, utils.IsTrue(reloaded.IsActive))
		})
	})
}

func TestGeneratedContentRepository(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewGeneratedContentRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		artist, err := fixtures.CreateTestArtist()
		require.NoError(t, err)
		persona, err := fixtures.CreateTestPersona(artist.ID)
		require.NoError(t, err)

		t.Run("ByUUID", func(t *testing.T) {
			original, err := fixtures.CreateTestGeneratedContent(persona.ID)
			require.NoError(t, err)

			content, err := repo.ByUUID(ctx, original.UUID.String())
			require.NoError(t, err)
			require.NotNil(t, content)
			assert.Equal(t, original.ID, content.ID)
			assert.Equal(t, models.ContentStatusDraft, content.Status)
		})

		t.Run("ListByPersonaNewestFirst", func(t *testing.T) {
			first, err := fixtures.CreateTestGeneratedContent(persona.ID)
			require.NoError(t, err)
			second, err := fixtures.CreateTestGeneratedContent(persona.ID)
			require.NoError(t, err)

			items, err := repo.ListByPersona(ctx, persona.ID, 10, 0)
			require.NoError(t, err)
			require.GreaterOrEqual(t, len(items), 2)

			var firstIdx, secondIdx int
			for i, item := range items {
				if item.ID == first.ID {
					firstIdx = i
				}
				if item.ID == second.ID {
					secondIdx = i
				}
			}
			assert.Less(t, secondIdx, firstIdx)
		})

		t.Run("UpdateStatus", func(t *testing.T) {
			content, err := fixtures.CreateTestGeneratedContent(persona.ID)
			require.NoError(t, err)

			require.NoError(t, repo.UpdateStatus(ctx, content.ID, models.ContentStatusApproved))

			reloaded, err := repo.ByID(ctx, content.ID)
			require.NoError(t, err)
			assert.Equal(t, models.ContentStatusApproved, reloaded.Status)
		})
	})
}

func TestAuditLogRepository(t *testing.T) {
	withTestDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewAuditLogRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		artist, err := fixtures.CreateTestArtist()
		require.NoError(t, err)

		t.Run("ListByArtist", func(t *testing.T) {
			_, err := fixtures.CreateTestAuditLog(&artist.ID, models.AuditActionLoginSuccessful, true)
			require.NoError(t, err)

			logs, err := repo.ListByArtist(ctx, artist.ID, 10, 0)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(logs), 1)
		})

		t.Run("ListByAction", func(t *testing.T) {
			_, err := fixtures.CreateTestAuditLog(&artist.ID, models.AuditActionContentGenerated, true)
			require.NoError(t, err)

			logs, err := repo.ListByAction(ctx, models.AuditActionContentGenerated, 10, 0)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, len(logs), 1)
			for _, entry := range logs {
				assert.Equal(t, models.AuditActionContentGenerated, entry.Action)
			}
		})

		t.Run("PurgeOlderThan", func(t *testing.T) {
			entry, err := fixtures.CreateTestAuditLog(&artist.ID, models.AuditActionLoginFailed, false)
			require.NoError(t, err)

			// Age the entry past the retention cutoff
			err = testDB.DB.Model(&models.AuditLog{}).
				Where("id = ?", entry.ID).
				Update("created_at", time.Now().Add(-100*24*time.Hour)).Error
			require.NoError(t, err)

			n, err := repo.PurgeOlderThan(ctx, utils.UTCNow().Add(-90*24*time.Hour))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, int64(1))

			reloaded, err := repo.ByID(ctx, entry.ID)
			require.NoError(t, err)
			assert.Nil(t, reloaded)
		})
	})
}
