package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/amirphl/Ame-no-Uzume/app/dto"
	"github.com/amirphl/Ame-no-Uzume/app/services"
	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/repository"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTextBackend cycles through canned texts and counts invocations
type fakeTextBackend struct {
	name   string
	texts  []string
	calls  int
	inputs []services.GenerationInput
	err    error
}

func (g *fakeTextBackend) Name() string { return g.name }

func (g *fakeTextBackend) Generate(_ context.Context, in services.GenerationInput) (*services.GenerationOutput, error) {
	g.inputs = append(g.inputs, in)
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	text := ""
	if len(g.texts) > 0 {
		text = g.texts[(g.calls-1)%len(g.texts)]
	}
	return &services.GenerationOutput{Text: text}, nil
}

type fakePersonaRepo struct {
	repository.PersonaRepository
	persona *models.Persona
}

func (r *fakePersonaRepo) ActiveByArtist(context.Context, uint) (*models.Persona, error) {
	return r.persona, nil
}

type fakeContentRepo struct {
	repository.GeneratedContentRepository
	saved    []*models.GeneratedContent
	failCall int // 1-based Save call that fails; 0 means never
	calls    int
}

func (r *fakeContentRepo) Save(_ context.Context, row *models.GeneratedContent) error {
	r.calls++
	if r.failCall != 0 && r.calls == r.failCall {
		return errors.New("insert failed")
	}
	r.saved = append(r.saved, row)
	return nil
}

type fakeAuditRepo struct {
	repository.AuditLogRepository
	entries []*models.AuditLog
}

func (r *fakeAuditRepo) Save(_ context.Context, entry *models.AuditLog) error {
	r.entries = append(r.entries, entry)
	return nil
}

type noopLimiter struct{}

func (noopLimiter) Wait(context.Context) error { return nil }

func testGenerationPersona() *models.Persona {
	return &models.Persona{
		ID:             7,
		UUID:           uuid.New(),
		ArtistID:       1,
		Name:           "Test Artist",
		Tone:           models.ToneCasual,
		TargetAudience: "indie fans",
		ThemeKeywords:  pq.StringArray{"tour", "vinyl"},
	}
}

func newTestGenerationFlow(backend *fakeTextBackend, contentRepo *fakeContentRepo) (GenerationFlow, services.GenerationCache) {
	cache := services.NewMemoryGenerationCache(0, nil)
	return NewGenerationFlow(
		&fakePersonaRepo{persona: testGenerationPersona()},
		nil,
		contentRepo,
		&fakeAuditRepo{},
		services.NewGeneratorRegistry(backend),
		cache,
		noopLimiter{},
	), cache
}

func TestGenerate_RanksVariationsByScore(t *testing.T) {
	backend := &fakeTextBackend{name: models.BackendOpenAI, texts: []string{
		"The new record is out.",
		"Hey friends, the tour vinyl just dropped! Who's coming out tonight? #tour",
		"We made a thing and it exists now, honestly just chill about it.",
	}}
	contentRepo := &fakeContentRepo{}
	flow, cache := newTestGenerationFlow(backend, contentRepo)
	defer cache.Close()

	res, err := flow.Generate(context.Background(), 1, &dto.GenerateContentRequest{
		ContentType: models.ContentTypeInstagramPost,
		Backend:     models.BackendOpenAI,
	}, NewClientMetadata("127.0.0.1", "test"))
	require.NoError(t, err)

	require.Len(t, res.Items, 3)
	assert.Equal(t, 3, backend.calls)
	for i := 1; i < len(res.Items); i++ {
		assert.GreaterOrEqual(t, res.Items[i-1].QualityScore, res.Items[i].QualityScore)
	}
	for _, item := range res.Items {
		assert.True(t, item.Saved)
		assert.NotEmpty(t, item.UUID)
		assert.Equal(t, models.ContentStatusDraft, item.Status)
	}
	assert.Len(t, contentRepo.saved, 3)

	// Variations run progressively hotter
	require.Len(t, backend.inputs, 3)
	assert.InDelta(t, 0.7, backend.inputs[0].Temperature, 1e-9)
	assert.InDelta(t, 0.8, backend.inputs[1].Temperature, 1e-9)
	assert.InDelta(t, 0.9, backend.inputs[2].Temperature, 1e-9)
}

func TestGenerate_AllEmptyOutputIsSuccess(t *testing.T) {
	backend := &fakeTextBackend{name: models.BackendOpenAI, texts: []string{"", "  ", ""}}
	contentRepo := &fakeContentRepo{}
	flow, cache := newTestGenerationFlow(backend, contentRepo)
	defer cache.Close()

	res, err := flow.Generate(context.Background(), 1, &dto.GenerateContentRequest{
		ContentType: models.ContentTypeTweet,
		Backend:     models.BackendOpenAI,
	}, NewClientMetadata("127.0.0.1", "test"))
	require.NoError(t, err)

	assert.Equal(t, "no content generated", res.Message)
	assert.Empty(t, res.Items)
	// Empty variations are skipped without retry
	assert.Equal(t, 3, backend.calls)
	assert.Empty(t, contentRepo.saved)
}

func TestGenerate_IdenticalRequestServedFromCache(t *testing.T) {
	backend := &fakeTextBackend{name: models.BackendOpenAI, texts: []string{
		"First take on the single.",
		"Second take on the single.",
		"Third take on the single.",
	}}
	contentRepo := &fakeContentRepo{}
	flow, cache := newTestGenerationFlow(backend, contentRepo)
	defer cache.Close()

	req := &dto.GenerateContentRequest{
		ContentType: models.ContentTypeInstagramPost,
		Context:     "new single out friday",
		Backend:     models.BackendOpenAI,
	}

	first, err := flow.Generate(context.Background(), 1, req, NewClientMetadata("127.0.0.1", "test"))
	require.NoError(t, err)
	assert.False(t, first.CacheHit)
	assert.Equal(t, 3, backend.calls)

	second, err := flow.Generate(context.Background(), 1, req, NewClientMetadata("127.0.0.1", "test"))
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	// The backend is never consulted again for an identical request
	assert.Equal(t, 3, backend.calls)
	assert.Len(t, contentRepo.saved, 3)

	require.Len(t, second.Items, len(first.Items))
	for i := range first.Items {
		assert.Equal(t, first.Items[i].Text, second.Items[i].Text)
		assert.Equal(t, first.Items[i].QualityScore, second.Items[i].QualityScore)
	}
}

func TestGenerate_FailedSaveFlagsOnlyThatItem(t *testing.T) {
	backend := &fakeTextBackend{name: models.BackendOpenAI, texts: []string{
		"Variation one about the tour.",
		"Variation two about the vinyl.",
		"Variation three about the show.",
	}}
	contentRepo := &fakeContentRepo{failCall: 2}
	flow, cache := newTestGenerationFlow(backend, contentRepo)
	defer cache.Close()

	res, err := flow.Generate(context.Background(), 1, &dto.GenerateContentRequest{
		ContentType: models.ContentTypeInstagramPost,
		Backend:     models.BackendOpenAI,
	}, NewClientMetadata("127.0.0.1", "test"))
	require.NoError(t, err)
	require.Len(t, res.Items, 3)

	var failed, stored int
	for _, item := range res.Items {
		if item.Saved {
			stored++
			assert.NotEmpty(t, item.UUID)
			assert.Nil(t, item.SaveError)
		} else {
			failed++
			require.NotNil(t, item.SaveError)
			assert.Equal(t, "STORAGE_ERROR", *item.SaveError)
			assert.Empty(t, item.UUID)
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, stored)
	assert.Len(t, contentRepo.saved, 2)
}

func TestGenerate_BackendFailureIsHardError(t *testing.T) {
	backend := &fakeTextBackend{name: models.BackendOpenAI, err: errors.New("upstream 500")}
	contentRepo := &fakeContentRepo{}
	flow, cache := newTestGenerationFlow(backend, contentRepo)
	defer cache.Close()

	_, err := flow.Generate(context.Background(), 1, &dto.GenerateContentRequest{
		ContentType: models.ContentTypeInstagramPost,
		Backend:     models.BackendOpenAI,
	}, NewClientMetadata("127.0.0.1", "test"))
	require.Error(t, err)
	assert.True(t, IsGenerationBackend(err))
	// Backend errors are never retried here
	assert.Equal(t, 1, backend.calls)
	assert.Empty(t, contentRepo.saved)
}
