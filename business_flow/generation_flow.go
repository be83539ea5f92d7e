package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/amirphl/Ame-no-Uzume/app/dto"
	"github.com/amirphl/Ame-no-Uzume/app/services"
	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/repository"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Temperature schedule: each variation index runs slightly hotter so
// outputs diverge without a separate diversity pass.
const (
	baseTemperature     = 0.7
	temperatureStep     = 0.1
	maxPromptThemeCount = 5
)

var (
	generationRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "generation_requests_total",
		Help: "Generation requests by backend and outcome",
	}, []string{"backend", "outcome"})

	generationCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "generation_cache_total",
		Help: "Generation cache lookups by result",
	}, []string{"result"})

	generationVariationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "generation_variations_total",
		Help: "Produced variations by backend and disposition",
	}, []string{"backend", "disposition"})
)

// GenerationFlow orchestrates persona-conditioned content generation
type GenerationFlow interface {
	Generate(ctx context.Context, artistID uint, req *dto.GenerateContentRequest, metadata *ClientMetadata) (*dto.GenerateContentResponse, error)
	ListContent(ctx context.Context, artistID uint, page, pageSize int) (*dto.ListContentResponse, error)
	UpdateStatus(ctx context.Context, artistID uint, contentUUID, status string, metadata *ClientMetadata) (*dto.GeneratedContentDTO, error)
}

type GenerationFlowImpl struct {
	personaRepo  repository.PersonaRepository
	templateRepo repository.ContentTemplateRepository
	contentRepo  repository.GeneratedContentRepository
	auditRepo    repository.AuditLogRepository
	generators   *services.GeneratorRegistry
	cache        services.GenerationCache
	limiter      services.RateLimiter
}

func NewGenerationFlow(
	personaRepo repository.PersonaRepository,
	templateRepo repository.ContentTemplateRepository,
	contentRepo repository.GeneratedContentRepository,
	auditRepo repository.AuditLogRepository,
	generators *services.GeneratorRegistry,
	cache services.GenerationCache,
	limiter services.RateLimiter,
) GenerationFlow {
	return &GenerationFlowImpl{
		personaRepo:  personaRepo,
		templateRepo: templateRepo,
		contentRepo:  contentRepo,
		auditRepo:    auditRepo,
		generators:   generators,
		cache:        cache,
		limiter:      limiter,
	}
}

// generationCacheParams is the canonical request parameter set the
// cache key is derived from. Backend is included because outputs
// differ by backend.
type generationCacheParams struct {
	PersonaUUID    string            `json:"persona_uuid"`
	ContentType    string            `json:"content_type"`
	Context        string            `json:"context"`
	MaxLength      int               `json:"max_length"`
	VariationCount int               `json:"variation_count"`
	TemplateName   string            `json:"template_name"`
	TemplateValues map[string]string `json:"template_values,omitempty"`
	Backend        string            `json:"backend"`
}

// Generate builds a persona-conditioned prompt, invokes the chosen
// backend once per variation, scores, ranks, and persists the results.
// A cache hit short-circuits everything and returns the prior result
// set verbatim.
func (f *GenerationFlowImpl) Generate(ctx context.Context, artistID uint, req *dto.GenerateContentRequest, metadata *ClientMetadata) (*dto.GenerateContentResponse, error) {
	if !models.IsValidBackend(req.Backend) {
		return nil, NewBusinessError("INVALID_BACKEND", "Unknown generation backend "+req.Backend, ErrInvalidBackend)
	}
	if !isValidContentType(req.ContentType) {
		return nil, NewBusinessError("INVALID_CONTENT_TYPE", "Unknown content type "+req.ContentType, ErrInvalidContentType)
	}

	variationCount := req.VariationCount
	if variationCount == 0 {
		variationCount = utils.DefaultVariationCount
	}
	if variationCount < 1 || variationCount > utils.MaxVariationCount {
		return nil, NewBusinessError("INVALID_VARIATION_COUNT",
			fmt.Sprintf("variation_count must be between 1 and %d", utils.MaxVariationCount), ErrInvalidVariationCount)
	}
	maxLength := req.MaxLength
	if maxLength <= 0 {
		maxLength = utils.DefaultMaxLength
	}

	persona, err := f.personaRepo.ActiveByArtist(ctx, artistID)
	if err != nil {
		return nil, NewBusinessError("PERSONA_FETCH_FAILED", "Failed to fetch persona", err)
	}
	if persona == nil {
		return nil, NewBusinessError("PERSONA_NOT_FOUND", "No active persona. Submit the questionnaire first", ErrPersonaNotFound)
	}

	// Optional template pre-substitution feeds the prompt context
	promptContext := strings.TrimSpace(req.Context)
	if req.TemplateName != "" {
		template, err := f.templateRepo.ByName(ctx, req.TemplateName)
		if err != nil {
			return nil, NewBusinessError("TEMPLATE_FETCH_FAILED", "Failed to fetch template", err)
		}
		if template == nil || !utils.IsTrue(template.IsActive) {
			return nil, NewBusinessError("TEMPLATE_NOT_FOUND", "Template not found", ErrTemplateNotFound)
		}
		rendered, err := substituteTemplate(template, templateValuesWithPersona(req.TemplateValues, persona))
		if err != nil {
			return nil, err
		}
		promptContext = rendered
	}

	params := generationCacheParams{
		PersonaUUID:    persona.UUID.String(),
		ContentType:    req.ContentType,
		Context:        promptContext,
		MaxLength:      maxLength,
		VariationCount: variationCount,
		TemplateName:   req.TemplateName,
		TemplateValues: req.TemplateValues,
		Backend:        req.Backend,
	}
	cacheKey, err := services.CacheKey(params)
	if err != nil {
		return nil, NewBusinessError("CACHE_KEY_FAILED", "Failed to derive cache key", err)
	}

	if cached, err := f.cache.Get(ctx, cacheKey); err != nil {
		log.Printf("generation cache read failed: %v", err)
	} else if cached != nil {
		var resp dto.GenerateContentResponse
		if err := json.Unmarshal(cached, &resp); err == nil {
			generationCacheTotal.WithLabelValues("hit").Inc()
			resp.CacheHit = true
			return &resp, nil
		}
		log.Printf("generation cache entry for %s is corrupt, regenerating", cacheKey)
	}
	generationCacheTotal.WithLabelValues("miss").Inc()

	generator, err := f.generators.Get(req.Backend)
	if err != nil {
		return nil, NewBusinessError("INVALID_BACKEND", "Unknown generation backend "+req.Backend, ErrInvalidBackend)
	}

	prompt := buildPrompt(persona, req.ContentType, promptContext)

	texts := make([]string, 0, variationCount)
	for i := 0; i < variationCount; i++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, NewBusinessError("GENERATION_CANCELED", "Generation request canceled", err)
		}
		out, err := generator.Generate(ctx, services.GenerationInput{
			Prompt:      prompt,
			MaxTokens:   maxLength,
			Temperature: baseTemperature + temperatureStep*float64(i),
		})
		if err != nil {
			generationRequestsTotal.WithLabelValues(req.Backend, "backend_error").Inc()
			recordAudit(ctx, f.auditRepo, artistID, models.AuditActionGenerationFailed, "backend call failed", false, metadata)
			return nil, NewBusinessError("GENERATION_BACKEND_FAILED", "Generation backend call failed",
				fmt.Errorf("%w: %v", ErrGenerationBackend, err))
		}
		text := strings.TrimSpace(out.Text)
		if text == "" {
			// Empty variations are skipped, never retried
			generationVariationsTotal.WithLabelValues(req.Backend, "empty").Inc()
			continue
		}
		generationVariationsTotal.WithLabelValues(req.Backend, "produced").Inc()
		texts = append(texts, text)
	}

	resp := &dto.GenerateContentResponse{}
	if len(texts) == 0 {
		resp.Message = "no content generated"
		generationRequestsTotal.WithLabelValues(req.Backend, "empty").Inc()
		f.storeInCache(ctx, cacheKey, resp)
		return resp, nil
	}

	paramsSnapshot, _ := json.Marshal(params)

	items := make([]dto.GeneratedContentDTO, 0, len(texts))
	for _, text := range texts {
		metrics := ScoreQuality(text, persona)
		items = append(items, dto.GeneratedContentDTO{
			Text:         text,
			ContentType:  req.ContentType,
			Backend:      req.Backend,
			QualityScore: metrics.Overall,
			Metrics:      toMetricsDTO(metrics),
			Status:       models.ContentStatusDraft,
		})
	}

	// Rank by overall score, stable so generation order breaks ties
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].QualityScore > items[j].QualityScore
	})

	// Persistence is isolated per variation: one failed save flags that
	// item and leaves its siblings alone.
	for i := range items {
		row := &models.GeneratedContent{
			UUID:         uuid.New(),
			PersonaID:    persona.ID,
			ContentType:  items[i].ContentType,
			Text:         items[i].Text,
			Backend:      items[i].Backend,
			QualityScore: items[i].QualityScore,
			Params:       paramsSnapshot,
			Status:       models.ContentStatusDraft,
			CreatedAt:    utils.UTCNow(),
			UpdatedAt:    utils.UTCNow(),
		}
		if snapshot, err := json.Marshal(items[i].Metrics); err == nil {
			row.Metrics = snapshot
		}
		if err := f.contentRepo.Save(ctx, row); err != nil {
			log.Printf("failed to save generated variation: %v", err)
			items[i].Saved = false
			errCode := "STORAGE_ERROR"
			items[i].SaveError = &errCode
			continue
		}
		items[i].Saved = true
		items[i].UUID = row.UUID.String()
	}

	resp.Message = "Content generated"
	resp.Items = items
	generationRequestsTotal.WithLabelValues(req.Backend, "success").Inc()
	recordAudit(ctx, f.auditRepo, artistID, models.AuditActionContentGenerated,
		fmt.Sprintf("generated %d variations via %s", len(items), req.Backend), true, metadata)

	f.storeInCache(ctx, cacheKey, resp)
	return resp, nil
}

func (f *GenerationFlowImpl) storeInCache(ctx context.Context, key string, resp *dto.GenerateContentResponse) {
	payload, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := f.cache.Set(ctx, key, payload, utils.GenerationCacheTTL); err != nil {
		log.Printf("generation cache write failed: %v", err)
	}
}

// ListContent returns the artist's generated content, newest first
func (f *GenerationFlowImpl) ListContent(ctx context.Context, artistID uint, page, pageSize int) (*dto.ListContentResponse, error) {
	if page < 1 {
		return nil, NewBusinessError("INVALID_PAGE", "page must be at least 1", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("INVALID_PAGE_SIZE", "page size must be between 1 and 100", ErrInvalidPageSize)
	}

	persona, err := f.personaRepo.ActiveByArtist(ctx, artistID)
	if err != nil {
		return nil, NewBusinessError("PERSONA_FETCH_FAILED", "Failed to fetch persona", err)
	}
	if persona == nil {
		return nil, NewBusinessError("PERSONA_NOT_FOUND", "No active persona", ErrPersonaNotFound)
	}

	rows, err := f.contentRepo.ListByPersona(ctx, persona.ID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("CONTENT_LIST_FAILED", "Failed to list content", err)
	}

	resp := &dto.ListContentResponse{Message: "Generated content retrieved"}
	for _, row := range rows {
		resp.Items = append(resp.Items, toGeneratedContentDTO(row))
	}
	return resp, nil
}

// UpdateStatus flips the approval status of one content row. Status
// never changes automatically; this call is the only transition path.
func (f *GenerationFlowImpl) UpdateStatus(ctx context.Context, artistID uint, contentUUID, status string, metadata *ClientMetadata) (*dto.GeneratedContentDTO, error) {
	if !models.IsValidContentStatus(status) {
		return nil, NewBusinessError("INVALID_CONTENT_STATUS", "Unknown content status "+status, ErrInvalidContentStatus)
	}

	row, err := f.contentRepo.ByUUID(ctx, contentUUID)
	if err != nil {
		return nil, NewBusinessError("CONTENT_FETCH_FAILED", "Failed to fetch content", err)
	}
	if row == nil {
		return nil, NewBusinessError("CONTENT_NOT_FOUND", "Generated content not found", ErrGeneratedContentAbsent)
	}

	persona, err := f.personaRepo.ActiveByArtist(ctx, artistID)
	if err != nil {
		return nil, NewBusinessError("PERSONA_FETCH_FAILED", "Failed to fetch persona", err)
	}
	if persona == nil || persona.ID != row.PersonaID {
		return nil, NewBusinessError("CONTENT_NOT_FOUND", "Generated content not found", ErrGeneratedContentAbsent)
	}

	if err := f.contentRepo.UpdateStatus(ctx, row.ID, status); err != nil {
		return nil, NewBusinessError("CONTENT_UPDATE_FAILED", "Failed to update content status", err)
	}
	recordAudit(ctx, f.auditRepo, artistID, models.AuditActionContentReviewed, "content "+contentUUID+" marked "+status, true, metadata)

	row.Status = status
	out := toGeneratedContentDTO(row)
	return &out, nil
}

// buildPrompt assembles the persona-conditioned instruction for the backend
func buildPrompt(persona *models.Persona, contentType, promptContext string) string {
	var sb strings.Builder

	sb.WriteString(contentTypeLeadIn(contentType))
	sb.WriteString(fmt.Sprintf(" Write in a %s tone.", persona.Tone))
	if persona.TargetAudience != "" {
		sb.WriteString(fmt.Sprintf(" The audience is %s.", persona.TargetAudience))
	}
	if len(persona.ThemeKeywords) > 0 {
		themes := persona.ThemeKeywords
		if len(themes) > maxPromptThemeCount {
			themes = themes[:maxPromptThemeCount]
		}
		sb.WriteString(" Weave in these themes where natural: " + strings.Join(themes, ", ") + ".")
	}
	if promptContext != "" {
		sb.WriteString(" Base the post on: " + promptContext)
	} else {
		sb.WriteString(" Post about what the artist is working on right now.")
	}
	return sb.String()
}

func contentTypeLeadIn(contentType string) string {
	switch contentType {
	case models.ContentTypeInstagramPost:
		return "Write an Instagram caption for a musician."
	case models.ContentTypeTweet:
		return "Write a short tweet for a musician. Keep it under 280 characters."
	case models.ContentTypeFacebookPost:
		return "Write a Facebook post for a musician."
	case models.ContentTypeShowAnnounce:
		return "Write a show announcement for a musician."
	case models.ContentTypeReleaseAnnounce:
		return "Write a new release announcement for a musician."
	default:
		return "Write a social media post for a musician."
	}
}

// templateValuesWithPersona fills persona-reusable variables the caller
// did not supply. Caller values always win.
func templateValuesWithPersona(values map[string]string, persona *models.Persona) map[string]string {
	merged := make(map[string]string, len(values)+4)
	merged["artist_name"] = persona.Name
	merged["tone"] = persona.Tone
	merged["audience"] = persona.TargetAudience
	if traits, err := persona.VoiceTraitsMap(); err == nil {
		if genre, ok := traits["genre"]; ok {
			merged["genre"] = genre
		}
	}
	for k, v := range values {
		merged[k] = v
	}
	return merged
}

func toMetricsDTO(m QualityMetrics) dto.QualityMetricsDTO {
	return dto.QualityMetricsDTO{
		Overall:          m.Overall,
		Readability:      m.Readability,
		Engagement:       m.Engagement,
		BrandConsistency: m.BrandConsistency,
		Issues:           m.Issues,
		Suggestions:      m.Suggestions,
	}
}

func toGeneratedContentDTO(row *models.GeneratedContent) dto.GeneratedContentDTO {
	out := dto.GeneratedContentDTO{
		UUID:         row.UUID.String(),
		Text:         row.Text,
		ContentType:  row.ContentType,
		Backend:      row.Backend,
		QualityScore: row.QualityScore,
		Status:       row.Status,
		Saved:        true,
		CreatedAt:    row.CreatedAt,
	}
	if len(row.Metrics) > 0 {
		var metrics dto.QualityMetricsDTO
		if err := json.Unmarshal(row.Metrics, &metrics); err == nil {
			out.Metrics = metrics
		}
	}
	return out
}
