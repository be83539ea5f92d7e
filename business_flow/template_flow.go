package businessflow

import (
	"context"

	"github.com/amirphl/Ame-no-Uzume/app/dto"
	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/repository"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"github.com/google/uuid"
)

// TemplateFlow is the registry for reusable content templates
type TemplateFlow interface {
	Register(ctx context.Context, artistID uint, req *dto.RegisterTemplateRequest, metadata *ClientMetadata) (*dto.TemplateResponse, error)
	Resolve(ctx context.Context, name string) (*dto.TemplateResponse, error)
	List(ctx context.Context, contentType *string) (*dto.ListTemplatesResponse, error)
	Render(ctx context.Context, req *dto.RenderTemplateRequest) (*dto.RenderTemplateResponse, error)
	Suggest(ctx context.Context, artistID uint, contentType string) (*dto.SuggestTemplatesResponse, error)
	Deactivate(ctx context.Context, name string) error
}

type TemplateFlowImpl struct {
	templateRepo repository.ContentTemplateRepository
	personaRepo  repository.PersonaRepository
	auditRepo    repository.AuditLogRepository
}

func NewTemplateFlow(
	templateRepo repository.ContentTemplateRepository,
	personaRepo repository.PersonaRepository,
	auditRepo repository.AuditLogRepository,
) TemplateFlow {
	return &TemplateFlowImpl{
		templateRepo: templateRepo,
		personaRepo:  personaRepo,
		auditRepo:    auditRepo,
	}
}

// Register validates the full definition and upserts it by name.
// Registering an existing name overwrites its definition.
func (f *TemplateFlowImpl) Register(ctx context.Context, artistID uint, req *dto.RegisterTemplateRequest, metadata *ClientMetadata) (*dto.TemplateResponse, error) {
	variables := make([]models.TemplateVariable, 0, len(req.Variables))
	for _, v := range req.Variables {
		variables = append(variables, models.TemplateVariable{
			Name:        v.Name,
			Type:        v.Type,
			Required:    v.Required,
			Default:     v.Default,
			Options:     v.Options,
			Description: v.Description,
		})
	}

	if problems := validateTemplateDefinition(req.Name, req.ContentType, req.Body, variables); len(problems) > 0 {
		return nil, NewValidationError(problems)
	}

	template := &models.ContentTemplate{
		UUID:        uuid.New(),
		Name:        req.Name,
		ContentType: req.ContentType,
		Description: req.Description,
		Body:        req.Body,
		Variables:   variables,
		IsActive:    utils.ToPtr(true),
		CreatedAt:   utils.UTCNow(),
		UpdatedAt:   utils.UTCNow(),
	}
	if err := f.templateRepo.Upsert(ctx, template); err != nil {
		return nil, NewBusinessError("TEMPLATE_REGISTER_FAILED", "Failed to register template", err)
	}

	recordAudit(ctx, f.auditRepo, artistID, models.AuditActionTemplateRegistered, "template registered: "+req.Name, true, metadata)

	stored, err := f.templateRepo.ByName(ctx, req.Name)
	if err != nil || stored == nil {
		return nil, NewBusinessError("TEMPLATE_FETCH_FAILED", "Failed to fetch registered template", err)
	}
	return &dto.TemplateResponse{
		Message:  "Template registered",
		Template: ToTemplateDTO(stored),
	}, nil
}

// Resolve returns the template by name; absent is a distinct error kind
func (f *TemplateFlowImpl) Resolve(ctx context.Context, name string) (*dto.TemplateResponse, error) {
	template, err := f.templateRepo.ByName(ctx, name)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_FETCH_FAILED", "Failed to fetch template", err)
	}
	if template == nil || !utils.IsTrue(template.IsActive) {
		return nil, NewBusinessError("TEMPLATE_NOT_FOUND", "Template not found", ErrTemplateNotFound)
	}
	return &dto.TemplateResponse{
		Message:  "Template retrieved",
		Template: ToTemplateDTO(template),
	}, nil
}

// List returns active templates in stable name order
func (f *TemplateFlowImpl) List(ctx context.Context, contentType *string) (*dto.ListTemplatesResponse, error) {
	templates, err := f.templateRepo.ListActive(ctx, contentType)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_LIST_FAILED", "Failed to list templates", err)
	}
	resp := &dto.ListTemplatesResponse{Message: "Templates retrieved"}
	for _, t := range templates {
		resp.Templates = append(resp.Templates, ToTemplateDTO(t))
	}
	return resp, nil
}

// Render substitutes values into the named template
func (f *TemplateFlowImpl) Render(ctx context.Context, req *dto.RenderTemplateRequest) (*dto.RenderTemplateResponse, error) {
	template, err := f.templateRepo.ByName(ctx, req.Name)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_FETCH_FAILED", "Failed to fetch template", err)
	}
	if template == nil || !utils.IsTrue(template.IsActive) {
		return nil, NewBusinessError("TEMPLATE_NOT_FOUND", "Template not found", ErrTemplateNotFound)
	}

	text, err := substituteTemplate(template, req.Values)
	if err != nil {
		return nil, err
	}
	return &dto.RenderTemplateResponse{
		Message: "Template rendered",
		Text:    text,
	}, nil
}

// Suggest ranks active templates of the given content type for the
// artist's persona. Without a persona the list comes back in default
// (name) order with no affinity scores.
func (f *TemplateFlowImpl) Suggest(ctx context.Context, artistID uint, contentType string) (*dto.SuggestTemplatesResponse, error) {
	if !isValidContentType(contentType) {
		return nil, NewBusinessError("INVALID_CONTENT_TYPE", "Unknown content type "+contentType, ErrInvalidContentType)
	}

	templates, err := f.templateRepo.ListActive(ctx, &contentType)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_LIST_FAILED", "Failed to list templates", err)
	}

	persona, err := f.personaRepo.ActiveByArtist(ctx, artistID)
	if err != nil {
		return nil, NewBusinessError("PERSONA_FETCH_FAILED", "Failed to fetch persona", err)
	}

	resp := &dto.SuggestTemplatesResponse{Message: "Template suggestions retrieved"}
	if persona == nil {
		for _, t := range templates {
			resp.Suggestions = append(resp.Suggestions, dto.TemplateSuggestionDTO{Template: ToTemplateDTO(t)})
		}
		return resp, nil
	}

	for _, s := range suggestTemplates(templates, persona) {
		resp.Suggestions = append(resp.Suggestions, dto.TemplateSuggestionDTO{
			Template: ToTemplateDTO(s.template),
			Affinity: s.affinity,
		})
	}
	return resp, nil
}

// Deactivate soft-deletes a template by name
func (f *TemplateFlowImpl) Deactivate(ctx context.Context, name string) error {
	template, err := f.templateRepo.ByName(ctx, name)
	if err != nil {
		return NewBusinessError("TEMPLATE_FETCH_FAILED", "Failed to fetch template", err)
	}
	if template == nil {
		return NewBusinessError("TEMPLATE_NOT_FOUND", "Template not found", ErrTemplateNotFound)
	}
	if err := f.templateRepo.Deactivate(ctx, template.ID); err != nil {
		return NewBusinessError("TEMPLATE_DEACTIVATE_FAILED", "Failed to deactivate template", err)
	}
	return nil
}

func isValidContentType(t string) bool {
	switch t {
	case models.ContentTypeInstagramPost, models.ContentTypeTweet, models.ContentTypeFacebookPost,
		models.ContentTypeShowAnnounce, models.ContentTypeReleaseAnnounce:
		return true
	}
	return false
}
