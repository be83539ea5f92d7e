package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/amirphl/Ame-no-Uzume/app/dto"
	businessflow "github.com/amirphl/Ame-no-Uzume/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type TemplateHandlerInterface interface {
	Register(c fiber.Ctx) error
	GetTemplate(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Render(c fiber.Ctx) error
	Suggest(c fiber.Ctx) error
	Deactivate(c fiber.Ctx) error
}

// TemplateHandler handles content template HTTP requests
type TemplateHandler struct {
	flow      businessflow.TemplateFlow
	validator *validator.Validate
}

func NewTemplateHandler(flow businessflow.TemplateFlow) *TemplateHandler {
	return &TemplateHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *TemplateHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *TemplateHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Register creates or replaces a content template
// @Summary Register template
// @Description Register a content template; an existing template with the same name is replaced
// @Tags Templates
// @Accept json
// @Produce json
// @Param request body dto.RegisterTemplateRequest true "Template definition"
// @Success 200 {object} dto.APIResponse{data=dto.TemplateResponse} "Template registered successfully"
// @Failure 400 {object} dto.APIResponse "Invalid template definition"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/templates [post]
func (h *TemplateHandler) Register(c fiber.Ctx) error {
	artistID, ok := artistIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Artist ID not found in context", "MISSING_ARTIST_ID", nil)
	}

	var req dto.RegisterTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.Register(h.createRequestContext(c, "/api/v1/templates"), artistID, &req, metadata)
	if err != nil {
		var validationErr *businessflow.ValidationError
		if errors.As(err, &validationErr) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Template definition is invalid", "TEMPLATE_INVALID", validationErr.Problems)
		}
		if businessflow.IsInvalidContentType(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown content type", "INVALID_CONTENT_TYPE", nil)
		}

		log.Println("Register template failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to register template", "REGISTER_TEMPLATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"template": res.Template,
	})
}

// GetTemplate resolves a template by name
// @Summary Get template
// @Description Resolve an active template by name
// @Tags Templates
// @Produce json
// @Param name path string true "Template name"
// @Success 200 {object} dto.APIResponse{data=dto.TemplateResponse} "Template retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Template not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/templates/{name} [get]
func (h *TemplateHandler) GetTemplate(c fiber.Ctx) error {
	name := c.Params("name")

	res, err := h.flow.Resolve(h.createRequestContext(c, "/api/v1/templates/:name"), name)
	if err != nil {
		if businessflow.IsTemplateNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Template not found", "TEMPLATE_NOT_FOUND", nil)
		}

		log.Println("Get template failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get template", "GET_TEMPLATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"template": res.Template,
	})
}

// List returns active templates, optionally filtered by content type
// @Summary List templates
// @Description List active templates ordered by name, optionally filtered by content type
// @Tags Templates
// @Produce json
// @Param content_type query string false "Content type filter"
// @Success 200 {object} dto.APIResponse{data=dto.ListTemplatesResponse} "Templates retrieved successfully"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/templates [get]
func (h *TemplateHandler) List(c fiber.Ctx) error {
	var contentType *string
	if v := c.Query("content_type"); v != "" {
		contentType = &v
	}

	res, err := h.flow.List(h.createRequestContext(c, "/api/v1/templates"), contentType)
	if err != nil {
		if businessflow.IsInvalidContentType(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown content type", "INVALID_CONTENT_TYPE", nil)
		}

		log.Println("List templates failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list templates", "LIST_TEMPLATES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"templates": res.Templates,
	})
}

// Render fills a template with caller-supplied values
// @Summary Render template
// @Description Render a template body with caller values; all missing required variables are reported at once
// @Tags Templates
// @Accept json
// @Produce json
// @Param request body dto.RenderTemplateRequest true "Template name and values"
// @Success 200 {object} dto.APIResponse{data=dto.RenderTemplateResponse} "Template rendered successfully"
// @Failure 400 {object} dto.APIResponse "Missing required variables"
// @Failure 404 {object} dto.APIResponse "Template not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/templates/render [post]
func (h *TemplateHandler) Render(c fiber.Ctx) error {
	var req dto.RenderTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	res, err := h.flow.Render(h.createRequestContext(c, "/api/v1/templates/render"), &req)
	if err != nil {
		if businessflow.IsTemplateNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Template not found", "TEMPLATE_NOT_FOUND", nil)
		}
		var missingErr *businessflow.MissingVariableError
		if errors.As(err, &missingErr) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Required variables are missing", "MISSING_VARIABLES", missingErr.Missing)
		}

		log.Println("Render template failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to render template", "RENDER_TEMPLATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"text": res.Text,
	})
}

// Suggest ranks templates for the authenticated artist's persona
// @Summary Suggest templates
// @Description Rank active templates of a content type by affinity with the artist's persona, best first
// @Tags Templates
// @Produce json
// @Param content_type query string true "Content type"
// @Success 200 {object} dto.APIResponse{data=dto.SuggestTemplatesResponse} "Suggestions retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Unknown content type"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/templates/suggest [get]
func (h *TemplateHandler) Suggest(c fiber.Ctx) error {
	artistID, ok := artistIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Artist ID not found in context", "MISSING_ARTIST_ID", nil)
	}

	contentType := c.Query("content_type")

	res, err := h.flow.Suggest(h.createRequestContext(c, "/api/v1/templates/suggest"), artistID, contentType)
	if err != nil {
		if businessflow.IsInvalidContentType(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown content type", "INVALID_CONTENT_TYPE", nil)
		}

		log.Println("Suggest templates failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to suggest templates", "SUGGEST_TEMPLATES_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"suggestions": res.Suggestions,
	})
}

// Deactivate retires a template by name
// @Summary Deactivate template
// @Description Deactivate a template so it no longer resolves, lists or renders
// @Tags Templates
// @Produce json
// @Param name path string true "Template name"
// @Success 200 {object} dto.APIResponse "Template deactivated successfully"
// @Failure 404 {object} dto.APIResponse "Template not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/templates/{name} [delete]
func (h *TemplateHandler) Deactivate(c fiber.Ctx) error {
	name := c.Params("name")

	if err := h.flow.Deactivate(h.createRequestContext(c, "/api/v1/templates/:name"), name); err != nil {
		if businessflow.IsTemplateNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Template not found", "TEMPLATE_NOT_FOUND", nil)
		}

		log.Println("Deactivate template failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to deactivate template", "DEACTIVATE_TEMPLATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Template deactivated", nil)
}

func (h *TemplateHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
