package handlers

import (
	"context"
	"log"
	"time"

	"github.com/amirphl/Ame-no-Uzume/app/dto"
	businessflow "github.com/amirphl/Ame-no-Uzume/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type GenerationHandlerInterface interface {
	Generate(c fiber.Ctx) error
	ListContent(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
}

// GenerationHandler handles content generation HTTP requests
type GenerationHandler struct {
	flow      businessflow.GenerationFlow
	validator *validator.Validate
}

func NewGenerationHandler(flow businessflow.GenerationFlow) *GenerationHandler {
	return &GenerationHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *GenerationHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *GenerationHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Generate produces content variations for the artist's active persona
// @Summary Generate content
// @Description Generate scored content variations conditioned on the artist's active persona, best first
// @Tags Generation
// @Accept json
// @Produce json
// @Param request body dto.GenerateContentRequest true "Generation parameters"
// @Success 200 {object} dto.APIResponse{data=dto.GenerateContentResponse} "Content generated successfully"
// @Failure 400 {object} dto.APIResponse "Invalid parameters"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "No active persona or template"
// @Failure 502 {object} dto.APIResponse "AI backend unavailable"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/content/generate [post]
func (h *GenerationHandler) Generate(c fiber.Ctx) error {
	artistID, ok := artistIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Artist ID not found in context", "MISSING_ARTIST_ID", nil)
	}

	var req dto.GenerateContentRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	// Generation can wait on the backend rate limiter, so it gets a
	// longer deadline than the other endpoints
	ctx := createRequestContextWithTimeout(c, "/api/v1/content/generate", 2*time.Minute)

	res, err := h.flow.Generate(ctx, artistID, &req, metadata)
	if err != nil {
		if businessflow.IsInvalidBackend(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown generation backend", "INVALID_BACKEND", nil)
		}
		if businessflow.IsInvalidContentType(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown content type", "INVALID_CONTENT_TYPE", nil)
		}
		if businessflow.IsPersonaNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "No active persona; submit the questionnaire first", "PERSONA_NOT_FOUND", nil)
		}
		if businessflow.IsTemplateNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Template not found", "TEMPLATE_NOT_FOUND", nil)
		}
		if businessflow.IsMissingVariables(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Required template variables are missing", "MISSING_VARIABLES", nil)
		}
		if businessflow.IsGenerationBackend(err) {
			return h.ErrorResponse(c, fiber.StatusBadGateway, "AI backend call failed", "GENERATION_BACKEND_FAILED", nil)
		}

		log.Println("Content generation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Content generation failed", "GENERATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"cache_hit": res.CacheHit,
		"items":     res.Items,
	})
}

// ListContent returns the artist's generated content history
// @Summary List generated content
// @Description List the artist's generated content for the active persona, newest first
// @Tags Generation
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListContentResponse} "Content retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "No active persona"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/content [get]
func (h *GenerationHandler) ListContent(c fiber.Ctx) error {
	artistID, ok := artistIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Artist ID not found in context", "MISSING_ARTIST_ID", nil)
	}

	page, pageSize := paginationParams(c)

	res, err := h.flow.ListContent(h.createRequestContext(c, "/api/v1/content"), artistID, page, pageSize)
	if err != nil {
		if businessflow.IsPersonaNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "No active persona", "PERSONA_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("List content failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list content", "LIST_CONTENT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"items": res.Items,
	})
}

// UpdateStatus moves a generated item through review
// @Summary Update content status
// @Description Approve, reject or reset a generated content item owned by the artist's persona
// @Tags Generation
// @Accept json
// @Produce json
// @Param uuid path string true "Content UUID"
// @Param request body dto.UpdateContentStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.GeneratedContentDTO} "Status updated successfully"
// @Failure 400 {object} dto.APIResponse "Unknown status"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Content not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/content/{uuid}/status [patch]
func (h *GenerationHandler) UpdateStatus(c fiber.Ctx) error {
	artistID, ok := artistIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Artist ID not found in context", "MISSING_ARTIST_ID", nil)
	}

	var req dto.UpdateContentStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	item, err := h.flow.UpdateStatus(h.createRequestContext(c, "/api/v1/content/:uuid/status"), artistID, c.Params("uuid"), req.Status, metadata)
	if err != nil {
		if businessflow.IsInvalidContentStatus(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown content status", "INVALID_CONTENT_STATUS", nil)
		}
		if businessflow.IsGeneratedContentAbsent(err) || businessflow.IsPersonaNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Content not found", "CONTENT_NOT_FOUND", nil)
		}

		log.Println("Update content status failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update content status", "UPDATE_STATUS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Content status updated", fiber.Map{
		"item": item,
	})
}

func (h *GenerationHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
