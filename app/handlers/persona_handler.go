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

type PersonaHandlerInterface interface {
	GetPersona(c fiber.Ctx) error
	SubmitQuestionnaire(c fiber.Ctx) error
}

// PersonaHandler handles persona and questionnaire HTTP requests
type PersonaHandler struct {
	flow      businessflow.PersonaFlow
	validator *validator.Validate
}

func NewPersonaHandler(flow businessflow.PersonaFlow) *PersonaHandler {
	return &PersonaHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *PersonaHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PersonaHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetPersona returns the authenticated artist's active persona
// @Summary Get active persona
// @Description Retrieve the authenticated artist's active persona with its questionnaire answers
// @Tags Persona
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.PersonaResponse} "Persona retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "No active persona"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/persona [get]
func (h *PersonaHandler) GetPersona(c fiber.Ctx) error {
	artistID, ok := artistIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Artist ID not found in context", "MISSING_ARTIST_ID", nil)
	}

	res, err := h.flow.GetActivePersona(h.createRequestContext(c, "/api/v1/persona"), artistID)
	if err != nil {
		if businessflow.IsPersonaNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "No active persona; submit the questionnaire first", "PERSONA_NOT_FOUND", nil)
		}

		log.Println("Get persona failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get persona", "GET_PERSONA_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"persona": res.Persona,
	})
}

// SubmitQuestionnaire ingests questionnaire answers and rebuilds the persona
// @Summary Submit questionnaire
// @Description Submit questionnaire answers; answers upsert by question key and the active persona is re-derived
// @Tags Persona
// @Accept json
// @Produce json
// @Param request body dto.SubmitQuestionnaireRequest true "Questionnaire answers"
// @Success 200 {object} dto.APIResponse{data=dto.PersonaResponse} "Persona updated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/persona/questionnaire [post]
func (h *PersonaHandler) SubmitQuestionnaire(c fiber.Ctx) error {
	artistID, ok := artistIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Artist ID not found in context", "MISSING_ARTIST_ID", nil)
	}

	var req dto.SubmitQuestionnaireRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationMessages(err))
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	res, err := h.flow.SubmitQuestionnaire(h.createRequestContext(c, "/api/v1/persona/questionnaire"), artistID, &req, metadata)
	if err != nil {
		if businessflow.IsQuestionnaireEmpty(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Questionnaire has no answers", "QUESTIONNAIRE_EMPTY", nil)
		}
		if businessflow.IsArtistNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Artist not found", "ARTIST_NOT_FOUND", nil)
		}
		if errors.Is(err, businessflow.ErrQuestionKeyRequired) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Every answer needs a question key", "QUESTION_KEY_REQUIRED", nil)
		}
		if errors.Is(err, businessflow.ErrAnswerRequired) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Every answer needs a value", "ANSWER_REQUIRED", nil)
		}
		if errors.Is(err, businessflow.ErrInvalidAnswerType) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown answer type", "INVALID_ANSWER_TYPE", nil)
		}

		log.Println("Submit questionnaire failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to submit questionnaire", "SUBMIT_QUESTIONNAIRE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"persona": res.Persona,
	})
}

func (h *PersonaHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
