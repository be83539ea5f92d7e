package handlers

import (
	"context"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/amirphl/Ame-no-Uzume/app/dto"
	businessflow "github.com/amirphl/Ame-no-Uzume/business_flow"
	"github.com/gofiber/fiber/v3"
)

type UploadHandlerInterface interface {
	UploadQuestionnaire(c fiber.Ctx) error
	ListUploads(c fiber.Ctx) error
}

// UploadHandler handles questionnaire file uploads
type UploadHandler struct {
	flow businessflow.UploadFlow
}

func NewUploadHandler(flow businessflow.UploadFlow) *UploadHandler {
	return &UploadHandler{flow: flow}
}

func (h *UploadHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *UploadHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// UploadQuestionnaire ingests a questionnaire file and rebuilds the persona
// @Summary Upload questionnaire file
// @Description Upload an xlsx, csv or txt questionnaire file; parsed answers upsert into the active persona
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Questionnaire file"
// @Success 200 {object} dto.APIResponse{data=dto.UploadResponse} "File ingested successfully"
// @Failure 400 {object} dto.APIResponse "Unparseable file"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 413 {object} dto.APIResponse "File too large"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/uploads/questionnaire [post]
func (h *UploadHandler) UploadQuestionnaire(c fiber.Ctx) error {
	artistID, ok := artistIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Artist ID not found in context", "MISSING_ARTIST_ID", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Missing file field", "MISSING_FILE", err.Error())
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Failed to open uploaded file", "FILE_OPEN_FAILED", nil)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read uploaded file", "FILE_READ_FAILED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	mimeType := fileHeader.Header.Get("Content-Type")

	res, err := h.flow.IngestFile(h.createRequestContext(c, "/api/v1/uploads/questionnaire"), artistID, fileHeader.Filename, mimeType, data, metadata)
	if err != nil {
		if businessflow.IsUploadedFileTooLarge(err) {
			return h.ErrorResponse(c, fiber.StatusRequestEntityTooLarge, "File exceeds the size limit", "FILE_TOO_LARGE", nil)
		}
		if businessflow.IsUploadedFileInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "File could not be parsed", "FILE_UNPARSEABLE", nil)
		}
		if businessflow.IsQuestionnaireEmpty(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "File contains no answers", "QUESTIONNAIRE_EMPTY", nil)
		}

		log.Println("Upload failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to ingest file", "UPLOAD_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// ListUploads returns the artist's file ingestion history
// @Summary List uploads
// @Description List the authenticated artist's questionnaire file ingestion records, newest first
// @Tags Upload
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} dto.APIResponse{data=dto.ListUploadsResponse} "Uploads retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/uploads [get]
func (h *UploadHandler) ListUploads(c fiber.Ctx) error {
	artistID, ok := artistIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Artist ID not found in context", "MISSING_ARTIST_ID", nil)
	}

	page, pageSize := paginationParams(c)

	res, err := h.flow.ListUploads(h.createRequestContext(c, "/api/v1/uploads"), artistID, page, pageSize)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination parameters", "INVALID_PAGINATION", nil)
		}

		log.Println("List uploads failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list uploads", "LIST_UPLOADS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, res.Message, fiber.Map{
		"uploads": res.Uploads,
	})
}

func (h *UploadHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// paginationParams reads page and page_size query parameters with defaults
func paginationParams(c fiber.Ctx) (int, int) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err := strconv.Atoi(c.Query("page_size", "20"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
