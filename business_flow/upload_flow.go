package businessflow

import (
	"context"

	"github.com/amirphl/Ame-no-Uzume/app/dto"
	"github.com/amirphl/Ame-no-Uzume/app/services"
	"github.com/amirphl/Ame-no-Uzume/models"
	"github.com/amirphl/Ame-no-Uzume/repository"
	"github.com/amirphl/Ame-no-Uzume/utils"
	"github.com/google/uuid"
)

// UploadFlow ingests questionnaire files. Parsed answers run through
// the same questionnaire upsert path as a direct submission; every
// upload attempt leaves a status row, failed or not.
type UploadFlow interface {
	IngestFile(ctx context.Context, artistID uint, fileName, mimeType string, data []byte, metadata *ClientMetadata) (*dto.UploadResponse, error)
	ListUploads(ctx context.Context, artistID uint, page, pageSize int) (*dto.ListUploadsResponse, error)
}

type UploadFlowImpl struct {
	parser      *services.QuestionnaireFileParser
	personaFlow PersonaFlow
	uploadRepo  repository.UploadedFileRepository
	auditRepo   repository.AuditLogRepository
	maxSize     int64
}

func NewUploadFlow(
	parser *services.QuestionnaireFileParser,
	personaFlow PersonaFlow,
	uploadRepo repository.UploadedFileRepository,
	auditRepo repository.AuditLogRepository,
	maxSize int64,
) UploadFlow {
	if maxSize <= 0 {
		maxSize = utils.MaxUploadSizeBytes
	}
	return &UploadFlowImpl{
		parser:      parser,
		personaFlow: personaFlow,
		uploadRepo:  uploadRepo,
		auditRepo:   auditRepo,
		maxSize:     maxSize,
	}
}

func (f *UploadFlowImpl) IngestFile(ctx context.Context, artistID uint, fileName, mimeType string, data []byte, metadata *ClientMetadata) (*dto.UploadResponse, error) {
	if int64(len(data)) > f.maxSize {
		return nil, NewBusinessError("UPLOAD_TOO_LARGE", "Uploaded file exceeds the size limit", ErrUploadedFileTooLarge)
	}

	record := &models.UploadedFile{
		UUID:      uuid.New(),
		ArtistID:  artistID,
		FileName:  fileName,
		MimeType:  mimeType,
		SizeBytes: int64(len(data)),
		CreatedAt: utils.UTCNow(),
	}

	answers, err := f.parser.Parse(fileName, data)
	if err != nil {
		record.Status = models.UploadStatusFailed
		msg := err.Error()
		record.ErrorMessage = &msg
		_ = f.uploadRepo.Save(ctx, record)
		recordAudit(ctx, f.auditRepo, artistID, models.AuditActionFileIngestFailed, "file ingestion failed: "+fileName, false, metadata)
		return nil, NewBusinessError("UPLOAD_PARSE_FAILED", "Uploaded file could not be parsed", ErrUploadedFileInvalid)
	}

	req := &dto.SubmitQuestionnaireRequest{}
	for _, a := range answers {
		req.Answers = append(req.Answers, dto.QuestionnaireAnswerDTO{
			QuestionKey:  a.QuestionKey,
			QuestionText: a.QuestionText,
			Answer:       a.Answer,
			AnswerType:   a.AnswerType,
		})
	}

	personaResp, err := f.personaFlow.SubmitQuestionnaire(ctx, artistID, req, metadata)
	if err != nil {
		record.Status = models.UploadStatusFailed
		msg := err.Error()
		record.ErrorMessage = &msg
		_ = f.uploadRepo.Save(ctx, record)
		recordAudit(ctx, f.auditRepo, artistID, models.AuditActionFileIngestFailed, "file ingestion failed: "+fileName, false, metadata)
		return nil, err
	}

	record.Status = models.UploadStatusProcessed
	record.AnswerCount = len(answers)
	if err := f.uploadRepo.Save(ctx, record); err != nil {
		return nil, NewBusinessError("UPLOAD_RECORD_FAILED", "Failed to record upload", err)
	}
	recordAudit(ctx, f.auditRepo, artistID, models.AuditActionFileIngested, "file ingested: "+fileName, true, metadata)

	return &dto.UploadResponse{
		Message:     "File ingested and persona updated",
		FileUUID:    record.UUID.String(),
		FileName:    fileName,
		AnswerCount: len(answers),
		Status:      record.Status,
		Persona:     &personaResp.Persona,
	}, nil
}

func (f *UploadFlowImpl) ListUploads(ctx context.Context, artistID uint, page, pageSize int) (*dto.ListUploadsResponse, error) {
	if page < 1 {
		return nil, NewBusinessError("INVALID_PAGE", "page must be at least 1", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("INVALID_PAGE_SIZE", "page size must be between 1 and 100", ErrInvalidPageSize)
	}

	rows, err := f.uploadRepo.ListByArtist(ctx, artistID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("UPLOAD_LIST_FAILED", "Failed to list uploads", err)
	}

	resp := &dto.ListUploadsResponse{Message: "Uploads retrieved"}
	for _, r := range rows {
		item := dto.UploadedFileDTO{
			UUID:        r.UUID.String(),
			FileName:    r.FileName,
			MimeType:    r.MimeType,
			SizeBytes:   r.SizeBytes,
			AnswerCount: r.AnswerCount,
			Status:      r.Status,
			CreatedAt:   r.CreatedAt,
		}
		if r.ErrorMessage != nil {
			item.ErrorMessage = r.ErrorMessage
		}
		resp.Uploads = append(resp.Uploads, item)
	}
	return resp, nil
}
