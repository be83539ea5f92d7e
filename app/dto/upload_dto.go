package dto

import "time"

// UploadResponse reports the outcome of a questionnaire file ingest
type UploadResponse struct {
	Message     string      `json:"message"`
	FileUUID    string      `json:"file_uuid"`
	FileName    string      `json:"file_name"`
	AnswerCount int         `json:"answer_count"`
	Status      string      `json:"status"`
	Persona     *PersonaDTO `json:"persona,omitempty"`
}

// UploadedFileDTO is one ingestion record
type UploadedFileDTO struct {
	UUID         string    `json:"uuid"`
	FileName     string    `json:"file_name"`
	MimeType     string    `json:"mime_type"`
	SizeBytes    int64     `json:"size_bytes"`
	AnswerCount  int       `json:"answer_count"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListUploadsResponse wraps an artist's ingestion history
type ListUploadsResponse struct {
	Message string            `json:"message"`
	Uploads []UploadedFileDTO `json:"uploads"`
}
