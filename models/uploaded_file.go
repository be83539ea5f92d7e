package models

import (
	"time"

	"github.com/google/uuid"
)

// Upload processing statuses
const (
	UploadStatusProcessed = "processed"
	UploadStatusFailed    = "failed"
)

// UploadedFile records one ingested questionnaire file. The parsed
// answers themselves land in questionnaire_responses; this row keeps
// the ingestion audit trail.
type UploadedFile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UUID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uk_uploaded_files_uuid" json:"uuid"`
	ArtistID     uint      `gorm:"not null;index:idx_uploaded_files_artist_id" json:"artist_id"`
	Artist       Artist    `gorm:"foreignKey:ArtistID;references:ID" json:"artist,omitempty"`
	FileName     string    `gorm:"size:512;not null" json:"file_name"`
	MimeType     string    `gorm:"size:255" json:"mime_type"`
	SizeBytes    int64     `gorm:"not null" json:"size_bytes"`
	AnswerCount  int       `gorm:"not null;default:0" json:"answer_count"`
	Status       string    `gorm:"size:20;not null;index:idx_uploaded_files_status" json:"status"`
	ErrorMessage *string   `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_uploaded_files_created_at" json:"created_at"`
}

func (UploadedFile) TableName() string {
	return "uploaded_files"
}

// UploadedFileFilter represents filter criteria for upload queries
type UploadedFileFilter struct {
	ID            *uint
	UUID          *uuid.UUID
	ArtistID      *uint
	Status        *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}
