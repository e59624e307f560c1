package domain

import (
	"time"

	"github.com/google/uuid"
)

// UploadStatus tracks whether an uploaded file has been attached to a project.
type UploadStatus string

const (
	UploadStatusTemp      UploadStatus = "TEMP"      // not attached, expires
	UploadStatusConfirmed UploadStatus = "CONFIRMED" // attached to a project or installer
)

// AudioFile records a file uploaded through the dashboard.
// StorageKey is empty when the hosted platform owns the object.
type AudioFile struct {
	BaseModel
	ProjectID   *uuid.UUID   `gorm:"type:uuid;index" json:"project_id,omitempty"`
	Status      UploadStatus `gorm:"type:varchar(20);not null;default:'TEMP';index" json:"status"`
	FileName    string       `gorm:"type:varchar(255);not null" json:"file_name"`
	FileURL     string       `gorm:"type:text;not null" json:"file_url"`
	StorageKey  string       `gorm:"type:text" json:"storage_key,omitempty"`
	FileSize    int64        `gorm:"not null" json:"file_size"`
	ContentType string       `gorm:"type:varchar(100);not null" json:"content_type"`
	UploadedBy  string       `gorm:"type:varchar(255);not null;index" json:"uploaded_by"`
	ExpiresAt   *time.Time   `gorm:"index" json:"expires_at,omitempty"`
}

func (AudioFile) TableName() string      { return "audio_files" }
func (AudioFile) CollectionName() string { return CollectionAudioFile }
