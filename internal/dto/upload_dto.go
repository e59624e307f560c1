package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// PresignUploadRequest asks for a direct-to-storage upload URL
type PresignUploadRequest struct {
	FileName    string `json:"fileName" binding:"required,max=255" example:"vocal_take3.wav"`
	ContentType string `json:"contentType" binding:"required" example:"audio/wav"`
	FileSize    int64  `json:"fileSize" binding:"required,min=1" example:"10485760"`
}

// PresignUploadResponse carries the URL the client PUTs the file to
type PresignUploadResponse struct {
	FileID    uuid.UUID `json:"fileId"`
	UploadURL string    `json:"uploadUrl"`
	FileURL   string    `json:"fileUrl"`
	ExpiresIn int       `json:"expiresIn" example:"900"`
}

// ConfirmUploadRequest attaches an uploaded file to a project
type ConfirmUploadRequest struct {
	ProjectID uuid.UUID `json:"projectId" binding:"required" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
}

// AudioFileResponse is an uploaded file
type AudioFileResponse struct {
	ID          uuid.UUID  `json:"fileId"`
	ProjectID   *uuid.UUID `json:"projectId,omitempty"`
	Status      string     `json:"status" example:"TEMP"`
	FileName    string     `json:"fileName"`
	FileURL     string     `json:"fileUrl"`
	FileSize    int64      `json:"fileSize"`
	ContentType string     `json:"contentType"`
	UploadedBy  string     `json:"uploadedBy"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// ToAudioFileResponse converts a domain audio file
func ToAudioFileResponse(f *domain.AudioFile) *AudioFileResponse {
	return &AudioFileResponse{
		ID:          f.ID,
		ProjectID:   f.ProjectID,
		Status:      string(f.Status),
		FileName:    f.FileName,
		FileURL:     f.FileURL,
		FileSize:    f.FileSize,
		ContentType: f.ContentType,
		UploadedBy:  f.UploadedBy,
		ExpiresAt:   f.ExpiresAt,
		CreatedAt:   f.CreatedDate,
	}
}
