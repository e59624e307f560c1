package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// PublishInstallerRequest is the form of an installer upload
// @Description Sent as multipart/form-data together with the installer in the "file" field
type PublishInstallerRequest struct {
	Platform     string `form:"platform" binding:"required,oneof=macOS Windows Linux" example:"macOS"`
	Version      string `form:"version" binding:"required,max=30" example:"1.4.0"`
	Requirements string `form:"requirements" binding:"max=2000"`
}

// DownloadResponse represents a published installer
type DownloadResponse struct {
	ID            uuid.UUID `json:"downloadId"`
	Platform      string    `json:"platform" example:"macOS"`
	Version       string    `json:"version" example:"1.4.0"`
	FileURL       string    `json:"fileUrl"`
	FileSize      string    `json:"fileSize" example:"84.2 MB"`
	Requirements  string    `json:"requirements"`
	ReleaseDate   string    `json:"releaseDate" example:"March 2026"`
	IsActive      bool      `json:"isActive"`
	DownloadCount int       `json:"downloadCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ToDownloadResponse converts a domain download file
func ToDownloadResponse(d *domain.DownloadFile) *DownloadResponse {
	return &DownloadResponse{
		ID:            d.ID,
		Platform:      d.Platform,
		Version:       d.Version,
		FileURL:       d.FileURL,
		FileSize:      d.FileSize,
		Requirements:  d.Requirements,
		ReleaseDate:   d.ReleaseDate,
		IsActive:      d.IsActive,
		DownloadCount: d.DownloadCount,
		CreatedAt:     d.CreatedDate,
	}
}
