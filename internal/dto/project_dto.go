package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// CreateProjectRequest represents the request to create a new project
// @Description Request body for creating project metadata. Unset audio settings fall back to 48000 Hz, 24 bit, 120 BPM and 16 tracks.
type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255" example:"Summer EP"`
	Description string `json:"description" binding:"max=2000" example:"Four tracks, mostly analog synths"`
	SampleRate  string `json:"sampleRate" binding:"omitempty,oneof=44100 48000 88200 96000 192000" example:"48000"`
	BitDepth    string `json:"bitDepth" binding:"omitempty,oneof=16 24 32" example:"24"`
	Tempo       int    `json:"tempo" binding:"omitempty,min=20,max=400" example:"120"`
	TracksCount int    `json:"tracksCount" binding:"omitempty,min=1,max=512" example:"16"`
}

// UpdateProjectRequest represents the request to update a project
// @Description All fields are optional
type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255" example:"Summer EP (final)"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	SampleRate  *string `json:"sampleRate" binding:"omitempty,oneof=44100 48000 88200 96000 192000"`
	BitDepth    *string `json:"bitDepth" binding:"omitempty,oneof=16 24 32"`
	Tempo       *int    `json:"tempo" binding:"omitempty,min=20,max=400"`
	TracksCount *int    `json:"tracksCount" binding:"omitempty,min=1,max=512"`
}

// ListProjectsQuery holds the query string of the project list
type ListProjectsQuery struct {
	Sort  string `form:"sort" binding:"omitempty,oneof=-last_opened -created_date name" example:"-last_opened"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=200" example:"50"`
}

// ProjectResponse represents the project response
type ProjectResponse struct {
	ID          uuid.UUID  `json:"projectId" example:"539167fb-b599-41ba-9ead-344a6d0b3a2f"`
	Name        string     `json:"name" example:"Summer EP"`
	Description string     `json:"description"`
	SampleRate  string     `json:"sampleRate" example:"48000"`
	BitDepth    string     `json:"bitDepth" example:"24"`
	Tempo       int        `json:"tempo" example:"120"`
	TracksCount int        `json:"tracksCount" example:"16"`
	OwnerEmail  string     `json:"ownerEmail" example:"owner@example.com"`
	LastOpened  *time.Time `json:"lastOpened,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ToProjectResponse converts a domain project
func ToProjectResponse(p *domain.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		SampleRate:  p.SampleRate,
		BitDepth:    p.BitDepth,
		Tempo:       p.Tempo,
		TracksCount: p.TracksCount,
		OwnerEmail:  p.CreatedBy,
		LastOpened:  p.LastOpened,
		CreatedAt:   p.CreatedDate,
		UpdatedAt:   p.UpdatedDate,
	}
}
