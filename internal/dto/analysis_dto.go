package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// MixingAnalysisRequest submits an analyzeMixing job
// @Description stemType applies to single_track analyses only and defaults to vocals
type MixingAnalysisRequest struct {
	TrackName    string `json:"trackName" binding:"required,max=255" example:"Lead Vocal"`
	AnalysisType string `json:"analysisType" binding:"omitempty,oneof=single_track full_mix" example:"single_track"`
	StemType     string `json:"stemType" binding:"omitempty,max=30" example:"vocals"`
	FileURL      string `json:"fileUrl" binding:"omitempty,url" example:"https://files.example.com/vocal.wav"`
}

// MasteringAnalysisRequest submits an analyzeMastering job
// @Description Name a preset by presetId (preferred) or presetName. Without a preset the target is -14 LUFS.
type MasteringAnalysisRequest struct {
	TrackName     string     `json:"trackName" binding:"required,max=255" example:"Final Mix"`
	MasteringType string     `json:"masteringType" binding:"omitempty,oneof=stereo stem" example:"stereo"`
	StemType      string     `json:"stemType" binding:"omitempty,max=30" example:"drums"`
	PresetID      *uuid.UUID `json:"presetId,omitempty" example:"f47ac10b-58cc-4372-a567-0e02b2c3d479"`
	PresetName    string     `json:"presetName,omitempty" binding:"max=255" example:"Streaming Loud"`
}

// StemSeparationRequest submits a separateStems job
type StemSeparationRequest struct {
	TrackName     string `json:"trackName" binding:"required,max=255" example:"Full Song"`
	SourceFileURL string `json:"sourceFileUrl" binding:"required,url" example:"https://files.example.com/song.wav"`
}

// JobResponse is the backend's answer to a submitted job
type JobResponse struct {
	Job     string          `json:"job" example:"analyzeMixing"`
	Success bool            `json:"success" example:"true"`
	Data    json.RawMessage `json:"data,omitempty" swaggertype:"object"`
	// RecordID is set when the dashboard stored the result itself
	RecordID *uuid.UUID `json:"recordId,omitempty"`
}

// AnalysisResponse is one stored analysis of any kind
type AnalysisResponse struct {
	ID         uuid.UUID       `json:"id"`
	Kind       string          `json:"kind" example:"mixing"`
	ProjectID  uuid.UUID       `json:"projectId"`
	TrackName  string          `json:"trackName"`
	Type       string          `json:"type,omitempty" example:"single_track"`
	StemType   string          `json:"stemType,omitempty"`
	TargetLUFS *float64        `json:"targetLufs,omitempty"`
	PresetName string          `json:"presetName,omitempty"`
	FileURL    string          `json:"fileUrl,omitempty"`
	Applied    *bool           `json:"applied,omitempty"`
	Result     json.RawMessage `json:"result,omitempty" swaggertype:"object"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ProjectAnalysesResponse groups a project's recent analyses by kind
type ProjectAnalysesResponse struct {
	Mixing      []*AnalysisResponse `json:"mixing"`
	Mastering   []*AnalysisResponse `json:"mastering"`
	Separations []*AnalysisResponse `json:"separations"`
}

// ToMixingResponse converts a stored mixing analysis
func ToMixingResponse(a *domain.MixingAnalysis) *AnalysisResponse {
	applied := a.Applied
	return &AnalysisResponse{
		ID:        a.ID,
		Kind:      "mixing",
		ProjectID: a.ProjectID,
		TrackName: a.TrackName,
		Type:      a.AnalysisType,
		StemType:  a.StemType,
		FileURL:   a.FileURL,
		Applied:   &applied,
		Result:    json.RawMessage(a.Result),
		CreatedAt: a.CreatedDate,
	}
}

// ToMasteringResponse converts a stored mastering analysis
func ToMasteringResponse(a *domain.MasteringAnalysis) *AnalysisResponse {
	lufs := a.TargetLUFS
	return &AnalysisResponse{
		ID:         a.ID,
		Kind:       "mastering",
		ProjectID:  a.ProjectID,
		TrackName:  a.TrackName,
		Type:       a.MasteringType,
		StemType:   a.StemType,
		TargetLUFS: &lufs,
		PresetName: a.PresetName,
		Result:     json.RawMessage(a.Result),
		CreatedAt:  a.CreatedDate,
	}
}

// ToSeparationResponse converts a stored stem separation
func ToSeparationResponse(s *domain.StemSeparation) *AnalysisResponse {
	return &AnalysisResponse{
		ID:        s.ID,
		Kind:      "separation",
		ProjectID: s.ProjectID,
		TrackName: s.TrackName,
		FileURL:   s.SourceFileURL,
		Result:    json.RawMessage(s.Result),
		CreatedAt: s.CreatedDate,
	}
}
