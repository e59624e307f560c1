package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// CreatePresetRequest represents the request to save a mastering preset
// @Description Omitted numeric fields use the defaults: -14 LUFS, -1 dB limiter threshold, 50 ms release, 2:1 ratio, 100% width
type CreatePresetRequest struct {
	Name             string   `json:"name" binding:"required,min=1,max=255" example:"Streaming Loud"`
	Genre            string   `json:"genre" binding:"omitempty,max=50" example:"electronic"`
	TargetLUFS       *float64 `json:"targetLufs" binding:"omitempty,min=-30,max=0" example:"-9"`
	LimiterThreshold *float64 `json:"limiterThreshold" binding:"omitempty,min=-12,max=0" example:"-0.3"`
	LimiterRelease   *float64 `json:"limiterRelease" binding:"omitempty,min=1,max=1000" example:"30"`
	EQCurve          string   `json:"eqCurve" binding:"omitempty,max=2000" example:"bright"`
	CompressionRatio string   `json:"compressionRatio" binding:"omitempty,max=20" example:"4:1"`
	StereoWidth      *float64 `json:"stereoWidth" binding:"omitempty,min=0,max=200" example:"110"`
	IsDefault        bool     `json:"isDefault" example:"false"`
}

// PresetResponse represents a stored preset
type PresetResponse struct {
	ID               uuid.UUID `json:"presetId"`
	Name             string    `json:"name"`
	Genre            string    `json:"genre"`
	TargetLUFS       float64   `json:"targetLufs"`
	LimiterThreshold float64   `json:"limiterThreshold"`
	LimiterRelease   float64   `json:"limiterRelease"`
	EQCurve          string    `json:"eqCurve,omitempty"`
	CompressionRatio string    `json:"compressionRatio"`
	StereoWidth      float64   `json:"stereoWidth"`
	IsDefault        bool      `json:"isDefault"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ToPresetResponse converts a domain preset
func ToPresetResponse(p *domain.MasteringPreset) *PresetResponse {
	return &PresetResponse{
		ID:               p.ID,
		Name:             p.Name,
		Genre:            p.Genre,
		TargetLUFS:       p.TargetLUFS,
		LimiterThreshold: p.LimiterThreshold,
		LimiterRelease:   p.LimiterRelease,
		EQCurve:          p.EQCurve,
		CompressionRatio: p.CompressionRatio,
		StereoWidth:      p.StereoWidth,
		IsDefault:        p.IsDefault,
		CreatedAt:        p.CreatedDate,
	}
}
