package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/repository"
	"github.com/dadolfin1208/signalforge/internal/response"
)

// Preset defaults
const (
	defaultPresetGenre      = "custom"
	defaultLimiterThreshold = -1.0
	defaultLimiterRelease   = 50.0
	defaultCompressionRatio = "2:1"
	defaultStereoWidth      = 100.0
	minTargetLUFS           = -30.0
	maxTargetLUFS           = 0.0
)

// PresetService manages mastering presets
type PresetService interface {
	ListPresets(ctx context.Context, user domain.User) ([]*dto.PresetResponse, error)
	CreatePreset(ctx context.Context, user domain.User, req *dto.CreatePresetRequest) (*dto.PresetResponse, error)
	DeletePreset(ctx context.Context, user domain.User, presetID uuid.UUID) error
}

type presetServiceImpl struct {
	presetRepo repository.PresetRepository
	logger     *zap.Logger
}

// NewPresetService creates a new instance of PresetService
func NewPresetService(presetRepo repository.PresetRepository, logger *zap.Logger) PresetService {
	return &presetServiceImpl{presetRepo: presetRepo, logger: logger}
}

func (s *presetServiceImpl) ListPresets(ctx context.Context, user domain.User) ([]*dto.PresetResponse, error) {
	presets, err := s.presetRepo.ListByOwner(ctx, user.Email)
	if err != nil {
		return nil, storeError(err, "Mastering presets")
	}
	responses := make([]*dto.PresetResponse, 0, len(presets))
	for _, p := range presets {
		responses = append(responses, dto.ToPresetResponse(p))
	}
	return responses, nil
}

func (s *presetServiceImpl) CreatePreset(ctx context.Context, user domain.User, req *dto.CreatePresetRequest) (*dto.PresetResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewValidationError("Preset name is required", "")
	}
	if req.TargetLUFS != nil && (*req.TargetLUFS < minTargetLUFS || *req.TargetLUFS > maxTargetLUFS) {
		return nil, response.NewValidationError("Target LUFS must be between -30 and 0", "")
	}

	preset := &domain.MasteringPreset{
		BaseModel:        domain.BaseModel{CreatedBy: user.Email},
		Name:             name,
		Genre:            valueOr(req.Genre, defaultPresetGenre),
		TargetLUFS:       floatOr(req.TargetLUFS, domain.DefaultTargetLUFS),
		LimiterThreshold: floatOr(req.LimiterThreshold, defaultLimiterThreshold),
		LimiterRelease:   floatOr(req.LimiterRelease, defaultLimiterRelease),
		EQCurve:          req.EQCurve,
		CompressionRatio: valueOr(req.CompressionRatio, defaultCompressionRatio),
		StereoWidth:      floatOr(req.StereoWidth, defaultStereoWidth),
		IsDefault:        req.IsDefault,
	}

	if err := s.presetRepo.Create(ctx, preset); err != nil {
		return nil, storeError(err, "Mastering preset")
	}
	return dto.ToPresetResponse(preset), nil
}

func (s *presetServiceImpl) DeletePreset(ctx context.Context, user domain.User, presetID uuid.UUID) error {
	preset, err := s.presetRepo.FindByID(ctx, presetID)
	if err != nil {
		return storeError(err, "Mastering preset")
	}
	if preset.CreatedBy != user.Email && !user.IsAdmin() {
		return response.NewForbiddenError("Only the preset owner can delete it", "")
	}
	if err := s.presetRepo.Delete(ctx, presetID); err != nil {
		return storeError(err, "Mastering preset")
	}
	return nil
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
