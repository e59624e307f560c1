package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/dadolfin1208/signalforge/internal/client"
	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/metrics"
	"github.com/dadolfin1208/signalforge/internal/repository"
	"github.com/dadolfin1208/signalforge/internal/response"
)

const (
	defaultStemType      = "vocals"
	defaultAnalysisLimit = 20
)

// Job outcomes recorded in metrics
const (
	jobOutcomeSuccess  = "success"
	jobOutcomeRejected = "rejected"
	jobOutcomeError    = "error"
)

// JobInvoker runs a named job on the remote backend
type JobInvoker interface {
	InvokeJob(ctx context.Context, name string, params map[string]interface{}) (*client.JobResult, error)
}

// AnalysisService submits analysis jobs and lists their stored results
type AnalysisService interface {
	SubmitMixing(ctx context.Context, user domain.User, projectID uuid.UUID, req *dto.MixingAnalysisRequest) (*dto.JobResponse, error)
	SubmitMastering(ctx context.Context, user domain.User, projectID uuid.UUID, req *dto.MasteringAnalysisRequest) (*dto.JobResponse, error)
	SubmitSeparation(ctx context.Context, user domain.User, projectID uuid.UUID, req *dto.StemSeparationRequest) (*dto.JobResponse, error)
	ListAnalyses(ctx context.Context, projectID uuid.UUID, limit int) (*dto.ProjectAnalysesResponse, error)
	MarkMixingApplied(ctx context.Context, user domain.User, analysisID uuid.UUID) (*dto.AnalysisResponse, error)
}

// analysisServiceImpl is the implementation of AnalysisService
type analysisServiceImpl struct {
	jobs         JobInvoker
	projectRepo  repository.ProjectRepository
	analysisRepo repository.AnalysisRepository
	presetRepo   repository.PresetRepository
	usage        UsageRecorder
	// recordResults is set when the store is self-hosted. The platform's
	// functions write their own result records.
	recordResults bool
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewAnalysisService creates a new instance of AnalysisService
func NewAnalysisService(
	jobs JobInvoker,
	projectRepo repository.ProjectRepository,
	analysisRepo repository.AnalysisRepository,
	presetRepo repository.PresetRepository,
	usage UsageRecorder,
	recordResults bool,
	m *metrics.Metrics,
	logger *zap.Logger,
) AnalysisService {
	return &analysisServiceImpl{
		jobs:          jobs,
		projectRepo:   projectRepo,
		analysisRepo:  analysisRepo,
		presetRepo:    presetRepo,
		usage:         usage,
		recordResults: recordResults,
		metrics:       m,
		logger:        logger,
	}
}

// SubmitMixing validates the form and invokes analyzeMixing
func (s *analysisServiceImpl) SubmitMixing(ctx context.Context, user domain.User, projectID uuid.UUID, req *dto.MixingAnalysisRequest) (*dto.JobResponse, error) {
	trackName := strings.TrimSpace(req.TrackName)
	if trackName == "" {
		return nil, response.NewValidationError("Track name is required", "")
	}

	analysisType := req.AnalysisType
	if analysisType == "" {
		analysisType = domain.AnalysisSingleTrack
	}

	var stemType string
	switch analysisType {
	case domain.AnalysisSingleTrack:
		stemType = valueOr(req.StemType, defaultStemType)
	case domain.AnalysisFullMix:
		stemType = domain.AnalysisFullMix
	default:
		return nil, response.NewValidationError("Invalid analysis type", analysisType)
	}

	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	result, err := s.invoke(ctx, user, domain.JobAnalyzeMixing, domain.ActionMixingAnalysis, projectID, map[string]interface{}{
		"project_id":    projectID.String(),
		"track_name":    trackName,
		"analysis_type": analysisType,
		"stem_type":     stemType,
		"file_url":      req.FileURL,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.JobResponse{Job: domain.JobAnalyzeMixing, Success: true, Data: result.Data}
	if s.recordResults {
		analysis := &domain.MixingAnalysis{
			BaseModel:    domain.BaseModel{CreatedBy: user.Email},
			ProjectID:    projectID,
			TrackName:    trackName,
			AnalysisType: analysisType,
			StemType:     stemType,
			FileURL:      req.FileURL,
			Result:       datatypes.JSON(result.Data),
		}
		if err := s.analysisRepo.CreateMixing(ctx, analysis); err != nil {
			return nil, storeError(err, "Mixing analysis")
		}
		resp.RecordID = &analysis.ID
	}
	return resp, nil
}

// SubmitMastering validates the form, resolves the preset and invokes analyzeMastering
func (s *analysisServiceImpl) SubmitMastering(ctx context.Context, user domain.User, projectID uuid.UUID, req *dto.MasteringAnalysisRequest) (*dto.JobResponse, error) {
	trackName := strings.TrimSpace(req.TrackName)
	if trackName == "" {
		return nil, response.NewValidationError("Track name is required", "")
	}

	masteringType := req.MasteringType
	if masteringType == "" {
		masteringType = domain.MasteringStereo
	}

	var stemType string
	switch masteringType {
	case domain.MasteringStereo:
	case domain.MasteringStem:
		if req.StemType == "" {
			return nil, response.NewValidationError("Stem type is required for stem mastering", "")
		}
		stemType = req.StemType
	default:
		return nil, response.NewValidationError("Invalid mastering type", masteringType)
	}

	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	preset, err := s.resolvePreset(ctx, user, req.PresetID, req.PresetName)
	if err != nil {
		return nil, err
	}

	targetLUFS := domain.DefaultTargetLUFS
	presetName := ""
	if preset != nil {
		targetLUFS = preset.TargetLUFS
		presetName = preset.Name
	}

	result, err := s.invoke(ctx, user, domain.JobAnalyzeMastering, domain.ActionMasteringAnalysis, projectID, map[string]interface{}{
		"project_id":     projectID.String(),
		"track_name":     trackName,
		"mastering_type": masteringType,
		"stem_type":      stemType,
		"target_lufs":    targetLUFS,
		"preset_name":    presetName,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.JobResponse{Job: domain.JobAnalyzeMastering, Success: true, Data: result.Data}
	if s.recordResults {
		analysis := &domain.MasteringAnalysis{
			BaseModel:     domain.BaseModel{CreatedBy: user.Email},
			ProjectID:     projectID,
			TrackName:     trackName,
			MasteringType: masteringType,
			StemType:      stemType,
			TargetLUFS:    targetLUFS,
			PresetName:    presetName,
			Result:        datatypes.JSON(result.Data),
		}
		if err := s.analysisRepo.CreateMastering(ctx, analysis); err != nil {
			return nil, storeError(err, "Mastering analysis")
		}
		resp.RecordID = &analysis.ID
	}
	return resp, nil
}

// SubmitSeparation validates the form and invokes separateStems
func (s *analysisServiceImpl) SubmitSeparation(ctx context.Context, user domain.User, projectID uuid.UUID, req *dto.StemSeparationRequest) (*dto.JobResponse, error) {
	trackName := strings.TrimSpace(req.TrackName)
	if trackName == "" {
		return nil, response.NewValidationError("Track name is required", "")
	}
	if strings.TrimSpace(req.SourceFileURL) == "" {
		return nil, response.NewValidationError("Source file URL is required", "")
	}

	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	result, err := s.invoke(ctx, user, domain.JobSeparateStems, domain.ActionStemSeparation, projectID, map[string]interface{}{
		"project_id":      projectID.String(),
		"track_name":      trackName,
		"source_file_url": req.SourceFileURL,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.JobResponse{Job: domain.JobSeparateStems, Success: true, Data: result.Data}
	if s.recordResults {
		separation := &domain.StemSeparation{
			BaseModel:     domain.BaseModel{CreatedBy: user.Email},
			ProjectID:     projectID,
			TrackName:     trackName,
			SourceFileURL: req.SourceFileURL,
			Result:        datatypes.JSON(result.Data),
		}
		if err := s.analysisRepo.CreateSeparation(ctx, separation); err != nil {
			return nil, storeError(err, "Stem separation")
		}
		resp.RecordID = &separation.ID
	}
	return resp, nil
}

// ListAnalyses returns the most recent analyses of a project, newest first
func (s *analysisServiceImpl) ListAnalyses(ctx context.Context, projectID uuid.UUID, limit int) (*dto.ProjectAnalysesResponse, error) {
	if limit <= 0 {
		limit = defaultAnalysisLimit
	}

	mixing, err := s.analysisRepo.ListMixing(ctx, projectID, limit)
	if err != nil {
		return nil, storeError(err, "Mixing analyses")
	}
	mastering, err := s.analysisRepo.ListMastering(ctx, projectID, limit)
	if err != nil {
		return nil, storeError(err, "Mastering analyses")
	}
	separations, err := s.analysisRepo.ListSeparations(ctx, projectID, limit)
	if err != nil {
		return nil, storeError(err, "Stem separations")
	}

	resp := &dto.ProjectAnalysesResponse{
		Mixing:      make([]*dto.AnalysisResponse, 0, len(mixing)),
		Mastering:   make([]*dto.AnalysisResponse, 0, len(mastering)),
		Separations: make([]*dto.AnalysisResponse, 0, len(separations)),
	}
	for _, a := range mixing {
		resp.Mixing = append(resp.Mixing, dto.ToMixingResponse(a))
	}
	for _, a := range mastering {
		resp.Mastering = append(resp.Mastering, dto.ToMasteringResponse(a))
	}
	for _, sep := range separations {
		resp.Separations = append(resp.Separations, dto.ToSeparationResponse(sep))
	}
	return resp, nil
}

// MarkMixingApplied flags a mixing analysis as applied in the DAW
func (s *analysisServiceImpl) MarkMixingApplied(ctx context.Context, user domain.User, analysisID uuid.UUID) (*dto.AnalysisResponse, error) {
	if err := s.analysisRepo.MarkMixingApplied(ctx, analysisID); err != nil {
		return nil, storeError(err, "Mixing analysis")
	}
	analysis, err := s.analysisRepo.FindMixing(ctx, analysisID)
	if err != nil {
		return nil, storeError(err, "Mixing analysis")
	}
	s.logger.Info("Mixing analysis applied",
		zap.String("analysis_id", analysisID.String()),
		zap.String("user_email", user.Email),
	)
	return dto.ToMixingResponse(analysis), nil
}

// resolvePreset returns nil when no preset is named. A named preset that
// does not exist, or belongs to someone else, is a validation error.
func (s *analysisServiceImpl) resolvePreset(ctx context.Context, user domain.User, presetID *uuid.UUID, presetName string) (*domain.MasteringPreset, error) {
	if presetID != nil && *presetID != uuid.Nil {
		preset, err := s.presetRepo.FindByID(ctx, *presetID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, storeError(err, "Mastering preset")
		}
		if err != nil || preset.CreatedBy != user.Email {
			return nil, response.NewValidationError("Unknown mastering preset", presetID.String())
		}
		return preset, nil
	}

	presetName = strings.TrimSpace(presetName)
	if presetName == "" {
		return nil, nil
	}
	preset, err := s.presetRepo.FindByName(ctx, user.Email, presetName)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, response.NewValidationError("Unknown mastering preset", presetName)
	}
	if err != nil {
		return nil, storeError(err, "Mastering preset")
	}
	return preset, nil
}

func (s *analysisServiceImpl) requireProject(ctx context.Context, projectID uuid.UUID) error {
	if projectID == uuid.Nil {
		return response.NewValidationError("Project is required", "")
	}
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		return storeError(err, "Project")
	}
	return nil
}

// invoke runs the job and records the attempt. A result with success=false is
// an upstream error.
func (s *analysisServiceImpl) invoke(ctx context.Context, user domain.User, job, action string, projectID uuid.UUID, params map[string]interface{}) (*client.JobResult, error) {
	result, err := s.jobs.InvokeJob(ctx, job, params)

	switch {
	case err != nil:
		s.metrics.RecordJobSubmitted(job, jobOutcomeError)
		s.usage.Record(ctx, user, action, &projectID, false, err.Error())
		s.logger.Error("Job invocation failed",
			zap.String("job", job),
			zap.String("project_id", projectID.String()),
			zap.Error(err),
		)
		return nil, response.WrapAppError(response.ErrCodeUpstream, "Analysis backend request failed", err)

	case !result.Success:
		s.metrics.RecordJobSubmitted(job, jobOutcomeRejected)
		detail := result.Error
		if detail == "" {
			detail = string(result.Data)
		}
		s.usage.Record(ctx, user, action, &projectID, false, detail)
		s.logger.Warn("Job rejected by backend",
			zap.String("job", job),
			zap.String("project_id", projectID.String()),
			zap.String("detail", detail),
		)
		return nil, response.NewAppError(response.ErrCodeUpstream, fmt.Sprintf("%s did not succeed", job), detail)
	}

	s.metrics.RecordJobSubmitted(job, jobOutcomeSuccess)
	s.usage.Record(ctx, user, action, &projectID, true, "")
	return result, nil
}
