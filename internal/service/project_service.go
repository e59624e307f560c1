package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/metrics"
	"github.com/dadolfin1208/signalforge/internal/repository"
	"github.com/dadolfin1208/signalforge/internal/response"
)

const (
	defaultProjectSort  = "-last_opened"
	defaultProjectLimit = 50
)

// ProjectService defines the interface for project business logic
type ProjectService interface {
	ListProjects(ctx context.Context, user domain.User, query dto.ListProjectsQuery) ([]*dto.ProjectResponse, error)
	GetProject(ctx context.Context, projectID uuid.UUID) (*dto.ProjectResponse, error)
	CreateProject(ctx context.Context, user domain.User, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	UpdateProject(ctx context.Context, user domain.User, projectID uuid.UUID, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	OpenProject(ctx context.Context, user domain.User, projectID uuid.UUID) (*dto.ProjectResponse, error)
	DeleteProject(ctx context.Context, user domain.User, projectID uuid.UUID) error
}

// projectServiceImpl is the implementation of ProjectService
type projectServiceImpl struct {
	projectRepo repository.ProjectRepository
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewProjectService creates a new instance of ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, m *metrics.Metrics, logger *zap.Logger) ProjectService {
	return &projectServiceImpl{
		projectRepo: projectRepo,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// ListProjects returns the caller's own projects
func (s *projectServiceImpl) ListProjects(ctx context.Context, user domain.User, query dto.ListProjectsQuery) ([]*dto.ProjectResponse, error) {
	sort := query.Sort
	if sort == "" {
		sort = defaultProjectSort
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultProjectLimit
	}

	projects, err := s.projectRepo.ListByOwner(ctx, user.Email, sort, limit)
	if err != nil {
		return nil, storeError(err, "Projects")
	}

	responses := make([]*dto.ProjectResponse, 0, len(projects))
	for _, p := range projects {
		responses = append(responses, dto.ToProjectResponse(p))
	}
	return responses, nil
}

// GetProject returns one project. Any signed-in user may read a project so
// collaborators can open it.
func (s *projectServiceImpl) GetProject(ctx context.Context, projectID uuid.UUID) (*dto.ProjectResponse, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, storeError(err, "Project")
	}
	return dto.ToProjectResponse(project), nil
}

// CreateProject creates project metadata owned by the caller
func (s *projectServiceImpl) CreateProject(ctx context.Context, user domain.User, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if req.Name == "" {
		return nil, response.NewValidationError("Project name is required", "")
	}

	now := s.now().UTC()
	project := &domain.Project{
		BaseModel:   domain.BaseModel{CreatedBy: user.Email},
		Name:        req.Name,
		Description: req.Description,
		SampleRate:  valueOr(req.SampleRate, domain.DefaultSampleRate),
		BitDepth:    valueOr(req.BitDepth, domain.DefaultBitDepth),
		Tempo:       intOr(req.Tempo, domain.DefaultTempo),
		TracksCount: intOr(req.TracksCount, domain.DefaultTracksCount),
		LastOpened:  &now,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		s.logger.Error("Failed to create project", zap.String("user_email", user.Email), zap.Error(err))
		return nil, storeError(err, "Project")
	}

	s.metrics.IncrementProjectCreated()
	s.logger.Info("Project created",
		zap.String("project_id", project.ID.String()),
		zap.String("user_email", user.Email),
	)
	return dto.ToProjectResponse(project), nil
}

// UpdateProject applies the set fields of req
func (s *projectServiceImpl) UpdateProject(ctx context.Context, user domain.User, projectID uuid.UUID, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	if _, err := s.ownedProject(ctx, user, projectID); err != nil {
		return nil, err
	}

	fields := make(map[string]interface{})
	if req.Name != nil {
		if *req.Name == "" {
			return nil, response.NewValidationError("Project name cannot be empty", "")
		}
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.SampleRate != nil {
		fields["sample_rate"] = *req.SampleRate
	}
	if req.BitDepth != nil {
		fields["bit_depth"] = *req.BitDepth
	}
	if req.Tempo != nil {
		fields["tempo"] = *req.Tempo
	}
	if req.TracksCount != nil {
		fields["tracks_count"] = *req.TracksCount
	}

	if len(fields) > 0 {
		if err := s.projectRepo.Update(ctx, projectID, fields); err != nil {
			return nil, storeError(err, "Project")
		}
	}
	return s.GetProject(ctx, projectID)
}

// OpenProject marks the project as opened now
func (s *projectServiceImpl) OpenProject(ctx context.Context, user domain.User, projectID uuid.UUID) (*dto.ProjectResponse, error) {
	if _, err := s.ownedProject(ctx, user, projectID); err != nil {
		return nil, err
	}
	if err := s.projectRepo.Update(ctx, projectID, map[string]interface{}{
		"last_opened": s.now().UTC(),
	}); err != nil {
		return nil, storeError(err, "Project")
	}
	return s.GetProject(ctx, projectID)
}

// DeleteProject removes project metadata
func (s *projectServiceImpl) DeleteProject(ctx context.Context, user domain.User, projectID uuid.UUID) error {
	if _, err := s.ownedProject(ctx, user, projectID); err != nil {
		return err
	}
	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return storeError(err, "Project")
	}
	s.logger.Info("Project deleted",
		zap.String("project_id", projectID.String()),
		zap.String("user_email", user.Email),
	)
	return nil
}

// ownedProject loads a project the caller may modify
func (s *projectServiceImpl) ownedProject(ctx context.Context, user domain.User, projectID uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, storeError(err, "Project")
	}
	if project.CreatedBy != user.Email && !user.IsAdmin() {
		return nil, response.NewForbiddenError("Only the project owner can change it", "")
	}
	return project, nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func intOr(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
