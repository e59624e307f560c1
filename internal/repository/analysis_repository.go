package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// AnalysisRepository defines data access for analysis job results
type AnalysisRepository interface {
	CreateMixing(ctx context.Context, analysis *domain.MixingAnalysis) error
	CreateMastering(ctx context.Context, analysis *domain.MasteringAnalysis) error
	CreateSeparation(ctx context.Context, separation *domain.StemSeparation) error
	FindMixing(ctx context.Context, id uuid.UUID) (*domain.MixingAnalysis, error)
	ListMixing(ctx context.Context, projectID uuid.UUID, limit int) ([]*domain.MixingAnalysis, error)
	ListMastering(ctx context.Context, projectID uuid.UUID, limit int) ([]*domain.MasteringAnalysis, error)
	ListSeparations(ctx context.Context, projectID uuid.UUID, limit int) ([]*domain.StemSeparation, error)
	MarkMixingApplied(ctx context.Context, id uuid.UUID) error
}

type analysisRepositoryImpl struct {
	mixing     Collection[domain.MixingAnalysis]
	mastering  Collection[domain.MasteringAnalysis]
	separation Collection[domain.StemSeparation]
}

// NewAnalysisRepository creates a new instance of AnalysisRepository
func NewAnalysisRepository(
	mixing Collection[domain.MixingAnalysis],
	mastering Collection[domain.MasteringAnalysis],
	separation Collection[domain.StemSeparation],
) AnalysisRepository {
	return &analysisRepositoryImpl{
		mixing:     mixing,
		mastering:  mastering,
		separation: separation,
	}
}

func byProject(projectID uuid.UUID, limit int) Query {
	return Query{
		Where: map[string]interface{}{"project_id": projectID},
		Sort:  "-created_date",
		Limit: limit,
	}
}

func (r *analysisRepositoryImpl) CreateMixing(ctx context.Context, analysis *domain.MixingAnalysis) error {
	return r.mixing.Create(ctx, analysis)
}

func (r *analysisRepositoryImpl) CreateMastering(ctx context.Context, analysis *domain.MasteringAnalysis) error {
	return r.mastering.Create(ctx, analysis)
}

func (r *analysisRepositoryImpl) CreateSeparation(ctx context.Context, separation *domain.StemSeparation) error {
	return r.separation.Create(ctx, separation)
}

func (r *analysisRepositoryImpl) FindMixing(ctx context.Context, id uuid.UUID) (*domain.MixingAnalysis, error) {
	return r.mixing.FindByID(ctx, id)
}

func (r *analysisRepositoryImpl) ListMixing(ctx context.Context, projectID uuid.UUID, limit int) ([]*domain.MixingAnalysis, error) {
	return r.mixing.Filter(ctx, byProject(projectID, limit))
}

func (r *analysisRepositoryImpl) ListMastering(ctx context.Context, projectID uuid.UUID, limit int) ([]*domain.MasteringAnalysis, error) {
	return r.mastering.Filter(ctx, byProject(projectID, limit))
}

func (r *analysisRepositoryImpl) ListSeparations(ctx context.Context, projectID uuid.UUID, limit int) ([]*domain.StemSeparation, error) {
	return r.separation.Filter(ctx, byProject(projectID, limit))
}

func (r *analysisRepositoryImpl) MarkMixingApplied(ctx context.Context, id uuid.UUID) error {
	return r.mixing.Update(ctx, id, map[string]interface{}{"applied": true})
}
