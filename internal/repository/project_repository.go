package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// ProjectRepository defines data access for project metadata
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	ListByOwner(ctx context.Context, ownerEmail, sort string, limit int) ([]*domain.Project, error)
	ListAll(ctx context.Context) ([]*domain.Project, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type projectRepositoryImpl struct {
	coll Collection[domain.Project]
}

// NewProjectRepository creates a new instance of ProjectRepository
func NewProjectRepository(coll Collection[domain.Project]) ProjectRepository {
	return &projectRepositoryImpl{coll: coll}
}

func (r *projectRepositoryImpl) Create(ctx context.Context, project *domain.Project) error {
	return r.coll.Create(ctx, project)
}

func (r *projectRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return r.coll.FindByID(ctx, id)
}

// ListByOwner lists projects created by ownerEmail
func (r *projectRepositoryImpl) ListByOwner(ctx context.Context, ownerEmail, sort string, limit int) ([]*domain.Project, error) {
	if sort == "" {
		sort = "-created_date"
	}
	return r.coll.Filter(ctx, Query{
		Where: map[string]interface{}{"created_by": ownerEmail},
		Sort:  sort,
		Limit: limit,
	})
}

func (r *projectRepositoryImpl) ListAll(ctx context.Context) ([]*domain.Project, error) {
	return r.coll.Filter(ctx, Query{})
}

func (r *projectRepositoryImpl) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.coll.Update(ctx, id, fields)
}

func (r *projectRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.coll.Delete(ctx, id)
}
