package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// ChatRepository defines data access for project chat messages
type ChatRepository interface {
	Create(ctx context.Context, message *domain.ProjectChat) error
	ListRecent(ctx context.Context, projectID uuid.UUID, limit int) ([]*domain.ProjectChat, error)
}

type chatRepositoryImpl struct {
	coll Collection[domain.ProjectChat]
}

// NewChatRepository creates a new instance of ChatRepository
func NewChatRepository(coll Collection[domain.ProjectChat]) ChatRepository {
	return &chatRepositoryImpl{coll: coll}
}

func (r *chatRepositoryImpl) Create(ctx context.Context, message *domain.ProjectChat) error {
	return r.coll.Create(ctx, message)
}

// ListRecent returns the newest messages first
func (r *chatRepositoryImpl) ListRecent(ctx context.Context, projectID uuid.UUID, limit int) ([]*domain.ProjectChat, error) {
	return r.coll.Filter(ctx, byProject(projectID, limit))
}
