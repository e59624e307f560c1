package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// DownloadRepository defines data access for published installers
type DownloadRepository interface {
	Create(ctx context.Context, file *domain.DownloadFile) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.DownloadFile, error)
	ListAll(ctx context.Context) ([]*domain.DownloadFile, error)
	ListActive(ctx context.Context) ([]*domain.DownloadFile, error)
	ListActiveByPlatform(ctx context.Context, platform string) ([]*domain.DownloadFile, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SetDownloadCount(ctx context.Context, id uuid.UUID, count int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type downloadRepositoryImpl struct {
	coll Collection[domain.DownloadFile]
}

// NewDownloadRepository creates a new instance of DownloadRepository
func NewDownloadRepository(coll Collection[domain.DownloadFile]) DownloadRepository {
	return &downloadRepositoryImpl{coll: coll}
}

func (r *downloadRepositoryImpl) Create(ctx context.Context, file *domain.DownloadFile) error {
	return r.coll.Create(ctx, file)
}

func (r *downloadRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.DownloadFile, error) {
	return r.coll.FindByID(ctx, id)
}

func (r *downloadRepositoryImpl) ListAll(ctx context.Context) ([]*domain.DownloadFile, error) {
	return r.coll.Filter(ctx, Query{Sort: "-created_date"})
}

func (r *downloadRepositoryImpl) ListActive(ctx context.Context) ([]*domain.DownloadFile, error) {
	return r.coll.Filter(ctx, Query{
		Where: map[string]interface{}{"is_active": true},
		Sort:  "platform",
	})
}

func (r *downloadRepositoryImpl) ListActiveByPlatform(ctx context.Context, platform string) ([]*domain.DownloadFile, error) {
	return r.coll.Filter(ctx, Query{
		Where: map[string]interface{}{"is_active": true, "platform": platform},
	})
}

func (r *downloadRepositoryImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.coll.Update(ctx, id, map[string]interface{}{"is_active": active})
}

func (r *downloadRepositoryImpl) SetDownloadCount(ctx context.Context, id uuid.UUID, count int) error {
	return r.coll.Update(ctx, id, map[string]interface{}{"download_count": count})
}

func (r *downloadRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.coll.Delete(ctx, id)
}
