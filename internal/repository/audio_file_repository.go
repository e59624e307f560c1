package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// AudioFileRepository defines data access for uploaded files
type AudioFileRepository interface {
	Create(ctx context.Context, file *domain.AudioFile) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.AudioFile, error)
	ListByUploader(ctx context.Context, userEmail string) ([]*domain.AudioFile, error)
	FindExpiredTemp(ctx context.Context, now time.Time) ([]*domain.AudioFile, error)
	Confirm(ctx context.Context, id, projectID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type audioFileRepositoryImpl struct {
	coll Collection[domain.AudioFile]
}

// NewAudioFileRepository creates a new instance of AudioFileRepository
func NewAudioFileRepository(coll Collection[domain.AudioFile]) AudioFileRepository {
	return &audioFileRepositoryImpl{coll: coll}
}

func (r *audioFileRepositoryImpl) Create(ctx context.Context, file *domain.AudioFile) error {
	return r.coll.Create(ctx, file)
}

func (r *audioFileRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.AudioFile, error) {
	return r.coll.FindByID(ctx, id)
}

func (r *audioFileRepositoryImpl) ListByUploader(ctx context.Context, userEmail string) ([]*domain.AudioFile, error) {
	return r.coll.Filter(ctx, Query{
		Where: map[string]interface{}{"uploaded_by": userEmail},
		Sort:  "-created_date",
	})
}

// FindExpiredTemp finds temporary uploads whose expiry is before now.
// The expiry comparison runs here because the platform filter only
// supports equality.
func (r *audioFileRepositoryImpl) FindExpiredTemp(ctx context.Context, now time.Time) ([]*domain.AudioFile, error) {
	temps, err := r.coll.Filter(ctx, Query{
		Where: map[string]interface{}{"status": domain.UploadStatusTemp},
	})
	if err != nil {
		return nil, err
	}

	var expired []*domain.AudioFile
	for _, f := range temps {
		if f.ExpiresAt != nil && f.ExpiresAt.Before(now) {
			expired = append(expired, f)
		}
	}
	return expired, nil
}

func (r *audioFileRepositoryImpl) Confirm(ctx context.Context, id, projectID uuid.UUID) error {
	return r.coll.Update(ctx, id, map[string]interface{}{
		"status":     domain.UploadStatusConfirmed,
		"project_id": projectID,
		"expires_at": nil,
	})
}

func (r *audioFileRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.coll.Delete(ctx, id)
}
