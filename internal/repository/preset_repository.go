package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// PresetRepository defines data access for mastering presets
type PresetRepository interface {
	Create(ctx context.Context, preset *domain.MasteringPreset) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.MasteringPreset, error)
	FindByName(ctx context.Context, ownerEmail, name string) (*domain.MasteringPreset, error)
	ListByOwner(ctx context.Context, ownerEmail string) ([]*domain.MasteringPreset, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type presetRepositoryImpl struct {
	coll Collection[domain.MasteringPreset]
}

// NewPresetRepository creates a new instance of PresetRepository
func NewPresetRepository(coll Collection[domain.MasteringPreset]) PresetRepository {
	return &presetRepositoryImpl{coll: coll}
}

func (r *presetRepositoryImpl) Create(ctx context.Context, preset *domain.MasteringPreset) error {
	return r.coll.Create(ctx, preset)
}

func (r *presetRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.MasteringPreset, error) {
	return r.coll.FindByID(ctx, id)
}

func (r *presetRepositoryImpl) FindByName(ctx context.Context, ownerEmail, name string) (*domain.MasteringPreset, error) {
	presets, err := r.coll.Filter(ctx, Query{
		Where: map[string]interface{}{"created_by": ownerEmail, "name": name},
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(presets) == 0 {
		return nil, ErrNotFound
	}
	return presets[0], nil
}

func (r *presetRepositoryImpl) ListByOwner(ctx context.Context, ownerEmail string) ([]*domain.MasteringPreset, error) {
	return r.coll.Filter(ctx, Query{
		Where: map[string]interface{}{"created_by": ownerEmail},
		Sort:  "-created_date",
	})
}

func (r *presetRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.coll.Delete(ctx, id)
}
