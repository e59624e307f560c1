package client

import (
	"context"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/repository"
)

// remoteCollection is the hosted platform implementation of repository.Collection
type remoteCollection[T domain.Entity] struct {
	pc   *PlatformClient
	name string
}

// NewRemoteCollection creates a Collection stored on the hosted platform
func NewRemoteCollection[T domain.Entity](pc *PlatformClient) repository.Collection[T] {
	var zero T
	return &remoteCollection[T]{pc: pc, name: zero.CollectionName()}
}

func (r *remoteCollection[T]) Create(ctx context.Context, record *T) error {
	repository.EnsureID(record)
	return r.pc.CreateEntity(ctx, r.name, record, record)
}

func (r *remoteCollection[T]) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.pc.UpdateEntity(ctx, r.name, id.String(), fields, nil)
}

func (r *remoteCollection[T]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var record T
	if err := r.pc.GetEntity(ctx, r.name, id.String(), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *remoteCollection[T]) Filter(ctx context.Context, q repository.Query) ([]*T, error) {
	var records []*T
	if err := r.pc.FilterEntities(ctx, r.name, q, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *remoteCollection[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return r.pc.DeleteEntity(ctx, r.name, id.String())
}
