package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// SubscriptionRepository defines data access for subscriptions
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *domain.Subscription) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error)
	FindActiveByEmail(ctx context.Context, userEmail string) (*domain.Subscription, error)
	List(ctx context.Context, limit int) ([]*domain.Subscription, error)
	ListActive(ctx context.Context) ([]*domain.Subscription, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type subscriptionRepositoryImpl struct {
	coll Collection[domain.Subscription]
}

// NewSubscriptionRepository creates a new instance of SubscriptionRepository
func NewSubscriptionRepository(coll Collection[domain.Subscription]) SubscriptionRepository {
	return &subscriptionRepositoryImpl{coll: coll}
}

func (r *subscriptionRepositoryImpl) Create(ctx context.Context, subscription *domain.Subscription) error {
	return r.coll.Create(ctx, subscription)
}

func (r *subscriptionRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	return r.coll.FindByID(ctx, id)
}

// FindActiveByEmail returns the active subscription ending last
func (r *subscriptionRepositoryImpl) FindActiveByEmail(ctx context.Context, userEmail string) (*domain.Subscription, error) {
	subs, err := r.coll.Filter(ctx, Query{
		Where: map[string]interface{}{
			"user_email": userEmail,
			"status":     domain.SubscriptionActive,
		},
		Sort:  "-end_date",
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, ErrNotFound
	}
	return subs[0], nil
}

func (r *subscriptionRepositoryImpl) List(ctx context.Context, limit int) ([]*domain.Subscription, error) {
	return r.coll.Filter(ctx, Query{Sort: "-created_date", Limit: limit})
}

func (r *subscriptionRepositoryImpl) ListActive(ctx context.Context) ([]*domain.Subscription, error) {
	return r.coll.Filter(ctx, Query{
		Where: map[string]interface{}{"status": domain.SubscriptionActive},
	})
}

func (r *subscriptionRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.coll.Update(ctx, id, map[string]interface{}{"status": status})
}

func (r *subscriptionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.coll.Delete(ctx, id)
}
