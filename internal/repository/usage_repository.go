package repository

import (
	"context"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// UsageRepository defines data access for usage analytics events
type UsageRepository interface {
	Create(ctx context.Context, event *domain.UsageAnalytics) error
	ListByUser(ctx context.Context, userEmail string, limit int) ([]*domain.UsageAnalytics, error)
}

type usageRepositoryImpl struct {
	coll Collection[domain.UsageAnalytics]
}

// NewUsageRepository creates a new instance of UsageRepository
func NewUsageRepository(coll Collection[domain.UsageAnalytics]) UsageRepository {
	return &usageRepositoryImpl{coll: coll}
}

func (r *usageRepositoryImpl) Create(ctx context.Context, event *domain.UsageAnalytics) error {
	return r.coll.Create(ctx, event)
}

func (r *usageRepositoryImpl) ListByUser(ctx context.Context, userEmail string, limit int) ([]*domain.UsageAnalytics, error) {
	return r.coll.Filter(ctx, Query{
		Where: map[string]interface{}{"user_email": userEmail},
		Sort:  "-created_date",
		Limit: limit,
	})
}
