package repository

import (
	"context"
	"time"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// StatsCounter counts records for the business gauges. It works over any
// backend because it only uses the repositories.
type StatsCounter struct {
	projects      ProjectRepository
	subscriptions SubscriptionRepository
	now           func() time.Time
}

func NewStatsCounter(projects ProjectRepository, subscriptions SubscriptionRepository) *StatsCounter {
	return &StatsCounter{projects: projects, subscriptions: subscriptions, now: time.Now}
}

func (c *StatsCounter) CountProjects(ctx context.Context) (int64, error) {
	projects, err := c.projects.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(projects)), nil
}

// CountActiveSubscriptions counts active subscriptions whose end date has
// not passed.
func (c *StatsCounter) CountActiveSubscriptions(ctx context.Context) (int64, error) {
	subs, err := c.subscriptions.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	today := c.now().UTC().Format(domain.DateLayout)
	var n int64
	for _, s := range subs {
		if s.EndDate >= today {
			n++
		}
	}
	return n, nil
}
