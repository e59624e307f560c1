package metrics

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// BusinessCounter supplies the counts behind the business gauges.
type BusinessCounter interface {
	CountProjects(ctx context.Context) (int64, error)
	CountActiveSubscriptions(ctx context.Context) (int64, error)
}

// BusinessMetricsCollector refreshes business gauges. It implements
// cron.Job so the scheduler can run it.
type BusinessMetricsCollector struct {
	counter BusinessCounter
	metrics *Metrics
	logger  *zap.Logger
	timeout time.Duration
}

// NewBusinessMetricsCollector creates a new collector
func NewBusinessMetricsCollector(counter BusinessCounter, metrics *Metrics, logger *zap.Logger) *BusinessMetricsCollector {
	return &BusinessMetricsCollector{
		counter: counter,
		metrics: metrics,
		logger:  logger,
		timeout: 10 * time.Second,
	}
}

// Run collects once
func (c *BusinessMetricsCollector) Run() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in business metrics collection",
				zap.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if count, err := c.counter.CountProjects(ctx); err != nil {
		c.logger.Error("Failed to count projects", zap.Error(err))
	} else {
		c.metrics.SetProjectsTotal(count)
	}

	if count, err := c.counter.CountActiveSubscriptions(ctx); err != nil {
		c.logger.Error("Failed to count active subscriptions", zap.Error(err))
	} else {
		c.metrics.SetActiveSubscriptionsTotal(count)
	}
}
