package job

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SubscriptionExpirer marks overdue subscriptions as expired
type SubscriptionExpirer interface {
	ExpireOverdue(ctx context.Context) (int, error)
}

// ExpiryJob flips active subscriptions past their end date to expired
type ExpiryJob struct {
	expirer SubscriptionExpirer
	logger  *zap.Logger
}

func NewExpiryJob(expirer SubscriptionExpirer, logger *zap.Logger) *ExpiryJob {
	return &ExpiryJob{expirer: expirer, logger: logger}
}

func (j *ExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := j.expirer.ExpireOverdue(ctx)
	if err != nil {
		j.logger.Error("Failed to expire subscriptions", zap.Error(err))
		return
	}
	if n > 0 {
		j.logger.Info("Expired overdue subscriptions", zap.Int("count", n))
	}
}
