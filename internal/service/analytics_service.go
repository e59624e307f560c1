package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/repository"
)

const usageSummaryLimit = 1000

// UsageRecorder writes usage events. Failures are logged, never returned.
type UsageRecorder interface {
	Record(ctx context.Context, user domain.User, action string, projectID *uuid.UUID, success bool, details string)
}

// AnalyticsService records and summarizes usage events
type AnalyticsService interface {
	UsageRecorder
	RecordEvent(ctx context.Context, user domain.User, req *dto.RecordUsageRequest) error
	Summary(ctx context.Context, user domain.User) (*dto.UsageSummaryResponse, error)
}

type analyticsServiceImpl struct {
	usageRepo repository.UsageRepository
	logger    *zap.Logger
}

// NewAnalyticsService creates a new instance of AnalyticsService
func NewAnalyticsService(usageRepo repository.UsageRepository, logger *zap.Logger) AnalyticsService {
	return &analyticsServiceImpl{usageRepo: usageRepo, logger: logger}
}

func (s *analyticsServiceImpl) Record(ctx context.Context, user domain.User, action string, projectID *uuid.UUID, success bool, details string) {
	event := &domain.UsageAnalytics{
		BaseModel:  domain.BaseModel{CreatedBy: user.Email},
		UserEmail:  user.Email,
		ActionType: action,
		ProjectID:  projectID,
		Success:    success,
		Details:    details,
	}
	if err := s.usageRepo.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record usage event",
			zap.String("user_email", user.Email),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

// RecordEvent stores an event reported by a client
func (s *analyticsServiceImpl) RecordEvent(ctx context.Context, user domain.User, req *dto.RecordUsageRequest) error {
	event := &domain.UsageAnalytics{
		BaseModel:  domain.BaseModel{CreatedBy: user.Email},
		UserEmail:  user.Email,
		ActionType: req.ActionType,
		ProjectID:  req.ProjectID,
		Success:    req.Success,
		Details:    req.Details,
	}
	if err := s.usageRepo.Create(ctx, event); err != nil {
		return storeError(err, "Usage event")
	}
	return nil
}

// Summary counts the caller's recent events
func (s *analyticsServiceImpl) Summary(ctx context.Context, user domain.User) (*dto.UsageSummaryResponse, error) {
	events, err := s.usageRepo.ListByUser(ctx, user.Email, usageSummaryLimit)
	if err != nil {
		return nil, storeError(err, "Usage events")
	}

	summary := &dto.UsageSummaryResponse{ByAction: make(map[string]int)}
	succeeded := 0
	for _, e := range events {
		summary.Total++
		summary.ByAction[e.ActionType]++
		if e.Success {
			succeeded++
		}
	}
	if summary.Total > 0 {
		summary.SuccessRate = float64(succeeded) / float64(summary.Total)
	}
	return summary, nil
}
