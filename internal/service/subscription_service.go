package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/repository"
	"github.com/dadolfin1208/signalforge/internal/response"
)

const (
	trialDays             = 3
	subscriptionListLimit = 500
)

// SubscriptionService manages subscriptions and answers whether a user has one
type SubscriptionService interface {
	GetMine(ctx context.Context, user domain.User) (*dto.MySubscriptionResponse, error)
	HasActive(ctx context.Context, user domain.User) (bool, error)
	List(ctx context.Context) ([]*dto.SubscriptionResponse, error)
	Create(ctx context.Context, admin domain.User, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	Toggle(ctx context.Context, subscriptionID uuid.UUID) (*dto.SubscriptionResponse, error)
	Delete(ctx context.Context, subscriptionID uuid.UUID) error
	ExpireOverdue(ctx context.Context) (int, error)
}

type subscriptionServiceImpl struct {
	subscriptionRepo repository.SubscriptionRepository
	logger           *zap.Logger
	now              func() time.Time
}

// NewSubscriptionService creates a new instance of SubscriptionService
func NewSubscriptionService(subscriptionRepo repository.SubscriptionRepository, logger *zap.Logger) SubscriptionService {
	return &subscriptionServiceImpl{
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
		now:              time.Now,
	}
}

// GetMine returns the caller's active subscription if any
func (s *subscriptionServiceImpl) GetMine(ctx context.Context, user domain.User) (*dto.MySubscriptionResponse, error) {
	sub, err := s.activeFor(ctx, user.Email)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &dto.MySubscriptionResponse{Active: false}, nil
	}
	return &dto.MySubscriptionResponse{
		Active:       true,
		Subscription: dto.ToSubscriptionResponse(sub, s.daysRemaining(sub)),
	}, nil
}

// HasActive reports whether the user may download installers. Admins always may.
func (s *subscriptionServiceImpl) HasActive(ctx context.Context, user domain.User) (bool, error) {
	if user.IsAdmin() {
		return true, nil
	}
	sub, err := s.activeFor(ctx, user.Email)
	if err != nil {
		return false, err
	}
	return sub != nil, nil
}

// List returns every subscription, newest first
func (s *subscriptionServiceImpl) List(ctx context.Context) ([]*dto.SubscriptionResponse, error) {
	subs, err := s.subscriptionRepo.List(ctx, subscriptionListLimit)
	if err != nil {
		return nil, storeError(err, "Subscriptions")
	}
	responses := make([]*dto.SubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		responses = append(responses, dto.ToSubscriptionResponse(sub, s.daysRemaining(sub)))
	}
	return responses, nil
}

// Create grants a subscription starting today. Trials last three days,
// paid types last DurationMonths months.
func (s *subscriptionServiceImpl) Create(ctx context.Context, admin domain.User, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.UserEmail))
	if email == "" {
		return nil, response.NewValidationError("User email is required", "")
	}

	start := s.today()
	var end time.Time
	months := req.DurationMonths

	switch req.SubscriptionType {
	case domain.SubscriptionTrial:
		end = start.AddDate(0, 0, trialDays)
		months = 0
	case domain.SubscriptionMonthly, domain.SubscriptionAnnual:
		if months <= 0 {
			if req.SubscriptionType == domain.SubscriptionAnnual {
				months = 12
			} else {
				months = 1
			}
		}
		end = start.AddDate(0, months, 0)
	default:
		return nil, response.NewValidationError("Invalid subscription type", req.SubscriptionType)
	}

	sub := &domain.Subscription{
		BaseModel:        domain.BaseModel{CreatedBy: admin.Email},
		UserEmail:        email,
		SubscriptionType: req.SubscriptionType,
		Status:           domain.SubscriptionActive,
		StartDate:        start.Format(domain.DateLayout),
		EndDate:          end.Format(domain.DateLayout),
		DurationMonths:   months,
		IsAdminCreated:   true,
		Notes:            req.Notes,
	}
	if err := s.subscriptionRepo.Create(ctx, sub); err != nil {
		return nil, storeError(err, "Subscription")
	}

	s.logger.Info("Subscription created",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("user_email", email),
		zap.String("type", sub.SubscriptionType),
		zap.String("end_date", sub.EndDate),
		zap.String("admin", admin.Email),
	)
	return dto.ToSubscriptionResponse(sub, s.daysRemaining(sub)), nil
}

// Toggle flips a subscription between active and cancelled
func (s *subscriptionServiceImpl) Toggle(ctx context.Context, subscriptionID uuid.UUID) (*dto.SubscriptionResponse, error) {
	sub, err := s.subscriptionRepo.FindByID(ctx, subscriptionID)
	if err != nil {
		return nil, storeError(err, "Subscription")
	}

	next := domain.SubscriptionActive
	if sub.Status == domain.SubscriptionActive {
		next = domain.SubscriptionCancelled
	}
	if err := s.subscriptionRepo.UpdateStatus(ctx, subscriptionID, next); err != nil {
		return nil, storeError(err, "Subscription")
	}
	sub.Status = next
	return dto.ToSubscriptionResponse(sub, s.daysRemaining(sub)), nil
}

func (s *subscriptionServiceImpl) Delete(ctx context.Context, subscriptionID uuid.UUID) error {
	if err := s.subscriptionRepo.Delete(ctx, subscriptionID); err != nil {
		return storeError(err, "Subscription")
	}
	return nil
}

// ExpireOverdue marks active subscriptions whose end date has passed as
// expired and returns how many were changed.
func (s *subscriptionServiceImpl) ExpireOverdue(ctx context.Context) (int, error) {
	subs, err := s.subscriptionRepo.ListActive(ctx)
	if err != nil {
		return 0, err
	}

	today := s.today().Format(domain.DateLayout)
	expired := 0
	for _, sub := range subs {
		if sub.EndDate >= today {
			continue
		}
		if err := s.subscriptionRepo.UpdateStatus(ctx, sub.ID, domain.SubscriptionExpired); err != nil {
			s.logger.Error("Failed to expire subscription",
				zap.String("subscription_id", sub.ID.String()),
				zap.Error(err),
			)
			continue
		}
		expired++
	}
	return expired, nil
}

// activeFor returns nil when the user has no active, unexpired subscription
func (s *subscriptionServiceImpl) activeFor(ctx context.Context, email string) (*domain.Subscription, error) {
	sub, err := s.subscriptionRepo.FindActiveByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError(err, "Subscription")
	}
	if sub.EndDate < s.today().Format(domain.DateLayout) {
		return nil, nil
	}
	return sub, nil
}

// daysRemaining counts whole days until the end date, never below zero
func (s *subscriptionServiceImpl) daysRemaining(sub *domain.Subscription) int {
	end, err := time.Parse(domain.DateLayout, sub.EndDate)
	if err != nil {
		return 0
	}
	days := int(math.Ceil(end.Sub(s.today()).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func (s *subscriptionServiceImpl) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
