package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/response"
)

func newTestSubscriptionService(repos *testRepos, now time.Time) SubscriptionService {
	svc := NewSubscriptionService(repos.subscriptions, zap.NewNop())
	svc.(*subscriptionServiceImpl).now = func() time.Time { return now }
	return svc
}

func TestSubscriptionCreate_Durations(t *testing.T) {
	now := time.Date(2026, 1, 31, 15, 0, 0, 0, time.UTC)
	ctx := context.Background()

	tests := []struct {
		name     string
		req      dto.CreateSubscriptionRequest
		wantEnd  string
		wantDays int
	}{
		{
			name:     "trial lasts three days",
			req:      dto.CreateSubscriptionRequest{UserEmail: "A@Example.com", SubscriptionType: domain.SubscriptionTrial, DurationMonths: 6},
			wantEnd:  "2026-02-03",
			wantDays: 3,
		},
		{
			name:     "monthly for two months",
			req:      dto.CreateSubscriptionRequest{UserEmail: "a@example.com", SubscriptionType: domain.SubscriptionMonthly, DurationMonths: 2},
			wantEnd:  "2026-03-31",
			wantDays: 59,
		},
		{
			name:     "annual defaults to twelve months",
			req:      dto.CreateSubscriptionRequest{UserEmail: "a@example.com", SubscriptionType: domain.SubscriptionAnnual},
			wantEnd:  "2027-01-31",
			wantDays: 365,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestSubscriptionService(setupRepos(t), now)
			resp, err := svc.Create(ctx, testAdmin, &tt.req)
			require.NoError(t, err)
			assert.Equal(t, "2026-01-31", resp.StartDate)
			assert.Equal(t, tt.wantEnd, resp.EndDate)
			assert.Equal(t, tt.wantDays, resp.DaysRemaining)
			assert.Equal(t, "a@example.com", resp.UserEmail)
			assert.True(t, resp.IsAdminCreated)
			assert.Equal(t, domain.SubscriptionActive, resp.Status)
		})
	}
}

func TestSubscriptionCreate_InvalidType(t *testing.T) {
	svc := newTestSubscriptionService(setupRepos(t), time.Now())
	_, err := svc.Create(context.Background(), testAdmin, &dto.CreateSubscriptionRequest{
		UserEmail:        "a@example.com",
		SubscriptionType: "lifetime",
	})
	assertAppErrorCode(t, err, response.ErrCodeValidation)
}

func TestSubscription_GetMineAndToggle(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	repos := setupRepos(t)
	svc := newTestSubscriptionService(repos, now)
	ctx := context.Background()

	mine, err := svc.GetMine(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, mine.Active)

	created, err := svc.Create(ctx, testAdmin, &dto.CreateSubscriptionRequest{
		UserEmail:        testUser.Email,
		SubscriptionType: domain.SubscriptionMonthly,
		DurationMonths:   1,
	})
	require.NoError(t, err)

	mine, err = svc.GetMine(ctx, testUser)
	require.NoError(t, err)
	require.True(t, mine.Active)
	assert.Equal(t, 31, mine.Subscription.DaysRemaining)

	toggled, err := svc.Toggle(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionCancelled, toggled.Status)

	ok, err := svc.HasActive(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.HasActive(ctx, testAdmin)
	require.NoError(t, err)
	assert.True(t, ok)

	toggled, err = svc.Toggle(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionActive, toggled.Status)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assertAppErrorCode(t, svc.Delete(ctx, created.ID), response.ErrCodeNotFound)
}

func TestSubscription_ExpireOverdue(t *testing.T) {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	repos := setupRepos(t)
	ctx := context.Background()

	creator := newTestSubscriptionService(repos, start)
	trial, err := creator.Create(ctx, testAdmin, &dto.CreateSubscriptionRequest{UserEmail: "t@example.com", SubscriptionType: domain.SubscriptionTrial})
	require.NoError(t, err)
	_, err = creator.Create(ctx, testAdmin, &dto.CreateSubscriptionRequest{UserEmail: "m@example.com", SubscriptionType: domain.SubscriptionMonthly})
	require.NoError(t, err)

	// On the end date itself the trial is still valid.
	sameDay := newTestSubscriptionService(repos, start.AddDate(0, 0, 3))
	n, err := sameDay.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	later := newTestSubscriptionService(repos, start.AddDate(0, 0, 4))
	ok, err := later.HasActive(ctx, domain.User{Email: "t@example.com"})
	require.NoError(t, err)
	assert.False(t, ok)

	n, err = later.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := repos.subscriptions.FindByID(ctx, trial.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionExpired, stored.Status)

	list, err := later.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
