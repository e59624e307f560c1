package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// CreateSubscriptionRequest represents an admin-granted subscription
// @Description Trials last 3 days. Other types last durationMonths months starting today.
type CreateSubscriptionRequest struct {
	UserEmail        string `json:"userEmail" binding:"required,email" example:"artist@example.com"`
	SubscriptionType string `json:"subscriptionType" binding:"required,oneof=trial monthly annual" example:"monthly"`
	DurationMonths   int    `json:"durationMonths" binding:"omitempty,min=1,max=120" example:"1"`
	Notes            string `json:"notes" binding:"max=2000" example:"Beta tester"`
}

// SubscriptionResponse represents a subscription
type SubscriptionResponse struct {
	ID               uuid.UUID `json:"subscriptionId"`
	UserEmail        string    `json:"userEmail"`
	SubscriptionType string    `json:"subscriptionType" example:"monthly"`
	Status           string    `json:"status" example:"active"`
	StartDate        string    `json:"startDate" example:"2026-01-01"`
	EndDate          string    `json:"endDate" example:"2026-02-01"`
	DurationMonths   int       `json:"durationMonths"`
	IsAdminCreated   bool      `json:"isAdminCreated"`
	Notes            string    `json:"notes,omitempty"`
	DaysRemaining    int       `json:"daysRemaining" example:"12"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ToSubscriptionResponse converts a domain subscription. daysRemaining is
// computed against now.
func ToSubscriptionResponse(s *domain.Subscription, daysRemaining int) *SubscriptionResponse {
	return &SubscriptionResponse{
		ID:               s.ID,
		UserEmail:        s.UserEmail,
		SubscriptionType: s.SubscriptionType,
		Status:           s.Status,
		StartDate:        s.StartDate,
		EndDate:          s.EndDate,
		DurationMonths:   s.DurationMonths,
		IsAdminCreated:   s.IsAdminCreated,
		Notes:            s.Notes,
		DaysRemaining:    daysRemaining,
		CreatedAt:        s.CreatedDate,
	}
}

// MySubscriptionResponse is the caller's subscription state
type MySubscriptionResponse struct {
	Active       bool                  `json:"active"`
	Subscription *SubscriptionResponse `json:"subscription,omitempty"`
}
