package dto

import "github.com/google/uuid"

// RecordUsageRequest records one user action
type RecordUsageRequest struct {
	ActionType string     `json:"actionType" binding:"required,oneof=download mixing_analysis mastering_analysis stem_separation upload" example:"mixing_analysis"`
	ProjectID  *uuid.UUID `json:"projectId,omitempty"`
	Success    bool       `json:"success" example:"true"`
	Details    string     `json:"details" binding:"max=2000"`
}

// UsageSummaryResponse summarizes the caller's recorded actions
type UsageSummaryResponse struct {
	Total       int            `json:"total" example:"42"`
	SuccessRate float64        `json:"successRate" example:"0.95"`
	ByAction    map[string]int `json:"byAction"`
}
