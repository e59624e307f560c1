package domain

import "github.com/google/uuid"

// Usage action types
const (
	ActionDownload          = "download"
	ActionMixingAnalysis    = "mixing_analysis"
	ActionMasteringAnalysis = "mastering_analysis"
	ActionStemSeparation    = "stem_separation"
	ActionUpload            = "upload"
)

// UsageAnalytics is one recorded user action.
type UsageAnalytics struct {
	BaseModel
	UserEmail  string     `gorm:"type:varchar(255);not null;index" json:"user_email"`
	ActionType string     `gorm:"type:varchar(50);not null;index" json:"action_type"`
	ProjectID  *uuid.UUID `gorm:"type:uuid;index" json:"project_id,omitempty"`
	Success    bool       `json:"success"`
	Details    string     `gorm:"type:text" json:"details,omitempty"`
}

func (UsageAnalytics) TableName() string      { return "usage_analytics" }
func (UsageAnalytics) CollectionName() string { return CollectionUsageAnalytics }
