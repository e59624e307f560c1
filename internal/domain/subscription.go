package domain

// Subscription types
const (
	SubscriptionTrial   = "trial"
	SubscriptionMonthly = "monthly"
	SubscriptionAnnual  = "annual"
)

// Subscription statuses
const (
	SubscriptionActive    = "active"
	SubscriptionCancelled = "cancelled"
	SubscriptionExpired   = "expired"
)

// DateLayout is the format of subscription start and end dates.
const DateLayout = "2006-01-02"

// Subscription grants a user access to installers for a period.
type Subscription struct {
	BaseModel
	UserEmail        string `gorm:"type:varchar(255);not null;index" json:"user_email"`
	SubscriptionType string `gorm:"type:varchar(20);not null" json:"subscription_type"`
	Status           string `gorm:"type:varchar(20);not null;index" json:"status"`
	StartDate        string `gorm:"type:varchar(10);not null" json:"start_date"`
	EndDate          string `gorm:"type:varchar(10);not null;index" json:"end_date"`
	DurationMonths   int    `json:"duration_months"`
	IsAdminCreated   bool   `gorm:"default:false" json:"is_admin_created"`
	Notes            string `gorm:"type:text" json:"notes,omitempty"`
}

func (Subscription) TableName() string      { return "subscriptions" }
func (Subscription) CollectionName() string { return CollectionSubscription }
