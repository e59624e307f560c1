package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Collection names on the hosted platform.
const (
	CollectionPresence          = "ProjectCollaboration"
	CollectionProject           = "Project"
	CollectionMixingAnalysis    = "MixingAnalysis"
	CollectionMasteringAnalysis = "MasteringAnalysis"
	CollectionStemSeparation    = "StemSeparation"
	CollectionMasteringPreset   = "MasteringPreset"
	CollectionSubscription      = "Subscription"
	CollectionDownloadFile      = "DownloadFile"
	CollectionProjectChat       = "ProjectChat"
	CollectionUsageAnalytics    = "UsageAnalytics"
	CollectionAudioFile         = "AudioFile"
)

// Entity is implemented by every record type stored in a collection.
type Entity interface {
	CollectionName() string
}

// BaseModel holds the fields every collection record carries.
// IDs are generated client side so that the same record shape works against
// the hosted platform and the self-hosted database.
type BaseModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedDate time.Time `gorm:"column:created_date;autoCreateTime;not null;index" json:"created_date"`
	UpdatedDate time.Time `gorm:"column:updated_date;autoUpdateTime;not null" json:"updated_date"`
	CreatedBy   string    `gorm:"column:created_by;type:varchar(255);index" json:"created_by,omitempty"`
}

// BeforeCreate assigns an ID when the caller did not.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	b.EnsureID()
	return nil
}

// EnsureID assigns a new random ID if none is set.
func (b *BaseModel) EnsureID() {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
}
