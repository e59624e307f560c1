package domain

import (
	"time"

	"github.com/google/uuid"
)

// PresenceStatus is the liveness classification of a presence record.
type PresenceStatus string

const (
	PresenceActive PresenceStatus = "active"
	PresenceIdle   PresenceStatus = "idle"
	PresenceAway   PresenceStatus = "away"
)

// Presence marks which panel of a project a user is looking at and when
// they were last seen. One record exists per (project, user).
type Presence struct {
	BaseModel
	ProjectID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_presence_project_user,priority:1;index" json:"project_id"`
	UserEmail   string         `gorm:"type:varchar(255);not null;uniqueIndex:uq_presence_project_user,priority:2" json:"user_email"`
	UserName    string         `gorm:"type:varchar(255)" json:"user_name"`
	LastSeen    time.Time      `gorm:"not null;index" json:"last_seen"`
	CurrentView string         `gorm:"type:varchar(100)" json:"current_view"`
	Status      PresenceStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
}

func (Presence) TableName() string {
	return "project_collaborations"
}

func (Presence) CollectionName() string {
	return CollectionPresence
}
