package domain

import (
	"time"
)

// Project is the metadata of a DAW project. Audio lives in the desktop app.
type Project struct {
	BaseModel
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	SampleRate  string     `gorm:"type:varchar(10)" json:"sample_rate"`
	BitDepth    string     `gorm:"type:varchar(10)" json:"bit_depth"`
	Tempo       int        `json:"tempo"`
	TracksCount int        `json:"tracks_count"`
	LastOpened  *time.Time `gorm:"index" json:"last_opened,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

func (Project) CollectionName() string {
	return CollectionProject
}

// Defaults for new projects
const (
	DefaultSampleRate  = "48000"
	DefaultBitDepth    = "24"
	DefaultTempo       = 120
	DefaultTracksCount = 16
)
