package domain

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Remote job names
const (
	JobAnalyzeMixing    = "analyzeMixing"
	JobAnalyzeMastering = "analyzeMastering"
	JobSeparateStems    = "separateStems"
)

const (
	AnalysisSingleTrack = "single_track"
	AnalysisFullMix     = "full_mix"

	MasteringStereo = "stereo"
	MasteringStem   = "stem"

	DefaultTargetLUFS = -14.0
)

// MixingAnalysis is the stored result of an analyzeMixing job.
type MixingAnalysis struct {
	BaseModel
	ProjectID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	TrackName    string         `gorm:"type:varchar(255);not null" json:"track_name"`
	AnalysisType string         `gorm:"type:varchar(30);not null" json:"analysis_type"`
	StemType     string         `gorm:"type:varchar(30)" json:"stem_type"`
	FileURL      string         `gorm:"type:text" json:"file_url,omitempty"`
	Result       datatypes.JSON `json:"result,omitempty"`
	Applied      bool           `gorm:"default:false" json:"applied"`
}

func (MixingAnalysis) TableName() string      { return "mixing_analyses" }
func (MixingAnalysis) CollectionName() string { return CollectionMixingAnalysis }

// MasteringAnalysis is the stored result of an analyzeMastering job.
type MasteringAnalysis struct {
	BaseModel
	ProjectID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	TrackName     string         `gorm:"type:varchar(255);not null" json:"track_name"`
	MasteringType string         `gorm:"type:varchar(30);not null" json:"mastering_type"`
	StemType      string         `gorm:"type:varchar(30)" json:"stem_type,omitempty"`
	TargetLUFS    float64        `json:"target_lufs"`
	PresetName    string         `gorm:"type:varchar(255)" json:"preset_name"`
	Result        datatypes.JSON `json:"result,omitempty"`
}

func (MasteringAnalysis) TableName() string      { return "mastering_analyses" }
func (MasteringAnalysis) CollectionName() string { return CollectionMasteringAnalysis }

// StemSeparation is the stored result of a separateStems job.
type StemSeparation struct {
	BaseModel
	ProjectID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	TrackName     string         `gorm:"type:varchar(255);not null" json:"track_name"`
	SourceFileURL string         `gorm:"type:text;not null" json:"source_file_url"`
	Result        datatypes.JSON `json:"result,omitempty"`
}

func (StemSeparation) TableName() string      { return "stem_separations" }
func (StemSeparation) CollectionName() string { return CollectionStemSeparation }

// MasteringPreset is a named set of mastering targets a user can reuse.
type MasteringPreset struct {
	BaseModel
	Name             string  `gorm:"type:varchar(255);not null" json:"name"`
	Genre            string  `gorm:"type:varchar(50)" json:"genre"`
	TargetLUFS       float64 `json:"target_lufs"`
	LimiterThreshold float64 `json:"limiter_threshold"`
	LimiterRelease   float64 `json:"limiter_release"`
	EQCurve          string  `gorm:"type:text" json:"eq_curve,omitempty"`
	CompressionRatio string  `gorm:"type:varchar(20)" json:"compression_ratio"`
	StereoWidth      float64 `json:"stereo_width"`
	IsDefault        bool    `gorm:"default:false" json:"is_default"`
}

func (MasteringPreset) TableName() string      { return "mastering_presets" }
func (MasteringPreset) CollectionName() string { return CollectionMasteringPreset }
