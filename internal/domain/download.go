package domain

// Installer platforms
const (
	PlatformMacOS   = "macOS"
	PlatformWindows = "Windows"
	PlatformLinux   = "Linux"
)

// ReleaseDateLayout formats DownloadFile.ReleaseDate.
const ReleaseDateLayout = "January 2006"

// DefaultRequirements lists the system requirements shown for each platform.
var DefaultRequirements = map[string]string{
	PlatformMacOS:   "macOS 11.0 or later, Apple Silicon or Intel",
	PlatformWindows: "Windows 10 64-bit or later",
	PlatformLinux:   "Ubuntu 20.04 or equivalent, x86_64",
}

// DownloadFile is a published installer.
type DownloadFile struct {
	BaseModel
	Platform      string `gorm:"type:varchar(20);not null;index" json:"platform"`
	Version       string `gorm:"type:varchar(30);not null" json:"version"`
	FileURL       string `gorm:"type:text;not null" json:"file_url"`
	FileSize      string `gorm:"type:varchar(30)" json:"file_size"`
	Requirements  string `gorm:"type:text" json:"requirements"`
	ReleaseDate   string `gorm:"type:varchar(30)" json:"release_date"`
	IsActive      bool   `gorm:"default:false;index" json:"is_active"`
	DownloadCount int    `gorm:"default:0" json:"download_count"`
}

func (DownloadFile) TableName() string      { return "download_files" }
func (DownloadFile) CollectionName() string { return CollectionDownloadFile }
