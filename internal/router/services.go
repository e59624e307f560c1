package router

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dadolfin1208/signalforge/internal/client"
	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/metrics"
	"github.com/dadolfin1208/signalforge/internal/repository"
	"github.com/dadolfin1208/signalforge/internal/service"
)

// Stores bundles the entity repositories of one backend.
type Stores struct {
	Projects      repository.ProjectRepository
	Analyses      repository.AnalysisRepository
	Presets       repository.PresetRepository
	Subscriptions repository.SubscriptionRepository
	Downloads     repository.DownloadRepository
	Chats         repository.ChatRepository
	Usage         repository.UsageRepository
	AudioFiles    repository.AudioFileRepository
	Presence      repository.PresenceRepository
}

// GormStores keeps every entity in the local database.
func GormStores(db *gorm.DB) Stores {
	return Stores{
		Projects: repository.NewProjectRepository(repository.NewGormCollection[domain.Project](db)),
		Analyses: repository.NewAnalysisRepository(
			repository.NewGormCollection[domain.MixingAnalysis](db),
			repository.NewGormCollection[domain.MasteringAnalysis](db),
			repository.NewGormCollection[domain.StemSeparation](db),
		),
		Presets:       repository.NewPresetRepository(repository.NewGormCollection[domain.MasteringPreset](db)),
		Subscriptions: repository.NewSubscriptionRepository(repository.NewGormCollection[domain.Subscription](db)),
		Downloads:     repository.NewDownloadRepository(repository.NewGormCollection[domain.DownloadFile](db)),
		Chats:         repository.NewChatRepository(repository.NewGormCollection[domain.ProjectChat](db)),
		Usage:         repository.NewUsageRepository(repository.NewGormCollection[domain.UsageAnalytics](db)),
		AudioFiles:    repository.NewAudioFileRepository(repository.NewGormCollection[domain.AudioFile](db)),
		Presence:      repository.NewGormPresenceRepository(db),
	}
}

// PlatformStores keeps every entity in the hosted platform's collections.
func PlatformStores(pc *client.PlatformClient) Stores {
	return Stores{
		Projects: repository.NewProjectRepository(client.NewRemoteCollection[domain.Project](pc)),
		Analyses: repository.NewAnalysisRepository(
			client.NewRemoteCollection[domain.MixingAnalysis](pc),
			client.NewRemoteCollection[domain.MasteringAnalysis](pc),
			client.NewRemoteCollection[domain.StemSeparation](pc),
		),
		Presets:       repository.NewPresetRepository(client.NewRemoteCollection[domain.MasteringPreset](pc)),
		Subscriptions: repository.NewSubscriptionRepository(client.NewRemoteCollection[domain.Subscription](pc)),
		Downloads:     repository.NewDownloadRepository(client.NewRemoteCollection[domain.DownloadFile](pc)),
		Chats:         repository.NewChatRepository(client.NewRemoteCollection[domain.ProjectChat](pc)),
		Usage:         repository.NewUsageRepository(client.NewRemoteCollection[domain.UsageAnalytics](pc)),
		AudioFiles:    repository.NewAudioFileRepository(client.NewRemoteCollection[domain.AudioFile](pc)),
		Presence:      repository.NewPresenceRepository(client.NewRemoteCollection[domain.Presence](pc)),
	}
}

// ServiceDeps is everything the services are built from.
type ServiceDeps struct {
	Stores   Stores
	Files    client.FileStore
	Jobs     service.JobInvoker
	Sessions service.SessionBackend

	// SelfHosted makes analysis submissions write their own result records.
	SelfHosted    bool
	MaxUploadSize int64
	UploadTempTTL time.Duration

	Metrics *metrics.Metrics
	Logger  *zap.Logger
}

// Services holds one instance of every service.
type Services struct {
	Projects      service.ProjectService
	Analyses      service.AnalysisService
	Presets       service.PresetService
	Subscriptions service.SubscriptionService
	Downloads     service.DownloadService
	Chat          service.ChatService
	Uploads       service.UploadService
	Analytics     service.AnalyticsService
	Auth          service.AuthService
}

// NewServices wires the services over deps.
func NewServices(deps ServiceDeps) *Services {
	s := deps.Stores
	analytics := service.NewAnalyticsService(s.Usage, deps.Logger)
	subscriptions := service.NewSubscriptionService(s.Subscriptions, deps.Logger)

	return &Services{
		Projects:      service.NewProjectService(s.Projects, deps.Metrics, deps.Logger),
		Analyses:      service.NewAnalysisService(deps.Jobs, s.Projects, s.Analyses, s.Presets, analytics, deps.SelfHosted, deps.Metrics, deps.Logger),
		Presets:       service.NewPresetService(s.Presets, deps.Logger),
		Subscriptions: subscriptions,
		Downloads:     service.NewDownloadService(s.Downloads, subscriptions, deps.Files, analytics, deps.Metrics, deps.Logger),
		Chat:          service.NewChatService(s.Chats, s.Projects),
		Uploads:       service.NewUploadService(s.AudioFiles, s.Projects, deps.Files, analytics, deps.MaxUploadSize, deps.UploadTempTTL, deps.Metrics, deps.Logger),
		Analytics:     analytics,
		Auth:          service.NewAuthService(deps.Sessions, deps.Logger),
	}
}
