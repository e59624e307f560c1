package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dadolfin1208/signalforge/internal/handler"
	"github.com/dadolfin1208/signalforge/internal/metrics"
	"github.com/dadolfin1208/signalforge/internal/middleware"
	"github.com/dadolfin1208/signalforge/internal/presence"
	"github.com/dadolfin1208/signalforge/internal/response"
)

// Config holds router configuration
type Config struct {
	// DB and Redis are only used by the readiness probe. Either may be nil.
	DB    *gorm.DB
	Redis *redis.Client

	Logger      *zap.Logger
	BasePath    string
	CORSOrigins []string
	Metrics     *metrics.Metrics
	// Gatherer backs /metrics. Nil means the default prometheus registry.
	Gatherer prometheus.Gatherer

	Validator middleware.TokenValidator
	Services  *Services
	Presence  presence.Service
	Stream    handler.PresenceStreamConfig
}

// Setup sets up the router with all routes
func Setup(cfg Config) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	metricsHandler := gin.WrapH(promhttp.Handler())
	if cfg.Gatherer != nil {
		metricsHandler = gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Redis)

	r.GET("/metrics", metricsHandler)
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)

	svc := cfg.Services
	projectHandler := handler.NewProjectHandler(svc.Projects)
	presenceHandler := handler.NewPresenceHandler(cfg.Presence, svc.Projects, cfg.Stream, cfg.Metrics, cfg.Logger)
	analysisHandler := handler.NewAnalysisHandler(svc.Analyses)
	presetHandler := handler.NewPresetHandler(svc.Presets)
	subscriptionHandler := handler.NewSubscriptionHandler(svc.Subscriptions)
	downloadHandler := handler.NewDownloadHandler(svc.Downloads)
	chatHandler := handler.NewChatHandler(svc.Chat)
	uploadHandler := handler.NewUploadHandler(svc.Uploads)
	analyticsHandler := handler.NewAnalyticsHandler(svc.Analytics)
	authHandler := handler.NewAuthHandler(svc.Auth)

	api := r.Group(cfg.BasePath)
	if cfg.BasePath != "" && cfg.BasePath != "/" {
		api.GET("/metrics", metricsHandler)
		api.GET("/health", healthHandler.Health)
		api.GET("/ready", healthHandler.Ready)
	}
	api.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public auth routes
	api.GET("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthWithValidator(cfg.Validator))
	{
		authed.GET("/auth/me", authHandler.Me)
		authed.POST("/auth/logout", authHandler.Logout)

		// ============================================================
		// Project routes
		// ============================================================
		projects := authed.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:projectId", projectHandler.GetProject)
			projects.PUT("/:projectId", projectHandler.UpdateProject)
			projects.DELETE("/:projectId", projectHandler.DeleteProject)
			projects.POST("/:projectId/open", projectHandler.OpenProject)

			// Presence
			projects.POST("/:projectId/presence", presenceHandler.ReportPresence)
			projects.GET("/:projectId/presence", presenceHandler.ListPresence)
			projects.GET("/:projectId/presence/stream", presenceHandler.StreamPresence)

			// Analysis jobs
			projects.POST("/:projectId/analysis/mixing", analysisHandler.SubmitMixing)
			projects.POST("/:projectId/analysis/mastering", analysisHandler.SubmitMastering)
			projects.POST("/:projectId/analysis/separation", analysisHandler.SubmitSeparation)
			projects.GET("/:projectId/analyses", analysisHandler.ListAnalyses)

			// Chat
			projects.GET("/:projectId/chat", chatHandler.ListMessages)
			projects.POST("/:projectId/chat", chatHandler.SendMessage)
		}

		authed.POST("/analyses/mixing/:analysisId/apply", analysisHandler.ApplyMixing)

		presets := authed.Group("/presets")
		{
			presets.GET("", presetHandler.ListPresets)
			presets.POST("", presetHandler.CreatePreset)
			presets.DELETE("/:presetId", presetHandler.DeletePreset)
		}

		uploads := authed.Group("/uploads")
		{
			uploads.GET("", uploadHandler.ListUploads)
			uploads.POST("", uploadHandler.UploadFile)
			uploads.POST("/presign", uploadHandler.PresignUpload)
			uploads.POST("/:fileId/confirm", uploadHandler.ConfirmUpload)
			uploads.DELETE("/:fileId", uploadHandler.DeleteUpload)
		}

		authed.GET("/subscriptions/me", subscriptionHandler.GetMySubscription)
		authed.GET("/downloads", downloadHandler.ListDownloads)
		authed.POST("/downloads/:downloadId", downloadHandler.RecordDownload)

		authed.POST("/analytics/events", analyticsHandler.RecordEvent)
		authed.GET("/analytics/summary", analyticsHandler.GetSummary)

		// ============================================================
		// Admin routes
		// ============================================================
		admin := authed.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/subscriptions", subscriptionHandler.ListSubscriptions)
			admin.POST("/subscriptions", subscriptionHandler.CreateSubscription)
			admin.POST("/subscriptions/:subscriptionId/toggle", subscriptionHandler.ToggleSubscription)
			admin.DELETE("/subscriptions/:subscriptionId", subscriptionHandler.DeleteSubscription)

			admin.GET("/downloads", downloadHandler.ListAllDownloads)
			admin.POST("/downloads", downloadHandler.PublishInstaller)
			admin.POST("/downloads/:downloadId/toggle", downloadHandler.ToggleDownload)
			admin.DELETE("/downloads/:downloadId", downloadHandler.DeleteDownload)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.SendError(c, http.StatusNotFound, response.ErrCodeNotFound, "Route not found")
	})

	return r
}
