// @title           SignalForge Dashboard API
// @version         1.0
// @description     Companion dashboard for the SignalForge DAW: projects, collaborator presence, analysis jobs and installers.

// @host      localhost:8000
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	_ "github.com/dadolfin1208/signalforge/docs" // Swagger docs import

	"github.com/dadolfin1208/signalforge/internal/client"
	"github.com/dadolfin1208/signalforge/internal/config"
	"github.com/dadolfin1208/signalforge/internal/database"
	"github.com/dadolfin1208/signalforge/internal/handler"
	"github.com/dadolfin1208/signalforge/internal/job"
	"github.com/dadolfin1208/signalforge/internal/metrics"
	"github.com/dadolfin1208/signalforge/internal/middleware"
	"github.com/dadolfin1208/signalforge/internal/presence"
	"github.com/dadolfin1208/signalforge/internal/repository"
	"github.com/dadolfin1208/signalforge/internal/router"
	"github.com/dadolfin1208/signalforge/internal/service"
)

const (
	dbConnectAttempts = 10
	dbConnectInterval = 5 * time.Second
	dbStatsInterval   = 15 * time.Second
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.Logger.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Set Gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting SignalForge dashboard",
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("store", cfg.Store.Driver),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("presence", cfg.Presence.Backend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewWithLogger(logger)
	pc := client.NewPlatformClient(cfg.Platform, logger, m)

	// Entity store
	var (
		db     *gorm.DB
		stores router.Stores
	)
	if cfg.SelfHosted() {
		db, err = database.NewWithRetry(ctx, database.ConfigFrom(cfg.Database), dbConnectAttempts, dbConnectInterval, logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		logger.Info("Database connected successfully", zap.String("driver", cfg.Database.Driver))

		if err := database.SafeAutoMigrate(db, logger); err != nil {
			logger.Fatal("Failed to run database migrations", zap.Error(err))
		}
		if err := database.RegisterMetricsCallbacks(db, m); err != nil {
			logger.Warn("Failed to register database metrics callbacks", zap.Error(err))
		}
		go database.StartDBStatsCollector(ctx, db, m, dbStatsInterval)
		stores = router.GormStores(db)
	} else {
		stores = router.PlatformStores(pc)
		logger.Info("Using hosted platform entity store", zap.String("base_url", cfg.Platform.BaseURL))
	}

	// Presence backend
	var (
		rdb    *redis.Client
		stream = handler.PresenceStreamConfig{
			Heartbeat: presence.HeartbeatConfig{Interval: cfg.Presence.HeartbeatInterval, CallTimeout: cfg.Presence.CallTimeout},
			Poll:      presence.PollerConfig{Interval: cfg.Presence.PollInterval, CallTimeout: cfg.Presence.CallTimeout},
		}
	)
	if cfg.Presence.Backend == config.DriverRedis {
		rdb, err = database.NewRedis(cfg.Redis, logger)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		redisPresence := repository.NewRedisPresenceRepository(rdb, logger)
		stores.Presence = redisPresence
		stream.Events = redisPresence
	}
	presenceService := presence.NewService(stores.Presence, presence.Thresholds{
		Active: cfg.Presence.ActiveWindow,
		Idle:   cfg.Presence.IdleWindow,
	}, logger, presence.WithMetrics(m))

	// File storage
	var files client.FileStore
	if cfg.Storage.Driver == config.DriverS3 {
		s3Client, err := client.NewS3Client(&cfg.S3)
		if err != nil {
			logger.Fatal("Failed to initialize S3 client", zap.Error(err))
		}
		logger.Info("S3 client initialized",
			zap.String("bucket", cfg.S3.Bucket),
			zap.String("region", cfg.S3.Region),
		)
		files = client.NewS3FileStore(s3Client)
	} else {
		files = client.NewPlatformFileStore(pc)
	}

	// Token validation
	var validator middleware.TokenValidator
	if cfg.Platform.BaseURL != "" {
		validator = middleware.NewPlatformValidator(pc)
	} else {
		validator = middleware.NewLocalJWTValidator(cfg.JWT.Secret)
		logger.Warn("No platform configured, accepting locally signed tokens only")
	}

	services := router.NewServices(router.ServiceDeps{
		Stores:        stores,
		Files:         files,
		Jobs:          pc,
		Sessions:      sessionBackend(cfg, pc),
		SelfHosted:    cfg.SelfHosted(),
		MaxUploadSize: cfg.Storage.MaxFileSize,
		UploadTempTTL: cfg.Storage.TempTTL,
		Metrics:       m,
		Logger:        logger,
	})

	// Background jobs
	scheduler := job.NewScheduler(logger)
	if cfg.Jobs.Enabled {
		jobs := []struct {
			name string
			spec string
			run  interface{ Run() }
		}{
			{"upload_cleanup", cfg.Jobs.UploadCleanup, job.NewCleanupJob(stores.AudioFiles, files, logger)},
			{"subscription_expiry", cfg.Jobs.SubscriptionExpiry, job.NewExpiryJob(services.Subscriptions, logger)},
			{"business_metrics", cfg.Jobs.BusinessMetrics, metrics.NewBusinessMetricsCollector(
				repository.NewStatsCounter(stores.Projects, stores.Subscriptions), m, logger)},
		}
		for _, j := range jobs {
			if err := scheduler.Add(j.name, j.spec, j.run); err != nil {
				logger.Fatal("Failed to schedule job", zap.String("job", j.name), zap.Error(err))
			}
		}
		scheduler.Start()
		logger.Info("Background jobs started", zap.Int("jobs", scheduler.Len()))
	}

	// Setup router with all dependencies
	r := router.Setup(router.Config{
		DB:          db,
		Redis:       rdb,
		Logger:      logger,
		BasePath:    cfg.Server.BasePath,
		CORSOrigins: cfg.CORS.AllowedOrigins,
		Metrics:     m,
		Validator:   validator,
		Services:    services,
		Presence:    presenceService,
		Stream:      stream,
	})

	// Create HTTP server. WriteTimeout stays zero for long-lived presence streams.
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:     r,
		ReadTimeout: cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("SignalForge dashboard started successfully",
			zap.String("address", srv.Addr),
			zap.String("swagger", fmt.Sprintf("http://localhost:%s%s/swagger/index.html", cfg.Server.Port, cfg.Server.BasePath)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		logger.Warn("Background jobs did not finish in time", zap.Error(err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Warn("Failed to close redis", zap.Error(err))
		}
	}
	if db != nil {
		if err := database.Close(db); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}

	logger.Info("Server exited gracefully")
}

// sessionBackend returns the platform when it hosts sign-in, nil otherwise.
func sessionBackend(cfg *config.Config, pc *client.PlatformClient) service.SessionBackend {
	if cfg.Platform.BaseURL == "" {
		return nil
	}
	return pc
}

// initLogger initializes the zap logger with the specified level
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      zapLevel == zapcore.DebugLevel,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
