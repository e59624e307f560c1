package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/client"
	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/metrics"
	"github.com/dadolfin1208/signalforge/internal/repository"
	"github.com/dadolfin1208/signalforge/internal/response"
)

// UploadedFile is a file received in a multipart request
type UploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// DownloadService publishes installers and serves them to subscribers
type DownloadService interface {
	ListAvailable(ctx context.Context, user domain.User) ([]*dto.DownloadResponse, error)
	RecordDownload(ctx context.Context, user domain.User, downloadID uuid.UUID) (*dto.DownloadResponse, error)
	ListAll(ctx context.Context) ([]*dto.DownloadResponse, error)
	Publish(ctx context.Context, admin domain.User, req *dto.PublishInstallerRequest, file UploadedFile) (*dto.DownloadResponse, error)
	Toggle(ctx context.Context, downloadID uuid.UUID) (*dto.DownloadResponse, error)
	Delete(ctx context.Context, downloadID uuid.UUID) error
}

type downloadServiceImpl struct {
	downloadRepo  repository.DownloadRepository
	subscriptions SubscriptionService
	files         client.FileStore
	usage         UsageRecorder
	metrics       *metrics.Metrics
	logger        *zap.Logger
	now           func() time.Time
}

// NewDownloadService creates a new instance of DownloadService
func NewDownloadService(
	downloadRepo repository.DownloadRepository,
	subscriptions SubscriptionService,
	files client.FileStore,
	usage UsageRecorder,
	m *metrics.Metrics,
	logger *zap.Logger,
) DownloadService {
	return &downloadServiceImpl{
		downloadRepo:  downloadRepo,
		subscriptions: subscriptions,
		files:         files,
		usage:         usage,
		metrics:       m,
		logger:        logger,
		now:           time.Now,
	}
}

// ListAvailable returns active installers. Requires an active subscription.
func (s *downloadServiceImpl) ListAvailable(ctx context.Context, user domain.User) ([]*dto.DownloadResponse, error) {
	if err := s.requireSubscription(ctx, user); err != nil {
		return nil, err
	}
	files, err := s.downloadRepo.ListActive(ctx)
	if err != nil {
		return nil, storeError(err, "Downloads")
	}
	return toDownloadResponses(files), nil
}

// RecordDownload counts a download of an active installer
func (s *downloadServiceImpl) RecordDownload(ctx context.Context, user domain.User, downloadID uuid.UUID) (*dto.DownloadResponse, error) {
	if err := s.requireSubscription(ctx, user); err != nil {
		return nil, err
	}

	file, err := s.downloadRepo.FindByID(ctx, downloadID)
	if err != nil {
		return nil, storeError(err, "Download")
	}
	if !file.IsActive {
		return nil, response.NewNotFoundError("Download not found", "installer is no longer available")
	}

	file.DownloadCount++
	if err := s.downloadRepo.SetDownloadCount(ctx, downloadID, file.DownloadCount); err != nil {
		return nil, storeError(err, "Download")
	}

	s.metrics.RecordDownload(file.Platform)
	s.usage.Record(ctx, user, domain.ActionDownload, nil, true, fmt.Sprintf("%s %s", file.Platform, file.Version))
	return dto.ToDownloadResponse(file), nil
}

func (s *downloadServiceImpl) ListAll(ctx context.Context) ([]*dto.DownloadResponse, error) {
	files, err := s.downloadRepo.ListAll(ctx)
	if err != nil {
		return nil, storeError(err, "Downloads")
	}
	return toDownloadResponses(files), nil
}

// Publish uploads an installer and makes it the only active version of its platform
func (s *downloadServiceImpl) Publish(ctx context.Context, admin domain.User, req *dto.PublishInstallerRequest, file UploadedFile) (*dto.DownloadResponse, error) {
	if _, ok := domain.DefaultRequirements[req.Platform]; !ok {
		return nil, response.NewValidationError("Invalid platform", req.Platform)
	}
	version := strings.TrimSpace(req.Version)
	if version == "" {
		return nil, response.NewValidationError("Version is required", "")
	}
	if file.Body == nil || file.Size <= 0 {
		return nil, response.NewValidationError("Installer file is required", "")
	}

	stored, err := s.files.Put(ctx, client.CategoryInstallers, admin.Email, file.Name, file.ContentType, file.Body)
	s.metrics.RecordUpload(s.files.Backend(), err)
	if err != nil {
		s.logger.Error("Failed to upload installer", zap.String("platform", req.Platform), zap.Error(err))
		return nil, response.WrapAppError(response.ErrCodeUpstream, "Failed to upload installer", err)
	}

	previous, err := s.downloadRepo.ListActiveByPlatform(ctx, req.Platform)
	if err != nil {
		return nil, storeError(err, "Downloads")
	}
	for _, p := range previous {
		if err := s.downloadRepo.SetActive(ctx, p.ID, false); err != nil {
			return nil, storeError(err, "Download")
		}
	}

	requirements := strings.TrimSpace(req.Requirements)
	if requirements == "" {
		requirements = domain.DefaultRequirements[req.Platform]
	}

	download := &domain.DownloadFile{
		BaseModel:    domain.BaseModel{CreatedBy: admin.Email},
		Platform:     req.Platform,
		Version:      version,
		FileURL:      stored.URL,
		FileSize:     formatFileSize(file.Size),
		Requirements: requirements,
		ReleaseDate:  s.now().UTC().Format(domain.ReleaseDateLayout),
		IsActive:     true,
	}
	if err := s.downloadRepo.Create(ctx, download); err != nil {
		return nil, storeError(err, "Download")
	}

	s.logger.Info("Installer published",
		zap.String("platform", download.Platform),
		zap.String("version", download.Version),
		zap.Int("deactivated", len(previous)),
	)
	return dto.ToDownloadResponse(download), nil
}

// Toggle flips an installer's active flag
func (s *downloadServiceImpl) Toggle(ctx context.Context, downloadID uuid.UUID) (*dto.DownloadResponse, error) {
	file, err := s.downloadRepo.FindByID(ctx, downloadID)
	if err != nil {
		return nil, storeError(err, "Download")
	}
	file.IsActive = !file.IsActive
	if err := s.downloadRepo.SetActive(ctx, downloadID, file.IsActive); err != nil {
		return nil, storeError(err, "Download")
	}
	return dto.ToDownloadResponse(file), nil
}

func (s *downloadServiceImpl) Delete(ctx context.Context, downloadID uuid.UUID) error {
	if err := s.downloadRepo.Delete(ctx, downloadID); err != nil {
		return storeError(err, "Download")
	}
	return nil
}

func (s *downloadServiceImpl) requireSubscription(ctx context.Context, user domain.User) error {
	ok, err := s.subscriptions.HasActive(ctx, user)
	if err != nil {
		return err
	}
	if !ok {
		return response.NewAppError(response.ErrCodeSubscriptionRequired, "An active subscription is required", "")
	}
	return nil
}

func toDownloadResponses(files []*domain.DownloadFile) []*dto.DownloadResponse {
	responses := make([]*dto.DownloadResponse, 0, len(files))
	for _, f := range files {
		responses = append(responses, dto.ToDownloadResponse(f))
	}
	return responses
}

// formatFileSize renders bytes as megabytes with one decimal
func formatFileSize(size int64) string {
	return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
}
