package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
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

// allowedAudioExtensions are the file types accepted for analysis uploads
var allowedAudioExtensions = map[string]bool{
	".wav":  true,
	".aif":  true,
	".aiff": true,
	".flac": true,
	".mp3":  true,
	".ogg":  true,
	".m4a":  true,
}

// UploadService stores audio files and tracks their lifecycle
type UploadService interface {
	Upload(ctx context.Context, user domain.User, file UploadedFile) (*dto.AudioFileResponse, error)
	Presign(ctx context.Context, user domain.User, req *dto.PresignUploadRequest) (*dto.PresignUploadResponse, error)
	Confirm(ctx context.Context, user domain.User, fileID, projectID uuid.UUID) (*dto.AudioFileResponse, error)
	List(ctx context.Context, user domain.User) ([]*dto.AudioFileResponse, error)
	Delete(ctx context.Context, user domain.User, fileID uuid.UUID) error
}

type uploadServiceImpl struct {
	audioRepo   repository.AudioFileRepository
	projectRepo repository.ProjectRepository
	files       client.FileStore
	usage       UsageRecorder
	maxFileSize int64
	tempTTL     time.Duration
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewUploadService creates a new instance of UploadService
func NewUploadService(
	audioRepo repository.AudioFileRepository,
	projectRepo repository.ProjectRepository,
	files client.FileStore,
	usage UsageRecorder,
	maxFileSize int64,
	tempTTL time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) UploadService {
	return &uploadServiceImpl{
		audioRepo:   audioRepo,
		projectRepo: projectRepo,
		files:       files,
		usage:       usage,
		maxFileSize: maxFileSize,
		tempTTL:     tempTTL,
		metrics:     m,
		logger:      logger,
		now:         time.Now,
	}
}

// Upload stores the file and records it as a temporary upload
func (s *uploadServiceImpl) Upload(ctx context.Context, user domain.User, file UploadedFile) (*dto.AudioFileResponse, error) {
	if err := s.validateFile(file.Name, file.Size); err != nil {
		return nil, err
	}
	contentType := valueOr(file.ContentType, "application/octet-stream")

	stored, err := s.files.Put(ctx, client.CategoryAudio, user.Email, file.Name, contentType, file.Body)
	s.metrics.RecordUpload(s.files.Backend(), err)
	if err != nil {
		s.usage.Record(ctx, user, domain.ActionUpload, nil, false, err.Error())
		s.logger.Error("Failed to store upload",
			zap.String("user_email", user.Email),
			zap.String("file_name", file.Name),
			zap.Error(err),
		)
		return nil, response.WrapAppError(response.ErrCodeUpstream, "Failed to store file", err)
	}

	audio := s.newTempFile(user, file.Name, contentType, file.Size, stored)
	if err := s.audioRepo.Create(ctx, audio); err != nil {
		return nil, storeError(err, "Audio file")
	}

	s.usage.Record(ctx, user, domain.ActionUpload, nil, true, file.Name)
	return dto.ToAudioFileResponse(audio), nil
}

// Presign records a temporary upload and returns a URL the client uploads to directly
func (s *uploadServiceImpl) Presign(ctx context.Context, user domain.User, req *dto.PresignUploadRequest) (*dto.PresignUploadResponse, error) {
	if err := s.validateFile(req.FileName, req.FileSize); err != nil {
		return nil, err
	}

	uploadURL, stored, err := s.files.Presign(ctx, client.CategoryAudio, user.Email, req.FileName, req.ContentType)
	if errors.Is(err, client.ErrPresignUnsupported) {
		return nil, response.NewValidationError("Direct uploads are not available", "use multipart upload")
	}
	if err != nil {
		return nil, response.WrapAppError(response.ErrCodeUpstream, "Failed to create upload URL", err)
	}

	audio := s.newTempFile(user, req.FileName, req.ContentType, req.FileSize, stored)
	if err := s.audioRepo.Create(ctx, audio); err != nil {
		return nil, storeError(err, "Audio file")
	}

	return &dto.PresignUploadResponse{
		FileID:    audio.ID,
		UploadURL: uploadURL,
		FileURL:   stored.URL,
		ExpiresIn: int(client.PresignExpiry.Seconds()),
	}, nil
}

// Confirm attaches an uploaded file to a project so it no longer expires
func (s *uploadServiceImpl) Confirm(ctx context.Context, user domain.User, fileID, projectID uuid.UUID) (*dto.AudioFileResponse, error) {
	audio, err := s.ownedFile(ctx, user, fileID)
	if err != nil {
		return nil, err
	}
	if audio.Status == domain.UploadStatusTemp && audio.ExpiresAt != nil && audio.ExpiresAt.Before(s.now()) {
		return nil, response.NewValidationError("Upload has expired", "")
	}
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		return nil, storeError(err, "Project")
	}

	if err := s.audioRepo.Confirm(ctx, fileID, projectID); err != nil {
		return nil, storeError(err, "Audio file")
	}
	audio.Status = domain.UploadStatusConfirmed
	audio.ProjectID = &projectID
	audio.ExpiresAt = nil
	return dto.ToAudioFileResponse(audio), nil
}

func (s *uploadServiceImpl) List(ctx context.Context, user domain.User) ([]*dto.AudioFileResponse, error) {
	files, err := s.audioRepo.ListByUploader(ctx, user.Email)
	if err != nil {
		return nil, storeError(err, "Audio files")
	}
	responses := make([]*dto.AudioFileResponse, 0, len(files))
	for _, f := range files {
		responses = append(responses, dto.ToAudioFileResponse(f))
	}
	return responses, nil
}

// Delete removes the stored object and its record
func (s *uploadServiceImpl) Delete(ctx context.Context, user domain.User, fileID uuid.UUID) error {
	audio, err := s.ownedFile(ctx, user, fileID)
	if err != nil {
		return err
	}
	if err := s.files.Delete(ctx, audio.StorageKey); err != nil {
		return response.WrapAppError(response.ErrCodeUpstream, "Failed to delete stored file", err)
	}
	if err := s.audioRepo.Delete(ctx, fileID); err != nil {
		return storeError(err, "Audio file")
	}
	return nil
}

func (s *uploadServiceImpl) validateFile(name string, size int64) error {
	if strings.TrimSpace(name) == "" {
		return response.NewValidationError("File name is required", "")
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedAudioExtensions[ext] {
		return response.NewValidationError("Unsupported file type", ext)
	}
	if size <= 0 {
		return response.NewValidationError("File is empty", "")
	}
	if s.maxFileSize > 0 && size > s.maxFileSize {
		return response.NewValidationError("File is too large", fmt.Sprintf("limit is %d bytes", s.maxFileSize))
	}
	return nil
}

func (s *uploadServiceImpl) newTempFile(user domain.User, name, contentType string, size int64, stored *client.StoredFile) *domain.AudioFile {
	expires := s.now().UTC().Add(s.tempTTL)
	return &domain.AudioFile{
		BaseModel:   domain.BaseModel{CreatedBy: user.Email},
		Status:      domain.UploadStatusTemp,
		FileName:    name,
		FileURL:     stored.URL,
		StorageKey:  stored.Key,
		FileSize:    size,
		ContentType: contentType,
		UploadedBy:  user.Email,
		ExpiresAt:   &expires,
	}
}

func (s *uploadServiceImpl) ownedFile(ctx context.Context, user domain.User, fileID uuid.UUID) (*domain.AudioFile, error) {
	audio, err := s.audioRepo.FindByID(ctx, fileID)
	if err != nil {
		return nil, storeError(err, "Audio file")
	}
	if audio.UploadedBy != user.Email && !user.IsAdmin() {
		return nil, response.NewForbiddenError("Only the uploader can change this file", "")
	}
	return audio, nil
}
