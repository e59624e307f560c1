package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/client"
	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/repository"
)

// CleanupJob removes temporary uploads that were never confirmed
type CleanupJob struct {
	audioRepo repository.AudioFileRepository
	files     client.FileStore
	logger    *zap.Logger
	now       func() time.Time
	timeout   time.Duration
}

// NewCleanupJob creates a new CleanupJob instance
func NewCleanupJob(
	audioRepo repository.AudioFileRepository,
	files client.FileStore,
	logger *zap.Logger,
) *CleanupJob {
	return &CleanupJob{
		audioRepo: audioRepo,
		files:     files,
		logger:    logger,
		now:       time.Now,
		timeout:   5 * time.Minute,
	}
}

// Run executes the cleanup job. A record is only deleted after its stored
// object is gone, so a failed storage delete is retried on the next run.
func (j *CleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	expired, err := j.audioRepo.FindExpiredTemp(ctx, j.now().UTC())
	if err != nil {
		j.logger.Error("Failed to find expired temporary uploads", zap.Error(err))
		return
	}

	if len(expired) == 0 {
		j.logger.Debug("No expired temporary uploads found")
		return
	}

	successCount := 0
	failCount := 0
	for _, f := range expired {
		if j.remove(ctx, f) {
			successCount++
		} else {
			failCount++
		}
	}

	j.logger.Info("Cleanup job completed",
		zap.Int("total_expired", len(expired)),
		zap.Int("success", successCount),
		zap.Int("failed", failCount),
	)
}

func (j *CleanupJob) remove(ctx context.Context, f *domain.AudioFile) bool {
	if err := j.files.Delete(ctx, f.StorageKey); err != nil {
		j.logger.Error("Failed to delete stored upload",
			zap.String("file_id", f.ID.String()),
			zap.String("storage_key", f.StorageKey),
			zap.Error(err),
		)
		return false
	}

	if err := j.audioRepo.Delete(ctx, f.ID); err != nil {
		j.logger.Error("Failed to delete upload record",
			zap.String("file_id", f.ID.String()),
			zap.Error(err),
		)
		return false
	}

	j.logger.Debug("Deleted expired upload",
		zap.String("file_id", f.ID.String()),
		zap.String("uploaded_by", f.UploadedBy),
	)
	return true
}
