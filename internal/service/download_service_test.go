package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/client"
	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/response"
)

func newTestDownloadService(repos *testRepos, s3 *client.MockS3Client, usage UsageRecorder) DownloadService {
	subs := NewSubscriptionService(repos.subscriptions, zap.NewNop())
	svc := NewDownloadService(repos.downloads, subs, client.NewS3FileStore(s3), usage, nil, zap.NewNop())
	svc.(*downloadServiceImpl).now = func() time.Time {
		return time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func installer(size int64) UploadedFile {
	return UploadedFile{
		Name:        "SignalForge-1.0.dmg",
		ContentType: "application/octet-stream",
		Size:        size,
		Body:        strings.NewReader("installer bytes"),
	}
}

func TestPublish_DeactivatesPreviousVersion(t *testing.T) {
	repos := setupRepos(t)
	svc := newTestDownloadService(repos, client.NewMockS3Client(), &mockUsage{})
	ctx := context.Background()

	first, err := svc.Publish(ctx, testAdmin, &dto.PublishInstallerRequest{Platform: "macOS", Version: "1.0.0"}, installer(5*1024*1024))
	require.NoError(t, err)
	assert.True(t, first.IsActive)
	assert.Equal(t, "5.0 MB", first.FileSize)
	assert.Equal(t, "March 2026", first.ReleaseDate)
	assert.Equal(t, domain.DefaultRequirements["macOS"], first.Requirements)
	assert.Contains(t, first.FileURL, "/installers/")

	_, err = svc.Publish(ctx, testAdmin, &dto.PublishInstallerRequest{Platform: "Windows", Version: "1.0.0"}, installer(1024))
	require.NoError(t, err)

	second, err := svc.Publish(ctx, testAdmin, &dto.PublishInstallerRequest{
		Platform:     "macOS",
		Version:      "1.1.0",
		Requirements: "macOS 14+",
	}, installer(1536*1024))
	require.NoError(t, err)
	assert.Equal(t, "1.5 MB", second.FileSize)
	assert.Equal(t, "macOS 14+", second.Requirements)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	active := map[string]string{}
	for _, d := range all {
		if d.IsActive {
			active[d.Platform] = d.Version
		}
	}
	assert.Equal(t, map[string]string{"macOS": "1.1.0", "Windows": "1.0.0"}, active)
}

func TestPublish_Validation(t *testing.T) {
	repos := setupRepos(t)
	s3 := client.NewMockS3Client()
	uploaded := 0
	s3.UploadFileFunc = func(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
		uploaded++
		return "https://example.com/" + key, nil
	}
	svc := newTestDownloadService(repos, s3, &mockUsage{})
	ctx := context.Background()

	_, err := svc.Publish(ctx, testAdmin, &dto.PublishInstallerRequest{Platform: "BeOS", Version: "1.0"}, installer(10))
	assertAppErrorCode(t, err, response.ErrCodeValidation)

	_, err = svc.Publish(ctx, testAdmin, &dto.PublishInstallerRequest{Platform: "Linux", Version: " "}, installer(10))
	assertAppErrorCode(t, err, response.ErrCodeValidation)

	_, err = svc.Publish(ctx, testAdmin, &dto.PublishInstallerRequest{Platform: "Linux", Version: "1.0"}, UploadedFile{Name: "x.deb"})
	assertAppErrorCode(t, err, response.ErrCodeValidation)

	assert.Zero(t, uploaded)
}

func TestPublish_StorageFailureKeepsCurrentVersion(t *testing.T) {
	repos := setupRepos(t)
	s3 := client.NewMockS3Client()
	svc := newTestDownloadService(repos, s3, &mockUsage{})
	ctx := context.Background()

	_, err := svc.Publish(ctx, testAdmin, &dto.PublishInstallerRequest{Platform: "Linux", Version: "1.0"}, installer(10))
	require.NoError(t, err)

	s3.UploadFileFunc = func(ctx context.Context, key string, file io.Reader, contentType string) (string, error) {
		return "", errors.New("bucket unavailable")
	}
	_, err = svc.Publish(ctx, testAdmin, &dto.PublishInstallerRequest{Platform: "Linux", Version: "2.0"}, installer(10))
	assertAppErrorCode(t, err, response.ErrCodeUpstream)

	active, err := repos.downloads.ListActiveByPlatform(ctx, "Linux")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "1.0", active[0].Version)
}

func TestDownloads_SubscriptionGate(t *testing.T) {
	repos := setupRepos(t)
	usage := &mockUsage{}
	svc := newTestDownloadService(repos, client.NewMockS3Client(), usage)
	ctx := context.Background()

	published, err := svc.Publish(ctx, testAdmin, &dto.PublishInstallerRequest{Platform: "Windows", Version: "2.0"}, installer(10))
	require.NoError(t, err)

	_, err = svc.ListAvailable(ctx, testUser)
	assertAppErrorCode(t, err, response.ErrCodeSubscriptionRequired)
	_, err = svc.RecordDownload(ctx, testUser, published.ID)
	assertAppErrorCode(t, err, response.ErrCodeSubscriptionRequired)

	subs := NewSubscriptionService(repos.subscriptions, zap.NewNop())
	_, err = subs.Create(ctx, testAdmin, &dto.CreateSubscriptionRequest{
		UserEmail:        testUser.Email,
		SubscriptionType: domain.SubscriptionTrial,
	})
	require.NoError(t, err)

	available, err := svc.ListAvailable(ctx, testUser)
	require.NoError(t, err)
	require.Len(t, available, 1)

	counted, err := svc.RecordDownload(ctx, testUser, published.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, counted.DownloadCount)
	counted, err = svc.RecordDownload(ctx, testUser, published.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, counted.DownloadCount)

	require.Len(t, usage.events, 2)
	assert.Equal(t, domain.ActionDownload, usage.events[0].ActionType)
	assert.Equal(t, "Windows 2.0", usage.events[0].Details)
}

func TestDownloads_ToggleAndDelete(t *testing.T) {
	repos := setupRepos(t)
	svc := newTestDownloadService(repos, client.NewMockS3Client(), &mockUsage{})
	ctx := context.Background()

	published, err := svc.Publish(ctx, testAdmin, &dto.PublishInstallerRequest{Platform: "Linux", Version: "3.0"}, installer(10))
	require.NoError(t, err)

	toggled, err := svc.Toggle(ctx, published.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	// Admins skip the subscription check but inactive installers stay hidden.
	available, err := svc.ListAvailable(ctx, testAdmin)
	require.NoError(t, err)
	assert.Empty(t, available)
	_, err = svc.RecordDownload(ctx, testAdmin, published.ID)
	assertAppErrorCode(t, err, response.ErrCodeNotFound)

	require.NoError(t, svc.Delete(ctx, published.ID))
	_, err = svc.Toggle(ctx, published.ID)
	assertAppErrorCode(t, err, response.ErrCodeNotFound)
}
