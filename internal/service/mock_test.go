package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dadolfin1208/signalforge/internal/client"
	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/repository"
	"github.com/dadolfin1208/signalforge/internal/response"
)

// MockJobInvoker is a mock implementation of JobInvoker
type MockJobInvoker struct {
	InvokeJobFunc func(ctx context.Context, name string, params map[string]interface{}) (*client.JobResult, error)

	mu    sync.Mutex
	Calls []invokedJob
}

type invokedJob struct {
	Name   string
	Params map[string]interface{}
}

func (m *MockJobInvoker) InvokeJob(ctx context.Context, name string, params map[string]interface{}) (*client.JobResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, invokedJob{Name: name, Params: params})
	m.mu.Unlock()
	if m.InvokeJobFunc != nil {
		return m.InvokeJobFunc(ctx, name, params)
	}
	return &client.JobResult{Success: true, Data: json.RawMessage(`{"ok":true}`)}, nil
}

// mockUsage records usage events in memory
type mockUsage struct {
	mu     sync.Mutex
	events []domain.UsageAnalytics
}

func (m *mockUsage) Record(ctx context.Context, user domain.User, action string, projectID *uuid.UUID, success bool, details string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, domain.UsageAnalytics{
		UserEmail:  user.Email,
		ActionType: action,
		ProjectID:  projectID,
		Success:    success,
		Details:    details,
	})
}

// testRepos bundles repositories over one in-memory database
type testRepos struct {
	db            *gorm.DB
	projects      repository.ProjectRepository
	analyses      repository.AnalysisRepository
	presets       repository.PresetRepository
	subscriptions repository.SubscriptionRepository
	downloads     repository.DownloadRepository
	chats         repository.ChatRepository
	usage         repository.UsageRepository
	audio         repository.AudioFileRepository
}

func setupRepos(t *testing.T) *testRepos {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.Project{},
		&domain.MixingAnalysis{},
		&domain.MasteringAnalysis{},
		&domain.StemSeparation{},
		&domain.MasteringPreset{},
		&domain.Subscription{},
		&domain.DownloadFile{},
		&domain.ProjectChat{},
		&domain.UsageAnalytics{},
		&domain.AudioFile{},
	))

	return &testRepos{
		db:       db,
		projects: repository.NewProjectRepository(repository.NewGormCollection[domain.Project](db)),
		analyses: repository.NewAnalysisRepository(
			repository.NewGormCollection[domain.MixingAnalysis](db),
			repository.NewGormCollection[domain.MasteringAnalysis](db),
			repository.NewGormCollection[domain.StemSeparation](db),
		),
		presets:       repository.NewPresetRepository(repository.NewGormCollection[domain.MasteringPreset](db)),
		subscriptions: repository.NewSubscriptionRepository(repository.NewGormCollection[domain.Subscription](db)),
		downloads:     repository.NewDownloadRepository(repository.NewGormCollection[domain.DownloadFile](db)),
		chats:         repository.NewChatRepository(repository.NewGormCollection[domain.ProjectChat](db)),
		usage:         repository.NewUsageRepository(repository.NewGormCollection[domain.UsageAnalytics](db)),
		audio:         repository.NewAudioFileRepository(repository.NewGormCollection[domain.AudioFile](db)),
	}
}

func (r *testRepos) createProject(t *testing.T, owner string) *domain.Project {
	t.Helper()
	project := &domain.Project{BaseModel: domain.BaseModel{CreatedBy: owner}, Name: "Album"}
	require.NoError(t, r.projects.Create(context.Background(), project))
	return project
}

var (
	testUser  = domain.User{ID: "u1", Email: "artist@example.com", FullName: "Alex Artist", Role: domain.RoleUser}
	otherUser = domain.User{ID: "u2", Email: "other@example.com", Role: domain.RoleUser}
	testAdmin = domain.User{ID: "a1", Email: "admin@example.com", Role: domain.RoleAdmin}
)

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *response.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}
