package handler

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/middleware"
	"github.com/dadolfin1208/signalforge/internal/presence"
	"github.com/dadolfin1208/signalforge/internal/response"
	"github.com/dadolfin1208/signalforge/internal/service"
)

var (
	testUser  = domain.User{ID: "u1", Email: "artist@example.com", FullName: "Alex Artist", Role: domain.RoleUser}
	testAdmin = domain.User{ID: "a1", Email: "admin@example.com", Role: domain.RoleAdmin}
)

// newTestRouter returns a router that authenticates every request as user.
// A nil user leaves requests anonymous.
func newTestRouter(user *domain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if user != nil {
		u := *user
		r.Use(func(c *gin.Context) {
			c.Set(middleware.UserKey, u)
			c.Set(middleware.TokenKey, "test-token")
			c.Next()
		})
	}
	return r
}

type errorEnvelope struct {
	Success bool               `json:"success"`
	Error   response.ErrorBody `json:"error"`
}

func decodeError(t *testing.T, body []byte) response.ErrorBody {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	require.False(t, env.Success)
	return env.Error
}

func decodeData(t *testing.T, body []byte, out interface{}) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	require.True(t, env.Success)
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// MockProjectService is a mock implementation of ProjectService
type MockProjectService struct {
	ListProjectsFunc  func(ctx context.Context, user domain.User, query dto.ListProjectsQuery) ([]*dto.ProjectResponse, error)
	GetProjectFunc    func(ctx context.Context, projectID uuid.UUID) (*dto.ProjectResponse, error)
	CreateProjectFunc func(ctx context.Context, user domain.User, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error)
	UpdateProjectFunc func(ctx context.Context, user domain.User, projectID uuid.UUID, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error)
	OpenProjectFunc   func(ctx context.Context, user domain.User, projectID uuid.UUID) (*dto.ProjectResponse, error)
	DeleteProjectFunc func(ctx context.Context, user domain.User, projectID uuid.UUID) error
}

var _ service.ProjectService = (*MockProjectService)(nil)

func (m *MockProjectService) ListProjects(ctx context.Context, user domain.User, query dto.ListProjectsQuery) ([]*dto.ProjectResponse, error) {
	if m.ListProjectsFunc != nil {
		return m.ListProjectsFunc(ctx, user, query)
	}
	return []*dto.ProjectResponse{}, nil
}

func (m *MockProjectService) GetProject(ctx context.Context, projectID uuid.UUID) (*dto.ProjectResponse, error) {
	if m.GetProjectFunc != nil {
		return m.GetProjectFunc(ctx, projectID)
	}
	return &dto.ProjectResponse{ID: projectID}, nil
}

func (m *MockProjectService) CreateProject(ctx context.Context, user domain.User, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if m.CreateProjectFunc != nil {
		return m.CreateProjectFunc(ctx, user, req)
	}
	return &dto.ProjectResponse{ID: uuid.New(), Name: req.Name, OwnerEmail: user.Email}, nil
}

func (m *MockProjectService) UpdateProject(ctx context.Context, user domain.User, projectID uuid.UUID, req *dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	if m.UpdateProjectFunc != nil {
		return m.UpdateProjectFunc(ctx, user, projectID, req)
	}
	return &dto.ProjectResponse{ID: projectID}, nil
}

func (m *MockProjectService) OpenProject(ctx context.Context, user domain.User, projectID uuid.UUID) (*dto.ProjectResponse, error) {
	if m.OpenProjectFunc != nil {
		return m.OpenProjectFunc(ctx, user, projectID)
	}
	return &dto.ProjectResponse{ID: projectID}, nil
}

func (m *MockProjectService) DeleteProject(ctx context.Context, user domain.User, projectID uuid.UUID) error {
	if m.DeleteProjectFunc != nil {
		return m.DeleteProjectFunc(ctx, user, projectID)
	}
	return nil
}

type reportCall struct {
	ProjectID uuid.UUID
	Email     string
	View      string
}

// MockPresenceService records reports and serves a fixed snapshot
type MockPresenceService struct {
	ReportPresenceFunc func(ctx context.Context, projectID uuid.UUID, user domain.User, view string) error
	ListPresenceFunc   func(ctx context.Context, projectID uuid.UUID) (*presence.Snapshot, error)

	mu      sync.Mutex
	reports []reportCall
}

var _ presence.Service = (*MockPresenceService)(nil)

func (m *MockPresenceService) ReportPresence(ctx context.Context, projectID uuid.UUID, user domain.User, view string) error {
	m.mu.Lock()
	m.reports = append(m.reports, reportCall{ProjectID: projectID, Email: user.Email, View: view})
	m.mu.Unlock()
	if m.ReportPresenceFunc != nil {
		return m.ReportPresenceFunc(ctx, projectID, user, view)
	}
	return nil
}

func (m *MockPresenceService) ListPresence(ctx context.Context, projectID uuid.UUID) (*presence.Snapshot, error) {
	if m.ListPresenceFunc != nil {
		return m.ListPresenceFunc(ctx, projectID)
	}
	return &presence.Snapshot{ProjectID: projectID, Editors: map[string][]string{}}, nil
}

func (m *MockPresenceService) Reports() []reportCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]reportCall(nil), m.reports...)
}

// MockUploadService is a mock implementation of UploadService
type MockUploadService struct {
	UploadFunc  func(ctx context.Context, user domain.User, file service.UploadedFile) (*dto.AudioFileResponse, error)
	PresignFunc func(ctx context.Context, user domain.User, req *dto.PresignUploadRequest) (*dto.PresignUploadResponse, error)
	ConfirmFunc func(ctx context.Context, user domain.User, fileID, projectID uuid.UUID) (*dto.AudioFileResponse, error)
	DeleteFunc  func(ctx context.Context, user domain.User, fileID uuid.UUID) error
}

var _ service.UploadService = (*MockUploadService)(nil)

func (m *MockUploadService) Upload(ctx context.Context, user domain.User, file service.UploadedFile) (*dto.AudioFileResponse, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, user, file)
	}
	return &dto.AudioFileResponse{ID: uuid.New(), FileName: file.Name, FileSize: file.Size}, nil
}

func (m *MockUploadService) Presign(ctx context.Context, user domain.User, req *dto.PresignUploadRequest) (*dto.PresignUploadResponse, error) {
	if m.PresignFunc != nil {
		return m.PresignFunc(ctx, user, req)
	}
	return &dto.PresignUploadResponse{FileID: uuid.New()}, nil
}

func (m *MockUploadService) Confirm(ctx context.Context, user domain.User, fileID, projectID uuid.UUID) (*dto.AudioFileResponse, error) {
	if m.ConfirmFunc != nil {
		return m.ConfirmFunc(ctx, user, fileID, projectID)
	}
	return &dto.AudioFileResponse{ID: fileID, ProjectID: &projectID}, nil
}

func (m *MockUploadService) List(ctx context.Context, user domain.User) ([]*dto.AudioFileResponse, error) {
	return []*dto.AudioFileResponse{}, nil
}

func (m *MockUploadService) Delete(ctx context.Context, user domain.User, fileID uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, user, fileID)
	}
	return nil
}
