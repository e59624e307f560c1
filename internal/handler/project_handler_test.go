package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/repository"
	"github.com/dadolfin1208/signalforge/internal/response"
)

func TestProjectHandler_GetProject(t *testing.T) {
	projectID := uuid.New()

	tests := []struct {
		name           string
		path           string
		mockService    func(*MockProjectService)
		expectedStatus int
		expectedCode   string
		hiddenDetails  bool
	}{
		{
			name:           "found",
			path:           "/projects/" + projectID.String(),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid id",
			path:           "/projects/not-a-uuid",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   response.ErrCodeValidation,
		},
		{
			name: "not found",
			path: "/projects/" + projectID.String(),
			mockService: func(m *MockProjectService) {
				m.GetProjectFunc = func(ctx context.Context, id uuid.UUID) (*dto.ProjectResponse, error) {
					return nil, response.NewNotFoundError("Project not found", id.String())
				}
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   response.ErrCodeNotFound,
		},
		{
			name: "bare repository not found",
			path: "/projects/" + projectID.String(),
			mockService: func(m *MockProjectService) {
				m.GetProjectFunc = func(ctx context.Context, id uuid.UUID) (*dto.ProjectResponse, error) {
					return nil, fmt.Errorf("lookup: %w", repository.ErrNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   response.ErrCodeNotFound,
		},
		{
			name: "platform down",
			path: "/projects/" + projectID.String(),
			mockService: func(m *MockProjectService) {
				m.GetProjectFunc = func(ctx context.Context, id uuid.UUID) (*dto.ProjectResponse, error) {
					return nil, response.NewAppError(response.ErrCodeUpstream, "Platform unavailable", "dial tcp 10.0.0.1:443: refused")
				}
			},
			expectedStatus: http.StatusBadGateway,
			expectedCode:   response.ErrCodeUpstream,
			hiddenDetails:  true,
		},
		{
			name: "unexpected error",
			path: "/projects/" + projectID.String(),
			mockService: func(m *MockProjectService) {
				m.GetProjectFunc = func(ctx context.Context, id uuid.UUID) (*dto.ProjectResponse, error) {
					return nil, errors.New("boom")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   response.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockProjectService{}
			if tt.mockService != nil {
				tt.mockService(mockService)
			}
			h := NewProjectHandler(mockService)
			router := newTestRouter(&testUser)
			router.GET("/projects/:projectId", h.GetProject)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode == "" {
				var project dto.ProjectResponse
				decodeData(t, w.Body.Bytes(), &project)
				assert.Equal(t, projectID, project.ID)
				return
			}
			body := decodeError(t, w.Body.Bytes())
			assert.Equal(t, tt.expectedCode, body.Code)
			if tt.hiddenDetails {
				assert.Empty(t, body.Details)
			}
		})
	}
}

func TestProjectHandler_CreateProject(t *testing.T) {
	tests := []struct {
		name           string
		user           *domain.User
		body           string
		expectedStatus int
	}{
		{"created", &testUser, `{"name":"Summer EP","sampleRate":"96000","tempo":98}`, http.StatusCreated},
		{"missing name", &testUser, `{"description":"x"}`, http.StatusBadRequest},
		{"unsupported sample rate", &testUser, `{"name":"EP","sampleRate":"22050"}`, http.StatusBadRequest},
		{"tempo out of range", &testUser, `{"name":"EP","tempo":1000}`, http.StatusBadRequest},
		{"malformed json", &testUser, `{"name":`, http.StatusBadRequest},
		{"anonymous", nil, `{"name":"EP"}`, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *dto.CreateProjectRequest
			mockService := &MockProjectService{
				CreateProjectFunc: func(ctx context.Context, user domain.User, req *dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
					got = req
					return &dto.ProjectResponse{ID: uuid.New(), Name: req.Name, OwnerEmail: user.Email}, nil
				},
			}
			router := newTestRouter(tt.user)
			router.POST("/projects", NewProjectHandler(mockService).CreateProject)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/projects", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus != http.StatusCreated {
				assert.Nil(t, got)
				return
			}
			var project dto.ProjectResponse
			decodeData(t, w.Body.Bytes(), &project)
			assert.Equal(t, "Summer EP", project.Name)
			assert.Equal(t, testUser.Email, project.OwnerEmail)
			require.NotNil(t, got)
			assert.Equal(t, "96000", got.SampleRate)
		})
	}
}

func TestProjectHandler_ListProjects(t *testing.T) {
	var gotQuery dto.ListProjectsQuery
	mockService := &MockProjectService{
		ListProjectsFunc: func(ctx context.Context, user domain.User, query dto.ListProjectsQuery) ([]*dto.ProjectResponse, error) {
			gotQuery = query
			return []*dto.ProjectResponse{{Name: "A"}, {Name: "B"}}, nil
		},
	}
	router := newTestRouter(&testUser)
	router.GET("/projects", NewProjectHandler(mockService).ListProjects)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects?sort=name&limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var projects []dto.ProjectResponse
	decodeData(t, w.Body.Bytes(), &projects)
	assert.Len(t, projects, 2)
	assert.Equal(t, dto.ListProjectsQuery{Sort: "name", Limit: 5}, gotQuery)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/projects?sort=random", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectHandler_DeleteForbidden(t *testing.T) {
	mockService := &MockProjectService{
		DeleteProjectFunc: func(ctx context.Context, user domain.User, projectID uuid.UUID) error {
			return response.NewForbiddenError("Only the owner can delete this project", "")
		},
	}
	router := newTestRouter(&testUser)
	router.DELETE("/projects/:projectId", NewProjectHandler(mockService).DeleteProject)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/projects/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decodeError(t, w.Body.Bytes())
	assert.Equal(t, response.ErrCodeForbidden, body.Code)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.NotContains(t, raw, "data")
}
