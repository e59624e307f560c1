package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/dto"
	"github.com/dadolfin1208/signalforge/internal/presence"
	"github.com/dadolfin1208/signalforge/internal/response"
)

// DashboardError is an error envelope returned by the dashboard API.
type DashboardError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *DashboardError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("dashboard returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is lets callers match ErrUnauthorized on a 401.
func (e *DashboardError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// DashboardClient calls the dashboard API on behalf of one signed-in user.
// It satisfies presence.Reporter and presence.Lister so a desktop session
// can run the same heartbeat and poll loops as a browser tab.
type DashboardClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewDashboardClient creates a client for the API rooted at baseURL (including the base path).
func NewDashboardClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *DashboardClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   *response.ErrorBody `json:"error"`
}

func (c *DashboardClient) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dashboard request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Dashboard request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("failed to read dashboard response: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		derr := &DashboardError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		if decodeErr == nil && env.Error != nil {
			derr.Code = env.Error.Code
			derr.Message = env.Error.Message
		}
		return derr
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode dashboard response: %w", decodeErr)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode dashboard data: %w", err)
	}
	return nil
}

// Me returns the user behind the token
func (c *DashboardClient) Me(ctx context.Context) (*dto.UserResponse, error) {
	var user dto.UserResponse
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout ends the session behind the token
func (c *DashboardClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// ListProjects lists the caller's projects, most recently opened first
func (c *DashboardClient) ListProjects(ctx context.Context, limit int) ([]*dto.ProjectResponse, error) {
	q := url.Values{}
	q.Set("sort", "-last_opened")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var projects []*dto.ProjectResponse
	if err := c.do(ctx, http.MethodGet, "/projects?"+q.Encode(), nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// ReportPresence sends one heartbeat. The server takes the user from the
// token, so user is ignored. A heartbeat the server accepted but could not
// store is reported as an error.
func (c *DashboardClient) ReportPresence(ctx context.Context, projectID uuid.UUID, _ domain.User, view string) error {
	var resp dto.ReportPresenceResponse
	path := fmt.Sprintf("/projects/%s/presence", projectID)
	if err := c.do(ctx, http.MethodPost, path, dto.ReportPresenceRequest{View: view}, &resp); err != nil {
		return err
	}
	if !resp.Reported {
		return errors.New("dashboard accepted the heartbeat but did not store it")
	}
	return nil
}

// ListPresence fetches the presence of a project
func (c *DashboardClient) ListPresence(ctx context.Context, projectID uuid.UUID) (*presence.Snapshot, error) {
	var resp dto.PresenceResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%s/presence", projectID), nil, &resp); err != nil {
		return nil, err
	}

	snap := &presence.Snapshot{
		ProjectID:   resp.ProjectID,
		At:          resp.At,
		Records:     make([]*domain.Presence, 0, len(resp.Users)),
		ActiveCount: resp.ActiveCount,
		Editors:     resp.Editors,
	}
	for _, u := range resp.Users {
		snap.Records = append(snap.Records, &domain.Presence{
			ProjectID:   resp.ProjectID,
			UserEmail:   u.UserEmail,
			UserName:    u.UserName,
			CurrentView: u.CurrentView,
			LastSeen:    u.LastSeen,
			Status:      domain.PresenceStatus(u.Status),
		})
	}
	return snap, nil
}

// SubmitMixing submits an analyzeMixing job
func (c *DashboardClient) SubmitMixing(ctx context.Context, projectID uuid.UUID, req *dto.MixingAnalysisRequest) (*dto.JobResponse, error) {
	return c.submit(ctx, projectID, "mixing", req)
}

// SubmitMastering submits an analyzeMastering job
func (c *DashboardClient) SubmitMastering(ctx context.Context, projectID uuid.UUID, req *dto.MasteringAnalysisRequest) (*dto.JobResponse, error) {
	return c.submit(ctx, projectID, "mastering", req)
}

// SubmitSeparation submits a separateStems job
func (c *DashboardClient) SubmitSeparation(ctx context.Context, projectID uuid.UUID, req *dto.StemSeparationRequest) (*dto.JobResponse, error) {
	return c.submit(ctx, projectID, "separation", req)
}

func (c *DashboardClient) submit(ctx context.Context, projectID uuid.UUID, kind string, req interface{}) (*dto.JobResponse, error) {
	var resp dto.JobResponse
	path := fmt.Sprintf("/projects/%s/analysis/%s", projectID, kind)
	if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
