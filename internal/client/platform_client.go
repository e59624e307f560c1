package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/config"
	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/metrics"
	"github.com/dadolfin1208/signalforge/internal/repository"
)

// ErrUnauthorized is returned when the platform rejects the caller's token.
var ErrUnauthorized = errors.New("platform: unauthorized")

// PlatformError is a non-2xx answer from the hosted platform.
type PlatformError struct {
	StatusCode int
	Message    string
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform returned status %d: %s", e.StatusCode, e.Message)
}

// Is maps status codes onto the sentinel errors callers check for.
func (e *PlatformError) Is(target error) bool {
	switch target {
	case repository.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	}
	return false
}

// JobResult is what a platform function returns.
type JobResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// UploadResult is the answer to a file upload.
type UploadResult struct {
	FileURL string `json:"file_url"`
}

// PlatformClient talks to the hosted backend that owns entities, identity,
// file storage and the analysis functions.
type PlatformClient struct {
	baseURL    string
	loginURL   string
	apiKey     string
	httpClient *http.Client
	jobClient  *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewPlatformClient creates a new hosted platform client
func NewPlatformClient(cfg config.PlatformConfig, logger *zap.Logger, m *metrics.Metrics) *PlatformClient {
	base := strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.AppID != "" {
		base = fmt.Sprintf("%s/api/apps/%s", base, url.PathEscape(cfg.AppID))
	}
	return &PlatformClient{
		baseURL:    base,
		loginURL:   cfg.LoginURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		jobClient:  &http.Client{Timeout: cfg.JobTimeout},
		logger:     logger,
		metrics:    m,
	}
}

func (c *PlatformClient) entityURL(collection string, id string) string {
	u := fmt.Sprintf("%s/entities/%s", c.baseURL, url.PathEscape(collection))
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

// do sends a request and decodes a JSON answer into out when out is non-nil.
// token overrides the service API key for calls made on behalf of a user.
func (c *PlatformClient) do(ctx context.Context, hc *http.Client, method, endpoint, token string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token == "" {
		token = c.apiKey
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := hc.Do(req)
	duration := time.Since(start)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	c.metrics.RecordExternalAPICall(endpoint, method, statusCode, duration, err)

	if err != nil {
		c.logger.Error("Platform request failed",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return fmt.Errorf("platform request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Platform request completed",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &PlatformError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode platform response: %w", err)
	}
	return nil
}

func (c *PlatformClient) doJSON(ctx context.Context, method, endpoint string, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, c.httpClient, method, endpoint, "", body, contentType, out)
}

// CreateEntity creates a record in collection and decodes the stored record into out
func (c *PlatformClient) CreateEntity(ctx context.Context, collection string, record, out interface{}) error {
	return c.doJSON(ctx, http.MethodPost, c.entityURL(collection, ""), record, out)
}

// UpdateEntity applies fields to the record with id
func (c *PlatformClient) UpdateEntity(ctx context.Context, collection, id string, fields map[string]interface{}, out interface{}) error {
	return c.doJSON(ctx, http.MethodPut, c.entityURL(collection, id), fields, out)
}

// GetEntity fetches one record
func (c *PlatformClient) GetEntity(ctx context.Context, collection, id string, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, c.entityURL(collection, id), nil, out)
}

// DeleteEntity removes one record
func (c *PlatformClient) DeleteEntity(ctx context.Context, collection, id string) error {
	return c.doJSON(ctx, http.MethodDelete, c.entityURL(collection, id), nil, nil)
}

// FilterEntities lists records matching where, ordered by sort, at most limit
func (c *PlatformClient) FilterEntities(ctx context.Context, collection string, q repository.Query, out interface{}) error {
	params := url.Values{}
	if len(q.Where) > 0 {
		where, err := json.Marshal(q.Where)
		if err != nil {
			return fmt.Errorf("failed to marshal filter: %w", err)
		}
		params.Set("q", string(where))
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	endpoint := c.entityURL(collection, "")
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	return c.doJSON(ctx, http.MethodGet, endpoint, nil, out)
}

// InvokeJob calls a platform function. The platform owns the job's
// execution; this call returns whatever it answers.
func (c *PlatformClient) InvokeJob(ctx context.Context, name string, params map[string]interface{}) (*JobResult, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job params: %w", err)
	}

	endpoint := fmt.Sprintf("%s/functions/%s", c.baseURL, url.PathEscape(name))

	var result JobResult
	if err := c.do(ctx, c.jobClient, http.MethodPost, endpoint, "", bytes.NewReader(data), "application/json", &result); err != nil {
		return nil, err
	}

	c.logger.Info("Platform job invoked",
		zap.String("job", name),
		zap.Bool("success", result.Success),
	)
	return &result, nil
}

// UploadFile streams a file to the platform's storage and returns its URL
func (c *PlatformClient) UploadFile(ctx context.Context, fileName, contentType string, file io.Reader) (*UploadResult, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", fileName)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	endpoint := fmt.Sprintf("%s/integrations/Core/UploadFile", c.baseURL)

	var result UploadResult
	if err := c.do(ctx, c.jobClient, http.MethodPost, endpoint, "", pr, writer.FormDataContentType(), &result); err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	if result.FileURL == "" {
		return nil, fmt.Errorf("platform upload returned no file_url")
	}
	return &result, nil
}

// Me resolves the user behind token
func (c *PlatformClient) Me(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	var user domain.User
	endpoint := fmt.Sprintf("%s/entities/User/me", c.baseURL)
	if err := c.do(ctx, c.httpClient, http.MethodGet, endpoint, token, nil, "", &user); err != nil {
		return nil, err
	}
	if user.Email == "" {
		return nil, ErrUnauthorized
	}
	return &user, nil
}

// IsAuthenticated reports whether token belongs to a signed-in user.
// Transport failures are returned so callers can tell them apart from a "no".
func (c *PlatformClient) IsAuthenticated(ctx context.Context, token string) (bool, error) {
	_, err := c.Me(ctx, token)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrUnauthorized) {
		return false, nil
	}
	return false, err
}

// Logout ends the platform session of token
func (c *PlatformClient) Logout(ctx context.Context, token string) error {
	endpoint := fmt.Sprintf("%s/auth/logout", c.baseURL)
	return c.do(ctx, c.httpClient, http.MethodPost, endpoint, token, nil, "", nil)
}

// LoginURL is where a browser is sent to sign in, returning to next afterwards
func (c *PlatformClient) LoginURL(next string) string {
	login := c.loginURL
	if login == "" {
		login = c.baseURL + "/login"
	}
	if next == "" {
		return login
	}
	sep := "?"
	if strings.Contains(login, "?") {
		sep = "&"
	}
	return login + sep + "from_url=" + url.QueryEscape(next)
}
