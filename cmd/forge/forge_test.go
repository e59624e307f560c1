package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dadolfin1208/signalforge/internal/dto"
)

const goodToken = "good-token"

// fakeDashboard serves the subset of the dashboard API the CLI calls.
type fakeDashboard struct {
	mu         sync.Mutex
	projectID  uuid.UUID
	heartbeats []string
	mixing     []dto.MixingAnalysisRequest
	logouts    int

	beatOnce  sync.Once
	firstBeat chan struct{}
}

func newFakeDashboard(t *testing.T) (*fakeDashboard, *httptest.Server) {
	t.Helper()
	f := &fakeDashboard{projectID: uuid.New(), firstBeat: make(chan struct{})}
	presencePath := "/api/projects/" + f.projectID.String() + "/presence"

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, dto.UserResponse{ID: "u1", Email: "artist@example.com", FullName: "Alex Artist", Role: "user"})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.logouts++
		f.mu.Unlock()
		writeData(w, http.StatusOK, nil)
	})
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, r *http.Request) {
		opened := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
		writeData(w, http.StatusOK, []dto.ProjectResponse{
			{ID: f.projectID, Name: "Summer EP", Tempo: 124, TracksCount: 12, OwnerEmail: "artist@example.com", LastOpened: &opened},
		})
	})
	mux.HandleFunc("POST "+presencePath, func(w http.ResponseWriter, r *http.Request) {
		var req dto.ReportPresenceRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.heartbeats = append(f.heartbeats, req.View)
		f.mu.Unlock()
		f.beatOnce.Do(func() { close(f.firstBeat) })
		writeData(w, http.StatusAccepted, dto.ReportPresenceResponse{Reported: true})
	})
	mux.HandleFunc("GET "+presencePath, func(w http.ResponseWriter, r *http.Request) {
		// A watcher's first poll races its first heartbeat.
		select {
		case <-f.firstBeat:
		case <-time.After(500 * time.Millisecond):
		}
		now := time.Now().UTC()
		writeData(w, http.StatusOK, dto.PresenceResponse{
			ProjectID: f.projectID,
			At:        now,
			Users: []dto.PresenceEntry{
				{UserEmail: "artist@example.com", UserName: "Alex Artist", CurrentView: "mixer", LastSeen: now, Status: "active"},
				{UserEmail: "bass@example.com", UserName: "Sam Bass", CurrentView: "arrange", LastSeen: now.Add(-90 * time.Second), Status: "idle"},
			},
			ActiveCount: 1,
			Editors:     map[string][]string{"mixer": {"Alex Artist"}},
		})
	})
	mux.HandleFunc("POST /api/projects/"+f.projectID.String()+"/analysis/mixing", func(w http.ResponseWriter, r *http.Request) {
		var req dto.MixingAnalysisRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.mixing = append(f.mixing, req)
		f.mu.Unlock()
		writeData(w, http.StatusOK, dto.JobResponse{Job: "analyzeMixing", Success: true, Data: json.RawMessage(`{"score":87}`)})
	})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+goodToken {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"error":{"code":"UNAUTHORIZED","message":"Invalid or expired token"}}`))
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)
	return f, server
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": data})
}

// runForge executes the CLI against server with its config at path.
func runForge(t *testing.T, path, server string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("FORGE_SERVER", "")
	t.Setenv("FORGE_TOKEN", "")

	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", path, "--server", server + "/api"}, args...))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func loggedInConfig(t *testing.T, server string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forge.toml")
	_, err := runForge(t, path, server, "login", "--token", goodToken)
	require.NoError(t, err)
	return path
}

func TestLogin(t *testing.T) {
	_, server := newFakeDashboard(t)

	t.Run("stores a verified token", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "forge.toml")
		out, err := runForge(t, path, server.URL, "login", "--token", goodToken)
		require.NoError(t, err)
		assert.Contains(t, out, "Logged in as artist@example.com")

		cfg, err := readConfig(path)
		require.NoError(t, err)
		assert.Equal(t, goodToken, cfg.Token)
		assert.Equal(t, server.URL+"/api", cfg.Server)
	})

	t.Run("rejected token is not stored", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "forge.toml")
		_, err := runForge(t, path, server.URL, "login", "--token", "bad-token")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rejected")

		_, statErr := os.Stat(path)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("token is required", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "forge.toml")
		_, err := runForge(t, path, server.URL, "login")
		assert.EqualError(t, err, "--token is required")
	})
}

func TestWhoamiAndLogout(t *testing.T) {
	fake, server := newFakeDashboard(t)
	path := loggedInConfig(t, server.URL)

	out, err := runForge(t, path, server.URL, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Alex Artist <artist@example.com>")
	assert.Contains(t, out, "Role: user")

	out, err = runForge(t, path, server.URL, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")
	fake.mu.Lock()
	assert.Equal(t, 1, fake.logouts)
	fake.mu.Unlock()

	cfg, err := readConfig(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Token)

	_, err = runForge(t, path, server.URL, "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestProjectsList(t *testing.T) {
	fake, server := newFakeDashboard(t)
	path := loggedInConfig(t, server.URL)

	out, err := runForge(t, path, server.URL, "projects", "list", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, fake.projectID.String())
	assert.Contains(t, out, "Summer EP")
	assert.Contains(t, out, "124")
	assert.Contains(t, out, "LAST OPENED")
}

func TestPresenceList(t *testing.T) {
	fake, server := newFakeDashboard(t)
	path := loggedInConfig(t, server.URL)

	out, err := runForge(t, path, server.URL, "presence", "list", "--project", fake.projectID.String())
	require.NoError(t, err)
	assert.Contains(t, out, "Alex Artist")
	assert.Contains(t, out, "idle")
	assert.Contains(t, out, "1m ago")
	assert.Contains(t, out, "1 active")
	assert.Contains(t, out, "mixer: Alex Artist")
}

func TestPresenceList_InvalidProject(t *testing.T) {
	_, server := newFakeDashboard(t)
	path := loggedInConfig(t, server.URL)

	_, err := runForge(t, path, server.URL, "presence", "list", "--project", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid project id")

	_, err = runForge(t, path, server.URL, "presence", "list")
	assert.EqualError(t, err, "--project is required")
}

func TestPresenceWatch(t *testing.T) {
	fake, server := newFakeDashboard(t)
	path := loggedInConfig(t, server.URL)

	out, err := runForge(t, path, server.URL, "presence", "watch", "--project", fake.projectID.String(), "--view", "mixer", "--count", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "as Alex Artist")
	assert.Contains(t, out, "Sam Bass")

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.NotEmpty(t, fake.heartbeats)
	assert.Equal(t, "mixer", fake.heartbeats[0])
}

func TestJobsMix(t *testing.T) {
	fake, server := newFakeDashboard(t)
	path := loggedInConfig(t, server.URL)

	out, err := runForge(t, path, server.URL, "jobs", "mix",
		"--project", fake.projectID.String(),
		"--track", "Lead Vocal",
		"--stem", "vocals",
	)
	require.NoError(t, err)

	var resp dto.JobResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "analyzeMixing", resp.Job)
	assert.JSONEq(t, `{"score":87}`, string(resp.Data))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Len(t, fake.mixing, 1)
	assert.Equal(t, "Lead Vocal", fake.mixing[0].TrackName)
	assert.Equal(t, "single_track", fake.mixing[0].AnalysisType)
	assert.Equal(t, "vocals", fake.mixing[0].StemType)
}

func TestJobs_RequireTrack(t *testing.T) {
	fake, server := newFakeDashboard(t)
	path := loggedInConfig(t, server.URL)

	for _, sub := range []string{"mix", "master", "separate"} {
		t.Run(sub, func(t *testing.T) {
			_, err := runForge(t, path, server.URL, "jobs", sub, "--project", fake.projectID.String())
			assert.EqualError(t, err, "--track is required")
		})
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Name", "Tracks"},
		[][]string{{"Summer EP", "12"}, {"Short row"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	lines := strings.Split(out, "\n")
	require.Greater(t, len(lines), 4)
	assert.Contains(t, out, "Summer EP")
	assert.Contains(t, out, "Short row")
	assert.True(t, strings.HasPrefix(lines[0], "╭"))

	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestShouldColorize(t *testing.T) {
	assert.False(t, shouldColorize(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, shouldColorize(f))
}

func TestFormatAgo(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		then time.Time
		want string
	}{
		{now, "now"},
		{now.Add(-42 * time.Second), "42s ago"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{time.Time{}, "-"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAgo(now, tt.then))
	}
}
