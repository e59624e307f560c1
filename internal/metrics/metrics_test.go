package metrics

import (
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getTestMetrics() (*Metrics, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	return NewWithRegistry(registry, zap.NewNop()), registry
}

func TestMetricNamesAndHelp(t *testing.T) {
	m, registry := getTestMetrics()

	// Touch vector metrics so they show up in Gather
	m.RecordHTTPRequest("GET", "/api/projects", 200, time.Millisecond)
	m.RecordDBQuery("select", "projects", time.Millisecond, errors.New("boom"))
	m.RecordExternalAPICall("https://p.example.com/api/entities/Project", "GET", 500, time.Millisecond, nil)
	m.RecordPresenceReport(nil)
	m.RecordJobSubmitted("analyzeMixing", "success")
	m.RecordUpload("s3", nil)
	m.RecordDownload("macOS")

	families, err := registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	snake := regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	for _, f := range families {
		assert.True(t, strings.HasPrefix(f.GetName(), namespace+"_"), f.GetName())
		assert.True(t, snake.MatchString(f.GetName()), f.GetName())
		assert.NotEmpty(t, f.GetHelp(), f.GetName())
	}
}

func TestShouldSkipEndpoint(t *testing.T) {
	assert.True(t, ShouldSkipEndpoint("/metrics"))
	assert.True(t, ShouldSkipEndpoint("/health"))
	assert.True(t, ShouldSkipEndpoint("/api/ready"))
	assert.False(t, ShouldSkipEndpoint("/api/projects"))
}

func TestCategorizeStatus(t *testing.T) {
	assert.Equal(t, "2xx", categorizeStatus(204))
	assert.Equal(t, "3xx", categorizeStatus(302))
	assert.Equal(t, "4xx", categorizeStatus(404))
	assert.Equal(t, "5xx", categorizeStatus(503))
	assert.Equal(t, "unknown", categorizeStatus(0))
}

func TestNormalizeEndpoint(t *testing.T) {
	got := normalizeEndpoint("https://p.example.com/api/apps/x/entities/Project/123e4567-e89b-12d3-a456-426614174000?sort=-created_date")
	assert.Equal(t, "/api/apps/x/entities/Project/{id}", got)
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		status int
		err    error
		want   string
	}{
		{401, nil, "unauthorized"},
		{404, nil, "not_found"},
		{429, nil, "too_many_requests"},
		{418, nil, "client_error"},
		{502, nil, "bad_gateway"},
		{599, nil, "server_error"},
		{0, errors.New("dial tcp: connection refused"), "connection_refused"},
		{0, errors.New("context deadline exceeded"), "timeout"},
		{0, errors.New("lookup p.example.com: no such host"), "dns_error"},
		{0, errors.New("weird"), "network_error"},
		{0, nil, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, getErrorType(tt.status, tt.err))
	}
}

func TestUpdateDBStats(t *testing.T) {
	m, _ := getTestMetrics()

	m.UpdateDBStats(sql.DBStats{
		MaxOpenConnections: 25,
		OpenConnections:    4,
		InUse:              3,
		Idle:               1,
		WaitCount:          7,
		WaitDuration:       2 * time.Second,
	})
	// Stats are cumulative; a second identical report must not double count.
	m.UpdateDBStats(sql.DBStats{WaitCount: 7, WaitDuration: 2 * time.Second, MaxOpenConnections: 25})

	assert.Equal(t, float64(25), getGaugeValue(t, m.DBConnectionsMax))
	assert.Equal(t, float64(7), getGaugeValue(t, m.DBConnectionWaitTotal))
	assert.Equal(t, float64(2), getGaugeValue(t, m.DBConnectionWaitDuration))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest("GET", "/x", 200, time.Millisecond)
		m.RecordPresenceReport(errors.New("x"))
		m.RecordJobSubmitted("analyzeMixing", "error")
		m.IncrementProjectCreated()
	})
}
