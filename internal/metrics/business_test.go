package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestIncrementProjectCreated(t *testing.T) {
	m, _ := getTestMetrics()

	initial := getCounterValue(t, m.ProjectCreatedTotal)
	m.IncrementProjectCreated()

	assert.Equal(t, initial+1, getCounterValue(t, m.ProjectCreatedTotal))
}

func TestRecordPresenceReport(t *testing.T) {
	m, _ := getTestMetrics()

	m.RecordPresenceReport(nil)
	m.RecordPresenceReport(nil)
	m.RecordPresenceReport(errors.New("network down"))

	assert.Equal(t, float64(2), getCounterValue(t, m.PresenceReportsTotal.WithLabelValues("ok")))
	assert.Equal(t, float64(1), getCounterValue(t, m.PresenceReportsTotal.WithLabelValues("error")))
}

func TestPresenceSessionsGauge(t *testing.T) {
	m, _ := getTestMetrics()

	m.PresenceSessionOpened()
	m.PresenceSessionOpened()
	m.PresenceSessionClosed()

	assert.Equal(t, float64(1), getGaugeValue(t, m.PresenceSessionsOpen))
}

func TestRecordJobSubmitted(t *testing.T) {
	m, _ := getTestMetrics()

	m.RecordJobSubmitted("analyzeMastering", "rejected")

	assert.Equal(t, float64(1), getCounterValue(t, m.JobsSubmittedTotal.WithLabelValues("analyzeMastering", "rejected")))
	assert.Equal(t, float64(0), getCounterValue(t, m.JobsSubmittedTotal.WithLabelValues("analyzeMastering", "success")))
}

type stubCounter struct {
	projects    int64
	active      int64
	projectsErr error
}

func (s stubCounter) CountProjects(ctx context.Context) (int64, error) {
	return s.projects, s.projectsErr
}

func (s stubCounter) CountActiveSubscriptions(ctx context.Context) (int64, error) {
	return s.active, nil
}

func TestBusinessMetricsCollector_Run(t *testing.T) {
	m, _ := getTestMetrics()

	NewBusinessMetricsCollector(stubCounter{projects: 12, active: 5}, m, zap.NewNop()).Run()
	assert.Equal(t, float64(12), getGaugeValue(t, m.ProjectsTotal))
	assert.Equal(t, float64(5), getGaugeValue(t, m.ActiveSubscriptionsTotal))

	// A failing count leaves the previous value and still updates the others
	NewBusinessMetricsCollector(stubCounter{active: 6, projectsErr: errors.New("db down")}, m, zap.NewNop()).Run()
	assert.Equal(t, float64(12), getGaugeValue(t, m.ProjectsTotal))
	assert.Equal(t, float64(6), getGaugeValue(t, m.ActiveSubscriptionsTotal))
}

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := counter.Write(metric); err != nil {
		t.Fatalf("Failed to write counter metric: %v", err)
	}
	return metric.Counter.GetValue()
}

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	if err := gauge.Write(metric); err != nil {
		t.Fatalf("Failed to write gauge metric: %v", err)
	}
	return metric.Gauge.GetValue()
}
