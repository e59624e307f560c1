package presence

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

type recordingReporter struct {
	mu    sync.Mutex
	views []string
	err   error
}

func (r *recordingReporter) ReportPresence(ctx context.Context, projectID uuid.UUID, user domain.User, view string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, view)
	return r.err
}

func (r *recordingReporter) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.views...)
}

func TestHeartbeat_ReportsImmediatelyAndOnTick(t *testing.T) {
	reporter := &recordingReporter{}
	hb := NewHeartbeat(reporter, uuid.New(), alice, "mixer", HeartbeatConfig{Interval: 10 * time.Millisecond}, zap.NewNop())

	hb.Start()
	defer hb.Stop()

	require.Eventually(t, func() bool { return len(reporter.calls()) >= 1 }, time.Second, time.Millisecond)
	assert.Equal(t, "mixer", reporter.calls()[0])

	hb.SetView("mastering")
	require.Eventually(t, func() bool {
		calls := reporter.calls()
		return calls[len(calls)-1] == "mastering"
	}, time.Second, time.Millisecond)
}

func TestHeartbeat_ErrorsAreSwallowed(t *testing.T) {
	reporter := &recordingReporter{err: errors.New("store down")}
	hb := NewHeartbeat(reporter, uuid.New(), alice, "mixer", HeartbeatConfig{Interval: 5 * time.Millisecond}, zap.NewNop())

	hb.Start()
	require.Eventually(t, func() bool { return len(reporter.calls()) >= 3 }, time.Second, time.Millisecond)
	hb.Stop()
}

func TestHeartbeat_NoWritesAfterStop(t *testing.T) {
	reporter := &recordingReporter{}
	hb := NewHeartbeat(reporter, uuid.New(), alice, "mixer", HeartbeatConfig{Interval: 5 * time.Millisecond}, zap.NewNop())

	hb.Start()
	require.Eventually(t, func() bool { return len(reporter.calls()) >= 2 }, time.Second, time.Millisecond)
	hb.Stop()

	after := len(reporter.calls())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, len(reporter.calls()))
}

// blockingReporter holds every call until released, ignoring cancellation.
type blockingReporter struct {
	started   chan struct{}
	release   chan struct{}
	calls     atomic.Int32
	completed atomic.Int32
}

func (r *blockingReporter) ReportPresence(ctx context.Context, projectID uuid.UUID, user domain.User, view string) error {
	if r.calls.Add(1) == 1 {
		close(r.started)
	}
	<-r.release
	r.completed.Add(1)
	return nil
}

func TestHeartbeat_InFlightCallDoesNotRearm(t *testing.T) {
	reporter := &blockingReporter{started: make(chan struct{}), release: make(chan struct{})}
	hb := NewHeartbeat(reporter, uuid.New(), alice, "mixer", HeartbeatConfig{Interval: time.Millisecond}, zap.NewNop())

	hb.Start()
	<-reporter.started

	stopped := make(chan struct{})
	go func() {
		hb.Stop()
		close(stopped)
	}()

	// Ticks keep firing while the first call is blocked.
	time.Sleep(20 * time.Millisecond)
	select {
	case <-stopped:
		t.Fatal("Stop returned while a call was in flight")
	default:
	}

	close(reporter.release)
	<-stopped

	assert.Equal(t, int32(1), reporter.calls.Load())
	assert.Equal(t, int32(1), reporter.completed.Load())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), reporter.calls.Load())
}

func TestHeartbeat_StopIsIdempotentAndFinal(t *testing.T) {
	reporter := &recordingReporter{}
	hb := NewHeartbeat(reporter, uuid.New(), alice, "mixer", HeartbeatConfig{Interval: time.Millisecond}, zap.NewNop())

	hb.Stop()
	hb.Start()
	hb.Stop()

	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, reporter.calls())
}

func TestPoller_DeliversSnapshots(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, DefaultThresholds(), zap.NewNop())
	projectID := uuid.New()
	require.NoError(t, svc.ReportPresence(context.Background(), projectID, alice, "mixer"))

	var mu sync.Mutex
	var snaps []*Snapshot
	poller := NewPoller(svc, projectID, func(s *Snapshot) {
		mu.Lock()
		snaps = append(snaps, s)
		mu.Unlock()
	}, PollerConfig{Interval: 5 * time.Millisecond}, zap.NewNop())

	poller.Start()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(snaps) >= 2
	}, time.Second, time.Millisecond)
	poller.Stop()

	mu.Lock()
	got := len(snaps)
	first := snaps[0]
	mu.Unlock()

	assert.Equal(t, 1, first.ActiveCount)
	assert.Equal(t, []string{"Alice"}, first.Editors["mixer"])

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, got, len(snaps))
	mu.Unlock()
}

func TestPoller_ErrorsSkipCallback(t *testing.T) {
	store := newMemStore()
	store.listErr = errors.New("timeout")
	svc := NewService(store, DefaultThresholds(), zap.NewNop())

	var called atomic.Bool
	poller := NewPoller(svc, uuid.New(), func(*Snapshot) { called.Store(true) }, PollerConfig{Interval: time.Millisecond}, zap.NewNop())
	poller.Start()
	time.Sleep(20 * time.Millisecond)
	poller.Stop()

	assert.False(t, called.Load())
}
