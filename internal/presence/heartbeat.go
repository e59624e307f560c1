package presence

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// Default loop timings
const (
	DefaultHeartbeatInterval = 5 * time.Second
	DefaultPollInterval      = 3 * time.Second
	DefaultCallTimeout       = 5 * time.Second
)

// loop runs fn immediately and then on every tick until stopped.
// Stop waits for an in-flight fn to return, so no call starts or
// completes after Stop returns.
type loop struct {
	interval time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
}

func (l *loop) start(fn func(ctx context.Context)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil || l.stopped {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.done = make(chan struct{})

	go func() {
		defer close(l.done)

		ticker := time.NewTicker(l.interval)
		defer ticker.Stop()

		l.call(ctx, fn)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.call(ctx, fn)
			}
		}
	}()
}

func (l *loop) call(ctx context.Context, fn func(ctx context.Context)) {
	if ctx.Err() != nil {
		return
	}
	callCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	fn(callCtx)
}

func (l *loop) stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Heartbeat reports one user's presence in a project on a fixed interval.
type Heartbeat struct {
	reporter  Reporter
	projectID uuid.UUID
	user      domain.User
	logger    *zap.Logger
	loop      loop

	viewMu sync.RWMutex
	view   string
}

// HeartbeatConfig holds the loop timings. Zero values fall back to defaults.
type HeartbeatConfig struct {
	Interval    time.Duration
	CallTimeout time.Duration
}

// NewHeartbeat creates a heartbeat. Nothing is written until Start.
func NewHeartbeat(reporter Reporter, projectID uuid.UUID, user domain.User, view string, cfg HeartbeatConfig, logger *zap.Logger) *Heartbeat {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultHeartbeatInterval
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return &Heartbeat{
		reporter:  reporter,
		projectID: projectID,
		user:      user,
		logger:    logger,
		loop:      loop{interval: cfg.Interval, timeout: cfg.CallTimeout},
		view:      view,
	}
}

// Start reports once immediately and then on every interval.
// A stopped heartbeat cannot be restarted.
func (h *Heartbeat) Start() {
	h.loop.start(h.beat)
}

// Stop ends the loop. After it returns no further reports are written.
func (h *Heartbeat) Stop() {
	h.loop.stop()
}

// SetView changes the view label sent on subsequent reports.
func (h *Heartbeat) SetView(view string) {
	h.viewMu.Lock()
	h.view = view
	h.viewMu.Unlock()
}

// View returns the label currently reported.
func (h *Heartbeat) View() string {
	h.viewMu.RLock()
	defer h.viewMu.RUnlock()
	return h.view
}

func (h *Heartbeat) beat(ctx context.Context) {
	view := h.View()
	if err := h.reporter.ReportPresence(ctx, h.projectID, h.user, view); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		h.logger.Warn("presence report failed",
			zap.String("project_id", h.projectID.String()),
			zap.String("user_email", h.user.Email),
			zap.String("view", view),
			zap.Error(err),
		)
	}
}

// Poller fetches a project's presence on a fixed interval and hands each
// snapshot to a callback.
type Poller struct {
	lister    Lister
	projectID uuid.UUID
	onUpdate  func(*Snapshot)
	logger    *zap.Logger
	loop      loop
}

// PollerConfig holds the loop timings. Zero values fall back to defaults.
type PollerConfig struct {
	Interval    time.Duration
	CallTimeout time.Duration
}

// NewPoller creates a poller. onUpdate runs on the poller's goroutine.
func NewPoller(lister Lister, projectID uuid.UUID, onUpdate func(*Snapshot), cfg PollerConfig, logger *zap.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return &Poller{
		lister:    lister,
		projectID: projectID,
		onUpdate:  onUpdate,
		logger:    logger,
		loop:      loop{interval: cfg.Interval, timeout: cfg.CallTimeout},
	}
}

// Start polls once immediately and then on every interval.
func (p *Poller) Start() {
	p.loop.start(p.poll)
}

// Stop ends the loop. After it returns onUpdate is not called again.
func (p *Poller) Stop() {
	p.loop.stop()
}

func (p *Poller) poll(ctx context.Context) {
	snap, err := p.lister.ListPresence(ctx, p.projectID)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		p.logger.Warn("presence poll failed",
			zap.String("project_id", p.projectID.String()),
			zap.Error(err),
		)
		return
	}
	if ctx.Err() != nil {
		return
	}
	p.onUpdate(snap)
}
