package presence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/domain"
	"github.com/dadolfin1208/signalforge/internal/metrics"
	"github.com/dadolfin1208/signalforge/internal/repository"
)

// ErrNoUser is returned when a report carries no user email.
var ErrNoUser = errors.New("presence: user email is required")

// Store is where presence records live.
type Store = repository.PresenceRepository

// Upserter is implemented by stores that can write a record atomically
// without a prior lookup.
type Upserter interface {
	Upsert(ctx context.Context, presence *domain.Presence) error
}

// Reporter sends one heartbeat.
type Reporter interface {
	ReportPresence(ctx context.Context, projectID uuid.UUID, user domain.User, view string) error
}

// Lister reads the presence of a project.
type Lister interface {
	ListPresence(ctx context.Context, projectID uuid.UUID) (*Snapshot, error)
}

// Service reports and lists presence.
type Service interface {
	Reporter
	Lister
}

// Snapshot is the presence of a project as seen at At.
type Snapshot struct {
	ProjectID uuid.UUID `json:"projectId"`
	At        time.Time `json:"at"`
	// Records are sorted by last_seen descending. Status is derived, not stored.
	Records     []*domain.Presence `json:"records"`
	ActiveCount int                `json:"activeCount"`
	// Editors maps a view label to the names of users active in it.
	Editors map[string][]string `json:"editors"`
}

type serviceImpl struct {
	store      Store
	thresholds Thresholds
	now        func() time.Time
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// Option configures the service
type Option func(*serviceImpl)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) { s.now = now }
}

// WithMetrics records a metric per report
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *serviceImpl) { s.metrics = m }
}

// NewService creates a presence service over store
func NewService(store Store, thresholds Thresholds, logger *zap.Logger, opts ...Option) Service {
	s := &serviceImpl{
		store:      store,
		thresholds: thresholds,
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReportPresence marks user as active in view. Repeated calls for the same
// pair refresh one record. Errors are returned; callers decide whether to
// swallow them.
func (s *serviceImpl) ReportPresence(ctx context.Context, projectID uuid.UUID, user domain.User, view string) error {
	err := s.report(ctx, projectID, user, view)
	s.metrics.RecordPresenceReport(err)
	return err
}

func (s *serviceImpl) report(ctx context.Context, projectID uuid.UUID, user domain.User, view string) error {
	if user.Email == "" {
		return ErrNoUser
	}
	now := s.now().UTC()

	record := &domain.Presence{
		ProjectID:   projectID,
		UserEmail:   user.Email,
		UserName:    user.DisplayName(),
		LastSeen:    now,
		CurrentView: view,
		Status:      domain.PresenceActive,
	}

	if up, ok := s.store.(Upserter); ok {
		if err := up.Upsert(ctx, record); err != nil {
			return fmt.Errorf("failed to upsert presence: %w", err)
		}
		return nil
	}

	existing, err := s.store.FindByProjectAndUser(ctx, projectID, user.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to look up presence: %w", err)
	}

	if existing == nil {
		if err := s.store.Create(ctx, record); err != nil {
			return fmt.Errorf("failed to create presence: %w", err)
		}
		return nil
	}

	if existing.LastSeen.After(now) {
		record.LastSeen = existing.LastSeen
	}
	existing.LastSeen = record.LastSeen
	existing.CurrentView = view
	existing.Status = domain.PresenceActive
	if err := s.store.Touch(ctx, existing); err != nil {
		return fmt.Errorf("failed to update presence: %w", err)
	}
	return nil
}

// ListPresence returns every record of the project, newest first, with status
// derived from the age of last_seen.
func (s *serviceImpl) ListPresence(ctx context.Context, projectID uuid.UUID) (*Snapshot, error) {
	records, err := s.store.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list presence: %w", err)
	}

	now := s.now().UTC()
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastSeen.After(records[j].LastSeen)
	})

	snap := &Snapshot{
		ProjectID: projectID,
		At:        now,
		Records:   records,
		Editors:   make(map[string][]string),
	}
	for _, r := range records {
		r.Status = s.thresholds.Classify(r.LastSeen, now)
		if r.Status != domain.PresenceActive {
			continue
		}
		snap.ActiveCount++
		name := r.UserName
		if name == "" {
			name = r.UserEmail
		}
		snap.Editors[r.CurrentView] = append(snap.Editors[r.CurrentView], name)
	}
	return snap, nil
}
