package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// PresenceRepository defines data access for presence records
type PresenceRepository interface {
	FindByProjectAndUser(ctx context.Context, projectID uuid.UUID, userEmail string) (*domain.Presence, error)
	Create(ctx context.Context, presence *domain.Presence) error
	Touch(ctx context.Context, presence *domain.Presence) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Presence, error)
}

// presenceRepositoryImpl works against any Collection. Writes are
// lookup-then-write; callers accept the race window that implies.
type presenceRepositoryImpl struct {
	coll Collection[domain.Presence]
}

// NewPresenceRepository creates a PresenceRepository over a collection
func NewPresenceRepository(coll Collection[domain.Presence]) PresenceRepository {
	return &presenceRepositoryImpl{coll: coll}
}

func (r *presenceRepositoryImpl) FindByProjectAndUser(ctx context.Context, projectID uuid.UUID, userEmail string) (*domain.Presence, error) {
	records, err := r.coll.Filter(ctx, Query{
		Where: map[string]interface{}{
			"project_id": projectID,
			"user_email": userEmail,
		},
		Sort:  "-last_seen",
		Limit: 1,
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records[0], nil
}

func (r *presenceRepositoryImpl) Create(ctx context.Context, presence *domain.Presence) error {
	return r.coll.Create(ctx, presence)
}

// Touch refreshes last_seen, current_view and status of an existing record
func (r *presenceRepositoryImpl) Touch(ctx context.Context, presence *domain.Presence) error {
	return r.coll.Update(ctx, presence.ID, map[string]interface{}{
		"last_seen":    presence.LastSeen,
		"current_view": presence.CurrentView,
		"status":       presence.Status,
	})
}

func (r *presenceRepositoryImpl) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Presence, error) {
	return r.coll.Filter(ctx, Query{
		Where: map[string]interface{}{"project_id": projectID},
		Sort:  "-last_seen",
	})
}

// GormPresenceRepository adds an atomic upsert on the
// (project_id, user_email) unique index.
type GormPresenceRepository struct {
	PresenceRepository
	db *gorm.DB
}

// NewGormPresenceRepository creates a presence repository backed by gorm
func NewGormPresenceRepository(db *gorm.DB) *GormPresenceRepository {
	return &GormPresenceRepository{
		PresenceRepository: NewPresenceRepository(NewGormCollection[domain.Presence](db)),
		db:                 db,
	}
}

// Upsert inserts the record or refreshes the existing one for the same pair.
// last_seen only moves forward.
func (r *GormPresenceRepository) Upsert(ctx context.Context, presence *domain.Presence) error {
	presence.EnsureID()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "project_id"}, {Name: "user_email"}},
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "project_collaborations.last_seen <= excluded.last_seen"},
		}},
		DoUpdates: clause.AssignmentColumns([]string{"user_name", "last_seen", "current_view", "status", "updated_date"}),
	}).Create(presence).Error
	if err != nil {
		return err
	}
	return nil
}

// FindByProjectAndUser narrows gorm's not-found error to ErrNotFound
func (r *GormPresenceRepository) FindByProjectAndUser(ctx context.Context, projectID uuid.UUID, userEmail string) (*domain.Presence, error) {
	var presence domain.Presence
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_email = ?", projectID, userEmail).
		First(&presence).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &presence, nil
}
