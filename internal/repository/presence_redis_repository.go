package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// presenceNamespace seeds deterministic record IDs for redis-held presence.
var presenceNamespace = uuid.MustParse("6f1d3c1e-2f43-4c55-9a8e-6b0f3f5d2a10")

// PresenceKey is the hash holding every presence record of a project.
// Fields are user emails.
func PresenceKey(projectID uuid.UUID) string {
	return fmt.Sprintf("presence:project:%s", projectID.String())
}

// PresenceChannel is where presence changes of a project are published.
func PresenceChannel(projectID uuid.UUID) string {
	return fmt.Sprintf("presence:project:%s:events", projectID.String())
}

// PresenceID returns the stable record ID of a (project, user) pair.
func PresenceID(projectID uuid.UUID, userEmail string) uuid.UUID {
	return uuid.NewSHA1(presenceNamespace, []byte(projectID.String()+"|"+userEmail))
}

// PresenceEvent is the message published on PresenceChannel.
type PresenceEvent struct {
	Type     string           `json:"type"`
	Presence *domain.Presence `json:"presence"`
}

// RedisPresenceRepository keeps presence in one hash per project, one
// field per user.
type RedisPresenceRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPresenceRepository creates a presence repository backed by redis
func NewRedisPresenceRepository(client *redis.Client, logger *zap.Logger) *RedisPresenceRepository {
	return &RedisPresenceRepository{client: client, logger: logger}
}

func (r *RedisPresenceRepository) FindByProjectAndUser(ctx context.Context, projectID uuid.UUID, userEmail string) (*domain.Presence, error) {
	raw, err := r.client.HGet(ctx, PresenceKey(projectID), userEmail).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read presence: %w", err)
	}

	var presence domain.Presence
	if err := json.Unmarshal(raw, &presence); err != nil {
		return nil, fmt.Errorf("failed to decode presence: %w", err)
	}
	return &presence, nil
}

func (r *RedisPresenceRepository) Create(ctx context.Context, presence *domain.Presence) error {
	return r.Upsert(ctx, presence)
}

func (r *RedisPresenceRepository) Touch(ctx context.Context, presence *domain.Presence) error {
	return r.Upsert(ctx, presence)
}

// maxUpsertAttempts bounds retries when another writer touches the
// project's hash between WATCH and EXEC.
const maxUpsertAttempts = 5

// Upsert writes the record and publishes it to the project's channel.
// last_seen only moves forward: a write older than the stored record is
// dropped without an event. created_date and created_by of an existing
// record are kept.
func (r *RedisPresenceRepository) Upsert(ctx context.Context, presence *domain.Presence) error {
	presence.ID = PresenceID(presence.ProjectID, presence.UserEmail)
	key := PresenceKey(presence.ProjectID)

	var written *domain.Presence
	txf := func(tx *redis.Tx) error {
		written = nil
		raw, err := tx.HGet(ctx, key, presence.UserEmail).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("failed to read presence: %w", err)
		}

		next := *presence
		next.UpdatedDate = time.Now().UTC()
		if err == nil {
			var stored domain.Presence
			if jsonErr := json.Unmarshal(raw, &stored); jsonErr == nil {
				if stored.LastSeen.After(presence.LastSeen) {
					return nil
				}
				next.CreatedDate = stored.CreatedDate
				next.CreatedBy = stored.CreatedBy
			} else {
				r.logger.Warn("overwriting undecodable presence record",
					zap.String("project_id", presence.ProjectID.String()),
					zap.String("user_email", presence.UserEmail),
					zap.Error(jsonErr),
				)
			}
		}
		if next.CreatedDate.IsZero() {
			next.CreatedDate = next.UpdatedDate
		}

		data, err := json.Marshal(&next)
		if err != nil {
			return fmt.Errorf("failed to encode presence: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, presence.UserEmail, data)
			return nil
		})
		if err != nil {
			return err
		}
		written = &next
		return nil
	}

	var err error
	for attempt := 0; attempt < maxUpsertAttempts; attempt++ {
		err = r.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("failed to write presence: %w", err)
	}
	if written == nil {
		return nil
	}

	*presence = *written
	r.publish(ctx, presence)
	return nil
}

func (r *RedisPresenceRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.Presence, error) {
	fields, err := r.client.HGetAll(ctx, PresenceKey(projectID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list presence: %w", err)
	}

	records := make([]*domain.Presence, 0, len(fields))
	for email, raw := range fields {
		var presence domain.Presence
		if err := json.Unmarshal([]byte(raw), &presence); err != nil {
			r.logger.Warn("skipping undecodable presence record",
				zap.String("project_id", projectID.String()),
				zap.String("user_email", email),
				zap.Error(err),
			)
			continue
		}
		records = append(records, &presence)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastSeen.After(records[j].LastSeen)
	})
	return records, nil
}

// Subscribe returns a subscription to presence events of a project.
func (r *RedisPresenceRepository) Subscribe(ctx context.Context, projectID uuid.UUID) *redis.PubSub {
	return r.client.Subscribe(ctx, PresenceChannel(projectID))
}

func (r *RedisPresenceRepository) publish(ctx context.Context, presence *domain.Presence) {
	data, err := json.Marshal(PresenceEvent{Type: "PRESENCE_UPDATED", Presence: presence})
	if err != nil {
		r.logger.Error("failed to marshal presence event", zap.Error(err))
		return
	}

	if err := r.client.Publish(ctx, PresenceChannel(presence.ProjectID), data).Err(); err != nil {
		r.logger.Error("failed to publish presence event", zap.Error(err))
	}
}
