package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dadolfin1208/signalforge/internal/config"
	"github.com/dadolfin1208/signalforge/internal/domain"
)

func TestNew_SQLiteAndMigrate(t *testing.T) {
	db, err := New(Config{Driver: config.DriverSQLite, DSN: "file::memory:"})
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, SafeAutoMigrate(db, zap.NewNop()))
	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m), tableName(db, m))
	}
	assert.Equal(t, "project_collaborations", tableName(db, &domain.Presence{}))

	// Migrating twice only updates the schema.
	require.NoError(t, AutoMigrate(db))

	presence := &domain.Presence{UserEmail: "a@example.com", CurrentView: "mixer", LastSeen: time.Now()}
	require.NoError(t, db.Create(presence).Error)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(Config{Driver: "mongodb", DSN: "x"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestNewWithRetry_GivesUp(t *testing.T) {
	start := time.Now()
	_, err := NewWithRetry(context.Background(), Config{Driver: "mongodb"}, 3, 10*time.Millisecond, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestNewWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewWithRetry(ctx, Config{Driver: "mongodb"}, 5, time.Second, zap.NewNop())
	assert.ErrorIs(t, err, context.Canceled)
}
