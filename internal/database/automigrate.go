package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dadolfin1208/signalforge/internal/domain"
)

// Models are the collections of the self-hosted store, one table each.
func Models() []interface{} {
	return []interface{}{
		&domain.Project{},
		&domain.Presence{},
		&domain.MixingAnalysis{},
		&domain.MasteringAnalysis{},
		&domain.StemSeparation{},
		&domain.MasteringPreset{},
		&domain.Subscription{},
		&domain.DownloadFile{},
		&domain.ProjectChat{},
		&domain.UsageAnalytics{},
		&domain.AudioFile{},
	}
}

// AutoMigrate creates or updates every table in one call
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run auto-migration: %w", err)
	}
	return nil
}

// SafeAutoMigrate migrates one table at a time so a failure names the
// table it happened on. Existing tables only gain columns and indexes.
func SafeAutoMigrate(db *gorm.DB, logger *zap.Logger) error {
	migrator := db.Migrator()
	created := 0

	for _, model := range Models() {
		table := tableName(db, model)
		existed := migrator.HasTable(model)

		if err := db.AutoMigrate(model); err != nil {
			logger.Error("Failed to migrate table",
				zap.String("table", table),
				zap.Bool("table_existed", existed),
				zap.Error(err),
			)
			return fmt.Errorf("failed to migrate table %s: %w", table, err)
		}
		if !existed {
			created++
			logger.Info("Created table", zap.String("table", table))
		}
	}

	logger.Info("Database schema up to date",
		zap.Int("tables", len(Models())),
		zap.Int("created", created),
	)
	return nil
}

func tableName(db *gorm.DB, model interface{}) string {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return fmt.Sprintf("%T", model)
	}
	return stmt.Schema.Table
}
