package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ksred/card-check/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// MigrationFunc is a function that performs a migration
type MigrationFunc func(ctx context.Context, db *gorm.DB, logger zerolog.Logger) error

// Migration represents a migration to be run
type Migration struct {
	Version string
	Name    string
	Run     MigrationFunc
}

// MigrationRunner handles running database migrations
type MigrationRunner struct {
	db         *gorm.DB
	logger     zerolog.Logger
	migrations []Migration
}

// NewMigrationRunner creates a new migration runner
func NewMigrationRunner(db *gorm.DB, logger zerolog.Logger) *MigrationRunner {
	return &MigrationRunner{
		db:         db,
		logger:     logger,
		migrations: []Migration{},
	}
}

// Register adds a migration to the runner. Registering a version twice is a no-op.
func (r *MigrationRunner) Register(migration Migration) {
	for _, m := range r.migrations {
		if m.Version == migration.Version {
			return
		}
	}
	r.migrations = append(r.migrations, migration)
}

// Run executes all pending migrations in version order, each in its own transaction
func (r *MigrationRunner) Run(ctx context.Context) error {
	db := r.db.WithContext(ctx)

	if err := db.AutoMigrate(&models.Migration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	sort.Slice(r.migrations, func(i, j int) bool {
		return r.migrations[i].Version < r.migrations[j].Version
	})

	applied, err := r.appliedVersions(db)
	if err != nil {
		return err
	}

	for _, migration := range r.migrations {
		if applied[migration.Version] {
			r.logger.Debug().
				Str("version", migration.Version).
				Str("name", migration.Name).
				Msg("Migration already applied, skipping")
			continue
		}

		r.logger.Info().
			Str("version", migration.Version).
			Str("name", migration.Name).
			Msg("Running migration")

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Run(ctx, tx, r.logger); err != nil {
				return fmt.Errorf("migration %s failed: %w", migration.Version, err)
			}

			record := &models.Migration{
				Version:   migration.Version,
				Name:      migration.Name,
				AppliedAt: time.Now().UTC(),
			}
			if err := tx.Create(record).Error; err != nil {
				return fmt.Errorf("failed to record migration %s: %w", migration.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		r.logger.Info().
			Str("version", migration.Version).
			Str("name", migration.Name).
			Msg("Migration completed successfully")
	}

	return nil
}

// GetPendingMigrations returns a list of migrations that haven't been applied yet
func (r *MigrationRunner) GetPendingMigrations(ctx context.Context) ([]Migration, error) {
	db := r.db.WithContext(ctx)
	if !db.Migrator().HasTable(&models.Migration{}) {
		pending := make([]Migration, len(r.migrations))
		copy(pending, r.migrations)
		return pending, nil
	}

	applied, err := r.appliedVersions(db)
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, migration := range r.migrations {
		if !applied[migration.Version] {
			pending = append(pending, migration)
		}
	}

	return pending, nil
}

// Applied returns the recorded migrations, oldest first. A store that was never migrated has none.
func (r *MigrationRunner) Applied(ctx context.Context) ([]models.Migration, error) {
	db := r.db.WithContext(ctx)
	if !db.Migrator().HasTable(&models.Migration{}) {
		return nil, nil
	}

	var applied []models.Migration
	if err := db.Order("version ASC").Find(&applied).Error; err != nil {
		return nil, fmt.Errorf("failed to list applied migrations: %w", err)
	}
	return applied, nil
}

func (r *MigrationRunner) appliedVersions(db *gorm.DB) (map[string]bool, error) {
	var versions []string
	if err := db.Model(&models.Migration{}).Pluck("version", &versions).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	applied := make(map[string]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}
