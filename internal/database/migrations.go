package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// RunMigrations registers the given migrations on a fresh runner and applies the pending ones.
// It is safe to call on every startup.
func RunMigrations(ctx context.Context, db *gorm.DB, logger zerolog.Logger, migrations ...Migration) error {
	if db == nil {
		return fmt.Errorf("database not connected")
	}

	runner := NewMigrationRunner(db, logger)
	for _, m := range migrations {
		runner.Register(m)
	}

	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
