package migrations

import (
	"context"

	"github.com/ksred/card-check/internal/models"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// AddStatusColumn adds the nullable status column. Existing rows keep a NULL status.
func AddStatusColumn(ctx context.Context, db *gorm.DB, logger zerolog.Logger) error {
	if db.Migrator().HasColumn(&models.VerificationRecord{}, "status") {
		logger.Info().Msg("status column already present")
		return nil
	}

	if err := db.Migrator().AddColumn(&models.VerificationRecord{}, "Status"); err != nil {
		return err
	}
	logger.Info().Msg("Added status column")

	return nil
}
