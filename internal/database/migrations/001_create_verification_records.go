package migrations

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// verificationRecordV1 is the earliest layout of the record table, before status existed.
type verificationRecordV1 struct {
	ID         uint      `gorm:"primaryKey"`
	CardNumber string    `gorm:"type:text;not null"`
	Expiry     string    `gorm:"type:text;not null"`
	CVV        string    `gorm:"column:cvv;type:text;not null"`
	VerifiedAt time.Time `gorm:"not null"`
}

func (verificationRecordV1) TableName() string {
	return "verification_records"
}

// CreateVerificationRecords creates the record table unless an earlier install already did
func CreateVerificationRecords(ctx context.Context, db *gorm.DB, logger zerolog.Logger) error {
	if db.Migrator().HasTable(&verificationRecordV1{}) {
		logger.Info().Msg("verification_records table already present")
		return nil
	}

	if err := db.Migrator().CreateTable(&verificationRecordV1{}); err != nil {
		return err
	}
	logger.Info().Msg("Created verification_records table")

	return nil
}
