package migrations

import (
	"github.com/ksred/card-check/internal/database"
)

// GetMigrations returns all registered migrations
func GetMigrations() []database.Migration {
	return []database.Migration{
		{
			Version: "20250101_001",
			Name:    "create_verification_records",
			Run:     CreateVerificationRecords,
		},
		{
			Version: "20250101_002",
			Name:    "add_status_column",
			Run:     AddStatusColumn,
		},
	}
}
