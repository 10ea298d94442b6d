package models

import (
	"time"
)

// Migration is one row of schema_migrations: a schema step applied to the record store
type Migration struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Version   string    `gorm:"uniqueIndex;not null" json:"version"`
	Name      string    `gorm:"not null" json:"name"`
	AppliedAt time.Time `json:"applied_at"`
}

func (Migration) TableName() string {
	return "schema_migrations"
}

// AppliedAtDisplay renders AppliedAt the same way verification timestamps are shown
func (m *Migration) AppliedAtDisplay() string {
	return m.AppliedAt.UTC().Format(DisplayTimeFormat)
}
