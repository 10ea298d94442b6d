package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ksred/card-check/internal/database"
	"github.com/ksred/card-check/internal/database/migrations"
	"github.com/ksred/card-check/internal/models"
	"github.com/ksred/card-check/internal/utils"
)

// RecordStore is the append-only log of verification attempts
type RecordStore interface {
	// EnsureSchema creates or additively migrates the record table. Safe on every startup.
	EnsureSchema(ctx context.Context) error
	// Append inserts a new record, stamps VerifiedAt and returns the assigned id.
	Append(ctx context.Context, record *models.VerificationRecord) (uint, error)
	// ListAll returns every record, newest first.
	ListAll(ctx context.Context) ([]models.VerificationRecord, error)
}

func stampTime(now func() time.Time) time.Time {
	return now().UTC().Truncate(time.Second)
}

// GormRecordStore keeps records in a sqlite or postgres table through gorm
type GormRecordStore struct {
	db     *gorm.DB
	logger zerolog.Logger
	now    func() time.Time
}

// NewGormRecordStore creates a store over an open gorm connection
func NewGormRecordStore(db *gorm.DB, logger zerolog.Logger) *GormRecordStore {
	return &GormRecordStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the clock used for VerifiedAt
func (s *GormRecordStore) WithClock(now func() time.Time) *GormRecordStore {
	s.now = now
	return s
}

// EnsureSchema runs the versioned record-table migrations
func (s *GormRecordStore) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return utils.WrapStorageError("ensure schema", fmt.Errorf("database not connected"))
	}

	err := database.RunMigrations(ctx, s.db, s.logger, migrations.GetMigrations()...)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to ensure record schema")
		return utils.WrapStorageError("ensure schema", err)
	}

	return nil
}

// Append inserts the record. Faults are returned once as a StorageError; nothing is retried.
func (s *GormRecordStore) Append(ctx context.Context, record *models.VerificationRecord) (uint, error) {
	if record == nil {
		return 0, utils.WrapStorageError("append", fmt.Errorf("nil record"))
	}
	if s.db == nil {
		return 0, utils.WrapStorageError("append", fmt.Errorf("database not connected"))
	}

	record.ID = 0
	record.VerifiedAt = stampTime(s.now)

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		s.logger.Error().
			Err(err).
			Bool("retryable", database.IsRetryableError(err)).
			Msg("Failed to append verification record")
		return 0, utils.WrapStorageError("append", err)
	}

	s.logger.Debug().
		Uint("id", record.ID).
		Str("status", record.StatusString()).
		Msg("Appended verification record")

	return record.ID, nil
}

// ListAll returns every record ordered by id descending
func (s *GormRecordStore) ListAll(ctx context.Context) ([]models.VerificationRecord, error) {
	if s.db == nil {
		return nil, utils.WrapStorageError("list", fmt.Errorf("database not connected"))
	}

	var records []models.VerificationRecord
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&records).Error; err != nil {
		return nil, utils.WrapStorageError("list", err)
	}

	return records, nil
}

// MemoryRecordStore is an in-process RecordStore for tests and dry runs
type MemoryRecordStore struct {
	mu      sync.Mutex
	records []models.VerificationRecord
	nextID  uint
	now     func() time.Time

	// AppendErr, when set, makes every Append fail with it wrapped as a StorageError
	AppendErr error
}

// NewMemoryRecordStore creates an empty in-memory store
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{
		nextID: 1,
		now:    time.Now,
	}
}

// WithClock replaces the clock used for VerifiedAt
func (s *MemoryRecordStore) WithClock(now func() time.Time) *MemoryRecordStore {
	s.now = now
	return s
}

// EnsureSchema has nothing to prepare in memory
func (s *MemoryRecordStore) EnsureSchema(ctx context.Context) error {
	return nil
}

// Append stores a copy of the record
func (s *MemoryRecordStore) Append(ctx context.Context, record *models.VerificationRecord) (uint, error) {
	if record == nil {
		return 0, utils.WrapStorageError("append", fmt.Errorf("nil record"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.AppendErr != nil {
		return 0, utils.WrapStorageError("append", s.AppendErr)
	}
	if err := record.Validate(); err != nil {
		return 0, utils.WrapStorageError("append", err)
	}

	record.ID = s.nextID
	record.VerifiedAt = stampTime(s.now)
	s.nextID++

	stored := *record
	if record.Status != nil {
		status := *record.Status
		stored.Status = &status
	}
	s.records = append(s.records, stored)

	return record.ID, nil
}

// ListAll returns copies of every record, newest first
func (s *MemoryRecordStore) ListAll(ctx context.Context) ([]models.VerificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.VerificationRecord, len(s.records))
	copy(out, s.records)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	return out, nil
}

// Len returns the number of stored records
func (s *MemoryRecordStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
