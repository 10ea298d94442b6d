package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ksred/card-check/internal/models"
	"github.com/ksred/card-check/internal/utils"
)

var testNow = time.Date(2025, time.June, 15, 9, 30, 45, 123456789, time.UTC)

func fixedNow() time.Time { return testNow }

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}

func setupGormStore(t *testing.T) (*GormRecordStore, *gorm.DB) {
	db := setupTestDB(t)
	store := NewGormRecordStore(db, zerolog.Nop()).WithClock(fixedNow)
	require.NoError(t, store.EnsureSchema(context.Background()))
	return store, db
}

func newRecord(card, status string) *models.VerificationRecord {
	return &models.VerificationRecord{
		CardNumber: card,
		Expiry:     "12/30",
		CVV:        "123",
		Status:     &status,
	}
}

func TestGormRecordStore_EnsureSchema(t *testing.T) {
	store, db := setupGormStore(t)

	assert.True(t, db.Migrator().HasTable(&models.VerificationRecord{}))
	assert.True(t, db.Migrator().HasColumn(&models.VerificationRecord{}, "status"))

	// Second call on an up-to-date schema is a no-op
	require.NoError(t, store.EnsureSchema(context.Background()))
}

func TestGormRecordStore_AppendAndList(t *testing.T) {
	store, _ := setupGormStore(t)
	ctx := context.Background()

	id1, err := store.Append(ctx, newRecord("4532015112830366", models.StatusValid))
	require.NoError(t, err)
	id2, err := store.Append(ctx, newRecord("1234567812345678", models.StatusInvalid))
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first
	assert.Equal(t, id2, records[0].ID)
	assert.Equal(t, "1234567812345678", records[0].CardNumber)
	assert.Equal(t, models.StatusInvalid, records[0].StatusString())
	assert.Equal(t, id1, records[1].ID)
	assert.Equal(t, models.StatusValid, records[1].StatusString())

	assert.True(t, records[1].VerifiedAt.Equal(testNow.Truncate(time.Second)))
}

func TestGormRecordStore_AppendStampsTimeAndAssignsID(t *testing.T) {
	store, _ := setupGormStore(t)

	rec := newRecord("4532015112830366", models.StatusValid)
	rec.ID = 999
	rec.VerifiedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

	id, err := store.Append(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, uint(1), id)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, testNow.Truncate(time.Second), rec.VerifiedAt)
}

func TestGormRecordStore_ListAllEmpty(t *testing.T) {
	store, _ := setupGormStore(t)

	records, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGormRecordStore_ListIncludesLegacyRows(t *testing.T) {
	store, db := setupGormStore(t)
	ctx := context.Background()

	require.NoError(t, db.Exec(
		"INSERT INTO verification_records (card_number, expiry, cvv, verified_at) VALUES (?, ?, ?, ?)",
		"4532015112830366", "01/24", "999", time.Date(2023, 12, 1, 8, 0, 0, 0, time.UTC),
	).Error)

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Status)
	assert.Equal(t, "", records[0].StatusString())
}

func TestGormRecordStore_RecordsAreImmutable(t *testing.T) {
	store, db := setupGormStore(t)
	ctx := context.Background()

	rec := newRecord("4532015112830366", models.StatusValid)
	_, err := store.Append(ctx, rec)
	require.NoError(t, err)

	err = db.Model(rec).Update("cvv", "000").Error
	assert.ErrorIs(t, err, models.ErrImmutableRecord)

	err = db.Delete(rec).Error
	assert.ErrorIs(t, err, models.ErrImmutableRecord)

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "123", records[0].CVV)
}

func TestGormRecordStore_AppendInvalidRecord(t *testing.T) {
	store, _ := setupGormStore(t)

	_, err := store.Append(context.Background(), &models.VerificationRecord{CardNumber: validDigits, Expiry: "12/30"})
	require.Error(t, err)
	assert.True(t, utils.IsStorageError(err))

	_, err = store.Append(context.Background(), nil)
	assert.True(t, utils.IsStorageError(err))
}

func TestGormRecordStore_StorageFaults(t *testing.T) {
	t.Run("Closed connection", func(t *testing.T) {
		store, db := setupGormStore(t)

		sqlDB, err := db.DB()
		require.NoError(t, err)
		require.NoError(t, sqlDB.Close())

		_, err = store.Append(context.Background(), newRecord("4532015112830366", models.StatusValid))
		require.Error(t, err)
		assert.True(t, utils.IsStorageError(err))

		var storageErr *utils.StorageError
		require.ErrorAs(t, err, &storageErr)
		assert.Equal(t, "append", storageErr.Operation)

		_, err = store.ListAll(context.Background())
		assert.True(t, utils.IsStorageError(err))

		err = store.EnsureSchema(context.Background())
		assert.True(t, utils.IsStorageError(err))
	})

	t.Run("Missing table", func(t *testing.T) {
		store, db := setupGormStore(t)
		require.NoError(t, db.Migrator().DropTable(&models.VerificationRecord{}))

		_, err := store.Append(context.Background(), newRecord("4532015112830366", models.StatusValid))
		assert.True(t, utils.IsStorageError(err))
	})

	t.Run("Nil database", func(t *testing.T) {
		store := NewGormRecordStore(nil, zerolog.Nop())

		_, err := store.Append(context.Background(), newRecord("4532015112830366", models.StatusValid))
		assert.True(t, utils.IsStorageError(err))
		assert.True(t, utils.IsStorageError(store.EnsureSchema(context.Background())))
	})
}

func TestGormRecordStore_PostgresInsertFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	insertErr := errors.New("pq: relation \"verification_records\" does not exist")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "verification_records"`)).WillReturnError(insertErr)
	mock.ExpectRollback()

	store := NewGormRecordStore(db, zerolog.Nop()).WithClock(fixedNow)
	id, err := store.Append(context.Background(), newRecord("4532015112830366", models.StatusValid))

	require.Error(t, err)
	assert.Zero(t, id)
	assert.True(t, utils.IsStorageError(err))
	assert.ErrorIs(t, err, insertErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormRecordStore_PostgresInsertReturnsID(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "verification_records"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectCommit()

	store := NewGormRecordStore(db, zerolog.Nop()).WithClock(fixedNow)
	id, err := store.Append(context.Background(), newRecord("4532015112830366", models.StatusValid))

	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRecordStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRecordStore().WithClock(fixedNow)
	require.NoError(t, store.EnsureSchema(ctx))

	rec := newRecord("4532015112830366", models.StatusValid)
	id, err := store.Append(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, uint(1), id)

	id, err = store.Append(ctx, newRecord("1234567812345678", models.StatusInvalid))
	require.NoError(t, err)
	assert.Equal(t, uint(2), id)

	// Mutating the caller's record does not reach the store
	*rec.Status = models.StatusInvalid

	records, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, uint(2), records[0].ID)
	assert.Equal(t, models.StatusValid, records[1].StatusString())
	assert.Equal(t, testNow.Truncate(time.Second), records[1].VerifiedAt)
}

func TestMemoryRecordStore_AppendErr(t *testing.T) {
	store := NewMemoryRecordStore()
	store.AppendErr = errors.New("disk full")

	_, err := store.Append(context.Background(), newRecord("4532015112830366", models.StatusValid))
	require.Error(t, err)
	assert.True(t, utils.IsStorageError(err))
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 0, store.Len())
}
