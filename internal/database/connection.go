package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database manages the record store connection
type Database struct {
	db     *gorm.DB
	config map[string]interface{}
	mu     sync.RWMutex
}

// NewDatabase creates a new Database instance
func NewDatabase(config map[string]interface{}) *Database {
	return &Database{
		config: config,
	}
}

// Connect opens the configured driver, retrying with backoff for server databases
func (d *Database) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	dialector, err := d.dialector()
	if err != nil {
		return err
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(d.getLogLevel()),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt: true,
	}

	maxRetries := d.getConfigInt("connect_retries", d.defaultRetries())
	if maxRetries < 1 {
		maxRetries = 1
	}
	retryDelay := d.getConfigDuration("retry_delay", 2*time.Second)

	for i := 0; i < maxRetries; i++ {
		d.db, err = gorm.Open(dialector, gormConfig)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			time.Sleep(retryDelay)
			retryDelay *= 2
		}
	}

	if err != nil {
		return fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns := d.getConfigInt("max_open_conns", 10)
	maxIdleConns := d.getConfigInt("max_idle_conns", 2)
	if d.driver() == "sqlite" {
		// One writer at a time; also keeps ":memory:" on a single database.
		maxOpenConns, maxIdleConns = 1, 1
	}

	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxLifetime(d.getConfigDuration("conn_max_lifetime", time.Hour))
	sqlDB.SetConnMaxIdleTime(d.getConfigDuration("conn_max_idle_time", 10*time.Minute))

	return nil
}

// Health checks the database connection health
func (d *Database) Health(ctx context.Context) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return fmt.Errorf("database not connected")
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}

	d.db = nil
	return nil
}

// DB returns the underlying gorm.DB instance
func (d *Database) DB() *gorm.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

// SetDB sets the underlying gorm.DB instance (for testing)
func (d *Database) SetDB(db *gorm.DB) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.db = db
}

// Driver returns the configured driver name
func (d *Database) Driver() string {
	return d.driver()
}

func (d *Database) driver() string {
	return d.getConfigString("driver", "sqlite")
}

func (d *Database) defaultRetries() int {
	if d.driver() == "sqlite" {
		return 1
	}
	return 5
}

// dialector picks the gorm driver for the configured backend
func (d *Database) dialector() (gorm.Dialector, error) {
	switch d.driver() {
	case "sqlite":
		path := d.getConfigString("path", "cards.db")
		if err := ensureParentDir(path); err != nil {
			return nil, fmt.Errorf("failed to prepare database directory: %w", err)
		}
		return sqlite.Open(d.buildSQLiteDSN()), nil
	case "postgres":
		return postgres.Open(d.buildDSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", d.driver())
	}
}

// buildSQLiteDSN appends the busy timeout so lock contention waits instead of failing at once
func (d *Database) buildSQLiteDSN() string {
	path := d.getConfigString("path", "cards.db")
	busyTimeout := d.getConfigDuration("busy_timeout", 5*time.Second)

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_busy_timeout=%d", path, sep, busyTimeout.Milliseconds())
}

// buildDSN constructs the PostgreSQL DSN from config
func (d *Database) buildDSN() string {
	host := d.getConfigString("host", "localhost")
	port := d.getConfigInt("port", 5432)
	user := d.getConfigString("user", "postgres")
	password := d.getConfigString("password", "")
	dbname := d.getConfigString("dbname", "card_check")
	sslmode := d.getConfigString("sslmode", "disable")
	timezone := d.getConfigString("timezone", "UTC")

	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		host, port, user, password, dbname, sslmode, timezone)
}

func ensureParentDir(path string) error {
	if path == "" || strings.HasPrefix(path, ":memory:") || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

// getLogLevel returns the GORM log level from config
func (d *Database) getLogLevel() logger.LogLevel {
	switch d.getConfigString("log_level", "silent") {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return logger.Silent
	}
}

// Helper methods for config access

func (d *Database) getConfigString(key string, defaultValue string) string {
	if val, ok := d.config[key].(string); ok && val != "" {
		return val
	}
	return defaultValue
}

func (d *Database) getConfigInt(key string, defaultValue int) int {
	if val, ok := d.config[key].(int); ok {
		return val
	}
	// float64 shows up when the map came from JSON
	if val, ok := d.config[key].(float64); ok {
		return int(val)
	}
	return defaultValue
}

func (d *Database) getConfigDuration(key string, defaultValue time.Duration) time.Duration {
	if val, ok := d.config[key].(string); ok {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	if val, ok := d.config[key].(time.Duration); ok && val > 0 {
		return val
	}
	return defaultValue
}

// IsRetryableError reports lock and connection faults that a caller may choose to retry.
// The record store itself never retries writes.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	retryableErrors := []string{
		"connection refused",
		"connection reset",
		"deadlock detected",
		"too many connections",
		"connection timeout",
		"database is locked",
		"database table is locked",
	}

	for _, retryable := range retryableErrors {
		if strings.Contains(errStr, retryable) {
			return true
		}
	}

	return false
}
