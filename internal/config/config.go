package config

import (
	"fmt"
	"net/url"
	"time"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Retention policies for sensitive columns
const (
	RetentionPlaintext = "plaintext"
	RetentionRedact    = "redact"
	RetentionDigits    = "digits"
	RetentionMasked    = "masked"
)

// Config represents the main application configuration
type Config struct {
	Database     Database     `json:"database" mapstructure:"database"`
	Server       Server       `json:"server" mapstructure:"server"`
	HTTP         HTTP         `json:"http" mapstructure:"http"`
	Verification Verification `json:"verification" mapstructure:"verification"`
}

// Database represents record store configuration
type Database struct {
	Driver          string        `json:"driver" mapstructure:"driver"`
	Path            string        `json:"path" mapstructure:"path"`
	Host            string        `json:"host" mapstructure:"host"`
	Port            int           `json:"port" mapstructure:"port"`
	User            string        `json:"user" mapstructure:"user"`
	Password        string        `json:"password" mapstructure:"password"`
	DBName          string        `json:"dbname" mapstructure:"dbname"`
	SSLMode         string        `json:"sslmode" mapstructure:"sslmode"`
	MaxConnections  int           `json:"max_connections" mapstructure:"max_connections"`
	MaxIdleConns    int           `json:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime" mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time" mapstructure:"conn_max_idle_time"`
	LogLevel        string        `json:"log_level" mapstructure:"log_level"`
}

// Server represents process-wide settings
type Server struct {
	LogLevel string `json:"log_level" mapstructure:"log_level"`
	Debug    bool   `json:"debug" mapstructure:"debug"`
}

// HTTP represents web shell configuration
type HTTP struct {
	Port         int      `json:"port" mapstructure:"port"`
	AllowOrigins []string `json:"allow_origins" mapstructure:"allow_origins"`
}

// Verification holds the retention policy for what gets written to the record store.
// Plaintext matches what earlier releases wrote and stays the default.
type Verification struct {
	CVVRetention  string `json:"cvv_retention" mapstructure:"cvv_retention"`
	CardRetention string `json:"card_retention" mapstructure:"card_retention"`
}

// NewDefault returns a Config instance with default values
func NewDefault() *Config {
	return &Config{
		Database: Database{
			Driver:          DriverSQLite,
			Path:            "cards.db",
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "card_check",
			SSLMode:         "disable",
			MaxConnections:  10,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 10 * time.Minute,
			LogLevel:        "silent",
		},
		Server: Server{
			LogLevel: "info",
			Debug:    false,
		},
		HTTP: HTTP{
			Port:         8083,
			AllowOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Verification: Verification{
			CVVRetention:  RetentionPlaintext,
			CardRetention: RetentionDigits,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("database port must be between 1 and 65535")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	if c.Database.MaxConnections <= 0 {
		return fmt.Errorf("max connections must be greater than 0")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("max idle connections cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxConnections {
		return fmt.Errorf("max idle connections cannot exceed max connections")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}
	if !validLogLevels[c.Server.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP port must be between 1 and 65535")
	}

	switch c.Verification.CVVRetention {
	case RetentionPlaintext, RetentionRedact:
	default:
		return fmt.Errorf("invalid cvv retention policy: %s", c.Verification.CVVRetention)
	}
	switch c.Verification.CardRetention {
	case RetentionDigits, RetentionMasked:
	default:
		return fmt.Errorf("invalid card retention policy: %s", c.Verification.CardRetention)
	}

	return nil
}

// DatabaseURL constructs a PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	params := url.Values{}
	params.Set("sslmode", c.Database.SSLMode)

	var userInfo *url.Userinfo
	if c.Database.Password == "" {
		userInfo = url.User(c.Database.User)
	} else {
		userInfo = url.UserPassword(c.Database.User, c.Database.Password)
	}

	u := &url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", c.Database.Host, c.Database.Port),
		Path:     c.Database.DBName,
		RawQuery: params.Encode(),
	}

	return u.String()
}

// DatabaseSettings flattens the database section into the map consumed by database.NewDatabase
func (c *Config) DatabaseSettings() map[string]interface{} {
	return map[string]interface{}{
		"driver":             c.Database.Driver,
		"path":               c.Database.Path,
		"host":               c.Database.Host,
		"port":               c.Database.Port,
		"user":               c.Database.User,
		"password":           c.Database.Password,
		"dbname":             c.Database.DBName,
		"sslmode":            c.Database.SSLMode,
		"max_open_conns":     c.Database.MaxConnections,
		"max_idle_conns":     c.Database.MaxIdleConns,
		"conn_max_lifetime":  c.Database.ConnMaxLifetime,
		"conn_max_idle_time": c.Database.ConnMaxIdleTime,
		"log_level":          c.Database.LogLevel,
	}
}

// VerificationSettings flattens the verification section into the map consumed by services.NewVerificationService
func (c *Config) VerificationSettings() map[string]interface{} {
	return map[string]interface{}{
		"cvv_retention":  c.Verification.CVVRetention,
		"card_retention": c.Verification.CardRetention,
	}
}
