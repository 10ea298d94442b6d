package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")
	v.SetConfigName("config")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/card-check")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".card-check"))
		}
	}

	// Defaults are overridden by the config file and then by env vars
	setDefaults(v)

	v.SetEnvPrefix("CARD_CHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		if err := parseDatabaseURL(v, dbURL); err != nil {
			return nil, fmt.Errorf("invalid DATABASE_URL: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults mirrors NewDefault so every key is known to viper's env lookup
func setDefaults(v *viper.Viper) {
	d := NewDefault()

	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", d.Database.DBName)
	v.SetDefault("database.sslmode", d.Database.SSLMode)
	v.SetDefault("database.max_connections", d.Database.MaxConnections)
	v.SetDefault("database.max_idle_conns", d.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("database.log_level", d.Database.LogLevel)

	v.SetDefault("server.log_level", d.Server.LogLevel)
	v.SetDefault("server.debug", d.Server.Debug)

	v.SetDefault("http.port", d.HTTP.Port)
	v.SetDefault("http.allow_origins", d.HTTP.AllowOrigins)

	v.SetDefault("verification.cvv_retention", d.Verification.CVVRetention)
	v.SetDefault("verification.card_retention", d.Verification.CardRetention)
}

// bindEnvVars binds the short environment variable names
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("server.log_level", "LOG_LEVEL", "CARD_CHECK_SERVER_LOG_LEVEL")
	_ = v.BindEnv("server.debug", "DEBUG", "CARD_CHECK_SERVER_DEBUG")
	_ = v.BindEnv("database.path", "CARD_CHECK_DB_PATH", "CARD_CHECK_DATABASE_PATH")
	_ = v.BindEnv("http.port", "CARD_CHECK_HTTP_PORT")
}

// parseDatabaseURL switches the store to postgres and copies the URL parts into viper
func parseDatabaseURL(v *viper.Viper, dbURL string) error {
	u, err := url.Parse(dbURL)
	if err != nil {
		return err
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("URL must start with postgres:// or postgresql://")
	}
	if u.User == nil || u.Host == "" {
		return fmt.Errorf("invalid URL format")
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return fmt.Errorf("database name not found in URL")
	}

	v.Set("database.driver", DriverPostgres)
	v.Set("database.user", u.User.Username())
	if password, ok := u.User.Password(); ok {
		v.Set("database.password", password)
	}
	v.Set("database.host", u.Hostname())
	if port := u.Port(); port != "" {
		v.Set("database.port", port)
	}
	v.Set("database.dbname", dbName)
	if sslmode := u.Query().Get("sslmode"); sslmode != "" {
		v.Set("database.sslmode", sslmode)
	}

	return nil
}

// LoadConfigOrDefault loads configuration or returns default if loading fails
func LoadConfigOrDefault(configPath string) *Config {
	config, err := LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load config: %v. Using defaults.\n", err)
		return NewDefault()
	}
	return config
}
