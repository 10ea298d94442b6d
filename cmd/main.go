package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ksred/card-check/internal/config"
	"github.com/ksred/card-check/internal/database"
	"github.com/ksred/card-check/internal/mcp"
	"github.com/ksred/card-check/internal/services"
	"github.com/ksred/card-check/internal/utils"
)

const version = "v1.0.0"

func main() {
	// Parse command line flags
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := loadConfiguration(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Set up logging
	logger := setupLogging(cfg)
	logger.Info().Str("version", version).Msg("Starting card-check MCP server")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Connect to database
	db, err := connectToDatabase(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}()

	// Ensure the record table exists
	store := services.NewGormRecordStore(db.DB(), logger)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to prepare record store")
	}

	verifier := services.NewVerificationService(store, logger, cfg.VerificationSettings())

	// Create and configure MCP server
	mcpServer, err := mcp.NewServer(verifier, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create MCP server")
	}

	// Start MCP server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		logger.Info().Msg("Starting MCP server on stdio")
		if err := mcpServer.Serve(ctx); err != nil {
			serverErrChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErrChan:
		logger.Error().Err(err).Msg("MCP server error")
	}

	logger.Info().Msg("Shutdown complete")
}

// loadConfiguration loads the application configuration
func loadConfiguration(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		// If we can't load config, try with defaults
		cfg = config.NewDefault()

		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setupLogging configures the application logger.
// Stdout carries JSON-RPC, so logs go to a file unless LOG_FILE says otherwise.
func setupLogging(cfg *config.Config) zerolog.Logger {
	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		logFile = filepath.Join(homeDir, ".config", "card-check", "logs", "card-check.log")
	}

	logConfig := utils.LoggerConfig{
		Level:      cfg.Server.LogLevel,
		Pretty:     cfg.Server.Debug,
		CallerInfo: cfg.Server.Debug,
		LogFile:    logFile,
	}

	utils.SetupGlobalLogger(logConfig)

	return utils.NewLogger(logConfig)
}

// connectToDatabase establishes database connection
func connectToDatabase(cfg *config.Config, logger zerolog.Logger) (*database.Database, error) {
	logger.Info().Str("driver", cfg.Database.Driver).Msg("Connecting to database")

	dbConfig := cfg.DatabaseSettings()
	// Keep gorm quiet so nothing interferes with JSON-RPC on stdout
	dbConfig["log_level"] = "silent"

	db := database.NewDatabase(dbConfig)

	if err := db.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	logger.Info().
		Str("driver", db.Driver()).
		Str("path", cfg.Database.Path).
		Msg("Successfully connected to database")

	return db, nil
}
