package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ksred/card-check/internal/api"
	"github.com/ksred/card-check/internal/config"
	"github.com/ksred/card-check/internal/database"
	"github.com/ksred/card-check/internal/services"
	"github.com/ksred/card-check/internal/utils"

	// Import swagger docs
	_ "github.com/ksred/card-check/docs"
)

// @title Card Check API
// @version 1.0
// @description Payment card field verifier with an append-only verification log

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8083
// @BasePath /api/v1

func main() {
	var (
		configPath     string
		skipMigrations bool
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.BoolVar(&skipMigrations, "skip-migrations", false, "Skip ensuring the record schema at startup")
	flag.Parse()

	cfg, err := loadConfiguration(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := setupLogging(cfg)
	logger.Info().
		Str("version", "1.0.0").
		Int("port", cfg.HTTP.Port).
		Str("cvv_retention", cfg.Verification.CVVRetention).
		Str("card_retention", cfg.Verification.CardRetention).
		Msg("Starting card-check HTTP server")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	db, err := connectToDatabase(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}()

	store := services.NewGormRecordStore(db.DB(), logger)
	if !skipMigrations {
		logger.Info().Msg("Ensuring record schema...")
		if err := store.EnsureSchema(context.Background()); err != nil {
			logger.Fatal().Err(err).Msg("Failed to prepare record store")
		}
	} else {
		logger.Warn().Msg("Skipping schema migrations as requested")
	}

	verifier := services.NewVerificationService(store, logger, cfg.VerificationSettings())

	server, err := api.NewServer(cfg, db, verifier, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create HTTP server")
	}

	serverErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.HTTP.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErrChan:
		logger.Error().Err(err).Msg("HTTP server error")
	}

	logger.Info().Msg("Starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to gracefully shutdown HTTP server")
	}

	logger.Info().Msg("Shutdown complete")
}

// loadConfiguration loads configuration from file or environment
func loadConfiguration(configPath string) (*config.Config, error) {
	// LoadConfigOrDefault still honours environment variables when the file is missing
	cfg := config.LoadConfigOrDefault(configPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setupLogging logs to stderr unless LOG_FILE is set
func setupLogging(cfg *config.Config) zerolog.Logger {
	logConfig := utils.LoggerConfig{
		Level:      cfg.Server.LogLevel,
		Pretty:     cfg.Server.Debug,
		CallerInfo: cfg.Server.Debug,
		LogFile:    os.Getenv("LOG_FILE"),
	}

	utils.SetupGlobalLogger(logConfig)

	return utils.NewLogger(logConfig)
}

// connectToDatabase establishes database connection with retry logic
func connectToDatabase(cfg *config.Config, logger zerolog.Logger) (*database.Database, error) {
	logger.Info().Str("driver", cfg.Database.Driver).Msg("Connecting to database")

	db := database.NewDatabase(cfg.DatabaseSettings())

	if err := db.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	logger.Info().Msg("Database connection established")
	return db, nil
}
