package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ksred/card-check/internal/config"
	"github.com/ksred/card-check/internal/database"
	"github.com/ksred/card-check/internal/services"
	"github.com/ksred/card-check/internal/utils"
)

// rootOptions holds the persistent flags shared by every subcommand
type rootOptions struct {
	configPath string
	dbPath     string
	outputFmt  string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "cardctl",
		Short: "Verify payment card fields and inspect the verification log",
		Long: `cardctl checks a card number (Luhn, 13 to 19 digits), an MM/YY expiry date
and a CVV, and appends every complete attempt to the verification log.

The log lives in a sqlite file (cards.db by default) or a postgres database,
as set in config.yaml or CARD_CHECK_* environment variables.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db-path", "", "sqlite file to use instead of the configured database")
	cmd.PersistentFlags().StringVarP(&opts.outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output to stderr")

	cmd.AddCommand(newVerifyCmd(opts))
	cmd.AddCommand(newListCmd(opts))
	cmd.AddCommand(newMigrateCmd(opts))

	return cmd
}

// runtime is the wiring a subcommand needs: an open database, the store and the verifier
type runtime struct {
	cfg      *config.Config
	db       *database.Database
	store    *services.GormRecordStore
	verifier *services.VerificationService
	logger   zerolog.Logger
}

func (o *rootOptions) logger(cmd *cobra.Command) zerolog.Logger {
	cfg := utils.DefaultConfig()
	cfg.Level = "warn"
	cfg.Pretty = true
	if o.verbose {
		cfg = utils.DevelopmentConfig()
	}
	cfg.Output = cmd.ErrOrStderr()
	return utils.NewLogger(cfg)
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadConfig(o.configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.LoadConfigOrDefault("")
	}

	if o.dbPath != "" {
		cfg.Database.Driver = config.DriverSQLite
		cfg.Database.Path = o.dbPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// open connects to the configured database. ensureSchema runs the record migrations first.
func (o *rootOptions) open(cmd *cobra.Command, ensureSchema bool) (*runtime, error) {
	logger := o.logger(cmd)

	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver == config.DriverSQLite && !ensureSchema {
		if _, err := os.Stat(cfg.Database.Path); os.IsNotExist(err) {
			return nil, fmt.Errorf("database file %s does not exist", cfg.Database.Path)
		}
	}

	db := database.NewDatabase(cfg.DatabaseSettings())
	if err := db.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := services.NewGormRecordStore(db.DB(), logger)
	if ensureSchema {
		if err := store.EnsureSchema(commandContext(cmd)); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &runtime{
		cfg:      cfg,
		db:       db,
		store:    store,
		verifier: services.NewVerificationService(store, logger, cfg.VerificationSettings()),
		logger:   logger,
	}, nil
}

func (r *runtime) Close() {
	if err := r.db.Close(); err != nil {
		r.logger.Error().Err(err).Msg("Failed to close database connection")
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
