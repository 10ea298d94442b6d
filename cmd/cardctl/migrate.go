package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksred/card-check/internal/database"
	"github.com/ksred/card-check/internal/database/migrations"
)

type migrateOptions struct {
	status bool
}

// migrationState is one row of `cardctl migrate --status`
type migrationState struct {
	Version   string `json:"version" yaml:"version"`
	Name      string `json:"name" yaml:"name"`
	State     string `json:"state" yaml:"state"`
	AppliedAt string `json:"applied_at,omitempty" yaml:"applied_at,omitempty"`
}

func newMigrateCmd(root *rootOptions) *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the verification record table",
		Long: `migrate applies pending schema migrations. It is safe to run repeatedly:
applied migrations are skipped and columns that already exist are left alone.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.status {
				return runMigrateStatus(cmd, root)
			}
			return runMigrate(cmd, root)
		},
	}

	cmd.Flags().BoolVar(&opts.status, "status", false, "Show applied and pending migrations without changing anything")

	return cmd
}

func runMigrate(cmd *cobra.Command, root *rootOptions) error {
	rt, err := root.open(cmd, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, root *rootOptions) error {
	format, err := parseOutputFormat(root.outputFmt)
	if err != nil {
		return err
	}

	rt, err := root.open(cmd, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	runner := database.NewMigrationRunner(rt.db.DB(), rt.logger)
	for _, m := range migrations.GetMigrations() {
		runner.Register(m)
	}

	ctx := commandContext(cmd)
	applied, err := runner.Applied(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}
	pending, err := runner.GetPendingMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	states := make([]migrationState, 0, len(applied)+len(pending))
	for _, m := range applied {
		states = append(states, migrationState{Version: m.Version, Name: m.Name, State: "applied", AppliedAt: m.AppliedAtDisplay()})
	}
	for _, m := range pending {
		states = append(states, migrationState{Version: m.Version, Name: m.Name, State: "pending"})
	}

	rows := make([][]string, 0, len(states))
	for _, st := range states {
		appliedAt := st.AppliedAt
		if appliedAt == "" {
			appliedAt = "-"
		}
		rows = append(rows, []string{st.Version, st.Name, st.State, appliedAt})
	}

	if err := printOutput(cmd.OutOrStdout(), format, states, []string{"Version", "Name", "State", "Applied At"}, rows); err != nil {
		return err
	}
	if format == outputTable && len(pending) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No pending migrations")
	}
	return nil
}
