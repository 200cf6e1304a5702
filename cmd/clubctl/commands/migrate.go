package commands

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"clubhouse/internal/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run the SQL migrations embedded in the binary.

Subcommands:
  up      - Apply pending migrations
  auto    - Run GORM AutoMigrate for the persistent models
  status  - Show migration status
  down    - Roll back one migration by version`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		migrator, err := newMigrator(cmd)
		if err != nil {
			return err
		}
		ran, err := migrator.Up(cmd.Context())
		for _, m := range ran {
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", m.ID())
		}
		if err != nil {
			return err
		}
		if len(ran) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		}
		return nil
	},
}

var migrateAutoCmd = &cobra.Command{
	Use:   "auto",
	Short: "Run GORM AutoMigrate",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		cfg.DBSchemaMode = database.SchemaModeAuto
		if err := database.ApplySchema(cmd.Context(), db, cfg); err != nil {
			return fmt.Errorf("auto schema apply failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "automigrations applied")
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		report, err := database.InspectSchema(cmd.Context(), db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), report)
		}

		plan := report.Plan
		fmt.Fprintf(cmd.OutOrStdout(), "mode %s (env %s): sql=%t automigrate=%t, %d pending\n\n",
			plan.Mode, plan.Environment, plan.SQL, plan.AutoMigrate, report.Pending())

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tNAME\tAPPLIED")
		for _, m := range report.Migrations {
			applied := "pending"
			if m.Applied() {
				applied = m.AppliedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%06d\t%s\t%s\n", m.Version, m.Name, applied)
		}
		return w.Flush()
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down <version>",
	Short: "Roll back a migration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		migrator, err := newMigrator(cmd)
		if err != nil {
			return err
		}
		if err := migrator.Down(cmd.Context(), version); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rolled back migration %06d\n", version)
		return nil
	},
}

func newMigrator(cmd *cobra.Command) (*database.Migrator, error) {
	db, err := connect(cmd.Context())
	if err != nil {
		return nil, err
	}
	return database.NewMigrator(db)
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateAutoCmd, migrateStatusCmd, migrateDownCmd)
}
