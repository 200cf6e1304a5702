package commands

import (
	"fmt"

	"clubhouse/internal/cache"
	"clubhouse/internal/seed"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var (
	seedFile    string
	fakeMembers int
	fakeSeed    int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Reconcile the baseline dataset",
	Long: `Reconcile the baseline users, clubs, events and memberships.

Running it twice is a no-op. Existing passwords are never overwritten.

Examples:
  clubctl seed                          # Apply the embedded baseline
  clubctl seed --file ./baseline.yaml   # Apply a custom baseline
  clubctl seed --fake-members 25        # Also generate 25 demo members`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db, err := connect(ctx)
		if err != nil {
			return err
		}
		// Keep cached club listings consistent with the new rows.
		cache.InitRedis(cfg.RedisURL)

		path := seedFile
		if path == "" {
			path = cfg.SeedFile
		}
		baseline, err := seed.Load(path)
		if err != nil {
			return err
		}

		report, err := seed.Reconcile(ctx, db, baseline)
		if jsonOutput {
			if perr := printJSON(cmd.OutOrStdout(), report); perr != nil {
				return perr
			}
		} else {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "users created=%d updated=%d\n", report.UsersCreated, report.UsersUpdated)
			fmt.Fprintf(out, "clubs created=%d updated=%d renamed=%d removed=%d\n",
				report.ClubsCreated, report.ClubsUpdated, report.ClubsRenamed, report.ClubsRemoved)
			fmt.Fprintf(out, "events created=%d updated=%d\n", report.EventsCreated, report.EventsUpdated)
			fmt.Fprintf(out, "memberships added=%d attendees added=%d\n", report.MembershipsAdded, report.AttendeesAdded)
		}
		if err != nil {
			for _, e := range multierr.Errors(err) {
				fmt.Fprintln(cmd.ErrOrStderr(), "seed error:", e)
			}
			return fmt.Errorf("seed finished with %d errors", len(multierr.Errors(err)))
		}

		if fakeMembers > 0 {
			users, err := seed.NewFactory(db, fakeSeed).CreateMembers(ctx, fakeMembers)
			if err != nil {
				return fmt.Errorf("fake members: %w", err)
			}
			cache.InvalidateClubList(ctx)
			fmt.Fprintf(cmd.OutOrStdout(), "created %d fake members (password %q)\n", len(users), seed.FakePassword)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().StringVar(&seedFile, "file", "", "Baseline YAML file (defaults to SEED_FILE, then the embedded baseline)")
	seedCmd.Flags().IntVar(&fakeMembers, "fake-members", 0, "Number of fake members to generate")
	seedCmd.Flags().Int64Var(&fakeSeed, "fake-seed", 0, "Random seed for fake members (0 uses the clock)")
}
