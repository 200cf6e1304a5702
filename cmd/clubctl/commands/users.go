package commands

import (
	"fmt"
	"text/tabwriter"

	"clubhouse/internal/cache"
	"clubhouse/internal/models"
	"clubhouse/internal/repository"
	"clubhouse/internal/service"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect and administer users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		users, err := service.NewUserService(repository.NewUserRepository(db)).ListUsers(cmd.Context(), service.SystemActor)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), users)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE")
		for _, u := range users {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.Role)
		}
		return w.Flush()
	},
}

func roleCommand(use, short string, role models.Role) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := connect(ctx)
			if err != nil {
				return err
			}
			// Drop the cached user so running servers see the new role.
			cache.InitRedis(cfg.RedisURL)

			repo := repository.NewUserRepository(db)
			user, err := repo.GetByUsername(ctx, args[0])
			if err != nil {
				return err
			}
			if user == nil {
				return models.NewNotFoundError("User", args[0])
			}

			updated, err := service.NewUserService(repo).SetRole(ctx, service.SystemActor, user.ID, role)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", updated.Username, updated.Role)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(
		usersListCmd,
		roleCommand("promote", "Grant the admin role", models.RoleAdmin),
		roleCommand("demote", "Revoke the admin role", models.RoleMember),
	)
}
