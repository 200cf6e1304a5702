package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"clubhouse/internal/config"
	"clubhouse/internal/database"
	"clubhouse/internal/middleware"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	// Global flags
	jsonOutput bool
	verbose    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "clubhouse-ctl",
	Short: "Operator tooling for the clubhouse API",
	Long: `clubctl manages a clubhouse deployment from the command line.

Configuration is read the same way as the server: config.yml, the
config.<APP_ENV>.yml profile and environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		if !verbose {
			middleware.InitLogger("production", io.Discard)
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show application logs")
}

// connect opens the database without touching the schema.
func connect(ctx context.Context) (*gorm.DB, error) {
	db, err := database.ConnectWithOptions(ctx, cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
