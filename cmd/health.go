package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schemasync/database"
	"github.com/ridoystarlord/schemasync/introspect"
)

var healthTimeout time.Duration

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database connectivity",
	Long: `Check if the database is accessible and responsive.

Examples:
  schemasync health                    # Check default database connection
  schemasync health --timeout 10s      # Set custom timeout
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
		defer cancel()

		err := withClient(ctx, func(client database.Client) error {
			return checkDatabaseHealth(ctx, client, cmd)
		})
		if err != nil {
			return fmt.Errorf("database health check failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Database is healthy and accessible")
		return nil
	},
}

func checkDatabaseHealth(ctx context.Context, client database.Client, cmd *cobra.Command) error {
	rows, err := client.Query(ctx, "SELECT version() AS version, current_database() AS database")
	if err != nil {
		return err
	}
	if len(rows) == 1 {
		fmt.Fprintf(cmd.OutOrStdout(), "🐘 %s\n", rows[0].String("version"))
		fmt.Fprintf(cmd.OutOrStdout(), "📦 Database: %s\n", rows[0].String("database"))
	}

	def, err := introspect.Inspect(ctx, client, cfg.Schema.Name)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "📊 Found %d table(s) in schema %q\n", len(def.Tables), cfg.Schema.Name)
	return nil
}

func init() {
	healthCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", 5*time.Second, "Timeout for health check")
}
