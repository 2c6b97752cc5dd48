package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schemasync/database"
	"github.com/ridoystarlord/schemasync/generator"
	"github.com/ridoystarlord/schemasync/runner"
)

var (
	dryRunMigrate bool
	migrateSchema string
	migrateFile   string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database in line with the declared schema",
	Long: `Compare the declared schema with the database and apply the difference in one
serializable transaction. With --migration, apply the up section of a file
written by 'schemasync generate' instead.

Examples:
  schemasync migrate
  schemasync migrate --dry-run
  schemasync migrate --migration migrations/20250101120000_migration.sql
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if migrateFile != "" {
			up, down, err := runner.ParseMigrationFile(migrateFile)
			if err != nil {
				return err
			}
			return applyStatements(cmd, up, down)
		}

		return withClient(ctx, func(client database.Client) error {
			p, err := buildPlan(ctx, client, migrateSchema)
			if err != nil {
				return err
			}
			if dryRunMigrate {
				runner.Preview(out, p.Up, p.Down)
				return nil
			}
			if len(p.Up) == 0 {
				fmt.Fprintln(out, "✅ Schema is up to date.")
				return nil
			}

			fmt.Fprintf(out, "Applying %d statement(s)...\n", len(p.Up))
			executed, err := runner.Apply(ctx, client, p.Up)
			if err != nil {
				return fmt.Errorf("migration failed, nothing was committed: %w", err)
			}
			fmt.Fprintf(out, "✅ Applied %d statement(s).\n", len(executed))
			return nil
		})
	},
}

// applyStatements runs statements read from a migration file.
func applyStatements(cmd *cobra.Command, statements, preview []string) error {
	out := cmd.OutOrStdout()
	if err := generator.Check(statements); err != nil {
		return err
	}
	if dryRunMigrate {
		runner.Preview(out, statements, preview)
		return nil
	}
	if len(statements) == 0 {
		fmt.Fprintln(out, "✅ Nothing to apply.")
		return nil
	}

	return withClient(cmd.Context(), func(client database.Client) error {
		executed, err := runner.Apply(cmd.Context(), client, statements)
		if err != nil {
			return fmt.Errorf("nothing was committed: %w", err)
		}
		fmt.Fprintf(out, "✅ Applied %d statement(s).\n", len(executed))
		return nil
	})
}

func init() {
	migrateCmd.Flags().BoolVar(&dryRunMigrate, "dry-run", false, "Preview the SQL that would be executed without applying it")
	migrateCmd.Flags().StringVarP(&migrateSchema, "file", "f", "", "Schema YAML file to load (default: schema.file from config)")
	migrateCmd.Flags().StringVarP(&migrateFile, "migration", "m", "", "Apply the up section of a generated migration file")
}
