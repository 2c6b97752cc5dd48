package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schemasync/runner"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback <migration-file>",
	Short: "Apply the down section of a generated migration file",
	Long: `Apply the rollback statements of a file written by 'schemasync generate'.

Examples:
  schemasync rollback migrations/20250101120000_migration.sql
  schemasync rollback migrations/20250101120000_migration.sql --dry-run
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		up, down, err := runner.ParseMigrationFile(args[0])
		if err != nil {
			return err
		}
		return applyStatements(cmd, down, up)
	},
}

func init() {
	rollbackCmd.Flags().BoolVar(&dryRunMigrate, "dry-run", false, "Preview the SQL that would be executed without applying it")
}
