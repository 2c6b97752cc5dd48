package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schemasync/database"
	"github.com/ridoystarlord/schemasync/generator"
	"github.com/ridoystarlord/schemasync/runner"
)

var (
	generateFile   string
	dryRunGenerate bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateFile, "file", "f", "", "Schema YAML file to load (default: schema.file from config)")
	generateCmd.Flags().BoolVar(&dryRunGenerate, "dry-run", false, "Preview the SQL that would be generated without writing files")
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a migration file for the pending changes",
	Long: `Compare the declared schema with the database and write the statements to a
timestamped file with up and down sections under migrations.dir.

Examples:
  schemasync generate                  # Generate from schema.yaml
  schemasync generate -f custom.yaml   # Generate from a custom YAML file
  schemasync generate --dry-run        # Print instead of writing
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(client database.Client) error {
			p, err := buildPlan(cmd.Context(), client, generateFile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(p.Up) == 0 {
				fmt.Fprintln(out, "✅ No changes detected.")
				return nil
			}

			if dryRunGenerate {
				runner.Preview(out, p.Up, p.Down)
				return nil
			}

			filename, err := generator.WriteMigrationFile(cfg.Migrations.Dir, p.Up, p.Down)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "✅ Migration generated:", filename)
			return nil
		})
	},
}
