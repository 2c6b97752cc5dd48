package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schemasync/database"
	"github.com/ridoystarlord/schemasync/introspect"
	"github.com/ridoystarlord/schemasync/loader"
)

var inspectOutput string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the database schema as a YAML declaration",
	Long: `Introspect the database and print its tables as a declaration that
'schemasync diff' reports as up to date.

Examples:
  schemasync inspect
  schemasync inspect -o schema.yaml
  schemasync inspect --schema-name tenant_1
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(client database.Client) error {
			s, err := introspect.FromDatabase(cmd.Context(), client, cfg.Schema.Name, cfg.SchemaOptions()...)
			if err != nil {
				return err
			}

			data, err := loader.DumpYAML(s.Definition())
			if err != nil {
				return err
			}

			if inspectOutput == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(inspectOutput, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", inspectOutput, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %d table(s) to %s\n", len(s.Tables()), inspectOutput)
			return nil
		})
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectOutput, "output", "o", "", "Write to a file instead of stdout")
}
