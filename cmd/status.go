package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schemasync/database"
	"github.com/ridoystarlord/schemasync/migration"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pending operations per phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(client database.Client) error {
			p, err := buildPlan(cmd.Context(), client, "")
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "📊 Database schema %q: %d table(s) declared, %d in database\n",
				cfg.Schema.Name, len(p.Desired.Tables()), len(p.Current.Tables()))

			if p.Migration.Empty() {
				fmt.Fprintln(out, "✅ Database is up to date.")
				return nil
			}

			fmt.Fprintln(out, "\n🕒 Pending operations:")
			for _, phase := range migration.Phases {
				if n := len(p.Migration.Bucket(phase)); n > 0 {
					fmt.Fprintf(out, "   - %-20s %d\n", phase, n)
				}
			}
			fmt.Fprintf(out, "\n%d statement(s) would be executed. Run 'schemasync migrate' to apply.\n", len(p.Up))
			return nil
		})
	},
}
