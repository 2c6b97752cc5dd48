package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schemasync/database"
	"github.com/ridoystarlord/schemasync/introspect"
	"github.com/ridoystarlord/schemasync/validator"
)

var (
	validateSchemaFile string
	validateFormat     string
	validateOnline     bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the schema declaration",
	Long: `Validate your schema declaration against PostgreSQL rules and best practices.

This command checks:
- Table and column naming (length, reserved keywords, quoting)
- Data types and lengths
- Primary keys (missing, more than one, nullable)
- Foreign key references (declared table with a primary key)
- Default value compatibility
- Generated constraint name length
- Database state (with --db): tables that will be created or dropped

Examples:
  schemasync validate                      # Validate schema.yaml (offline)
  schemasync validate --schema custom.yaml # Validate custom schema file
  schemasync validate --format json        # Output validation results as JSON
  schemasync validate --db                 # Also compare with the database
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := loadDeclaration(validateSchemaFile)
		if err != nil {
			return fmt.Errorf("failed to load schema: %w", err)
		}

		opts := []validator.Option{validator.WithTypeAliases(cfg.Aliases())}
		if validateOnline {
			err := withClient(cmd.Context(), func(client database.Client) error {
				current, err := introspect.FromDatabase(cmd.Context(), client, cfg.Schema.Name, cfg.SchemaOptions()...)
				if err != nil {
					return err
				}
				opts = append(opts, validator.WithDatabase(current))
				return nil
			})
			if err != nil {
				return err
			}
		}

		result := validator.Validate(def, opts...)

		out := cmd.OutOrStdout()
		if validateFormat == "json" {
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(result); err != nil {
				return err
			}
		} else {
			outputText(out, result)
		}

		if !result.Valid {
			return fmt.Errorf("schema validation failed with %d error(s)", len(result.Errors))
		}
		return nil
	},
}

func outputText(w io.Writer, result *validator.ValidationResult) {
	if result.Valid {
		color.New(color.FgGreen).Fprintln(w, "✅ Schema validation passed!")
	} else {
		color.New(color.FgRed).Fprintln(w, "❌ Schema validation failed!")
	}

	printFindings(w, "🔴 Errors", result.Errors)
	printFindings(w, "🟡 Warnings", result.Warnings)
	printFindings(w, "🔵 Info", result.Info)

	fmt.Fprintf(w, "\n📊 Summary:\n")
	fmt.Fprintf(w, "  • Errors: %d\n", len(result.Errors))
	fmt.Fprintf(w, "  • Warnings: %d\n", len(result.Warnings))
	fmt.Fprintf(w, "  • Info: %d\n", len(result.Info))

	if result.Valid {
		fmt.Fprintf(w, "\n🎉 Your schema is valid and ready to migrate!\n")
	} else {
		fmt.Fprintf(w, "\n💡 Fix the errors above before migrating.\n")
	}
}

func printFindings(w io.Writer, title string, findings []validator.ValidationError) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s (%d):\n", title, len(findings))
	for i, f := range findings {
		fmt.Fprintf(w, "  %d. ", i+1)
		if f.Table != "" {
			fmt.Fprintf(w, "[%s]", f.Table)
		}
		if f.Column != "" {
			fmt.Fprintf(w, ".%s", f.Column)
		}
		fmt.Fprintf(w, ": %s\n", f.Message)
	}
}

func init() {
	validateCmd.Flags().StringVarP(&validateSchemaFile, "schema", "s", "", "Schema file to validate (default: schema.file from config)")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
	validateCmd.Flags().BoolVar(&validateOnline, "db", false, "Also compare against the database")
}
