package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schemasync/database"
	"github.com/ridoystarlord/schemasync/migration"
	"github.com/ridoystarlord/schemasync/quote"
	"github.com/ridoystarlord/schemasync/schema"
)

var (
	diffVisual bool
	diffSQL    bool
	diffFile   string
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Show differences between schema and database",
	Long: `Show differences between your declared schema and the current database.

Examples:
  schemasync diff                    # Show operations in text format
  schemasync diff --visual           # Show differences in tree format with colors
  schemasync diff --sql              # Show the statements migrate would run
  schemasync diff -f custom.yaml     # Use custom schema file
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(client database.Client) error {
			p, err := buildPlan(cmd.Context(), client, diffFile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if p.Migration.Empty() {
				fmt.Fprintln(out, "✅ No differences found between schema and database")
				return nil
			}

			switch {
			case diffSQL:
				for _, stmt := range p.Up {
					fmt.Fprintln(out, stmt)
				}
			case diffVisual:
				showVisualDiff(out, p.Migration)
			default:
				showTextDiff(out, p.Migration)
			}
			return nil
		})
	},
}

func showTextDiff(w io.Writer, m *migration.Migration) {
	fmt.Fprintln(w, "📋 Schema Changes (Text Format)")
	fmt.Fprintln(w, strings.Repeat("=", 40))

	for i, op := range m.Operations() {
		fmt.Fprintf(w, "%d. [%s] %s", i+1, op.Key(), op.Name)
		if summary := describeChanges(op); summary != "" {
			fmt.Fprintf(w, " (%s)", summary)
		}
		fmt.Fprintln(w)
	}
}

func showVisualDiff(w io.Writer, m *migration.Migration) {
	green := color.New(color.FgGreen, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	blue := color.New(color.FgBlue, color.Bold)
	cyan := color.New(color.FgCyan)

	fmt.Fprintln(w, "🌳 Schema Changes (Visual Diff)")
	fmt.Fprintln(w, strings.Repeat("=", 50))

	var tables []string
	byTable := map[string][]migration.Operation{}
	for _, op := range m.Operations() {
		table := op.Table()
		if _, ok := byTable[table]; !ok {
			tables = append(tables, table)
		}
		byTable[table] = append(byTable[table], op)
	}

	for _, table := range tables {
		fmt.Fprintln(w)
		header := yellow
		verb := "⚡ MODIFY"
		for _, op := range byTable[table] {
			if op.Target != migration.Tables {
				continue
			}
			if op.Type == migration.Create {
				header, verb = green, "➕ CREATE"
			} else {
				header, verb = red, "❌ DROP"
			}
		}
		header.Fprintf(w, "📋 %s %s\n", verb, table)

		for _, op := range byTable[table] {
			if op.Target == migration.Tables {
				continue
			}
			switch op.Type {
			case migration.Create:
				green.Fprintf(w, "    ➕ ADD %s (%s)\n", op.Column(), describeChanges(op))
			case migration.Drop:
				red.Fprintf(w, "    ❌ DROP %s\n", op.Column())
			case migration.Alter:
				blue.Fprintf(w, "    🔄 MODIFY %s:\n", op.Column())
				if op.Changes == nil {
					continue
				}
				for _, key := range op.Changes.To.Keys() {
					cyan.Fprintf(w, "      %s: %s → %s\n", key,
						attributeText(op.Changes.From, key), attributeText(op.Changes.To, key))
				}
			}
		}
	}
}

// describeChanges summarises the target definition of an operation.
func describeChanges(op migration.Operation) string {
	if op.Changes == nil {
		return ""
	}
	switch op.Type {
	case migration.Create:
		to := op.Changes.To
		parts := []string{to.SQLType()}
		if op.After != nil {
			parts[0] = op.After.SQLType()
		}
		if to.Has(schema.AttrNullable) && !to.Bool(schema.AttrNullable) {
			parts = append(parts, "NOT NULL")
		}
		if v := to[schema.AttrDefault]; v != nil {
			parts = append(parts, "DEFAULT "+quote.Literal(v))
		}
		if to.Bool(schema.AttrPrimary) {
			parts = append(parts, "PRIMARY KEY")
		}
		if to.Bool(schema.AttrUnique) {
			parts = append(parts, "UNIQUE")
		}
		if ref := to.String(schema.AttrReferences); ref != "" {
			parts = append(parts, "→ "+ref)
		}
		return strings.Join(parts, " ")
	case migration.Alter:
		var parts []string
		for _, key := range op.Changes.To.Keys() {
			parts = append(parts, fmt.Sprintf("%s: %s → %s", key,
				attributeText(op.Changes.From, key), attributeText(op.Changes.To, key)))
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func attributeText(attrs schema.Attributes, key schema.Attribute) string {
	if !attrs.Has(key) {
		return "?"
	}
	v := attrs[key]
	if v == nil {
		return "none"
	}
	if key == schema.AttrDefault {
		return quote.Literal(v)
	}
	return fmt.Sprint(v)
}

func init() {
	diffCmd.Flags().BoolVarP(&diffVisual, "visual", "v", false, "Show changes in visual tree format")
	diffCmd.Flags().BoolVar(&diffSQL, "sql", false, "Print the SQL statements instead of operations")
	diffCmd.Flags().StringVarP(&diffFile, "file", "f", "", "Schema file to use (default: schema.file from config)")
}
