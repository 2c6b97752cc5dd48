package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schemasync/config"
)

var initStructs bool

const exampleSchema = `# Each table maps column names to a type, or to a mapping of attributes:
#   type, length, primary, unique, nullable, references, default.
# Use !expr for defaults that are SQL expressions.
users:
  id: { type: varchar(36), primary: true }
  email: { type: text, unique: true, nullable: false }
  name: text
  created_at: { type: timestamptz, default: !expr now() }

posts:
  id: { type: varchar(36), primary: true }
  title: { type: text, nullable: false, default: "Hello, World!" }
  body: text
  published: { type: boolean, default: false }
  author: { type: varchar(36), references: users }
`

const exampleModels = `package models

import "time"

// Tagged fields become columns; structs become plural snake_case tables.
// Tag keys: column, type, length, default, default_expr, fk; flags: primary, unique, not_null.

type User struct {
	ID        string    ` + "`schemasync:\"type:varchar(36);primary\"`" + `
	Email     string    ` + "`schemasync:\"unique;not_null\"`" + `
	Name      string    ` + "`schemasync:\"\"`" + `
	CreatedAt time.Time ` + "`schemasync:\"default_expr:now()\"`" + `
}

type Post struct {
	ID        string ` + "`schemasync:\"type:varchar(36);primary\"`" + `
	Title     string ` + "`schemasync:\"not_null;default:Hello, World!\"`" + `
	Body      string ` + "`schemasync:\"\"`" + `
	Published bool   ` + "`schemasync:\"not_null\"`" + `
	Author    string ` + "`schemasync:\"type:varchar(36);fk:users\"`" + `
}
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new schemasync project",
	Long: `Write schemasync.yaml and an example schema declaration.

Examples:
  schemasync init              # schema.yaml declaration
  schemasync init --structs    # Go structs in models/ instead`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		configContent := config.Template
		if initStructs {
			configContent = strings.Replace(configContent, `models_dir: ""`, "models_dir: models", 1)
		}
		if err := writeNew(config.FileNames[0], configContent); err != nil {
			return err
		}
		fmt.Fprintln(out, "✅ Created", config.FileNames[0])

		path, content := cfg.Schema.File, exampleSchema
		if initStructs {
			path, content = filepath.Join("models", "models.go"), exampleModels
		}
		if err := writeNew(path, content); err != nil {
			return err
		}
		fmt.Fprintln(out, "✅ Created", path)

		fmt.Fprintln(out, "📝 Edit the declaration, set DATABASE_URL, then run 'schemasync diff'")
		return nil
	},
}

// writeNew creates path with content and refuses to overwrite it.
func writeNew(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func init() {
	initCmd.Flags().BoolVar(&initStructs, "structs", false, "Declare the schema with Go structs instead of YAML")
}
