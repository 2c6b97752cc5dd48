package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FormatMigration renders up and down statements as a migration file body.
func FormatMigration(version string, up, down []string) string {
	var b strings.Builder
	b.WriteString("-- Migration: " + version + "\n")
	b.WriteString("-- Description: Auto-generated migration\n\n")

	b.WriteString("-- Up Migration\n")
	b.WriteString("-- ============\n")
	for _, stmt := range up {
		b.WriteString(stmt + "\n")
	}

	b.WriteString("\n-- Down Migration (Rollback)\n")
	b.WriteString("-- =======================\n")
	for _, stmt := range down {
		b.WriteString(stmt + "\n")
	}
	return b.String()
}

// WriteMigrationFile saves the statements into a timestamped .sql file under
// dir with up/down sections and returns its path.
func WriteMigrationFile(dir string, up, down []string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating migrations folder: %w", err)
	}

	version := time.Now().Format("20060102150405")
	filename := filepath.Join(dir, version+"_migration.sql")

	if err := os.WriteFile(filename, []byte(FormatMigration(version, up, down)), 0o644); err != nil {
		return "", fmt.Errorf("writing migration file: %w", err)
	}
	return filename, nil
}
