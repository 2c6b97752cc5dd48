package runner

import (
	"fmt"
	"os"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

const (
	upMarker   = "-- Up Migration"
	downMarker = "-- Down Migration (Rollback)"
)

// ParseMigrationFile reads a generated migration file and returns the
// statements of its up and down sections.
func ParseMigrationFile(path string) (up, down []string, err error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read file %s: %w", path, err)
	}

	upSection, downSection, ok := strings.Cut(string(content), downMarker)
	if !ok {
		return nil, nil, fmt.Errorf("migration file %s does not contain rollback section", path)
	}
	_, upSection, ok = strings.Cut(upSection, upMarker)
	if !ok {
		return nil, nil, fmt.Errorf("migration file %s does not contain up migration section", path)
	}

	if up, err = split(upSection); err != nil {
		return nil, nil, fmt.Errorf("up section of %s: %w", path, err)
	}
	if down, err = split(downSection); err != nil {
		return nil, nil, fmt.Errorf("down section of %s: %w", path, err)
	}
	return up, down, nil
}

// split breaks a section into statements, dropping comment-only lines.
func split(section string) ([]string, error) {
	var lines []string
	for _, line := range strings.Split(section, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	stmts, err := pg_query.SplitWithParser(strings.Join(lines, "\n"), true)
	if err != nil {
		return nil, err
	}

	var out []string
	for _, stmt := range stmts {
		if stmt = strings.TrimSpace(stmt); stmt == "" {
			continue
		}
		if !strings.HasSuffix(stmt, ";") {
			stmt += ";"
		}
		out = append(out, stmt)
	}
	return out, nil
}
