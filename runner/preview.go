package runner

import (
	"fmt"
	"io"
)

// Preview writes the statements a migration would run without running them.
func Preview(w io.Writer, up, down []string) {
	if len(up) == 0 {
		fmt.Fprintln(w, "✅ Schema is up to date. Nothing to apply.")
		return
	}

	fmt.Fprintln(w, "\n================ DRY RUN: Migration Preview ================")
	fmt.Fprintln(w, "-- Up Migration SQL --")
	for _, stmt := range up {
		fmt.Fprintln(w, stmt)
	}
	fmt.Fprintln(w, "\n-- Down Migration (Rollback) SQL --")
	for _, stmt := range down {
		fmt.Fprintln(w, stmt)
	}
	fmt.Fprintln(w, "============================================================")
	fmt.Fprintln(w, "(Dry run only. No statements were executed.)")
}
