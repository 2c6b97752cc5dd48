package schema

import "fmt"

// NotFoundError is returned when a table or column is absent from a Schema.
type NotFoundError struct {
	Table  string
	Column string
}

func (e *NotFoundError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("table %q not found", e.Table)
	}
	return fmt.Sprintf("column %q not found in table %q", e.Column, e.Table)
}
