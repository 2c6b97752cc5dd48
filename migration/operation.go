package migration

import (
	"strings"

	"github.com/ridoystarlord/schemasync/schema"
)

// Target is the kind of object an operation acts on.
type Target string

const (
	Tables      Target = "tables"
	Columns     Target = "columns"
	Constraints Target = "constraints"
	ForeignKeys Target = "foreignkeys"
)

// Type is the action an operation performs.
type Type string

const (
	Create Type = "create"
	Drop   Type = "drop"
	Alter  Type = "alter"
)

// Changes holds the attributes of a column before and after an operation.
// Only attributes that differ are present.
type Changes struct {
	From schema.Attributes
	To   schema.Attributes
}

// Operation is a single structural change.
type Operation struct {
	Target Target
	Type   Type
	// Name is "table" for table operations and "table.column" otherwise.
	Name    string
	Changes *Changes

	// Before and After are the full canonical definitions of the column on
	// each side, nil where the column does not exist.
	Before *schema.ColumnDefinition
	After  *schema.ColumnDefinition
}

// Key returns the bucket key "{type}.{target}".
func (o Operation) Key() string {
	return string(o.Type) + "." + string(o.Target)
}

// Table returns the table part of Name.
func (o Operation) Table() string {
	table, _, _ := strings.Cut(o.Name, ".")
	return table
}

// Column returns the column part of Name, or "" for table operations.
func (o Operation) Column() string {
	_, column, _ := strings.Cut(o.Name, ".")
	return column
}
