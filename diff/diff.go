// Package diff compares two schemas and produces the migration between them.
package diff

import (
	"fmt"
	"reflect"

	"github.com/ridoystarlord/schemasync/migration"
	"github.com/ridoystarlord/schemasync/schema"
)

// Diff pairs a source and destination schema and memoises the forward
// migration and its rollback.
type Diff struct {
	source      *schema.Schema
	destination *schema.Schema
	migration   *migration.Migration
	rollback    *migration.Migration
}

// New returns a Diff from source to destination.
func New(source, destination *schema.Schema) *Diff {
	return &Diff{source: source, destination: destination}
}

// Migration returns the operations that turn source into destination.
func (d *Diff) Migration() (*migration.Migration, error) {
	if d.migration == nil {
		m, err := Compare(d.source, d.destination)
		if err != nil {
			return nil, err
		}
		d.migration = m
	}
	return d.migration, nil
}

// Rollback returns the operations that turn destination back into source:
// the reverse comparison with its phase order inverted.
func (d *Diff) Rollback() (*migration.Migration, error) {
	if d.rollback == nil {
		m, err := Compare(d.destination, d.source)
		if err != nil {
			return nil, err
		}
		d.rollback = m.Reverse()
	}
	return d.rollback, nil
}

// Compare walks every table and column of both schemas and returns the
// operations needed to turn source into destination.
//
// A table present on one side only yields a table create or drop. A column
// present on one side only yields a column create or drop carrying both full
// definitions (the missing side empty), including columns of tables that
// are themselves created or dropped. A column present on both sides yields
// an alter only when some attribute differs.
func Compare(source, destination *schema.Schema) (*migration.Migration, error) {
	m := migration.New()

	sourceTables := source.Tables()
	destinationTables := destination.Tables()

	for _, table := range union(sourceTables, destinationTables) {
		inSource := source.HasTable(table)
		inDestination := destination.HasTable(table)

		if inSource != inDestination {
			op := migration.Operation{Target: migration.Tables, Type: migration.Create, Name: table}
			if inSource {
				op.Type = migration.Drop
			}
			if err := m.AddOperation(op); err != nil {
				return nil, err
			}
		}

		sourceColumns, err := columnsOf(source, table)
		if err != nil {
			return nil, err
		}
		destinationColumns, err := columnsOf(destination, table)
		if err != nil {
			return nil, err
		}

		for _, column := range union(sourceColumns, destinationColumns) {
			op, ok, err := compareColumn(source, destination, table, column)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if err := m.AddOperation(op); err != nil {
				return nil, err
			}
		}
	}

	return m, nil
}

func compareColumn(source, destination *schema.Schema, table, column string) (migration.Operation, bool, error) {
	name := table + "." + column
	before, err := lookup(source, table, column)
	if err != nil {
		return migration.Operation{}, false, err
	}
	after, err := lookup(destination, table, column)
	if err != nil {
		return migration.Operation{}, false, err
	}

	switch {
	case before == nil && after == nil:
		return migration.Operation{}, false, fmt.Errorf("column %s missing from both schemas", name)

	case before == nil:
		return migration.Operation{
			Target:  migration.Columns,
			Type:    migration.Create,
			Name:    name,
			Changes: &migration.Changes{From: schema.Attributes{}, To: after.Attributes()},
			After:   after,
		}, true, nil

	case after == nil:
		return migration.Operation{
			Target:  migration.Columns,
			Type:    migration.Drop,
			Name:    name,
			Changes: &migration.Changes{From: before.Attributes(), To: schema.Attributes{}},
			Before:  before,
		}, true, nil
	}

	changes := DiffColumns(before.Attributes(), after.Attributes())
	if len(changes.To) == 0 {
		return migration.Operation{}, false, nil
	}
	return migration.Operation{
		Target:  migration.Columns,
		Type:    migration.Alter,
		Name:    name,
		Changes: &changes,
		Before:  before,
		After:   after,
	}, true, nil
}

// DiffColumns returns, for every attribute present in a or b whose values
// differ, the value on each side. An empty To means no difference.
func DiffColumns(a, b schema.Attributes) migration.Changes {
	changes := migration.Changes{From: schema.Attributes{}, To: schema.Attributes{}}
	for _, key := range union(a.Keys(), b.Keys()) {
		if !reflect.DeepEqual(a[key], b[key]) {
			changes.From[key] = a[key]
			changes.To[key] = b[key]
		}
	}
	return changes
}

func columnsOf(s *schema.Schema, table string) ([]string, error) {
	if !s.HasTable(table) {
		return nil, nil
	}
	return s.Columns(table)
}

func lookup(s *schema.Schema, table, column string) (*schema.ColumnDefinition, error) {
	if !s.HasColumn(table, column) {
		return nil, nil
	}
	def, err := s.Column(table, column)
	if err != nil {
		return nil, err
	}
	return &def, nil
}

// union returns the distinct elements of a followed by those of b, in first-seen order.
func union[T comparable](a, b []T) []T {
	seen := make(map[T]bool, len(a)+len(b))
	out := make([]T, 0, len(a)+len(b))
	for _, list := range [][]T{a, b} {
		for _, v := range list {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
