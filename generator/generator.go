// Package generator renders migrations as PostgreSQL statements.
package generator

import (
	"fmt"
	"strings"

	"github.com/ridoystarlord/schemasync/migration"
	"github.com/ridoystarlord/schemasync/quote"
	"github.com/ridoystarlord/schemasync/schema"
)

// MissingChangesError is returned for a create or alter operation on a
// column or constraint that carries no target definition.
type MissingChangesError struct {
	Operation migration.Operation
}

func (e *MissingChangesError) Error() string {
	return fmt.Sprintf("operation %s %s: changes.to is required for %s operations",
		e.Operation.Key(), e.Operation.Name, e.Operation.Target)
}

// Constraint name suffixes. Names are {table}_{column}_{suffix}.
const (
	PrimarySuffix    = "primary"
	UniqueSuffix     = "unique"
	ForeignKeySuffix = "foreignkey"
)

// ConstraintName returns the deterministic name of a single-column constraint.
func ConstraintName(table, column, suffix string) string {
	return fmt.Sprintf("%s_%s_%s", table, column, suffix)
}

// GenerateSQL renders m as an ordered list of statements.
//
// Phases are walked in canonical order and operations within a phase in
// insertion order. One operation can contribute statements to several
// phases: adding a primary-key column yields ADD COLUMN in create.columns and
// ADD CONSTRAINT in create.constraints. Statements are emitted phase by
// phase, so constraint drops always precede column drops, which precede
// table drops. All operations are validated before anything is returned.
//
// The order always comes from migration.Phases. A reversed migration, such
// as a rollback, renders in the same canonical order; Reverse and Reversed
// only affect Operations and Phases on the migration itself.
func GenerateSQL(m *migration.Migration) ([]string, error) {
	slots := make(map[migration.Phase][]string, len(migration.Phases))

	for _, phase := range migration.Phases {
		for _, op := range m.Bucket(phase) {
			if err := render(op, phase, slots); err != nil {
				return nil, err
			}
		}
	}

	var statements []string
	for _, phase := range migration.Phases {
		statements = append(statements, slots[phase]...)
	}
	return statements, nil
}

func render(op migration.Operation, phase migration.Phase, slots map[migration.Phase][]string) error {
	if op.Target == migration.Tables {
		switch op.Type {
		case migration.Create:
			slots[phase] = append(slots[phase], fmt.Sprintf("CREATE TABLE %s ();", quote.Ident(op.Name)))
		case migration.Drop:
			slots[phase] = append(slots[phase], fmt.Sprintf("DROP TABLE %s;", quote.Ident(op.Name)))
		default:
			return &migration.ConfigurationError{Key: op.Key()}
		}
		return nil
	}

	if (op.Type == migration.Create || op.Type == migration.Alter) && (op.Changes == nil || op.Changes.To == nil) {
		return &MissingChangesError{Operation: op}
	}
	table, column := op.Table(), op.Column()
	if column == "" {
		return fmt.Errorf("operation %s %s: name must be table.column", op.Key(), op.Name)
	}

	changes := op.Changes
	if changes == nil {
		changes = &migration.Changes{}
	}
	from, to := changes.From, changes.To

	if op.Target == migration.Columns {
		switch op.Type {
		case migration.Create:
			stmt, err := addColumn(table, column, to, op.After)
			if err != nil {
				return err
			}
			slots[phase] = append(slots[phase], stmt)
		case migration.Drop:
			slots[phase] = append(slots[phase],
				fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", quote.Ident(table), quote.Ident(column)))
		case migration.Alter:
			clauses, err := alterColumn(column, from, to, op.Before, op.After)
			if err != nil {
				return err
			}
			if len(clauses) > 0 {
				slots[phase] = append(slots[phase], alterTable(table, clauses))
			}
		}
	}

	for _, p := range migration.Phases {
		if clauses := constraintClauses(op, p, table, column, from, to); len(clauses) > 0 {
			slots[p] = append(slots[p], alterTable(table, clauses))
		}
	}
	return nil
}

func alterTable(table string, clauses []string) string {
	return fmt.Sprintf("ALTER TABLE %s %s;", quote.Ident(table), strings.Join(clauses, ", "))
}

func addColumn(table, column string, to schema.Attributes, after *schema.ColumnDefinition) (string, error) {
	typ := sqlType(to, after)
	if typ == "" {
		return "", fmt.Errorf("column %s.%s: type is required to add a column", table, column)
	}

	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", quote.Ident(table), quote.Ident(column), typ)
	if to.Has(schema.AttrNullable) && !to.Bool(schema.AttrNullable) {
		stmt += " NOT NULL"
	}
	if v := to[schema.AttrDefault]; v != nil {
		stmt += " DEFAULT " + quote.Literal(v)
	}
	return stmt + ";", nil
}

func alterColumn(column string, from, to schema.Attributes, before, after *schema.ColumnDefinition) ([]string, error) {
	var clauses []string

	if from.Has(schema.AttrType) || from.Has(schema.AttrLength) || to.Has(schema.AttrType) || to.Has(schema.AttrLength) {
		fromType, toType := sqlType(from, before), sqlType(to, after)
		if toType == "" {
			return nil, fmt.Errorf("column %s: cannot change type without a target type", column)
		}
		if fromType != toType {
			clauses = append(clauses, "TYPE "+toType)
		}
	}

	if from.Has(schema.AttrDefault) || to.Has(schema.AttrDefault) {
		if quote.Literal(from[schema.AttrDefault]) != quote.Literal(to[schema.AttrDefault]) {
			if v := to[schema.AttrDefault]; v != nil {
				clauses = append(clauses, "SET DEFAULT "+quote.Literal(v))
			} else {
				clauses = append(clauses, "DROP DEFAULT")
			}
		}
	}

	if to.Has(schema.AttrNullable) && from[schema.AttrNullable] != to[schema.AttrNullable] {
		if to.Bool(schema.AttrNullable) {
			clauses = append(clauses, "DROP NOT NULL")
		} else {
			clauses = append(clauses, "SET NOT NULL")
		}
	}

	for i, c := range clauses {
		clauses[i] = fmt.Sprintf("ALTER COLUMN %s %s", quote.Ident(column), c)
	}
	return clauses, nil
}

// constraintClauses returns the ADD/DROP CONSTRAINT clauses an operation
// contributes to phase. Drops come before adds. A constraint is only dropped
// when the old side says it existed.
func constraintClauses(op migration.Operation, phase migration.Phase, table, column string, from, to schema.Attributes) []string {
	var drops, adds []string
	col := quote.Ident(column)

	for _, c := range []struct {
		attr   schema.Attribute
		suffix string
		kind   string
	}{
		{schema.AttrPrimary, PrimarySuffix, "PRIMARY KEY"},
		{schema.AttrUnique, UniqueSuffix, "UNIQUE"},
	} {
		if from[c.attr] == to[c.attr] {
			continue
		}
		name := quote.Ident(ConstraintName(table, column, c.suffix))
		if to.Bool(c.attr) && phase == addPhase(op, false) {
			adds = append(adds, fmt.Sprintf("ADD CONSTRAINT %s %s (%s)", name, c.kind, col))
		} else if from.Bool(c.attr) && !to.Bool(c.attr) && phase == dropPhase(op, false) {
			drops = append(drops, "DROP CONSTRAINT "+name)
		}
	}

	fromRef, toRef := from.String(schema.AttrReferences), to.String(schema.AttrReferences)
	if fromRef != toRef {
		name := quote.Ident(ConstraintName(table, column, ForeignKeySuffix))
		if fromRef != "" && phase == dropPhase(op, true) {
			drops = append(drops, "DROP CONSTRAINT "+name)
		}
		if toRef != "" && phase == addPhase(op, true) {
			adds = append(adds, fmt.Sprintf("ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s", name, col, quote.Ident(toRef)))
		}
	}

	return append(drops, adds...)
}

// addPhase and dropPhase place constraint statements. Alter operations aimed
// directly at constraints keep their statements in their own alter phase;
// everything else is scheduled by constraint kind.
func addPhase(op migration.Operation, foreign bool) migration.Phase {
	if p, ok := alterPhase(op, foreign); ok {
		return p
	}
	if foreign {
		return migration.CreateForeignKeys
	}
	return migration.CreateConstraints
}

func dropPhase(op migration.Operation, foreign bool) migration.Phase {
	if p, ok := alterPhase(op, foreign); ok {
		return p
	}
	if foreign {
		return migration.DropForeignKeys
	}
	return migration.DropConstraints
}

func alterPhase(op migration.Operation, foreign bool) (migration.Phase, bool) {
	if op.Type != migration.Alter || op.Target == migration.Columns {
		return "", false
	}
	if foreign {
		return migration.AlterForeignKeys, true
	}
	return migration.AlterConstraints, true
}

// sqlType renders the type in attrs, falling back to def for attributes the
// partial definition does not carry.
func sqlType(attrs schema.Attributes, def *schema.ColumnDefinition) string {
	merged := schema.Attributes{}
	if def != nil {
		merged = def.Attributes()
	}
	for k, v := range attrs {
		merged[k] = v
	}
	if merged.String(schema.AttrType) == "" {
		return ""
	}
	return merged.SQLType()
}
