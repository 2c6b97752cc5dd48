// Package introspect rebuilds a schema from a live database's catalog.
package introspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/ridoystarlord/schemasync/database"
	"github.com/ridoystarlord/schemasync/schema"
)

// DefaultSchema is the namespace inspected when none is given.
const DefaultSchema = "public"

// ColumnQuery lists the columns of every base table in a schema.
const ColumnQuery = `
SELECT
	c.table_name::text AS table,
	c.column_name::text AS column,
	c.data_type::text AS type,
	c.udt_name::text AS udt_name,
	c.character_maximum_length::int AS length,
	c.numeric_precision::int AS numeric_precision,
	c.numeric_scale::int AS numeric_scale,
	c.datetime_precision::int AS datetime_precision,
	c.is_nullable::text = 'YES' AS nullable,
	c.column_default::text AS default_info
FROM information_schema.columns AS c
JOIN information_schema.tables AS t
	ON t.table_schema = c.table_schema
	AND t.table_name = c.table_name
	AND t.table_type = 'BASE TABLE'
WHERE c.table_schema = $1
ORDER BY c.table_name, c.ordinal_position;
`

// ConstraintQuery lists primary key, unique and foreign key constraints in a
// schema, one row per constrained column.
const ConstraintQuery = `
SELECT
	tc.table_name::text AS table,
	ccu.column_name::text AS column,
	tc.constraint_name::text AS constraint_name,
	tc.constraint_type::text AS constraint_type,
	ccu.table_name::text AS references,
	kcu.column_name::text AS fk_column
FROM information_schema.table_constraints AS tc
JOIN information_schema.constraint_column_usage AS ccu
	ON tc.constraint_name = ccu.constraint_name
	AND tc.constraint_schema = ccu.constraint_schema
JOIN information_schema.key_column_usage AS kcu
	ON tc.constraint_name = kcu.constraint_name
	AND tc.table_schema = kcu.table_schema
WHERE tc.table_schema = $1
	AND tc.constraint_type IN ('PRIMARY KEY', 'UNIQUE', 'FOREIGN KEY')
ORDER BY tc.table_name, tc.constraint_name, kcu.ordinal_position;
`

// Data types that carry the real type name in udt_name.
const (
	ArrayType       = "ARRAY"
	UserDefinedType = "USER-DEFINED"
)

// Constraint types as reported by information_schema.
const (
	PrimaryKey = "PRIMARY KEY"
	Unique     = "UNIQUE"
	ForeignKey = "FOREIGN KEY"
)

// FromDatabase reads schemaName through client and canonicalises it with
// opts. The client must already be connected.
func FromDatabase(ctx context.Context, client database.Client, schemaName string, opts ...schema.Option) (*schema.Schema, error) {
	def, err := Inspect(ctx, client, schemaName)
	if err != nil {
		return nil, err
	}
	s, err := schema.New(def, opts...)
	if err != nil {
		return nil, fmt.Errorf("canonicalising introspected schema: %w", err)
	}
	return s, nil
}

// Inspect reads schemaName through client into a declaration, tables and
// columns in catalog order.
func Inspect(ctx context.Context, client database.Client, schemaName string) (schema.Definition, error) {
	if schemaName == "" {
		schemaName = DefaultSchema
	}

	columnRows, err := client.Query(ctx, ColumnQuery, schemaName)
	if err != nil {
		return schema.Definition{}, fmt.Errorf("querying columns: %w", err)
	}

	b := newBuilder()
	for _, row := range columnRows {
		if err := b.addColumn(row); err != nil {
			return schema.Definition{}, err
		}
	}

	constraintRows, err := client.Query(ctx, ConstraintQuery, schemaName)
	if err != nil {
		return schema.Definition{}, fmt.Errorf("querying constraints: %w", err)
	}
	for _, row := range constraintRows {
		b.addConstraint(row)
	}

	return b.definition(), nil
}

// builder collects rows while keeping first-seen order.
type builder struct {
	tables  []string
	columns map[string][]string
	specs   map[string]map[string]*schema.ColumnSpec
}

func newBuilder() *builder {
	return &builder{
		columns: map[string][]string{},
		specs:   map[string]map[string]*schema.ColumnSpec{},
	}
}

func (b *builder) addColumn(row database.Row) error {
	table, column := row.String("table"), row.String("column")
	if table == "" || column == "" {
		return fmt.Errorf("column row without table or column name: %v", row)
	}

	if _, ok := b.specs[table]; !ok {
		b.tables = append(b.tables, table)
		b.specs[table] = map[string]*schema.ColumnSpec{}
	}
	if _, ok := b.specs[table][column]; ok {
		return nil
	}

	spec := &schema.ColumnSpec{
		Name:     column,
		Type:     columnType(row),
		Nullable: schema.Ptr(row.Bool("nullable")),
	}
	if n, ok := row.Int("length"); ok {
		spec.Length = schema.Ptr(n)
	}
	if info, ok := row["default_info"].(string); ok {
		spec.Default = ParseDefault(info)
	}

	b.columns[table] = append(b.columns[table], column)
	b.specs[table][column] = spec
	return nil
}

// columnType rebuilds a declarable type from a column row. information_schema
// reports arrays as ARRAY and enums or domains as USER-DEFINED; the element or
// type name is in udt_name, with a leading underscore for arrays.
func columnType(row database.Row) string {
	typ := row.String("type")
	switch typ {
	case ArrayType:
		return strings.TrimPrefix(row.String("udt_name"), "_") + "[]"
	case UserDefinedType:
		return row.String("udt_name")
	case "numeric":
		if p, ok := row.Int("numeric_precision"); ok {
			scale, _ := row.Int("numeric_scale")
			return fmt.Sprintf("numeric(%d,%d)", p, scale)
		}
	}
	if p, ok := row.Int("datetime_precision"); ok {
		return schema.WithTimePrecision(typ, p)
	}
	return typ
}

// addConstraint marks the constrained column. Rows for tables or columns
// that were not listed are ignored.
func (b *builder) addConstraint(row database.Row) {
	table := row.String("table")
	cols, ok := b.specs[table]
	if !ok {
		return
	}

	switch row.String("constraint_type") {
	case PrimaryKey:
		if spec, ok := cols[row.String("column")]; ok {
			spec.Primary = schema.Ptr(true)
		}
	case Unique:
		if spec, ok := cols[row.String("column")]; ok {
			spec.Unique = schema.Ptr(true)
		}
	case ForeignKey:
		if spec, ok := cols[row.String("fk_column")]; ok {
			spec.References = schema.Ptr(row.String("references"))
		}
	}
}

func (b *builder) definition() schema.Definition {
	var def schema.Definition
	for _, table := range b.tables {
		specs := make([]schema.ColumnSpec, 0, len(b.columns[table]))
		for _, column := range b.columns[table] {
			specs = append(specs, *b.specs[table][column])
		}
		def.AddTable(table, specs...)
	}
	return def
}
