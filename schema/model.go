package schema

import "fmt"

// Definition is the declarative input for a schema: tables in declaration
// order, each with its columns in declaration order.
type Definition struct {
	Tables []TableSpec
}

// TableSpec declares one table.
type TableSpec struct {
	Name    string
	Columns []ColumnSpec
}

// ColumnSpec is the long form of a column declaration. Nil fields are
// missing and receive defaults during canonicalisation.
type ColumnSpec struct {
	Name       string
	Type       string
	Primary    *bool
	Length     *int
	Unique     *bool
	References *string
	Nullable   *bool
	Default    any
}

// Shorthand expands the bare type-name form ("id: varchar") of a column.
func Shorthand(name, typ string) ColumnSpec {
	return ColumnSpec{Name: name, Type: typ}
}

// Ptr returns a pointer to v, for filling optional ColumnSpec fields.
func Ptr[T any](v T) *T {
	return &v
}

// AddTable appends a table declaration and returns d for chaining.
func (d *Definition) AddTable(name string, columns ...ColumnSpec) *Definition {
	d.Tables = append(d.Tables, TableSpec{Name: name, Columns: columns})
	return d
}

// Expression is a default value that is raw SQL rather than a literal,
// for example now() or nextval('posts_id_seq'::regclass).
type Expression string

// SQL returns the expression text.
func (e Expression) SQL() string {
	return string(e)
}

// ColumnDefinition is the canonical form of a column: aliases resolved,
// defaults filled and primary keys forced to NOT NULL.
type ColumnDefinition struct {
	Type       string
	Primary    bool
	Length     int    // 0 when the type carries no length
	Unique     bool
	References string // referenced table, empty when none
	Nullable   bool
	Default    any // nil, string, bool, int64, float64 or Expression
}

// SQLType renders the column type with its length suffix, e.g. character varying(36).
func (c ColumnDefinition) SQLType() string {
	if c.Length > 0 {
		return fmt.Sprintf("%s(%d)", c.Type, c.Length)
	}
	return c.Type
}

// Attributes returns every attribute of c keyed by name. Absent length,
// references and default are present with a nil value.
func (c ColumnDefinition) Attributes() Attributes {
	attrs := Attributes{
		AttrType:       c.Type,
		AttrPrimary:    c.Primary,
		AttrLength:     nil,
		AttrUnique:     c.Unique,
		AttrReferences: nil,
		AttrNullable:   c.Nullable,
		AttrDefault:    c.Default,
	}
	if c.Length > 0 {
		attrs[AttrLength] = c.Length
	}
	if c.References != "" {
		attrs[AttrReferences] = c.References
	}
	return attrs
}

// Spec converts c back into a long-form declaration named name.
func (c ColumnDefinition) Spec(name string) ColumnSpec {
	spec := ColumnSpec{
		Name:     name,
		Type:     c.Type,
		Primary:  Ptr(c.Primary),
		Unique:   Ptr(c.Unique),
		Nullable: Ptr(c.Nullable),
		Default:  c.Default,
	}
	if c.Length > 0 {
		spec.Length = Ptr(c.Length)
	}
	if c.References != "" {
		spec.References = Ptr(c.References)
	}
	return spec
}
