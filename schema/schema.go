// Package schema holds the canonical in-memory model of a database schema.
//
// A Schema is built once by New, which runs every column through a single
// canonicalisation pass: shorthand expansion, defaults, the primary-key
// nullability rule and type alias resolution. The result is immutable, so
// reads have no side effects and always return the same value.
package schema

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// Schema is an immutable, canonical set of tables and columns.
type Schema struct {
	tables  []string
	columns map[string][]string
	defs    map[string]map[string]ColumnDefinition
}

// Option configures canonicalisation.
type Option func(*options)

type options struct {
	aliases TypeAliases
	logger  *slog.Logger
}

// WithTypeAliases replaces the alias table used to resolve type names.
func WithTypeAliases(aliases TypeAliases) Option {
	return func(o *options) {
		o.aliases = aliases
	}
}

// WithLogger sets the logger that receives normalisation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New canonicalises def into a Schema. Table names and column names within
// a table must be unique.
func New(def Definition, opts ...Option) (*Schema, error) {
	o := options{aliases: DefaultTypeAliases(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Schema{
		columns: make(map[string][]string, len(def.Tables)),
		defs:    make(map[string]map[string]ColumnDefinition, len(def.Tables)),
	}

	for _, table := range def.Tables {
		if table.Name == "" {
			return nil, fmt.Errorf("table name cannot be empty")
		}
		if _, dup := s.defs[table.Name]; dup {
			return nil, fmt.Errorf("duplicate table %q", table.Name)
		}
		s.tables = append(s.tables, table.Name)
		s.defs[table.Name] = make(map[string]ColumnDefinition, len(table.Columns))
		s.columns[table.Name] = make([]string, 0, len(table.Columns))

		for _, col := range table.Columns {
			if col.Name == "" {
				return nil, fmt.Errorf("table %q: column name cannot be empty", table.Name)
			}
			if _, dup := s.defs[table.Name][col.Name]; dup {
				return nil, fmt.Errorf("table %q: duplicate column %q", table.Name, col.Name)
			}
			canonical, err := canonicalize(table.Name, col, o)
			if err != nil {
				return nil, err
			}
			s.columns[table.Name] = append(s.columns[table.Name], col.Name)
			s.defs[table.Name][col.Name] = canonical
		}
	}

	return s, nil
}

func canonicalize(table string, col ColumnSpec, o options) (ColumnDefinition, error) {
	def := ColumnDefinition{Nullable: true}

	typ := strings.ToLower(strings.TrimSpace(col.Type))
	if typ == "" {
		return def, fmt.Errorf("column %s.%s: type is required", table, col.Name)
	}
	canonical, length, err := CanonicalType(typ, o.aliases)
	if err != nil {
		return def, fmt.Errorf("column %s.%s: %w", table, col.Name, err)
	}
	def.Type, def.Length = canonical, length

	if col.Length != nil {
		if *col.Length < 0 {
			return def, fmt.Errorf("column %s.%s: length must not be negative", table, col.Name)
		}
		if *col.Length > 0 && !lengthTypes[def.Type] {
			return def, fmt.Errorf("column %s.%s: type %q does not take a length", table, col.Name, def.Type)
		}
		def.Length = *col.Length
	}
	if col.Primary != nil {
		def.Primary = *col.Primary
	}
	if col.Unique != nil {
		def.Unique = *col.Unique
	}
	if col.References != nil {
		def.References = *col.References
	}
	if col.Nullable != nil {
		def.Nullable = *col.Nullable
	}

	if def.Primary && def.Nullable {
		if col.Nullable != nil {
			o.logger.Warn("primary key column cannot be nullable, setting nullable to false",
				"table", table, "column", col.Name)
		}
		def.Nullable = false
	}

	value, err := normalizeValue(col.Default)
	if err != nil {
		return def, fmt.Errorf("column %s.%s: default: %w", table, col.Name, err)
	}
	def.Default = value

	return def, nil
}

// normalizeValue maps a default onto the small set of comparable scalar
// types the diff works with.
func normalizeValue(v any) (any, error) {
	switch val := v.(type) {
	case nil, string, bool, int64, float64, Expression:
		return val, nil
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case uint:
		return uintValue(uint64(val))
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		return uintValue(val)
	case float32:
		return float64(val), nil
	default:
		return nil, fmt.Errorf("unsupported value %v of type %T", v, v)
	}
}

func uintValue(v uint64) (any, error) {
	if v > math.MaxInt64 {
		return nil, fmt.Errorf("value %d out of range", v)
	}
	return int64(v), nil
}

// Tables returns the table names in declaration order.
func (s *Schema) Tables() []string {
	return append([]string(nil), s.tables...)
}

// HasTable reports whether table exists.
func (s *Schema) HasTable(table string) bool {
	_, ok := s.defs[table]
	return ok
}

// Columns returns the column names of table in declaration order.
func (s *Schema) Columns(table string) ([]string, error) {
	cols, ok := s.columns[table]
	if !ok {
		return nil, &NotFoundError{Table: table}
	}
	return append([]string(nil), cols...), nil
}

// HasColumn reports whether table has column.
func (s *Schema) HasColumn(table, column string) bool {
	_, ok := s.defs[table][column]
	return ok
}

// Column returns the canonical definition of table.column.
func (s *Schema) Column(table, column string) (ColumnDefinition, error) {
	cols, ok := s.defs[table]
	if !ok {
		return ColumnDefinition{}, &NotFoundError{Table: table}
	}
	def, ok := cols[column]
	if !ok {
		return ColumnDefinition{}, &NotFoundError{Table: table, Column: column}
	}
	return def, nil
}

// Definition returns s as a long-form declaration. Feeding it back to New
// yields an equal Schema.
func (s *Schema) Definition() Definition {
	var def Definition
	for _, table := range s.tables {
		spec := TableSpec{Name: table}
		for _, col := range s.columns[table] {
			spec.Columns = append(spec.Columns, s.defs[table][col].Spec(col))
		}
		def.Tables = append(def.Tables, spec)
	}
	return def
}
