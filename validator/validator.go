// Package validator checks a schema declaration before anything is diffed
// or applied.
package validator

import (
	"fmt"
	"strings"

	"github.com/ridoystarlord/schemasync/generator"
	"github.com/ridoystarlord/schemasync/quote"
	"github.com/ridoystarlord/schemasync/schema"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// maxIdentifierLength is PostgreSQL's NAMEDATALEN-1.
const maxIdentifierLength = 63

// ValidationError represents a validation finding with details
type ValidationError struct {
	Type     string `json:"type"`
	Table    string `json:"table,omitempty"`
	Column   string `json:"column,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

func (e ValidationError) Error() string {
	return e.Message
}

// ValidationResult contains all validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
	Info     []ValidationError `json:"info"`
}

func (r *ValidationResult) add(e ValidationError) {
	switch e.Severity {
	case SeverityError:
		r.Errors = append(r.Errors, e)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, e)
	default:
		r.Info = append(r.Info, e)
	}
}

// Option configures Validate.
type Option func(*validator)

// WithTypeAliases resolves declared types with aliases before checking them.
func WithTypeAliases(aliases schema.TypeAliases) Option {
	return func(v *validator) { v.aliases = aliases }
}

// WithDatabase compares the declaration against an introspected schema and
// reports tables that will be created or dropped.
func WithDatabase(current *schema.Schema) Option {
	return func(v *validator) { v.current = current }
}

type validator struct {
	aliases schema.TypeAliases
	current *schema.Schema
	result  *ValidationResult
}

// Validate checks def and returns every finding. The result is valid when
// there are no errors.
func Validate(def schema.Definition, opts ...Option) *ValidationResult {
	v := &validator{
		aliases: schema.DefaultTypeAliases(),
		result: &ValidationResult{
			Errors:   []ValidationError{},
			Warnings: []ValidationError{},
			Info:     []ValidationError{},
		},
	}
	for _, opt := range opts {
		opt(v)
	}

	tables := make(map[string]schema.TableSpec, len(def.Tables))
	for _, table := range def.Tables {
		if _, dup := tables[table.Name]; dup {
			v.result.add(ValidationError{
				Type:     "duplicate_table",
				Table:    table.Name,
				Message:  fmt.Sprintf("Duplicate table name '%s'", table.Name),
				Severity: SeverityError,
			})
			continue
		}
		tables[table.Name] = table
		v.validateTable(table)
	}
	v.validateReferences(def, tables)
	v.compareDatabase(def)

	if len(v.result.Errors) == 0 {
		if _, err := schema.New(def, schema.WithTypeAliases(v.aliases)); err != nil {
			v.result.add(ValidationError{Type: "schema", Message: err.Error(), Severity: SeverityError})
		}
	}

	v.result.Valid = len(v.result.Errors) == 0
	return v.result
}

func (v *validator) validateTable(table schema.TableSpec) {
	v.validateName("table_name", table.Name, table.Name, "")

	if len(table.Columns) == 0 {
		v.result.add(ValidationError{
			Type:     "no_columns",
			Table:    table.Name,
			Message:  fmt.Sprintf("Table '%s' has no columns", table.Name),
			Severity: SeverityWarning,
		})
		return
	}

	columns := make(map[string]bool)
	var primaries []string

	for _, col := range table.Columns {
		if columns[col.Name] {
			v.result.add(ValidationError{
				Type:     "duplicate_column",
				Table:    table.Name,
				Column:   col.Name,
				Message:  fmt.Sprintf("Duplicate column name '%s' in table '%s'", col.Name, table.Name),
				Severity: SeverityError,
			})
			continue
		}
		columns[col.Name] = true

		v.validateName("column_name", col.Name, table.Name, col.Name)
		v.validateColumn(table.Name, col)

		if col.Primary != nil && *col.Primary {
			primaries = append(primaries, col.Name)
		}
	}

	switch {
	case len(primaries) == 0:
		v.result.add(ValidationError{
			Type:     "no_primary_key",
			Table:    table.Name,
			Message:  fmt.Sprintf("Table '%s' has no primary key defined", table.Name),
			Severity: SeverityWarning,
		})
	case len(primaries) > 1:
		v.result.add(ValidationError{
			Type:     "multiple_primary_keys",
			Table:    table.Name,
			Message:  fmt.Sprintf("Table '%s' declares more than one primary key column: %s", table.Name, strings.Join(primaries, ", ")),
			Severity: SeverityError,
		})
	}
}

// validateName checks an identifier. Names that need quoting are legal but
// easy to get wrong by hand, so they only warn.
func (v *validator) validateName(kind, name, table, column string) {
	label := strings.TrimSuffix(kind, "_name")
	issue := func(severity, format string, args ...any) {
		v.result.add(ValidationError{
			Type:     kind,
			Table:    table,
			Column:   column,
			Message:  fmt.Sprintf(format, args...),
			Severity: severity,
		})
	}

	switch {
	case name == "":
		issue(SeverityError, "%s name cannot be empty", label)
	case len(name) > maxIdentifierLength:
		issue(SeverityError, "%s name '%s' is too long (max %d characters)", label, name, maxIdentifierLength)
	case quote.NeedsQuoting(name):
		issue(SeverityWarning, "%s name '%s' is reserved or not lower-case and will always be quoted", label, name)
	}
}

func (v *validator) validateColumn(table string, col schema.ColumnSpec) {
	issue := func(kind, severity, format string, args ...any) {
		v.result.add(ValidationError{
			Type:     kind,
			Table:    table,
			Column:   col.Name,
			Message:  fmt.Sprintf(format, args...),
			Severity: severity,
		})
	}

	var typ string
	raw := strings.ToLower(strings.TrimSpace(col.Type))
	canonical, _, err := schema.CanonicalType(raw, v.aliases)
	switch {
	case raw == "":
		issue("data_type", SeverityError, "column '%s' has no type", col.Name)
	case err != nil:
		issue("data_type", SeverityError, "%v", err)
	default:
		typ = canonical
		if !knownType(typ) {
			issue("data_type", SeverityWarning, "unrecognised data type '%s'", col.Type)
		}
	}
	if col.Length != nil && *col.Length > 0 && typ != "" && !schema.IsLengthType(typ) {
		issue("length", SeverityError, "type '%s' does not take a length", typ)
	}

	primary := col.Primary != nil && *col.Primary
	if primary && col.Nullable != nil && *col.Nullable {
		issue("nullable_primary_key", SeverityWarning, "primary key column cannot be nullable, it will be NOT NULL")
	}

	for _, c := range []struct {
		set    bool
		suffix string
	}{
		{primary, generator.PrimarySuffix},
		{col.Unique != nil && *col.Unique, generator.UniqueSuffix},
		{col.References != nil && *col.References != "", generator.ForeignKeySuffix},
	} {
		if !c.set {
			continue
		}
		if name := generator.ConstraintName(table, col.Name, c.suffix); len(name) > maxIdentifierLength {
			issue("constraint_name", SeverityWarning, "constraint name '%s' exceeds %d characters and will be truncated", name, maxIdentifierLength)
		}
	}

	if col.Default != nil {
		if msg := checkDefault(typ, col.Default); msg != "" {
			severity := SeverityWarning
			if strings.HasPrefix(msg, "unsupported") {
				severity = SeverityError
			}
			issue("default_value", severity, "%s", msg)
		}
	}
}

func checkDefault(typ string, value any) string {
	switch value.(type) {
	case schema.Expression:
		return ""
	case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
	default:
		return fmt.Sprintf("unsupported default value %v of type %T", value, value)
	}

	switch {
	case integerTypes[typ]:
		switch value.(type) {
		case float32, float64:
			return fmt.Sprintf("integer type cannot have decimal default value '%v'", value)
		case bool, string:
			return fmt.Sprintf("integer type should have a numeric default value, got '%v'", value)
		}
	case typ == "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Sprintf("boolean type should have true/false default value, got '%v'", value)
		}
	}
	return ""
}

// validateReferences checks foreign keys point at declared tables with a
// primary key, since REFERENCES without a column targets the primary key.
func (v *validator) validateReferences(def schema.Definition, tables map[string]schema.TableSpec) {
	for _, table := range def.Tables {
		for _, col := range table.Columns {
			if col.References == nil {
				continue
			}
			ref := *col.References
			target, ok := tables[ref]
			switch {
			case ref == "":
				v.result.add(ValidationError{Type: "foreign_key", Table: table.Name, Column: col.Name,
					Message: "foreign key references table cannot be empty", Severity: SeverityError})
			case !ok:
				v.result.add(ValidationError{Type: "foreign_key_table_not_found", Table: table.Name, Column: col.Name,
					Message:  fmt.Sprintf("Foreign key references non-existent table '%s'", ref),
					Severity: SeverityError})
			case !hasPrimaryKey(target):
				v.result.add(ValidationError{Type: "foreign_key_no_primary_key", Table: table.Name, Column: col.Name,
					Message:  fmt.Sprintf("Foreign key references table '%s' which has no primary key", ref),
					Severity: SeverityError})
			}
		}
	}
}

func hasPrimaryKey(table schema.TableSpec) bool {
	for _, col := range table.Columns {
		if col.Primary != nil && *col.Primary {
			return true
		}
	}
	return false
}

func (v *validator) compareDatabase(def schema.Definition) {
	if v.current == nil {
		return
	}

	declared := make(map[string]bool, len(def.Tables))
	for _, table := range def.Tables {
		declared[table.Name] = true
		if v.current.HasTable(table.Name) {
			v.result.add(ValidationError{Type: "table_exists", Table: table.Name,
				Message:  fmt.Sprintf("Table '%s' already exists in database", table.Name),
				Severity: SeverityInfo})
		} else {
			v.result.add(ValidationError{Type: "table_created", Table: table.Name,
				Message:  fmt.Sprintf("Table '%s' will be created", table.Name),
				Severity: SeverityInfo})
		}
	}
	for _, table := range v.current.Tables() {
		if !declared[table] {
			v.result.add(ValidationError{Type: "table_dropped", Table: table,
				Message:  fmt.Sprintf("Table '%s' exists in database but is not declared and will be dropped", table),
				Severity: SeverityWarning})
		}
	}
}
