package schema

import "strings"

// TypeAliases maps short or internal PostgreSQL type names to the names the
// catalog reports, so declared and introspected types compare equal.
type TypeAliases map[string]string

// DefaultTypeAliases returns a fresh copy of the built-in alias table.
func DefaultTypeAliases() TypeAliases {
	return TypeAliases{
		"int8":        "bigint",
		"varbit":      "bit varying",
		"bool":        "boolean",
		"bpchar":      "character",
		"char":        "character",
		"varchar":     "character varying",
		"float8":      "double precision",
		"int4":        "integer",
		"int":         "integer",
		"decimal":     "numeric",
		"float4":      "real",
		"int2":        "smallint",
		"time":        "time without time zone",
		"timetz":      "time with time zone",
		"timestamp":   "timestamp without time zone",
		"timestamptz": "timestamp with time zone",
	}
}

// Merge returns a new table holding a overridden by extra.
func (a TypeAliases) Merge(extra map[string]string) TypeAliases {
	merged := make(TypeAliases, len(a)+len(extra))
	for k, v := range a {
		merged[k] = v
	}
	for k, v := range extra {
		merged[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(strings.TrimSpace(v))
	}
	return merged
}

// Resolve returns the canonical name for typ. Unknown names pass through.
func (a TypeAliases) Resolve(typ string) string {
	if canonical, ok := a[typ]; ok {
		return canonical
	}
	return typ
}
