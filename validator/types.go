package validator

import (
	"regexp"
	"strings"
)

var integerTypes = map[string]bool{
	"smallint": true, "integer": true, "bigint": true,
	"serial": true, "bigserial": true, "smallserial": true,
}

// validTypes holds canonical type names, after alias resolution.
var validTypes = map[string]bool{
	// Numeric types
	"smallint": true, "integer": true, "bigint": true,
	"numeric": true, "real": true, "double precision": true,
	"serial": true, "bigserial": true, "smallserial": true, "money": true,

	// Character types
	"character varying": true, "character": true, "text": true, "citext": true,

	// Binary data types
	"bytea": true,

	// Date/time types
	"timestamp without time zone": true, "timestamp with time zone": true,
	"date": true, "time without time zone": true, "time with time zone": true,
	"interval": true,

	"boolean": true,
	"json":    true, "jsonb": true,
	"uuid": true,
	"xml":  true,

	// Geometric types
	"point": true, "line": true, "lseg": true, "box": true,
	"path": true, "polygon": true, "circle": true,

	// Network address types
	"cidr": true, "inet": true, "macaddr": true, "macaddr8": true,

	"bit": true, "bit varying": true,
	"tsvector": true, "tsquery": true,
}

var typeModifier = regexp.MustCompile(`\(\d+(,\d+)?\)`)

// knownType reports whether a canonical type, with any modifier and array
// suffix removed, is a built-in type.
func knownType(typ string) bool {
	typ = typeModifier.ReplaceAllString(strings.TrimSuffix(typ, "[]"), "")
	return validTypes[typ]
}
