package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultTimePrecision is the fractional seconds precision PostgreSQL uses
// for time and timestamp columns declared without one.
const DefaultTimePrecision = 6

var lengthTypes = map[string]bool{
	"character varying": true,
	"character":         true,
	"bit":               true,
	"bit varying":       true,
}

var precisionTypes = map[string]bool{
	"timestamp without time zone": true,
	"timestamp with time zone":    true,
	"time without time zone":      true,
	"time with time zone":         true,
}

var (
	typeName     = regexp.MustCompile(`^[a-z_][a-z0-9_$]*(\.[a-z_][a-z0-9_$]*)?( [a-z_][a-z0-9_$]*)*$`)
	typeModifier = regexp.MustCompile(`^([a-z_][a-z0-9_ ]*?)\s*\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\)\s*((?:with|without) time zone)?$`)
)

// IsLengthType reports whether the canonical type typ takes a length.
func IsLengthType(typ string) bool {
	return lengthTypes[typ]
}

// WithTimePrecision writes precision p into a canonical time or timestamp
// type name, e.g. timestamp(3) with time zone. The default precision
// leaves the name unchanged.
func WithTimePrecision(typ string, p int) string {
	if p == DefaultTimePrecision || !precisionTypes[typ] {
		return typ
	}
	head, tail, _ := strings.Cut(typ, " ")
	return fmt.Sprintf("%s(%d) %s", head, p, tail)
}

// CanonicalType resolves a declared type into its catalog spelling and
// length. typ must already be lower-cased and trimmed.
//
// A length is split out only for character and bit types. Time and
// timestamp precision stays part of the name, before the time zone
// qualifier. numeric(p) becomes numeric(p,0). Any other modifier, and any
// name outside a plain identifier grammar, is an error.
func CanonicalType(typ string, aliases TypeAliases) (string, int, error) {
	if elem, ok := strings.CutSuffix(typ, "[]"); ok {
		elemType, n, err := CanonicalType(strings.TrimSpace(elem), aliases)
		if err != nil {
			return "", 0, err
		}
		if n > 0 {
			elemType = fmt.Sprintf("%s(%d)", elemType, n)
		}
		return elemType + "[]", 0, nil
	}

	m := typeModifier.FindStringSubmatch(typ)
	if m == nil {
		resolved := aliases.Resolve(typ)
		if !typeName.MatchString(resolved) {
			return "", 0, fmt.Errorf("invalid type %q", typ)
		}
		return resolved, 0, nil
	}

	base := strings.TrimSpace(m[1])
	if m[4] != "" {
		base += " " + m[4]
	}
	resolved := aliases.Resolve(base)
	if !typeName.MatchString(resolved) {
		return "", 0, fmt.Errorf("invalid type %q", typ)
	}
	p, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("invalid modifier in %q", typ)
	}

	switch {
	case lengthTypes[resolved] && m[3] == "" && m[4] == "":
		if p < 1 {
			return "", 0, fmt.Errorf("length in %q must be at least 1", typ)
		}
		return resolved, p, nil
	case resolved == "numeric" && m[4] == "":
		scale := 0
		if m[3] != "" {
			if scale, err = strconv.Atoi(m[3]); err != nil {
				return "", 0, fmt.Errorf("invalid scale in %q", typ)
			}
		}
		if p < 1 || p > 1000 || scale > p {
			return "", 0, fmt.Errorf("invalid precision or scale in %q", typ)
		}
		return fmt.Sprintf("numeric(%d,%d)", p, scale), 0, nil
	case precisionTypes[resolved] && m[3] == "":
		if p > DefaultTimePrecision {
			return "", 0, fmt.Errorf("precision in %q must be between 0 and %d", typ, DefaultTimePrecision)
		}
		return WithTimePrecision(resolved, p), 0, nil
	}
	return "", 0, fmt.Errorf("type %q does not take that modifier", typ)
}
