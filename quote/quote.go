// Package quote renders identifiers and literal values into PostgreSQL text.
// Every statement builder goes through Ident and Literal; nothing else
// interpolates user-supplied names or values into SQL.
package quote

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// Raw is implemented by values that are already SQL text, such as a default
// expression like now(). Literal emits them verbatim.
type Raw interface {
	SQL() string
}

// keywords that cannot appear unquoted as a table, column or constraint name.
var reserved = map[string]bool{}

func init() {
	words := `all analyse analyze and any array as asc asymmetric authorization binary both case cast
check collate collation column concurrently constraint create cross current_catalog current_date
current_role current_schema current_time current_timestamp current_user default deferrable desc
distinct do else end except false fetch for foreign freeze from full grant group having ilike in
initially inner intersect into is isnull join lateral leading left like limit localtime
localtimestamp natural not notnull null offset on only or order outer overlaps placing primary
references returning right select session_user similar some symmetric system_user table tablesample
then to trailing true union unique user using variadic verbose when where window with`
	for _, w := range strings.Fields(words) {
		reserved[w] = true
	}
}

// NeedsQuoting reports whether name must be double-quoted to survive
// PostgreSQL's identifier folding and keyword rules.
func NeedsQuoting(name string) bool {
	if name == "" || reserved[name] {
		return true
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case r >= '0' && r <= '9', r == '$':
			if i == 0 {
				return true
			}
		default:
			return true
		}
	}
	return false
}

// Ident returns name ready for use as an identifier. Plain lower-case names
// are emitted as-is; anything else is double-quoted with embedded quotes doubled.
func Ident(name string) string {
	if !NeedsQuoting(name) {
		return name
	}
	return pq.QuoteIdentifier(name)
}

// Literal renders v as a SQL literal. Strings are single-quoted with embedded
// quotes (and backslashes) escaped; booleans and numbers become bare tokens;
// nil becomes NULL.
func Literal(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case Raw:
		return val.SQL()
	case string:
		return str(val)
	case bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return float(float64(val))
	case float64:
		return float(val)
	default:
		return str(fmt.Sprint(val))
	}
}

func float(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		// numeric columns accept these only as quoted strings
		return str(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func str(s string) string {
	// pq prefixes escape-string literals with a space
	return strings.TrimLeft(pq.QuoteLiteral(s), " ")
}
