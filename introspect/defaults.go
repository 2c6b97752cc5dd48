package introspect

import (
	"strconv"
	"strings"

	"github.com/ridoystarlord/schemasync/schema"
)

var numericTypes = map[string]bool{
	"smallint":         true,
	"integer":          true,
	"bigint":           true,
	"numeric":          true,
	"real":             true,
	"double precision": true,
}

// ParseDefault maps the catalog's default expression text onto a default
// value: nil for NULL, the unquoted text of a quoted literal, a number, a
// boolean, or otherwise an Expression kept verbatim.
func ParseDefault(info string) any {
	info = strings.TrimSpace(info)
	if info == "" || strings.HasPrefix(info, "NULL::") || strings.EqualFold(info, "NULL") {
		return nil
	}

	if text, cast, ok := quotedLiteral(info); ok {
		if numericTypes[cast] {
			if n, ok := number(text); ok {
				return n
			}
		}
		return text
	}

	switch info {
	case "true":
		return true
	case "false":
		return false
	}

	if n, ok := number(strings.Trim(info, "()")); ok {
		return n
	}
	return schema.Expression(info)
}

// quotedLiteral splits 'text'::type into the unescaped text and the type.
func quotedLiteral(info string) (text, cast string, ok bool) {
	if !strings.HasPrefix(info, "'") {
		return "", "", false
	}
	end := -1
	for i := 1; i < len(info); i++ {
		if info[i] != '\'' {
			continue
		}
		if i+1 < len(info) && info[i+1] == '\'' {
			i++
			continue
		}
		end = i
		break
	}
	if end < 0 {
		return "", "", false
	}

	rest := info[end+1:]
	if rest != "" && !strings.HasPrefix(rest, "::") {
		return "", "", false
	}
	cast = strings.TrimPrefix(rest, "::")
	if strings.Contains(cast, "::") {
		return "", "", false
	}
	if i := strings.IndexByte(cast, '('); i >= 0 {
		cast = cast[:i]
	}
	return strings.ReplaceAll(info[1:end], "''", "'"), strings.TrimSpace(cast), true
}

func number(s string) (any, bool) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !strings.ContainsAny(s, "xXnNiI") {
		return f, true
	}
	return nil, false
}
