package loader

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/ridoystarlord/schemasync/schema"
)

// TagKey is the struct tag read by LoadStructs.
const TagKey = "schemasync"

// LoadStructs builds a declaration from the Go structs in dir. Every struct
// with at least one tagged field becomes a table; untagged fields and fields
// tagged "-" are skipped. A tag is a ;-separated list:
//
//	ID     string    `schemasync:"type:varchar(36);primary"`
//	Author string    `schemasync:"column:author_id;type:varchar(36);fk:users;not_null"`
//	At     time.Time `schemasync:"default_expr:now()"`
func LoadStructs(dir string) (schema.Definition, error) {
	var def schema.Definition

	if _, err := os.Stat(dir); err != nil {
		return def, fmt.Errorf("models directory %q: %w", dir, err)
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		tables, err := parseGoFile(path)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}
		def.Tables = append(def.Tables, tables...)
		return nil
	})
	if err != nil {
		return schema.Definition{}, fmt.Errorf("failed to load models: %w", err)
	}
	return def, nil
}

func parseGoFile(path string) ([]schema.TableSpec, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, 0)
	if err != nil {
		return nil, err
	}

	var tables []schema.TableSpec
	var parseErr error
	ast.Inspect(file, func(n ast.Node) bool {
		spec, ok := n.(*ast.TypeSpec)
		if !ok || parseErr != nil {
			return parseErr == nil
		}
		st, ok := spec.Type.(*ast.StructType)
		if !ok {
			return true
		}

		table, err := parseStruct(spec.Name.Name, st)
		if err != nil {
			parseErr = fmt.Errorf("struct %s: %w", spec.Name.Name, err)
			return false
		}
		if len(table.Columns) > 0 {
			tables = append(tables, table)
		}
		return true
	})
	return tables, parseErr
}

func parseStruct(name string, st *ast.StructType) (schema.TableSpec, error) {
	table := schema.TableSpec{Name: tableName(name)}

	for _, field := range st.Fields.List {
		if len(field.Names) == 0 || field.Tag == nil {
			continue
		}
		fieldName := field.Names[0].Name
		if !ast.IsExported(fieldName) {
			continue
		}

		raw, err := strconv.Unquote(field.Tag.Value)
		if err != nil {
			return table, fmt.Errorf("field %s: malformed tag: %w", fieldName, err)
		}
		tag, ok := reflect.StructTag(raw).Lookup(TagKey)
		if !ok || tag == "-" {
			continue
		}

		col, err := parseTag(tag)
		if err != nil {
			return table, fmt.Errorf("field %s: %w", fieldName, err)
		}
		if col.Name == "" {
			col.Name = toSnakeCase(fieldName)
		}
		if col.Type == "" {
			col.Type = inferDataType(fieldType(field.Type))
		}
		table.Columns = append(table.Columns, col)
	}
	return table, nil
}

// parseTag reads "column:name;type:text;primary;unique;not_null;default:value;fk:table".
func parseTag(tag string) (schema.ColumnSpec, error) {
	var col schema.ColumnSpec

	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, hasValue := strings.Cut(part, ":")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !hasValue {
			switch key {
			case "primary":
				col.Primary = schema.Ptr(true)
			case "unique":
				col.Unique = schema.Ptr(true)
			case "not_null":
				col.Nullable = schema.Ptr(false)
			case "null":
				col.Nullable = schema.Ptr(true)
			default:
				return col, fmt.Errorf("unknown flag %q", key)
			}
			continue
		}

		switch key {
		case "column":
			col.Name = value
		case "type":
			col.Type = value
		case "length":
			n, err := strconv.Atoi(value)
			if err != nil {
				return col, fmt.Errorf("length %q: %w", value, err)
			}
			col.Length = &n
		case "default":
			col.Default = value
		case "default_expr":
			col.Default = schema.Expression(value)
		case "fk":
			// table or table.column; only the table is tracked.
			ref, _, _ := strings.Cut(value, ".")
			col.References = schema.Ptr(ref)
		default:
			return col, fmt.Errorf("unknown key %q", key)
		}
	}
	return col, nil
}

func fieldType(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return fieldType(t.X)
	case *ast.ArrayType:
		return "[]" + fieldType(t.Elt)
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok {
			return x.Name + "." + t.Sel.Name
		}
	}
	return ""
}

// tableName converts a struct name to a plural snake_case table name.
func tableName(structName string) string {
	name := toSnakeCase(structName)
	switch {
	case strings.HasSuffix(name, "y"):
		return strings.TrimSuffix(name, "y") + "ies"
	case strings.HasSuffix(name, "s"):
		return name
	}
	return name + "s"
}

func inferDataType(goType string) string {
	switch goType {
	case "int", "int32":
		return "integer"
	case "int16":
		return "smallint"
	case "int64":
		return "bigint"
	case "string":
		return "text"
	case "bool":
		return "boolean"
	case "float32":
		return "real"
	case "float64":
		return "double precision"
	case "time.Time":
		return "timestamptz"
	case "uuid.UUID":
		return "uuid"
	case "[]byte":
		return "bytea"
	}
	if strings.HasPrefix(goType, "[]") {
		return "jsonb"
	}
	return "text"
}

func toSnakeCase(s string) string {
	var b strings.Builder
	var prev rune
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' && (prev >= 'a' && prev <= 'z' || prev >= '0' && prev <= '9') {
			b.WriteByte('_')
		}
		b.WriteRune(r)
		prev = r
	}
	return strings.ToLower(b.String())
}
