// Package loader reads and writes schema declarations.
//
// A YAML declaration maps table names to column maps. A column is either a
// bare type name or a mapping of attributes:
//
//	posts:
//	  id: { type: varchar, primary: true }
//	  title: { type: text, nullable: false, default: "Hello, World!" }
//	  created_at: { type: timestamptz, default: !expr now() }
//	  author: { type: varchar(36), references: users }
//
// The !expr tag marks a default that is SQL rather than a literal.
package loader

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/schemasync/schema"
)

// ExprTag marks a raw SQL default expression.
const ExprTag = "!expr"

// LoadYAML reads a declaration file.
func LoadYAML(filename string) (schema.Definition, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return schema.Definition{}, fmt.Errorf("reading schema file: %w", err)
	}
	def, err := ParseYAML(data)
	if err != nil {
		return schema.Definition{}, fmt.Errorf("%s: %w", filename, err)
	}
	return def, nil
}

// ParseYAML decodes a declaration, keeping tables and columns in document order.
func ParseYAML(data []byte) (schema.Definition, error) {
	var def schema.Definition

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return def, fmt.Errorf("unmarshalling YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return def, nil
	}

	root := resolve(doc.Content[0])
	if isNull(root) {
		return def, nil
	}
	if root.Kind != yaml.MappingNode {
		return def, fmt.Errorf("line %d: schema must be a mapping of table names", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		name, body := root.Content[i].Value, resolve(root.Content[i+1])
		table := schema.TableSpec{Name: name}

		if !isNull(body) {
			if body.Kind != yaml.MappingNode {
				return def, fmt.Errorf("line %d: table %q must be a mapping of column names", body.Line, name)
			}
			for j := 0; j+1 < len(body.Content); j += 2 {
				col, err := parseColumn(body.Content[j].Value, resolve(body.Content[j+1]))
				if err != nil {
					return def, fmt.Errorf("table %q: %w", name, err)
				}
				table.Columns = append(table.Columns, col)
			}
		}
		def.Tables = append(def.Tables, table)
	}
	return def, nil
}

func parseColumn(name string, node *yaml.Node) (schema.ColumnSpec, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() != "!!str" {
			return schema.ColumnSpec{}, fmt.Errorf("line %d: column %q: shorthand type must be a string", node.Line, name)
		}
		return schema.Shorthand(name, node.Value), nil
	case yaml.MappingNode:
	default:
		return schema.ColumnSpec{}, fmt.Errorf("line %d: column %q must be a type name or a mapping", node.Line, name)
	}

	spec := schema.ColumnSpec{Name: name}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, resolve(node.Content[i+1])
		var err error

		switch schema.Attribute(key) {
		case schema.AttrType:
			err = value.Decode(&spec.Type)
		case schema.AttrPrimary:
			spec.Primary, err = decodePtr[bool](value)
		case schema.AttrLength:
			spec.Length, err = decodePtr[int](value)
		case schema.AttrUnique:
			spec.Unique, err = decodePtr[bool](value)
		case schema.AttrReferences:
			spec.References, err = decodePtr[string](value)
		case schema.AttrNullable:
			spec.Nullable, err = decodePtr[bool](value)
		case schema.AttrDefault:
			spec.Default, err = scalar(value)
		default:
			err = fmt.Errorf("unknown attribute")
		}
		if err != nil {
			return spec, fmt.Errorf("line %d: column %q: %s: %w", value.Line, name, key, err)
		}
	}
	return spec, nil
}

func decodePtr[T any](node *yaml.Node) (*T, error) {
	if isNull(node) {
		return nil, nil
	}
	var v T
	if err := node.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// scalar decodes a default value by its resolved tag.
func scalar(node *yaml.Node) (any, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("default must be a scalar")
	}

	switch node.Tag {
	case ExprTag:
		return schema.Expression(node.Value), nil
	}

	switch node.ShortTag() {
	case "!!null":
		return nil, nil
	case "!!str":
		return node.Value, nil
	case "!!bool":
		var b bool
		err := node.Decode(&b)
		return b, err
	case "!!int":
		var n int64
		err := node.Decode(&n)
		return n, err
	case "!!float":
		var f float64
		err := node.Decode(&f)
		return f, err
	}
	return nil, fmt.Errorf("unsupported tag %s", node.Tag)
}

func resolve(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

// DumpYAML renders def as a declaration. Columns that carry nothing beyond
// their type use the shorthand form.
func DumpYAML(def schema.Definition) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	for _, table := range def.Tables {
		columns := &yaml.Node{Kind: yaml.MappingNode}
		for _, col := range table.Columns {
			node, err := columnNode(col)
			if err != nil {
				return nil, fmt.Errorf("table %q: %w", table.Name, err)
			}
			columns.Content = append(columns.Content, stringNode(col.Name), node)
		}
		root.Content = append(root.Content, stringNode(table.Name), columns)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	return buf.Bytes(), nil
}

func columnNode(col schema.ColumnSpec) (*yaml.Node, error) {
	typ := col.Type
	if col.Length != nil {
		typ = fmt.Sprintf("%s(%d)", col.Type, *col.Length)
	}

	var attrs []*yaml.Node
	add := func(key schema.Attribute, value *yaml.Node) {
		attrs = append(attrs, stringNode(string(key)), value)
	}

	if col.Primary != nil && *col.Primary {
		add(schema.AttrPrimary, boolNode(true))
	}
	if col.Unique != nil && *col.Unique {
		add(schema.AttrUnique, boolNode(true))
	}
	if col.References != nil && *col.References != "" {
		add(schema.AttrReferences, stringNode(*col.References))
	}
	// Primary keys are never nullable, so only non-key columns need saying so.
	if col.Nullable != nil && !*col.Nullable && (col.Primary == nil || !*col.Primary) {
		add(schema.AttrNullable, boolNode(false))
	}
	if col.Default != nil {
		node, err := defaultNode(col.Default)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", col.Name, err)
		}
		add(schema.AttrDefault, node)
	}

	if len(attrs) == 0 {
		return stringNode(typ), nil
	}
	return &yaml.Node{
		Kind:    yaml.MappingNode,
		Style:   yaml.FlowStyle,
		Content: append([]*yaml.Node{stringNode(string(schema.AttrType)), stringNode(typ)}, attrs...),
	}, nil
}

func defaultNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case schema.Expression:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: ExprTag, Value: string(val)}, nil
	case string:
		return stringNode(val), nil
	}
	node := &yaml.Node{}
	if err := node.Encode(v); err != nil {
		return nil, err
	}
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("default %v is not a scalar", v)
	}
	return node, nil
}

func stringNode(s string) *yaml.Node {
	node := &yaml.Node{}
	node.SetString(s)
	return node
}

func boolNode(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: fmt.Sprint(b)}
}
