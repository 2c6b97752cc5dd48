package schema

import (
	"fmt"
	"sort"
)

// Attribute names one field of a column definition.
type Attribute string

const (
	AttrType       Attribute = "type"
	AttrPrimary    Attribute = "primary"
	AttrLength     Attribute = "length"
	AttrUnique     Attribute = "unique"
	AttrReferences Attribute = "references"
	AttrNullable   Attribute = "nullable"
	AttrDefault    Attribute = "default"
)

// AttributeOrder is the order attributes are listed in.
var AttributeOrder = []Attribute{
	AttrType, AttrPrimary, AttrLength, AttrUnique, AttrReferences, AttrNullable, AttrDefault,
}

// Attributes is a partial column definition. A key that is absent is
// unknown, which is different from a key holding nil.
type Attributes map[Attribute]any

// Has reports whether key is present, even with a nil value.
func (a Attributes) Has(key Attribute) bool {
	_, ok := a[key]
	return ok
}

// Bool reports whether key holds true.
func (a Attributes) Bool(key Attribute) bool {
	b, _ := a[key].(bool)
	return b
}

// String returns the string held by key, or "".
func (a Attributes) String(key Attribute) string {
	s, _ := a[key].(string)
	return s
}

// Int returns the int held by key, or 0.
func (a Attributes) Int(key Attribute) int {
	n, _ := a[key].(int)
	return n
}

// SQLType renders the type and length held in a, e.g. integer or character varying(36).
func (a Attributes) SQLType() string {
	if n := a.Int(AttrLength); n > 0 {
		return fmt.Sprintf("%s(%d)", a.String(AttrType), n)
	}
	return a.String(AttrType)
}

// Keys returns the present keys, known attributes first in AttributeOrder.
func (a Attributes) Keys() []Attribute {
	keys := make([]Attribute, 0, len(a))
	known := map[Attribute]bool{}
	for _, k := range AttributeOrder {
		known[k] = true
		if a.Has(k) {
			keys = append(keys, k)
		}
	}
	var extra []Attribute
	for k := range a {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(keys, extra...)
}
