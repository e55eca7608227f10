package ecs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// Value is one node of a parsed document tree. A document is immutable after
// Parse; every consumer switches on Kind rather than type-asserting raw
// interface values.
type Value struct {
	Kind   Kind
	Bool   bool
	Number json.Number
	Str    string
	Array  []*Value
	Object map[string]*Value
}

// Parse decodes a single JSON document into a Value tree. Numbers keep their
// original literal form.
func Parse(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("JSON parse: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("JSON parse: trailing data after document")
	}

	return fromInterface(raw), nil
}

func fromInterface(raw interface{}) *Value {
	switch v := raw.(type) {
	case nil:
		return &Value{Kind: KindNull}
	case bool:
		return &Value{Kind: KindBool, Bool: v}
	case json.Number:
		return &Value{Kind: KindNumber, Number: v}
	case string:
		return &Value{Kind: KindString, Str: v}
	case []interface{}:
		arr := make([]*Value, 0, len(v))
		for _, item := range v {
			arr = append(arr, fromInterface(item))
		}
		return &Value{Kind: KindArray, Array: arr}
	case map[string]interface{}:
		obj := make(map[string]*Value, len(v))
		for k, item := range v {
			obj[k] = fromInterface(item)
		}
		return &Value{Kind: KindObject, Object: obj}
	default:
		// encoding/json never produces anything else
		return &Value{Kind: KindNull}
	}
}

// IsNull reports whether the value is absent or an explicit null.
func (v *Value) IsNull() bool {
	return v == nil || v.Kind == KindNull
}

// Member returns the named member of an object value, or nil when the value
// is not an object or the key is absent.
func (v *Value) Member(key string) *Value {
	if v == nil || v.Kind != KindObject {
		return nil
	}
	return v.Object[key]
}

// Lookup resolves a chain of member names. A missing intermediate object
// resolves to nil rather than failing.
func (v *Value) Lookup(keys ...string) *Value {
	cur := v
	for _, k := range keys {
		cur = cur.Member(k)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// LookupPath resolves a dot-joined member path, e.g. "event.category".
func (v *Value) LookupPath(path string) *Value {
	if path == "" {
		return nil
	}
	return v.Lookup(strings.Split(path, ".")...)
}

// Flat is one flattened leaf: a dot-joined path and the value found there.
type Flat struct {
	Path  string
	Value *Value
}

// Flatten walks the tree and returns every non-object leaf keyed by its
// dot-joined path. Arrays are kept whole at their path. Sibling keys are
// visited in sorted order so the result is deterministic.
func (v *Value) Flatten() []Flat {
	var out []Flat
	flattenInto(v, "", &out)
	return out
}

func flattenInto(v *Value, prefix string, out *[]Flat) {
	if v == nil {
		return
	}
	if v.Kind != KindObject {
		*out = append(*out, Flat{Path: prefix, Value: v})
		return
	}
	keys := make([]string, 0, len(v.Object))
	for k := range v.Object {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		flattenInto(v.Object[k], path, out)
	}
}

// WalkScalars calls fn for every scalar leaf (null excluded) anywhere in the
// tree, including inside arrays. It stops early when fn returns false.
func (v *Value) WalkScalars(fn func(*Value) bool) bool {
	if v == nil {
		return true
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindObject:
		for _, member := range v.Object {
			if !member.WalkScalars(fn) {
				return false
			}
		}
		return true
	case KindArray:
		for _, item := range v.Array {
			if !item.WalkScalars(fn) {
				return false
			}
		}
		return true
	default:
		return fn(v)
	}
}

// Render produces the matching/display form of a value: scalars as their
// literal text, arrays and objects as compact JSON, null as the empty string.
func (v *Value) Render() string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case KindNull:
		return ""
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return v.Number.String()
	case KindString:
		return v.Str
	default:
		data, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// MarshalJSON re-encodes the tree as compact JSON with object keys sorted.
func (v *Value) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	switch v.Kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.Bool)
	case KindNumber:
		return []byte(v.Number.String()), nil
	case KindString:
		return json.Marshal(v.Str)
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.Array {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindObject:
		keys := make([]string, 0, len(v.Object))
		for k := range v.Object {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			name, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(name)
			buf.WriteByte(':')
			data, err := v.Object[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.Kind)
	}
}
