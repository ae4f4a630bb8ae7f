// Package codec reads and writes query trees and data documents.
//
// Trees travel as JSON or YAML documents. Scalars are literals; every
// other expression is an object tagged with "op", and every pipeline step
// an object tagged with "step":
//
//	{"op": "steps", "steps": [
//	    {"step": "filter", "expr": {"op": "gt", "args": [{"op": "local-path", "path": ["age"]}, 40]}},
//	    {"step": "select", "exprs": [{"op": "local-path", "path": ["name"]}]}
//	]}
//
// Lists and objects used as literal values are written as
// {"op": "literal", "value": ...}. Unknown tags are decoded as is so that
// the compiler can report them.
package codec

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"

	"github.com/sandrolain/gojunqi/pkg/types"
)

// Format identifies a document syntax.
type Format int

// Supported formats.
const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// FormatFor picks a format from a file name. Anything that is not .yaml or
// .yml is read as JSON.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode parses a document into plain values. Numbers become float64 and
// null becomes types.NullValue.
func Decode(b []byte, f Format) (interface{}, error) {
	var raw interface{}
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(b, &raw); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		v, err := oj.Parse(b)
		if err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		raw = v
	}
	return Normalize(raw), nil
}

// DecodeJSON decodes a tree from JSON.
func DecodeJSON(b []byte) (*types.Node, error) {
	return DecodeTree(b, FormatJSON)
}

// DecodeYAML decodes a tree from YAML.
func DecodeYAML(b []byte) (*types.Node, error) {
	return DecodeTree(b, FormatYAML)
}

// DecodeTree decodes a tree document in format f.
func DecodeTree(b []byte, f Format) (*types.Node, error) {
	v, err := Decode(b, f)
	if err != nil {
		return nil, err
	}
	return DecodeValue(v)
}

// DecodeData decodes a data document, which must be a list of records.
func DecodeData(b []byte, f Format) ([]interface{}, error) {
	v, err := Decode(b, f)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil, types.NewError(types.ErrInvalidInput, "data document must be a list", -1).
			WithToken(fmt.Sprintf("%T", v))
	}
	return list, nil
}

// SelectRecords extracts the records at a JSONPath expression from doc. A
// single match that is a list is used as the record list; otherwise every
// match is one record.
func SelectRecords(doc interface{}, path string) ([]interface{}, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("parse records path %q: %w", path, err)
	}
	matches := x.Get(doc)
	if len(matches) == 1 {
		if list, ok := matches[0].([]interface{}); ok {
			return list, nil
		}
	}
	if matches == nil {
		matches = []interface{}{}
	}
	return matches, nil
}

// Normalize converts decoded values to the engine's value model: float64
// numbers, string-keyed maps and types.NullValue for null.
func Normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return types.NullValue
	case map[string]interface{}:
		for k, item := range x {
			x[k] = Normalize(item)
		}
		return x
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, item := range x {
			out[fmt.Sprint(k)] = Normalize(item)
		}
		return out
	case []interface{}:
		for i, item := range x {
			x[i] = Normalize(item)
		}
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case float32:
		return float64(x)
	}
	return v
}

// Plain converts engine values to values any JSON writer understands:
// explicit and absent nulls both become nil.
func Plain(v interface{}) interface{} {
	switch x := v.(type) {
	case types.Null:
		return nil
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, item := range x {
			out[k] = Plain(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, item := range x {
			out[i] = Plain(item)
		}
		return out
	}
	return v
}

// Marshal writes v as JSON with sorted keys. indent <= 0 writes compact
// output.
func Marshal(v interface{}, indent int) ([]byte, error) {
	opts := oj.Options{Sort: true, Indent: indent}
	if indent < 0 {
		opts.Indent = 0
	}
	return oj.Marshal(Plain(v), &opts)
}
