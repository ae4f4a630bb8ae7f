package codec

import (
	"fmt"
	"math"
	"strings"

	"github.com/ohler55/ojg/oj"

	"github.com/sandrolain/gojunqi/pkg/loose"
	"github.com/sandrolain/gojunqi/pkg/types"
)

// DecodeValue converts a decoded document into a tree.
func DecodeValue(v interface{}) (*types.Node, error) {
	return decodeNode(v, "$")
}

func decodeNode(v interface{}, at string) (*types.Node, error) {
	switch x := v.(type) {
	case map[string]interface{}:
		return decodeTagged(x, at)
	case []interface{}:
		return nil, fmt.Errorf("%s: lists must be wrapped in a literal node", at)
	case nil:
		return types.Lit(types.NullValue), nil
	}
	return types.Lit(v), nil
}

func decodeTagged(m map[string]interface{}, at string) (*types.Node, error) {
	op, ok := m["op"].(string)
	if !ok || op == "" {
		return nil, fmt.Errorf("%s: object without an \"op\" tag", at)
	}
	tag := types.NodeType(op)
	n := &types.Node{Type: tag}

	var err error
	switch tag {
	case types.NodeLiteral:
		if value, ok := m["value"]; ok {
			n.Value = value
			if value == nil {
				n.Value = types.NullValue
			}
		}
		return n, nil

	case types.NodeLocalPath, types.NodeParamPath, types.NodeSymbolPath:
		if n.Args, err = decodeList(m, "path", at); err != nil {
			return nil, err
		}
		switch tag {
		case types.NodeParamPath:
			if n.Index, err = decodeIndex(m["index"], at); err != nil {
				return nil, err
			}
		case types.NodeSymbolPath:
			if n.Name, err = decodeString(m, "name", at); err != nil {
				return nil, err
			}
		}

	case types.NodeObject:
		fields, _ := m["fields"].([]interface{})
		for i, f := range fields {
			fm, ok := f.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s.fields[%d]: expected an object", at, i)
			}
			key, err := decodeString(fm, "key", fmt.Sprintf("%s.fields[%d]", at, i))
			if err != nil {
				return nil, err
			}
			value, err := decodeNode(fm["value"], fmt.Sprintf("%s.fields[%d].value", at, i))
			if err != nil {
				return nil, err
			}
			n.Fields = append(n.Fields, types.Field{Key: key, Value: value})
		}

	case types.NodeArray, types.NodeMerge:
		if n.Args, err = decodeList(m, "items", at); err != nil {
			return nil, err
		}

	case types.NodeCall:
		if n.Name, err = decodeString(m, "name", at); err != nil {
			return nil, err
		}
		if n.Args, err = decodeList(m, "args", at); err != nil {
			return nil, err
		}

	case types.NodeSteps:
		if n.Steps, err = decodeSteps(m, at); err != nil {
			return nil, err
		}

	case types.NodeSubquery:
		if n.Input, err = decodeNode(m["input"], at+".input"); err != nil {
			return nil, err
		}
		if n.Steps, err = decodeSteps(m, at); err != nil {
			return nil, err
		}

	default:
		// Operators, and unknown tags left for the compiler to reject.
		if n.Args, err = decodeList(m, "args", at); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func decodeList(m map[string]interface{}, key, at string) ([]*types.Node, error) {
	raw, ok := m[key]
	if !ok {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s.%s: expected a list", at, key)
	}
	out := make([]*types.Node, len(list))
	for i, item := range list {
		n, err := decodeNode(item, fmt.Sprintf("%s.%s[%d]", at, key, i))
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func decodeString(m map[string]interface{}, key, at string) (string, error) {
	s, ok := m[key].(string)
	if !ok {
		return "", fmt.Errorf("%s.%s: expected a string", at, key)
	}
	return s, nil
}

func decodeIndex(v interface{}, at string) (int, error) {
	f, ok := loose.Number(v)
	if !ok || f != math.Trunc(f) {
		return 0, fmt.Errorf("%s.index: expected an integer", at)
	}
	return int(f), nil
}

func decodeSteps(m map[string]interface{}, at string) ([]*types.Step, error) {
	raw, ok := m["steps"]
	if !ok {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%s.steps: expected a list", at)
	}
	out := make([]*types.Step, len(list))
	for i, item := range list {
		sat := fmt.Sprintf("%s.steps[%d]", at, i)
		sm, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: expected an object", sat)
		}
		st, err := decodeStep(sm, sat)
		if err != nil {
			return nil, err
		}
		out[i] = st
	}
	return out, nil
}

func decodeStep(m map[string]interface{}, at string) (*types.Step, error) {
	tag, ok := m["step"].(string)
	if !ok || tag == "" {
		return nil, fmt.Errorf("%s: object without a \"step\" tag", at)
	}
	st := &types.Step{Type: types.StepType(tag)}

	var err error
	switch st.Type {
	case types.StepFilter:
		if _, ok := m["exprs"]; ok {
			if st.Exprs, err = decodeList(m, "exprs", at); err != nil {
				return nil, err
			}
			break
		}
		expr, err := decodeNode(m["expr"], at+".expr")
		if err != nil {
			return nil, err
		}
		st.Exprs = []*types.Node{expr}

	case types.StepSort:
		keys, _ := m["keys"].([]interface{})
		for i, k := range keys {
			kat := fmt.Sprintf("%s.keys[%d]", at, i)
			km, ok := k.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: expected an object", kat)
			}
			expr, err := decodeNode(km["expr"], kat+".expr")
			if err != nil {
				return nil, err
			}
			desc, _ := km["desc"].(bool)
			st.Keys = append(st.Keys, types.SortKey{Expr: expr, Ascending: !desc})
		}

	case types.StepAggregate:
		names, _ := m["names"].([]interface{})
		for i, name := range names {
			s, ok := name.(string)
			if !ok {
				return nil, fmt.Errorf("%s.names[%d]: expected a string", at, i)
			}
			st.Names = append(st.Names, s)
		}

	default:
		if st.Exprs, err = decodeList(m, "exprs", at); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// Encode converts a tree to plain values in the document form read by
// DecodeValue.
func Encode(n *types.Node) interface{} {
	if n == nil {
		return nil
	}
	if n.Type == types.NodeLiteral {
		return encodeLiteral(n.Value)
	}

	m := map[string]interface{}{"op": string(n.Type)}
	switch n.Type {
	case types.NodeLocalPath, types.NodeParamPath, types.NodeSymbolPath:
		m["path"] = encodeList(n.Args)
		switch n.Type {
		case types.NodeParamPath:
			m["index"] = float64(n.Index)
		case types.NodeSymbolPath:
			m["name"] = n.Name
		}
	case types.NodeObject:
		fields := make([]interface{}, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = map[string]interface{}{"key": f.Key, "value": Encode(f.Value)}
		}
		m["fields"] = fields
	case types.NodeArray, types.NodeMerge:
		m["items"] = encodeList(n.Args)
	case types.NodeCall:
		m["name"] = n.Name
		m["args"] = encodeList(n.Args)
	case types.NodeSteps:
		m["steps"] = encodeSteps(n.Steps)
	case types.NodeSubquery:
		m["input"] = Encode(n.Input)
		m["steps"] = encodeSteps(n.Steps)
	default:
		m["args"] = encodeList(n.Args)
	}
	return m
}

func encodeLiteral(v interface{}) interface{} {
	switch v.(type) {
	case nil:
		return map[string]interface{}{"op": string(types.NodeLiteral)}
	case types.Null:
		return nil
	case string, bool:
		return v
	}
	if f, ok := loose.Number(v); ok {
		return f
	}
	return map[string]interface{}{"op": string(types.NodeLiteral), "value": v}
}

func encodeList(nodes []*types.Node) []interface{} {
	out := make([]interface{}, len(nodes))
	for i, n := range nodes {
		out[i] = Encode(n)
	}
	return out
}

func encodeSteps(steps []*types.Step) []interface{} {
	out := make([]interface{}, len(steps))
	for i, st := range steps {
		if st == nil {
			continue
		}
		m := map[string]interface{}{"step": string(st.Type)}
		switch st.Type {
		case types.StepFilter:
			if len(st.Exprs) == 1 {
				m["expr"] = Encode(st.Exprs[0])
			} else {
				m["exprs"] = encodeList(st.Exprs)
			}
		case types.StepSort:
			keys := make([]interface{}, len(st.Keys))
			for j, k := range st.Keys {
				km := map[string]interface{}{"expr": Encode(k.Expr)}
				if !k.Ascending {
					km["desc"] = true
				}
				keys[j] = km
			}
			m["keys"] = keys
		case types.StepAggregate:
			names := make([]interface{}, len(st.Names))
			for j, name := range st.Names {
				names[j] = name
			}
			m["names"] = names
		default:
			m["exprs"] = encodeList(st.Exprs)
		}
		out[i] = m
	}
	return out
}

// EncodeJSON writes a tree as compact JSON with sorted keys. Equal trees
// produce equal strings, so the output doubles as a cache fingerprint.
func EncodeJSON(n *types.Node) (string, error) {
	b, err := oj.Marshal(Plain(Encode(n)), &oj.Options{Sort: true})
	if err != nil {
		return "", fmt.Errorf("encode tree: %w", err)
	}
	return string(b), nil
}

// Describe renders a one-line summary of a tree for logs.
func Describe(n *types.Node) string {
	if n == nil {
		return "<nil>"
	}
	if n.Type != types.NodeSteps {
		return n.String()
	}
	tags := make([]string, len(n.Steps))
	for i, st := range n.Steps {
		tags[i] = st.String()
	}
	return "steps[" + strings.Join(tags, " -> ") + "]"
}
