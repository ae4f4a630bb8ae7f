package compiler

import (
	"context"
	"reflect"
	"strconv"
	"unicode/utf16"

	"github.com/sandrolain/gojunqi/pkg/loose"
	"github.com/sandrolain/gojunqi/pkg/types"
)

// pathKey is one key component of a path. Constant components are
// converted to their string form once.
type pathKey struct {
	name     string
	constant bool
	eval     Evaluator
}

func (k pathKey) resolve(ctx context.Context, value interface{}, scope *Scope) (string, error) {
	if k.constant {
		return k.name, nil
	}
	v, err := k.eval.Eval(ctx, value, scope)
	if err != nil {
		return "", err
	}
	return loose.ToString(v), nil
}

// compilePath compiles a member-access chain rooted at the current record,
// a positional parameter or a named binding.
func (c *Compiler) compilePath(n *types.Node) (Evaluator, error) {
	keys := make([]pathKey, len(n.Args))
	for i, arg := range n.Args {
		e, err := c.compileNode(arg)
		if err != nil {
			return Evaluator{}, err
		}
		if e.IsConstant() {
			keys[i] = pathKey{name: loose.ToString(e.Value()), constant: true}
		} else {
			keys[i] = pathKey{eval: e}
		}
	}

	var root EvalFunc
	switch n.Type {
	case types.NodeLocalPath:
		root = func(_ context.Context, value interface{}, _ *Scope) (interface{}, error) {
			return value, nil
		}
	case types.NodeParamPath:
		index := n.Index
		if index < 0 {
			return Evaluator{}, types.Errorf(types.ErrMalformedNode, "negative parameter index %d", index).
				WithToken(string(n.Type))
		}
		root = func(_ context.Context, _ interface{}, scope *Scope) (interface{}, error) {
			v, _ := scope.Param(index)
			return v, nil
		}
	case types.NodeSymbolPath:
		name := n.Name
		if name == "" {
			return Evaluator{}, types.NewError(types.ErrMalformedNode, "symbol path requires a name", -1).
				WithToken(string(n.Type))
		}
		root = func(_ context.Context, _ interface{}, scope *Scope) (interface{}, error) {
			v, _ := scope.Lookup(name)
			return v, nil
		}
	}

	return Dynamic(func(ctx context.Context, value interface{}, scope *Scope) (interface{}, error) {
		cur, err := root(ctx, value, scope)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			if list, ok := cur.([]interface{}); ok {
				if len(list) == 0 {
					return nil, nil
				}
				cur = list[0]
			}
			if loose.IsNullish(cur) {
				return cur, nil
			}
			key, err := k.resolve(ctx, value, scope)
			if err != nil {
				return nil, err
			}
			cur = member(cur, key)
		}
		return cur, nil
	}), nil
}

// member returns the member key of v. Objects are indexed by key, strings
// by UTF-16 code unit position (plus "length"); anything else has no
// members.
func member(v interface{}, key string) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		return x[key]
	case string:
		units := utf16.Encode([]rune(x))
		if key == "length" {
			return float64(len(units))
		}
		if i, ok := arrayIndex(key); ok && i < len(units) {
			return string(utf16.Decode(units[i : i+1]))
		}
		return nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if mv.IsValid() {
			return mv.Interface()
		}
	}
	return nil
}

// arrayIndex parses key as a canonical non-negative integer ("0", "12",
// but not "01" or "+1").
func arrayIndex(key string) (int, bool) {
	i, err := strconv.Atoi(key)
	if err != nil || i < 0 || strconv.Itoa(i) != key {
		return 0, false
	}
	return i, true
}
