package compiler

import (
	"context"

	"github.com/sandrolain/gojunqi/pkg/loose"
)

// EvalFunc computes a value for one record.
type EvalFunc func(ctx context.Context, value interface{}, scope *Scope) (interface{}, error)

// Evaluator is a compiled expression: a constant or a per-record function.
//
// Constants are produced whenever every operand of an expression is itself
// constant and the operator has no side effects. A constant never inspects
// the record or scope it is evaluated with.
type Evaluator struct {
	fn       EvalFunc
	constant interface{}
}

// Constant returns an evaluator that always yields v.
func Constant(v interface{}) Evaluator {
	return Evaluator{constant: v}
}

// Dynamic returns an evaluator computed by fn.
func Dynamic(fn EvalFunc) Evaluator {
	return Evaluator{fn: fn}
}

// IsConstant reports whether e ignores its inputs.
func (e Evaluator) IsConstant() bool {
	return e.fn == nil
}

// Value returns the value of a constant evaluator. Lists and objects are
// copied so callers never share the folded template.
func (e Evaluator) Value() interface{} {
	return cloneValue(e.constant)
}

// Eval evaluates e for one record.
func (e Evaluator) Eval(ctx context.Context, value interface{}, scope *Scope) (interface{}, error) {
	if e.fn == nil {
		return cloneValue(e.constant), nil
	}
	return e.fn(ctx, value, scope)
}

// allConstant reports whether every evaluator in es is constant.
func allConstant(es []Evaluator) bool {
	for _, e := range es {
		if !e.IsConstant() {
			return false
		}
	}
	return true
}

// evalAll evaluates es in order, stopping at the first error.
func evalAll(ctx context.Context, es []Evaluator, value interface{}, scope *Scope) ([]interface{}, error) {
	out := make([]interface{}, len(es))
	for i, e := range es {
		v, err := e.Eval(ctx, value, scope)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// normalizeLiteral returns a copy of v with every Go numeric kind turned
// into float64. Trees that differ only in numeric kind share a cache key, so
// they must also compile to the same value.
func normalizeLiteral(v interface{}) interface{} {
	switch x := v.(type) {
	case float64:
		return x
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, item := range x {
			out[i] = normalizeLiteral(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, item := range x {
			out[k] = normalizeLiteral(item)
		}
		return out
	}
	if f, ok := loose.Number(v); ok {
		return f
	}
	return v
}

// cloneValue deep-copies lists and objects; other values are returned as is.
func cloneValue(v interface{}) interface{} {
	switch x := v.(type) {
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, item := range x {
			out[k] = cloneValue(item)
		}
		return out
	}
	return v
}
