// Package extutil provides shared helpers for the ext sub-packages.
package extutil

import (
	"context"
	"math"
	"reflect"

	"github.com/sandrolain/gojunqi/pkg/functions"
	"github.com/sandrolain/gojunqi/pkg/loose"
)

// AsList returns v as a list. Any Go slice or array is accepted; other values
// report false.
func AsList(v interface{}) ([]interface{}, bool) {
	switch l := v.(type) {
	case nil:
		return nil, false
	case []interface{}:
		return l, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// Numbers converts every element of list to a number.
func Numbers(list []interface{}) []float64 {
	out := make([]float64, len(list))
	for i, v := range list {
		out[i] = loose.ToNumber(v)
	}
	return out
}

// Arg returns args[i], or nil when the argument was not supplied.
func Arg(args []interface{}, i int) interface{} {
	if i < len(args) {
		return args[i]
	}
	return nil
}

// Unary builds a one-argument numeric function. The argument is coerced with
// loose.ToNumber.
func Unary(name string, fn func(float64) float64) functions.Def {
	return functions.Def{
		Name:    name,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(_ context.Context, _ functions.Call, args ...interface{}) (interface{}, error) {
			return fn(loose.ToNumber(args[0])), nil
		},
	}
}

// Binary builds a two-argument numeric function.
func Binary(name string, fn func(float64, float64) float64) functions.Def {
	return functions.Def{
		Name:    name,
		MinArgs: 2,
		MaxArgs: 2,
		Fn: func(_ context.Context, _ functions.Call, args ...interface{}) (interface{}, error) {
			return fn(loose.ToNumber(args[0]), loose.ToNumber(args[1])), nil
		},
	}
}

// Reduce builds a one-argument aggregate. A list is handed to fn; a number
// passes through unchanged and anything else yields NaN.
func Reduce(name string, fn func(list []interface{}) interface{}) functions.Def {
	return functions.Def{
		Name:    name,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(_ context.Context, _ functions.Call, args ...interface{}) (interface{}, error) {
			list, ok := AsList(args[0])
			if !ok {
				if n, isNum := loose.Number(args[0]); isNum {
					return n, nil
				}
				return math.NaN(), nil
			}
			return fn(list), nil
		},
	}
}
