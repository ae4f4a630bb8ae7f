package extaggregate_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojunqi/pkg/ext/extaggregate"
	"github.com/sandrolain/gojunqi/pkg/functions"
)

func call(t *testing.T, def functions.Def, arg interface{}) interface{} {
	t.Helper()
	out, err := def.Fn(context.Background(), functions.Call{Receiver: arg}, arg)
	require.NoError(t, err)
	return out
}

func TestAggregates(t *testing.T) {
	list := []interface{}{3.0, 1.0, 4.0, 1.0, 5.0}

	tests := []struct {
		name string
		def  functions.Def
		in   interface{}
		want interface{}
	}{
		{"avg", extaggregate.Avg(), list, 2.8},
		{"avg empty", extaggregate.Avg(), []interface{}{}, 0.0},
		{"count", extaggregate.Count(), list, 5.0},
		{"count scalar", extaggregate.Count(), 7.0, 0.0},
		{"max", extaggregate.Max(), list, 5.0},
		{"max empty", extaggregate.Max(), []interface{}{}, math.Inf(-1)},
		{"min", extaggregate.Min(), list, 1.0},
		{"min empty", extaggregate.Min(), []interface{}{}, math.Inf(1)},
		{"median odd", extaggregate.Median(), list, 3.0},
		{"median even", extaggregate.Median(), []interface{}{4.0, 1.0, 3.0, 2.0}, 2.5},
		{"median empty", extaggregate.Median(), []interface{}{}, 0.0},
		{"sum", extaggregate.Sum(), list, 14.0},
		{"sum empty", extaggregate.Sum(), []interface{}{}, 0.0},
		{"sum coerces strings", extaggregate.Sum(), []interface{}{1.0, "2"}, "12"},
		{"sum of number", extaggregate.Sum(), 9.0, 9.0},
		{"typed slice", extaggregate.Sum(), []int{1, 2, 3}, 6.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, call(t, tt.def, tt.in))
		})
	}
}

func TestNonListNonNumberIsNaN(t *testing.T) {
	for _, def := range []functions.Def{extaggregate.Avg(), extaggregate.Max(), extaggregate.Min(), extaggregate.Median(), extaggregate.Sum()} {
		out := call(t, def, "abc")
		f, ok := out.(float64)
		require.True(t, ok, def.Name)
		assert.True(t, math.IsNaN(f), def.Name)
	}
}

func TestAllAcceptOneArgument(t *testing.T) {
	for _, def := range extaggregate.All() {
		assert.True(t, def.Accepts(1), def.Name)
		assert.False(t, def.Accepts(2), def.Name)
	}
}
