package extmath_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojunqi/pkg/ext/extmath"
	"github.com/sandrolain/gojunqi/pkg/functions"
)

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{2.5, 3},
		{2.4, 2},
		{-2.5, -2},
		{-2.6, -3},
		{0.49999999999999994, 0},
		{7, 7},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extmath.RoundHalfUp(tt.in), "round(%v)", tt.in)
	}
}

func TestFunctionsCoerceArguments(t *testing.T) {
	ctx := context.Background()

	out, err := extmath.Abs().Fn(ctx, functions.Call{}, "-3")
	require.NoError(t, err)
	assert.Equal(t, 3.0, out)

	out, err = extmath.Pow().Fn(ctx, functions.Call{}, 2.0, "10")
	require.NoError(t, err)
	assert.Equal(t, 1024.0, out)

	out, err = extmath.Sqrt().Fn(ctx, functions.Call{}, "x")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(out.(float64)))
}

func TestArity(t *testing.T) {
	for _, def := range extmath.All() {
		switch def.Name {
		case "atan2", "pow":
			assert.True(t, def.Accepts(2), def.Name)
			assert.False(t, def.Accepts(1), def.Name)
		default:
			assert.True(t, def.Accepts(1), def.Name)
			assert.False(t, def.Accepts(2), def.Name)
		}
	}
}
