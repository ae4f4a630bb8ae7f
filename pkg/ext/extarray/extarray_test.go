package extarray_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojunqi/pkg/ext/extarray"
	"github.com/sandrolain/gojunqi/pkg/functions"
)

func TestArrayFunctions(t *testing.T) {
	obj := map[string]interface{}{"a": 1.0}

	tests := []struct {
		name string
		def  functions.Def
		in   interface{}
		want interface{}
	}{
		{"first", extarray.First(), []interface{}{1.0, 2.0}, 1.0},
		{"first empty", extarray.First(), []interface{}{}, nil},
		{"first scalar", extarray.First(), "x", "x"},
		{"last", extarray.Last(), []interface{}{1.0, 2.0}, 2.0},
		{"last empty", extarray.Last(), []interface{}{}, nil},
		{"unique", extarray.Unique(), []interface{}{1.0, "1", 2.0, obj, obj, 1.0}, []interface{}{1.0, 2.0, obj}},
		{"unique scalar", extarray.Unique(), 4.0, 4.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.def.Fn(context.Background(), functions.Call{}, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}
