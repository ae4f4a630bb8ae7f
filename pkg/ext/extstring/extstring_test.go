package extstring_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojunqi/pkg/ext/extstring"
	"github.com/sandrolain/gojunqi/pkg/functions"
	"github.com/sandrolain/gojunqi/pkg/types"
)

func TestStringFunctions(t *testing.T) {
	tests := []struct {
		name string
		def  functions.Def
		args []interface{}
		want interface{}
	}{
		{"lower", extstring.Lower(), []interface{}{"MiXeD"}, "mixed"},
		{"lower non-string", extstring.Lower(), []interface{}{3.0}, 3.0},
		{"upper", extstring.Upper(), []interface{}{"MiXeD"}, "MIXED"},
		{"title", extstring.Title(), []interface{}{"hello WORLD, it's-me"}, "Hello World, It's-me"},
		{"split whitespace", extstring.Split(), []interface{}{" a  b\tc\n"}, []interface{}{"a", "b", "c"}},
		{"split delim", extstring.Split(), []interface{}{"a,b,,c", ","}, []interface{}{"a", "b", "", "c"}},
		{"split index", extstring.Split(), []interface{}{"a,b,c", ",", 1.0}, "b"},
		{"split index out of range", extstring.Split(), []interface{}{"a,b", ",", 5.0}, nil},
		{"split number", extstring.Split(), []interface{}{1.5, "."}, []interface{}{"1", "5"}},
		{"string", extstring.String(), []interface{}{types.NullValue}, "null"},
		{"string list", extstring.String(), []interface{}{[]interface{}{1.0, "a"}}, "1,a"},
		{"number", extstring.Number(), []interface{}{" 42 "}, 42.0},
		{"number bool", extstring.Number(), []interface{}{true}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.def.Fn(context.Background(), functions.Call{}, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestSplitRejectsFractionalIndex(t *testing.T) {
	_, err := extstring.Split().Fn(context.Background(), functions.Call{}, "a b", nil, 0.5)
	assert.ErrorContains(t, err, "index must be an integer")
}
