package compiler_test

import (
	"context"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojunqi/pkg/compiler"
	"github.com/sandrolain/gojunqi/pkg/ext/extaggregate"
	"github.com/sandrolain/gojunqi/pkg/functions"
	"github.com/sandrolain/gojunqi/pkg/loose"
	"github.com/sandrolain/gojunqi/pkg/types"
)

// constant returns an aggregate that ignores its input.
func constant(name string, result interface{}) functions.Def {
	return functions.Def{
		Name: name, MinArgs: 1, MaxArgs: 1,
		Fn: func(context.Context, functions.Call, ...interface{}) (interface{}, error) {
			return result, nil
		},
	}
}

func TestGroupSumScenario(t *testing.T) {
	c := newCompiler(t, compiler.WithFunctions(extaggregate.All()...))
	q, err := c.Compile(types.Pipeline(
		types.Group(types.Local("n")),
		types.Select(types.Local("v")),
		types.Aggregate("sum"),
	))
	require.NoError(t, err)

	res, err := q.Execute(context.Background(), []interface{}{
		map[string]interface{}{"n": "a", "v": 3.0},
		map[string]interface{}{"n": "b", "v": 1.0},
		map[string]interface{}{"n": "a", "v": 2.0},
	}, compiler.Params{})
	require.NoError(t, err)

	assert.Equal(t, []interface{}{5.0, 1.0}, res.Values)

	require.NotNil(t, res.Grouped)
	entries := res.Grouped.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Key)
	assert.Equal(t, []interface{}{5.0}, entries[0].Values())
	assert.Equal(t, "b", entries[1].Key)
	assert.Equal(t, []interface{}{1.0}, entries[1].Values())
}

func TestGroupRoundTrip(t *testing.T) {
	c := newCompiler(t)
	q, err := c.Compile(types.Pipeline(types.Group(types.Binary(types.NodeMod, types.This(), 3.0))))
	require.NoError(t, err)

	property := func(xs []uint16) bool {
		data := make([]interface{}, len(xs))
		for i, x := range xs {
			data[i] = float64(x)
		}
		res, err := q.Execute(context.Background(), data, compiler.Params{})
		if err != nil {
			return false
		}
		if !assert.ElementsMatch(t, data, res.Values) {
			return false
		}
		for _, e := range res.Grouped.Entries() {
			for _, v := range e.Values() {
				if float64(int(v.(float64))%3) != e.Key {
					return false
				}
			}
		}
		return true
	}
	assert.NoError(t, quick.Check(property, nil))
}

func TestGroupObjectKeysUseIdentity(t *testing.T) {
	c := newCompiler(t)
	shared := map[string]interface{}{"id": 1.0}
	twin := map[string]interface{}{"id": 1.0}
	data := []interface{}{
		map[string]interface{}{"k": shared, "v": 1.0},
		map[string]interface{}{"k": twin, "v": 2.0},
		map[string]interface{}{"k": shared, "v": 3.0},
	}

	q, err := c.Compile(types.Pipeline(types.Group(types.Local("k")), types.Select(types.Local("v"))))
	require.NoError(t, err)
	res, err := q.Execute(context.Background(), data, compiler.Params{})
	require.NoError(t, err)

	entries := res.Grouped.Entries()
	require.Len(t, entries, 2, "deep-equal but distinct objects must not share a group")
	assert.Equal(t, []interface{}{1.0, 3.0}, entries[0].Values())
	assert.Equal(t, []interface{}{2.0}, entries[1].Values())
	assert.Equal(t, []interface{}{1.0, 3.0, 2.0}, res.Values)
}

func TestGroupPrimitiveKeysAreLoose(t *testing.T) {
	c := newCompiler(t)
	out := run(t, c, types.Pipeline(types.Group(types.This())), []interface{}{1.0, "1", 2.0, "a", 1.0}, compiler.Params{})
	assert.Equal(t, []interface{}{1.0, "1", 1.0, 2.0, "a"}, out)
}

func TestGroupMultiLevel(t *testing.T) {
	c := newCompiler(t, compiler.WithFunctions(extaggregate.All()...))
	data := []interface{}{
		map[string]interface{}{"dept": "eng", "role": "dev", "pay": 10.0},
		map[string]interface{}{"dept": "ops", "role": "dev", "pay": 7.0},
		map[string]interface{}{"dept": "eng", "role": "lead", "pay": 20.0},
		map[string]interface{}{"dept": "eng", "role": "dev", "pay": 12.0},
	}

	q, err := c.Compile(types.Pipeline(
		types.Group(types.Local("dept"), types.Local("role")),
		types.Sort(types.Desc(types.Local("pay"))),
		types.Select(types.Local("pay")),
		types.Aggregate("max"),
	))
	require.NoError(t, err)
	res, err := q.Execute(context.Background(), data, compiler.Params{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Grouped.Depth())
	eng := res.Grouped.Entries()[0]
	assert.Equal(t, "eng", eng.Key)
	require.NotNil(t, eng.Sub)
	assert.Equal(t, 2, eng.Sub.Len())
	assert.Equal(t, []interface{}{12.0, 20.0, 7.0}, res.Values)
}

func TestStagesAfterGroupRunPerLeaf(t *testing.T) {
	c := newCompiler(t, compiler.WithFunctions(extaggregate.All()...))
	out := run(t, c, types.Pipeline(
		types.Group(types.Local("n")),
		types.Filter(types.Binary(types.NodeGt, types.Local("v"), 1.0)),
		types.Select(types.Local("v")),
		types.Aggregate("count"),
	), []interface{}{
		map[string]interface{}{"n": "a", "v": 3.0},
		map[string]interface{}{"n": "b", "v": 1.0},
		map[string]interface{}{"n": "a", "v": 2.0},
	}, compiler.Params{})

	assert.Equal(t, []interface{}{2.0, 0.0}, out)
}

func TestGroupThenGroupNests(t *testing.T) {
	c := newCompiler(t)
	q, err := c.Compile(types.Pipeline(
		types.Group(types.Local("a")),
		types.Group(types.Local("b")),
	))
	require.NoError(t, err)
	data := []interface{}{
		map[string]interface{}{"a": 1.0, "b": "x"},
		map[string]interface{}{"a": 2.0, "b": "x"},
		map[string]interface{}{"a": 1.0, "b": "y"},
		map[string]interface{}{"a": 1.0, "b": "x"},
	}
	res, err := q.Execute(context.Background(), data, compiler.Params{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Grouped.Depth())
	assert.Equal(t, []interface{}{data[0], data[3], data[2], data[1]}, res.Values)
}

func TestGroupKeepsBindings(t *testing.T) {
	c := newCompiler(t)
	out := run(t, c, types.Pipeline(
		types.Filter(types.As(types.Local("name"), "who")),
		types.Group(types.Binary(types.NodeGt, types.Local("age"), 40.0)),
		types.Select(types.Symbol("who")),
	), []interface{}{
		map[string]interface{}{"name": "Bill", "age": 19.0},
		map[string]interface{}{"name": "Thom", "age": 43.0},
		map[string]interface{}{"name": "Jim", "age": 12.0},
	}, compiler.Params{})
	assert.Equal(t, []interface{}{"Bill", "Jim", "Thom"}, out)
}

func TestEmptyGroup(t *testing.T) {
	c := newCompiler(t)
	q, err := c.Compile(types.Pipeline(types.Group(types.This())))
	require.NoError(t, err)
	res, err := q.Execute(context.Background(), []interface{}{}, compiler.Params{})
	require.NoError(t, err)
	assert.Equal(t, []interface{}{}, res.Values)
	assert.Equal(t, 0, res.Grouped.Len())
}

func TestGroupEmptyListKeysNeverMerge(t *testing.T) {
	c := newCompiler(t)
	shared := []interface{}{}
	data := []interface{}{
		map[string]interface{}{"k": shared, "v": 1.0},
		map[string]interface{}{"k": shared, "v": 2.0},
	}
	q, err := c.Compile(types.Pipeline(types.Group(types.Local("k")), types.Select(types.Local("v"))))
	require.NoError(t, err)
	res, err := q.Execute(context.Background(), data, compiler.Params{})
	require.NoError(t, err)

	// Zero-capacity lists carry no identity, matching loose equality.
	require.Len(t, res.Grouped.Entries(), 2)
	assert.False(t, loose.Equal(shared, shared))
	assert.Equal(t, []interface{}{1.0, 2.0}, res.Values)
}
