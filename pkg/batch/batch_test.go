package batch_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandrolain/gojunqi/pkg/batch"
	"github.com/sandrolain/gojunqi/pkg/compiler"
	"github.com/sandrolain/gojunqi/pkg/ext"
	"github.com/sandrolain/gojunqi/pkg/types"
)

func newRunner(t *testing.T, workers int) *batch.Runner {
	t.Helper()
	r, err := batch.New(workers)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Release(time.Second) })
	return r
}

func TestRunKeepsInputOrder(t *testing.T) {
	c, err := compiler.New(ext.WithAll())
	require.NoError(t, err)
	q, err := c.Compile(types.Pipeline(
		types.Group(types.Local("k")),
		types.Select(types.Local("v")),
		types.Aggregate("sum"),
	))
	require.NoError(t, err)

	inputs := make([][]interface{}, 50)
	for i := range inputs {
		n := float64(i)
		inputs[i] = []interface{}{
			map[string]interface{}{"k": "a", "v": n},
			map[string]interface{}{"k": "b", "v": 1.0},
			map[string]interface{}{"k": "a", "v": n},
		}
	}

	results := newRunner(t, 4).Run(context.Background(), q, inputs, compiler.Params{})
	require.Len(t, results, len(inputs))
	for i, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, i, res.Index)
		assert.Equal(t, []interface{}{2 * float64(i), 1.0}, res.Values)
	}
}

type stubQuery func(data interface{}) ([]interface{}, error)

func (s stubQuery) Run(_ context.Context, data interface{}, _ compiler.Params) ([]interface{}, error) {
	return s(data)
}

func TestRunIsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	q := stubQuery(func(data interface{}) ([]interface{}, error) {
		records := data.([]interface{})
		switch records[0] {
		case "fail":
			return nil, boom
		case "panic":
			panic("bad input")
		}
		return records, nil
	})

	results := newRunner(t, 2).Run(context.Background(), q, [][]interface{}{{"ok"}, {"fail"}, {"panic"}, {"fine"}}, compiler.Params{})
	assert.Equal(t, []interface{}{"ok"}, results[0].Values)
	assert.ErrorIs(t, results[1].Err, boom)
	assert.ErrorContains(t, results[2].Err, "panic: bad input")
	assert.Equal(t, []interface{}{"fine"}, results[3].Values)
}

func TestRunCancelled(t *testing.T) {
	c, err := compiler.New()
	require.NoError(t, err)
	q, err := c.Compile(types.Pipeline(types.Select(types.This())))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results := newRunner(t, 2).Run(ctx, q, [][]interface{}{{1.0}, {2.0}}, compiler.Params{})
	for _, res := range results {
		assert.ErrorIs(t, res.Err, context.Canceled)
	}
}

func TestDefaultWorkers(t *testing.T) {
	r := newRunner(t, 0)
	assert.Positive(t, r.Workers())
}

func ExampleRunner_Run() {
	c, _ := compiler.New(ext.WithAggregate())
	q, _ := c.Compile(types.Pipeline(types.Aggregate("count")))

	r, _ := batch.New(2)
	defer func() { _ = r.Release(time.Second) }()

	for _, res := range r.Run(context.Background(), q, [][]interface{}{{1.0, 2.0}, {}}, compiler.Params{}) {
		fmt.Println(res.Index, res.Values)
	}
	// Output:
	// 0 [2]
	// 1 [0]
}
