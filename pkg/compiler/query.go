package compiler

import (
	"context"
	"log/slog"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/sandrolain/gojunqi/pkg/types"
)

// seqFunc is a compiled stage: it maps a flat item sequence to a new
// sequence or, for group steps, to a grouped result.
type seqFunc func(ctx context.Context, ex *execution, items []*Item) (working, error)

type stage struct {
	name    string
	run     seqFunc
	perLeaf bool // compiled after a group step
}

// working is the state between stages: a flat sequence until a group step
// runs, a grouped result afterwards.
type working struct {
	items  []*Item
	groups *Grouped
}

// values unwraps the working state into plain values.
func (w working) values() []interface{} {
	if w.groups != nil {
		return w.groups.Values()
	}
	return plainValues(w.items)
}

func (w working) size() int {
	if w.groups != nil {
		n := 0
		w.groups.walk(func(items []*Item) { n += len(items) })
		return n
	}
	return len(w.items)
}

func plainValues(items []*Item) []interface{} {
	out := make([]interface{}, len(items))
	for i, it := range items {
		out[i] = it.Value
	}
	return out
}

// execution is the per-run state shared by all stages.
type execution struct {
	root *Scope
	ids  *identities
}

// wrap turns records into items with their own scope frames.
func (ex *execution) wrap(records []interface{}) []*Item {
	items := make([]*Item, len(records))
	for i, r := range records {
		items[i] = &Item{Value: r, Scope: ex.root.Child()}
	}
	return items
}

type pipeline struct {
	stages  []stage
	grouped bool
	logger  *slog.Logger
	debug   bool
}

// run executes the stages in order. Cancellation is checked between stages.
func (p *pipeline) run(ctx context.Context, ex *execution, items []*Item) (working, error) {
	w := working{items: items}
	for i, st := range p.stages {
		if err := ctx.Err(); err != nil {
			return working{}, err
		}

		var err error
		if st.perLeaf && w.groups != nil {
			var g *Grouped
			g, err = w.groups.mapLeaves(ctx, ex, st.run)
			w = working{groups: g}
		} else {
			w, err = st.run(ctx, ex, w.items)
		}
		if err != nil {
			return working{}, err
		}

		if p.debug {
			p.logger.Debug("stage complete",
				"index", i,
				"step", st.name,
				"items", w.size(),
				"grouped", w.groups != nil,
				"scope_depth", ex.root.Depth())
		}
	}
	return w, nil
}

// Query is a compiled query. It is immutable and safe for concurrent use.
type Query struct {
	pipeline  *pipeline
	defaults  Params
	groupTags *atomic.Uint64
	logger    *slog.Logger
	debug     bool
}

// Result is the output of one execution.
type Result struct {
	// Values is the flattened output.
	Values []interface{}
	// Grouped is the grouped result tree when the query groups, else nil.
	Grouped *Grouped
}

// WithDefaults returns a copy of q using p as default parameters.
func (q *Query) WithDefaults(p Params) *Query {
	if p.IsZero() && q.defaults.IsZero() {
		return q
	}
	cp := *q
	cp.defaults = p
	return &cp
}

// Defaults returns the default parameters.
func (q *Query) Defaults() Params {
	return q.defaults
}

// Grouped reports whether the query contains a group step.
func (q *Query) Grouped() bool {
	return q.pipeline.grouped
}

// Stages returns the step tags of the query in order.
func (q *Query) Stages() []string {
	out := make([]string, len(q.pipeline.stages))
	for i, st := range q.pipeline.stages {
		out[i] = st.name
	}
	return out
}

// Run executes the query and returns the flattened output.
func (q *Query) Run(ctx context.Context, data interface{}, params Params) ([]interface{}, error) {
	res, err := q.Execute(ctx, data, params)
	if err != nil {
		return nil, err
	}
	return res.Values, nil
}

// Execute executes the query against data, which must be a list of
// records. params override the query's defaults.
func (q *Query) Execute(ctx context.Context, data interface{}, params Params) (*Result, error) {
	records, err := Records(data)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ex := &execution{
		root: NewScope(q.defaults.Override(params), records),
		ids:  newIdentities(q.groupTags),
	}

	w, err := q.pipeline.run(ctx, ex, ex.wrap(records))
	if err != nil {
		return nil, err
	}

	res := &Result{Values: w.values(), Grouped: w.groups}

	if q.debug {
		q.logger.Debug("query executed",
			"records", len(records),
			"results", len(res.Values),
			"grouped", res.Grouped != nil,
			"duration", time.Since(start))
	}

	return res, nil
}

// Records converts query input to a list of records. Any Go slice or
// array is accepted; other values are an invalid-input error.
func Records(data interface{}) ([]interface{}, error) {
	switch x := data.(type) {
	case []interface{}:
		return x, nil
	case []map[string]interface{}:
		out := make([]interface{}, len(x))
		for i, m := range x {
			out[i] = m
		}
		return out, nil
	case nil:
		return nil, types.NewError(types.ErrInvalidInput, "query input must be a list", -1).WithToken("nil")
	}

	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, types.NewError(types.ErrInvalidInput, "query input must be a list", -1).WithToken(rv.Type().String())
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
