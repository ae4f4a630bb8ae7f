package compiler

import (
	"context"
	"errors"
	"slices"

	"github.com/sandrolain/gojunqi/pkg/functions"
	"github.com/sandrolain/gojunqi/pkg/loose"
	"github.com/sandrolain/gojunqi/pkg/types"
)

// compilePipeline compiles an ordered list of steps. Every stage compiled
// after a group step runs once per leaf of the grouped result.
func (c *Compiler) compilePipeline(steps []*types.Step) (*pipeline, error) {
	p := &pipeline{
		stages: make([]stage, 0, len(steps)),
		logger: c.logger,
		debug:  c.opts.Debug,
	}
	for i, st := range steps {
		run, err := c.compileStep(st)
		if err != nil {
			var te *types.Error
			if errors.As(err, &te) && te.Position < 0 {
				te.WithPosition(i)
			}
			return nil, err
		}
		p.stages = append(p.stages, stage{
			name:    string(st.Type),
			run:     run,
			perLeaf: p.grouped,
		})
		if st.Type == types.StepGroup {
			p.grouped = true
		}
	}
	return p, nil
}

func (c *Compiler) compileStep(st *types.Step) (seqFunc, error) {
	if st == nil {
		return nil, types.NewError(types.ErrMalformedNode, "step is nil", -1)
	}

	switch st.Type {
	case types.StepFilter:
		if len(st.Exprs) != 1 {
			return nil, stepArity(st, "exactly one expression")
		}
		pred, err := c.compileNode(st.Exprs[0])
		if err != nil {
			return nil, err
		}
		return filterStage(pred), nil

	case types.StepSelect, types.StepExpand, types.StepContract:
		e, err := c.compileStepValue(st)
		if err != nil {
			return nil, err
		}
		switch st.Type {
		case types.StepSelect:
			return selectStage(e), nil
		case types.StepExpand:
			return expandStage(e), nil
		}
		return contractStage(e), nil

	case types.StepExtend:
		if len(st.Exprs) == 0 {
			return nil, stepArity(st, "at least one expression")
		}
		exprs, err := c.compileNodes(st.Exprs)
		if err != nil {
			return nil, err
		}
		merged := mergeEvaluator(append([]Evaluator{thisEvaluator()}, exprs...))
		return selectStage(merged), nil

	case types.StepSort:
		if len(st.Keys) == 0 {
			return nil, stepArity(st, "at least one key")
		}
		keys := make([]sortKey, len(st.Keys))
		for i, k := range st.Keys {
			e, err := c.compileNode(k.Expr)
			if err != nil {
				return nil, err
			}
			keys[i] = sortKey{eval: e, ascending: k.Ascending}
		}
		return sortStage(keys), nil

	case types.StepGroup:
		if len(st.Exprs) == 0 {
			return nil, stepArity(st, "at least one expression")
		}
		keys, err := c.compileNodes(st.Exprs)
		if err != nil {
			return nil, err
		}
		return groupStage(keys), nil

	case types.StepAggregate:
		if len(st.Names) == 0 {
			return nil, stepArity(st, "at least one function name")
		}
		defs := make([]*functions.Def, len(st.Names))
		for i, name := range st.Names {
			def, ok := c.registry.Lookup(name)
			if !ok {
				return nil, types.NewError(types.ErrUnknownExtension, "unknown aggregate function", -1).
					WithToken(name)
			}
			if !def.Accepts(1) {
				return nil, types.Errorf(types.ErrArgumentCount,
					"aggregate function %s must accept one argument, accepts %s", def.Name, def.Arity()).
					WithToken(name)
			}
			defs[i] = def
		}
		return aggregateStage(defs), nil
	}

	return nil, types.NewError(types.ErrInvalidStep, "invalid step type", -1).WithToken(string(st.Type))
}

func stepArity(st *types.Step, want string) error {
	return types.Errorf(types.ErrMalformedNode, "%s step requires %s", st.Type, want).WithToken(string(st.Type))
}

// compileStepValue compiles the expressions of a select-like step. More
// than one expression builds a list.
func (c *Compiler) compileStepValue(st *types.Step) (Evaluator, error) {
	switch len(st.Exprs) {
	case 0:
		return Evaluator{}, stepArity(st, "at least one expression")
	case 1:
		return c.compileNode(st.Exprs[0])
	}
	return c.compileArray(&types.Node{Type: types.NodeArray, Args: st.Exprs})
}

func thisEvaluator() Evaluator {
	return Dynamic(func(_ context.Context, value interface{}, _ *Scope) (interface{}, error) {
		return value, nil
	})
}

// filterStage keeps the items whose predicate is truthy. The input slice is
// returned as is until the first exclusion.
func filterStage(pred Evaluator) seqFunc {
	if pred.IsConstant() {
		keep := loose.Truthy(pred.Value())
		return func(_ context.Context, _ *execution, items []*Item) (working, error) {
			if keep {
				return working{items: items}, nil
			}
			return working{items: []*Item{}}, nil
		}
	}

	return func(ctx context.Context, _ *execution, items []*Item) (working, error) {
		var out []*Item
		excluded := false
		for i, it := range items {
			v, err := pred.Eval(ctx, it.Value, it.Scope)
			if err != nil {
				return working{}, err
			}
			keep := loose.Truthy(v)
			switch {
			case !keep && !excluded:
				excluded = true
				out = make([]*Item, i, len(items))
				copy(out, items[:i])
			case keep && excluded:
				out = append(out, it)
			}
		}
		if !excluded {
			return working{items: items}, nil
		}
		return working{items: out}, nil
	}
}

// selectStage replaces each value, keeping the item's scope.
func selectStage(e Evaluator) seqFunc {
	return func(ctx context.Context, _ *execution, items []*Item) (working, error) {
		out := make([]*Item, len(items))
		for i, it := range items {
			v, err := e.Eval(ctx, it.Value, it.Scope)
			if err != nil {
				return working{}, err
			}
			out[i] = &Item{Value: v, Scope: it.Scope}
		}
		return working{items: out}, nil
	}
}

// expandStage emits one item per element of a list result, one item for
// any other value and none for null or absent. Items expanded from one
// list read their source item's bindings through their own child frames.
func expandStage(e Evaluator) seqFunc {
	return func(ctx context.Context, _ *execution, items []*Item) (working, error) {
		out := make([]*Item, 0, len(items))
		for _, it := range items {
			v, err := e.Eval(ctx, it.Value, it.Scope)
			if err != nil {
				return working{}, err
			}
			switch x := v.(type) {
			case []interface{}:
				for _, elem := range x {
					// Bindings made later on one element stay off its siblings.
					out = append(out, &Item{Value: elem, Scope: it.Scope.Child()})
				}
			default:
				if loose.IsNullish(v) {
					continue
				}
				out = append(out, &Item{Value: v, Scope: it.Scope})
			}
		}
		return working{items: out}, nil
	}
}

// contractStage emits the head of a list result, any other non-null value
// as is, and nothing for null, absent or empty lists.
func contractStage(e Evaluator) seqFunc {
	return func(ctx context.Context, _ *execution, items []*Item) (working, error) {
		out := make([]*Item, 0, len(items))
		for _, it := range items {
			v, err := e.Eval(ctx, it.Value, it.Scope)
			if err != nil {
				return working{}, err
			}
			if list, ok := v.([]interface{}); ok {
				if len(list) == 0 {
					continue
				}
				v = list[0]
			}
			if loose.IsNullish(v) {
				continue
			}
			out = append(out, &Item{Value: v, Scope: it.Scope})
		}
		return working{items: out}, nil
	}
}

type sortKey struct {
	eval      Evaluator
	ascending bool
}

// compareKeys orders two key values. Pairs that are neither equal nor
// ordered (NaN, absent) sort as "before" in both directions.
func compareKeys(a, b interface{}, ascending bool) int {
	if loose.Equal(a, b) {
		return 0
	}
	if ascending {
		if loose.Greater(a, b) {
			return 1
		}
		return -1
	}
	if loose.Less(a, b) {
		return 1
	}
	return -1
}

// sortStage sorts items stably by their keys, left to right. Keys are
// evaluated once per item before sorting.
func sortStage(keys []sortKey) seqFunc {
	type row struct {
		item *Item
		keys []interface{}
	}

	return func(ctx context.Context, _ *execution, items []*Item) (working, error) {
		rows := make([]row, len(items))
		for i, it := range items {
			ks := make([]interface{}, len(keys))
			for j, k := range keys {
				v, err := k.eval.Eval(ctx, it.Value, it.Scope)
				if err != nil {
					return working{}, err
				}
				ks[j] = v
			}
			rows[i] = row{item: it, keys: ks}
		}

		slices.SortStableFunc(rows, func(a, b row) int {
			for j, k := range keys {
				if c := compareKeys(a.keys[j], b.keys[j], k.ascending); c != 0 {
					return c
				}
			}
			return 0
		})

		out := make([]*Item, len(rows))
		for i, r := range rows {
			out[i] = r.item
		}
		return working{items: out}, nil
	}
}

// groupStage partitions items into one tree level per key expression.
func groupStage(keys []Evaluator) seqFunc {
	last := len(keys) - 1
	return func(ctx context.Context, ex *execution, items []*Item) (working, error) {
		root := newGrouped()
		for _, it := range items {
			level := root
			for d, k := range keys {
				kv, err := k.Eval(ctx, it.Value, it.Scope)
				if err != nil {
					return working{}, err
				}
				e := level.entry(ex.ids.groupTag(kv), kv)
				if d == last {
					e.Items = append(e.Items, it)
					break
				}
				if e.Sub == nil {
					e.Sub = newGrouped()
				}
				level = e.Sub
			}
		}
		return working{groups: root}, nil
	}
}

// aggregateStage threads the plain values through each function in turn.
// A list result becomes one item per element, null or absent becomes no
// items and any other value a single item.
func aggregateStage(defs []*functions.Def) seqFunc {
	return func(ctx context.Context, ex *execution, items []*Item) (working, error) {
		values := plainValues(items)
		var result interface{} = values
		for _, d := range defs {
			r, err := d.Fn(ctx, functions.Call{Receiver: values, Scope: ex.root}, result)
			if err != nil {
				return working{}, err
			}
			result = r
		}

		var list []interface{}
		switch x := result.(type) {
		case []interface{}:
			list = x
		default:
			if !loose.IsNullish(result) {
				list = []interface{}{result}
			}
		}

		out := make([]*Item, len(list))
		for i, v := range list {
			out[i] = &Item{Value: v, Scope: ex.root.Child()}
		}
		return working{items: out}, nil
	}
}

// compileSubquery compiles a nested pipeline run against the value of its
// input expression. The nested run sees the outer bindings; its own
// bindings stay inside.
func (c *Compiler) compileSubquery(n *types.Node) (Evaluator, error) {
	if n.Input == nil {
		return Evaluator{}, types.NewError(types.ErrMalformedNode, "subquery requires an input", -1).
			WithToken(string(n.Type))
	}
	input, err := c.compileNode(n.Input)
	if err != nil {
		return Evaluator{}, err
	}
	p, err := c.compilePipeline(n.Steps)
	if err != nil {
		return Evaluator{}, err
	}
	counter := c.groupTags

	return Dynamic(func(ctx context.Context, value interface{}, scope *Scope) (interface{}, error) {
		in, err := input.Eval(ctx, value, scope)
		if err != nil {
			return nil, err
		}
		ex := &execution{
			root: scope.withSource(in),
			ids:  newIdentities(counter),
		}
		w, err := p.run(ctx, ex, ex.wrap(subqueryRecords(in)))
		if err != nil {
			return nil, err
		}
		return w.values(), nil
	}), nil
}

// subqueryRecords turns a subquery input into records: a list is used as
// is, null or absent is empty and any other value is a single record.
func subqueryRecords(in interface{}) []interface{} {
	if list, ok := in.([]interface{}); ok {
		return list
	}
	if loose.IsNullish(in) {
		return nil
	}
	return []interface{}{in}
}
