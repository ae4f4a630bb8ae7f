package compiler

import (
	"context"
	"fmt"

	"github.com/sandrolain/gojunqi/pkg/functions"
	"github.com/sandrolain/gojunqi/pkg/loose"
	"github.com/sandrolain/gojunqi/pkg/types"
)

// binaryOp applies a non-short-circuiting binary operator.
type binaryOp func(a, b interface{}) interface{}

var binaryOps = map[types.NodeType]binaryOp{
	types.NodeAdd: loose.Add,
	types.NodeSub: loose.Sub,
	types.NodeMul: loose.Mul,
	types.NodeDiv: loose.Div,
	types.NodeMod: loose.Mod,
	types.NodeEq: func(a, b interface{}) interface{} {
		return loose.Equal(a, b)
	},
	types.NodeNeq: func(a, b interface{}) interface{} {
		return !loose.Equal(a, b)
	},
	types.NodeGt: func(a, b interface{}) interface{} {
		return loose.Greater(a, b)
	},
	types.NodeGte: func(a, b interface{}) interface{} {
		return loose.GreaterEqual(a, b)
	},
	types.NodeLt: func(a, b interface{}) interface{} {
		return loose.Less(a, b)
	},
	types.NodeLte: func(a, b interface{}) interface{} {
		return loose.LessEqual(a, b)
	},
	types.NodeMemberOf: memberOf,
}

// compileNode compiles an expression node.
func (c *Compiler) compileNode(n *types.Node) (Evaluator, error) {
	if n == nil {
		return Evaluator{}, types.NewError(types.ErrMalformedNode, "expression node is nil", -1)
	}

	switch n.Type {
	case types.NodeLiteral:
		return Constant(normalizeLiteral(n.Value)), nil

	case types.NodeLocalPath, types.NodeParamPath, types.NodeSymbolPath:
		return c.compilePath(n)

	case types.NodeObject:
		return c.compileObject(n)

	case types.NodeArray:
		return c.compileArray(n)

	case types.NodeMerge:
		return c.compileMerge(n)

	case types.NodeCall:
		return c.compileCall(n)

	case types.NodeNot:
		return c.compileUnary(n, loose.Not)

	case types.NodeNegate:
		return c.compileUnary(n, loose.Negate)

	case types.NodeAnd, types.NodeOr:
		return c.compileLogical(n)

	case types.NodeMatches:
		return c.compileMatches(n)

	case types.NodeBindAs:
		return c.compileBindAs(n)

	case types.NodeConditional:
		return c.compileConditional(n)

	case types.NodeSubquery:
		return c.compileSubquery(n)

	case types.NodeSteps:
		// A bare pipeline inside an expression runs against the current record.
		return c.compileSubquery(&types.Node{Type: types.NodeSubquery, Input: types.This(), Steps: n.Steps})
	}

	if op, ok := binaryOps[n.Type]; ok {
		return c.compileBinary(n, op)
	}

	return Evaluator{}, types.NewError(types.ErrInvalidNode, "invalid node type", -1).WithToken(string(n.Type))
}

// compileNodes compiles a list of expression nodes.
func (c *Compiler) compileNodes(nodes []*types.Node) ([]Evaluator, error) {
	out := make([]Evaluator, len(nodes))
	for i, n := range nodes {
		e, err := c.compileNode(n)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

// operands compiles the operands of an operator node, checking its arity.
func (c *Compiler) operands(n *types.Node, want int) ([]Evaluator, error) {
	if len(n.Args) != want {
		return nil, types.Errorf(types.ErrMalformedNode, "expected %d operands, got %d", want, len(n.Args)).
			WithToken(string(n.Type))
	}
	return c.compileNodes(n.Args)
}

func (c *Compiler) compileUnary(n *types.Node, op func(interface{}) interface{}) (Evaluator, error) {
	args, err := c.operands(n, 1)
	if err != nil {
		return Evaluator{}, err
	}
	x := args[0]
	if x.IsConstant() {
		return Constant(op(x.Value())), nil
	}
	return Dynamic(func(ctx context.Context, value interface{}, scope *Scope) (interface{}, error) {
		v, err := x.Eval(ctx, value, scope)
		if err != nil {
			return nil, err
		}
		return op(v), nil
	}), nil
}

func (c *Compiler) compileBinary(n *types.Node, op binaryOp) (Evaluator, error) {
	args, err := c.operands(n, 2)
	if err != nil {
		return Evaluator{}, err
	}
	l, r := args[0], args[1]
	if l.IsConstant() && r.IsConstant() {
		return Constant(op(l.Value(), r.Value())), nil
	}
	return Dynamic(func(ctx context.Context, value interface{}, scope *Scope) (interface{}, error) {
		lv, err := l.Eval(ctx, value, scope)
		if err != nil {
			return nil, err
		}
		rv, err := r.Eval(ctx, value, scope)
		if err != nil {
			return nil, err
		}
		return op(lv, rv), nil
	}), nil
}

// compileLogical compiles "and"/"or". Both return the deciding operand
// itself, not a boolean, and evaluate the right operand only when needed.
func (c *Compiler) compileLogical(n *types.Node) (Evaluator, error) {
	args, err := c.operands(n, 2)
	if err != nil {
		return Evaluator{}, err
	}
	l, r := args[0], args[1]
	isAnd := n.Type == types.NodeAnd

	decide := func(lv interface{}) bool {
		if isAnd {
			return !loose.Truthy(lv)
		}
		return loose.Truthy(lv)
	}

	if l.IsConstant() {
		lv := l.Value()
		if decide(lv) {
			return Constant(lv), nil
		}
		return r, nil
	}

	return Dynamic(func(ctx context.Context, value interface{}, scope *Scope) (interface{}, error) {
		lv, err := l.Eval(ctx, value, scope)
		if err != nil {
			return nil, err
		}
		if decide(lv) {
			return lv, nil
		}
		return r.Eval(ctx, value, scope)
	}), nil
}

// compileConditional compiles the ternary operator. Only the taken branch
// is evaluated.
func (c *Compiler) compileConditional(n *types.Node) (Evaluator, error) {
	args, err := c.operands(n, 3)
	if err != nil {
		return Evaluator{}, err
	}
	cond, then, otherwise := args[0], args[1], args[2]

	if cond.IsConstant() {
		if loose.Truthy(cond.Value()) {
			return then, nil
		}
		return otherwise, nil
	}

	return Dynamic(func(ctx context.Context, value interface{}, scope *Scope) (interface{}, error) {
		cv, err := cond.Eval(ctx, value, scope)
		if err != nil {
			return nil, err
		}
		if loose.Truthy(cv) {
			return then.Eval(ctx, value, scope)
		}
		return otherwise.Eval(ctx, value, scope)
	}), nil
}

// compileBindAs compiles "expr as name". It is never folded: binding is a
// side effect on the record's scope.
func (c *Compiler) compileBindAs(n *types.Node) (Evaluator, error) {
	if len(n.Args) != 2 || !n.Args[1].IsLiteral() {
		return Evaluator{}, types.NewError(types.ErrMalformedNode, "bind-as requires an expression and a name", -1).
			WithToken(string(n.Type))
	}
	name, ok := n.Args[1].Value.(string)
	if !ok || name == "" {
		return Evaluator{}, types.NewError(types.ErrMalformedNode, "bind-as name must be a non-empty string", -1).
			WithToken(fmt.Sprint(n.Args[1].Value))
	}
	expr, err := c.compileNode(n.Args[0])
	if err != nil {
		return Evaluator{}, err
	}

	return Dynamic(func(ctx context.Context, value interface{}, scope *Scope) (interface{}, error) {
		v, err := expr.Eval(ctx, value, scope)
		if err != nil {
			return nil, err
		}
		if scope != nil {
			scope.Set(name, v)
		}
		return v, nil
	}), nil
}

// compileCall resolves the extension now so that unknown names and bad
// argument counts fail compilation.
func (c *Compiler) compileCall(n *types.Node) (Evaluator, error) {
	def, ok := c.registry.Lookup(n.Name)
	if !ok {
		return Evaluator{}, types.NewError(types.ErrUnknownExtension, "unknown extension function", -1).
			WithToken(n.Name)
	}
	if !def.Accepts(len(n.Args)) {
		return Evaluator{}, types.Errorf(types.ErrArgumentCount, "function %s expects %s arguments, got %d",
			def.Name, def.Arity(), len(n.Args)).WithToken(n.Name)
	}
	args, err := c.compileNodes(n.Args)
	if err != nil {
		return Evaluator{}, err
	}
	fn := def.Fn

	return Dynamic(func(ctx context.Context, value interface{}, scope *Scope) (interface{}, error) {
		vals, err := evalAll(ctx, args, value, scope)
		if err != nil {
			return nil, err
		}
		return fn(ctx, functions.Call{Receiver: value, Scope: scope}, vals...)
	}), nil
}

type objectSlot struct {
	key  string
	eval Evaluator
}

// compileObject compiles an object constructor. Slots that evaluate to an
// absent value are left out of the result.
func (c *Compiler) compileObject(n *types.Node) (Evaluator, error) {
	slots := make([]objectSlot, len(n.Fields))
	constant := true
	for i, f := range n.Fields {
		e, err := c.compileNode(f.Value)
		if err != nil {
			return Evaluator{}, err
		}
		slots[i] = objectSlot{key: f.Key, eval: e}
		constant = constant && e.IsConstant()
	}

	build := func(ctx context.Context, value interface{}, scope *Scope) (interface{}, error) {
		out := make(map[string]interface{}, len(slots))
		for _, s := range slots {
			v, err := s.eval.Eval(ctx, value, scope)
			if err != nil {
				return nil, err
			}
			if v == nil {
				delete(out, s.key)
				continue
			}
			out[s.key] = v
		}
		return out, nil
	}

	if constant {
		v, _ := build(context.Background(), nil, nil)
		return Constant(v), nil
	}
	return Dynamic(build), nil
}

func (c *Compiler) compileArray(n *types.Node) (Evaluator, error) {
	items, err := c.compileNodes(n.Args)
	if err != nil {
		return Evaluator{}, err
	}

	build := func(ctx context.Context, value interface{}, scope *Scope) (interface{}, error) {
		return evalAll(ctx, items, value, scope)
	}

	if allConstant(items) {
		v, _ := build(context.Background(), nil, nil)
		return Constant(v), nil
	}
	return Dynamic(build), nil
}

func (c *Compiler) compileMerge(n *types.Node) (Evaluator, error) {
	items, err := c.compileNodes(n.Args)
	if err != nil {
		return Evaluator{}, err
	}
	return mergeEvaluator(items), nil
}

// mergeEvaluator folds mapping-producing evaluators into a new mapping.
// Later keys overwrite earlier ones; operands that are not mappings
// contribute nothing.
func mergeEvaluator(items []Evaluator) Evaluator {
	build := func(ctx context.Context, value interface{}, scope *Scope) (interface{}, error) {
		vals, err := evalAll(ctx, items, value, scope)
		if err != nil {
			return nil, err
		}
		return mergeValues(vals), nil
	}

	if allConstant(items) {
		v, _ := build(context.Background(), nil, nil)
		return Constant(v)
	}
	return Dynamic(build)
}

func mergeValues(vals []interface{}) map[string]interface{} {
	size := 0
	for _, v := range vals {
		if m, ok := v.(map[string]interface{}); ok {
			size += len(m)
		}
	}
	out := make(map[string]interface{}, size)
	for _, v := range vals {
		if m, ok := v.(map[string]interface{}); ok {
			for k, x := range m {
				out[k] = x
			}
		}
	}
	return out
}

// memberOf reports whether needle is in haystack: an element of a list
// (loose equality), a key of an object, or loosely equal to a primitive.
func memberOf(needle, haystack interface{}) interface{} {
	switch h := haystack.(type) {
	case []interface{}:
		for _, item := range h {
			if loose.Equal(needle, item) {
				return true
			}
		}
		return false
	case map[string]interface{}:
		_, ok := h[loose.ToString(needle)]
		return ok
	}
	if loose.IsNullish(haystack) {
		return false
	}
	return loose.Equal(needle, haystack)
}
