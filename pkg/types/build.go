package types

// Constructors for building trees by hand. Parser front-ends and tests use
// them instead of filling Node literals field by field.

// Lit returns a literal node.
func Lit(v interface{}) *Node {
	return &Node{Type: NodeLiteral, Value: v}
}

// Local returns a path rooted at the current record. Path components that
// are not *Node are wrapped as literals.
func Local(path ...interface{}) *Node {
	return &Node{Type: NodeLocalPath, Args: components(path)}
}

// This returns the current record itself.
func This() *Node {
	return Local()
}

// Param returns a path rooted at the positional parameter index.
func Param(index int, path ...interface{}) *Node {
	return &Node{Type: NodeParamPath, Index: index, Args: components(path)}
}

// Symbol returns a path rooted at the named binding.
func Symbol(name string, path ...interface{}) *Node {
	return &Node{Type: NodeSymbolPath, Name: name, Args: components(path)}
}

// Obj returns an object constructor.
func Obj(fields ...Field) *Node {
	return &Node{Type: NodeObject, Fields: fields}
}

// F returns an object constructor slot. Non-node values become literals.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: asNode(value)}
}

// Arr returns an array constructor.
func Arr(items ...interface{}) *Node {
	return &Node{Type: NodeArray, Args: components(items)}
}

// Merge returns a merge of mapping-producing operands.
func Merge(items ...interface{}) *Node {
	return &Node{Type: NodeMerge, Args: components(items)}
}

// Call returns a function-call node.
func Call(name string, args ...interface{}) *Node {
	return &Node{Type: NodeCall, Name: name, Args: components(args)}
}

// Unary returns a unary operator node (not, negate).
func Unary(op NodeType, operand interface{}) *Node {
	return &Node{Type: op, Args: []*Node{asNode(operand)}}
}

// Binary returns a binary operator node.
func Binary(op NodeType, left, right interface{}) *Node {
	return &Node{Type: op, Args: []*Node{asNode(left), asNode(right)}}
}

// As returns a bind-as node writing expr to the current scope under name.
func As(expr interface{}, name string) *Node {
	return &Node{Type: NodeBindAs, Args: []*Node{asNode(expr), Lit(name)}}
}

// Cond returns a conditional (ternary) node.
func Cond(cond, then, otherwise interface{}) *Node {
	return &Node{Type: NodeConditional, Args: []*Node{asNode(cond), asNode(then), asNode(otherwise)}}
}

// Pipeline returns a steps node.
func Pipeline(steps ...*Step) *Node {
	return &Node{Type: NodeSteps, Steps: steps}
}

// Subquery returns a nested pipeline evaluated against input.
func Subquery(input interface{}, steps ...*Step) *Node {
	return &Node{Type: NodeSubquery, Input: asNode(input), Steps: steps}
}

// Filter returns a filter step.
func Filter(expr interface{}) *Step {
	return &Step{Type: StepFilter, Exprs: []*Node{asNode(expr)}}
}

// Select returns a select step.
func Select(exprs ...interface{}) *Step {
	return &Step{Type: StepSelect, Exprs: components(exprs)}
}

// Expand returns an expand step.
func Expand(exprs ...interface{}) *Step {
	return &Step{Type: StepExpand, Exprs: components(exprs)}
}

// Contract returns a contract step.
func Contract(exprs ...interface{}) *Step {
	return &Step{Type: StepContract, Exprs: components(exprs)}
}

// Extend returns an extend step.
func Extend(exprs ...interface{}) *Step {
	return &Step{Type: StepExtend, Exprs: components(exprs)}
}

// Sort returns a sort step.
func Sort(keys ...SortKey) *Step {
	return &Step{Type: StepSort, Keys: keys}
}

// Asc returns an ascending sort key.
func Asc(expr interface{}) SortKey {
	return SortKey{Expr: asNode(expr), Ascending: true}
}

// Desc returns a descending sort key.
func Desc(expr interface{}) SortKey {
	return SortKey{Expr: asNode(expr)}
}

// Group returns a group step.
func Group(exprs ...interface{}) *Step {
	return &Step{Type: StepGroup, Exprs: components(exprs)}
}

// Aggregate returns an aggregate step.
func Aggregate(names ...string) *Step {
	return &Step{Type: StepAggregate, Names: names}
}

func asNode(v interface{}) *Node {
	if n, ok := v.(*Node); ok {
		return n
	}
	return Lit(v)
}

func components(values []interface{}) []*Node {
	if len(values) == 0 {
		return nil
	}
	out := make([]*Node, len(values))
	for i, v := range values {
		out[i] = asNode(v)
	}
	return out
}
