package types

// NodeType identifies the tag of an expression node.
type NodeType string

// Null represents an explicit null literal, distinct from an absent value (nil).
type Null struct{}

// MarshalJSON implements json.Marshaler for Null.
// This ensures that Null serializes to JSON null instead of {}.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// NullValue is the singleton value used for explicit null.
var NullValue = Null{}

// Expression node tags. These are the contract with parser front-ends.
const (
	// Literals
	NodeLiteral NodeType = "literal"

	// Pipelines
	NodeSteps    NodeType = "steps"
	NodeSubquery NodeType = "subquery"

	// Paths
	NodeLocalPath  NodeType = "local-path"
	NodeParamPath  NodeType = "param-path"
	NodeSymbolPath NodeType = "symbol-path"

	// Constructors
	NodeObject NodeType = "object"
	NodeArray  NodeType = "array"
	NodeMerge  NodeType = "merge"

	// Functions
	NodeCall NodeType = "function-call"

	// Unary operators
	NodeNot    NodeType = "not"
	NodeNegate NodeType = "negate"

	// Binary operators
	NodeAnd      NodeType = "and"
	NodeOr       NodeType = "or"
	NodeAdd      NodeType = "add"
	NodeSub      NodeType = "sub"
	NodeMul      NodeType = "mul"
	NodeDiv      NodeType = "div"
	NodeMod      NodeType = "mod"
	NodeEq       NodeType = "eq"
	NodeNeq      NodeType = "neq"
	NodeGt       NodeType = "gt"
	NodeGte      NodeType = "gte"
	NodeLt       NodeType = "lt"
	NodeLte      NodeType = "lte"
	NodeMemberOf NodeType = "member-of"
	NodeMatches  NodeType = "matches"
	NodeBindAs   NodeType = "bind-as"

	// Ternary operator
	NodeConditional NodeType = "conditional"
)

// StepType identifies the tag of a pipeline step.
type StepType string

// Pipeline step tags.
const (
	StepFilter    StepType = "filter"
	StepSelect    StepType = "select"
	StepExpand    StepType = "expand"
	StepContract  StepType = "contract"
	StepExtend    StepType = "extend"
	StepSort      StepType = "sort"
	StepGroup     StepType = "group"
	StepAggregate StepType = "aggregate"
)

// Node is an element of a parsed query tree.
//
// Which fields are populated depends on Type:
//   - literal: Value
//   - local-path: Args (key components)
//   - param-path: Index, Args
//   - symbol-path: Name, Args
//   - object: Fields
//   - array, merge: Args
//   - function-call: Name, Args
//   - unary, binary and ternary operators: Args (1, 2 or 3 operands);
//     bind-as carries the target name as a literal second operand
//   - steps: Steps
//   - subquery: Input, Steps
//
// A tree is immutable once handed to the compiler.
type Node struct {
	Type   NodeType
	Value  interface{}
	Name   string
	Index  int
	Args   []*Node
	Fields []Field
	Steps  []*Step
	Input  *Node
}

// Field is one key/value slot of an object constructor.
type Field struct {
	Key   string
	Value *Node
}

// SortKey is one key of a sort step.
type SortKey struct {
	Expr      *Node
	Ascending bool
}

// Step is one stage of a pipeline.
//
// Exprs holds the expressions of filter (exactly one), select, expand,
// contract, extend and group steps. Keys is used by sort and Names by
// aggregate.
type Step struct {
	Type  StepType
	Exprs []*Node
	Keys  []SortKey
	Names []string
}

// IsLiteral reports whether n is a literal node.
func (n *Node) IsLiteral() bool {
	return n != nil && n.Type == NodeLiteral
}

// String returns the node tag.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return string(n.Type)
}

// String returns the step tag.
func (s *Step) String() string {
	if s == nil {
		return "<nil>"
	}
	return string(s.Type)
}
