package compiler

import (
	"fmt"
)

// Scope holds the bindings visible to one record.
//
// Scopes form a parent-linked chain. The root frame of a run holds the
// positional and named parameters; every record gets a child frame so that
// values written with "as" stay private to that record and to the items
// derived from it.
type Scope struct {
	// parent is the enclosing frame.
	parent *Scope

	// bindings stores "as" assignments and, in the root frame, named params.
	bindings map[string]interface{}

	// params holds positional parameters. Only set on root frames.
	params []interface{}

	// source is the input of the (sub)query the frame belongs to.
	source    interface{}
	hasSource bool

	// depth tracks nesting to keep debug output readable.
	depth int
}

// NewScope creates a root frame holding p and the query input source.
func NewScope(p Params, source interface{}) *Scope {
	s := &Scope{
		params:    p.Positional,
		source:    source,
		hasSource: true,
	}
	if len(p.Named) > 0 {
		s.bindings = make(map[string]interface{}, len(p.Named))
		for k, v := range p.Named {
			s.bindings[k] = v
		}
	}
	return s
}

// Child creates a frame whose reads fall through to s.
func (s *Scope) Child() *Scope {
	if s == nil {
		return &Scope{}
	}
	return &Scope{parent: s, depth: s.depth + 1}
}

// withSource creates a child frame that reports source as its input.
func (s *Scope) withSource(source interface{}) *Scope {
	c := s.Child()
	c.source = source
	c.hasSource = true
	return c
}

// Set binds name in this frame.
func (s *Scope) Set(name string, value interface{}) {
	if s.bindings == nil {
		s.bindings = make(map[string]interface{})
	}
	s.bindings[name] = value
}

// Lookup retrieves a binding. It searches this frame and then its parents.
func (s *Scope) Lookup(name string) (interface{}, bool) {
	for f := s; f != nil; f = f.parent {
		if value, ok := f.bindings[name]; ok {
			return value, true
		}
	}
	return nil, false
}

// Param returns the positional parameter at index from the nearest frame
// carrying parameters.
func (s *Scope) Param(index int) (interface{}, bool) {
	for f := s; f != nil; f = f.parent {
		if f.params == nil {
			continue
		}
		if index < 0 || index >= len(f.params) {
			return nil, false
		}
		return f.params[index], true
	}
	return nil, false
}

// Source returns the input of the nearest enclosing (sub)query.
func (s *Scope) Source() interface{} {
	for f := s; f != nil; f = f.parent {
		if f.hasSource {
			return f.source
		}
	}
	return nil
}

// Depth returns the number of frames above s.
func (s *Scope) Depth() int {
	if s == nil {
		return 0
	}
	return s.depth
}

// String returns a string representation of the scope.
func (s *Scope) String() string {
	if s == nil {
		return "Scope{}"
	}
	return fmt.Sprintf("Scope{depth=%d, bindings=%d}", s.depth, len(s.bindings))
}

// Params are the values a query is run with.
//
// Positional parameters are addressed by param-path nodes; named ones by
// symbol-path nodes, which also see "as" bindings. A binding shadows a named
// parameter of the same name.
type Params struct {
	Positional []interface{}
	Named      map[string]interface{}
}

// Args returns positional parameters.
func Args(values ...interface{}) Params {
	return Params{Positional: values}
}

// Named returns named parameters.
func Named(values map[string]interface{}) Params {
	return Params{Named: values}
}

// IsZero reports whether p carries no parameters.
func (p Params) IsZero() bool {
	return len(p.Positional) == 0 && len(p.Named) == 0
}

// Override returns p with the entries of over applied on top: positions and
// names present in over win.
func (p Params) Override(over Params) Params {
	if p.IsZero() {
		return over
	}
	if over.IsZero() {
		return p
	}

	out := Params{}
	n := len(p.Positional)
	if len(over.Positional) > n {
		n = len(over.Positional)
	}
	if n > 0 {
		out.Positional = make([]interface{}, n)
		copy(out.Positional, p.Positional)
		copy(out.Positional, over.Positional)
	}

	if len(p.Named)+len(over.Named) > 0 {
		out.Named = make(map[string]interface{}, len(p.Named)+len(over.Named))
		for k, v := range p.Named {
			out.Named[k] = v
		}
		for k, v := range over.Named {
			out.Named[k] = v
		}
	}
	return out
}
