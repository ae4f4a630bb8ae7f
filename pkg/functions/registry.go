// Package functions provides types for registering extension functions.
//
// Extension functions are looked up by name when a query is compiled, both
// for function-call expressions and for the names listed in an aggregate
// step. A name that is not registered is a compile error, never a run-time
// one.
//
// # Example
//
//	reg, _ := functions.NewRegistry()
//	err := reg.Register(functions.Def{
//	    Name:    "greet",
//	    MinArgs: 1,
//	    MaxArgs: 1,
//	    Fn: func(ctx context.Context, call functions.Call, args ...interface{}) (interface{}, error) {
//	        return "Hello, " + loose.ToString(args[0]) + "!", nil
//	    },
//	})
package functions

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Scope is the read-only view of a record's bindings available to an
// extension function.
type Scope interface {
	// Lookup returns the value bound to name with "as", or a named parameter.
	Lookup(name string) (interface{}, bool)
	// Param returns the positional parameter at index.
	Param(index int) (interface{}, bool)
	// Source returns the input the current (sub)query is running against.
	Source() interface{}
}

// Call describes one invocation of an extension function.
type Call struct {
	// Receiver is the working value the function is applied to: the current
	// record for function-call expressions, the collection for aggregates.
	Receiver interface{}
	// Scope is the binding scope of the current record. Aggregates receive
	// the root scope of the run, which holds the parameters.
	Scope Scope
}

// Func is the signature of an extension function.
// args contains the evaluated arguments in declaration order. Returning
// (nil, nil) means "no result".
type Func func(ctx context.Context, call Call, args ...interface{}) (interface{}, error)

// Def describes a named extension function.
type Def struct {
	// Name is the function name as it appears in queries. Lookups are
	// case-insensitive.
	Name string
	// MinArgs is the minimum number of arguments accepted.
	MinArgs int
	// MaxArgs is the maximum number of arguments accepted, -1 for unlimited.
	MaxArgs int
	// Fn is the implementation.
	Fn Func
}

// Accepts reports whether the function can be called with n arguments.
func (d *Def) Accepts(n int) bool {
	if n < d.MinArgs {
		return false
	}
	return d.MaxArgs < 0 || n <= d.MaxArgs
}

// Arity returns a human readable description of the accepted argument count.
func (d *Def) Arity() string {
	switch {
	case d.MaxArgs < 0:
		return fmt.Sprintf("at least %d", d.MinArgs)
	case d.MinArgs == d.MaxArgs:
		return fmt.Sprintf("exactly %d", d.MinArgs)
	default:
		return fmt.Sprintf("%d to %d", d.MinArgs, d.MaxArgs)
	}
}

// Lookup resolves extension names. It is consulted only while compiling.
type Lookup interface {
	Lookup(name string) (*Def, bool)
}

// Registry is a name-indexed set of extension functions.
//
// A Registry is not safe for concurrent registration. Register everything
// before compiling; after that the registry is only read and may be shared
// by any number of goroutines.
type Registry struct {
	defs map[string]*Def
}

// NewRegistry creates a registry holding defs.
func NewRegistry(defs ...Def) (*Registry, error) {
	r := &Registry{defs: make(map[string]*Def, len(defs))}
	for _, d := range defs {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds or replaces a function. The name is matched without regard
// to case.
func (r *Registry) Register(def Def) error {
	name := strings.TrimSpace(def.Name)
	if name == "" || def.Fn == nil {
		return fmt.Errorf("a name and function are required")
	}
	if def.MaxArgs >= 0 && def.MaxArgs < def.MinArgs {
		return fmt.Errorf("function %q: MaxArgs %d is less than MinArgs %d", name, def.MaxArgs, def.MinArgs)
	}
	d := def
	d.Name = name
	if r.defs == nil {
		r.defs = make(map[string]*Def)
	}
	r.defs[strings.ToLower(name)] = &d
	return nil
}

// Lookup implements Lookup.
func (r *Registry) Lookup(name string) (*Def, bool) {
	if r == nil || len(r.defs) == 0 {
		return nil, false
	}
	d, ok := r.defs[strings.ToLower(name)]
	return d, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for _, d := range r.defs {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	return len(r.defs)
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	c := &Registry{defs: make(map[string]*Def, len(r.defs))}
	for k, d := range r.defs {
		c.defs[k] = d
	}
	return c
}
