// Package gojunqi compiles and runs junqi queries: pipelines of filter,
// select, expand, extend, sort, group and aggregate steps over lists of JSON
// records.
//
// Queries arrive as parse trees (see pkg/types), either built in Go or
// decoded from their JSON/YAML wire form (see pkg/codec). A compiled query is
// immutable and can be run any number of times, concurrently, against
// different records and parameters.
//
// # Quick Start
//
//	// Compile once, run many times
//	q, err := gojunqi.Compile(types.Pipeline(
//	    types.Filter(types.Binary(types.NodeGt, types.Local("age"), 40.0)),
//	    types.Select(types.Local("name")),
//	))
//	names, _ := q.Run(ctx, people, gojunqi.Params{})
//
//	// Decode, compile and run in one call
//	out, err := gojunqi.Query(ctx, treeJSON, records, gojunqi.Args(40.0))
//
// # More Information
//
//   - Trees: github.com/sandrolain/gojunqi/pkg/types
//   - Wire form: github.com/sandrolain/gojunqi/pkg/codec
//   - Compiler: github.com/sandrolain/gojunqi/pkg/compiler
//   - Extensions: github.com/sandrolain/gojunqi/pkg/ext
package gojunqi

import (
	"context"
	"fmt"
	"sync"

	"github.com/sandrolain/gojunqi/pkg/codec"
	"github.com/sandrolain/gojunqi/pkg/compiler"
	"github.com/sandrolain/gojunqi/pkg/ext"
	"github.com/sandrolain/gojunqi/pkg/types"
)

// Params holds the positional and named parameters of a run.
type Params = compiler.Params

// Args returns positional parameters.
func Args(values ...interface{}) Params { return compiler.Args(values...) }

// Named returns named parameters.
func Named(values map[string]interface{}) Params { return compiler.Named(values) }

var (
	defaultOnce     sync.Once
	defaultCompiler *compiler.Compiler
	defaultErr      error
)

// Version returns the current version of gojunqi.
func Version() string {
	return "v0.1.0-dev"
}

// New creates a compiler with every default extension registered. opts are
// applied afterwards, so functions passed with compiler.WithFunctions replace
// defaults of the same name.
func New(opts ...compiler.Option) (*compiler.Compiler, error) {
	return compiler.New(append([]compiler.Option{ext.WithAll()}, opts...)...)
}

func shared() (*compiler.Compiler, error) {
	defaultOnce.Do(func() {
		defaultCompiler, defaultErr = New(compiler.WithCaching(true))
	})
	return defaultCompiler, defaultErr
}

// Compile compiles tree with the shared default compiler, which has every
// default extension and caches compiled queries.
func Compile(tree *types.Node, opts ...compiler.CompileOption) (*compiler.Query, error) {
	c, err := shared()
	if err != nil {
		return nil, err
	}
	return c.Compile(tree, opts...)
}

// CompileJSON decodes a JSON tree and compiles it.
func CompileJSON(tree []byte, opts ...compiler.CompileOption) (*compiler.Query, error) {
	n, err := codec.DecodeJSON(tree)
	if err != nil {
		return nil, err
	}
	return Compile(n, opts...)
}

// MustCompile is like Compile but panics if the tree cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(tree *types.Node) *compiler.Query {
	q, err := Compile(tree)
	if err != nil {
		panic(fmt.Sprintf("gojunqi: Compile(%s): %v", codec.Describe(tree), err))
	}
	return q
}

// Query is a convenience function that decodes a JSON tree, compiles it and
// runs it against data in a single call.
func Query(ctx context.Context, tree []byte, data interface{}, params Params) ([]interface{}, error) {
	q, err := CompileJSON(tree)
	if err != nil {
		return nil, err
	}
	return q.Run(ctx, data, params)
}
