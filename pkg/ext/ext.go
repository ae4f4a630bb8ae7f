// Package ext provides the default extension functions available to queries.
//
// The extension functions live in sub-packages grouped by category:
//   - extmath      – abs, ceil, floor, round, pow, sqrt, trig functions, …
//   - extaggregate – avg, count, max, median, min, sum
//   - extarray     – first, last, unique
//   - extstring    – lower, upper, title, split, string, number
//   - extjson      – jsonParse, jsonStringify
//
// # Integration – all extensions at once
//
//	c, err := compiler.New(ext.WithAll())
//
// # Integration – by category
//
//	c, err := compiler.New(ext.WithAggregate(), ext.WithMath())
//
// # Integration – single function from a sub-package
//
//	c, err := compiler.New(compiler.WithFunctions(extstring.Title()))
package ext

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sandrolain/gojunqi/pkg/compiler"
	"github.com/sandrolain/gojunqi/pkg/ext/extaggregate"
	"github.com/sandrolain/gojunqi/pkg/ext/extarray"
	"github.com/sandrolain/gojunqi/pkg/ext/extjson"
	"github.com/sandrolain/gojunqi/pkg/ext/extmath"
	"github.com/sandrolain/gojunqi/pkg/ext/extstring"
	"github.com/sandrolain/gojunqi/pkg/functions"
)

// Category names accepted by Category.
const (
	CategoryMath      = "math"
	CategoryAggregate = "aggregate"
	CategoryArray     = "array"
	CategoryString    = "string"
	CategoryJSON      = "json"
)

var categories = map[string]func() []functions.Def{
	CategoryMath:      extmath.All,
	CategoryAggregate: extaggregate.All,
	CategoryArray:     extarray.All,
	CategoryString:    extstring.All,
	CategoryJSON:      extjson.All,
}

// All returns every default extension function definition.
func All() []functions.Def {
	var all []functions.Def
	for _, name := range Categories() {
		all = append(all, categories[name]()...)
	}
	return all
}

// Categories returns the known category names in sorted order.
func Categories() []string {
	names := make([]string, 0, len(categories))
	for name := range categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Category returns the definitions of the named category. The name is
// matched without regard to case.
func Category(name string) ([]functions.Def, error) {
	fn, ok := categories[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown extension category %q (known: %s)", name, strings.Join(Categories(), ", "))
	}
	return fn(), nil
}

// WithAll registers every default extension.
func WithAll() compiler.Option {
	return compiler.WithFunctions(All()...)
}

// WithMath registers only the math extensions.
func WithMath() compiler.Option {
	return compiler.WithFunctions(extmath.All()...)
}

// WithAggregate registers only the aggregate extensions.
func WithAggregate() compiler.Option {
	return compiler.WithFunctions(extaggregate.All()...)
}

// WithArray registers only the array extensions.
func WithArray() compiler.Option {
	return compiler.WithFunctions(extarray.All()...)
}

// WithString registers only the string extensions.
func WithString() compiler.Option {
	return compiler.WithFunctions(extstring.All()...)
}

// WithJSON registers only the JSON extensions.
func WithJSON() compiler.Option {
	return compiler.WithFunctions(extjson.All()...)
}
