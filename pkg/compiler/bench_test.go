// Run all benchmarks:
//
//	go test -bench=. -benchmem ./pkg/compiler/...
package compiler_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/sandrolain/gojunqi/pkg/compiler"
	"github.com/sandrolain/gojunqi/pkg/ext/extaggregate"
	"github.com/sandrolain/gojunqi/pkg/types"
)

var departments = []string{"Engineering", "Sales", "Marketing", "HR", "Finance"}

func buildDataset(n int) []interface{} {
	users := make([]interface{}, n)
	for i := 0; i < n; i++ {
		users[i] = map[string]interface{}{
			"id":         float64(i + 1),
			"name":       fmt.Sprintf("User%d", i+1),
			"age":        float64(20 + (i % 40)),
			"department": departments[i%5],
			"salary":     float64(70000 + (i * 1000)),
			"active":     i%2 == 0,
			"projects":   []interface{}{fmt.Sprintf("Project%d", i), fmt.Sprintf("Project%d", i+1)},
		}
	}
	return users
}

var benchSizes = []int{10, 100, 1000}

func benchQuery(b *testing.B, tree *types.Node) {
	b.Helper()
	c, err := compiler.New(compiler.WithFunctions(extaggregate.All()...))
	if err != nil {
		b.Fatal(err)
	}
	q, err := c.Compile(tree)
	if err != nil {
		b.Fatal(err)
	}
	for _, n := range benchSizes {
		data := buildDataset(n)
		b.Run(fmt.Sprintf("users=%d", n), func(b *testing.B) {
			ctx := context.Background()
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := q.Run(ctx, data, compiler.Params{}); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkFilterSelect(b *testing.B) {
	benchQuery(b, types.Pipeline(
		types.Filter(types.Binary(types.NodeAnd, types.Local("active"), types.Binary(types.NodeGt, types.Local("age"), 30.0))),
		types.Select(types.Obj(types.F("name", types.Local("name")), types.F("dept", types.Local("department")))),
	))
}

func BenchmarkSort(b *testing.B) {
	benchQuery(b, types.Pipeline(
		types.Sort(types.Asc(types.Local("department")), types.Desc(types.Local("salary"))),
	))
}

func BenchmarkGroupAggregate(b *testing.B) {
	benchQuery(b, types.Pipeline(
		types.Group(types.Local("department"), types.Local("active")),
		types.Select(types.Local("salary")),
		types.Aggregate("avg"),
	))
}

func BenchmarkExpandSubquery(b *testing.B) {
	benchQuery(b, types.Pipeline(
		types.Filter(types.As(types.Local("name"), "who")),
		types.Expand(types.Subquery(types.Local("projects"),
			types.Select(types.Obj(types.F("who", types.Symbol("who")), types.F("project", types.This()))))),
	))
}

func BenchmarkCompile(b *testing.B) {
	c, err := compiler.New(compiler.WithFunctions(extaggregate.All()...))
	if err != nil {
		b.Fatal(err)
	}
	tree := types.Pipeline(
		types.Filter(types.Binary(types.NodeMatches, types.Arr("^user", "i"), types.Local("name"))),
		types.Group(types.Local("department")),
		types.Select(types.Local("salary")),
		types.Aggregate("sum"),
	)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := c.Compile(tree); err != nil {
			b.Fatal(err)
		}
	}
}
