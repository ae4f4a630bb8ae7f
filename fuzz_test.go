package gojunqi_test

import (
	"context"
	"testing"
	"time"

	"github.com/sandrolain/gojunqi"
)

var fixtureData = []interface{}{
	map[string]interface{}{"name": "Alice", "age": 30.0, "tags": []interface{}{"a", "b"}},
	map[string]interface{}{"name": "Bob", "age": 200.0, "tags": []interface{}{}},
	"loose",
	nil,
}

func FuzzQuery(f *testing.F) {
	seeds := []string{
		`{"op":"steps","steps":[{"step":"filter","expr":{"op":"gt","args":[{"op":"local-path","path":["age"]},40]}}]}`,
		`{"op":"steps","steps":[{"step":"group","exprs":[{"op":"local-path","path":["tags"]}]},{"step":"aggregate","names":["count"]}]}`,
		`{"op":"steps","steps":[{"step":"expand","exprs":[{"op":"local-path","path":["tags"]}]}]}`,
		`{"op":"steps","steps":[{"step":"select","exprs":[{"op":"matches","args":[{"op":"literal","value":["^a","i"]},{"op":"local-path","path":["name"]}]}]}]}`,
		`{"op":"steps","steps":[{"step":"sort","keys":[{"expr":{"op":"local-path","path":["name"]},"desc":true}]}]}`,
		`{"op":"steps","steps":[]}`,
		`{"op":"steps"`,
		``,
	}
	for _, s := range seeds {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, input string) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		_, _ = gojunqi.Query(ctx, []byte(input), fixtureData, gojunqi.Params{})
	})
}
