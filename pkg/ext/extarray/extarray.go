// Package extarray provides list functions for the default extension set.
// Non-list arguments are returned unchanged.
package extarray

import (
	"context"

	"github.com/sandrolain/gojunqi/pkg/ext/extutil"
	"github.com/sandrolain/gojunqi/pkg/functions"
	"github.com/sandrolain/gojunqi/pkg/loose"
)

// All returns all array function definitions.
func All() []functions.Def {
	return []functions.Def{
		First(),
		Last(),
		Unique(),
	}
}

// First returns the definition for first(list).
func First() functions.Def {
	return listFunc("first", func(list []interface{}) interface{} {
		if len(list) == 0 {
			return nil
		}
		return list[0]
	})
}

// Last returns the definition for last(list).
func Last() functions.Def {
	return listFunc("last", func(list []interface{}) interface{} {
		if len(list) == 0 {
			return nil
		}
		return list[len(list)-1]
	})
}

// Unique returns the definition for unique(list). Elements are compared with
// loose equality and the first occurrence of each is kept.
func Unique() functions.Def {
	return listFunc("unique", func(list []interface{}) interface{} {
		out := make([]interface{}, 0, len(list))
	next:
		for _, v := range list {
			for _, seen := range out {
				if loose.Equal(seen, v) {
					continue next
				}
			}
			out = append(out, v)
		}
		return out
	})
}

func listFunc(name string, fn func([]interface{}) interface{}) functions.Def {
	return functions.Def{
		Name:    name,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(_ context.Context, _ functions.Call, args ...interface{}) (interface{}, error) {
			list, ok := extutil.AsList(args[0])
			if !ok {
				return args[0], nil
			}
			return fn(list), nil
		},
	}
}
