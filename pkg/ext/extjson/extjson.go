// Package extjson provides JSON text conversion for the default extension set.
package extjson

import (
	"context"
	"fmt"

	"github.com/ohler55/ojg/oj"

	"github.com/sandrolain/gojunqi/pkg/codec"
	"github.com/sandrolain/gojunqi/pkg/functions"
	"github.com/sandrolain/gojunqi/pkg/loose"
)

// All returns all JSON function definitions.
func All() []functions.Def {
	return []functions.Def{
		Parse(),
		Stringify(),
	}
}

// Parse returns the definition for jsonParse(text). The argument is
// converted to a string; JSON null parses to an explicit null.
func Parse() functions.Def {
	return functions.Def{
		Name:    "jsonParse",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(_ context.Context, _ functions.Call, args ...interface{}) (interface{}, error) {
			v, err := oj.ParseString(loose.ToString(args[0]))
			if err != nil {
				return nil, fmt.Errorf("jsonParse: %w", err)
			}
			return codec.Normalize(v), nil
		},
	}
}

// Stringify returns the definition for jsonStringify(value). Object keys are
// written in sorted order. An absent value has no JSON form and yields
// nothing.
func Stringify() functions.Def {
	return functions.Def{
		Name:    "jsonStringify",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(_ context.Context, _ functions.Call, args ...interface{}) (interface{}, error) {
			if args[0] == nil {
				return nil, nil
			}
			b, err := codec.Marshal(args[0], 0)
			if err != nil {
				return nil, fmt.Errorf("jsonStringify: %w", err)
			}
			return string(b), nil
		},
	}
}
