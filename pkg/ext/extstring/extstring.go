// Package extstring provides string functions for the default extension set.
package extstring

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sandrolain/gojunqi/pkg/ext/extutil"
	"github.com/sandrolain/gojunqi/pkg/functions"
	"github.com/sandrolain/gojunqi/pkg/loose"
)

var wordPattern = regexp.MustCompile(`\w\S*`)

// All returns all string function definitions.
func All() []functions.Def {
	return []functions.Def{
		Lower(),
		Upper(),
		Title(),
		Split(),
		String(),
		Number(),
	}
}

// Lower returns the definition for lower(s). Non-strings pass through.
func Lower() functions.Def {
	return stringFunc("lower", strings.ToLower)
}

// Upper returns the definition for upper(s). Non-strings pass through.
func Upper() functions.Def {
	return stringFunc("upper", strings.ToUpper)
}

// Title returns the definition for title(s): every word gets an upper-case
// first letter and a lower-case remainder.
func Title() functions.Def {
	return stringFunc("title", func(s string) string {
		return wordPattern.ReplaceAllStringFunc(s, func(word string) string {
			r, size := utf8.DecodeRuneInString(word)
			return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
		})
	})
}

// Split returns the definition for split(value, delim?, idx?).
//
// The value is converted to a string. Without a delimiter (or with an empty
// one) it is split on runs of whitespace. With idx the single element at that
// position is returned, or nothing when idx is out of range.
func Split() functions.Def {
	return functions.Def{
		Name:    "split",
		MinArgs: 1,
		MaxArgs: 3,
		Fn: func(_ context.Context, _ functions.Call, args ...interface{}) (interface{}, error) {
			s := loose.ToString(args[0])
			var parts []string
			if delim := extutil.Arg(args, 1); loose.Truthy(delim) {
				parts = strings.Split(s, loose.ToString(delim))
			} else {
				parts = strings.Fields(s)
			}

			idx := extutil.Arg(args, 2)
			if idx == nil {
				out := make([]interface{}, len(parts))
				for i, p := range parts {
					out[i] = p
				}
				return out, nil
			}
			n := loose.ToNumber(idx)
			if math.IsNaN(n) || n != math.Trunc(n) {
				return nil, fmt.Errorf("split: index must be an integer, got %s", loose.ToString(idx))
			}
			if n < 0 || int(n) >= len(parts) {
				return nil, nil
			}
			return parts[int(n)], nil
		},
	}
}

// String returns the definition for string(value).
func String() functions.Def {
	return functions.Def{
		Name:    "string",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(_ context.Context, _ functions.Call, args ...interface{}) (interface{}, error) {
			return loose.ToString(args[0]), nil
		},
	}
}

// Number returns the definition for number(value).
func Number() functions.Def {
	return functions.Def{
		Name:    "number",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(_ context.Context, _ functions.Call, args ...interface{}) (interface{}, error) {
			return loose.ToNumber(args[0]), nil
		},
	}
}

func stringFunc(name string, fn func(string) string) functions.Def {
	return functions.Def{
		Name:    name,
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(_ context.Context, _ functions.Call, args ...interface{}) (interface{}, error) {
			s, ok := args[0].(string)
			if !ok {
				return args[0], nil
			}
			return fn(s), nil
		},
	}
}
