package compiler

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/sandrolain/gojunqi/pkg/loose"
	"github.com/sandrolain/gojunqi/pkg/types"
)

// patternCache memoizes regular expressions built from run-time patterns.
type patternCache struct {
	m sync.Map // string -> *regexp.Regexp
}

// patternSource extracts a pattern and its flags from the left operand of
// "matches": either a string or a [pattern, flags] list.
func patternSource(v interface{}) (pattern, flags string, ok bool) {
	switch x := v.(type) {
	case string:
		return x, "", true
	case []interface{}:
		if len(x) == 0 {
			return "", "", false
		}
		p, ok := x[0].(string)
		if !ok {
			return "", "", false
		}
		if len(x) > 1 && !loose.IsNullish(x[1]) {
			flags = loose.ToString(x[1])
		}
		return p, flags, true
	}
	return "", "", false
}

// compilePattern translates pattern flags to RE2 syntax. "g", "y", "u" and
// "d" do not affect a single match test and are accepted and ignored.
func compilePattern(pattern, flags string) (*regexp.Regexp, error) {
	var inline strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			if !strings.ContainsRune(inline.String(), f) {
				inline.WriteRune(f)
			}
		case 'g', 'y', 'u', 'd':
		default:
			return nil, fmt.Errorf("invalid flag %q", f)
		}
	}
	if inline.Len() > 0 {
		pattern = "(?" + inline.String() + ")" + pattern
	}
	return regexp.Compile(pattern)
}

func (pc *patternCache) get(pattern, flags string) (*regexp.Regexp, error) {
	key := flags + "/" + pattern
	if re, ok := pc.m.Load(key); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := compilePattern(pattern, flags)
	if err != nil {
		return nil, err
	}
	actual, _ := pc.m.LoadOrStore(key, re)
	return actual.(*regexp.Regexp), nil
}

// compileMatches compiles "pattern matches subject". A pattern that is not
// a string or list never matches. Constant patterns are compiled now.
func (c *Compiler) compileMatches(n *types.Node) (Evaluator, error) {
	args, err := c.operands(n, 2)
	if err != nil {
		return Evaluator{}, err
	}
	pat, subject := args[0], args[1]

	if pat.IsConstant() {
		p, flags, ok := patternSource(pat.Value())
		if !ok {
			return Constant(false), nil
		}
		re, err := compilePattern(p, flags)
		if err != nil {
			return Evaluator{}, types.NewError(types.ErrInvalidPattern, "invalid regular expression", -1).
				WithToken(p).WithCause(err)
		}
		if subject.IsConstant() {
			return Constant(re.MatchString(loose.ToString(subject.Value()))), nil
		}
		return Dynamic(func(ctx context.Context, value interface{}, scope *Scope) (interface{}, error) {
			sv, err := subject.Eval(ctx, value, scope)
			if err != nil {
				return nil, err
			}
			return re.MatchString(loose.ToString(sv)), nil
		}), nil
	}

	cache := &patternCache{}
	return Dynamic(func(ctx context.Context, value interface{}, scope *Scope) (interface{}, error) {
		pv, err := pat.Eval(ctx, value, scope)
		if err != nil {
			return nil, err
		}
		sv, err := subject.Eval(ctx, value, scope)
		if err != nil {
			return nil, err
		}
		p, flags, ok := patternSource(pv)
		if !ok {
			return false, nil
		}
		re, err := cache.get(p, flags)
		if err != nil {
			return nil, types.NewError(types.ErrRuntimePattern, "invalid regular expression", -1).
				WithToken(p).WithCause(err)
		}
		return re.MatchString(loose.ToString(sv)), nil
	}), nil
}
