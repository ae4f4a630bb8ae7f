// Package extaggregate provides the aggregate functions of the default
// extension set. Each takes a single collection argument, so they can appear
// both in aggregate steps and as ordinary calls on list values.
//
// A number passed where a list is expected is returned unchanged; any other
// non-list value yields NaN.
package extaggregate

import (
	"context"
	"math"
	"slices"

	"github.com/sandrolain/gojunqi/pkg/ext/extutil"
	"github.com/sandrolain/gojunqi/pkg/functions"
	"github.com/sandrolain/gojunqi/pkg/loose"
)

// All returns all aggregate function definitions.
func All() []functions.Def {
	return []functions.Def{
		Avg(),
		Count(),
		Max(),
		Median(),
		Min(),
		Sum(),
	}
}

// Avg returns the definition for avg(list). The average of an empty list is 0.
func Avg() functions.Def {
	return extutil.Reduce("avg", func(list []interface{}) interface{} {
		if len(list) == 0 {
			return 0.0
		}
		return loose.Div(total(list), float64(len(list)))
	})
}

// Count returns the definition for count(list). Non-list values count as 0.
func Count() functions.Def {
	return functions.Def{
		Name:    "count",
		MinArgs: 1,
		MaxArgs: 1,
		Fn: func(_ context.Context, _ functions.Call, args ...interface{}) (interface{}, error) {
			list, ok := extutil.AsList(args[0])
			if !ok {
				return 0.0, nil
			}
			return float64(len(list)), nil
		},
	}
}

// Max returns the definition for max(list). The maximum of an empty list is
// negative infinity.
func Max() functions.Def {
	return extutil.Reduce("max", func(list []interface{}) interface{} {
		res := math.Inf(-1)
		for _, n := range extutil.Numbers(list) {
			res = math.Max(res, n)
		}
		return res
	})
}

// Median returns the definition for median(list).
func Median() functions.Def {
	return extutil.Reduce("median", func(list []interface{}) interface{} {
		if len(list) == 0 {
			return 0.0
		}
		nums := extutil.Numbers(list)
		slices.Sort(nums)
		mid := len(nums) / 2
		if len(nums)%2 == 0 {
			return (nums[mid-1] + nums[mid]) / 2
		}
		return nums[mid]
	})
}

// Min returns the definition for min(list). The minimum of an empty list is
// positive infinity.
func Min() functions.Def {
	return extutil.Reduce("min", func(list []interface{}) interface{} {
		res := math.Inf(1)
		for _, n := range extutil.Numbers(list) {
			res = math.Min(res, n)
		}
		return res
	})
}

// Sum returns the definition for sum(list).
func Sum() functions.Def {
	return extutil.Reduce("sum", total)
}

// total adds the elements with the "+" operator, so a string element turns
// the running total into a concatenation.
func total(list []interface{}) interface{} {
	var res interface{} = 0.0
	for _, v := range list {
		res = loose.Add(res, v)
	}
	return res
}
