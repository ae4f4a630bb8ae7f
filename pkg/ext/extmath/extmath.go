// Package extmath provides the numeric functions of the default extension
// set. Every argument is coerced to a number first, so abs("-3") is 3 and
// abs("x") is NaN.
package extmath

import (
	"math"

	"github.com/sandrolain/gojunqi/pkg/ext/extutil"
	"github.com/sandrolain/gojunqi/pkg/functions"
)

// All returns all math function definitions.
func All() []functions.Def {
	return []functions.Def{
		Abs(),
		Acos(),
		Asin(),
		Atan(),
		Atan2(),
		Ceil(),
		Cos(),
		Exp(),
		Floor(),
		Log(),
		Pow(),
		Round(),
		Sin(),
		Sqrt(),
		Tan(),
	}
}

// Abs returns the definition for abs(n).
func Abs() functions.Def { return extutil.Unary("abs", math.Abs) }

// Acos returns the definition for acos(n).
func Acos() functions.Def { return extutil.Unary("acos", math.Acos) }

// Asin returns the definition for asin(n).
func Asin() functions.Def { return extutil.Unary("asin", math.Asin) }

// Atan returns the definition for atan(n).
func Atan() functions.Def { return extutil.Unary("atan", math.Atan) }

// Atan2 returns the definition for atan2(y, x).
func Atan2() functions.Def { return extutil.Binary("atan2", math.Atan2) }

// Ceil returns the definition for ceil(n).
func Ceil() functions.Def { return extutil.Unary("ceil", math.Ceil) }

// Cos returns the definition for cos(n).
func Cos() functions.Def { return extutil.Unary("cos", math.Cos) }

// Exp returns the definition for exp(n).
func Exp() functions.Def { return extutil.Unary("exp", math.Exp) }

// Floor returns the definition for floor(n).
func Floor() functions.Def { return extutil.Unary("floor", math.Floor) }

// Log returns the definition for log(n), the natural logarithm.
func Log() functions.Def { return extutil.Unary("log", math.Log) }

// Pow returns the definition for pow(base, exp).
func Pow() functions.Def { return extutil.Binary("pow", math.Pow) }

// Round returns the definition for round(n).
func Round() functions.Def { return extutil.Unary("round", RoundHalfUp) }

// Sin returns the definition for sin(n).
func Sin() functions.Def { return extutil.Unary("sin", math.Sin) }

// Sqrt returns the definition for sqrt(n).
func Sqrt() functions.Def { return extutil.Unary("sqrt", math.Sqrt) }

// Tan returns the definition for tan(n).
func Tan() functions.Def { return extutil.Unary("tan", math.Tan) }

// RoundHalfUp rounds to the nearest integer, with halves going towards
// positive infinity: 2.5 becomes 3 and -2.5 becomes -2.
func RoundHalfUp(n float64) float64 {
	r := math.Round(n)
	if r-n == -0.5 {
		r++
	}
	return r
}
