// Package loose implements the coercing comparison and arithmetic rules used
// by query operators.
//
// Values are plain Go JSON values: nil (absent), types.Null (explicit null),
// bool, float64 (other Go numeric kinds are accepted), string, []interface{}
// and map[string]interface{}. The rules follow the classic dynamic-language
// abstract equality and relational comparison tables:
//
//   - absent and null are equal to each other and to nothing else
//   - a boolean compares as the number 0 or 1
//   - a string compared with a number is converted to a number
//   - a list or object compared with a primitive is first converted to a
//     primitive (lists join their elements with ",", objects become
//     "[object Object]")
//   - two lists or two objects are equal only when they are the same value
//
// No function in this package performs strict (type-sensitive) equality.
package loose

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/sandrolain/gojunqi/pkg/types"
)

// Kind classifies a value for coercion purposes.
type Kind int

// Value kinds.
const (
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindOther
)

const objectString = "[object Object]"

// KindOf returns the coercion kind of v.
func KindOf(v interface{}) Kind {
	switch v.(type) {
	case nil:
		return KindUndefined
	case types.Null:
		return KindNull
	case bool:
		return KindBool
	case string:
		return KindString
	case []interface{}:
		return KindArray
	case map[string]interface{}:
		return KindObject
	}
	if _, ok := Number(v); ok {
		return KindNumber
	}
	return KindOther
}

// IsNullish reports whether v is absent or an explicit null.
func IsNullish(v interface{}) bool {
	switch v.(type) {
	case nil, types.Null:
		return true
	}
	return false
}

// Number returns v as a float64 if v is of a Go numeric type.
// It performs no conversion from other kinds; see ToNumber for that.
func Number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case int32:
		return float64(n), true
	case int16:
		return float64(n), true
	case int8:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint8:
		return float64(n), true
	}
	return 0, false
}

// Truthy reports whether v counts as true in a boolean context.
// Absent, null, false, 0, NaN and "" are false; everything else, including
// empty lists and objects, is true.
func Truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil, types.Null:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}
	if n, ok := Number(v); ok {
		return n != 0 && !math.IsNaN(n)
	}
	return true
}

// ToNumber converts v to a number.
func ToNumber(v interface{}) float64 {
	switch x := v.(type) {
	case nil:
		return math.NaN()
	case types.Null:
		return 0
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		return parseNumber(x)
	case []interface{}:
		return parseNumber(joinArray(x))
	case map[string]interface{}:
		return math.NaN()
	}
	if n, ok := Number(v); ok {
		return n
	}
	return math.NaN()
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil || strings.ContainsRune(s, '_') {
				return math.NaN()
			}
			return float64(n)
		}
	}
	for _, r := range s {
		if !(r >= '0' && r <= '9') && r != '.' && r != 'e' && r != 'E' && r != '+' && r != '-' {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// ToString converts v to its string form.
func ToString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "undefined"
	case types.Null:
		return "null"
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case []interface{}:
		return joinArray(x)
	case map[string]interface{}:
		return objectString
	}
	if n, ok := Number(v); ok {
		return FormatNumber(n)
	}
	return fmt.Sprint(v)
}

// FormatNumber renders n the way numbers are printed when coerced to strings:
// integers without a fraction, exponent notation outside [1e-6, 1e21).
func FormatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}
	abs := math.Abs(n)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	s := strconv.FormatFloat(n, 'e', -1, 64)
	// Go pads the exponent to two digits ("1e-07"); trim it.
	if i := strings.LastIndexAny(s, "+-"); i > 0 && s[i-1] == 'e' {
		exp := strings.TrimLeft(s[i+1:], "0")
		if exp == "" {
			exp = "0"
		}
		s = s[:i+1] + exp
	}
	return s
}

func joinArray(arr []interface{}) string {
	var sb strings.Builder
	for i, item := range arr {
		if i > 0 {
			sb.WriteByte(',')
		}
		if IsNullish(item) {
			continue
		}
		sb.WriteString(ToString(item))
	}
	return sb.String()
}

// toPrimitive converts lists and objects to strings and leaves primitives
// untouched.
func toPrimitive(v interface{}) interface{} {
	switch x := v.(type) {
	case []interface{}:
		return joinArray(x)
	case map[string]interface{}:
		return objectString
	}
	return v
}

// Identical reports whether a and b are the same value: equal primitives, or
// the very same list or object.
//
// Lists without backing storage (zero capacity) carry no identity: Go gives
// them all the same address, so two of them are never identical, not even a
// list compared with itself.
func Identical(a, b interface{}) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindUndefined, KindNull:
		return true
	case KindNumber:
		na, _ := Number(a)
		nb, _ := Number(b)
		return na == nb
	case KindArray:
		va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
		if va.Cap() == 0 || vb.Cap() == 0 {
			return false
		}
		return va.Len() == vb.Len() && va.Cap() == vb.Cap() && va.Pointer() == vb.Pointer()
	case KindObject:
		return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
	case KindOther:
		ta := reflect.TypeOf(a)
		if ta != reflect.TypeOf(b) || !ta.Comparable() {
			return false
		}
		return a == b
	}
	return a == b
}

// Equal implements coercing equality.
func Equal(a, b interface{}) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka == kb {
		return Identical(a, b)
	}
	aNullish := ka == KindUndefined || ka == KindNull
	bNullish := kb == KindUndefined || kb == KindNull
	if aNullish || bNullish {
		return aNullish && bNullish
	}
	switch {
	case ka == KindNumber && kb == KindString:
		return Equal(a, ToNumber(b))
	case ka == KindString && kb == KindNumber:
		return Equal(ToNumber(a), b)
	case ka == KindBool:
		return Equal(ToNumber(a), b)
	case kb == KindBool:
		return Equal(a, ToNumber(b))
	case (ka == KindString || ka == KindNumber) && (kb == KindArray || kb == KindObject):
		return Equal(a, toPrimitive(b))
	case (ka == KindArray || ka == KindObject) && (kb == KindString || kb == KindNumber):
		return Equal(toPrimitive(a), b)
	}
	return false
}

// less implements the abstract relational comparison a < b. The second
// result is false when the comparison is undefined (a NaN was involved).
func less(a, b interface{}) (bool, bool) {
	pa, pb := toPrimitive(a), toPrimitive(b)
	sa, aStr := pa.(string)
	sb, bStr := pb.(string)
	if aStr && bStr {
		return lessUTF16(sa, sb), true
	}
	na, nb := ToNumber(pa), ToNumber(pb)
	if math.IsNaN(na) || math.IsNaN(nb) {
		return false, false
	}
	return na < nb, true
}

// lessUTF16 orders strings by UTF-16 code units. Byte order agrees with it
// unless a supplementary-plane rune meets a rune in U+E000..U+FFFF.
func lessUTF16(a, b string) bool {
	if !hasSupplementary(a) && !hasSupplementary(b) {
		return a < b
	}
	ua, ub := utf16.Encode([]rune(a)), utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}

func hasSupplementary(s string) bool {
	for _, r := range s {
		if r > 0xFFFF {
			return true
		}
	}
	return false
}

// Less reports a < b.
func Less(a, b interface{}) bool {
	r, ok := less(a, b)
	return ok && r
}

// Greater reports a > b.
func Greater(a, b interface{}) bool {
	r, ok := less(b, a)
	return ok && r
}

// LessEqual reports a <= b.
func LessEqual(a, b interface{}) bool {
	r, ok := less(b, a)
	return ok && !r
}

// GreaterEqual reports a >= b.
func GreaterEqual(a, b interface{}) bool {
	r, ok := less(a, b)
	return ok && !r
}

// Compare orders a and b for sorting: 0 when loosely equal, 1 when a > b,
// -1 otherwise.
func Compare(a, b interface{}) int {
	if Equal(a, b) {
		return 0
	}
	if Greater(a, b) {
		return 1
	}
	return -1
}

// Add implements "+": string concatenation when either primitive operand is
// a string, numeric addition otherwise.
func Add(a, b interface{}) interface{} {
	pa, pb := toPrimitive(a), toPrimitive(b)
	_, aStr := pa.(string)
	_, bStr := pb.(string)
	if aStr || bStr {
		return ToString(pa) + ToString(pb)
	}
	return ToNumber(pa) + ToNumber(pb)
}

// Sub implements "-".
func Sub(a, b interface{}) interface{} {
	return ToNumber(a) - ToNumber(b)
}

// Mul implements "*".
func Mul(a, b interface{}) interface{} {
	return ToNumber(a) * ToNumber(b)
}

// Div implements "/". Division by zero yields an infinity or NaN.
func Div(a, b interface{}) interface{} {
	return ToNumber(a) / ToNumber(b)
}

// Mod implements "%" with the sign of the dividend.
func Mod(a, b interface{}) interface{} {
	return math.Mod(ToNumber(a), ToNumber(b))
}

// Negate implements unary "-".
func Negate(a interface{}) interface{} {
	return -ToNumber(a)
}

// Not implements logical negation.
func Not(a interface{}) interface{} {
	return !Truthy(a)
}
