package mathexec

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Value is the result of evaluating an expression or any part of one. The
// default registry produces float64, string, bool, and []Value; other
// registries may use their own types.
type Value = any

// Float converts v to a float64 the way the default arithmetic operators
// do. Numbers convert directly, booleans are 1 or 0, nil is 0, and strings
// convert if they hold a decimal number. Big floats and types with a Float64 method
// like decimal.Decimal's convert with rounding. The second result is false
// if v has no numeric interpretation.
func Float(v Value) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case nil:
		return 0, true
	case string:
		x = strings.TrimSpace(x)
		if !decimalText(x) {
			return 0, false
		}
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	case *big.Float:
		f, _ := x.Float64()
		return f, true
	case interface{ Float64() (float64, bool) }:
		f, _ := x.Float64()
		return f, true
	default:
		return 0, false
	}
}

// decimalText reports whether s is a decimal number: an optional sign,
// digits with at most one point, and an optional exponent. Spellings of
// NaN and infinity, hex, and digit separators are not numbers.
func decimalText(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits, point := 0, false
mantissa:
	for ; i < len(s); i++ {
		switch c := s[i]; {
		case '0' <= c && c <= '9':
			digits++
		case c == '.' && !point:
			point = true
		default:
			break mantissa
		}
	}
	if digits == 0 {
		return false
	}
	if i == len(s) {
		return true
	}
	if s[i] != 'e' && s[i] != 'E' {
		return false
	}
	i++
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Truthy reports whether v counts as true in a condition. False, nil, zero,
// NaN, the empty string, "0", and empty arrays are false.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case bool:
		return x
	case nil:
		return false
	case string:
		return x != "" && x != "0"
	case []Value:
		return len(x) > 0
	}
	f, ok := Float(v)
	if !ok {
		return true
	}
	return f != 0 && !math.IsNaN(f)
}

// Format returns the text form of v used for string comparisons and
// display.
func Format(v Value) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		if math.Abs(x) < 1e21 {
			return strconv.FormatFloat(x, 'f', -1, 64)
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case []Value:
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range x {
			if i > 0 {
				b.WriteString(", ")
			}
			if s, ok := e.(string); ok {
				b.WriteString(strconv.Quote(s))
				continue
			}
			b.WriteString(Format(e))
		}
		b.WriteByte(']')
		return b.String()
	case interface{ String() string }:
		return x.String()
	}
	if f, ok := Float(v); ok {
		return Format(f)
	}
	return ""
}

// numeric reports whether v is a number for comparisons. Unlike Float, a
// string is numeric only if it parses as a number.
func numeric(v Value) (float64, bool) {
	switch v.(type) {
	case []Value:
		return 0, false
	}
	return Float(v)
}

// Compare orders two values. When both are numeric, including numeric
// strings, they compare as numbers; otherwise their text forms compare
// lexicographically. The result is -1, 0, or +1. A NaN compares equal to
// everything.
func Compare(a, b Value) int {
	x, ok1 := numeric(a)
	y, ok2 := numeric(b)
	if ok1 && ok2 {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(Format(a), Format(b))
}

// Equal reports whether two values are equal. Values compare as in Compare,
// except that NaN equals nothing. Arrays are equal when they have equal
// elements.
func Equal(a, b Value) bool {
	x, ok1 := a.([]Value)
	y, ok2 := b.([]Value)
	if ok1 || ok2 {
		if !ok1 || !ok2 || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	x1, ok1 := numeric(a)
	y1, ok2 := numeric(b)
	if ok1 && ok2 {
		return x1 == y1
	}
	return Format(a) == Format(b)
}
