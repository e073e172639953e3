package mathexec

import "math"

// arith lifts a float operation into an operator implementation.
func arith(sym string, f func(x, y float64) (float64, error)) func(l, r Value) (Value, error) {
	return func(l, r Value) (Value, error) {
		x, err := floatArg(sym, l)
		if err != nil {
			return nil, err
		}
		y, err := floatArg(sym, r)
		if err != nil {
			return nil, err
		}
		return f(x, y)
	}
}

func compare(pred func(c int) bool) func(l, r Value) (Value, error) {
	return func(l, r Value) (Value, error) {
		return pred(Compare(l, r)), nil
	}
}

func defaultOperators() []*Operator {
	return []*Operator{
		Binary("||", 90, false, func(l, r Value) (Value, error) {
			return Truthy(l) || Truthy(r), nil
		}),
		Binary("&&", 100, false, func(l, r Value) (Value, error) {
			return Truthy(l) && Truthy(r), nil
		}),
		Binary("==", 140, false, func(l, r Value) (Value, error) {
			return Equal(l, r), nil
		}),
		Binary("!=", 140, false, func(l, r Value) (Value, error) {
			return !Equal(l, r), nil
		}),
		Binary("<", 150, false, compare(func(c int) bool { return c < 0 })),
		Binary("<=", 150, false, compare(func(c int) bool { return c <= 0 })),
		Binary(">", 150, false, compare(func(c int) bool { return c > 0 })),
		Binary(">=", 150, false, compare(func(c int) bool { return c >= 0 })),
		Binary("+", 170, false, arith("+", func(x, y float64) (float64, error) {
			return x + y, nil
		})),
		Binary("-", 170, false, arith("-", func(x, y float64) (float64, error) {
			return x - y, nil
		})),
		Binary("*", 180, false, arith("*", func(x, y float64) (float64, error) {
			return x * y, nil
		})),
		Binary("/", 180, false, arith("/", func(x, y float64) (float64, error) {
			if y == 0 {
				return 0, &DivisionByZeroError{Op: "/"}
			}
			return x / y, nil
		})),
		Binary("%", 180, false, arith("%", func(x, y float64) (float64, error) {
			// Modulo works on the integer parts of its operands.
			a, b := int64(x), int64(y)
			if b == 0 {
				return 0, &DivisionByZeroError{Op: "%"}
			}
			return float64(a % b), nil
		})),
		Prefix("!", 190, func(x Value) (Value, error) {
			return !Truthy(x), nil
		}),
		Prefix(UnaryPlus, 200, func(x Value) (Value, error) {
			return x, nil
		}),
		Prefix(UnaryMinus, 200, func(x Value) (Value, error) {
			f, err := floatArg("-", x)
			if err != nil {
				return nil, err
			}
			return -f, nil
		}),
		Binary("^", 220, true, arith("^", func(x, y float64) (float64, error) {
			return math.Pow(x, y), nil
		})),
	}
}
