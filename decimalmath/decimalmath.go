// Package decimalmath provides a mathexec registry that computes with
// arbitrary-precision decimal numbers.
//
// Number literals become decimal.Decimal values, so results such as
// 0.1 + 0.2 are exact. Division, powers, logarithms, and trigonometry round
// to a fixed number of decimal places chosen when the registry is created.
package decimalmath

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/zephyrtronium/mathexec"
)

// DefaultPlaces is the number of decimal places used for inexact operations
// when Registry is given a non-positive count.
const DefaultPlaces = 16

// Dec converts a value to a decimal. Numbers, numeric strings, and booleans
// convert; the second result is false for anything else.
func Dec(v mathexec.Value) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, true
	case *big.Float:
		if x.IsInf() {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(x.Text('g', -1))
		return d, err == nil
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case int32:
		return decimal.NewFromInt32(x), true
	case uint64:
		return decimal.NewFromUint64(x), true
	case string:
		d, err := decimal.NewFromString(x)
		return d, err == nil
	case bool:
		if x {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, true
	case nil:
		return decimal.Zero, true
	}
	f, ok := mathexec.Float(v)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

func arg(name string, v mathexec.Value) (decimal.Decimal, error) {
	d, ok := Dec(v)
	if !ok {
		return decimal.Zero, &mathexec.TypeError{X: v, Want: "decimal", Func: name}
	}
	return d, nil
}

type calc struct {
	places int32
}

func (c calc) arith(sym string, f func(x, y decimal.Decimal) (decimal.Decimal, error)) func(l, r mathexec.Value) (mathexec.Value, error) {
	return func(l, r mathexec.Value) (mathexec.Value, error) {
		x, err := arg(sym, l)
		if err != nil {
			return nil, err
		}
		y, err := arg(sym, r)
		if err != nil {
			return nil, err
		}
		return f(x, y)
	}
}

// compare orders two values numerically when both are decimals and as text
// otherwise.
func compare(l, r mathexec.Value) int {
	x, ok1 := Dec(l)
	y, ok2 := Dec(r)
	if ok1 && ok2 {
		return x.Cmp(y)
	}
	return mathexec.Compare(l, r)
}

func cmpop(sym string, prec int, pred func(int) bool) *mathexec.Operator {
	return mathexec.Binary(sym, prec, false, func(l, r mathexec.Value) (mathexec.Value, error) {
		return pred(compare(l, r)), nil
	})
}

func (c calc) pow(x, y decimal.Decimal) (decimal.Decimal, error) {
	if y.IsInteger() && y.Abs().LessThanOrEqual(decimal.NewFromInt(1<<31-1)) {
		if x.IsZero() && y.IsNegative() {
			return decimal.Zero, &mathexec.DivisionByZeroError{Op: "^"}
		}
		r, err := x.PowInt32(int32(y.IntPart()))
		if err != nil {
			return decimal.Zero, &mathexec.DomainError{X: y, Arg: 2, Func: "^"}
		}
		if y.IsNegative() {
			r = r.Round(c.places)
		}
		return r, nil
	}
	r, err := x.PowWithPrecision(y, c.places)
	if err != nil {
		return decimal.Zero, &mathexec.DomainError{X: x, Arg: 1, Func: "^"}
	}
	return r, nil
}

func (c calc) operators() []*mathexec.Operator {
	return []*mathexec.Operator{
		mathexec.Binary("||", 90, false, func(l, r mathexec.Value) (mathexec.Value, error) {
			return truthy(l) || truthy(r), nil
		}),
		mathexec.Binary("&&", 100, false, func(l, r mathexec.Value) (mathexec.Value, error) {
			return truthy(l) && truthy(r), nil
		}),
		cmpop("==", 140, func(c int) bool { return c == 0 }),
		cmpop("!=", 140, func(c int) bool { return c != 0 }),
		cmpop("<", 150, func(c int) bool { return c < 0 }),
		cmpop("<=", 150, func(c int) bool { return c <= 0 }),
		cmpop(">", 150, func(c int) bool { return c > 0 }),
		cmpop(">=", 150, func(c int) bool { return c >= 0 }),
		mathexec.Binary("+", 170, false, c.arith("+", func(x, y decimal.Decimal) (decimal.Decimal, error) {
			return x.Add(y), nil
		})),
		mathexec.Binary("-", 170, false, c.arith("-", func(x, y decimal.Decimal) (decimal.Decimal, error) {
			return x.Sub(y), nil
		})),
		mathexec.Binary("*", 180, false, c.arith("*", func(x, y decimal.Decimal) (decimal.Decimal, error) {
			return x.Mul(y), nil
		})),
		mathexec.Binary("/", 180, false, c.arith("/", func(x, y decimal.Decimal) (decimal.Decimal, error) {
			if y.IsZero() {
				return decimal.Zero, &mathexec.DivisionByZeroError{Op: "/"}
			}
			return x.DivRound(y, c.places), nil
		})),
		mathexec.Binary("%", 180, false, c.arith("%", func(x, y decimal.Decimal) (decimal.Decimal, error) {
			if y.IsZero() {
				return decimal.Zero, &mathexec.DivisionByZeroError{Op: "%"}
			}
			return x.Mod(y), nil
		})),
		mathexec.Prefix("!", 190, func(x mathexec.Value) (mathexec.Value, error) {
			return !truthy(x), nil
		}),
		mathexec.Prefix(mathexec.UnaryPlus, 200, func(x mathexec.Value) (mathexec.Value, error) {
			return x, nil
		}),
		mathexec.Prefix(mathexec.UnaryMinus, 200, func(x mathexec.Value) (mathexec.Value, error) {
			d, err := arg("-", x)
			if err != nil {
				return nil, err
			}
			return d.Neg(), nil
		}),
		mathexec.Binary("^", 220, true, c.arith("^", c.pow)),
	}
}

func truthy(v mathexec.Value) bool {
	if d, ok := v.(decimal.Decimal); ok {
		return !d.IsZero()
	}
	return mathexec.Truthy(v)
}

func monadic(name string, f func(x decimal.Decimal) (decimal.Decimal, error)) mathexec.Func {
	return mathexec.Fixed(1, func(_ *mathexec.Context, args []mathexec.Value) (mathexec.Value, error) {
		x, err := arg(name, args[0])
		if err != nil {
			return nil, err
		}
		return f(x)
	})
}

func aggregate(name string, f func(first decimal.Decimal, rest ...decimal.Decimal) decimal.Decimal) mathexec.Func {
	return mathexec.Variadic(1, func(_ *mathexec.Context, args []mathexec.Value) (mathexec.Value, error) {
		if len(args) == 1 {
			if a, ok := args[0].([]mathexec.Value); ok {
				if len(a) == 0 {
					return nil, &mathexec.DomainError{X: args[0], Arg: 1, Func: name}
				}
				args = a
			}
		}
		v := make([]decimal.Decimal, len(args))
		for i, x := range args {
			d, err := arg(name, x)
			if err != nil {
				return nil, err
			}
			v[i] = d
		}
		return f(v[0], v[1:]...), nil
	})
}

func (c calc) funcs() map[string]mathexec.Func {
	exact := func(f func(decimal.Decimal) decimal.Decimal) func(decimal.Decimal) (decimal.Decimal, error) {
		return func(x decimal.Decimal) (decimal.Decimal, error) { return f(x), nil }
	}
	rounded := func(f func(decimal.Decimal) decimal.Decimal) func(decimal.Decimal) (decimal.Decimal, error) {
		return func(x decimal.Decimal) (decimal.Decimal, error) { return f(x).Round(c.places), nil }
	}
	ln := func(x decimal.Decimal) (decimal.Decimal, error) {
		if x.Sign() <= 0 {
			return decimal.Zero, &mathexec.DomainError{X: x, Arg: 1, Func: "ln"}
		}
		return x.Ln(c.places)
	}
	m := map[string]mathexec.Func{
		"abs":   monadic("abs", exact(decimal.Decimal.Abs)),
		"ceil":  monadic("ceil", exact(decimal.Decimal.Ceil)),
		"floor": monadic("floor", exact(decimal.Decimal.Floor)),
		"sin":   monadic("sin", rounded(decimal.Decimal.Sin)),
		"cos":   monadic("cos", rounded(decimal.Decimal.Cos)),
		"tan":   monadic("tan", rounded(decimal.Decimal.Tan)),
		"atan":  monadic("atan", rounded(decimal.Decimal.Atan)),
		"exp": monadic("exp", func(x decimal.Decimal) (decimal.Decimal, error) {
			return x.ExpTaylor(c.places)
		}),
		"ln": monadic("ln", ln),
		"sqrt": monadic("sqrt", func(x decimal.Decimal) (decimal.Decimal, error) {
			if x.IsNegative() {
				return decimal.Zero, &mathexec.DomainError{X: x, Arg: 1, Func: "sqrt"}
			}
			return x.PowWithPrecision(decimal.NewFromFloat(0.5), c.places)
		}),
		"round": mathexec.Optional(1, 2, func(_ *mathexec.Context, args []mathexec.Value) (mathexec.Value, error) {
			x, err := arg("round", args[0])
			if err != nil {
				return nil, err
			}
			var p decimal.Decimal
			if len(args) == 2 {
				if p, err = arg("round", args[1]); err != nil {
					return nil, err
				}
			}
			return x.Round(int32(p.IntPart())), nil
		}),
		"min": aggregate("min", decimal.Min),
		"max": aggregate("max", decimal.Max),
		"avg": aggregate("avg", func(first decimal.Decimal, rest ...decimal.Decimal) decimal.Decimal {
			return decimal.Sum(first, rest...).DivRound(decimal.NewFromInt(int64(len(rest)+1)), c.places)
		}),
		"pow": mathexec.Fixed(2, func(_ *mathexec.Context, args []mathexec.Value) (mathexec.Value, error) {
			x, err := arg("pow", args[0])
			if err != nil {
				return nil, err
			}
			y, err := arg("pow", args[1])
			if err != nil {
				return nil, err
			}
			return c.pow(x, y)
		}),
	}
	m["lg"] = monadic("lg", func(x decimal.Decimal) (decimal.Decimal, error) {
		r, err := ln(x)
		if err != nil {
			return decimal.Zero, err
		}
		ten, _ := decimal.NewFromInt(10).Ln(c.places + 2)
		return r.DivRound(ten, c.places), nil
	})
	m["log10"] = m["lg"]
	// Functions that do not compute on numbers work the same on decimals.
	for _, name := range [...]string{"if", mathexec.ArrayFunc} {
		fn, _ := mathexec.Default().Func(name)
		m[name] = fn
	}
	return m
}

// Registry creates a registry whose numbers are decimal.Decimal values.
// Inexact operations round to places decimal places. Options apply after
// the decimal operators and functions are installed.
func Registry(places int32, opts ...mathexec.RegistryOption) *mathexec.Registry {
	if places <= 0 {
		places = DefaultPlaces
	}
	c := calc{places: places}
	base := []mathexec.RegistryOption{
		mathexec.NoDefaults(),
		mathexec.WithNumber(func(text string) (mathexec.Value, error) {
			return decimal.NewFromString(text)
		}),
		mathexec.WithOperators(c.operators()...),
		mathexec.WithFuncs(c.funcs()),
	}
	return mathexec.NewRegistry(append(base, opts...)...)
}
