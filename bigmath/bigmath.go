// Package bigmath provides a mathexec registry that computes with
// arbitrary-precision binary floating-point numbers.
//
// Number literals become *big.Float values at the registry's precision.
// Operators never modify their operands, so values may be shared freely.
package bigmath

import (
	"errors"
	"math"
	"math/big"

	"github.com/zephyrtronium/bigfloat"

	"github.com/zephyrtronium/mathexec"
)

// DefaultPrec is the precision in bits used when Registry is given zero.
const DefaultPrec = 256

type calc struct {
	prec uint
}

func (c calc) new() *big.Float {
	return new(big.Float).SetPrec(c.prec)
}

// Big converts a value to a *big.Float at prec bits. Numbers, numeric
// strings, and booleans convert; the second result is false for anything
// else, including NaN.
func Big(v mathexec.Value, prec uint) (*big.Float, bool) {
	z := new(big.Float).SetPrec(prec)
	switch x := v.(type) {
	case *big.Float:
		return z.Set(x), true
	case int:
		return z.SetInt64(int64(x)), true
	case int64:
		return z.SetInt64(x), true
	case uint64:
		return z.SetUint64(x), true
	case string:
		_, _, err := z.Parse(x, 0)
		return z, err == nil
	case interface{ BigFloat() *big.Float }:
		// decimal.Decimal and similar types
		return z.Set(x.BigFloat()), true
	}
	f, ok := mathexec.Float(v)
	if !ok || math.IsNaN(f) {
		return nil, false
	}
	return z.SetFloat64(f), true
}

func (c calc) arg(name string, v mathexec.Value) (*big.Float, error) {
	x, ok := Big(v, c.prec)
	if !ok {
		return nil, &mathexec.TypeError{X: v, Want: "number", Func: name}
	}
	return x, nil
}

func (c calc) arith(sym string, f func(z, x, y *big.Float) error) func(l, r mathexec.Value) (mathexec.Value, error) {
	return func(l, r mathexec.Value) (mathexec.Value, error) {
		x, err := c.arg(sym, l)
		if err != nil {
			return nil, err
		}
		y, err := c.arg(sym, r)
		if err != nil {
			return nil, err
		}
		z := c.new()
		if err := guard(func() error { return f(z, x, y) }); err != nil {
			return nil, err
		}
		return z, nil
	}
}

// guard runs f, turning a big.ErrNaN panic into an error.
func guard(f func() error) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		e, ok := r.(error)
		if !ok {
			panic(r)
		}
		var nan big.ErrNaN
		if !errors.As(e, &nan) {
			panic(r)
		}
		err = &mathexec.DomainError{X: nan.Error(), Func: "bigmath"}
	}()
	return f()
}

func (c calc) compare(l, r mathexec.Value) int {
	x, ok1 := Big(l, c.prec)
	y, ok2 := Big(r, c.prec)
	if ok1 && ok2 {
		return x.Cmp(y)
	}
	return mathexec.Compare(l, r)
}

func (c calc) cmpop(sym string, prec int, pred func(int) bool) *mathexec.Operator {
	return mathexec.Binary(sym, prec, false, func(l, r mathexec.Value) (mathexec.Value, error) {
		return pred(c.compare(l, r)), nil
	})
}

func truthy(v mathexec.Value) bool {
	if x, ok := v.(*big.Float); ok {
		return x.Sign() != 0
	}
	return mathexec.Truthy(v)
}

// pow sets z to x**y. Negative bases are allowed with integer exponents.
func (c calc) pow(z, x, y *big.Float) error {
	switch {
	case y.Sign() == 0:
		z.SetInt64(1)
		return nil
	case x.Sign() == 0:
		if y.Sign() < 0 {
			return &mathexec.DivisionByZeroError{Op: "^"}
		}
		z.SetInt64(0)
		return nil
	case x.Sign() > 0:
		bigfloat.Pow(z, x, y)
		return nil
	case !y.IsInt():
		return &mathexec.DomainError{X: x, Arg: 1, Func: "^"}
	}
	bigfloat.Pow(z, new(big.Float).Abs(x), y)
	if n, _ := y.Int(nil); n.Bit(0) == 1 {
		z.Neg(z)
	}
	return nil
}

func (c calc) operators() []*mathexec.Operator {
	return []*mathexec.Operator{
		mathexec.Binary("||", 90, false, func(l, r mathexec.Value) (mathexec.Value, error) {
			return truthy(l) || truthy(r), nil
		}),
		mathexec.Binary("&&", 100, false, func(l, r mathexec.Value) (mathexec.Value, error) {
			return truthy(l) && truthy(r), nil
		}),
		c.cmpop("==", 140, func(c int) bool { return c == 0 }),
		c.cmpop("!=", 140, func(c int) bool { return c != 0 }),
		c.cmpop("<", 150, func(c int) bool { return c < 0 }),
		c.cmpop("<=", 150, func(c int) bool { return c <= 0 }),
		c.cmpop(">", 150, func(c int) bool { return c > 0 }),
		c.cmpop(">=", 150, func(c int) bool { return c >= 0 }),
		mathexec.Binary("+", 170, false, c.arith("+", func(z, x, y *big.Float) error {
			z.Add(x, y)
			return nil
		})),
		mathexec.Binary("-", 170, false, c.arith("-", func(z, x, y *big.Float) error {
			z.Sub(x, y)
			return nil
		})),
		mathexec.Binary("*", 180, false, c.arith("*", func(z, x, y *big.Float) error {
			z.Mul(x, y)
			return nil
		})),
		mathexec.Binary("/", 180, false, c.arith("/", func(z, x, y *big.Float) error {
			if y.Sign() == 0 {
				return &mathexec.DivisionByZeroError{Op: "/"}
			}
			if x.IsInf() && y.IsInf() {
				return &mathexec.DomainError{X: y, Arg: 2, Func: "/"}
			}
			z.Quo(x, y)
			return nil
		})),
		mathexec.Binary("%", 180, false, c.arith("%", func(z, x, y *big.Float) error {
			if x.IsInf() || y.IsInf() {
				return &mathexec.DomainError{X: x, Func: "%"}
			}
			a, _ := x.Int(nil)
			b, _ := y.Int(nil)
			if b.Sign() == 0 {
				return &mathexec.DivisionByZeroError{Op: "%"}
			}
			z.SetInt(a.Rem(a, b))
			return nil
		})),
		mathexec.Prefix("!", 190, func(x mathexec.Value) (mathexec.Value, error) {
			return !truthy(x), nil
		}),
		mathexec.Prefix(mathexec.UnaryPlus, 200, func(x mathexec.Value) (mathexec.Value, error) {
			return x, nil
		}),
		mathexec.Prefix(mathexec.UnaryMinus, 200, func(x mathexec.Value) (mathexec.Value, error) {
			v, err := c.arg("-", x)
			if err != nil {
				return nil, err
			}
			return v.Neg(v), nil
		}),
		mathexec.Binary("^", 220, true, c.arith("^", c.pow)),
	}
}

// monadic wraps a function of one variable. f must set out to its result
// and may report an out-of-domain argument by returning an error or by
// panicking with big.ErrNaN.
func (c calc) monadic(name string, f func(out, in *big.Float) error) mathexec.Func {
	return mathexec.Fixed(1, func(_ *mathexec.Context, args []mathexec.Value) (mathexec.Value, error) {
		x, err := c.arg(name, args[0])
		if err != nil {
			return nil, err
		}
		z := c.new()
		if err := guard(func() error { return f(z, x) }); err != nil {
			var de *mathexec.DomainError
			if errors.As(err, &de) {
				de.X, de.Arg, de.Func = args[0], 1, name
			}
			return nil, err
		}
		return z, nil
	})
}

func positive(f func(out, in *big.Float) *big.Float) func(out, in *big.Float) error {
	return func(out, in *big.Float) error {
		if in.Sign() <= 0 {
			return &mathexec.DomainError{X: in}
		}
		f(out, in)
		return nil
	}
}

func (c calc) aggregate(name string, f func(v []*big.Float) *big.Float) mathexec.Func {
	return mathexec.Variadic(1, func(_ *mathexec.Context, args []mathexec.Value) (mathexec.Value, error) {
		if len(args) == 1 {
			if a, ok := args[0].([]mathexec.Value); ok {
				if len(a) == 0 {
					return nil, &mathexec.DomainError{X: args[0], Arg: 1, Func: name}
				}
				args = a
			}
		}
		v := make([]*big.Float, len(args))
		for i, x := range args {
			b, err := c.arg(name, x)
			if err != nil {
				return nil, err
			}
			v[i] = b
		}
		return f(v), nil
	})
}

func (c calc) funcs() map[string]mathexec.Func {
	pick := func(want int) func(v []*big.Float) *big.Float {
		return func(v []*big.Float) *big.Float {
			r := v[0]
			for _, x := range v[1:] {
				if x.Cmp(r) == want {
					r = x
				}
			}
			return r
		}
	}
	m := map[string]mathexec.Func{
		"abs": c.monadic("abs", func(out, in *big.Float) error {
			out.Abs(in)
			return nil
		}),
		"exp": c.monadic("exp", func(out, in *big.Float) error {
			bigfloat.Exp(out, in)
			return nil
		}),
		"ln": c.monadic("ln", positive(bigfloat.Log)),
		"log10": c.monadic("log10", positive(func(out, in *big.Float) *big.Float {
			bigfloat.Log(out, in)
			ten := new(big.Float).SetPrec(out.Prec()).SetInt64(10)
			return out.Quo(out, bigfloat.Log(ten, ten))
		})),
		"sqrt": c.monadic("sqrt", func(out, in *big.Float) error {
			if in.Sign() < 0 {
				return &mathexec.DomainError{X: in}
			}
			out.Sqrt(in)
			return nil
		}),
		"floor": c.monadic("floor", func(out, in *big.Float) error {
			return integer(out, in, -1)
		}),
		"ceil": c.monadic("ceil", func(out, in *big.Float) error {
			return integer(out, in, +1)
		}),
		"round": c.monadic("round", func(out, in *big.Float) error {
			// Round half away from zero.
			h := new(big.Float).SetPrec(in.Prec() + 1).SetFloat64(0.5)
			if in.Signbit() {
				h.Neg(h)
			}
			h.Add(h, in)
			return integer(out, h, 0)
		}),
		"pi": mathexec.Fixed(0, func(*mathexec.Context, []mathexec.Value) (mathexec.Value, error) {
			return bigfloat.Pi(c.new()), nil
		}),
		"pow": mathexec.Fixed(2, func(_ *mathexec.Context, args []mathexec.Value) (mathexec.Value, error) {
			op := mathexec.Binary("pow", 0, false, c.arith("pow", c.pow))
			return op.Apply(args[0], args[1])
		}),
		"min": c.aggregate("min", pick(-1)),
		"max": c.aggregate("max", pick(+1)),
		"avg": c.aggregate("avg", func(v []*big.Float) *big.Float {
			s := c.new()
			for _, x := range v {
				s.Add(s, x)
			}
			return s.Quo(s, new(big.Float).SetInt64(int64(len(v))))
		}),
	}
	m["log"] = m["ln"]
	for _, name := range [...]string{"if", mathexec.ArrayFunc} {
		fn, _ := mathexec.Default().Func(name)
		m[name] = fn
	}
	return m
}

// integer sets out to in rounded to an integer: toward -Inf if dir < 0,
// toward +Inf if dir > 0, and toward zero otherwise.
func integer(out, in *big.Float, dir int) error {
	if in.IsInf() {
		out.Set(in)
		return nil
	}
	i, acc := in.Int(nil)
	switch {
	case dir < 0 && acc == big.Above:
		i.Sub(i, big.NewInt(1))
	case dir > 0 && acc == big.Below:
		i.Add(i, big.NewInt(1))
	}
	out.SetInt(i)
	return nil
}

// Registry creates a registry whose numbers are *big.Float values with prec
// bits of precision. Options apply after the operators and functions for
// big floats are installed.
func Registry(prec uint, opts ...mathexec.RegistryOption) *mathexec.Registry {
	if prec == 0 {
		prec = DefaultPrec
	}
	c := calc{prec: prec}
	base := []mathexec.RegistryOption{
		mathexec.NoDefaults(),
		mathexec.WithNumber(func(text string) (mathexec.Value, error) {
			z, _, err := c.new().Parse(text, 10)
			if err != nil {
				return nil, err
			}
			return z, nil
		}),
		mathexec.WithOperators(c.operators()...),
		mathexec.WithFuncs(c.funcs()),
	}
	return mathexec.NewRegistry(append(base, opts...)...)
}
