package mathexec

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Func is a function callable from expressions.
type Func interface {
	// Call evaluates the function. args holds the arguments in call order
	// and has a length for which CanCall returned true. Call may modify the
	// elements of args but must not retain the slice. ctx is the context
	// evaluating the call; functions may use it to look up variables or to
	// evaluate nested expressions.
	Call(ctx *Context, args []Value) (Value, error)

	// CanCall returns whether the function can be called with n arguments.
	// Calls with other counts fail with a *CallError before Call is invoked.
	CanCall(n int) bool
}

// Function is a Func with a declared arity.
type Function struct {
	// Required is the minimum number of arguments.
	Required int
	// Total is the maximum number of arguments unless Variadic is set.
	Total int
	// Variadic allows any number of arguments at least Required.
	Variadic bool
	// Fn implements the function.
	Fn func(ctx *Context, args []Value) (Value, error)
}

// Call calls f.Fn.
func (f *Function) Call(ctx *Context, args []Value) (Value, error) {
	return f.Fn(ctx, args)
}

// CanCall returns whether n is within f's declared arity.
func (f *Function) CanCall(n int) bool {
	if n < f.Required {
		return false
	}
	return f.Variadic || n <= f.Total
}

// Fixed creates a function that takes exactly n arguments.
func Fixed(n int, fn func(ctx *Context, args []Value) (Value, error)) *Function {
	return &Function{Required: n, Total: n, Fn: fn}
}

// Optional creates a function that takes between required and total
// arguments inclusive.
func Optional(required, total int, fn func(ctx *Context, args []Value) (Value, error)) *Function {
	return &Function{Required: required, Total: total, Fn: fn}
}

// Variadic creates a function that takes at least required arguments.
func Variadic(required int, fn func(ctx *Context, args []Value) (Value, error)) *Function {
	return &Function{Required: required, Total: required, Variadic: true, Fn: fn}
}

// Niladic wraps a function of zero variables, generally a constant.
func Niladic(f func() Value) *Function {
	return Fixed(0, func(*Context, []Value) (Value, error) {
		return f(), nil
	})
}

// Monadic wraps a real function of one variable. Arguments are converted with
// Float. A NaN result from a non-NaN argument is reported as a *DomainError
// naming name.
func Monadic(name string, f func(float64) float64) *Function {
	return Fixed(1, func(_ *Context, args []Value) (Value, error) {
		x, err := floatArg(name, args[0])
		if err != nil {
			return nil, err
		}
		r := f(x)
		if math.IsNaN(r) && !math.IsNaN(x) {
			return nil, &DomainError{X: args[0], Arg: 1, Func: name}
		}
		return r, nil
	})
}

// Dyadic wraps a real function of two variables, like Monadic.
func Dyadic(name string, f func(x, y float64) float64) *Function {
	return Fixed(2, func(_ *Context, args []Value) (Value, error) {
		x, err := floatArg(name, args[0])
		if err != nil {
			return nil, err
		}
		y, err := floatArg(name, args[1])
		if err != nil {
			return nil, err
		}
		r := f(x, y)
		if math.IsNaN(r) && !math.IsNaN(x) && !math.IsNaN(y) {
			return nil, &DomainError{X: args[0], Func: name}
		}
		return r, nil
	})
}

func floatArg(name string, v Value) (float64, error) {
	x, ok := Float(v)
	if !ok {
		return 0, &TypeError{X: v, Want: "number", Func: name}
	}
	return x, nil
}

// floats converts the arguments of an aggregate function. A single array
// argument supplies the values instead.
func floats(name string, args []Value) ([]float64, error) {
	if len(args) == 1 {
		if a, ok := args[0].([]Value); ok {
			if len(a) == 0 {
				return nil, &DomainError{X: args[0], Arg: 1, Func: name}
			}
			args = a
		}
	}
	r := make([]float64, len(args))
	for i, v := range args {
		x, err := floatArg(name, v)
		if err != nil {
			return nil, err
		}
		r[i] = x
	}
	return r, nil
}

func aggregate(name string, f func([]float64) float64) *Function {
	return Variadic(1, func(_ *Context, args []Value) (Value, error) {
		v, err := floats(name, args)
		if err != nil {
			return nil, err
		}
		return f(v), nil
	})
}

func mean(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x
	}
	return s / float64(len(v))
}

func median(v []float64) float64 {
	sort.Float64s(v)
	n := len(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}

func minimum(v []float64) float64 {
	r := v[0]
	for _, x := range v[1:] {
		r = math.Min(r, x)
	}
	return r
}

func maximum(v []float64) float64 {
	r := v[0]
	for _, x := range v[1:] {
		r = math.Max(r, x)
	}
	return r
}

// fromBase parses an integer written in a base, e.g. hexdec.
func fromBase(name string, base int) *Function {
	return Fixed(1, func(_ *Context, args []Value) (Value, error) {
		s, ok := args[0].(string)
		if !ok {
			s = Format(args[0])
		}
		n, err := strconv.ParseUint(strings.TrimSpace(s), base, 64)
		if err != nil {
			return nil, &DomainError{X: args[0], Arg: 1, Func: name}
		}
		return float64(n), nil
	})
}

// toBase formats an integer in a base, e.g. dechex.
func toBase(name string, base int) *Function {
	return Fixed(1, func(_ *Context, args []Value) (Value, error) {
		x, err := floatArg(name, args[0])
		if err != nil {
			return nil, err
		}
		if x < 0 || math.IsInf(x, 0) || math.IsNaN(x) {
			return nil, &DomainError{X: args[0], Arg: 1, Func: name}
		}
		return strconv.FormatUint(uint64(x), base), nil
	})
}

func round(_ *Context, args []Value) (Value, error) {
	x, err := floatArg("round", args[0])
	if err != nil {
		return nil, err
	}
	if len(args) == 1 {
		return math.Round(x), nil
	}
	p, err := floatArg("round", args[1])
	if err != nil {
		return nil, err
	}
	m := math.Pow(10, math.Trunc(p))
	return math.Round(x*m) / m, nil
}

func logarithm(_ *Context, args []Value) (Value, error) {
	x, err := floatArg("log", args[0])
	if err != nil {
		return nil, err
	}
	if x < 0 {
		return nil, &DomainError{X: args[0], Arg: 1, Func: "log"}
	}
	if len(args) == 1 {
		return math.Log(x), nil
	}
	b, err := floatArg("log", args[1])
	if err != nil {
		return nil, err
	}
	if b <= 0 || b == 1 {
		return nil, &DomainError{X: args[1], Arg: 2, Func: "log"}
	}
	return math.Log(x) / math.Log(b), nil
}

func intdiv(_ *Context, args []Value) (Value, error) {
	x, err := floatArg("intdiv", args[0])
	if err != nil {
		return nil, err
	}
	y, err := floatArg("intdiv", args[1])
	if err != nil {
		return nil, err
	}
	if int64(y) == 0 {
		return nil, &DivisionByZeroError{Op: "intdiv"}
	}
	return float64(int64(x) / int64(y)), nil
}

func array(_ *Context, args []Value) (Value, error) {
	return append([]Value{}, args...), nil
}

// branch resolves an argument of if. Strings are expressions to evaluate;
// anything else is already a value.
func branch(ctx *Context, v Value) (Value, error) {
	if s, ok := v.(string); ok {
		return ctx.Exec(s)
	}
	return v, nil
}

func ifThenElse(ctx *Context, args []Value) (Value, error) {
	c, err := branch(ctx, args[0])
	if err != nil {
		return nil, err
	}
	if Truthy(c) {
		return branch(ctx, args[1])
	}
	return branch(ctx, args[2])
}

func recip(f func(float64) float64) func(float64) float64 {
	return func(x float64) float64 { return 1 / f(x) }
}

func ofRecip(f func(float64) float64) func(float64) float64 {
	return func(x float64) float64 { return f(1 / x) }
}

func arccot(x float64) float64 {
	return math.Pi/2 - math.Atan(x)
}

var defaultFuncs = map[string]Func{
	"abs":      Monadic("abs", math.Abs),
	"acos":     Monadic("acos", math.Acos),
	"acosh":    Monadic("acosh", math.Acosh),
	"arccos":   Monadic("arccos", math.Acos),
	"arccosec": Monadic("arccosec", ofRecip(math.Asin)),
	"arccot":   Monadic("arccot", arccot),
	"arccotan": Monadic("arccotan", arccot),
	"arccsc":   Monadic("arccsc", ofRecip(math.Asin)),
	"arcctg":   Monadic("arcctg", arccot),
	"arcsec":   Monadic("arcsec", ofRecip(math.Acos)),
	"arcsin":   Monadic("arcsin", math.Asin),
	"arctan":   Monadic("arctan", math.Atan),
	"arctg":    Monadic("arctg", math.Atan),
	ArrayFunc:  Variadic(0, array),
	"asin":     Monadic("asin", math.Asin),
	"asinh":    Monadic("asinh", math.Asinh),
	"atan":     Monadic("atan", math.Atan),
	"atan2":    Dyadic("atan2", math.Atan2),
	"atanh":    Monadic("atanh", math.Atanh),
	"atn":      Monadic("atn", math.Atan),
	"avg":      aggregate("avg", mean),
	"bindec":   fromBase("bindec", 2),
	"ceil":     Monadic("ceil", math.Ceil),
	"cos":      Monadic("cos", math.Cos),
	"cosec":    Monadic("cosec", recip(math.Sin)),
	"cosh":     Monadic("cosh", math.Cosh),
	"cot":      Monadic("cot", recip(math.Tan)),
	"cotan":    Monadic("cotan", recip(math.Tan)),
	"cotg":     Monadic("cotg", recip(math.Tan)),
	"csc":      Monadic("csc", recip(math.Sin)),
	"ctg":      Monadic("ctg", recip(math.Tan)),
	"ctn":      Monadic("ctn", recip(math.Tan)),
	"decbin":   toBase("decbin", 2),
	"dechex":   toBase("dechex", 16),
	"decoct":   toBase("decoct", 8),
	"deg2rad":  Monadic("deg2rad", func(x float64) float64 { return x / 180 * math.Pi }),
	"exp":      Monadic("exp", math.Exp),
	"expm1":    Monadic("expm1", math.Expm1),
	"floor":    Monadic("floor", math.Floor),
	"fmod":     Dyadic("fmod", math.Mod),
	"hexdec":   fromBase("hexdec", 16),
	"hypot":    Dyadic("hypot", math.Hypot),
	"intdiv":   Fixed(2, intdiv),
	"lg":       Monadic("lg", math.Log10),
	"ln":       Monadic("ln", math.Log),
	"log":      Optional(1, 2, logarithm),
	"log10":    Monadic("log10", math.Log10),
	"log1p":    Monadic("log1p", math.Log1p),
	"max":      aggregate("max", maximum),
	"median":   aggregate("median", median),
	"min":      aggregate("min", minimum),
	"octdec":   fromBase("octdec", 8),
	"pi":       Niladic(func() Value { return math.Pi }),
	"pow":      Dyadic("pow", math.Pow),
	"rad2deg":  Monadic("rad2deg", func(x float64) float64 { return x / math.Pi * 180 }),
	"round":    Optional(1, 2, round),
	"sec":      Monadic("sec", recip(math.Cos)),
	"sin":      Monadic("sin", math.Sin),
	"sinh":     Monadic("sinh", math.Sinh),
	"sqrt":     Monadic("sqrt", math.Sqrt),
	"tan":      Monadic("tan", math.Tan),
	"tanh":     Monadic("tanh", math.Tanh),
	"tg":       Monadic("tg", math.Tan),
	"tn":       Monadic("tn", math.Tan),
}

func init() {
	// if reaches the tokenizer, which refers back to the default registry.
	defaultFuncs["if"] = Fixed(3, ifThenElse)
	defaultRegistry = NewRegistry()
}
