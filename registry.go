package mathexec

import (
	"errors"
	"sort"
	"strconv"
)

// Operator is an operator usable in expressions.
type Operator struct {
	// Symbol is the text of the operator, e.g. "+" or ">=". Prefix operators
	// produced by the tokenizer from a sign use UnaryMinus and UnaryPlus.
	Symbol string
	// Prec is the precedence of the operator. Higher binds tighter.
	Prec int
	// RightAssoc indicates right-associativity. Prefix operators ignore it.
	RightAssoc bool

	binary func(l, r Value) (Value, error)
	unary  func(x Value) (Value, error)
}

// Binary creates a two-operand operator.
func Binary(symbol string, prec int, right bool, fn func(l, r Value) (Value, error)) *Operator {
	return &Operator{Symbol: symbol, Prec: prec, RightAssoc: right, binary: fn}
}

// Prefix creates a one-operand operator written before its operand.
func Prefix(symbol string, prec int, fn func(x Value) (Value, error)) *Operator {
	return &Operator{Symbol: symbol, Prec: prec, unary: fn}
}

// Arity returns the number of operands the operator takes.
func (op *Operator) Arity() int {
	if op.unary != nil {
		return 1
	}
	return 2
}

// defined reports whether the operator has an implementation. Operators
// built without Binary or Prefix have none.
func (op *Operator) defined() bool {
	return op.binary != nil || op.unary != nil
}

// Apply applies the operator to its operands, which must number Arity. An
// operator with no implementation gives an *OperatorError.
func (op *Operator) Apply(args ...Value) (Value, error) {
	if !op.defined() {
		return nil, &OperatorError{Operator: op.Symbol}
	}
	if len(args) != op.Arity() {
		return nil, &ExpressionError{Len: len(args)}
	}
	if op.unary != nil {
		return op.unary(args[0])
	}
	return op.binary(args[0], args[1])
}

// popsBefore reports whether op, sitting on the operator stack, must be
// output before next is pushed.
func (op *Operator) popsBefore(next *Operator) bool {
	if op.Prec != next.Prec {
		return op.Prec > next.Prec
	}
	return !next.RightAssoc
}

// Registry is a set of operators and functions together with the rule for
// turning number literals into values. A Registry is never modified after it
// is created, so it is safe to share between goroutines.
type Registry struct {
	ops    map[string]*Operator
	funcs  map[string]Func
	number func(text string) (Value, error)
	// prefixes holds every non-empty prefix of every operator symbol.
	prefixes map[string]bool
}

// RegistryOption is an option for building a registry.
type RegistryOption interface {
	registryOption(*Registry)
}

type (
	opopt   []*Operator
	noopopt string
	fnopt   struct {
		name string
		fn   Func
	}
	fnsopt   map[string]Func
	numopt   func(text string) (Value, error)
	nodefopt struct{}
	divzopt  struct{}
)

// WithOperator adds or replaces an operator.
func WithOperator(op *Operator) RegistryOption {
	return opopt{op}
}

// WithOperators adds or replaces any number of operators.
func WithOperators(ops ...*Operator) RegistryOption {
	return opopt(ops)
}

func (o opopt) registryOption(r *Registry) {
	for _, op := range o {
		if op == nil {
			continue
		}
		r.ops[op.Symbol] = op
	}
}

// WithoutOperator removes an operator.
func WithoutOperator(symbol string) RegistryOption {
	return noopopt(symbol)
}

func (o noopopt) registryOption(r *Registry) {
	delete(r.ops, string(o))
}

// WithFunc adds or replaces a function. To remove a function, pass nil for
// fn.
func WithFunc(name string, fn Func) RegistryOption {
	return &fnopt{name, fn}
}

func (o *fnopt) registryOption(r *Registry) {
	if o.fn == nil {
		delete(r.funcs, o.name)
		return
	}
	r.funcs[o.name] = o.fn
}

// WithoutFunc removes a function.
func WithoutFunc(name string) RegistryOption {
	return &fnopt{name: name}
}

// WithFuncs adds or replaces a group of functions. Nil entries remove the
// function of that name.
func WithFuncs(fns map[string]Func) RegistryOption {
	return fnsopt(fns)
}

func (o fnsopt) registryOption(r *Registry) {
	for k, v := range o {
		(&fnopt{k, v}).registryOption(r)
	}
}

// WithNumber sets the conversion from number literal text to values. The
// default produces float64.
func WithNumber(parse func(text string) (Value, error)) RegistryOption {
	return numopt(parse)
}

func (o numopt) registryOption(r *Registry) {
	r.number = o
}

// NoDefaults removes every operator and function set before it, including
// the defaults.
func NoDefaults() RegistryOption {
	return nodefopt{}
}

func (nodefopt) registryOption(r *Registry) {
	r.ops = make(map[string]*Operator)
	r.funcs = make(map[string]Func)
}

// DivisionByZeroIsZero makes the / and % operators currently in the registry
// produce zero instead of a DivisionByZeroError. Zero is obtained from the
// registry's number conversion, so the option applies to any backend; it
// must follow any options that replace those operators.
func DivisionByZeroIsZero() RegistryOption {
	return divzopt{}
}

func (divzopt) registryOption(r *Registry) {
	for _, sym := range [...]string{"/", "%"} {
		op := r.ops[sym]
		if op == nil || op.binary == nil {
			continue
		}
		fn := op.binary
		r.ops[sym] = Binary(op.Symbol, op.Prec, op.RightAssoc, func(a, b Value) (Value, error) {
			v, err := fn(a, b)
			var dz *DivisionByZeroError
			if errors.As(err, &dz) {
				return r.Number("0")
			}
			return v, err
		})
	}
}

// NewRegistry creates a registry holding the default operators and
// functions, then applies options in order.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := Registry{
		ops:    make(map[string]*Operator),
		funcs:  make(map[string]Func, len(defaultFuncs)),
		number: parseFloat,
	}
	for _, op := range defaultOperators() {
		r.ops[op.Symbol] = op
	}
	for k, v := range defaultFuncs {
		r.funcs[k] = v
	}
	return r.build(opts)
}

// Clone creates a copy of the registry with options applied.
func (r *Registry) Clone(opts ...RegistryOption) *Registry {
	n := Registry{
		ops:    make(map[string]*Operator, len(r.ops)),
		funcs:  make(map[string]Func, len(r.funcs)),
		number: r.number,
	}
	for k, v := range r.ops {
		n.ops[k] = v
	}
	for k, v := range r.funcs {
		n.funcs[k] = v
	}
	return n.build(opts)
}

func (r *Registry) build(opts []RegistryOption) *Registry {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.registryOption(r)
	}
	r.prefixes = make(map[string]bool, 2*len(r.ops))
	for sym := range r.ops {
		for i := 1; i <= len(sym); i++ {
			r.prefixes[sym[:i]] = true
		}
	}
	return r
}

var defaultRegistry *Registry

// Default returns the shared registry of default operators and functions.
func Default() *Registry {
	return defaultRegistry
}

// Operator looks up an operator by symbol.
func (r *Registry) Operator(symbol string) (*Operator, bool) {
	op, ok := r.ops[symbol]
	return op, ok
}

// Func looks up a function by name.
func (r *Registry) Func(name string) (Func, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Number converts the text of a number literal to a value.
func (r *Registry) Number(text string) (Value, error) {
	return r.number(text)
}

// Operators returns the sorted symbols of all operators in the registry.
func (r *Registry) Operators() []string {
	v := make([]string, 0, len(r.ops))
	for k := range r.ops {
		v = append(v, k)
	}
	sort.Strings(v)
	return v
}

// Funcs returns the sorted names of all functions in the registry.
func (r *Registry) Funcs() []string {
	v := make([]string, 0, len(r.funcs))
	for k := range r.funcs {
		v = append(v, k)
	}
	sort.Strings(v)
	return v
}

// isOperatorPrefix reports whether s is an operator symbol or the start of
// one.
func (r *Registry) isOperatorPrefix(s string) bool {
	return r.prefixes[s]
}

func parseFloat(text string) (Value, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) && errors.Is(ne.Err, strconv.ErrRange) {
			// Overflow gives ±Inf and underflow gives 0, which are fine.
			return f, nil
		}
		return nil, err
	}
	return f, nil
}
