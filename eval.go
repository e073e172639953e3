package mathexec

import "strconv"

// Resolver supplies values for variables that a context does not define. It
// returns false if it has no value for the name either.
type Resolver func(name string) (Value, bool)

// Context is a context for evaluating expressions: a registry, a set of
// variables, and the means to evaluate nested expressions. A Context is not
// modified by evaluation, so it is safe to use concurrently as long as the
// functions it calls are.
type Context struct {
	reg     *Registry
	names   map[string]Value
	missing Resolver
	// exec evaluates expression text for Exec. When nil, Exec parses
	// without caching.
	exec func(ctx *Context, expr string) (Value, error)
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  Value
	}
	varsopt    map[string]Value
	missingopt Resolver
	execopt    func(ctx *Context, expr string) (Value, error)
)

func (varopt) ctxOption()     {}
func (varsopt) ctxOption()    {}
func (missingopt) ctxOption() {}
func (execopt) ctxOption()    {}

// SetVar sets the value of a variable in the context.
func SetVar(name string, val Value) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]Value) ContextOption {
	return varsopt(vars)
}

// OnMissing sets the resolver consulted for variables the context does not
// define.
func OnMissing(fn Resolver) ContextOption {
	return missingopt(fn)
}

// Reentry sets the function Exec uses to evaluate expression text, e.g. to
// consult a cache of compiled expressions.
func Reentry(fn func(ctx *Context, expr string) (Value, error)) ContextOption {
	return execopt(fn)
}

// NewContext creates a new evaluation context using reg, or the default
// registry if reg is nil.
func NewContext(reg *Registry, opts ...ContextOption) *Context {
	if reg == nil {
		reg = Default()
	}
	ctx := Context{reg: reg}
	return ctx.Clone(opts...)
}

// Clone creates a copy of a context and applies options to it.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		reg:     ctx.reg,
		names:   make(map[string]Value, len(ctx.names)),
		missing: ctx.missing,
		exec:    ctx.exec,
	}
	for k, v := range ctx.names {
		n.names[k] = v
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.names[opt.name] = opt.val
		case varsopt:
			for k, v := range opt {
				n.names[k] = v
			}
		case missingopt:
			n.missing = Resolver(opt)
		case execopt:
			n.exec = opt
		default:
			panic("mathexec: unknown option type")
		}
	}
	return &n
}

// Registry returns the registry the context evaluates with.
func (ctx *Context) Registry() *Registry {
	return ctx.reg
}

// Lookup returns the value of a variable, consulting the context's resolver
// if the context does not define it.
func (ctx *Context) Lookup(name string) (Value, bool) {
	if v, ok := ctx.names[name]; ok {
		return v, true
	}
	if ctx.missing != nil {
		return ctx.missing(name)
	}
	return nil, false
}

// Eval evaluates a postfix token sequence, as produced by Postfix, and
// returns its single result.
func (ctx *Context) Eval(postfix []Token) (Value, error) {
	stack := make([]Value, 0, len(postfix)/2+1)
	for _, tok := range postfix {
		switch tok.Kind {
		case TokenLiteral:
			v, err := ctx.reg.Number(tok.Text)
			if err != nil {
				return nil, &LexError{Text: tok.Text, Kind: "number", Col: tok.Pos}
			}
			stack = append(stack, v)
		case TokenString:
			stack = append(stack, tok.Text)
		case TokenVariable:
			v, ok := ctx.Lookup(tok.Text)
			if !ok {
				return nil, &NameError{Name: tok.Text}
			}
			stack = append(stack, v)
		case TokenOperator:
			op, ok := ctx.reg.Operator(tok.Text)
			if !ok || !op.defined() {
				return nil, &OperatorError{Col: tok.Pos, Operator: tok.Text}
			}
			n := op.Arity()
			if len(stack) < n {
				return nil, &ExpressionError{Len: len(stack)}
			}
			// Operands stay in source order: the left operand is deeper.
			r, err := op.Apply(stack[len(stack)-n:]...)
			if err != nil {
				return nil, err
			}
			stack = append(stack[:len(stack)-n], r)
		case TokenFunction:
			fn, ok := ctx.reg.Func(tok.Text)
			if !ok {
				return nil, &FuncError{Col: tok.Pos, Func: tok.Text}
			}
			n := tok.Params
			if !fn.CanCall(n) {
				return nil, &CallError{Col: tok.Pos, Func: tok.Text, Len: n}
			}
			if len(stack) < n {
				return nil, &ExpressionError{Len: len(stack)}
			}
			args := make([]Value, n)
			copy(args, stack[len(stack)-n:])
			r, err := fn.Call(ctx, args)
			if err != nil {
				return nil, err
			}
			stack = append(stack[:len(stack)-n], r)
		case TokenLeftParen:
			return nil, &BracketError{Col: tok.Pos, Left: tok.Text}
		case TokenRightParen:
			return nil, &BracketError{Col: tok.Pos, Right: tok.Text}
		case TokenParamSeparator:
			return nil, &BracketError{Col: tok.Pos, Sep: tok.Text}
		case TokenSpace:
			// do nothing
		default:
			panic("mathexec: invalid token kind " + strconv.Itoa(int(tok.Kind)))
		}
	}
	if len(stack) != 1 {
		return nil, &ExpressionError{Len: len(stack)}
	}
	return stack[0], nil
}

// Exec tokenizes, reduces, and evaluates expression text in the context.
// Functions use it to evaluate expressions passed to them as strings.
func (ctx *Context) Exec(expr string) (Value, error) {
	if ctx.exec != nil {
		return ctx.exec(ctx, expr)
	}
	p, err := Parse(expr, ctx.reg)
	if err != nil {
		return nil, err
	}
	return ctx.Eval(p.Postfix())
}

// Evaluate is a shortcut to evaluate a postfix token sequence with a
// registry, a set of variables, and a resolver for missing variables. Any of
// reg, vars, and missing may be nil.
func Evaluate(postfix []Token, reg *Registry, vars map[string]Value, missing Resolver) (Value, error) {
	ctx := NewContext(reg, SetVars(vars), OnMissing(missing))
	return ctx.Eval(postfix)
}

// EvalString is a shortcut to parse and evaluate an expression with the
// default registry.
func EvalString(expr string, opts ...ContextOption) (Value, error) {
	return NewContext(nil, opts...).Exec(expr)
}
