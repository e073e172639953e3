package mathexec

import (
	"log/slog"
	"reflect"
	"sync"
)

// Executor evaluates expression text with a registry, a set of variables,
// and a cache of compiled expressions. All methods are safe for concurrent
// use. Changes to the registry or variables apply to evaluations that start
// after the change.
type Executor struct {
	mu       sync.RWMutex
	reg      *Registry
	vars     map[string]Value
	missing  Resolver
	validate func(name string, v Value) error
	// cache is replaced rather than cleared when the registry changes, so
	// that compilations racing with the change cannot repopulate it.
	cache     *Cache
	cacheSize int
	log       *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithRegistry sets the registry of operators and functions.
func WithRegistry(reg *Registry) Option {
	return func(e *Executor) {
		e.reg = reg
	}
}

// WithVars adds variables. They replace the defaults of the same names and
// are checked by the variable validator in effect when New returns.
func WithVars(vars map[string]Value) Option {
	return func(e *Executor) {
		for k, v := range vars {
			e.vars[k] = v
		}
	}
}

// WithCache sets the capacity of the compiled expression cache.
func WithCache(size int) Option {
	return func(e *Executor) {
		e.cacheSize = size
	}
}

// WithoutCache disables caching of compiled expressions.
func WithoutCache() Option {
	return func(e *Executor) {
		e.cacheSize = -1
	}
}

// WithLogger sets the logger for debug messages about compilation.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.log = logger
	}
}

// WithVarNotFound sets the resolver consulted for undefined variables.
func WithVarNotFound(fn Resolver) Option {
	return func(e *Executor) {
		e.missing = fn
	}
}

// WithVarValidation sets the check applied to variable values before they
// are stored. A nil function accepts everything.
func WithVarValidation(fn func(name string, v Value) error) Option {
	return func(e *Executor) {
		e.validate = fn
	}
}

// WithDivisionByZeroIsZero makes division and modulo by zero produce zero.
// It applies to the registry set by earlier options.
func WithDivisionByZeroIsZero() Option {
	return func(e *Executor) {
		e.reg = e.reg.Clone(DivisionByZeroIsZero())
	}
}

// New creates an executor. Without options, it uses the default registry,
// a cache of DefaultCacheSize expressions, the variables pi and e, and
// ValidateVar.
func New(opts ...Option) (*Executor, error) {
	e := Executor{
		reg: Default(),
		vars: map[string]Value{
			"pi": 3.14159265359,
			"e":  2.71828182846,
		},
		validate: ValidateVar,
	}
	for _, opt := range opts {
		opt(&e)
	}
	if e.reg == nil {
		e.reg = Default()
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.validate != nil {
		for k, v := range e.vars {
			if err := e.validate(k, v); err != nil {
				return nil, err
			}
		}
	}
	if e.cacheSize >= 0 {
		e.cache = NewCache(e.cacheSize)
	}
	return &e, nil
}

// ValidateVar is the default variable validator. It rejects nil and values
// of kinds that cannot take part in arithmetic or comparison: maps, channels,
// functions, and unsafe pointers.
func ValidateVar(name string, v Value) error {
	if v == nil {
		return &VarError{Name: name, X: v}
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return &VarError{Name: name, X: v}
	}
	return nil
}

// snapshot returns the state an evaluation needs.
func (e *Executor) snapshot() (*Registry, map[string]Value, Resolver, *Cache) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.reg, e.vars, e.missing, e.cache
}

// Compile tokenizes and reduces an expression, consulting the cache.
func (e *Executor) Compile(expr string) (*Expr, error) {
	reg, _, _, cache := e.snapshot()
	return e.compile(reg, cache, expr)
}

func (e *Executor) compile(reg *Registry, cache *Cache, expr string) (*Expr, error) {
	if cache == nil {
		return e.parse(reg, expr)
	}
	p, hit, err := cache.GetOrCompile(expr, func() (*Expr, error) {
		return e.parse(reg, expr)
	})
	if hit {
		e.log.Debug("compiled expression cache hit", slog.String("expr", expr))
	}
	return p, err
}

func (e *Executor) parse(reg *Registry, expr string) (*Expr, error) {
	p, err := Parse(expr, reg)
	if err != nil {
		e.log.Debug("compile failed", slog.String("expr", expr), slog.Any("err", err))
		return nil, err
	}
	e.log.Debug("compiled expression", slog.String("expr", expr), slog.Int("tokens", len(p.postfix)))
	return p, nil
}

// context creates an evaluation context over a snapshot of the executor.
// Nested evaluations through Context.Exec share the snapshot's cache.
func (e *Executor) context(cached bool) *Context {
	reg, vars, missing, cache := e.snapshot()
	if !cached {
		cache = nil
	}
	return &Context{
		reg:     reg,
		names:   vars,
		missing: missing,
		exec: func(ctx *Context, expr string) (Value, error) {
			p, err := e.compile(reg, cache, expr)
			if err != nil {
				return nil, err
			}
			return ctx.Eval(p.postfix)
		},
	}
}

// Execute evaluates an expression.
func (e *Executor) Execute(expr string) (Value, error) {
	return e.context(true).Exec(expr)
}

// ExecuteUncached evaluates an expression without consulting or filling the
// cache.
func (e *Executor) ExecuteUncached(expr string) (Value, error) {
	return e.context(false).Exec(expr)
}

// Eval evaluates a compiled expression with the executor's variables.
func (e *Executor) Eval(p *Expr) (Value, error) {
	return e.context(true).Eval(p.postfix)
}

// setVars validates and stores variables. e.vars is never modified in place
// because running evaluations share it.
func (e *Executor) setVars(vars map[string]Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.validate != nil {
		for k, v := range vars {
			if err := e.validate(k, v); err != nil {
				return err
			}
		}
	}
	n := make(map[string]Value, len(e.vars)+len(vars))
	for k, v := range e.vars {
		n[k] = v
	}
	for k, v := range vars {
		n[k] = v
	}
	e.vars = n
	return nil
}

// SetVar sets a variable after checking it with the variable validator.
func (e *Executor) SetVar(name string, v Value) error {
	return e.setVars(map[string]Value{name: v})
}

// SetVars sets several variables. If any value is rejected, none are set.
func (e *Executor) SetVars(vars map[string]Value) error {
	return e.setVars(vars)
}

// Var returns the value of a variable.
func (e *Executor) Var(name string) (Value, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.vars[name]
	return v, ok
}

// VarExists reports whether a variable is set.
func (e *Executor) VarExists(name string) bool {
	_, ok := e.Var(name)
	return ok
}

// Vars returns a copy of all variables.
func (e *Executor) Vars() map[string]Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r := make(map[string]Value, len(e.vars))
	for k, v := range e.vars {
		r[k] = v
	}
	return r
}

// RemoveVar removes a variable.
func (e *Executor) RemoveVar(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.vars[name]; !ok {
		return
	}
	n := make(map[string]Value, len(e.vars))
	for k, v := range e.vars {
		if k != name {
			n[k] = v
		}
	}
	e.vars = n
}

// RemoveVars removes all variables, including pi and e.
func (e *Executor) RemoveVars() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.vars = map[string]Value{}
}

// SetVarNotFound sets the resolver consulted for undefined variables.
func (e *Executor) SetVarNotFound(fn Resolver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.missing = fn
}

// SetVarValidation sets the check applied to variable values before they
// are stored. Variables already set are not checked again.
func (e *Executor) SetVarValidation(fn func(name string, v Value) error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.validate = fn
}

// edit replaces the registry and drops every compiled expression.
func (e *Executor) edit(opts ...RegistryOption) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reg = e.reg.Clone(opts...)
	if e.cache != nil {
		e.cache = NewCache(e.cache.Capacity())
	}
}

// AddOperator adds or replaces an operator.
func (e *Executor) AddOperator(op *Operator) {
	e.edit(WithOperator(op))
}

// RemoveOperator removes an operator.
func (e *Executor) RemoveOperator(symbol string) {
	e.edit(WithoutOperator(symbol))
}

// AddFunc adds or replaces a function.
func (e *Executor) AddFunc(name string, fn Func) {
	e.edit(WithFunc(name, fn))
}

// RemoveFunc removes a function.
func (e *Executor) RemoveFunc(name string) {
	e.edit(WithoutFunc(name))
}

// SetDivisionByZeroIsZero makes division and modulo by zero produce zero.
func (e *Executor) SetDivisionByZeroIsZero() {
	e.edit(DivisionByZeroIsZero())
}

// Registry returns the current registry.
func (e *Executor) Registry() *Registry {
	reg, _, _, _ := e.snapshot()
	return reg
}

// Operators returns the sorted symbols of the available operators.
func (e *Executor) Operators() []string {
	return e.Registry().Operators()
}

// Funcs returns the sorted names of the available functions.
func (e *Executor) Funcs() []string {
	return e.Registry().Funcs()
}

// CacheLen returns the number of cached compiled expressions.
func (e *Executor) CacheLen() int {
	_, _, _, cache := e.snapshot()
	if cache == nil {
		return 0
	}
	return cache.Len()
}

// ClearCache drops every cached compiled expression.
func (e *Executor) ClearCache() {
	_, _, _, cache := e.snapshot()
	if cache != nil {
		cache.Clear()
	}
}
