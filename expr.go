package mathexec

// Expr is a compiled expression that can be evaluated with a context.
type Expr struct {
	// src is the text of the expression.
	src string
	// postfix is the reduced token sequence.
	postfix []Token
	// names is the list of variable names used in the expression.
	names []string
}

// Parse tokenizes and reduces an expression using reg, or the default
// registry if reg is nil. The same Expr may be evaluated any number of times,
// concurrently, with different contexts.
func Parse(src string, reg *Registry) (*Expr, error) {
	tokens, err := Tokenize(src, reg)
	if err != nil {
		return nil, err
	}
	postfix, err := Postfix(tokens, reg)
	if err != nil {
		return nil, err
	}
	return &Expr{src: src, postfix: postfix, names: Vars(postfix)}, nil
}

// Source returns the text the expression was parsed from.
func (e *Expr) Source() string {
	return e.src
}

// Postfix returns the expression's tokens in evaluation order. The caller
// must not modify the result.
func (e *Expr) Postfix() []Token {
	return e.postfix
}

// Vars returns the sorted names of the variables used in the expression. The
// caller must not modify the result.
func (e *Expr) Vars() []string {
	return e.names
}

// Eval evaluates the expression in ctx.
func (e *Expr) Eval(ctx *Context) (Value, error) {
	return ctx.Eval(e.postfix)
}
