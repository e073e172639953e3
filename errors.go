package mathexec

import (
	"fmt"
	"strconv"
)

// LexError indicates input the tokenizer cannot turn into tokens. It
// implements InputError.
type LexError struct {
	// Text is the text the tokenizer was scanning when it gave up.
	Text string
	// Kind is the type of token being scanned, e.g. "string".
	Kind string
	// Col is the column at which the token started.
	Col int
}

func (err *LexError) Error() string {
	if err.Kind == "" {
		return errpos(err.Col, "invalid token: "+strconv.Quote(err.Text))
	}
	return errpos(err.Col, "invalid "+err.Kind+" token: "+strconv.Quote(err.Text))
}

func (err *LexError) Pos() int {
	return err.Col
}

// OperatorError is an error indicating an operator symbol with no registered
// operator. It implements InputError.
type OperatorError struct {
	// Col is the position of the operator, or 0 if unknown.
	Col int
	// Operator is the symbol that was not understood.
	Operator string
}

func (err *OperatorError) Error() string {
	return errpos(err.Col, "unknown operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// FuncError is an error indicating a call to a function with no registered
// implementation. It implements InputError.
type FuncError struct {
	// Col is the position of the function name.
	Col int
	// Func is the name of the function.
	Func string
}

func (err *FuncError) Error() string {
	return errpos(err.Col, "unknown function "+strconv.Quote(err.Func))
}

func (err *FuncError) Pos() int {
	return err.Col
}

// BracketError is an error indicating mismatched brackets in the
// input, including an argument separator that no call bracket encloses. It
// implements InputError.
type BracketError struct {
	// Col is the position of the offending bracket or separator.
	Col int
	// Left is the opening bracket, if any.
	Left string
	// Right is the closing bracket, if any.
	Right string
	// Sep is the separator found outside a call, if any.
	Sep string
}

func (err *BracketError) Error() string {
	if err.Sep != "" {
		return errpos(err.Col, "separator "+strconv.Quote(err.Sep)+" outside of a function call")
	}
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	if err.Right == "" {
		return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
	}
	return errpos(err.Col, "mismatched bracket: "+err.Left+"expr"+err.Right)
}

func (err *BracketError) Pos() int {
	return err.Col
}

// CallError is an error indicating a function call with the wrong number of
// arguments. It implements InputError.
type CallError struct {
	// Col is the position of the function name.
	Col int
	// Func is the function name that was called.
	Func string
	// Len is the number of arguments in the call.
	Len int
}

func (err *CallError) Error() string {
	return errpos(err.Col, "cannot call "+err.Func+" with "+strconv.Itoa(err.Len)+" arguments")
}

func (err *CallError) Pos() int {
	return err.Col
}

// NameError is an error from a lookup for a variable that is missing from the
// evaluation context.
type NameError struct {
	// Name is the name that was missing.
	Name string
}

func (err *NameError) Error() string {
	return "undefined variable: " + strconv.Quote(err.Name)
}

// ExpressionError indicates an expression whose operators and operands do not
// reduce to exactly one value.
type ExpressionError struct {
	// Len is the number of values left after evaluation.
	Len int
}

func (err *ExpressionError) Error() string {
	if err.Len == 0 {
		return "incorrect expression: no value"
	}
	return "incorrect expression: " + strconv.Itoa(err.Len) + " values left on stack"
}

// DivisionByZeroError is returned by the default division and modulo
// operators when the divisor is zero.
type DivisionByZeroError struct {
	// Op is the operator or function that divided.
	Op string
}

func (err *DivisionByZeroError) Error() string {
	if err.Op == "" {
		return "division by zero"
	}
	return "division by zero in " + err.Op
}

// DomainError is returned when a function is called on arguments outside its
// domain.
type DomainError struct {
	// X is the out-of-domain argument.
	X Value
	// Arg is the 1-based index of the argument.
	Arg int
	// Func is a name identifying the function.
	Func string
}

func (err *DomainError) Error() string {
	r := fmt.Sprint(err.X) + " outside domain"
	if err.Func != "" {
		r += " of " + err.Func
	}
	if err.Arg > 0 {
		r += " (argument " + strconv.Itoa(err.Arg) + ")"
	}
	return r
}

// TypeError is returned when an operand has a type an operator or function
// cannot use.
type TypeError struct {
	// X is the offending value.
	X Value
	// Want describes the accepted type.
	Want string
	// Func is the operator symbol or function name.
	Func string
}

func (err *TypeError) Error() string {
	return fmt.Sprintf("%s: cannot use %#v as %s", err.Func, err.X, err.Want)
}

// VarError is returned when a variable value is rejected before it can be
// stored.
type VarError struct {
	// Name is the variable name.
	Name string
	// X is the rejected value.
	X Value
}

func (err *VarError) Error() string {
	return fmt.Sprintf("variable %q: value of type %T is not allowed", err.Name, err.X)
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	if pos <= 0 {
		return msg
	}
	return strconv.Itoa(pos) + ": " + msg
}

// InputError is an error with position information. Every error caused by
// malformed input text implements InputError.
type InputError interface {
	error
	// Pos returns the 1-based rune column of the token that caused the
	// error, or 0 if the token was synthesized.
	Pos() int
}

var (
	_ InputError = (*LexError)(nil)
	_ InputError = (*OperatorError)(nil)
	_ InputError = (*FuncError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*CallError)(nil)
)
