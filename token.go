package mathexec

import (
	"sort"
	"strconv"
)

// TokenKind identifies the role of a token in an expression.
type TokenKind int8

const (
	// TokenLiteral is a number.
	TokenLiteral TokenKind = iota
	// TokenVariable is a variable name.
	TokenVariable
	// TokenOperator is an operator symbol, possibly several characters long.
	TokenOperator
	// TokenLeftParen opens a group or a function argument list.
	TokenLeftParen
	// TokenRightParen closes a group or a function argument list.
	TokenRightParen
	// TokenFunction is a function name immediately followed by an argument list.
	TokenFunction
	// TokenParamSeparator separates function arguments.
	TokenParamSeparator
	// TokenString is a quoted string. Its text is the decoded content.
	TokenString
	// TokenSpace is whitespace. Postfix drops it.
	TokenSpace
)

var tokenKindNames = [...]string{
	TokenLiteral:        "Literal",
	TokenVariable:       "Variable",
	TokenOperator:       "Operator",
	TokenLeftParen:      "LeftParen",
	TokenRightParen:     "RightParen",
	TokenFunction:       "Function",
	TokenParamSeparator: "ParamSeparator",
	TokenString:         "String",
	TokenSpace:          "Space",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenKindNames) {
		return "TokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenKindNames[k]
}

// Token is a single lexical element of an expression.
type Token struct {
	// Kind is the token's role.
	Kind TokenKind
	// Text is the literal text, operator symbol, or name of the token. For
	// strings, it is the content with escapes decoded.
	Text string
	// Pos is the 1-based rune column at which the token starts. Tokens that
	// the tokenizer synthesizes, like implicit multiplications, have Pos 0.
	Pos int
	// Params is the number of arguments a Function token is called with. It
	// is set by Postfix when the closing bracket of the call is reduced.
	Params int
}

func (t Token) String() string {
	s := t.Kind.String() + ":" + t.Text
	if t.Kind == TokenFunction {
		s += "/" + strconv.Itoa(t.Params)
	}
	return s + "@" + strconv.Itoa(t.Pos)
}

// Vars returns the sorted distinct variable names referenced by tokens.
func Vars(tokens []Token) []string {
	seen := make(map[string]bool)
	var names []string
	for _, tok := range tokens {
		if tok.Kind != TokenVariable || seen[tok.Text] {
			continue
		}
		seen[tok.Text] = true
		names = append(names, tok.Text)
	}
	sort.Strings(names)
	return names
}
