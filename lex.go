package mathexec

import (
	"strings"
	"unicode"
)

// Names of the prefix operators the tokenizer emits for signs in operand
// position.
const (
	UnaryMinus = "uNeg"
	UnaryPlus  = "uPos"
)

// ArrayFunc is the function a [...] literal calls.
const ArrayFunc = "array"

type tokenizer struct {
	reg    *Registry
	tokens []Token
	col    int

	num    strings.Builder
	numPos int
	id     strings.Builder
	idPos  int

	// quote is the delimiter of the string being scanned, or 0 outside
	// strings.
	quote  rune
	str    strings.Builder
	strPos int
	escape bool

	// unary is set when a + or - would start an operand.
	unary bool
}

// Tokenize splits an expression into tokens. Multi-character operators are
// assembled according to the symbols in reg, which may be nil to use the
// defaults. The only error Tokenize returns is a *LexError for an
// unterminated string.
func Tokenize(expr string, reg *Registry) ([]Token, error) {
	if reg == nil {
		reg = Default()
	}
	l := tokenizer{reg: reg, unary: true}
	for _, r := range expr {
		l.col++
		l.scan(r)
	}
	if l.quote != 0 {
		return nil, &LexError{Text: string(l.quote) + l.str.String(), Kind: "string", Col: l.strPos}
	}
	l.flush()
	return l.tokens, nil
}

func (l *tokenizer) emit(kind TokenKind, text string, pos int) {
	l.tokens = append(l.tokens, Token{Kind: kind, Text: text, Pos: pos})
}

func (l *tokenizer) flushNum() {
	if l.num.Len() == 0 {
		return
	}
	l.emit(TokenLiteral, l.num.String(), l.numPos)
	l.num.Reset()
}

func (l *tokenizer) flushIdent() {
	if l.id.Len() == 0 {
		return
	}
	l.emit(TokenVariable, l.id.String(), l.idPos)
	l.id.Reset()
}

func (l *tokenizer) flush() {
	l.flushNum()
	l.flushIdent()
}

// implicitMul ends a pending number followed directly by something that
// multiplies it.
func (l *tokenizer) implicitMul() {
	if l.num.Len() == 0 {
		return
	}
	l.flushNum()
	l.emit(TokenOperator, "*", 0)
}

func (l *tokenizer) scan(r rune) {
	if l.quote != 0 {
		l.scanQuoted(r)
		return
	}
	switch {
	case unicode.IsSpace(r):
		l.flush()
		l.emit(TokenSpace, string(r), l.col)
	case '0' <= r && r <= '9':
		if l.id.Len() > 0 {
			l.id.WriteRune(r)
			return
		}
		l.numRune(r)
	case (r == 'e' || r == 'E') && l.exponent():
		l.num.WriteByte('e')
		l.unary = false
	case r == '_' || unicode.IsLetter(r):
		l.implicitMul()
		if l.id.Len() == 0 {
			l.idPos = l.col
		}
		l.id.WriteRune(r)
		l.unary = false
	case r == '.':
		if l.id.Len() > 0 {
			l.id.WriteRune(r)
			return
		}
		l.numRune(r)
	case r == '"' || r == '\'':
		l.flush()
		l.quote = r
		l.strPos = l.col
	case r == '(':
		if l.id.Len() > 0 {
			l.emit(TokenFunction, l.id.String(), l.idPos)
			l.id.Reset()
		} else {
			l.implicitMul()
		}
		l.emit(TokenLeftParen, "(", l.col)
		l.unary = true
	case r == '[':
		l.flush()
		l.emit(TokenFunction, ArrayFunc, 0)
		l.emit(TokenLeftParen, "[", l.col)
		l.unary = true
	case r == ')' || r == ']':
		l.flush()
		l.emit(TokenRightParen, string(r), l.col)
		l.unary = false
	case r == ',':
		l.flush()
		l.emit(TokenParamSeparator, ",", l.col)
		l.unary = true
	case r == '$':
		l.flush()
		l.unary = true
	default:
		l.scanOperator(r)
	}
}

func (l *tokenizer) numRune(r rune) {
	if l.num.Len() == 0 {
		l.numPos = l.col
	}
	l.num.WriteRune(r)
	l.unary = false
}

// exponent reports whether an e continues the pending number as its
// exponent marker.
func (l *tokenizer) exponent() bool {
	s := l.num.String()
	return strings.IndexByte(s, '.') >= 0 && strings.IndexByte(s, 'e') < 0
}

func (l *tokenizer) scanQuoted(r rune) {
	if l.escape {
		l.escape = false
		if r == '\\' || r == l.quote {
			l.str.WriteRune(r)
			return
		}
		l.str.WriteByte('\\')
	}
	switch r {
	case '\\':
		l.escape = true
	case l.quote:
		l.emit(TokenString, l.str.String(), l.strPos)
		l.str.Reset()
		l.quote = 0
		l.unary = false
	default:
		l.str.WriteRune(r)
	}
}

func (l *tokenizer) scanOperator(r rune) {
	if r == '+' || r == '-' {
		if l.unary {
			l.flush()
			if r == '-' {
				l.emit(TokenOperator, UnaryMinus, l.col)
			} else {
				l.emit(TokenOperator, UnaryPlus, l.col)
			}
			return
		}
		if s := l.num.String(); strings.HasSuffix(s, "e") {
			l.num.WriteRune(r)
			return
		}
	}
	l.flush()
	if n := len(l.tokens); n > 0 && l.tokens[n-1].Kind == TokenOperator && l.extends(l.tokens[n-1].Text, r) {
		l.tokens[n-1].Text += string(r)
	} else {
		l.emit(TokenOperator, string(r), l.col)
	}
	l.unary = true
}

// extends reports whether r continues the operator symbol prev rather than
// starting a new one.
func (l *tokenizer) extends(prev string, r rune) bool {
	if prev == UnaryMinus || prev == UnaryPlus {
		return false
	}
	if l.reg.isOperatorPrefix(prev + string(r)) {
		return true
	}
	// A character that cannot begin any operator sticks to its neighbor so
	// that the whole run is reported as one unknown operator.
	return !l.reg.isOperatorPrefix(string(r))
}
