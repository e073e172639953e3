package mathexec

import (
	"strconv"
	"strings"
)

// node is a node in the tree a postfix sequence describes.
type node struct {
	tok  Token
	args []*node
}

// Explain renders a postfix sequence as a fully bracketed infix expression,
// showing how operators were grouped. Brackets alternate between round and
// square at each level of nesting. reg supplies operator arities and may be
// nil to use the defaults.
func Explain(postfix []Token, reg *Registry) (string, error) {
	if reg == nil {
		reg = Default()
	}
	var stack []*node
	for _, tok := range postfix {
		n := 0
		switch tok.Kind {
		case TokenLiteral, TokenVariable, TokenString:
		case TokenOperator:
			op, ok := reg.Operator(tok.Text)
			if !ok {
				return "", &OperatorError{Col: tok.Pos, Operator: tok.Text}
			}
			n = op.Arity()
		case TokenFunction:
			n = tok.Params
		case TokenSpace:
			continue
		default:
			return "", &ExpressionError{Len: len(stack)}
		}
		if len(stack) < n {
			return "", &ExpressionError{Len: len(stack)}
		}
		nd := &node{tok: tok, args: append([]*node(nil), stack[len(stack)-n:]...)}
		stack = append(stack[:len(stack)-n], nd)
	}
	if len(stack) != 1 {
		return "", &ExpressionError{Len: len(stack)}
	}
	return stack[0].String(), nil
}

func (n *node) String() string {
	var b strings.Builder
	n.fmt(&b, false)
	return b.String()
}

func (n *node) fmt(b *strings.Builder, square bool) {
	switch n.tok.Kind {
	case TokenLiteral, TokenVariable:
		b.WriteString(n.tok.Text)
		return
	case TokenString:
		b.WriteString(strconv.Quote(n.tok.Text))
		return
	case TokenFunction:
		b.WriteString(n.tok.Text)
		b.WriteByte('(')
		for i, a := range n.args {
			if i > 0 {
				b.WriteString(", ")
			}
			a.fmt(b, false)
		}
		b.WriteByte(')')
		return
	}
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	switch len(n.args) {
	case 1:
		switch n.tok.Text {
		case UnaryMinus:
			b.WriteByte('-')
		case UnaryPlus:
			b.WriteByte('+')
		default:
			b.WriteString(n.tok.Text)
		}
		n.args[0].fmt(b, !square)
	case 2:
		n.args[0].fmt(b, !square)
		b.WriteString(" " + n.tok.Text + " ")
		n.args[1].fmt(b, !square)
	}
	b.WriteByte(r)
}
