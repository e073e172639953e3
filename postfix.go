package mathexec

import "strconv"

// brackets maps closing brackets to the opening bracket they match.
var brackets = map[string]string{")": "(", "]": "["}

// Postfix reorders tokens from infix into postfix order using the
// shunting-yard algorithm. Operator precedence and associativity come from
// reg, which may be nil to use the defaults. Space tokens are dropped. Each
// Function token in the result has Params set to the number of arguments in
// its call.
func Postfix(tokens []Token, reg *Registry) ([]Token, error) {
	if reg == nil {
		reg = Default()
	}
	out := make([]Token, 0, len(tokens))
	var stack []Token
	// params counts the arguments of each open call, innermost last. A count
	// stays 0 until the call's first value token appears.
	var params []int
	arg := func() {
		if n := len(params); n > 0 && params[n-1] == 0 {
			params[n-1] = 1
		}
	}
	pop := func() Token {
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return t
	}
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenLiteral, TokenVariable, TokenString:
			arg()
			out = append(out, tok)
		case TokenFunction:
			arg()
			stack = append(stack, tok)
			params = append(params, 0)
		case TokenLeftParen:
			stack = append(stack, tok)
		case TokenParamSeparator:
			for len(stack) > 0 && stack[len(stack)-1].Kind != TokenLeftParen {
				out = append(out, pop())
			}
			n := len(stack)
			if n < 2 || stack[n-2].Kind != TokenFunction {
				return nil, &BracketError{Col: tok.Pos, Sep: tok.Text}
			}
			params[len(params)-1]++
		case TokenOperator:
			op, ok := reg.Operator(tok.Text)
			if !ok {
				return nil, &OperatorError{Col: tok.Pos, Operator: tok.Text}
			}
			// Prefix operators have no left operand to bind, so they never
			// force anything off the stack.
			if op.Arity() == 2 {
				for len(stack) > 0 && stack[len(stack)-1].Kind == TokenOperator {
					prev, _ := reg.Operator(stack[len(stack)-1].Text)
					if !prev.popsBefore(op) {
						break
					}
					out = append(out, pop())
				}
			}
			stack = append(stack, tok)
		case TokenRightParen:
			for {
				if len(stack) == 0 {
					return nil, &BracketError{Col: tok.Pos, Right: tok.Text}
				}
				t := pop()
				if t.Kind == TokenLeftParen {
					if want := brackets[tok.Text]; want != "" && t.Text != want {
						return nil, &BracketError{Col: tok.Pos, Left: t.Text, Right: tok.Text}
					}
					break
				}
				out = append(out, t)
			}
			if n := len(stack); n > 0 && stack[n-1].Kind == TokenFunction {
				fn := pop()
				fn.Params = params[len(params)-1]
				params = params[:len(params)-1]
				out = append(out, fn)
			}
		case TokenSpace:
			// do nothing
		default:
			panic("mathexec: invalid token kind " + strconv.Itoa(int(tok.Kind)))
		}
	}
	for len(stack) > 0 {
		t := pop()
		if t.Kind == TokenLeftParen {
			return nil, &BracketError{Col: t.Pos, Left: t.Text}
		}
		out = append(out, t)
	}
	return out, nil
}
