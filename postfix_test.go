package mathexec_test

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/zephyrtronium/mathexec"
)

// rpn writes a postfix sequence compactly: function tokens carry their
// argument counts and strings are quoted.
func rpn(postfix []mathexec.Token) string {
	s := make([]string, len(postfix))
	for i, tok := range postfix {
		switch tok.Kind {
		case mathexec.TokenFunction:
			s[i] = tok.Text + "/" + strconv.Itoa(tok.Params)
		case mathexec.TokenString:
			s[i] = strconv.Quote(tok.Text)
		default:
			s[i] = tok.Text
		}
	}
	return strings.Join(s, " ")
}

func TestPostfix(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"num", "1", "1"},
		{"precedence", "1 + 2 * 3", "1 2 3 * +"},
		{"parens", "(1 + 2) * 3", "1 2 + 3 *"},
		{"left-assoc", "10 - 4 - 3", "10 4 - 3 -"},
		{"right-assoc", "2 ^ 3 ^ 2", "2 3 2 ^ ^"},
		{"neg-pow", "-2^2", "2 2 ^ uNeg"},
		{"pow-neg", "2^-2", "2 2 uNeg ^"},
		{"neg-mul", "-3 * 2", "3 uNeg 2 *"},
		{"mul-neg", "2 * -3", "2 3 uNeg *"},
		{"double-neg", "--5", "5 uNeg uNeg"},
		{"plus", "+x", "x uPos"},
		{"implicit-mul", "2x + 1", "2 x * 1 +"},
		{"logic", "a && b || c", "a b && c ||"},
		{"logic-rhs", "a || b && c", "a b c && ||"},
		{"not", "!a == b", "a ! b =="},
		{"comparisons", "1 < 2 == 2 > 1", "1 2 < 2 1 > =="},
		{"call", "sin(x)", "x sin/1"},
		{"call-pow", "sin(x)^2", "x sin/1 2 ^"},
		{"call-none", "pi()", "pi/0"},
		{"call-many", "max(1, 2, 3)", "1 2 3 max/3"},
		{"call-exprs", "max(1 + 2, 3 * 4)", "1 2 + 3 4 * max/2"},
		{"call-neg", "f(-1)", "1 uNeg f/1"},
		{"call-nested", "f(g(1, 2), 3)", "1 2 g/2 3 f/2"},
		{"call-grouped-arg", "f((1), 2)", "1 2 f/2"},
		{"call-in-call-last", "f(1, g(2))", "1 2 g/1 f/2"},
		{"array", "[1, 2]", "1 2 array/2"},
		{"array-empty", "[]", "array/0"},
		{"array-nested", "[[1], 2]", "1 array/1 2 array/2"},
		{"strings", "if(x > 0, 'y', \"z\")", `x 0 > "y" "z" if/3`},
		{"spaces", " 1 \t+ 2 ", "1 2 +"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tokens, err := mathexec.Tokenize(c.src, nil)
			if err != nil {
				t.Fatalf("%q failed to tokenize: %v", c.src, err)
			}
			p, err := mathexec.Postfix(tokens, nil)
			if err != nil {
				t.Fatalf("%q failed to reduce: %v", c.src, err)
			}
			if got := rpn(p); got != c.want {
				t.Errorf("%q: want %s, got %s", c.src, c.want, got)
			}
		})
	}
}

func TestPostfixErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		err  func(error) bool
		col  int
	}{
		{"unclosed", "(1 + 2", isErr[*mathexec.BracketError], 1},
		{"unopened", "1 + 2)", isErr[*mathexec.BracketError], 6},
		{"mismatched", "[1, 2)", isErr[*mathexec.BracketError], 6},
		{"mismatched-round", "f(1, 2]", isErr[*mathexec.BracketError], 7},
		{"unclosed-array", "[1, 2", isErr[*mathexec.BracketError], 1},
		{"reversed", ")(", isErr[*mathexec.BracketError], 1},
		{"sep-top", "1, 2", isErr[*mathexec.BracketError], 2},
		{"sep-group", "(1, 2)", isErr[*mathexec.BracketError], 3},
		{"sep-group-in-call", "f((1, 2))", isErr[*mathexec.BracketError], 5},
		{"unknown-op", "1 +@ 2", isErr[*mathexec.OperatorError], 3},
		{"assign", "x = 2", isErr[*mathexec.OperatorError], 3},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tokens, err := mathexec.Tokenize(c.src, nil)
			if err != nil {
				t.Fatalf("%q failed to tokenize: %v", c.src, err)
			}
			p, err := mathexec.Postfix(tokens, nil)
			if err == nil {
				t.Fatalf("%q reduced to %s with no error", c.src, rpn(p))
			}
			if !c.err(err) {
				t.Errorf("%q gave wrong error type %#v", c.src, err)
			}
			var ie mathexec.InputError
			if !errors.As(err, &ie) {
				t.Fatalf("%#v is not an InputError", err)
			}
			if ie.Pos() != c.col {
				t.Errorf("%q: wrong error position: want %d, got %d (%v)", c.src, c.col, ie.Pos(), err)
			}
		})
	}
}

func TestSeparatorMessage(t *testing.T) {
	_, err := mathexec.EvalString("1, 2")
	var be *mathexec.BracketError
	if !errors.As(err, &be) || be.Sep != "," || be.Col != 2 {
		t.Fatalf("want BracketError for separator at 2, got %#v", err)
	}
	if got, want := err.Error(), `2: separator "," outside of a function call`; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestPostfixRegistry(t *testing.T) {
	// Making + bind tighter than * reverses the usual grouping.
	reg := mathexec.NewRegistry(mathexec.WithOperator(mathexec.Binary("+", 200, false, func(l, r mathexec.Value) (mathexec.Value, error) {
		x, _ := mathexec.Float(l)
		y, _ := mathexec.Float(r)
		return x + y, nil
	})))
	tokens, err := mathexec.Tokenize("1 + 2 * 3", reg)
	if err != nil {
		t.Fatal(err)
	}
	p, err := mathexec.Postfix(tokens, reg)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := rpn(p), "1 2 + 3 *"; got != want {
		t.Errorf("want %s, got %s", want, got)
	}
	v, err := mathexec.NewContext(reg).Eval(p)
	if err != nil {
		t.Fatal(err)
	}
	if v != 9.0 {
		t.Errorf("want 9, got %v", v)
	}
}

// isErr returns whether err wraps an error of type E.
func isErr[E error](err error) bool {
	var e E
	return errors.As(err, &e)
}
