package mathexec_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/zephyrtronium/mathexec"
)

func TestExplain(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"num", "1", "1"},
		{"var", "x", "x"},
		{"string", "'a\"b'", `"a\"b"`},
		{"add-mul", "1 + 2 * 3", "(1 + [2 * 3])"},
		{"parens", "(1 + 2) * 3", "([1 + 2] * 3)"},
		{"pow", "2 ^ 3 ^ 2", "(2 ^ [3 ^ 2])"},
		{"sub", "1 - 2 - 3", "([1 - 2] - 3)"},
		{"deep", "1 - 2 - 3 - 4", "([(1 - 2) - 3] - 4)"},
		{"neg-pow", "-2^2", "(-[2 ^ 2])"},
		{"pow-neg", "2^-2", "(2 ^ [-2])"},
		{"plus", "+x", "(+x)"},
		{"not", "a && !b", "(a && [!b])"},
		{"call", "max(1 + 2, x)", "max((1 + 2), x)"},
		{"call-nested", "sin(cos(x) * 2)", "sin((cos(x) * 2))"},
		{"array", "[1, 'a']", `array(1, "a")`},
		{"implicit-mul", "2x", "(2 * x)"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := mathexec.Parse(c.src, nil)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			got, err := mathexec.Explain(p.Postfix(), nil)
			if err != nil {
				t.Fatalf("%q failed to explain: %v", c.src, err)
			}
			if got != c.want {
				t.Errorf("%q: want %s, got %s", c.src, c.want, got)
			}
		})
	}
}

func TestParseTrees(t *testing.T) {
	cases := []struct {
		name string
		a, b string
	}{
		{"mul-before-add", "1+2*3", "1+(2*3)"},
		{"add-left", "1+2+3", "(1+2)+3"},
		{"sub-left", "1-2-3", "(1-2)-3"},
		{"div-left", "1/2/3", "(1/2)/3"},
		{"pow-right", "2^3^2", "2^(3^2)"},
		{"neg-pow", "-x^2", "-(x^2)"},
		{"pow-neg", "x^-2", "x^(-2)"},
		{"mul-neg", "x*-2", "x*(-2)"},
		{"and-before-or", "a||b&&c", "a||(b&&c)"},
		{"cmp-before-eq", "a==b<c", "a==(b<c)"},
		{"add-before-cmp", "a<b+c", "a<(b+c)"},
		{"not-before-eq", "!a==b", "(!a)==b"},
		{"implicit-mul", "2x", "2*x"},
		{"implicit-mul-paren", "2(x+1)", "2*(x+1)"},
		{"dollar", "$x + $y", "x + y"},
		{"spaces", "1+2", " 1 + 2 "},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := mathexec.Parse(c.a, nil)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.a, err)
			}
			b, err := mathexec.Parse(c.b, nil)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.b, err)
			}
			x, err := mathexec.Explain(a.Postfix(), nil)
			if err != nil {
				t.Fatal(err)
			}
			y, err := mathexec.Explain(b.Postfix(), nil)
			if err != nil {
				t.Fatal(err)
			}
			if x != y {
				t.Errorf("%q and %q grouped differently:\n\t%s\n\t%s", c.a, c.b, x, y)
			}
		})
	}
}

func TestParseVars(t *testing.T) {
	cases := []struct {
		name string
		src  string
		vars []string
	}{
		{"none", "1+2+3", nil},
		{"one", "1+2+x", []string{"x"}},
		{"sort", "z+y+x+w+v+u+t+s+r+q+p+o+n+m+l+k+j+i+h+g+f+e+d+c+b+a", strings.Fields("a b c d e f g h i j k l m n o p q r s t u v w x y z")},
		{"reuse", "a+b+c+b+a", []string{"a", "b", "c"}},
		{"not-funcs", "sin(x) + cos(y)", []string{"x", "y"}},
		{"not-strings", "if(x, 'y', 'z')", []string{"x"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := mathexec.Parse(c.src, nil)
			if err != nil {
				t.Fatalf("%q didn't parse: %v", c.src, err)
			}
			if vars := a.Vars(); !reflect.DeepEqual(vars, c.vars) {
				t.Errorf("%q gave wrong variable names:\n\twant %q\n\tgot  %q", c.src, c.vars, vars)
			}
			if a.Source() != c.src {
				t.Errorf("wrong source: want %q, got %q", c.src, a.Source())
			}
		})
	}
}

func TestExplainErrors(t *testing.T) {
	cases := []struct {
		name    string
		postfix []mathexec.Token
	}{
		{"empty", nil},
		{"extra", []mathexec.Token{{Kind: mathexec.TokenLiteral, Text: "1"}, {Kind: mathexec.TokenLiteral, Text: "2"}}},
		{"missing-operand", []mathexec.Token{{Kind: mathexec.TokenLiteral, Text: "1"}, {Kind: mathexec.TokenOperator, Text: "+"}}},
		{"paren", []mathexec.Token{{Kind: mathexec.TokenLeftParen, Text: "("}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := mathexec.Explain(c.postfix, nil)
			if err == nil {
				t.Fatalf("no error; got %q", s)
			}
			if !isErr[*mathexec.ExpressionError](err) {
				t.Errorf("wrong error %#v", err)
			}
		})
	}
	_, err := mathexec.Explain([]mathexec.Token{{Kind: mathexec.TokenOperator, Text: "@"}}, nil)
	if !isErr[*mathexec.OperatorError](err) {
		t.Errorf("unknown operator: wrong error %#v", err)
	}
}
