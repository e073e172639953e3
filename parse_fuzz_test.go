//go:build go1.18
// +build go1.18

package mathexec_test

import (
	"testing"

	"github.com/zephyrtronium/mathexec"
)

func FuzzParse(f *testing.F) {
	f.Add("x")
	f.Add("y")
	f.Add("1×2")
	f.Add("max(1, [2, 3], 'a\\'b')")
	f.Add("1.5e-3x")
	f.Fuzz(func(t *testing.T, s string) {
		p, err := mathexec.Parse(s, nil)
		if err != nil {
			if _, ok := err.(mathexec.InputError); !ok {
				t.Errorf("%q: parse error %#v has no position", s, err)
			}
			return
		}
		for _, tok := range p.Postfix() {
			switch tok.Kind {
			case mathexec.TokenLeftParen, mathexec.TokenRightParen, mathexec.TokenParamSeparator, mathexec.TokenSpace:
				t.Errorf("%q: postfix holds %v", s, tok)
			}
		}
	})
}
