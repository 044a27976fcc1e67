//go:build go1.18
// +build go1.18

package plotexpr_test

import (
	"strings"
	"testing"

	"github.com/zephyrtronium/plotexpr"
)

func FuzzParse(f *testing.F) {
	f.Add("x")
	f.Add("y")
	f.Add("2x^2 - 3(x+1)")
	f.Add("x >= 0 ? x^2 : -x")
	f.Add("log(x, 2)")
	f.Fuzz(func(t *testing.T, s string) {
		a, err := plotexpr.Parse(strings.NewReader(s))
		if err != nil {
			if _, ok := err.(plotexpr.SyntaxError); !ok {
				t.Errorf("%q gave non-syntax error %#v", s, err)
			}
			return
		}
		// Fully parenthesized output nests deeper than its source.
		if _, err := plotexpr.Parse(strings.NewReader(a.String()), plotexpr.MaxDepth(1<<20)); err != nil {
			t.Errorf("%q formatted to %q which failed to parse: %v", s, a, err)
		}
	})
}
