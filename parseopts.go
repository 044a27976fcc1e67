package plotexpr

import (
	"strconv"
	"unicode"
)

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

type (
	eofopt struct {
		ws string
	}
	depthopt int
	// offsetopt shifts reported columns past text consumed before the
	// expression, like a "y =" prefix.
	offsetopt int
)

// DefaultMaxDepth is the nesting limit used when no MaxDepth option is given.
const DefaultMaxDepth = 256

// parsectx holds general data for parsing.
type parsectx struct {
	// wseof is a string containing the whitespace characters that trigger an
	// EOF token from the lexer.
	wseof string
	// maxdepth is the nesting limit, and depth is the current nesting.
	maxdepth, depth int
	// offset is the number of runes read before the expression began.
	offset int
	// tail is the kind of the last token of the most recently parsed
	// primary. Implicit multiplication is allowed only after numbers and
	// close brackets.
	tail tokenKind
}

// StopOn tells the parser to treat a list of characters as ending the
// expression. Each rune must be a whitespace codepoint. Whitespace does not
// end an expression where a term is expected, e.g. at the beginning of an
// expression or following an operator or bracket.
//
// StopOn overrides the effect of any previous StopOn in the parsing options.
// With no arguments, StopOn produces the default termination behavior, which
// is to parse to EOF.
func StopOn(chars ...rune) ParseOption {
	v := make([]rune, 0, len(chars))
	have := func(r rune) bool {
		for _, c := range v {
			if r == c {
				return true
			}
		}
		return false
	}
	for _, r := range chars {
		if !unicode.IsSpace(r) {
			panic("plotexpr: cannot stop on " + strconv.QuoteRune(r))
		}
		if have(r) {
			continue
		}
		v = append(v, r)
	}
	return &eofopt{ws: string(v)}
}

func (o *eofopt) parseOption(p parsectx) parsectx {
	p.wseof = o.ws
	return p
}

// MaxDepth limits how deeply subexpressions may nest. Parsing fails with a
// *NestingError beyond the limit. Values less than 1 restore the default.
func MaxDepth(n int) ParseOption {
	return depthopt(n)
}

func (o depthopt) parseOption(p parsectx) parsectx {
	p.maxdepth = int(o)
	if p.maxdepth < 1 {
		p.maxdepth = DefaultMaxDepth
	}
	return p
}

func (o offsetopt) parseOption(p parsectx) parsectx {
	p.offset = int(o)
	return p
}
