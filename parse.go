package plotexpr

import (
	"errors"
	"io"
	"strconv"
)

// Expr = num | 'x' | Call | Neg | Plus | Binary | Cond | Implicit | '(' Expr ')'
// Call = funcname '(' Expr { ',' Expr } ')'
// Neg = '-' Expr
// Plus = '+' Expr
// Binary = Expr op Expr, op one of + - * / ^ < <= > >= == !=
// Cond = Expr '?' Expr ':' Expr
// Implicit = (num | ')') ('x' | funcname | '(') ...
//
// From least to most binding: ?:, comparisons, + -, * / and implicit
// multiplication, unary - +, ^. Conditionals and ^ are right-associative,
// comparisons do not associate, and the rest are left-associative.

// Expr is a parsed expression that can be evaluated for any x. An Expr is
// immutable and safe for concurrent use.
type Expr struct {
	// n is the root node of the expression.
	n *node
}

// Parse parses an expression so it can be evaluated. The given options are
// applied in order. Parse reads the expression grammar only; use Compile to
// accept a leading "y =".
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	p := parsectx{maxdepth: DefaultMaxDepth}
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	scan := lex(src)
	scan.rune += p.offset
	n, err := parseterm(scan, &p, exprprec)
	if err != nil {
		return nil, err
	}
	if tok := scan.must(); tok.kind != tokenEOF {
		return nil, itShouldNotHaveEndedThisWay(tok, "")
	}
	return &Expr{n: n}, nil
}

// parseterm parses a single term. If there is no error, then parseterm pushes
// the last token it scans, including EOF. If the input is an empty
// subexpression, the result is nil with no error; callers must create an error
// in contexts where empty subexpressions are illegal.
func parseterm(scan *lexer, p *parsectx, until operator) (*node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > p.maxdepth {
		return nil, &NestingError{Col: scan.rune, Max: p.maxdepth}
	}
	n, err := parselhs(scan, p, until)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	// cmp is set when n is a comparison parsed at this level.
	cmp := false
	for {
		tok, err := scan.next(p.wseof)
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenIdent, tokenOpen:
			// 2x -> (2) * (x)
			// (parsed) (expr) -> (parsed) * (expr)
			// Only numbers and closing brackets multiply this way.
			if p.tail != tokenNum && p.tail != tokenClose {
				return nil, &TokenError{Col: tok.pos, Token: tok.text}
			}
			scan.push(tok)
			if !termprec.moreBinding(until) {
				return n, nil
			}
			rhs, err := parseterm(scan, p, termprec)
			if err != nil {
				return nil, err
			}
			n = &node{kind: nodeMul, left: n, right: rhs}
		case tokenNum:
			return nil, &TokenError{Col: tok.pos, Token: tok.text}
		case tokenOp:
			// Binary operator.
			prec := binop(tok.text)
			if prec.op == nodeNone {
				return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: false}
			}
			if !prec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			iscmp := prec.prec == cmpprec.prec
			if iscmp && cmp {
				return nil, &ChainError{Col: tok.pos, Operator: tok.text}
			}
			rhs, err := parseterm(scan, p, prec)
			if err != nil {
				return nil, err
			}
			if rhs == nil {
				return nil, emptyAt(scan.must())
			}
			n = &node{kind: prec.op, left: n, right: rhs}
			cmp = iscmp
		case tokenQuery:
			if !condprec.moreBinding(until) {
				scan.push(tok)
				return n, nil
			}
			then, err := parseterm(scan, p, exprprec)
			if err != nil {
				return nil, err
			}
			end := scan.must()
			if then == nil {
				return nil, emptyAt(end)
			}
			if end.kind != tokenColon {
				return nil, &CondError{Col: end.pos, Found: end.text}
			}
			els, err := parseterm(scan, p, condprec)
			if err != nil {
				return nil, err
			}
			if els == nil {
				return nil, emptyAt(scan.must())
			}
			n = &node{kind: nodeCond, left: n, right: &node{kind: nodeAlt, left: then, right: els}}
			cmp = false
		case tokenClose, tokenSep, tokenColon, tokenEOF:
			// End of expression.
			scan.push(tok)
			return n, nil
		default:
			panic("plotexpr: unknown token: " + tok.String())
		}
	}
}

// parselhs parses the first component of a term. I.e., operators are unary,
// any encountered token must be valid as the start of a subexpression, and
// whitespace normally lexed as EOF is ignored.
func parselhs(scan *lexer, p *parsectx, until operator) (*node, error) {
	// Don't use EOF whitespace for LHS.
	tok, err := scan.next("")
	if err != nil {
		return nil, err
	}
	var n *node
	switch tok.kind {
	case tokenNum:
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			panic("plotexpr: lexed invalid number " + strconv.Quote(tok.text) + ": " + err.Error())
		}
		// Out of range literals become ±Inf or 0, and evaluation handles
		// those like any other value.
		n = &node{kind: nodeNum, name: tok.text, num: v}
		p.tail = tokenNum
	case tokenIdent:
		if tok.text == "x" {
			n = &node{kind: nodeVar, name: tok.text}
			p.tail = tokenIdent
			break
		}
		fn := globalfuncs[tok.text]
		if fn == nil {
			return nil, &NameError{Col: tok.pos, Name: tok.text, Suggest: suggest(tok.text)}
		}
		args, err := parsecall(scan, p, fn)
		if err != nil {
			return nil, err
		}
		n = &node{kind: nodeCall, name: tok.text, fn: fn, right: args}
		p.tail = tokenClose
	case tokenOp:
		// unary operator
		prec := unop(tok.text)
		if prec.op == nodeNone {
			return nil, &OperatorError{Col: tok.pos, Operator: tok.text, Unary: true}
		}
		if !prec.moreBinding(until) {
			// x^-y -> x^(-y)
			// Just use the new operator's precedence to simplify.
			prec.prec, prec.right = until.prec, until.right
		}
		rhs, err := parseterm(scan, p, prec)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, emptyAt(scan.must())
		}
		n = &node{kind: prec.op, left: rhs}
	case tokenOpen:
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			return nil, err
		}
		end := scan.must()
		if end.kind != tokenClose {
			return nil, itShouldNotHaveEndedThisWay(end, tok.text)
		}
		if rhs == nil {
			return nil, &EmptyExpressionError{Col: end.pos, End: end.text}
		}
		n = rhs
		p.tail = tokenClose
	case tokenClose:
		// Let the caller decide whether an empty expression is allowed here.
		scan.push(tok)
		return nil, nil
	case tokenSep:
		return nil, &SeparatorError{Col: tok.pos, Sep: tok.text}
	case tokenQuery, tokenColon:
		return nil, &TokenError{Col: tok.pos, Token: tok.text}
	case tokenEOF:
		return nil, &EmptyExpressionError{Col: tok.pos, End: ""}
	default:
		panic("plotexpr: unknown token: " + tok.String())
	}
	return n, nil
}

// parsecall parses the argument list of a call to fn.
func parsecall(scan *lexer, p *parsectx, fn *Func) (*node, error) {
	// We respect whitespace here so that sin\n(x) doesn't string together
	// expressions.
	tok, err := scan.next(p.wseof)
	if err != nil {
		return nil, err
	}
	if tok.kind != tokenOpen {
		return nil, &CallError{Col: tok.pos, Func: fn.name, Want: fn.arity(), Bare: true}
	}
	n, len, err := parsearglist(scan, p, tok.text)
	if err != nil {
		return nil, err
	}
	end := scan.must()
	if end.kind != tokenClose {
		panic("plotexpr: parsearglist ended on " + end.String() + " instead of close bracket")
	}
	if !fn.CanCall(len) {
		return nil, &CallError{Col: tok.pos, Func: fn.name, Len: len, Want: fn.arity()}
	}
	return n, nil
}

// parsearglist parses a bracketed list of zero or more args.
func parsearglist(scan *lexer, p *parsectx, open string) (*node, int, error) {
	var n node
	l := &n
	len := 0
	for {
		rhs, err := parseterm(scan, p, exprprec)
		if err != nil {
			// As a special case, reporting an unclosed bracket is more helpful
			// than empty expression at the end of input.
			if ee, _ := err.(*EmptyExpressionError); ee != nil && ee.End == "" {
				err = &BracketError{Col: ee.Col, Left: open}
			}
			return nil, 0, err
		}
		end := scan.must()
		switch end.kind {
		case tokenClose:
			// Caller checks the close.
			scan.push(end)
			if rhs == nil {
				// No expression parsed.
				// func() is a call with no arguments, but func(a,) is wrong.
				if len != 0 {
					return nil, 0, &EmptyExpressionError{Col: end.pos, End: end.text}
				}
				return nil, 0, nil
			}
			l.right = &node{kind: nodeArg, left: rhs}
			return n.right, len + 1, nil
		case tokenSep:
			len++
			l.right = &node{kind: nodeArg, left: rhs}
			l = l.right
		case tokenEOF:
			return nil, 0, &BracketError{Col: end.pos, Left: open}
		case tokenColon:
			return nil, 0, &TokenError{Col: end.pos, Token: end.text}
		default:
			panic("plotexpr: parseterm ended on non-end token " + end.String())
		}
	}
}

// emptyAt returns the error for an operand missing before tok.
func emptyAt(tok lexToken) error {
	return &EmptyExpressionError{Col: tok.pos, End: tok.text}
}

// itShouldNotHaveEndedThisWay returns an error appropriate for an unexpected
// token at the end of a subexpression. open is the bracket that the
// expression should have closed, or the empty string if none.
func itShouldNotHaveEndedThisWay(tok lexToken, open string) error {
	switch tok.kind {
	case tokenEOF:
		// Unexpected EOF implies an open bracket that was not closed.
		return &BracketError{Col: tok.pos, Left: open}
	case tokenClose:
		// Only a close bracket outside any brackets is unexpected.
		return &BracketError{Col: tok.pos, Right: tok.text}
	case tokenSep:
		// Separator outside a function call.
		return &SeparatorError{Col: tok.pos, Sep: tok.text}
	case tokenColon:
		// Colon outside a conditional.
		return &TokenError{Col: tok.pos, Token: tok.text}
	default:
		panic("plotexpr: it really should not have ended this way: " + tok.String())
	}
}

// String creates a string representation of the parsed expression with every
// term in parentheses. The result parses to the same expression.
func (e *Expr) String() string {
	return e.n.String()
}

// Constant reports whether the expression does not depend on x.
func (e *Expr) Constant() bool {
	return !e.n.hasvar()
}

func (n *node) hasvar() bool {
	if n == nil {
		return false
	}
	if n.kind == nodeVar {
		return true
	}
	return n.left.hasvar() || n.right.hasvar()
}

type operator struct {
	// prec is the precedence value. Higher is more binding.
	prec int8
	// right indicates right-associativity.
	right bool
	// op is the node kind to use when this operator is selected.
	op nodeKind
}

func (p operator) moreBinding(than operator) bool {
	if p.prec != than.prec {
		return p.prec > than.prec
	}
	return p.right
}

// binop gets a binary operator for a token string. If there is no such binary
// operator, then the result has an op of nodeNone.
func binop(text string) operator {
	switch text {
	case "+":
		return operator{1, false, nodeAdd}
	case "-":
		return operator{1, false, nodeSub}
	case "*":
		return operator{5, false, nodeMul}
	case "/":
		return operator{5, false, nodeDiv}
	case "^":
		return operator{15, true, nodePow}
	case "<":
		return operator{0, false, nodeLess}
	case "<=":
		return operator{0, false, nodeLessEq}
	case ">":
		return operator{0, false, nodeMore}
	case ">=":
		return operator{0, false, nodeMoreEq}
	case "==":
		return operator{0, false, nodeEq}
	case "!=":
		return operator{0, false, nodeNeq}
	default:
		return operator{}
	}
}

// unop gets a unary operator for a token string. If there is no such unary
// operator, then the result has an op of nodeNone.
func unop(text string) operator {
	switch text {
	case "+":
		return operator{10, true, nodeNop}
	case "-":
		return operator{10, true, nodeNeg}
	default:
		return operator{}
	}
}

var (
	// termprec is the precedence of implicit multiplication. Its prec
	// should match that of multiplication.
	termprec = operator{5, false, nodeMul}
	// cmpprec is the precedence of comparisons.
	cmpprec = binop("<")
	// condprec is the precedence of conditionals.
	condprec = operator{-1, true, nodeCond}
	// exprprec is the precedence required to parse an entire subexpression.
	exprprec = operator{-128, true, nodeNone}
)
