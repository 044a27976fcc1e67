package plotexpr

import (
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// OperatorError is an error indicating an operator token that is not
// understood by the parser. It implements SyntaxError.
type OperatorError struct {
	// Col is the position of the operator.
	Col int
	// Operator is the token that was not understood.
	Operator string
	// Unary is whether the parser expected a unary operator at the time.
	Unary bool
}

func (err *OperatorError) Error() string {
	s := "binary"
	if err.Unary {
		s = "unary"
	}
	return errpos(err.Col, "unknown "+s+" operator "+strconv.Quote(err.Operator))
}

func (err *OperatorError) Pos() int {
	return err.Col
}

// ChainError is an error indicating comparisons chained without
// parentheses, as in a < b < c. It implements SyntaxError.
type ChainError struct {
	// Col is the position of the second comparison operator.
	Col int
	// Operator is the second comparison operator.
	Operator string
}

func (err *ChainError) Error() string {
	return errpos(err.Col, "comparison "+strconv.Quote(err.Operator)+" cannot follow another comparison")
}

func (err *ChainError) Pos() int {
	return err.Col
}

// BracketError is an error indicating mismatched parentheses in the
// input. It implements SyntaxError.
type BracketError struct {
	// Col is the position of the bracket or the end of input.
	Col int
	// Left is the opening bracket, if any.
	Left string
	// Right is the closing bracket, if any.
	Right string
}

func (err *BracketError) Error() string {
	if err.Left == "" {
		return errpos(err.Col, "close bracket "+err.Right+" with no open bracket")
	}
	return errpos(err.Col, "open bracket "+err.Left+" with no close bracket")
}

func (err *BracketError) Pos() int {
	return err.Col
}

// SeparatorError is an error indicating an illegal use of a comma
// separator. It implements SyntaxError.
type SeparatorError struct {
	// Col is the position of the separator.
	Col int
	// Sep is the separator.
	Sep string
}

func (err *SeparatorError) Error() string {
	return errpos(err.Col, "invalid occurrence of separator "+strconv.Quote(err.Sep))
}

func (err *SeparatorError) Pos() int {
	return err.Col
}

// CallError is an error indicating a function call with the wrong number of
// arguments. It implements SyntaxError.
type CallError struct {
	// Col is the position of the argument list, or of the token following
	// the function name if there is no argument list.
	Col int
	// Func is the function name that was called.
	Func string
	// Len is the number of arguments the function call tried to imply.
	Len int
	// Want describes the numbers of arguments the function accepts.
	Want string
	// Bare indicates that the function name was not followed by an argument
	// list at all.
	Bare bool
}

func (err *CallError) Error() string {
	if err.Bare {
		return errpos(err.Col, "function "+err.Func+" needs arguments in parentheses")
	}
	msg := "cannot call " + err.Func + " with " + strconv.Itoa(err.Len) + " arguments"
	if err.Want != "" {
		msg += " (want " + err.Want + ")"
	}
	return errpos(err.Col, msg)
}

func (err *CallError) Pos() int {
	return err.Col
}

// EmptyExpressionError is an error indicating an empty subexpression.
type EmptyExpressionError struct {
	// Col is the position of the token that ended the subexpression.
	Col int
	// End is the token that ended the subexpression.
	End string
}

func (err *EmptyExpressionError) Error() string {
	if err.End == "" {
		if err.Col <= 1 {
			return errpos(err.Col, "no expression")
		}
		return errpos(err.Col, "no expression at end")
	}
	return errpos(err.Col, "no expression up to "+strconv.Quote(err.End))
}

func (err *EmptyExpressionError) Pos() int {
	return err.Col
}

// NameError is an error indicating an identifier that is neither the
// variable x nor a function name. It implements SyntaxError.
type NameError struct {
	// Col is the position of the identifier.
	Col int
	// Name is the unknown identifier.
	Name string
	// Suggest is the name of a function similar to Name, or the empty string
	// if there is none.
	Suggest string
}

func (err *NameError) Error() string {
	msg := "unknown identifier " + strconv.Quote(err.Name)
	if err.Suggest != "" {
		msg += "; did you mean " + err.Suggest + "?"
	}
	return errpos(err.Col, msg)
}

func (err *NameError) Pos() int {
	return err.Col
}

// suggest finds the function name closest to an unknown identifier.
func suggest(name string) string {
	if len(name) < 2 {
		// Single letters match too much to be useful.
		return ""
	}
	names := Funcs()
	ranks := fuzzy.RankFindFold(name, names)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}
	// The identifier may be longer than the function it misspells, as in
	// sine or cosx. Fall back to edit distance.
	best, dist := "", 3
	lower := strings.ToLower(name)
	for _, f := range names {
		if d := fuzzy.LevenshteinDistance(lower, strings.ToLower(f)); d < dist {
			best, dist = f, d
		}
	}
	return best
}

// TokenError is an error indicating a token where the expression should have
// had an operator or should have ended. It implements SyntaxError.
type TokenError struct {
	// Col is the position of the token.
	Col int
	// Token is the unexpected token.
	Token string
}

func (err *TokenError) Error() string {
	return errpos(err.Col, "unexpected "+strconv.Quote(err.Token)+"; missing operator?")
}

func (err *TokenError) Pos() int {
	return err.Col
}

// CondError is an error indicating a conditional with no : separating its
// branches. It implements SyntaxError.
type CondError struct {
	// Col is the position of the token found instead of the colon.
	Col int
	// Found is the token found instead of the colon, or the empty string
	// for the end of input.
	Found string
}

func (err *CondError) Error() string {
	if err.Found == "" {
		return errpos(err.Col, "conditional has no ':' before end")
	}
	return errpos(err.Col, "conditional has "+strconv.Quote(err.Found)+" instead of ':'")
}

func (err *CondError) Pos() int {
	return err.Col
}

// NestingError is an error indicating an expression nested more deeply than
// the parser allows. It implements SyntaxError.
type NestingError struct {
	// Col is the position of the token that exceeded the limit.
	Col int
	// Max is the limit.
	Max int
}

func (err *NestingError) Error() string {
	return errpos(err.Col, "expression nested more than "+strconv.Itoa(err.Max)+" levels deep")
}

func (err *NestingError) Pos() int {
	return err.Col
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos int, msg string) string {
	return strconv.Itoa(pos) + ": " + msg
}

// SyntaxError is an error with position information. Every error resulting
// from invalid input implements SyntaxError.
type SyntaxError interface {
	error
	// Pos returns the position of the error as the number of runes up to and
	// including the start of the token that caused the error.
	Pos() int
}

var (
	_ SyntaxError = (*OperatorError)(nil)
	_ SyntaxError = (*ChainError)(nil)
	_ SyntaxError = (*BracketError)(nil)
	_ SyntaxError = (*SeparatorError)(nil)
	_ SyntaxError = (*CallError)(nil)
	_ SyntaxError = (*EmptyExpressionError)(nil)
	_ SyntaxError = (*NameError)(nil)
	_ SyntaxError = (*TokenError)(nil)
	_ SyntaxError = (*CondError)(nil)
	_ SyntaxError = (*NestingError)(nil)
	_ SyntaxError = (*LexError)(nil)
)
