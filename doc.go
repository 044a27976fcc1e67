// Package plotexpr parses and evaluates functions of one variable for
// plotting.
//
// The syntax is what you'd type into a graphing calculator. "y = 2x^2 - 1"
// is a parabola; the "y =" is optional. Juxtaposition multiplies only after
// a number or a closing parenthesis, so "2x" and "3(x+1)" are products but
// "x x" is an error. "-x^2" is the same as "-(x^2)", and "a ? b : c" picks b
// when a is non-zero, which combines with comparisons for piecewise
// functions like "x >= 0 ? x^2 : -x".
//
// Parse an expression once and evaluate it at as many points as you like.
// Evaluation never fails; points where the function is undefined, like
// log(-1) or 1/0, are reported as such, and Sample splits curves into runs
// around them.
//
// For more digits than float64 offers, evaluate the same Expr with a Context,
// which computes with math/big and reports undefined points as a
// *DomainError.
package plotexpr
