// Package comparison provides a reified binary comparison operator used
// throughout the matcher to express leg constraints and to drive index
// pushdown instead of linear scans.
package comparison

import "fmt"

// Comparison is a closed variant over the six arithmetic comparisons.
type Comparison int

const (
	// Equal matches values that are identical under Compare.
	Equal Comparison = iota
	// NotEqual matches values that differ under Compare.
	NotEqual
	// LessThan matches values strictly below the reference.
	LessThan
	// LessOrEqual matches values at or below the reference.
	LessOrEqual
	// GreaterThan matches values strictly above the reference.
	GreaterThan
	// GreaterOrEqual matches values at or above the reference.
	GreaterOrEqual
)

// String renders the comparison using conventional operator symbols.
func (c Comparison) String() string {
	switch c {
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case LessThan:
		return "<"
	case LessOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterOrEqual:
		return ">="
	default:
		return fmt.Sprintf("Comparison(%d)", int(c))
	}
}

// FlipOperands returns the comparison equivalent to swapping operands,
// e.g. `a < b` becomes `b > a`. Equal and NotEqual are self-dual.
func (c Comparison) FlipOperands() Comparison {
	switch c {
	case LessThan:
		return GreaterThan
	case LessOrEqual:
		return GreaterOrEqual
	case GreaterThan:
		return LessThan
	case GreaterOrEqual:
		return LessOrEqual
	default:
		return c
	}
}

// Comparable is satisfied by any type with a three-way comparison against
// its own type, e.g. decimal strikes or option expirations.
type Comparable[T any] interface {
	Compare(other T) int
}

// Evaluate applies the comparison to (a, b) using a's Compare method,
// i.e. it evaluates `a <cmp> b`.
func Evaluate[T Comparable[T]](c Comparison, a, b T) bool {
	d := a.Compare(b)
	switch c {
	case Equal:
		return d == 0
	case NotEqual:
		return d != 0
	case LessThan:
		return d < 0
	case LessOrEqual:
		return d <= 0
	case GreaterThan:
		return d > 0
	case GreaterOrEqual:
		return d >= 0
	default:
		return false
	}
}

// FilterList returns the elements x of xs for which `x <cmp> ref` holds.
func FilterList[T Comparable[T]](xs []T, c Comparison, ref T) []T {
	out := make([]T, 0, len(xs))
	for _, x := range xs {
		if Evaluate(c, x, ref) {
			out = append(out, x)
		}
	}
	return out
}
