package predicate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Knetic/govaluate"

	"github.com/contactkeval/optstrat/internal/comparison"
	"github.com/contactkeval/optstrat/internal/position"
)

// legRefPattern recognizes a single back-reference such as {LEG0.STRIKE},
// mirroring the teacher's {LEG1.STRIKE}-style expressions in
// internal/backtest/strategy/planner.go, but 0-indexed to match this
// package's legIndex convention instead of the teacher's 1-indexed one.
var legRefPattern = regexp.MustCompile(`^\{LEG(\d+)\.(STRIKE|EXPIRATION|RIGHT)\}$`)

var operatorPattern = regexp.MustCompile(`(==|!=|<=|>=|<|>)`)

// FromExpression parses a textual predicate such as
// "STRIKE >= {LEG0.STRIKE}" or "EXPIRATION == 2020-10-16" into a
// LegPredicate. Exactly one side must be the bare target keyword (RIGHT,
// STRIKE, or EXPIRATION); the other side is a literal or a {LEGn.ATTR}
// back-reference. If the candidate side is written on the right, the
// comparison is flipped so the candidate side becomes the left, per the
// spec's normalization rule.
func FromExpression(expr string) (LegPredicate, error) {
	raw := strings.TrimSpace(expr)
	loc := operatorPattern.FindStringIndex(raw)
	if loc == nil {
		return LegPredicate{}, fmt.Errorf("%w: no comparison operator in %q", ErrInvalidPredicateForm, expr)
	}
	op := raw[loc[0]:loc[1]]
	lhs := strings.TrimSpace(raw[:loc[0]])
	rhs := strings.TrimSpace(raw[loc[1]:])

	cmp, ok := parseOperator(op)
	if !ok {
		return LegPredicate{}, fmt.Errorf("%w: unrecognized operator %q", ErrInvalidPredicateForm, op)
	}

	lhsTarget, lhsIsCandidate := parseTarget(lhs)
	rhsTarget, rhsIsCandidate := parseTarget(rhs)

	switch {
	case lhsIsCandidate && rhsIsCandidate:
		return LegPredicate{}, fmt.Errorf("%w: both sides reference the candidate position in %q", ErrInvalidPredicateForm, expr)
	case !lhsIsCandidate && !rhsIsCandidate:
		return LegPredicate{}, fmt.Errorf("%w: neither side references the candidate position in %q", ErrInvalidPredicateForm, expr)
	case rhsIsCandidate:
		// Candidate is the right operand: flip so it becomes the left.
		target := rhsTarget
		ref, err := parseReference(target, lhs)
		if err != nil {
			return LegPredicate{}, err
		}
		return LegPredicate{Target: target, Comparison: cmp.FlipOperands(), Reference: ref, Raw: raw}, nil
	default:
		target := lhsTarget
		ref, err := parseReference(target, rhs)
		if err != nil {
			return LegPredicate{}, err
		}
		return LegPredicate{Target: target, Comparison: cmp, Reference: ref, Raw: raw}, nil
	}
}

func parseOperator(op string) (comparison.Comparison, bool) {
	switch op {
	case "==":
		return comparison.Equal, true
	case "!=":
		return comparison.NotEqual, true
	case "<":
		return comparison.LessThan, true
	case "<=":
		return comparison.LessOrEqual, true
	case ">":
		return comparison.GreaterThan, true
	case ">=":
		return comparison.GreaterOrEqual, true
	default:
		return 0, false
	}
}

// parseTarget reports whether side is exactly one of the bare candidate
// attribute keywords, and if so which Target it names.
func parseTarget(side string) (Target, bool) {
	switch strings.ToUpper(side) {
	case "RIGHT":
		return Right, true
	case "STRIKE":
		return Strike, true
	case "EXPIRATION":
		return Expiration, true
	default:
		return 0, false
	}
}

// parseReference parses the non-candidate side of a comparison: either a
// {LEGn.ATTR} back-reference or a literal appropriate to target.
func parseReference(target Target, side string) (ReferenceValue, error) {
	if m := legRefPattern.FindStringSubmatch(strings.ToUpper(side)); m != nil {
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			return ReferenceValue{}, fmt.Errorf("%w: bad leg index in %q", ErrInvalidPredicateForm, side)
		}
		refTarget, ok := parseTarget(m[2])
		if !ok {
			return ReferenceValue{}, fmt.Errorf("%w: unknown leg attribute in %q", ErrInvalidPredicateForm, side)
		}
		return LegRef(idx, refTarget), nil
	}

	switch target {
	case Right:
		switch strings.ToUpper(side) {
		case "PUT":
			return LiteralRight(position.Put), nil
		case "CALL":
			return LiteralRight(position.Call), nil
		default:
			return ReferenceValue{}, fmt.Errorf("%w: %q is not PUT, CALL, or a leg reference", ErrInvalidPredicateForm, side)
		}
	case Strike:
		v, err := evaluateNumericLiteral(side)
		if err != nil {
			return ReferenceValue{}, fmt.Errorf("%w: %v", ErrInvalidPredicateForm, err)
		}
		return LiteralStrike(position.NewStrike(v)), nil
	case Expiration:
		t, err := time.Parse("2006-01-02", side)
		if err != nil {
			return ReferenceValue{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date or a leg reference", ErrInvalidPredicateForm, side)
		}
		return LiteralExpiration(position.NewExpiration(t)), nil
	default:
		return ReferenceValue{}, fmt.Errorf("%w: unsupported target", ErrInvalidPredicateForm)
	}
}

// evaluateNumericLiteral evaluates a bare arithmetic literal (e.g. "100",
// "95+5") via govaluate, the same expression evaluator the teacher uses
// in evaluateLegExpression, but without substituting any leg reference:
// by the time control reaches here the side has already been checked
// against legRefPattern and found not to be one.
func evaluateNumericLiteral(expr string) (float64, error) {
	evalExpr, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return 0, err
	}
	result, err := evalExpr.Evaluate(nil)
	if err != nil {
		return 0, err
	}
	f, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("expression %q did not evaluate to a number", expr)
	}
	return f, nil
}
