// Package predicate implements LegPredicate, the declarative constraint a
// StrategyDefinition leg places on candidate positions: a comparison
// between a position attribute and either a fixed literal or an earlier
// leg's attribute. Predicates are introspectable so the matcher can push
// them down into an OptionPositionCollection index slice instead of
// scanning every candidate.
package predicate

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/optstrat/internal/collection"
	"github.com/contactkeval/optstrat/internal/comparison"
	"github.com/contactkeval/optstrat/internal/position"
)

// ErrInvalidPredicateForm is returned at construction time when an
// authored expression cannot be normalized to `position.target <cmp>
// reference` (both sides reference the candidate, neither side does, or
// a leg back-reference points at a leg that has not been matched yet).
var ErrInvalidPredicateForm = errors.New("predicate: invalid predicate form")

// Target names the candidate position attribute a predicate constrains.
type Target int

const (
	// Right compares the candidate's option right.
	Right Target = iota
	// Strike compares the candidate's strike price.
	Strike
	// Expiration compares the candidate's expiration date.
	Expiration
)

func (t Target) String() string {
	switch t {
	case Right:
		return "Right"
	case Strike:
		return "Strike"
	case Expiration:
		return "Expiration"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// ReferenceKind distinguishes a fixed comparand from a back-reference
// into an earlier leg's matched position.
type ReferenceKind int

const (
	// Literal is a fixed comparand value.
	Literal ReferenceKind = iota
	// LegAttribute resolves against an earlier leg's matched position.
	LegAttribute
	// LegAttributeCombo resolves a linear combination of earlier legs'
	// strikes (e.g. equal-spacing constraints such as a butterfly's
	// wing == 2*body - otherWing, which a single LegAttribute reference
	// cannot express).
	LegAttributeCombo
)

// StrikeTerm is one term of a LegAttributeCombo strike reference:
// coefficient * legs[LegIndex].strike.
type StrikeTerm struct {
	LegIndex    int
	Coefficient decimal.Decimal
}

// ReferenceValue is a literal comparand, a (legIndex, target)
// back-reference, or a linear combination of earlier legs' strikes,
// resolved at match time against the legs matched so far.
type ReferenceValue struct {
	Kind ReferenceKind

	right      position.Right
	strike     position.Strike
	expiration position.Expiration

	legIndex  int
	legTarget Target

	comboConst position.Strike
	comboTerms []StrikeTerm
}

// LiteralRight builds a fixed-right reference.
func LiteralRight(r position.Right) ReferenceValue {
	return ReferenceValue{Kind: Literal, right: r}
}

// LiteralStrike builds a fixed-strike reference.
func LiteralStrike(s position.Strike) ReferenceValue {
	return ReferenceValue{Kind: Literal, strike: s}
}

// LiteralExpiration builds a fixed-expiration reference.
func LiteralExpiration(e position.Expiration) ReferenceValue {
	return ReferenceValue{Kind: Literal, expiration: e}
}

// LegRef builds a back-reference to an earlier leg's attribute.
func LegRef(legIndex int, target Target) ReferenceValue {
	return ReferenceValue{Kind: LegAttribute, legIndex: legIndex, legTarget: target}
}

// StrikeLinearCombo builds a reference equal to `constant + sum(term.Coefficient
// * legs[term.LegIndex].strike)`, used for constraints a single LegAttribute
// can't express, such as a butterfly's equal wing spacing.
func StrikeLinearCombo(constant position.Strike, terms ...StrikeTerm) ReferenceValue {
	return ReferenceValue{Kind: LegAttributeCombo, comboConst: constant, comboTerms: terms}
}

// LegPredicate is one normalized constraint: `position.Target <Comparison>
// Reference`. Raw carries the originating expression text (if authored
// via FromExpression) purely for introspection and logging.
type LegPredicate struct {
	Target     Target
	Comparison comparison.Comparison
	Reference  ReferenceValue
	Raw        string
}

// CompareRight builds `position.right <cmp> ref`.
func CompareRight(cmp comparison.Comparison, ref ReferenceValue) LegPredicate {
	return LegPredicate{Target: Right, Comparison: cmp, Reference: ref}
}

// CompareStrike builds `position.strike <cmp> ref`.
func CompareStrike(cmp comparison.Comparison, ref ReferenceValue) LegPredicate {
	return LegPredicate{Target: Strike, Comparison: cmp, Reference: ref}
}

// CompareExpiration builds `position.expiration <cmp> ref`.
func CompareExpiration(cmp comparison.Comparison, ref ReferenceValue) LegPredicate {
	return LegPredicate{Target: Expiration, Comparison: cmp, Reference: ref}
}

// ValidateAgainstLegIndex rejects a predicate whose LegAttribute reference
// points at legIndex or later; StrategyDefinition construction calls this
// for every predicate of leg i with legIndex = i, per the spec's "behavior
// when j >= i is undefined and must be rejected at construction time".
func (lp LegPredicate) ValidateAgainstLegIndex(ownerLegIndex int) error {
	switch lp.Reference.Kind {
	case LegAttribute:
		if lp.Reference.legIndex >= ownerLegIndex {
			return fmt.Errorf("%w: leg %d references leg %d, which has not matched yet",
				ErrInvalidPredicateForm, ownerLegIndex, lp.Reference.legIndex)
		}
	case LegAttributeCombo:
		for _, term := range lp.Reference.comboTerms {
			if term.LegIndex >= ownerLegIndex {
				return fmt.Errorf("%w: leg %d references leg %d, which has not matched yet",
					ErrInvalidPredicateForm, ownerLegIndex, term.LegIndex)
			}
		}
	}
	return nil
}

// Matches resolves the reference against legsSoFar and evaluates the
// comparison against candidate. Resolution failures (e.g. Strike against
// the underlying equity symbol) return false rather than erroring.
func (lp LegPredicate) Matches(legsSoFar []position.OptionPosition, candidate position.OptionPosition) bool {
	switch lp.Target {
	case Right:
		ref, ok := lp.resolveRight(legsSoFar)
		if !ok || !candidate.Symbol.HasUnderlying() {
			return false
		}
		return comparison.Evaluate(lp.Comparison, candidate.Symbol.Right, ref)
	case Strike:
		ref, ok := lp.resolveStrike(legsSoFar)
		if !ok || !candidate.Symbol.HasUnderlying() {
			return false
		}
		return comparison.Evaluate(lp.Comparison, candidate.Symbol.Strike, ref)
	case Expiration:
		ref, ok := lp.resolveExpiration(legsSoFar)
		if !ok || !candidate.Symbol.HasUnderlying() {
			return false
		}
		return comparison.Evaluate(lp.Comparison, candidate.Symbol.Expiration, ref)
	default:
		return false
	}
}

// Filter applies index pushdown when possible, falling back to a linear
// scan (collection.Where) for the handful of Right comparisons with no
// direct slice.
func (lp LegPredicate) Filter(legsSoFar []position.OptionPosition, positions collection.OptionPositionCollection, includeUnderlying bool) collection.OptionPositionCollection {
	switch lp.Target {
	case Right:
		ref, ok := lp.resolveRight(legsSoFar)
		if !ok {
			return positions
		}
		switch lp.Comparison {
		case comparison.Equal:
			return positions.SliceByRight(ref, includeUnderlying)
		case comparison.NotEqual:
			return positions.SliceByRight(opposite(ref), includeUnderlying)
		default:
			return positions.Where(func(p position.OptionPosition) bool {
				return p.Symbol.HasUnderlying() && comparison.Evaluate(lp.Comparison, p.Symbol.Right, ref)
			}, includeUnderlying)
		}
	case Strike:
		ref, ok := lp.resolveStrike(legsSoFar)
		if !ok {
			return positions
		}
		return positions.SliceByStrike(lp.Comparison, ref, includeUnderlying)
	case Expiration:
		ref, ok := lp.resolveExpiration(legsSoFar)
		if !ok {
			return positions
		}
		return positions.SliceByExpiration(lp.Comparison, ref, includeUnderlying)
	default:
		return positions
	}
}

// IsIndexed reports whether Filter can push this predicate into an index
// slice rather than a full scan. Strike and Expiration are always
// indexed (the sorted maps support all six comparisons); Right is indexed
// only for Equal/NotEqual, since it has just two values.
func (lp LegPredicate) IsIndexed() bool {
	switch lp.Target {
	case Strike, Expiration:
		return true
	case Right:
		return lp.Comparison == comparison.Equal || lp.Comparison == comparison.NotEqual
	default:
		return false
	}
}

func (lp LegPredicate) resolveRight(legsSoFar []position.OptionPosition) (position.Right, bool) {
	switch lp.Reference.Kind {
	case Literal:
		return lp.Reference.right, true
	case LegAttribute:
		leg, ok := resolveLeg(legsSoFar, lp.Reference.legIndex)
		if !ok || !leg.Symbol.HasUnderlying() {
			return 0, false
		}
		return leg.Symbol.Right, true
	default:
		return 0, false
	}
}

func (lp LegPredicate) resolveStrike(legsSoFar []position.OptionPosition) (position.Strike, bool) {
	switch lp.Reference.Kind {
	case Literal:
		return lp.Reference.strike, true
	case LegAttribute:
		leg, ok := resolveLeg(legsSoFar, lp.Reference.legIndex)
		if !ok || !leg.Symbol.HasUnderlying() {
			return position.Strike{}, false
		}
		return leg.Symbol.Strike, true
	case LegAttributeCombo:
		sum := lp.Reference.comboConst.Decimal
		for _, term := range lp.Reference.comboTerms {
			leg, ok := resolveLeg(legsSoFar, term.LegIndex)
			if !ok || !leg.Symbol.HasUnderlying() {
				return position.Strike{}, false
			}
			sum = sum.Add(term.Coefficient.Mul(leg.Symbol.Strike.Decimal))
		}
		return position.Strike{Decimal: sum}, true
	default:
		return position.Strike{}, false
	}
}

func (lp LegPredicate) resolveExpiration(legsSoFar []position.OptionPosition) (position.Expiration, bool) {
	switch lp.Reference.Kind {
	case Literal:
		return lp.Reference.expiration, true
	case LegAttribute:
		leg, ok := resolveLeg(legsSoFar, lp.Reference.legIndex)
		if !ok || !leg.Symbol.HasUnderlying() {
			return position.Expiration{}, false
		}
		return leg.Symbol.Expiration, true
	default:
		return position.Expiration{}, false
	}
}

func resolveLeg(legsSoFar []position.OptionPosition, idx int) (position.OptionPosition, bool) {
	if idx < 0 || idx >= len(legsSoFar) {
		return position.OptionPosition{}, false
	}
	return legsSoFar[idx], true
}

func opposite(r position.Right) position.Right {
	if r == position.Put {
		return position.Call
	}
	return position.Put
}
