// Package strategydef implements LegDefinition and StrategyDefinition: the
// declarative shape of a named option strategy as an ordered list of leg
// constraints, plus the recursive backtracking search that matches a
// definition against a position collection.
package strategydef

import (
	"github.com/contactkeval/optstrat/internal/collection"
	"github.com/contactkeval/optstrat/internal/position"
	"github.com/contactkeval/optstrat/internal/predicate"
)

// LegDefinition is one constituent leg of a strategy: a contract right, a
// signed unit quantity, and an ordered list of predicates narrowing which
// candidate positions may fill the leg.
type LegDefinition struct {
	Right      position.Right
	Quantity   int64
	Predicates []predicate.LegPredicate
}

// StrategyLegMatch is one leg's contribution to a StrategyDefinitionMatch:
// how many unit copies of the leg this position covers, and the matched
// sub-position (quantity == multiplier * legDef.quantity, sign included).
type StrategyLegMatch struct {
	Multiplier int64
	Position   position.OptionPosition
}

// Filter narrows positions to option contracts of this leg's right,
// further narrowed by each predicate in turn. Indexed predicates run
// before general scans, which is an optimization invariant, not a
// semantic one.
func (ld LegDefinition) Filter(legsSoFar []position.OptionPosition, positions collection.OptionPositionCollection) collection.OptionPositionCollection {
	out := positions.SliceByRight(ld.Right, false)
	for _, p := range reorderPredicates(ld.Predicates) {
		out = p.Filter(legsSoFar, out, false)
	}
	return out
}

// OrderFunc reorders a list of candidate positions before the search
// consumes them; this is how a CollectionEnumerator policy (defined in
// internal/matcher) reaches into leg filtering without strategydef
// importing matcher.
type OrderFunc func([]position.OptionPosition) []position.OptionPosition

// Match filters the collection and yields a StrategyLegMatch for every
// surviving candidate whose quantity holds this leg's unit quantity (with
// matching sign) at least once, in the collection's natural order. The
// multiplier is the truncated quotient, so a remainder is allowed.
func (ld LegDefinition) Match(legsSoFar []position.OptionPosition, positions collection.OptionPositionCollection) []StrategyLegMatch {
	return ld.MatchOrdered(legsSoFar, positions, nil)
}

// MatchOrdered is Match with candidates reordered by order before
// multiplier evaluation; a nil order leaves the collection's natural
// order untouched.
func (ld LegDefinition) MatchOrdered(legsSoFar []position.OptionPosition, positions collection.OptionPositionCollection, order OrderFunc) []StrategyLegMatch {
	candidates := ld.Filter(legsSoFar, positions)
	all := candidates.All()
	if order != nil {
		all = order(all)
	}
	out := make([]StrategyLegMatch, 0, len(all))
	for _, p := range all {
		if m, ok := ld.tryMultiplier(p); ok {
			out = append(out, m)
		}
	}
	return out
}

// TryMatch is the exact one-position match variant: right and sign must
// agree, and p.Quantity must hold ld.Quantity at least once.
func (ld LegDefinition) TryMatch(p position.OptionPosition) (StrategyLegMatch, bool) {
	if !p.Symbol.HasUnderlying() || p.Symbol.Right != ld.Right {
		return StrategyLegMatch{}, false
	}
	return ld.tryMultiplier(p)
}

func (ld LegDefinition) tryMultiplier(p position.OptionPosition) (StrategyLegMatch, bool) {
	if ld.Quantity == 0 || p.Quantity == 0 {
		return StrategyLegMatch{}, false
	}
	if sign(p.Quantity) != sign(ld.Quantity) {
		return StrategyLegMatch{}, false
	}
	multiplier := p.Quantity / ld.Quantity
	if multiplier < 1 {
		return StrategyLegMatch{}, false
	}
	return StrategyLegMatch{
		Multiplier: multiplier,
		Position:   p.WithQuantity(multiplier * ld.Quantity),
	}, true
}

func sign(n int64) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}

// reorderPredicates returns preds with indexed predicates first, scans
// last, preserving relative order within each group.
func reorderPredicates(preds []predicate.LegPredicate) []predicate.LegPredicate {
	indexed := make([]predicate.LegPredicate, 0, len(preds))
	scans := make([]predicate.LegPredicate, 0, len(preds))
	for _, p := range preds {
		if p.IsIndexed() {
			indexed = append(indexed, p)
		} else {
			scans = append(scans, p)
		}
	}
	return append(indexed, scans...)
}
