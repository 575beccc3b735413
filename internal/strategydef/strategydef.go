package strategydef

import (
	"fmt"

	"github.com/contactkeval/optstrat/internal/collection"
	"github.com/contactkeval/optstrat/internal/position"
)

// StrategyDefinition is a named, ordered sequence of leg definitions,
// plus an optional number of underlying share lots the strategy requires
// alongside its option legs.
type StrategyDefinition struct {
	Name           string
	UnderlyingLots int64
	Legs           []LegDefinition
}

// StrategyDefinitionMatch is one accepted assignment of positions to a
// StrategyDefinition's legs, in leg order.
type StrategyDefinitionMatch struct {
	Definition StrategyDefinition
	Legs       []StrategyLegMatch
}

// Multiplier is the strategy's overall fill count: the minimum multiplier
// across its legs.
func (m StrategyDefinitionMatch) Multiplier() int64 {
	var min int64
	for i, l := range m.Legs {
		if i == 0 || l.Multiplier < min {
			min = l.Multiplier
		}
	}
	return min
}

// ScaledLegPositions returns each leg's position scaled down to the
// overall (minimum) multiplier: the quantities the match actually
// consumes when accepted. A leg whose own multiplier exceeds the overall
// one contributes only its scaled share, leaving the rest in the
// collection.
func (m StrategyDefinitionMatch) ScaledLegPositions() []position.OptionPosition {
	mult := m.Multiplier()
	out := make([]position.OptionPosition, len(m.Legs))
	for i, l := range m.Legs {
		out[i] = l.Position.WithQuantity(m.Definition.Legs[i].Quantity * mult)
	}
	return out
}

// New validates and constructs a StrategyDefinition. Construction fails if
// any leg's predicate refers to a leg at or after its own position,
// since that reference could never resolve during the leg-by-leg search.
func New(name string, underlyingLots int64, legs []LegDefinition) (StrategyDefinition, error) {
	for i, leg := range legs {
		for _, p := range leg.Predicates {
			if err := p.ValidateAgainstLegIndex(i); err != nil {
				return StrategyDefinition{}, fmt.Errorf("strategy %q: leg %d: %w", name, i, err)
			}
		}
	}
	return StrategyDefinition{Name: name, UnderlyingLots: underlyingLots, Legs: legs}, nil
}

// Match performs the full recursive depth-first search, returning every
// matching assignment in depth-first order.
func (sd StrategyDefinition) Match(positions collection.OptionPositionCollection) []StrategyDefinitionMatch {
	return sd.MatchLimit(positions, 0)
}

// MatchFirst returns the first match the depth-first search yields, if
// any. The matcher loop drives its ordered form, MatchFirstOrdered, since
// it only ever needs the first match per definition per iteration.
func (sd StrategyDefinition) MatchFirst(positions collection.OptionPositionCollection) (StrategyDefinitionMatch, bool) {
	matches := sd.MatchLimit(positions, 1)
	if len(matches) == 0 {
		return StrategyDefinitionMatch{}, false
	}
	return matches[0], true
}

// MatchLimit performs the search, stopping once limit matches have been
// collected (0 means unlimited).
func (sd StrategyDefinition) MatchLimit(positions collection.OptionPositionCollection, limit int) []StrategyDefinitionMatch {
	return sd.MatchLimitOrdered(positions, limit, nil)
}

// MatchFirstOrdered is MatchFirst with leg candidates reordered by order
// (an enumerator policy's Order method) before multiplier evaluation.
func (sd StrategyDefinition) MatchFirstOrdered(positions collection.OptionPositionCollection, order OrderFunc) (StrategyDefinitionMatch, bool) {
	matches := sd.MatchLimitOrdered(positions, 1, order)
	if len(matches) == 0 {
		return StrategyDefinitionMatch{}, false
	}
	return matches[0], true
}

// MatchLimitOrdered is MatchLimit with leg candidates reordered by order
// before multiplier evaluation; a nil order is the collection's natural
// order.
func (sd StrategyDefinition) MatchLimitOrdered(positions collection.OptionPositionCollection, limit int, order OrderFunc) []StrategyDefinitionMatch {
	var out []StrategyDefinitionMatch
	sd.search(positions, nil, nil, &out, limit, order)
	return out
}

func (sd StrategyDefinition) search(
	remaining collection.OptionPositionCollection,
	legMatches []StrategyLegMatch,
	legPositions []position.OptionPosition,
	out *[]StrategyDefinitionMatch,
	limit int,
	order OrderFunc,
) {
	if limit > 0 && len(*out) >= limit {
		return
	}
	if len(legMatches) == len(sd.Legs) {
		if len(legMatches) > 0 {
			*out = append(*out, StrategyDefinitionMatch{
				Definition: sd,
				Legs:       append([]StrategyLegMatch(nil), legMatches...),
			})
		}
		return
	}
	if remaining.IsEmpty() {
		return
	}
	i := len(legMatches)
	leg := sd.Legs[i]
	for _, m := range leg.MatchOrdered(legPositions, remaining, order) {
		if limit > 0 && len(*out) >= limit {
			return
		}
		nextLegMatches := append(append([]StrategyLegMatch(nil), legMatches...), m)
		nextLegPositions := append(append([]position.OptionPosition(nil), legPositions...), m.Position)
		nextRemaining := remaining.Remove(m.Position)
		sd.search(nextRemaining, nextLegMatches, nextLegPositions, out, limit, order)
	}
}

// TryMatch verifies a pre-aligned positions list (one per leg, in leg
// order) independently against each leg's right, sign, and predicates,
// then scales every leg's matched quantity to the overall (minimum)
// multiplier. It fails if the lengths disagree, any leg fails, or any
// per-leg multiplier would be zero.
func (sd StrategyDefinition) TryMatch(exactPositions []position.OptionPosition) (StrategyDefinitionMatch, bool) {
	if len(exactPositions) != len(sd.Legs) {
		return StrategyDefinitionMatch{}, false
	}
	legMatches := make([]StrategyLegMatch, len(sd.Legs))
	var minMultiplier int64
	for i, leg := range sd.Legs {
		for _, p := range leg.Predicates {
			if !p.Matches(exactPositions[:i], exactPositions[i]) {
				return StrategyDefinitionMatch{}, false
			}
		}
		m, ok := leg.TryMatch(exactPositions[i])
		if !ok {
			return StrategyDefinitionMatch{}, false
		}
		legMatches[i] = m
		if i == 0 || m.Multiplier < minMultiplier {
			minMultiplier = m.Multiplier
		}
	}
	for i, leg := range sd.Legs {
		legMatches[i] = StrategyLegMatch{
			Multiplier: minMultiplier,
			Position:   legMatches[i].Position.WithQuantity(minMultiplier * leg.Quantity),
		}
	}
	return StrategyDefinitionMatch{Definition: sd, Legs: legMatches}, true
}
