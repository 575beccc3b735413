// Package matcher implements the outer matching loop: for each strategy
// definition, in order, greedily accept the first match the definition
// yields against the remaining collection, subtract it, and repeat until
// the definition yields nothing. The loop honors wall-clock and match-
// count caps and is otherwise a thin driver over strategydef's recursive
// search.
package matcher

import (
	"time"

	"github.com/contactkeval/optstrat/internal/collection"
	"github.com/contactkeval/optstrat/internal/strategydef"
)

// ObjectiveFunc scores a completed matching of strategy instances. It is
// exposed as a pluggable interface only: MatchOnce's greedy first-match
// loop does not invoke it. The general branch-and-bound optimizer over
// the full space of matchings is left an explicit open question (see
// DESIGN.md) rather than guessed at.
type ObjectiveFunc interface {
	Score(matches []strategydef.StrategyDefinitionMatch) float64
}

// DefaultObjective prefers more legs filled, then a higher total
// multiplier. It is the only concrete ObjectiveFunc shipped, and nothing
// in MatchOnce invokes it automatically; it's available to callers that
// want to rank alternative MatchOnce runs (e.g. under different
// enumerator policies).
type DefaultObjective struct{}

// Score implements ObjectiveFunc.
func (DefaultObjective) Score(matches []strategydef.StrategyDefinitionMatch) float64 {
	var legs, multiplier float64
	for _, m := range matches {
		legs += float64(len(m.Legs))
		multiplier += float64(m.Multiplier())
	}
	return legs*1000 + multiplier
}

// Options configures a matcher run.
type Options struct {
	// Definitions are tried in order on every pass over remaining
	// positions, insertion order.
	Definitions []strategydef.StrategyDefinition
	// EnumeratorPolicy orders candidate positions within a leg filter
	// before the recursive search consumes them. Nil means Default.
	EnumeratorPolicy CollectionEnumerator
	// MaxDuration bounds wall-clock time; zero means unbounded. Checked
	// on entry to each match attempt (coarse granularity suffices per
	// the concurrency model).
	MaxDuration time.Duration
	// MaxTotalMatches bounds the number of accepted strategy instances
	// across all definitions; zero means unbounded.
	MaxTotalMatches int
	// MaxMatchesPerLeg bounds how many times the definition at the same
	// index in Definitions may match in one run; a missing or zero entry
	// means unbounded for that definition.
	MaxMatchesPerLeg []int
}

// Matcher drives MatchOnce against a fixed set of options.
type Matcher struct {
	options Options
}

// New builds a Matcher with the given options.
func New(options Options) *Matcher {
	return &Matcher{options: options}
}

// MatchOnce runs the greedy outer loop: for each definition in order,
// repeatedly accept its first match against the shrinking remaining
// collection until it yields nothing, then move to the next definition.
// Hitting a cap returns the partial accumulator; this is a soft signal,
// never an error.
func (m *Matcher) MatchOnce(positions collection.OptionPositionCollection) []strategydef.StrategyDefinitionMatch {
	var acc []strategydef.StrategyDefinitionMatch
	remaining := positions

	var deadline time.Time
	if m.options.MaxDuration > 0 {
		deadline = time.Now().Add(m.options.MaxDuration)
	}

	order := m.policy().Order

	for i, def := range m.options.Definitions {
		perLegCap := 0
		if i < len(m.options.MaxMatchesPerLeg) {
			perLegCap = m.options.MaxMatchesPerLeg[i]
		}
		legCount := 0
		for {
			if !deadline.IsZero() && time.Now().After(deadline) {
				return acc
			}
			if m.options.MaxTotalMatches > 0 && len(acc) >= m.options.MaxTotalMatches {
				return acc
			}
			if perLegCap > 0 && legCount >= perLegCap {
				break
			}

			match, ok := def.MatchFirstOrdered(remaining, order)
			if !ok {
				break
			}
			acc = append(acc, match)
			remaining = remaining.Accept(match.ScaledLegPositions())
			legCount++
		}
	}
	return acc
}

func (m *Matcher) policy() CollectionEnumerator {
	if m.options.EnumeratorPolicy == nil {
		return Default{}
	}
	return m.options.EnumeratorPolicy
}
