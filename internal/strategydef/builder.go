package strategydef

import (
	"github.com/contactkeval/optstrat/internal/position"
	"github.com/contactkeval/optstrat/internal/predicate"
)

// Builder authors a StrategyDefinition leg by leg. It is the concrete
// form the spec's "definition library as a callable-free data file"
// takes here: a fluent construction API rather than a parser, since the
// library (internal/library) builds every strategy directly in Go.
type Builder struct {
	name           string
	underlyingLots int64
	legs           []LegDefinition
}

// NewBuilder starts authoring a strategy definition named name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// UnderlyingLots sets the number of underlying share lots the strategy
// requires alongside its option legs.
func (b *Builder) UnderlyingLots(n int64) *Builder {
	b.underlyingLots = n
	return b
}

// Leg appends a leg requiring right, a signed unit quantity, and zero or
// more predicates narrowing the candidate pool.
func (b *Builder) Leg(right position.Right, quantity int64, predicates ...predicate.LegPredicate) *Builder {
	b.legs = append(b.legs, LegDefinition{Right: right, Quantity: quantity, Predicates: predicates})
	return b
}

// Build validates and returns the assembled StrategyDefinition.
func (b *Builder) Build() (StrategyDefinition, error) {
	return New(b.name, b.underlyingLots, b.legs)
}
