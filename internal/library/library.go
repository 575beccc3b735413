// Package library is the shipped definition library: the ten named
// strategy shapes the spec requires at minimum, each authored with
// strategydef.Builder. It is the "callable-free data file" the spec
// describes — an ordered list of StrategyDefinitions, not executable
// logic, so a reviewer can read one function and see the whole book of
// shapes the matcher knows about.
package library

import (
	"github.com/shopspring/decimal"

	"github.com/contactkeval/optstrat/internal/comparison"
	"github.com/contactkeval/optstrat/internal/position"
	"github.com/contactkeval/optstrat/internal/predicate"
	"github.com/contactkeval/optstrat/internal/strategydef"
)

func sameExpiration() predicate.LegPredicate {
	return predicate.CompareExpiration(comparison.Equal, predicate.LegRef(0, predicate.Expiration))
}

func mustBuild(b *strategydef.Builder) strategydef.StrategyDefinition {
	sd, err := b.Build()
	if err != nil {
		// Every definition below is a compile-time-fixed shape whose leg
		// references only ever point backward; a build error here would
		// mean this file itself is wrong.
		panic(err)
	}
	return sd
}

// BearCallSpread sells the lower-strike call and buys the higher-strike
// call, same expiration: a credit spread that profits as the underlying
// falls or stays below the short strike.
func BearCallSpread() strategydef.StrategyDefinition {
	return mustBuild(strategydef.NewBuilder("Bear Call Spread").
		Leg(position.Call, -1).
		Leg(position.Call, 1,
			predicate.CompareStrike(comparison.GreaterThan, predicate.LegRef(0, predicate.Strike)),
			sameExpiration(),
		))
}

// BearPutSpread buys the higher-strike put and sells the lower-strike
// put, same expiration: a debit spread that profits as the underlying
// falls toward the short strike.
func BearPutSpread() strategydef.StrategyDefinition {
	return mustBuild(strategydef.NewBuilder("Bear Put Spread").
		Leg(position.Put, 1).
		Leg(position.Put, -1,
			predicate.CompareStrike(comparison.LessThan, predicate.LegRef(0, predicate.Strike)),
			sameExpiration(),
		))
}

// BullCallSpread buys the lower-strike call and sells the higher-strike
// call, same expiration: a debit spread that profits as the underlying
// rises toward the short strike.
func BullCallSpread() strategydef.StrategyDefinition {
	return mustBuild(strategydef.NewBuilder("Bull Call Spread").
		Leg(position.Call, 1).
		Leg(position.Call, -1,
			predicate.CompareStrike(comparison.GreaterThan, predicate.LegRef(0, predicate.Strike)),
			sameExpiration(),
		))
}

// BullPutSpread sells the higher-strike put and buys the lower-strike
// put, same expiration: a credit spread that profits as the underlying
// rises or stays above the short strike.
func BullPutSpread() strategydef.StrategyDefinition {
	return mustBuild(strategydef.NewBuilder("Bull Put Spread").
		Leg(position.Put, -1).
		Leg(position.Put, 1,
			predicate.CompareStrike(comparison.LessThan, predicate.LegRef(0, predicate.Strike)),
			sameExpiration(),
		))
}

// Straddle buys a call and a put at the same strike and expiration.
func Straddle() strategydef.StrategyDefinition {
	return mustBuild(strategydef.NewBuilder("Straddle").
		Leg(position.Call, 1).
		Leg(position.Put, 1,
			predicate.CompareStrike(comparison.Equal, predicate.LegRef(0, predicate.Strike)),
			sameExpiration(),
		))
}

// Strangle buys a higher-strike call and a lower-strike put, same
// expiration.
func Strangle() strategydef.StrategyDefinition {
	return mustBuild(strategydef.NewBuilder("Strangle").
		Leg(position.Call, 1).
		Leg(position.Put, 1,
			predicate.CompareStrike(comparison.LessThan, predicate.LegRef(0, predicate.Strike)),
			sameExpiration(),
		))
}

// equalWingSpacing builds the "wing2.strike == 2*body.strike - wing1.strike"
// constraint shared by both butterfly definitions.
func equalWingSpacing(bodyLegIndex, wingLegIndex int) predicate.LegPredicate {
	return predicate.CompareStrike(comparison.Equal, predicate.StrikeLinearCombo(
		position.NewStrike(0),
		predicate.StrikeTerm{LegIndex: bodyLegIndex, Coefficient: decimal.NewFromInt(2)},
		predicate.StrikeTerm{LegIndex: wingLegIndex, Coefficient: decimal.NewFromInt(-1)},
	))
}

// CallButterfly buys one lower-strike call, sells two middle-strike
// calls, and buys one higher-strike call, all same expiration, with the
// wings equally spaced around the body.
func CallButterfly() strategydef.StrategyDefinition {
	return mustBuild(strategydef.NewBuilder("Call Butterfly").
		Leg(position.Call, 1).
		Leg(position.Call, -2,
			predicate.CompareStrike(comparison.GreaterThan, predicate.LegRef(0, predicate.Strike)),
			sameExpiration(),
		).
		Leg(position.Call, 1,
			equalWingSpacing(1, 0),
			sameExpiration(),
		))
}

// PutButterfly mirrors CallButterfly with puts.
func PutButterfly() strategydef.StrategyDefinition {
	return mustBuild(strategydef.NewBuilder("Put Butterfly").
		Leg(position.Put, 1).
		Leg(position.Put, -2,
			predicate.CompareStrike(comparison.GreaterThan, predicate.LegRef(0, predicate.Strike)),
			sameExpiration(),
		).
		Leg(position.Put, 1,
			equalWingSpacing(1, 0),
			sameExpiration(),
		))
}

// CallCalendarSpread sells a near-term call and buys a longer-dated call
// at the same strike.
func CallCalendarSpread() strategydef.StrategyDefinition {
	return mustBuild(strategydef.NewBuilder("Call Calendar Spread").
		Leg(position.Call, -1).
		Leg(position.Call, 1,
			predicate.CompareStrike(comparison.Equal, predicate.LegRef(0, predicate.Strike)),
			predicate.CompareExpiration(comparison.GreaterThan, predicate.LegRef(0, predicate.Expiration)),
		))
}

// PutCalendarSpread sells a near-term put and buys a longer-dated put at
// the same strike.
func PutCalendarSpread() strategydef.StrategyDefinition {
	return mustBuild(strategydef.NewBuilder("Put Calendar Spread").
		Leg(position.Put, -1).
		Leg(position.Put, 1,
			predicate.CompareStrike(comparison.Equal, predicate.LegRef(0, predicate.Strike)),
			predicate.CompareExpiration(comparison.GreaterThan, predicate.LegRef(0, predicate.Expiration)),
		))
}

// Default returns the spec's required minimum library, in the order a
// reviewer would expect to see it presented.
func Default() []strategydef.StrategyDefinition {
	return []strategydef.StrategyDefinition{
		BearCallSpread(),
		BearPutSpread(),
		BullCallSpread(),
		BullPutSpread(),
		Straddle(),
		Strangle(),
		CallButterfly(),
		PutButterfly(),
		CallCalendarSpread(),
		PutCalendarSpread(),
	}
}
