package strategydef

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/contactkeval/optstrat/internal/collection"
	"github.com/contactkeval/optstrat/internal/comparison"
	"github.com/contactkeval/optstrat/internal/position"
	"github.com/contactkeval/optstrat/internal/predicate"
)

var underlyingSymbol = position.NewEquitySymbol("AAPL")

func week(n int) position.Expiration {
	return position.NewExpiration(time.Date(2020, 10, 16, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*n))
}

func callHolding(strike float64, w int) collection.Holding {
	return collection.Holding{
		Symbol: position.NewOptionSymbol("AAPL", position.American, position.Call, position.NewStrike(strike), week(w)),
	}
}

func putHolding(strike float64, w int) collection.Holding {
	return collection.Holding{
		Symbol: position.NewOptionSymbol("AAPL", position.American, position.Put, position.NewStrike(strike), week(w)),
	}
}

func withQty(h collection.Holding, qty int64) collection.Holding {
	h.Quantity = qty
	return h
}

// bearCallSpread mirrors S1: leg0 is the lower-strike anchor, leg1 is
// required to have a strike >= leg0's and the same expiration.
func bearCallSpread(t *testing.T) StrategyDefinition {
	t.Helper()
	sd, err := NewBuilder("Bear Call Spread").
		Leg(position.Call, 1).
		Leg(position.Call, 1,
			predicate.CompareStrike(comparison.GreaterOrEqual, predicate.LegRef(0, predicate.Strike)),
			predicate.CompareExpiration(comparison.Equal, predicate.LegRef(0, predicate.Expiration)),
		).
		Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	return sd
}

func TestS1BearCallSpreadMatchesWithLegReversal(t *testing.T) {
	c := collection.New(underlyingSymbol, []collection.Holding{
		withQty(callHolding(100, 0), 5),
		withQty(callHolding(95, 0), 3),
	})
	sd := bearCallSpread(t)
	matches := sd.Match(c)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	m := matches[0]
	if m.Multiplier() != 3 {
		t.Fatalf("multiplier = %d, want 3", m.Multiplier())
	}
	if got := m.Legs[0].Position.Symbol.Strike; got.Compare(position.NewStrike(95)) != 0 {
		t.Fatalf("leg0 strike = %v, want 95 (lower-strike anchor)", got)
	}
	if got := m.Legs[1].Position.Symbol.Strike; got.Compare(position.NewStrike(100)) != 0 {
		t.Fatalf("leg1 strike = %v, want 100", got)
	}
	// Output legs are the quantities the match consumes: each leg scaled
	// to the overall multiplier.
	for i, p := range m.ScaledLegPositions() {
		if p.Quantity != 3 {
			t.Fatalf("leg %d quantity = %d, want 3", i, p.Quantity)
		}
	}
}

func straddle(t *testing.T) StrategyDefinition {
	t.Helper()
	sd, err := NewBuilder("Straddle").
		Leg(position.Call, 1).
		Leg(position.Put, -1,
			predicate.CompareStrike(comparison.Equal, predicate.LegRef(0, predicate.Strike)),
			predicate.CompareExpiration(comparison.Equal, predicate.LegRef(0, predicate.Expiration)),
		).
		Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	return sd
}

func TestS2Straddle(t *testing.T) {
	c := collection.New(underlyingSymbol, []collection.Holding{
		withQty(callHolding(100, 0), 2),
		withQty(putHolding(100, 0), -1),
	})
	sd := straddle(t)
	m, ok := sd.MatchFirst(c)
	if !ok {
		t.Fatal("expected a straddle match")
	}
	if m.Multiplier() != 1 {
		t.Fatalf("multiplier = %d, want 1", m.Multiplier())
	}
	remaining := c.Accept(m.ScaledLegPositions())
	callSym := position.NewOptionSymbol("AAPL", position.American, position.Call, position.NewStrike(100), week(0))
	if p, ok := remaining.TryGet(callSym); !ok || p.Quantity != 1 {
		t.Fatalf("expected +1 call remaining, got %+v (ok=%v)", p, ok)
	}
}

func callButterfly(t *testing.T) StrategyDefinition {
	t.Helper()
	sd, err := NewBuilder("Call Butterfly").
		Leg(position.Call, 1).
		Leg(position.Call, -2,
			predicate.CompareStrike(comparison.GreaterThan, predicate.LegRef(0, predicate.Strike)),
			predicate.CompareExpiration(comparison.Equal, predicate.LegRef(0, predicate.Expiration)),
		).
		Leg(position.Call, 1,
			// leg2.strike must equal 2*leg1.strike - leg0.strike: the
			// equal-spacing constraint a single LegAttribute reference
			// can't express.
			predicate.CompareStrike(comparison.Equal, predicate.StrikeLinearCombo(
				position.NewStrike(0),
				predicate.StrikeTerm{LegIndex: 1, Coefficient: decimal.NewFromInt(2)},
				predicate.StrikeTerm{LegIndex: 0, Coefficient: decimal.NewFromInt(-1)},
			)),
			predicate.CompareExpiration(comparison.Equal, predicate.LegRef(0, predicate.Expiration)),
		).
		Build()
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	return sd
}

func TestS3CallButterflyRequiresEqualSpacing(t *testing.T) {
	sd := callButterfly(t)

	good := collection.New(underlyingSymbol, []collection.Holding{
		withQty(callHolding(90, 0), 1),
		withQty(callHolding(100, 0), -2),
		withQty(callHolding(110, 0), 1),
	})
	if _, ok := sd.MatchFirst(good); !ok {
		t.Fatal("expected equal-spacing butterfly to match")
	}

	uneven := collection.New(underlyingSymbol, []collection.Holding{
		withQty(callHolding(90, 0), 1),
		withQty(callHolding(100, 0), -2),
		withQty(callHolding(115, 0), 1),
	})
	if _, ok := sd.MatchFirst(uneven); ok {
		t.Fatal("expected unequal wing spacing to yield zero matches")
	}
}

func TestS5SignAwareLegMatch(t *testing.T) {
	leg := LegDefinition{Right: position.Call, Quantity: -2}
	sym := position.NewOptionSymbol("AAPL", position.American, position.Call, position.NewStrike(100), week(0))

	if _, ok := leg.TryMatch(position.New(sym, 5)); ok {
		t.Fatal("a +5 holding must not match a -2 leg requirement")
	}
	m, ok := leg.TryMatch(position.New(sym, -7))
	if !ok {
		t.Fatal("expected -7 holding to match a -2 leg requirement")
	}
	if m.Multiplier != 3 {
		t.Fatalf("multiplier = %d, want 3", m.Multiplier)
	}
	if m.Position.Quantity != -6 {
		t.Fatalf("matched sub-position quantity = %d, want -6", m.Position.Quantity)
	}
}

func TestTryMatchScalesToOverallMultiplier(t *testing.T) {
	sd := bearCallSpread(t)
	lowSym := position.NewOptionSymbol("AAPL", position.American, position.Call, position.NewStrike(95), week(0))
	highSym := position.NewOptionSymbol("AAPL", position.American, position.Call, position.NewStrike(100), week(0))
	exact := []position.OptionPosition{
		position.New(lowSym, 4),
		position.New(highSym, 9),
	}
	m, ok := sd.TryMatch(exact)
	if !ok {
		t.Fatal("expected TryMatch to succeed")
	}
	if m.Multiplier() != 4 {
		t.Fatalf("overall multiplier = %d, want 4", m.Multiplier())
	}
	for _, l := range m.Legs {
		if l.Multiplier != 4 {
			t.Fatalf("leg multiplier = %d, want 4 (scaled to overall)", l.Multiplier)
		}
	}
}

func TestNewRejectsForwardLegReference(t *testing.T) {
	_, err := NewBuilder("Bad").
		Leg(position.Call, 1, predicate.CompareStrike(comparison.Equal, predicate.LegRef(1, predicate.Strike))).
		Leg(position.Call, 1).
		Build()
	if err == nil {
		t.Fatal("expected forward leg reference to be rejected at construction")
	}
}
